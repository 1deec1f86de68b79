package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"

	"github.com/Kerhoff/lomaya/internal/models"
)

func TestTranslateDBError(t *testing.T) {
	plain := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unique", &pq.Error{Code: "23505", Constraint: "_user_shift_uc"}, models.ErrConflict},
		{"wrapped unique", fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), models.ErrConflict},
		{"foreign key", &pq.Error{Code: "23503", Constraint: "requests_user_id_fkey"}, models.ErrNotFound},
		{"other pq", &pq.Error{Code: "40001"}, nil},
		{"plain", plain, plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateDBError(tt.err)
			if tt.want == nil {
				if got != tt.err {
					t.Fatalf("expected error to pass through, got %v", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Fatalf("translateDBError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}

	if translateDBError(nil) != nil {
		t.Fatal("nil must stay nil")
	}
}
