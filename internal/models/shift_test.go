package models

import (
	"errors"
	"testing"
	"time"
)

func TestShiftValidate(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	shift := &Shift{Status: ShiftStatusPreparing, StartedAt: start, FinishedAt: start.AddDate(0, 0, 90)}
	if err := shift.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(shift.Tasks) != "{}" {
		t.Fatalf("expected empty tasks object, got %s", shift.Tasks)
	}

	shift = &Shift{Status: ShiftStatusPreparing, StartedAt: start, FinishedAt: start.AddDate(0, 0, -1)}
	if err := shift.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for reversed dates, got %v", err)
	}

	shift = &Shift{Status: "paused", StartedAt: start, FinishedAt: start}
	if err := shift.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}

	shift = &Shift{Status: ShiftStatusStarted, StartedAt: start, FinishedAt: start, Tasks: []byte("{")}
	if err := shift.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for broken tasks JSON, got %v", err)
	}
}
