package models

import (
	"fmt"

	"github.com/google/uuid"
)

// MemberStatus represents whether a member still takes part in a shift
type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusExcluded MemberStatus = "excluded"
)

// Valid reports whether s is one of the known member statuses
func (s MemberStatus) Valid() bool {
	return s == MemberStatusActive || s == MemberStatusExcluded
}

// UnmarshalText rejects unknown statuses
func (s *MemberStatus) UnmarshalText(text []byte) error {
	v := MemberStatus(text)
	if !v.Valid() {
		return fmt.Errorf("unknown member status %q: %w", text, ErrValidation)
	}
	*s = v
	return nil
}

// Member is an approved user's participation in one shift
type Member struct {
	Base
	Status            MemberStatus `json:"status" db:"status"`
	UserID            uuid.UUID    `json:"user_id" db:"user_id"`
	ShiftID           uuid.UUID    `json:"shift_id" db:"shift_id"`
	NumbersLombaryers int          `json:"numbers_lombaryers" db:"numbers_lombaryers"`
}

// NewMember returns an active member with an empty reward counter
func NewMember(userID, shiftID uuid.UUID) *Member {
	return &Member{
		Status:  MemberStatusActive,
		UserID:  userID,
		ShiftID: shiftID,
	}
}
