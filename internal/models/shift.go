package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ShiftStatus represents the lifecycle stage of a shift
type ShiftStatus string

const (
	ShiftStatusPreparing ShiftStatus = "preparing"
	ShiftStatusStarted   ShiftStatus = "started"
	ShiftStatusFinished  ShiftStatus = "finished"
	ShiftStatusCancelled ShiftStatus = "cancelled"
)

// Valid reports whether s is one of the known shift statuses
func (s ShiftStatus) Valid() bool {
	switch s {
	case ShiftStatusPreparing, ShiftStatusStarted, ShiftStatusFinished, ShiftStatusCancelled:
		return true
	}
	return false
}

// UnmarshalText rejects unknown statuses
func (s *ShiftStatus) UnmarshalText(text []byte) error {
	v := ShiftStatus(text)
	if !v.Valid() {
		return fmt.Errorf("unknown shift status %q: %w", text, ErrValidation)
	}
	*s = v
	return nil
}

// Shift is a scheduled program of daily tasks
type Shift struct {
	Base
	Status         ShiftStatus     `json:"status" db:"status"`
	SequenceNumber int             `json:"sequence_number" db:"sequence_number"`
	StartedAt      time.Time       `json:"started_at" db:"started_at"`
	FinishedAt     time.Time       `json:"finished_at" db:"finished_at"`
	Title          string          `json:"title" db:"title"`
	FinalMessage   string          `json:"final_message" db:"final_message"`
	Tasks          json.RawMessage `json:"tasks" db:"tasks"`
}

// ShiftWithUsers is a shift together with the users who requested to join it
type ShiftWithUsers struct {
	Shift
	Users []User `json:"users"`
}

// Validate checks the date range and required columns
func (s *Shift) Validate() error {
	if !s.Status.Valid() {
		return fmt.Errorf("unknown shift status %q: %w", s.Status, ErrValidation)
	}
	if s.FinishedAt.Before(s.StartedAt) {
		return fmt.Errorf("finished_at %s precedes started_at %s: %w",
			s.FinishedAt.Format(time.DateOnly), s.StartedAt.Format(time.DateOnly), ErrValidation)
	}
	if len(s.Tasks) == 0 {
		s.Tasks = json.RawMessage("{}")
	}
	if !json.Valid(s.Tasks) {
		return fmt.Errorf("tasks is not valid JSON: %w", ErrValidation)
	}
	return nil
}

// IsActive returns true while members are expected to send reports
func (s *Shift) IsActive() bool {
	return s.Status == ShiftStatusStarted
}
