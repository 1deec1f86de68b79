package models

// Task is a reusable task definition shared across shifts
type Task struct {
	Base
	URL         string `json:"url" db:"url"`
	Description string `json:"description" db:"description"`
}
