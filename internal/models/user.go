package models

import "time"

// User represents a platform participant registered through Telegram
type User struct {
	Base
	Name              string    `json:"name" db:"name"`
	Surname           string    `json:"surname" db:"surname"`
	DateOfBirth       time.Time `json:"date_of_birth" db:"date_of_birth"`
	City              string    `json:"city" db:"city"`
	PhoneNumber       string    `json:"phone_number" db:"phone_number"`
	TelegramID        int64     `json:"telegram_id" db:"telegram_id"`
	NumbersLombaryers *int      `json:"numbers_lombaryers" db:"numbers_lombaryers"`
}

// FullName returns the user's full name
func (u *User) FullName() string {
	if u.Surname != "" {
		return u.Name + " " + u.Surname
	}
	return u.Name
}
