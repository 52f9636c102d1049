package models

import "time"

// User captures an account holder. Balance is stored in minor units
// (paise) so arithmetic stays exact. PasswordHash and the reset token
// fields never leave the process as JSON.
type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	PasswordHash string     `json:"-"`
	Balance      int64      `json:"balance"`
	ResetToken   string     `json:"-"`
	ResetExpiry  *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}
