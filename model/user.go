package model

import "time"

// User is a local account created on first OAuth sign-in. Password is
// only set for seeded admin accounts; OAuth users carry an empty hash.
type User struct {
	ID        string `json:"id" gorm:"primaryKey"`
	Email     string `json:"email" gorm:"unique;not null"`
	Name      string `json:"name"`
	Picture   string `json:"picture"`
	Provider  string `json:"provider" gorm:"size:30"`
	Role      string `json:"role" gorm:"not null;size:20;default:user"`
	Password  string `json:"-"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
