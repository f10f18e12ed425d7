package model

import "time"

// Contact is a write-once message submitted through the public contact
// form. It is never updated in place.
type Contact struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	FirstName string    `json:"first_name" gorm:"not null"`
	LastName  string    `json:"last_name" gorm:"not null"`
	Email     string    `json:"email" gorm:"not null;index"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject" gorm:"not null;size:50"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	Source    string    `json:"source" gorm:"not null;default:website"`
	CreatedAt time.Time `json:"created_at"`
}
