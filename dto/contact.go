package dto

import "time"

type CreateContactRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	Subject   string `json:"subject" validate:"required,oneof=donation volunteer partnership general"`
	Message   string `json:"message" validate:"required,min=10,max=5000"`
}

func (r CreateContactRequest) Validate() error {
	return validate.Struct(r)
}

type ContactResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

type ContactListResponse struct {
	Contacts []ContactResponse `json:"contacts"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}
