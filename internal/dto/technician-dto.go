package dto

import "github.com/aarondl/null/v8"

type CreateTechnicianDTO struct {
	Name       string  `json:"name" validate:"required,max=150"`
	Specialty  string  `json:"specialty" validate:"omitempty,max=100"`
	Phone      string  `json:"phone" validate:"omitempty,max=30"`
	Email      string  `json:"email" validate:"omitempty,email"`
	HourlyRate float64 `json:"hourly_rate" validate:"gte=0"`
	Active     *bool   `json:"active"`
	UserID     *uint64 `json:"user_id" validate:"omitempty,gt=0"`
}

type UpdateTechnicianDTO struct {
	Name       null.String  `json:"name" validate:"omitempty,max=150"`
	Specialty  null.String  `json:"specialty" validate:"omitempty,max=100"`
	Phone      null.String  `json:"phone" validate:"omitempty,max=30"`
	Email      null.String  `json:"email" validate:"omitempty,email"`
	HourlyRate null.Float64 `json:"hourly_rate" validate:"omitempty,gte=0"`
	Active     null.Bool    `json:"active"`
}

type TechnicianDTO struct {
	ID         uint64  `json:"id"`
	Name       string  `json:"name"`
	Specialty  string  `json:"specialty"`
	Phone      string  `json:"phone"`
	Email      string  `json:"email"`
	HourlyRate float64 `json:"hourly_rate"`
	Active     bool    `json:"active"`
	UserID     *uint64 `json:"user_id,omitempty"`
	CreatedAt  string  `json:"created_at"`
}
