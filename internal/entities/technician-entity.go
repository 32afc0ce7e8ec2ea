package entities

import "cmms-system/pkg/types"

type Technician struct {
	ID         uint64  `json:"id" db:"id"`
	Name       string  `json:"name" db:"name"`
	Specialty  string  `json:"specialty" db:"specialty"`
	Phone      string  `json:"phone" db:"phone"`
	Email      string  `json:"email" db:"email"`
	HourlyRate float64 `json:"hourly_rate" db:"hourly_rate"`
	Active     bool    `json:"active" db:"active"`
	UserID     *uint64 `json:"user_id,omitempty" db:"user_id"`

	types.BaseEntity
}

// TechnicianWorkload - агрегат по открытым заявкам и отработанным часам.
type TechnicianWorkload struct {
	TechnicianID uint64  `json:"technician_id"`
	Name         string  `json:"name"`
	OpenTickets  int     `json:"open_tickets"`
	LaborHours   float64 `json:"labor_hours"`
}
