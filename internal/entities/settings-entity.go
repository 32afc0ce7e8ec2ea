package entities

import "time"

// SystemSettings хранится одной строкой с id = 1.
type SystemSettings struct {
	CompanyName           string     `json:"company_name" db:"company_name"`
	TaxID                 string     `json:"tax_id" db:"tax_id"`
	PostalCode            string     `json:"postal_code" db:"postal_code"`
	Street                string     `json:"street" db:"street"`
	District              string     `json:"district" db:"district"`
	City                  string     `json:"city" db:"city"`
	State                 string     `json:"state" db:"state"`
	Currency              string     `json:"currency" db:"currency"`
	AIEnabled             bool       `json:"ai_enabled" db:"ai_enabled"`
	MaintenanceWindowDays int        `json:"maintenance_window_days" db:"maintenance_window_days"`
	UpdatedAt             *time.Time `json:"updated_at" db:"updated_at"`
}
