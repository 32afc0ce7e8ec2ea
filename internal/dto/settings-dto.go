package dto

import "github.com/aarondl/null/v8"

type SettingsDTO struct {
	CompanyName           string `json:"company_name"`
	TaxID                 string `json:"tax_id"`
	PostalCode            string `json:"postal_code"`
	Street                string `json:"street"`
	District              string `json:"district"`
	City                  string `json:"city"`
	State                 string `json:"state"`
	Currency              string `json:"currency"`
	AIEnabled             bool   `json:"ai_enabled"`
	AIAvailable           bool   `json:"ai_available"` // ключ API задан, не зависит от ai_enabled
	MaintenanceWindowDays int    `json:"maintenance_window_days"`
	UpdatedAt             string `json:"updated_at"`
}

type UpdateSettingsDTO struct {
	CompanyName           null.String `json:"company_name" validate:"omitempty,max=150"`
	TaxID                 null.String `json:"tax_id" validate:"omitempty,max=30"`
	PostalCode            null.String `json:"postal_code" validate:"omitempty,postal_code"`
	Street                null.String `json:"street" validate:"omitempty,max=200"`
	District              null.String `json:"district" validate:"omitempty,max=100"`
	City                  null.String `json:"city" validate:"omitempty,max=100"`
	State                 null.String `json:"state" validate:"omitempty,max=10"`
	Currency              null.String `json:"currency" validate:"omitempty,len=3"`
	AIEnabled             null.Bool   `json:"ai_enabled"`
	MaintenanceWindowDays null.Int    `json:"maintenance_window_days" validate:"omitempty,gt=0,lte=365"`
}

type ApplyPostalCodeDTO struct {
	PostalCode string `json:"postal_code" validate:"required,postal_code"`
}
