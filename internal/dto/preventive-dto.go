package dto

import "github.com/aarondl/null/v8"

type CreatePlanDTO struct {
	Name           string   `json:"name" validate:"required,max=150"`
	AssetID        uint64   `json:"asset_id" validate:"required,gt=0"`
	TechnicianID   *uint64  `json:"technician_id" validate:"omitempty,gt=0"`
	Description    string   `json:"description" validate:"omitempty,max=2000"`
	FrequencyValue int      `json:"frequency_value" validate:"required,gt=0,lte=3650"`
	FrequencyUnit  string   `json:"frequency_unit" validate:"required,frequency_unit"`
	LastExecution  string   `json:"last_execution" validate:"omitempty"`
	EstimatedHours float64  `json:"estimated_hours" validate:"gte=0"`
	Checklist      []string `json:"checklist" validate:"omitempty,dive,max=300"`
}

// UpdatePlanDTO: checklist = nil не меняет список, [] очищает его.
type UpdatePlanDTO struct {
	Name           null.String  `json:"name" validate:"omitempty,max=150"`
	TechnicianID   null.Uint64  `json:"technician_id"`
	Description    null.String  `json:"description" validate:"omitempty,max=2000"`
	FrequencyValue null.Int     `json:"frequency_value" validate:"omitempty,gt=0,lte=3650"`
	FrequencyUnit  null.String  `json:"frequency_unit" validate:"omitempty,frequency_unit"`
	LastExecution  null.String  `json:"last_execution"`
	EstimatedHours null.Float64 `json:"estimated_hours" validate:"omitempty,gte=0"`
	Checklist      []string     `json:"checklist" validate:"omitempty,dive,max=300"`
}

type PlanDTO struct {
	ID             uint64        `json:"id"`
	Name           string        `json:"name"`
	Asset          ShortAssetDTO `json:"asset"`
	TechnicianID   *uint64       `json:"technician_id"`
	Description    string        `json:"description"`
	FrequencyValue int           `json:"frequency_value"`
	FrequencyUnit  string        `json:"frequency_unit"`
	LastExecution  string        `json:"last_execution,omitempty"`
	Status         string        `json:"status"`
	EstimatedHours float64       `json:"estimated_hours"`
	Checklist      []string      `json:"checklist"`
	NextDueDate    string        `json:"next_due_date"`
	DaysUntilDue   int           `json:"days_until_due"`
	DueState       string        `json:"due_state"`
	CreatedAt      string        `json:"created_at"`
	UpdatedAt      string        `json:"updated_at"`
}

type ExecutePlanResultDTO struct {
	Plan   PlanDTO   `json:"plan"`
	Ticket TicketDTO `json:"ticket"`
}

// PlanSuggestionDTO - план, предложенный ИИ; в базу не сохраняется.
type PlanSuggestionDTO struct {
	Name           string   `json:"name" validate:"required,max=150"`
	Description    string   `json:"description" validate:"omitempty,max=2000"`
	FrequencyValue int      `json:"frequency_value" validate:"required,gt=0,lte=3650"`
	FrequencyUnit  string   `json:"frequency_unit" validate:"required,frequency_unit"`
	EstimatedHours float64  `json:"estimated_hours" validate:"gte=0"`
	Checklist      []string `json:"checklist"`
}
