package entities

import (
	"time"

	"cmms-system/pkg/types"
)

const (
	PlanStatusActive = "active"
	PlanStatusPaused = "paused"
)

type PreventivePlan struct {
	ID             uint64     `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	AssetID        uint64     `json:"asset_id" db:"asset_id"`
	TechnicianID   *uint64    `json:"technician_id" db:"technician_id"`
	Description    string     `json:"description" db:"description"`
	FrequencyValue int        `json:"frequency_value" db:"frequency_value"`
	FrequencyUnit  string     `json:"frequency_unit" db:"frequency_unit"`
	LastExecution  *time.Time `json:"last_execution" db:"last_execution"`
	Status         string     `json:"status" db:"status"`
	EstimatedHours float64    `json:"estimated_hours" db:"estimated_hours"`
	Checklist      []string   `json:"checklist" db:"checklist"`

	types.BaseEntity

	AssetName string `db:"-"`
}
