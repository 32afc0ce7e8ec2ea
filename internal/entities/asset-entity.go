package entities

import (
	"time"

	"cmms-system/pkg/types"
)

const (
	AssetStatusOperational = "operational"
	AssetStatusMaintenance = "maintenance"
	AssetStatusStopped     = "stopped"
	AssetStatusInactive    = "inactive"
)

type Asset struct {
	ID              uint64     `json:"id" db:"id"`
	Code            string     `json:"code" db:"code"`
	Name            string     `json:"name" db:"name"`
	Category        string     `json:"category" db:"category"`
	Location        string     `json:"location" db:"location"`
	Manufacturer    string     `json:"manufacturer" db:"manufacturer"`
	Model           string     `json:"model" db:"model"`
	SerialNumber    string     `json:"serial_number" db:"serial_number"`
	ParentID        *uint64    `json:"parent_id" db:"parent_id"`
	Status          string     `json:"status" db:"status"`
	Criticality     string     `json:"criticality" db:"criticality"`
	InstallDate     *time.Time `json:"install_date" db:"install_date"`
	AcquisitionCost float64    `json:"acquisition_cost" db:"acquisition_cost"`
	Description     string     `json:"description" db:"description"`

	types.BaseEntity
}
