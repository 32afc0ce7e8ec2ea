package dto

import "github.com/aarondl/null/v8"

type CreateAssetDTO struct {
	Code            string  `json:"code" validate:"required,max=50"`
	Name            string  `json:"name" validate:"required,max=150"`
	Category        string  `json:"category" validate:"omitempty,max=100"`
	Location        string  `json:"location" validate:"omitempty,max=150"`
	Manufacturer    string  `json:"manufacturer" validate:"omitempty,max=100"`
	Model           string  `json:"model" validate:"omitempty,max=100"`
	SerialNumber    string  `json:"serial_number" validate:"omitempty,max=100"`
	ParentID        *uint64 `json:"parent_id" validate:"omitempty,gt=0"`
	Status          string  `json:"status" validate:"omitempty,asset_status"`
	Criticality     string  `json:"criticality" validate:"omitempty,criticality"`
	InstallDate     string  `json:"install_date" validate:"omitempty"`
	AcquisitionCost float64 `json:"acquisition_cost" validate:"gte=0"`
	Description     string  `json:"description" validate:"omitempty,max=2000"`
}

// UpdateAssetDTO - частичное обновление. parent_id = 0 отвязывает актив от родителя.
type UpdateAssetDTO struct {
	Code            null.String  `json:"code" validate:"omitempty,max=50"`
	Name            null.String  `json:"name" validate:"omitempty,max=150"`
	Category        null.String  `json:"category" validate:"omitempty,max=100"`
	Location        null.String  `json:"location" validate:"omitempty,max=150"`
	Manufacturer    null.String  `json:"manufacturer" validate:"omitempty,max=100"`
	Model           null.String  `json:"model" validate:"omitempty,max=100"`
	SerialNumber    null.String  `json:"serial_number" validate:"omitempty,max=100"`
	ParentID        null.Uint64  `json:"parent_id"`
	Status          null.String  `json:"status" validate:"omitempty,asset_status"`
	Criticality     null.String  `json:"criticality" validate:"omitempty,criticality"`
	InstallDate     null.String  `json:"install_date"`
	AcquisitionCost null.Float64 `json:"acquisition_cost" validate:"omitempty,gte=0"`
	Description     null.String  `json:"description" validate:"omitempty,max=2000"`
}

type AssetDTO struct {
	ID              uint64  `json:"id"`
	Code            string  `json:"code"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Location        string  `json:"location"`
	Manufacturer    string  `json:"manufacturer"`
	Model           string  `json:"model"`
	SerialNumber    string  `json:"serial_number"`
	ParentID        *uint64 `json:"parent_id"`
	Status          string  `json:"status"`
	Criticality     string  `json:"criticality"`
	InstallDate     string  `json:"install_date,omitempty"`
	AcquisitionCost float64 `json:"acquisition_cost"`
	Description     string  `json:"description"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type AssetTreeNodeDTO struct {
	AssetDTO
	Children []*AssetTreeNodeDTO `json:"children"`
}

type ShortAssetDTO struct {
	ID   uint64 `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}
