package dto

type RequisitionItemInputDTO struct {
	PartID   uint64   `json:"part_id" validate:"required,gt=0"`
	Quantity int      `json:"quantity" validate:"required,gt=0"`
	UnitCost *float64 `json:"unit_cost" validate:"omitempty,gte=0"`
}

// CreateRequisitionDTO: либо явные позиции, либо from_suggestion (опционально по part_ids).
type CreateRequisitionDTO struct {
	FromSuggestion bool                      `json:"from_suggestion"`
	PartIDs        []uint64                  `json:"part_ids" validate:"omitempty,dive,gt=0"`
	Items          []RequisitionItemInputDTO `json:"items" validate:"omitempty,dive"`
	Notes          string                    `json:"notes" validate:"omitempty,max=2000"`
}

type ChangeRequisitionStatusDTO struct {
	Status string `json:"status" validate:"required,requisition_status"`
}

type RequisitionItemDTO struct {
	PartID   uint64  `json:"part_id"`
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	UnitCost float64 `json:"unit_cost"`
	LineCost float64 `json:"line_cost"`
}

type RequisitionDTO struct {
	ID        uint64               `json:"id"`
	Code      string               `json:"code"`
	Status    string               `json:"status"`
	TotalCost float64              `json:"total_cost"`
	Notes     string               `json:"notes"`
	CreatedBy *uint64              `json:"created_by,omitempty"`
	Items     []RequisitionItemDTO `json:"items"`
	CreatedAt string               `json:"created_at"`
	UpdatedAt string               `json:"updated_at"`
}
