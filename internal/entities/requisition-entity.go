package entities

import "cmms-system/pkg/types"

const (
	RequisitionDraft     = "draft"
	RequisitionSubmitted = "submitted"
	RequisitionApproved  = "approved"
	RequisitionOrdered   = "ordered"
	RequisitionReceived  = "received"
	RequisitionCancelled = "cancelled"
)

type Requisition struct {
	ID        uint64  `json:"id" db:"id"`
	Code      string  `json:"code" db:"code"`
	Status    string  `json:"status" db:"status"`
	TotalCost float64 `json:"total_cost" db:"total_cost"`
	Notes     string  `json:"notes" db:"notes"`
	CreatedBy *uint64 `json:"created_by" db:"created_by"`

	types.BaseEntity

	Items []RequisitionItem `db:"-"`
}

type RequisitionItem struct {
	ID            uint64  `json:"id" db:"id"`
	RequisitionID uint64  `json:"requisition_id" db:"requisition_id"`
	PartID        uint64  `json:"part_id" db:"part_id"`
	Quantity      int     `json:"quantity" db:"quantity"`
	UnitCost      float64 `json:"unit_cost" db:"unit_cost"`

	SKU  string `db:"-"`
	Name string `db:"-"`
}
