package entities

import (
	"time"

	"cmms-system/pkg/types"
)

type SparePart struct {
	ID       uint64  `json:"id" db:"id"`
	SKU      string  `json:"sku" db:"sku"`
	Name     string  `json:"name" db:"name"`
	Category string  `json:"category" db:"category"`
	Quantity int     `json:"quantity" db:"quantity"`
	MinLevel int     `json:"min_level" db:"min_level"`
	UnitCost float64 `json:"unit_cost" db:"unit_cost"`
	Location string  `json:"location" db:"location"`
	Supplier string  `json:"supplier" db:"supplier"`

	types.BaseEntity
}

// StockMovement - запись журнала движения запчасти; delta со знаком.
type StockMovement struct {
	ID            uint64     `json:"id" db:"id"`
	PartID        uint64     `json:"part_id" db:"part_id"`
	Delta         int        `json:"delta" db:"delta"`
	QuantityAfter int        `json:"quantity_after" db:"quantity_after"`
	Reason        string     `json:"reason" db:"reason"`
	TicketID      *uint64    `json:"ticket_id" db:"ticket_id"`
	RequisitionID *uint64    `json:"requisition_id" db:"requisition_id"`
	CreatedBy     *uint64    `json:"created_by" db:"created_by"`
	CreatedAt     *time.Time `json:"created_at" db:"created_at"`
}
