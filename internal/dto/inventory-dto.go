package dto

import "github.com/aarondl/null/v8"

type CreatePartDTO struct {
	SKU      string  `json:"sku" validate:"required,sku"`
	Name     string  `json:"name" validate:"required,max=150"`
	Category string  `json:"category" validate:"omitempty,max=100"`
	Quantity int     `json:"quantity" validate:"gte=0"`
	MinLevel int     `json:"min_level" validate:"gte=0"`
	UnitCost float64 `json:"unit_cost" validate:"gte=0"`
	Location string  `json:"location" validate:"omitempty,max=100"`
	Supplier string  `json:"supplier" validate:"omitempty,max=150"`
}

// UpdatePartDTO не меняет количество: остаток правится только через AdjustStock.
type UpdatePartDTO struct {
	SKU      null.String  `json:"sku" validate:"omitempty,sku"`
	Name     null.String  `json:"name" validate:"omitempty,max=150"`
	Category null.String  `json:"category" validate:"omitempty,max=100"`
	MinLevel null.Int     `json:"min_level" validate:"omitempty,gte=0"`
	UnitCost null.Float64 `json:"unit_cost" validate:"omitempty,gte=0"`
	Location null.String  `json:"location" validate:"omitempty,max=100"`
	Supplier null.String  `json:"supplier" validate:"omitempty,max=150"`
}

type AdjustStockDTO struct {
	Delta  int    `json:"delta" validate:"required,ne=0"`
	Reason string `json:"reason" validate:"required,max=200"`
}

type PartDTO struct {
	ID                uint64  `json:"id"`
	SKU               string  `json:"sku"`
	Name              string  `json:"name"`
	Category          string  `json:"category"`
	Quantity          int     `json:"quantity"`
	MinLevel          int     `json:"min_level"`
	UnitCost          float64 `json:"unit_cost"`
	StockValue        float64 `json:"stock_value"`
	Location          string  `json:"location"`
	Supplier          string  `json:"supplier"`
	LowStock          bool    `json:"low_stock"`
	SuggestedQuantity int     `json:"suggested_quantity,omitempty"`
	UpdatedAt         string  `json:"updated_at"`
}

type StockMovementDTO struct {
	ID            uint64  `json:"id"`
	PartID        uint64  `json:"part_id"`
	Delta         int     `json:"delta"`
	QuantityAfter int     `json:"quantity_after"`
	Reason        string  `json:"reason"`
	TicketID      *uint64 `json:"ticket_id,omitempty"`
	RequisitionID *uint64 `json:"requisition_id,omitempty"`
	CreatedBy     *uint64 `json:"created_by,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type ImportResultDTO struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}
