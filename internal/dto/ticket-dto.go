package dto

import "github.com/aarondl/null/v8"

type CreateTicketDTO struct {
	Title         string  `json:"title" validate:"required,max=200"`
	Description   string  `json:"description" validate:"omitempty,max=5000"`
	AssetID       uint64  `json:"asset_id" validate:"required,gt=0"`
	TechnicianID  *uint64 `json:"technician_id" validate:"omitempty,gt=0"`
	Type          string  `json:"type" validate:"omitempty,ticket_type"`
	Priority      string  `json:"priority" validate:"omitempty,ticket_priority"`
	DowntimeHours float64 `json:"downtime_hours" validate:"gte=0"`
}

// UpdateTicketDTO не меняет статус: для этого есть отдельная операция.
// technician_id = 0 снимает исполнителя.
type UpdateTicketDTO struct {
	Title         null.String  `json:"title" validate:"omitempty,max=200"`
	Description   null.String  `json:"description" validate:"omitempty,max=5000"`
	TechnicianID  null.Uint64  `json:"technician_id"`
	Type          null.String  `json:"type" validate:"omitempty,ticket_type"`
	Priority      null.String  `json:"priority" validate:"omitempty,ticket_priority"`
	DowntimeHours null.Float64 `json:"downtime_hours" validate:"omitempty,gte=0"`
	LaborHours    null.Float64 `json:"labor_hours" validate:"omitempty,gte=0"`
	Solution      null.String  `json:"solution" validate:"omitempty,max=5000"`
}

type ChangeTicketStatusDTO struct {
	Status        string   `json:"status" validate:"required,ticket_status"`
	Solution      string   `json:"solution" validate:"omitempty,max=5000"`
	LaborHours    *float64 `json:"labor_hours" validate:"omitempty,gte=0"`
	DowntimeHours *float64 `json:"downtime_hours" validate:"omitempty,gte=0"`
}

type ConsumePartItemDTO struct {
	PartID   uint64 `json:"part_id" validate:"required,gt=0"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type ConsumePartsDTO struct {
	Items []ConsumePartItemDTO `json:"items" validate:"required,min=1,dive"`
}

type TicketPartDTO struct {
	PartID   uint64  `json:"part_id"`
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	UnitCost float64 `json:"unit_cost"`
	LineCost float64 `json:"line_cost"`
}

type TicketDTO struct {
	ID               uint64          `json:"id"`
	Code             string          `json:"code"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Asset            ShortAssetDTO   `json:"asset"`
	TechnicianID     *uint64         `json:"technician_id"`
	TechnicianName   string          `json:"technician_name,omitempty"`
	PreventivePlanID *uint64         `json:"preventive_plan_id"`
	Type             string          `json:"type"`
	Priority         string          `json:"priority"`
	Status           string          `json:"status"`
	OpenedAt         string          `json:"opened_at"`
	StartedAt        string          `json:"started_at,omitempty"`
	ResolvedAt       string          `json:"resolved_at,omitempty"`
	ClosedAt         string          `json:"closed_at,omitempty"`
	DowntimeHours    float64         `json:"downtime_hours"`
	LaborHours       float64         `json:"labor_hours"`
	LaborCost        float64         `json:"labor_cost"`
	PartsCost        float64         `json:"parts_cost"`
	TotalCost        float64         `json:"total_cost"`
	Solution         string          `json:"solution"`
	Parts            []TicketPartDTO `json:"parts,omitempty"`
	CreatedAt        string          `json:"created_at"`
	UpdatedAt        string          `json:"updated_at"`
}

type AIResponseDTO struct {
	Text string `json:"text"`
}
