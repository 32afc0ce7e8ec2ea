package entities

import (
	"time"

	"cmms-system/pkg/types"
)

const (
	TicketStatusOpen         = "open"
	TicketStatusInProgress   = "in_progress"
	TicketStatusWaitingParts = "waiting_parts"
	TicketStatusResolved     = "resolved"
	TicketStatusClosed       = "closed"
	TicketStatusCancelled    = "cancelled"

	TicketTypeCorrective = "corrective"
	TicketTypePreventive = "preventive"
	TicketTypePredictive = "predictive"
	TicketTypeInspection = "inspection"

	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// OpenTicketStatuses - статусы, при которых заявка считается незакрытой.
var OpenTicketStatuses = []string{TicketStatusOpen, TicketStatusInProgress, TicketStatusWaitingParts}

type Ticket struct {
	ID               uint64     `json:"id" db:"id"`
	Code             string     `json:"code" db:"code"`
	Title            string     `json:"title" db:"title"`
	Description      string     `json:"description" db:"description"`
	AssetID          uint64     `json:"asset_id" db:"asset_id"`
	TechnicianID     *uint64    `json:"technician_id" db:"technician_id"`
	PreventivePlanID *uint64    `json:"preventive_plan_id" db:"preventive_plan_id"`
	Type             string     `json:"type" db:"type"`
	Priority         string     `json:"priority" db:"priority"`
	Status           string     `json:"status" db:"status"`
	OpenedAt         time.Time  `json:"opened_at" db:"opened_at"`
	StartedAt        *time.Time `json:"started_at" db:"started_at"`
	ResolvedAt       *time.Time `json:"resolved_at" db:"resolved_at"`
	ClosedAt         *time.Time `json:"closed_at" db:"closed_at"`
	DowntimeHours    float64    `json:"downtime_hours" db:"downtime_hours"`
	LaborHours       float64    `json:"labor_hours" db:"labor_hours"`
	LaborCost        float64    `json:"labor_cost" db:"labor_cost"`
	PartsCost        float64    `json:"parts_cost" db:"parts_cost"`
	Solution         string     `json:"solution" db:"solution"`
	CreatedBy        *uint64    `json:"created_by" db:"created_by"`

	types.BaseEntity

	AssetName      string `db:"-"`
	AssetCode      string `db:"-"`
	TechnicianName string `db:"-"`
}

type TicketPart struct {
	ID        uint64     `json:"id" db:"id"`
	TicketID  uint64     `json:"ticket_id" db:"ticket_id"`
	PartID    uint64     `json:"part_id" db:"part_id"`
	Quantity  int        `json:"quantity" db:"quantity"`
	UnitCost  float64    `json:"unit_cost" db:"unit_cost"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`

	SKU  string `db:"-"`
	Name string `db:"-"`
}
