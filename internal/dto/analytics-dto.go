package dto

type AssetReliabilityDTO struct {
	AssetID      uint64  `json:"asset_id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Failures     int     `json:"failures"`
	MTTRHours    float64 `json:"mttr_hours"`
	MTBFHours    float64 `json:"mtbf_hours"`
	Availability float64 `json:"availability"`
}

type AssetCostDTO struct {
	AssetID   uint64  `json:"asset_id"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	LaborCost float64 `json:"labor_cost"`
	PartsCost float64 `json:"parts_cost"`
	TotalCost float64 `json:"total_cost"`
}

type MonthlyTrendDTO struct {
	Month    string `json:"month"`
	Opened   int    `json:"opened"`
	Resolved int    `json:"resolved"`
}

type WorkloadDTO struct {
	TechnicianID uint64  `json:"technician_id"`
	Name         string  `json:"name"`
	OpenTickets  int     `json:"open_tickets"`
	LaborHours   float64 `json:"labor_hours"`
}

type DashboardDTO struct {
	AssetsByStatus     map[string]int        `json:"assets_by_status"`
	OpenByPriority     map[string]int        `json:"open_tickets_by_priority"`
	TicketsByStatus    map[string]int        `json:"tickets_by_status"`
	TicketsByType      map[string]int        `json:"tickets_by_type"`
	OverduePlans       int                   `json:"overdue_plans"`
	LowStockParts      int                   `json:"low_stock_parts"`
	InventoryValue     float64               `json:"inventory_value"`
	MTTRHours          float64               `json:"mttr_hours"`
	Reliability        []AssetReliabilityDTO `json:"reliability"`
	CostByAsset        []AssetCostDTO        `json:"cost_by_asset"`
	MonthlyTrend       []MonthlyTrendDTO     `json:"monthly_trend"`
	TechnicianWorkload []WorkloadDTO         `json:"technician_workload"`
	GeneratedAt        string                `json:"generated_at"`
}
