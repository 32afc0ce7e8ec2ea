package dto

type TwinNodeDTO struct {
	AssetID        uint64         `json:"asset_id"`
	Code           string         `json:"code"`
	Name           string         `json:"name"`
	Location       string         `json:"location"`
	Status         string         `json:"status"`
	Criticality    string         `json:"criticality"`
	HealthScore    int            `json:"health_score"`
	HealthLevel    string         `json:"health_level"`
	OpenTickets    int            `json:"open_tickets"`
	OpenByPriority map[string]int `json:"open_by_priority"`
	OverduePlans   int            `json:"overdue_plans"`
	DowntimeHours  float64        `json:"downtime_hours_30d"`
	NextDueDate    string         `json:"next_due_date,omitempty"`
	Children       []*TwinNodeDTO `json:"children"`
}
