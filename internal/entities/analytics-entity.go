package entities

import "time"

// RepairSample - длительность одного завершённого корректирующего ремонта.
type RepairSample struct {
	AssetID  uint64
	Duration time.Duration
}

// AssetFailureStat - отказы актива за окно наблюдения.
type AssetFailureStat struct {
	AssetID  uint64
	Code     string
	Name     string
	Since    time.Time
	Failures int
	Downtime float64
}

type AssetCost struct {
	AssetID   uint64
	Code      string
	Name      string
	LaborCost float64
	PartsCost float64
}

type MonthCount struct {
	Month time.Time
	Count int
}

// OpenTicketCount - число незакрытых заявок по активу и приоритету.
type OpenTicketCount struct {
	AssetID  uint64
	Priority string
	Count    int
}
