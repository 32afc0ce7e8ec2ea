package maintenance

import (
	"math"
	"time"
)

// MTTR - среднее время ремонта в часах.
func MTTR(repairs []time.Duration) float64 {
	if len(repairs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, r := range repairs {
		sum += r
	}
	return round2(sum.Hours() / float64(len(repairs)))
}

// MTBF - наработка на отказ в часах; без отказов равна всему периоду.
func MTBF(operatingHours float64, failures int) float64 {
	if operatingHours <= 0 {
		return 0
	}
	if failures <= 0 {
		return round2(operatingHours)
	}
	return round2(operatingHours / float64(failures))
}

// Availability = MTBF / (MTBF + MTTR) в процентах.
func Availability(mtbf, mttr float64) float64 {
	if mtbf <= 0 {
		if mttr > 0 {
			return 0
		}
		return 100
	}
	return round2(mtbf / (mtbf + mttr) * 100)
}

// HealthInput - состояние актива для цифрового двойника.
type HealthInput struct {
	Status           string
	OpenByPriority   map[string]int
	OverduePlans     int
	DowntimeHours30d float64
}

var priorityPenalty = map[string]int{
	"low":      3,
	"medium":   7,
	"high":     15,
	"critical": 25,
}

var statusPenalty = map[string]int{
	"maintenance": 15,
	"stopped":     40,
	"inactive":    0,
}

// HealthScore возвращает 0..100, где 100 - исправный актив без открытых заявок.
func HealthScore(in HealthInput) int {
	score := 100
	score -= statusPenalty[in.Status]
	for priority, n := range in.OpenByPriority {
		score -= priorityPenalty[priority] * n
	}
	score -= 10 * in.OverduePlans
	score -= int(math.Min(in.DowntimeHours30d, 40) / 2)

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// HealthLevel - словесная шкала для панели.
func HealthLevel(score int) string {
	switch {
	case score >= 80:
		return "good"
	case score >= 50:
		return "attention"
	default:
		return "critical"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundCents(v float64) float64 {
	return round2(v)
}
