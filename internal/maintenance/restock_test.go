package maintenance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSuggestRestockQuantity(t *testing.T) {
	cases := []struct {
		minLevel, quantity, want int
	}{
		{5, 2, 13},
		{5, 5, 10},
		{5, 15, 1},
		{5, 40, 1},
		{0, 0, 1},
		{1, 0, 3},
	}
	for _, tc := range cases {
		got := SuggestRestockQuantity(tc.minLevel, tc.quantity)
		assert.Equal(t, tc.want, got, "min=%d qty=%d", tc.minLevel, tc.quantity)
		assert.GreaterOrEqual(t, got, 1)
	}
}

func TestSuggestRestockQuantity_NeverBelowOne(t *testing.T) {
	for minLevel := 0; minLevel <= 20; minLevel++ {
		for qty := 0; qty <= 100; qty++ {
			got := SuggestRestockQuantity(minLevel, qty)
			want := minLevel*3 - qty
			if want < 1 {
				want = 1
			}
			assert.Equal(t, want, got)
		}
	}
}

func TestBuildRestockBatch(t *testing.T) {
	levels := []StockLevel{
		{PartID: 1, SKU: "BRG-6205", Quantity: 2, MinLevel: 5, UnitCost: 12.5},
		{PartID: 2, SKU: "FLT-OIL", Quantity: 30, MinLevel: 5, UnitCost: 99},
		{PartID: 3, SKU: "BLT-A42", Quantity: 4, MinLevel: 4, UnitCost: 7.3},
	}

	batch := BuildRestockBatch(levels)

	if assert.Len(t, batch.Items, 2) {
		assert.Equal(t, uint64(1), batch.Items[0].PartID)
		assert.Equal(t, 13, batch.Items[0].SuggestedQuantity)
		assert.Equal(t, 162.5, batch.Items[0].LineCost)

		assert.Equal(t, uint64(3), batch.Items[1].PartID)
		assert.Equal(t, 8, batch.Items[1].SuggestedQuantity)
		assert.Equal(t, 58.4, batch.Items[1].LineCost)
	}
	assert.Equal(t, 220.9, batch.TotalCost)
}

func TestBuildRestockBatch_TotalMatchesSumOfLines(t *testing.T) {
	levels := []StockLevel{
		{PartID: 1, Quantity: 0, MinLevel: 3, UnitCost: 1.1},
		{PartID: 2, Quantity: 1, MinLevel: 2, UnitCost: 2.2},
		{PartID: 3, Quantity: 2, MinLevel: 7, UnitCost: 3.3},
	}
	batch := BuildRestockBatch(levels)

	qty := make([]int, 0, len(batch.Items))
	costs := make([]float64, 0, len(batch.Items))
	for _, it := range batch.Items {
		qty = append(qty, it.SuggestedQuantity)
		costs = append(costs, it.UnitCost)
	}
	assert.Equal(t, BatchTotal(qty, costs), batch.TotalCost)
}

func TestBuildRestockBatch_Empty(t *testing.T) {
	batch := BuildRestockBatch(nil)
	assert.Empty(t, batch.Items)
	assert.Zero(t, batch.TotalCost)
}

func TestMetrics(t *testing.T) {
	assert.Equal(t, 0.0, MTTR(nil))
	assert.Equal(t, 3.0, MTTR([]time.Duration{2 * time.Hour, 4 * time.Hour}))

	assert.Equal(t, 720.0, MTBF(720, 0))
	assert.Equal(t, 240.0, MTBF(720, 3))
	assert.Equal(t, 0.0, MTBF(0, 3))

	assert.Equal(t, 98.77, Availability(240, 3))
	assert.Equal(t, 100.0, Availability(0, 0))
	assert.Equal(t, 0.0, Availability(0, 5))
}

func TestHealthScore(t *testing.T) {
	assert.Equal(t, 100, HealthScore(HealthInput{Status: "operational"}))

	score := HealthScore(HealthInput{
		Status:           "maintenance",
		OpenByPriority:   map[string]int{"high": 1, "low": 2},
		OverduePlans:     1,
		DowntimeHours30d: 8,
	})
	assert.Equal(t, 100-15-15-6-10-4, score)
	assert.Equal(t, "attention", HealthLevel(score))

	assert.Equal(t, 0, HealthScore(HealthInput{Status: "stopped", OpenByPriority: map[string]int{"critical": 5}}))
	assert.Equal(t, "critical", HealthLevel(0))
	assert.Equal(t, "good", HealthLevel(100))
}
