package maintenance

// RestockMultiplier - целевой запас в долях минимального уровня.
const RestockMultiplier = 3

// StockLevel - срез складской позиции, достаточный для расчёта пополнения.
type StockLevel struct {
	PartID   uint64
	SKU      string
	Name     string
	Quantity int
	MinLevel int
	UnitCost float64
	Supplier string
}

type RestockItem struct {
	PartID            uint64  `json:"part_id"`
	SKU               string  `json:"sku"`
	Name              string  `json:"name"`
	Supplier          string  `json:"supplier"`
	CurrentQuantity   int     `json:"current_quantity"`
	MinLevel          int     `json:"min_level"`
	SuggestedQuantity int     `json:"suggested_quantity"`
	UnitCost          float64 `json:"unit_cost"`
	LineCost          float64 `json:"line_cost"`
}

type RestockBatch struct {
	Items     []RestockItem `json:"items"`
	TotalCost float64       `json:"total_cost"`
}

func IsLowStock(quantity, minLevel int) bool {
	return quantity <= minLevel
}

// SuggestRestockQuantity = max(1, minLevel*3 - quantity).
func SuggestRestockQuantity(minLevel, quantity int) int {
	suggested := minLevel*RestockMultiplier - quantity
	if suggested < 1 {
		return 1
	}
	return suggested
}

// BuildRestockBatch пропускает позиции выше минимального уровня, порядок входа сохраняется.
func BuildRestockBatch(levels []StockLevel) RestockBatch {
	batch := RestockBatch{Items: make([]RestockItem, 0, len(levels))}
	for _, l := range levels {
		if !IsLowStock(l.Quantity, l.MinLevel) {
			continue
		}
		qty := SuggestRestockQuantity(l.MinLevel, l.Quantity)
		line := float64(qty) * l.UnitCost
		batch.Items = append(batch.Items, RestockItem{
			PartID:            l.PartID,
			SKU:               l.SKU,
			Name:              l.Name,
			Supplier:          l.Supplier,
			CurrentQuantity:   l.Quantity,
			MinLevel:          l.MinLevel,
			SuggestedQuantity: qty,
			UnitCost:          l.UnitCost,
			LineCost:          roundCents(line),
		})
		batch.TotalCost += line
	}
	batch.TotalCost = roundCents(batch.TotalCost)
	return batch
}

// BatchTotal - сумма quantity*unit_cost по позициям.
func BatchTotal(quantities []int, unitCosts []float64) float64 {
	var total float64
	for i := range quantities {
		if i >= len(unitCosts) {
			break
		}
		total += float64(quantities[i]) * unitCosts[i]
	}
	return roundCents(total)
}
