package recommender

import "math"

// ComputeMetrics aggregates usage records per item. usageRate is the
// per-record average of quantity used, not a time-normalized daily rate.
// Records without a resolvable item id are dropped. Items with no records
// get no entry.
func ComputeMetrics(history []map[string]any, inventory []InventoryItem) map[string]UsageMetric {
	metrics := make(map[string]UsageMetric)
	if len(history) == 0 {
		return metrics
	}

	type tally struct {
		total float64
		count int
	}
	byItem := make(map[string]*tally)
	for _, record := range history {
		if record == nil {
			continue
		}
		id, ok := resolveID(record, usageIDFields)
		if !ok {
			continue
		}
		id = Sanitize(id)
		t, exists := byItem[id]
		if !exists {
			t = &tally{}
			byItem[id] = t
		}
		qty, _ := resolveNumber(record, usageQuantityFields)
		t.total += qty
		t.count++
	}

	for _, item := range inventory {
		if item.ID == nil {
			continue
		}
		t, ok := byItem[*item.ID]
		if !ok || t.count == 0 {
			continue
		}

		rate := t.total / float64(t.count)
		var days *int
		if rate > 0 {
			d := int(math.Floor(float64(item.Stock) / rate))
			days = &d
		}

		metrics[*item.ID] = UsageMetric{
			UsageRate:         math.Round(rate*10) / 10,
			DaysUntilStockout: days,
			TotalUsed:         t.total,
			UsageDays:         t.count,
		}
	}

	return metrics
}

// Enrich attaches each item's usage metric, if any
func Enrich(items []InventoryItem, metrics map[string]UsageMetric) []InventoryItem {
	out := make([]InventoryItem, len(items))
	for i, item := range items {
		out[i] = item
		out[i].UsageMetric = nil
		if item.ID == nil {
			continue
		}
		if m, ok := metrics[*item.ID]; ok {
			m := m
			out[i].UsageMetric = &m
		}
	}
	return out
}
