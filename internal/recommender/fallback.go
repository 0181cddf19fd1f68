package recommender

import (
	"fmt"
	"time"
)

const (
	fallbackScanLimit  = 5
	fallbackConfidence = 0.6
	minReorderQuantity = 100
)

// Fallback produces threshold-based recommendations without a model. It is
// pure: the same items and now always yield the same response.
//
// Only the first five items are scanned. An item that is low on stock is
// only ever considered for RESTOCK, even if it is also expired.
func Fallback(items []InventoryItem, now time.Time) Response {
	recs := make([]Recommendation, 0, fallbackScanLimit)

	for i := 0; i < len(items) && i < fallbackScanLimit; i++ {
		item := items[i]

		if item.Stock > 0 && item.Stock < item.Threshold {
			recs = append(recs, restockRecommendation(i, item))
		} else if expiry, ok := expired(item, now); ok {
			recs = append(recs, removeRecommendation(i, item, expiry))
		}
	}

	return Response{
		Recommendations: recs,
		Summary: Summary{
			TotalRecommendations: len(recs),
			HighPriority:         countHigh(recs),
			EstimatedImpact:      fmt.Sprintf("Fallback rules: %d items need attention. Enable AI for full analysis.", len(recs)),
		},
	}
}

func restockRecommendation(i int, item InventoryItem) Recommendation {
	urgency := UrgencyMedium
	if item.Critical || item.Stock*2 < item.Threshold {
		urgency = UrgencyHigh
	}

	reasoning := "Rule-based: Stock is below threshold."
	if item.Critical {
		reasoning += " Critical medicine - prioritize."
	}

	stock := float64(item.Stock)
	qty := float64(max(item.Threshold*2, minReorderQuantity))
	meta := &Metadata{
		CurrentStock:        &stock,
		RecommendedQuantity: &qty,
	}
	if item.UsageMetric != nil {
		rate := item.UsageRate
		meta.UsageRate = &rate
		if item.DaysUntilStockout != nil {
			days := float64(*item.DaysUntilStockout)
			meta.DaysUntilStockout = &days
		}
	}

	return Recommendation{
		ID:         fmt.Sprintf("fallback-restock-%d", i+1),
		Type:       TypeRestock,
		Medicine:   MedicineRef{Name: item.Name, ID: item.ID},
		Action:     fmt.Sprintf("Reorder %s - stock at %d (below %d)", item.Name, item.Stock, item.Threshold),
		Reasoning:  reasoning,
		Confidence: fallbackConfidence,
		Urgency:    urgency,
		Metadata:   meta,
	}
}

func removeRecommendation(i int, item InventoryItem, expiry time.Time) Recommendation {
	date := expiry.UTC().Format("2006-01-02")
	return Recommendation{
		ID:         fmt.Sprintf("fallback-remove-%d", i+1),
		Type:       TypeRemove,
		Medicine:   MedicineRef{Name: item.Name, ID: item.ID},
		Action:     fmt.Sprintf("Remove expired %s", item.Name),
		Reasoning:  "Rule-based: Medicine has passed expiration date. Dispose per protocol.",
		Confidence: 1,
		Urgency:    UrgencyHigh,
		Metadata:   &Metadata{ExpirationDate: &date},
	}
}

func expired(item InventoryItem, now time.Time) (time.Time, bool) {
	if item.ExpiryDate == nil {
		return time.Time{}, false
	}
	expiry, ok := parseDate(*item.ExpiryDate)
	if !ok || !expiry.Before(now) {
		return time.Time{}, false
	}
	return expiry, true
}
