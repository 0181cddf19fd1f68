package recommender

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	inventoryBudget = 12000
	usageBudget     = 6000
	truncatedMarker = "\n... (truncated)"
	noUsageHistory  = "No usage history provided. Base recommendations on stock levels and expiration dates only."
)

// SystemPrompt fixes the model's role and domain rules for every request
const SystemPrompt = `You are an inventory optimization assistant for a hospital pharmacy. You review medicine stock data and propose RESTOCK, REMOVE and ADD actions for hospital administrators.

## Rules
- Patient safety comes first. Never trade medicine availability for savings; critical medicines need a larger safety stock.
- Be risk-averse. For life-saving medicines, over-stocking is preferable to a stockout.
- Be cost-conscious. Avoid waste from expiry while keeping medicines available.
- Respect regulation. Expired medicines must be disposed of according to pharmacy disposal protocol and storage requirements.
- Account for supplier lead times and seasonal demand (influenza, allergy seasons).

## RESTOCK
- Weigh current stock, usage rate, lead time and criticality.
- Give a recommended order quantity, an urgency and days until stockout when usage data allows it.
- HIGH urgency for critical medicines or stockout within 7 days, MEDIUM within 14 days, LOW for preventive restocking.

## REMOVE
- Weigh expiry dates, usage patterns, storage cost and obsolescence.
- State the reason and, for expired stock, the disposal method.
- Do not remove critical medicines unless they are expired. Suggest transfer or donation for near-expiry high-value stock.

## ADD
- Weigh seasonal trends, hospital specialties, demand and formulary gaps.
- Give an initial order quantity and a justification based on usage of comparable medicines.

## Output
- Give every recommendation a unique id such as "rec-restock-1" or "rec-remove-2".
- Write reasoning for clinical staff in two or three sentences.
- Confidence is a number between 0 and 1 reflecting data quality; lower it and say why when data is thin.
- Put supporting numbers (currentStock, recommendedQuantity, daysUntilStockout, ...) in metadata.
`

const analysisTemplate = `Analyze the hospital medicine inventory and usage history below and produce RESTOCK, REMOVE or ADD recommendations.

## Inventory Data
%s

## Usage History
%s

## Context
- Current date: %s
- Filters: %s
- Safety stock: treat 100 units or two weeks of supply as the minimum for critical medicines

## Steps
1. Check every medicine for low stock (RESTOCK), expiry or overstock (REMOVE), and gaps (ADD).
2. Compute days until stockout where usage data allows.
3. Prioritize critical and life-saving medicines.
4. Consider seasonal demand.
5. Explain each recommendation.

Respond with valid JSON only, matching this structure:
{"recommendations": [{"id": string, "type": "RESTOCK"|"REMOVE"|"ADD", "medicine": {"name": string, "id": string|null}, "action": string, "reasoning": string, "confidence": number, "urgency": "HIGH"|"MEDIUM"|"LOW", "metadata": {...}}], "summary": {"totalRecommendations": number, "highPriority": number, "estimatedImpact": string}}`

// BuildPrompt renders the per-request analysis instruction. Inventory and
// usage JSON are cut to fixed budgets so request size does not grow with
// tenant data volume.
func BuildPrompt(inventory []InventoryItem, usage []map[string]any, filters Filters, now time.Time) string {
	inv := "[]"
	if len(inventory) > 0 {
		inv = budgetJSON(inventory, inventoryBudget)
	}

	history := noUsageHistory
	if len(usage) > 0 {
		history = budgetJSON(usage, usageBudget)
	}

	filtersText := "None"
	if !filters.IsZero() {
		if b, err := json.Marshal(filters); err == nil {
			filtersText = string(b)
		}
	}

	return fmt.Sprintf(analysisTemplate, inv, history, now.UTC().Format("2006-01-02"), filtersText)
}

func budgetJSON(v any, budget int) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return truncate(string(b), budget)
}

// truncate cuts s to at most budget bytes on a rune boundary and appends
// the truncation marker when anything was dropped.
func truncate(s string, budget int) string {
	if len(s) <= budget {
		return s
	}
	cut := budget
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	var b strings.Builder
	b.Grow(cut + len(truncatedMarker))
	b.WriteString(s[:cut])
	b.WriteString(truncatedMarker)
	return b.String()
}
