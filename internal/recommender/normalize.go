package recommender

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultThreshold applies when a record carries no threshold
	DefaultThreshold = 100

	maxTextLength       = 500
	criticalSafetyFloor = 200
	defaultSafetyFloor  = 100
)

// Sanitize strips ASCII control characters (0x00-0x1F, 0x7F) and invalid
// UTF-8 bytes, and truncates to 500 characters.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	n := 0
	for i := 0; i < len(s) && n < maxTextLength; {
		r, width := utf8.DecodeRuneInString(s[i:])
		i += width
		// width 1 marks an invalid byte; a literal U+FFFD is kept
		if r == utf8.RuneError && width == 1 {
			continue
		}
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// Normalize converts raw records into InventoryItems. It never fails:
// missing or malformed fields degrade to defaults.
//
// Defaulting rules:
//   - id: "_id" then "id"; nil when absent
//   - name: "itemName" then "name"; "Unknown" when absent
//   - stock: "stock" then "quantity"; 0 when absent, negatives clamp to 0
//   - threshold: 100 when absent, negatives clamp to 0
//   - safetyStock: max(threshold, 200 if critical else 100)
//   - expiryDate: "expiryDate" then "expiry"; nil when absent
//   - hospital: "Unknown"; category: "category" then "dosageForm", else "General"
func Normalize(raw []map[string]any) []InventoryItem {
	items := make([]InventoryItem, 0, len(raw))
	for _, r := range raw {
		items = append(items, normalizeOne(r))
	}
	return items
}

func normalizeOne(raw map[string]any) InventoryItem {
	if raw == nil {
		raw = map[string]any{}
	}

	item := InventoryItem{
		Name:      "Unknown",
		Threshold: DefaultThreshold,
		Hospital:  "Unknown",
		Category:  "General",
	}

	if id, ok := resolveID(raw, itemIDFields); ok {
		id = Sanitize(id)
		item.ID = &id
	}
	if name, ok := resolveText(raw, itemNameFields); ok {
		item.Name = Sanitize(name)
	}
	if stock, ok := resolveNumber(raw, itemStockFields); ok {
		item.Stock = clampInt(stock)
	}
	if threshold, ok := resolveNumber(raw, itemThresholdFields); ok {
		item.Threshold = clampInt(threshold)
	}
	item.Critical = resolveBool(raw, itemCriticalFields)

	floor := defaultSafetyFloor
	if item.Critical {
		floor = criticalSafetyFloor
	}
	item.SafetyStock = max(item.Threshold, floor)

	if expiry, ok := resolveText(raw, itemExpiryFields); ok && expiry != "" {
		expiry = Sanitize(expiry)
		item.ExpiryDate = &expiry
	}
	if hospital, ok := resolveText(raw, itemHospitalFields); ok {
		item.Hospital = Sanitize(hospital)
	}
	if category, ok := resolveText(raw, itemCategoryFields); ok {
		item.Category = Sanitize(category)
	}
	if v, ok := resolveText(raw, []string{"manufacturer"}); ok {
		item.Manufacturer = Sanitize(v)
	}
	if v, ok := resolveText(raw, []string{"strength"}); ok {
		item.Strength = Sanitize(v)
	}
	if v, ok := resolveText(raw, []string{"dosageForm"}); ok {
		item.DosageForm = Sanitize(v)
	}
	if v, ok := resolveText(raw, itemRestockedFields); ok && v != "" {
		v = Sanitize(v)
		item.LastRestocked = &v
	}

	return item
}
