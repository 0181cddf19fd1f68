package recommender

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Field aliases, in priority order. The first key holding a usable value
// wins; null, unconvertible and empty values fall through to the next alias.
var (
	itemIDFields        = []string{"_id", "id"}
	itemNameFields      = []string{"itemName", "name"}
	itemStockFields     = []string{"stock", "quantity"}
	itemThresholdFields = []string{"threshold"}
	itemExpiryFields    = []string{"expiryDate", "expiry"}
	itemCriticalFields  = []string{"critical"}
	itemHospitalFields  = []string{"hospital"}
	itemCategoryFields  = []string{"category", "dosageForm"}
	itemRestockedFields = []string{"lastRestocked", "lastUpdated"}

	usageIDFields       = []string{"medicineId", "itemId", "medicine", "_id"}
	usageQuantityFields = []string{"quantityUsed", "quantity", "used"}
)

// resolve returns the first non-null value among keys
func resolve(raw map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// resolveID returns the record identifier as a string. Mongo-style
// {"$oid": "..."} wrappers are unwrapped.
func resolveID(raw map[string]any, keys []string) (string, bool) {
	for _, k := range keys {
		if id := idString(raw[k]); id != "" {
			return id, true
		}
	}
	return "", false
}

func idString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case map[string]any:
		if oid, ok := t["$oid"].(string); ok {
			return oid
		}
		return ""
	case fmt.Stringer:
		return t.String()
	default:
		return ""
	}
}

// resolveNumber returns the first numeric value among keys. Numeric strings
// are accepted; anything else is treated as absent.
func resolveNumber(raw map[string]any, keys []string) (float64, bool) {
	for _, k := range keys {
		if f, ok := toNumber(raw[k]); ok {
			return f, true
		}
	}
	return 0, false
}

func toNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// resolveBool accepts JSON booleans and the strings "true"/"false"
func resolveBool(raw map[string]any, keys []string) bool {
	v, ok := resolve(raw, keys)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	default:
		return false
	}
}

// resolveText returns the first non-empty value among keys rendered as text
func resolveText(raw map[string]any, keys []string) (string, bool) {
	for _, k := range keys {
		if text := toText(raw[k]); text != "" {
			return text, true
		}
	}
	return "", false
}

func toText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// clampInt converts to a non-negative int, truncating fractions
func clampInt(f float64) int {
	if f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Floor(f))
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate accepts the date shapes the inventory stores emit. Unparseable
// values report false and are treated as "no date".
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
