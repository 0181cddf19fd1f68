package recommender

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Paracetamol 500mg", "Paracetamol 500mg"},
		{"control characters", "Amox\x00ic\nillin\t\x1b[31m\x7f", "Amoxicillin[31m"},
		{"empty", "", ""},
		{"unicode kept", "Ibuprofène", "Ibuprofène"},
		{"replacement character kept", "a\uFFFDb", "a\uFFFDb"},
		{"invalid bytes dropped", "a\xffb\xc3", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_TruncatesTo500Characters(t *testing.T) {
	out := Sanitize(strings.Repeat("é", 800))
	assert.Equal(t, 500, utf8.RuneCountInString(out))

	// control characters do not count towards the limit
	out = Sanitize(strings.Repeat("a\n", 600))
	assert.Equal(t, strings.Repeat("a", 500), out)
}

func TestNormalize_EmptyRecordDefaults(t *testing.T) {
	items := Normalize([]map[string]any{{}, nil})
	require.Len(t, items, 2)

	for _, item := range items {
		assert.Nil(t, item.ID)
		assert.Equal(t, "Unknown", item.Name)
		assert.Equal(t, "Unknown", item.Hospital)
		assert.Equal(t, "General", item.Category)
		assert.Equal(t, 0, item.Stock)
		assert.Equal(t, DefaultThreshold, item.Threshold)
		assert.Equal(t, 100, item.SafetyStock)
		assert.Nil(t, item.ExpiryDate)
		assert.Nil(t, item.LastRestocked)
		assert.False(t, item.Critical)
		assert.Nil(t, item.UsageMetric)
	}
}

func TestNormalize_MedicineRecord(t *testing.T) {
	expiry := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	items := Normalize([]map[string]any{{
		"_id":          "65f1c0ffee",
		"name":         "Insulin",
		"stock":        float64(40),
		"expiryDate":   expiry,
		"critical":     true,
		"hospital":     "St. Mary",
		"dosageForm":   "Injection",
		"manufacturer": "Novo",
		"strength":     "100IU/ml",
	}})
	require.Len(t, items, 1)
	item := items[0]

	require.NotNil(t, item.ID)
	assert.Equal(t, "65f1c0ffee", *item.ID)
	assert.Equal(t, "Insulin", item.Name)
	assert.Equal(t, 40, item.Stock)
	assert.Equal(t, 100, item.Threshold)
	assert.Equal(t, 200, item.SafetyStock)
	require.NotNil(t, item.ExpiryDate)
	assert.Equal(t, "2027-03-01T00:00:00Z", *item.ExpiryDate)
	assert.True(t, item.Critical)
	assert.Equal(t, "St. Mary", item.Hospital)
	assert.Equal(t, "Injection", item.Category)
	assert.Equal(t, "Injection", item.DosageForm)
	assert.Equal(t, "Novo", item.Manufacturer)
	assert.Equal(t, "100IU/ml", item.Strength)
}

func TestNormalize_InventoryRecord(t *testing.T) {
	items := Normalize([]map[string]any{{
		"id":          float64(17),
		"itemName":    "Surgical gloves",
		"name":        "ignored",
		"quantity":    float64(350),
		"threshold":   float64(400),
		"expiry":      "2026-12-31",
		"category":    "Consumable",
		"lastUpdated": "2026-10-01",
	}})
	require.Len(t, items, 1)
	item := items[0]

	require.NotNil(t, item.ID)
	assert.Equal(t, "17", *item.ID)
	assert.Equal(t, "Surgical gloves", item.Name)
	assert.Equal(t, 350, item.Stock)
	assert.Equal(t, 400, item.Threshold)
	assert.Equal(t, 400, item.SafetyStock)
	require.NotNil(t, item.ExpiryDate)
	assert.Equal(t, "2026-12-31", *item.ExpiryDate)
	assert.Equal(t, "Consumable", item.Category)
	require.NotNil(t, item.LastRestocked)
	assert.Equal(t, "2026-10-01", *item.LastRestocked)
}

func TestNormalize_FieldPriority(t *testing.T) {
	items := Normalize([]map[string]any{{
		"stock":      float64(5),
		"quantity":   float64(900),
		"expiryDate": "2026-01-01",
		"expiry":     "2030-01-01",
	}})
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Stock)
	assert.Equal(t, "2026-01-01", *items[0].ExpiryDate)

	// a null stock falls through to quantity
	items = Normalize([]map[string]any{{"stock": nil, "quantity": float64(12)}})
	assert.Equal(t, 12, items[0].Stock)
}

func TestNormalize_UnusableValuesFallThrough(t *testing.T) {
	items := Normalize([]map[string]any{
		{"stock": "n/a", "quantity": float64(5)},
		{"_id": map[string]any{"ref": "x"}, "id": "m2"},
		{"itemName": "", "name": "Aspirin", "stock": float64(3)},
		{"itemName": "", "category": "", "dosageForm": "Tablet"},
	})
	require.Len(t, items, 4)

	assert.Equal(t, 5, items[0].Stock)
	require.NotNil(t, items[1].ID)
	assert.Equal(t, "m2", *items[1].ID)
	assert.Equal(t, "Aspirin", items[2].Name)
	assert.Equal(t, "Unknown", items[3].Name)
	assert.Equal(t, "Tablet", items[3].Category)

	// the low-stock item reaches the fallback rules
	resp := Fallback(items[:1], time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, TypeRestock, resp.Recommendations[0].Type)
}

func TestNormalize_DegradesMalformedValues(t *testing.T) {
	items := Normalize([]map[string]any{{
		"_id":       map[string]any{"$oid": "abc123"},
		"name":      float64(42),
		"stock":     float64(-30),
		"threshold": "not a number",
		"critical":  "yes",
		"hospital":  "General\x00Hospital",
	}})
	require.Len(t, items, 1)
	item := items[0]

	require.NotNil(t, item.ID)
	assert.Equal(t, "abc123", *item.ID)
	assert.Equal(t, "42", item.Name)
	assert.Equal(t, 0, item.Stock)
	assert.Equal(t, DefaultThreshold, item.Threshold)
	assert.False(t, item.Critical)
	assert.Equal(t, "GeneralHospital", item.Hospital)
}

func TestNormalize_NumericStringsAndFractions(t *testing.T) {
	items := Normalize([]map[string]any{{
		"stock":     " 75 ",
		"threshold": 49.9,
		"critical":  "true",
	}})
	require.Len(t, items, 1)
	assert.Equal(t, 75, items[0].Stock)
	assert.Equal(t, 49, items[0].Threshold)
	assert.True(t, items[0].Critical)
	assert.Equal(t, 200, items[0].SafetyStock)
}

func TestNormalize_SanitizesEveryTextField(t *testing.T) {
	dirty := "x\x01y\n" + strings.Repeat("z", 600)
	items := Normalize([]map[string]any{{
		"_id":          dirty,
		"name":         dirty,
		"hospital":     dirty,
		"category":     dirty,
		"manufacturer": dirty,
		"strength":     dirty,
		"dosageForm":   dirty,
		"expiryDate":   dirty,
	}})
	require.Len(t, items, 1)
	item := items[0]

	for _, s := range []string{*item.ID, item.Name, item.Hospital, item.Category, item.Manufacturer, item.Strength, item.DosageForm, *item.ExpiryDate} {
		assert.LessOrEqual(t, utf8.RuneCountInString(s), 500)
		assert.False(t, strings.ContainsAny(s, "\x01\n"))
	}
}
