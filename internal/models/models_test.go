package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMedicine_ToRecord(t *testing.T) {
	expiry := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	restocked := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	rec := Medicine{
		ID:            "m1",
		Hospital:      "st-mary",
		Name:          "Insulin",
		DosageForm:    DosageInjection,
		ExpiryDate:    expiry,
		Stock:         40,
		Critical:      true,
		LastRestocked: &restocked,
	}.ToRecord()

	assert.Equal(t, map[string]any{
		"_id":           "m1",
		"name":          "Insulin",
		"dosageForm":    "Injection",
		"expiryDate":    expiry,
		"stock":         40,
		"critical":      true,
		"hospital":      "st-mary",
		"lastRestocked": restocked,
	}, rec)
}

func TestInventory_ToRecord(t *testing.T) {
	rec := Inventory{ID: "i1", Hospital: "st-mary", ItemName: "Gloves", Category: CategoryConsumable, Quantity: 300}.ToRecord()

	assert.Equal(t, "Gloves", rec["itemName"])
	assert.Equal(t, 300, rec["quantity"])
	assert.Equal(t, DefaultInventoryThreshold, rec["threshold"])
	assert.NotContains(t, rec, "lastUpdated")
	assert.Equal(t, "inventory", Inventory{}.TableName())
}
