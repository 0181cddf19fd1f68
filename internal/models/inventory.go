package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
)

// InventoryCategory represents the category of an inventory item
type InventoryCategory string

const (
	CategoryMedicine   InventoryCategory = "Medicine"
	CategoryEquipment  InventoryCategory = "Equipment"
	CategoryConsumable InventoryCategory = "Consumable"
)

// DefaultInventoryThreshold applies to inventory rows stored without one
const DefaultInventoryThreshold = 10

// Inventory is a generic stocked item (equipment, consumables, bulk
// medicine) belonging to one hospital
type Inventory struct {
	ID          string            `gorm:"primary_key;type:varchar(36)" json:"_id"`
	Hospital    string            `gorm:"index;not null" json:"hospital"`
	ItemName    string            `gorm:"not null" json:"itemName"`
	Category    InventoryCategory `gorm:"not null" json:"category"`
	Quantity    int               `gorm:"not null" json:"quantity"`
	Threshold   int               `gorm:"default:10" json:"threshold"`
	LastUpdated *time.Time        `json:"lastUpdated,omitempty"`
	CreatedAt   time.Time         `json:"-"`
	UpdatedAt   time.Time         `json:"-"`
}

// TableName keeps the singular collection name
func (Inventory) TableName() string {
	return "inventory"
}

// BeforeCreate assigns an id when none is set
func (i *Inventory) BeforeCreate(scope *gorm.Scope) error {
	if i.ID == "" {
		return scope.SetColumn("ID", uuid.NewString())
	}
	return nil
}

// ToRecord converts the row to a loose inventory record
func (i Inventory) ToRecord() map[string]any {
	threshold := i.Threshold
	if threshold <= 0 {
		threshold = DefaultInventoryThreshold
	}
	rec := map[string]any{
		"_id":       i.ID,
		"itemName":  i.ItemName,
		"category":  string(i.Category),
		"quantity":  i.Quantity,
		"threshold": threshold,
		"hospital":  i.Hospital,
	}
	if i.LastUpdated != nil {
		rec["lastUpdated"] = *i.LastUpdated
	}
	return rec
}
