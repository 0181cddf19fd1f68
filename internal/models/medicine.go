package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
)

// DosageForm is the physical presentation of a medicine
type DosageForm string

const (
	DosageTablet    DosageForm = "Tablet"
	DosageCapsule   DosageForm = "Capsule"
	DosageSyrup     DosageForm = "Syrup"
	DosageInjection DosageForm = "Injection"
	DosageOther     DosageForm = "Other"
)

// Medicine is a stocked medicine belonging to one hospital
type Medicine struct {
	ID            string     `gorm:"primary_key;type:varchar(36)" json:"_id"`
	Hospital      string     `gorm:"index;not null" json:"hospital"`
	Name          string     `gorm:"not null" json:"name"`
	Manufacturer  string     `json:"manufacturer,omitempty"`
	DosageForm    DosageForm `gorm:"not null" json:"dosageForm"`
	Strength      string     `json:"strength,omitempty"`
	ExpiryDate    time.Time  `gorm:"not null" json:"expiryDate"`
	Stock         int        `gorm:"not null" json:"stock"`
	Critical      bool       `gorm:"default:false" json:"critical"`
	LastRestocked *time.Time `json:"lastRestocked,omitempty"`
	CreatedAt     time.Time  `json:"-"`
	UpdatedAt     time.Time  `json:"-"`
}

// BeforeCreate assigns an id when none is set
func (m *Medicine) BeforeCreate(scope *gorm.Scope) error {
	if m.ID == "" {
		return scope.SetColumn("ID", uuid.NewString())
	}
	return nil
}

// ToRecord converts the medicine to a loose inventory record
func (m Medicine) ToRecord() map[string]any {
	rec := map[string]any{
		"_id":        m.ID,
		"name":       m.Name,
		"dosageForm": string(m.DosageForm),
		"expiryDate": m.ExpiryDate,
		"stock":      m.Stock,
		"critical":   m.Critical,
		"hospital":   m.Hospital,
	}
	if m.Manufacturer != "" {
		rec["manufacturer"] = m.Manufacturer
	}
	if m.Strength != "" {
		rec["strength"] = m.Strength
	}
	if m.LastRestocked != nil {
		rec["lastRestocked"] = *m.LastRestocked
	}
	return rec
}
