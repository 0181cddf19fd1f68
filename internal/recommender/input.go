package recommender

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrNoInventory      = errors.New("no data provided")
	ErrEmptyInventory   = errors.New("inventory is empty")
	ErrMissingStockInfo = errors.New("at least one item must have name and stock/quantity")
)

// ValidateInventoryData rejects requests that cannot produce a useful
// analysis. A nil slice means the caller supplied nothing at all.
func ValidateInventoryData(data []map[string]any) error {
	if data == nil {
		return ErrNoInventory
	}
	if len(data) == 0 {
		return ErrEmptyInventory
	}
	for _, item := range data {
		if item == nil {
			continue
		}
		_, hasName := resolveText(item, itemNameFields)
		_, hasStock := item["stock"]
		if !hasStock {
			_, hasStock = item["quantity"]
		}
		if hasName && hasStock {
			return nil
		}
	}
	return ErrMissingStockInfo
}

// fingerprintItem holds the resolved values, so records that normalize
// alike share a key
type fingerprintItem struct {
	ID     any `json:"id"`
	Stock  any `json:"stock"`
	Expiry any `json:"expiry"`
}

type fingerprintDoc struct {
	Hospital  string            `json:"hospital"`
	Inventory []fingerprintItem `json:"inventory"`
	Filters   Filters           `json:"filters"`
}

// Fingerprint derives the response cache key from the tenant, the id,
// stock and expiry of every item, and the filters.
func Fingerprint(hospital string, inventory []map[string]any, filters Filters) string {
	doc := fingerprintDoc{
		Hospital:  strings.TrimSpace(hospital),
		Inventory: make([]fingerprintItem, 0, len(inventory)),
		Filters:   filters,
	}
	for _, item := range inventory {
		var fi fingerprintItem
		if item != nil {
			if id, ok := resolveID(item, itemIDFields); ok {
				fi.ID = id
			}
			if stock, ok := resolveNumber(item, itemStockFields); ok {
				fi.Stock = stock
			}
			if expiry, ok := resolveText(item, itemExpiryFields); ok {
				fi.Expiry = expiry
			}
		}
		doc.Inventory = append(doc.Inventory, fi)
	}

		b, _ := json.Marshal(doc)
	sum := sha256.Sum256(b)
	return "ai:" + hex.EncodeToString(sum[:])
}
