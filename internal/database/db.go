package database

import (
	"context"
	"fmt"

	"hospitalhub/internal/models"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"              // SQLite driver
)

// Supported drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Store reads tenant documents. Every query is scoped to one hospital.
type Store struct {
	db *gorm.DB
}

// Open connects to the database and migrates the document tables
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// in-memory databases exist per connection
		db.DB().SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Migrate creates or updates the document tables
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&models.Medicine{}, &models.Inventory{}).Error; err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// ListMedicines returns the hospital's medicines
func (s *Store) ListMedicines(_ context.Context, hospital string) ([]models.Medicine, error) {
	var out []models.Medicine
	if err := s.db.Where("hospital = ?", hospital).Order("name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}
	return out, nil
}

// ListInventory returns the hospital's generic inventory rows
func (s *Store) ListInventory(_ context.Context, hospital string) ([]models.Inventory, error) {
	var out []models.Inventory
	if err := s.db.Where("hospital = ?", hospital).Order("item_name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return out, nil
}

// InventoryRecords returns both document shapes for hospital as loose
// records, medicines first
func (s *Store) InventoryRecords(ctx context.Context, hospital string) ([]map[string]any, error) {
	medicines, err := s.ListMedicines(ctx, hospital)
	if err != nil {
		return nil, err
	}
	inventory, err := s.ListInventory(ctx, hospital)
	if err != nil {
		return nil, err
	}

	records := make([]map[string]any, 0, len(medicines)+len(inventory))
	for _, m := range medicines {
		records = append(records, m.ToRecord())
	}
	for _, i := range inventory {
		records = append(records, i.ToRecord())
	}
	return records, nil
}

// SaveMedicine inserts or updates a medicine
func (s *Store) SaveMedicine(_ context.Context, m *models.Medicine) error {
	if err := s.db.Save(m).Error; err != nil {
		return fmt.Errorf("failed to save medicine: %w", err)
	}
	return nil
}

// SaveInventory inserts or updates an inventory row
func (s *Store) SaveInventory(_ context.Context, i *models.Inventory) error {
	if err := s.db.Save(i).Error; err != nil {
		return fmt.Errorf("failed to save inventory: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
