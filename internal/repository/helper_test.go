package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nimasrn/order-import/pkg/pg"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB migrates a throwaway sqlite file with the real migrations.
func setupTestDB(t *testing.T) *pg.DB {
	cfg := pg.Config{
		Driver:   pg.DriverSQLite,
		Database: filepath.Join(t.TempDir(), "orders.db"),
	}
	require.NoError(t, pg.Migrate(cfg))

	db, err := pg.Open(cfg, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// storedCustomer loads a customer and its orders, ordered by id.
func storedCustomer(t *testing.T, db *pg.DB, name string) *CustomerEntity {
	var entity CustomerEntity
	err := db.Read(context.Background()).
		Preload("Orders", func(tx *gorm.DB) *gorm.DB { return tx.Order("orders.id") }).
		Where("name = ?", name).
		First(&entity).
		Error
	require.NoError(t, err)
	return &entity
}

func storedOrders(t *testing.T, db *pg.DB, customerID int64) []*OrderEntity {
	var entities []*OrderEntity
	err := db.Read(context.Background()).
		Where("customer_id = ?", customerID).
		Order("id").
		Find(&entities).
		Error
	require.NoError(t, err)
	return entities
}
