package repository

import (
	"context"

	"github.com/nimasrn/order-import/pkg/pg"
	"gorm.io/gorm"
)

type OrderRepository struct {
	*pg.DB
}

func NewOrderRepository(db *pg.DB) *OrderRepository {
	return &OrderRepository{
		db,
	}
}

func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.Read(ctx).Model(&OrderEntity{}).Count(&total).Error
	return total, err
}

// DeleteAll removes every order and reports how many rows went.
func (r *OrderRepository) DeleteAll(ctx context.Context) (int64, error) {
	result := r.Write(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&OrderEntity{})
	return result.RowsAffected, result.Error
}

func (r *OrderRepository) ResetSequence(ctx context.Context) error {
	return r.ResetIdentity(ctx, OrderEntity{}.TableName())
}
