package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/order-import/internal/model"
	"github.com/nimasrn/order-import/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrDuplicateCustomer = errors.New("customer name already exists")
)

const DefaultBatchSize = 500

type CustomerRepository struct {
	*pg.DB
}

func NewCustomerRepository(db *pg.DB) *CustomerRepository {
	return &CustomerRepository{
		db,
	}
}

// CreateWithOrders inserts the customers together with their orders,
// batchSize rows per statement. Generated ids are written back into the
// returned models.
func (r *CustomerRepository) CreateWithOrders(ctx context.Context, customers []*model.Customer, batchSize int) ([]*model.Customer, error) {
	if len(customers) == 0 {
		return nil, nil
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	entities := make([]*CustomerEntity, len(customers))
	for i, c := range customers {
		entities[i] = toCustomerEntity(c)
	}

	err := r.Write(ctx).
		Session(&gorm.Session{CreateBatchSize: batchSize}).
		Create(&entities).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateCustomer
		}
		return nil, err
	}

	return toCustomerModels(entities), nil
}

func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.Read(ctx).Model(&CustomerEntity{}).Count(&total).Error
	return total, err
}

// orderTotalExpr sums a customer's orders rounded to cents. sqlite keeps
// decimal columns as doubles, so both sides are rounded before comparing.
const (
	orderTotalExpr  = "ROUND(COALESCE(SUM(orders.order_value), 0), 2)"
	creditLimitExpr = "ROUND(customers.credit_limit, 2)"
)

// FindExceedingCreditLimit returns, ordered by id, every customer whose
// orders add up to more than its credit limit. A customer without orders
// has a total of zero.
func (r *CustomerRepository) FindExceedingCreditLimit(ctx context.Context) ([]*model.CreditViolation, error) {
	var entities []*creditViolationEntity
	err := r.Read(ctx).
		Table("customers").
		Select(`
            customers.id           AS id,
            customers.name         AS name,
            customers.credit_limit AS credit_limit,
            ` + orderTotalExpr + ` AS total_order_value`).
		Joins("LEFT JOIN orders ON orders.customer_id = customers.id").
		Group("customers.id, customers.name, customers.credit_limit").
		Having(orderTotalExpr + " > " + creditLimitExpr).
		Order("customers.id").
		Scan(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toCreditViolationModels(entities), nil
}

// DeleteAll removes every customer and reports how many rows went.
func (r *CustomerRepository) DeleteAll(ctx context.Context) (int64, error) {
	result := r.Write(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&CustomerEntity{})
	return result.RowsAffected, result.Error
}

func (r *CustomerRepository) ResetSequence(ctx context.Context) error {
	return r.ResetIdentity(ctx, CustomerEntity{}.TableName())
}
