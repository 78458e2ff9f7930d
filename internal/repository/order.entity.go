package repository

import (
	"time"

	"github.com/nimasrn/order-import/internal/model"
	"github.com/shopspring/decimal"
)

type OrderEntity struct {
	ID         int64           `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	CustomerID int64           `db:"customer_id" gorm:"column:customer_id;not null;index:idx_orders_customer_id"`
	OrderDate  time.Time       `db:"order_date"  gorm:"column:order_date;not null"`
	OrderValue decimal.Decimal `db:"order_value" gorm:"column:order_value;type:decimal(8,2);not null"`
}

func (OrderEntity) TableName() string {
	return "orders"
}

func toOrderEntity(m *model.Order) *OrderEntity {
	if m == nil {
		return nil
	}
	return &OrderEntity{
		ID:         m.ID,
		CustomerID: m.CustomerID,
		OrderDate:  m.OrderDate,
		OrderValue: m.OrderValue,
	}
}

func toOrderModel(e *OrderEntity) *model.Order {
	if e == nil {
		return nil
	}
	return &model.Order{
		ID:         e.ID,
		CustomerID: e.CustomerID,
		OrderDate:  e.OrderDate,
		OrderValue: e.OrderValue,
	}
}

func toOrderModels(entities []*OrderEntity) []*model.Order {
	if entities == nil {
		return nil
	}
	models := make([]*model.Order, len(entities))
	for i, e := range entities {
		models[i] = toOrderModel(e)
	}
	return models
}
