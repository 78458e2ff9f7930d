package repository

import (
	"github.com/nimasrn/order-import/internal/model"
	"github.com/shopspring/decimal"
)

type CustomerEntity struct {
	ID          int64           `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	Name        string          `db:"name"         gorm:"column:name;size:100;not null;uniqueIndex:idx_customers_name"`
	CreditLimit decimal.Decimal `db:"credit_limit" gorm:"column:credit_limit;type:decimal(8,2);not null"`
	Orders      []*OrderEntity  `gorm:"foreignKey:CustomerID;references:ID;constraint:OnDelete:CASCADE"`
}

func (CustomerEntity) TableName() string {
	return "customers"
}

func toCustomerEntity(m *model.Customer) *CustomerEntity {
	if m == nil {
		return nil
	}
	e := &CustomerEntity{
		ID:          m.ID,
		Name:        m.Name,
		CreditLimit: m.CreditLimit,
	}
	if len(m.Orders) > 0 {
		e.Orders = make([]*OrderEntity, len(m.Orders))
		for i, o := range m.Orders {
			e.Orders[i] = toOrderEntity(o)
		}
	}
	return e
}

func toCustomerModel(e *CustomerEntity) *model.Customer {
	if e == nil {
		return nil
	}
	m := &model.Customer{
		ID:          e.ID,
		Name:        e.Name,
		CreditLimit: e.CreditLimit,
	}
	if len(e.Orders) > 0 {
		m.Orders = toOrderModels(e.Orders)
	}
	return m
}

func toCustomerModels(entities []*CustomerEntity) []*model.Customer {
	if entities == nil {
		return nil
	}
	models := make([]*model.Customer, len(entities))
	for i, e := range entities {
		models[i] = toCustomerModel(e)
	}
	return models
}

// creditViolationEntity is the row shape of the credit limit audit query.
type creditViolationEntity struct {
	ID              int64           `gorm:"column:id"`
	Name            string          `gorm:"column:name"`
	CreditLimit     decimal.Decimal `gorm:"column:credit_limit"`
	TotalOrderValue decimal.Decimal `gorm:"column:total_order_value"`
}

func toCreditViolationModels(entities []*creditViolationEntity) []*model.CreditViolation {
	models := make([]*model.CreditViolation, len(entities))
	for i, e := range entities {
		models[i] = &model.CreditViolation{
			CustomerID:      e.ID,
			Name:            e.Name,
			CreditLimit:     e.CreditLimit.Round(2),
			TotalOrderValue: e.TotalOrderValue.Round(2),
		}
	}
	return models
}
