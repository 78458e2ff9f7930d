package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID         int64           `json:"id"`
	CustomerID int64           `json:"customer_id"`
	OrderDate  time.Time       `json:"order_date"`
	OrderValue decimal.Decimal `json:"order_value"`
}

// OrderRow is one line of the orders input file. The owning customer is
// referenced by name.
type OrderRow struct {
	Line         int
	CustomerName string
	OrderDate    time.Time
	OrderValue   decimal.Decimal
}
