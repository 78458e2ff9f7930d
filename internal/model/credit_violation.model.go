package model

import "github.com/shopspring/decimal"

// CreditViolation is a customer whose orders add up to more than its credit
// limit.
type CreditViolation struct {
	CustomerID      int64           `json:"customer_id"`
	Name            string          `json:"name"`
	CreditLimit     decimal.Decimal `json:"credit_limit"`
	TotalOrderValue decimal.Decimal `json:"total_order_value"`
}

func (v CreditViolation) Excess() decimal.Decimal {
	return v.TotalOrderValue.Sub(v.CreditLimit)
}
