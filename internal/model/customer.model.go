package model

import "github.com/shopspring/decimal"

const MaxCustomerNameLength = 100

type Customer struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	Orders      []*Order        `json:"orders,omitempty"`
}

// CustomerRow is one line of the customers input file.
type CustomerRow struct {
	Line        int
	Name        string
	CreditLimit decimal.Decimal
}
