package model

type ImportResult struct {
	Customers int
	Orders    int
	Orphans   int
}

type CleanResult struct {
	CustomersDeleted int64
	OrdersDeleted    int64
}
