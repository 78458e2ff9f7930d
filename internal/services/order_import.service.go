package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/nimasrn/order-import/internal/model"
	"github.com/nimasrn/order-import/internal/repository"
	"github.com/nimasrn/order-import/pkg/logger"
	"github.com/nimasrn/order-import/pkg/prom"
)

var (
	ErrDuplicateCustomer = errors.New("duplicate customer name")
)

type CustomerRepository interface {
	CreateWithOrders(ctx context.Context, customers []*model.Customer, batchSize int) ([]*model.Customer, error)
	FindExceedingCreditLimit(ctx context.Context) ([]*model.CreditViolation, error)
	DeleteAll(ctx context.Context) (int64, error)
	ResetSequence(ctx context.Context) error
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type OrderRepository interface {
	DeleteAll(ctx context.Context) (int64, error)
	ResetSequence(ctx context.Context) error
}

type OrderImportService struct {
	customerRepo CustomerRepository
	orderRepo    OrderRepository
	batchSize    int
}

func NewOrderImportService(customerRepo CustomerRepository, orderRepo OrderRepository, batchSize int) *OrderImportService {
	return &OrderImportService{
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		batchSize:    batchSize,
	}
}

// Import stores every customer row together with the order rows that name
// it. Order rows naming no customer are skipped and counted as orphans.
func (s *OrderImportService) Import(ctx context.Context, customers []model.CustomerRow, orders []model.OrderRow) (*model.ImportResult, error) {
	built, orphans, err := BuildCustomers(customers, orders)
	if err != nil {
		return nil, err
	}

	for _, o := range orphans {
		logger.Warn("order references unknown customer, skipped",
			"line", o.Line,
			"customer", o.CustomerName)
	}

	result := &model.ImportResult{Customers: len(built), Orphans: len(orphans)}
	for _, c := range built {
		result.Orders += len(c.Orders)
	}

	err = s.customerRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := s.customerRepo.CreateWithOrders(ctx, built, s.batchSize)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateCustomer) {
				return fmt.Errorf("%w: %v", ErrDuplicateCustomer, err)
			}
			return fmt.Errorf("create customers: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	prom.AddImported(result.Customers, result.Orders, result.Orphans)
	logger.Info("import finished",
		"customers", result.Customers,
		"orders", result.Orders,
		"orphans", result.Orphans)

	return result, nil
}

// Clean empties both tables and restarts their ids at 1. The deletes share
// one transaction; the id resets run after it commits because mysql commits
// implicitly on ALTER TABLE.
func (s *OrderImportService) Clean(ctx context.Context) (*model.CleanResult, error) {
	result := &model.CleanResult{}
	err := s.customerRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if result.OrdersDeleted, err = s.orderRepo.DeleteAll(ctx); err != nil {
			return fmt.Errorf("delete orders: %w", err)
		}
		if result.CustomersDeleted, err = s.customerRepo.DeleteAll(ctx); err != nil {
			return fmt.Errorf("delete customers: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err = s.orderRepo.ResetSequence(ctx); err != nil {
		return nil, err
	}
	if err = s.customerRepo.ResetSequence(ctx); err != nil {
		return nil, err
	}

	prom.AddDeleted("orders", result.OrdersDeleted)
	prom.AddDeleted("customers", result.CustomersDeleted)
	logger.Info("clean finished",
		"customers_deleted", result.CustomersDeleted,
		"orders_deleted", result.OrdersDeleted)

	return result, nil
}

// Check lists the customers whose orders exceed their credit limit.
func (s *OrderImportService) Check(ctx context.Context) ([]*model.CreditViolation, error) {
	violations, err := s.customerRepo.FindExceedingCreditLimit(ctx)
	if err != nil {
		return nil, fmt.Errorf("credit limit check: %w", err)
	}

	for _, v := range violations {
		logger.Debug("credit limit exceeded",
			"customer_id", v.CustomerID,
			"customer", v.Name,
			"excess", v.Excess().StringFixed(2))
	}
	prom.SetCreditViolations(len(violations))
	logger.Info("credit limit check finished", "violations", len(violations))

	return violations, nil
}

// Full replaces the stored data with the given rows and audits the result.
// Each step commits on its own.
func (s *OrderImportService) Full(ctx context.Context, customers []model.CustomerRow, orders []model.OrderRow) (*model.ImportResult, []*model.CreditViolation, error) {
	// reject bad input before anything is deleted
	if _, _, err := BuildCustomers(customers, orders); err != nil {
		return nil, nil, err
	}

	if _, err := s.Clean(ctx); err != nil {
		return nil, nil, err
	}
	imported, err := s.Import(ctx, customers, orders)
	if err != nil {
		return nil, nil, err
	}
	violations, err := s.Check(ctx)
	if err != nil {
		return imported, nil, err
	}
	return imported, violations, nil
}

// BuildCustomers attaches every order row to the customer row of the same
// name. Customer order follows the input; orders keep their input order.
func BuildCustomers(customers []model.CustomerRow, orders []model.OrderRow) ([]*model.Customer, []model.OrderRow, error) {
	byName := make(map[string]*model.Customer, len(customers))
	lines := make(map[string]int, len(customers))
	built := make([]*model.Customer, 0, len(customers))

	for _, row := range customers {
		if first, ok := lines[row.Name]; ok {
			return nil, nil, fmt.Errorf("%w: %q on lines %d and %d", ErrDuplicateCustomer, row.Name, first, row.Line)
		}
		c := &model.Customer{Name: row.Name, CreditLimit: row.CreditLimit}
		byName[row.Name] = c
		lines[row.Name] = row.Line
		built = append(built, c)
	}

	var orphans []model.OrderRow
	for _, row := range orders {
		c, ok := byName[row.CustomerName]
		if !ok {
			orphans = append(orphans, row)
			continue
		}
		c.Orders = append(c.Orders, &model.Order{
			OrderDate:  row.OrderDate,
			OrderValue: row.OrderValue,
		})
	}

	return built, orphans, nil
}
