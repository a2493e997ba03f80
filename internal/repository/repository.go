package repository

import (
	"context"
	"time"

	"rental-backoffice/internal/domain"

	"github.com/shopspring/decimal"
)

// Lookups return a domain NotFound error when the row does not exist, except
// where noted.

type CashRegisterRepository interface {
	Create(ctx context.Context, reg *domain.CashRegister) error
	GetByID(ctx context.Context, id int64) (*domain.CashRegister, error)
	// GetByIDForUpdate locks the register row until the surrounding
	// transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.CashRegister, error)
	// GetOpenByOperator returns nil, nil when the operator has no open register.
	GetOpenByOperator(ctx context.Context, operatorID int64) (*domain.CashRegister, error)
	Close(ctx context.Context, reg *domain.CashRegister) error
	List(ctx context.Context, filter domain.RegisterFilter) ([]domain.CashRegister, int64, error)
	ListOpenedBetween(ctx context.Context, from, to time.Time) ([]domain.CashRegister, error)
}

type CashTransactionRepository interface {
	Create(ctx context.Context, tx *domain.CashTransaction) error
	GetByID(ctx context.Context, id int64) (*domain.CashTransaction, error)
	Cancel(ctx context.Context, tx *domain.CashTransaction) error
	List(ctx context.Context, filter domain.TransactionFilter) ([]domain.CashTransaction, int64, error)
	ListByRegister(ctx context.Context, registerID int64) ([]domain.CashTransaction, error)
	// SumTotals aggregates the non-cancelled movements of one register.
	SumTotals(ctx context.Context, registerID int64) (domain.RegisterTotals, error)
	SumByCategory(ctx context.Context, registerID int64) ([]domain.CategoryTotal, error)
	SumByPaymentMethod(ctx context.Context, registerID int64) ([]domain.PaymentMethodTotal, error)
	// SentByReference returns the signed sum (entries positive, exits
	// negative) of non-cancelled movements tagged with ref, keyed by category.
	SentByReference(ctx context.Context, ref domain.Reference) (map[domain.TransactionCategory]decimal.Decimal, error)
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id int64) (*domain.Rental, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Rental, error)
	// Complete persists actual end, late fee, total and the completed status.
	Complete(ctx context.Context, rental *domain.Rental) error
	UpdateStatus(ctx context.Context, id int64, status domain.RentalStatus, at time.Time) error
	List(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error)
	// MarkOverdue flags every active rental whose expected end is before now
	// and returns how many rows changed.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
	CountByStatus(ctx context.Context, statuses ...domain.RentalStatus) (int64, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	List(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, error)
	SumByRental(ctx context.Context, rentalID int64) (decimal.Decimal, error)
	SumBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Item, error)
	// GetByCode returns nil, nil when no item carries code.
	GetByCode(ctx context.Context, code string) (*domain.Item, error)
	Update(ctx context.Context, item *domain.Item) error
	SetStatus(ctx context.Context, id int64, status domain.ItemStatus, at time.Time) error
	Deactivate(ctx context.Context, id int64, at time.Time) error
	List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
	Categories(ctx context.Context) ([]string, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)

	ListPricing(ctx context.Context, itemID int64) ([]domain.PricingTier, error)
	GetPricingTier(ctx context.Context, id int64) (*domain.PricingTier, error)
	// ReplacePricing deletes every tier of the item and inserts tiers in order.
	ReplacePricing(ctx context.Context, itemID int64, tiers []domain.PricingTier) error
}

type ClientRepository interface {
	Create(ctx context.Context, c *domain.Client) error
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) error
	List(ctx context.Context, filter domain.ClientFilter) ([]domain.Client, error)
	CountActive(ctx context.Context) (int64, error)
}

type AuditRepository interface {
	Append(ctx context.Context, ev *domain.AuditEvent) error
	List(ctx context.Context, resource string, resourceID int64) ([]domain.AuditEvent, error)
}

// Repositories bundles every repository bound to one connection or
// transaction.
type Repositories struct {
	Registers    CashRegisterRepository
	Transactions CashTransactionRepository
	Rentals      RentalRepository
	Payments     PaymentRepository
	Items        ItemRepository
	Clients      ClientRepository
	Audit        AuditRepository
}

// Store hands out repositories and runs callbacks atomically. When fn
// returns an error nothing it wrote is kept.
type Store interface {
	Repos() Repositories
	RunInTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	Ping(ctx context.Context) error
}
