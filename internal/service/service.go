package service

import (
	"context"
	"time"

	"rental-backoffice/internal/domain"

	"github.com/shopspring/decimal"
)

type CashierService interface {
	OpenRegister(ctx context.Context, actor domain.Actor, openingBalance decimal.Decimal, observations string) (*domain.CashRegister, error)
	CloseRegister(ctx context.Context, actor domain.Actor, registerID int64, observations string) (*domain.CashRegister, error)
	GetRegister(ctx context.Context, id int64) (*domain.CashRegister, error)
	// GetOpenRegister returns nil when the operator has no open register.
	GetOpenRegister(ctx context.Context, operatorID int64) (*domain.CashRegister, error)
	ListRegisters(ctx context.Context, filter domain.RegisterFilter) ([]domain.CashRegister, int64, error)
	GetRegisterSummary(ctx context.Context, registerID int64) (*domain.RegisterSummary, error)

	CreateTransaction(ctx context.Context, actor domain.Actor, in domain.NewTransaction) (*domain.CashTransaction, error)
	CancelTransaction(ctx context.Context, actor domain.Actor, transactionID int64, reason string) (*domain.CashTransaction, error)
	GetTransaction(ctx context.Context, id int64) (*domain.CashTransaction, error)
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.CashTransaction, int64, error)

	DailyReport(ctx context.Context, day time.Time) (*domain.DailyReport, error)
	PeriodReport(ctx context.Context, start, end time.Time) (*domain.PeriodReport, error)
}

type RentalService interface {
	CreateRental(ctx context.Context, actor domain.Actor, in domain.NewRental) (*domain.Rental, error)
	// CompleteRental uses the clock's current time when actualEnd is nil.
	CompleteRental(ctx context.Context, actor domain.Actor, rentalID int64, actualEnd *time.Time) (*domain.Rental, error)
	CancelRental(ctx context.Context, actor domain.Actor, rentalID int64) (*domain.Rental, error)
	GetRental(ctx context.Context, id int64) (*domain.Rental, error)
	ListRentals(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error)
	// CheckOverdueRentals flags active rentals past their expected end and
	// returns how many changed.
	CheckOverdueRentals(ctx context.Context) (int64, error)
}

type PaymentService interface {
	CreatePayment(ctx context.Context, actor domain.Actor, in domain.NewPayment) (*domain.Payment, error)
	GetPayment(ctx context.Context, id int64) (*domain.Payment, error)
	ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, error)
	GetBalance(ctx context.Context, rentalID int64) (*domain.RentalBalance, error)
}

type ItemService interface {
	CreateItem(ctx context.Context, actor domain.Actor, in domain.NewItem) (*domain.Item, error)
	GetItem(ctx context.Context, id int64) (*domain.Item, error)
	UpdateItem(ctx context.Context, actor domain.Actor, id int64, in domain.ItemUpdate) (*domain.Item, error)
	DeactivateItem(ctx context.Context, actor domain.Actor, id int64) error
	ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
	ListCategories(ctx context.Context) ([]string, error)
	SetMaintenance(ctx context.Context, actor domain.Actor, id int64, on bool) (*domain.Item, error)

	ListPricing(ctx context.Context, itemID int64) ([]domain.PricingTier, error)
	ReplacePricing(ctx context.Context, actor domain.Actor, itemID int64, tiers []domain.PricingTier) ([]domain.PricingTier, error)
}

type ClientService interface {
	CreateClient(ctx context.Context, actor domain.Actor, c *domain.Client) (*domain.Client, error)
	GetClient(ctx context.Context, id int64) (*domain.Client, error)
	UpdateClient(ctx context.Context, actor domain.Actor, c *domain.Client) (*domain.Client, error)
	DeactivateClient(ctx context.Context, actor domain.Actor, id int64) error
	ListClients(ctx context.Context, filter domain.ClientFilter) ([]domain.Client, error)
}

type ReportService interface {
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
	// AuditTrail lists the events recorded for one resource, oldest first.
	AuditTrail(ctx context.Context, resource string, resourceID int64) ([]domain.AuditEvent, error)
}

// DispatchService posts a rental's money into the actor's open cash register.
type DispatchService interface {
	SendToCashier(ctx context.Context, actor domain.Actor, rentalID int64, in domain.SendToCashier) ([]domain.CashTransaction, error)
}

// AuditSink receives one event per state change. Implementations must not
// fail the operation that emitted the event.
type AuditSink interface {
	Record(ctx context.Context, ev domain.AuditEvent)
}
