package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"rental-backoffice/internal/domain"
	"rental-backoffice/internal/logger"
	"rental-backoffice/internal/repository"

	"github.com/shopspring/decimal"
)

const minCancellationReason = 3

type cashierService struct {
	store repository.Store
	clock domain.Clock
	audit AuditSink
}

func NewCashierService(store repository.Store, clock domain.Clock, audit AuditSink) CashierService {
	return &cashierService{store: store, clock: clock, audit: audit}
}

func (s *cashierService) OpenRegister(ctx context.Context, actor domain.Actor, openingBalance decimal.Decimal, observations string) (*domain.CashRegister, error) {
	logger.EnterMethod("cashierService.OpenRegister", "operatorID", actor.UserID, "openingBalance", openingBalance)

	if openingBalance.IsNegative() {
		return nil, domain.Validation("opening balance must not be negative")
	}
	if !domain.HasCentsPrecision(openingBalance) {
		return nil, domain.Validation("opening balance must have at most two decimal places")
	}

	now := s.clock.Now()
	reg := &domain.CashRegister{
		OperatorID:     actor.UserID,
		OpeningBalance: openingBalance,
		TotalEntries:   decimal.Zero,
		TotalExits:     decimal.Zero,
		Status:         domain.RegisterStatusOpen,
		Observations:   strings.TrimSpace(observations),
		OpenedAt:       now,
		UpdatedAt:      now,
	}

	err := s.store.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		existing, err := repos.Registers.GetOpenByOperator(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.Conflict("operator already has an open cash register (#%d)", existing.ID)
		}
		return repos.Registers.Create(ctx, reg)
	})
	if err != nil {
		logger.ExitMethodWithError("cashierService.OpenRegister", err, "operatorID", actor.UserID)
		return nil, err
	}

	s.audit.Record(ctx, auditEvent(actor, domain.AuditCashierOpen, "cash_register", reg.ID,
		"opening balance %s", reg.OpeningBalance.StringFixed(2)))
	logger.Info("Cash register opened", "registerID", reg.ID, "operatorID", actor.UserID)
	logger.ExitMethod("cashierService.OpenRegister", "registerID", reg.ID)
	return reg, nil
}

func (s *cashierService) CloseRegister(ctx context.Context, actor domain.Actor, registerID int64, observations string) (*domain.CashRegister, error) {
	logger.EnterMethod("cashierService.CloseRegister", "registerID", registerID, "actorID", actor.UserID)

	var reg *domain.CashRegister
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		reg, err = repos.Registers.GetByIDForUpdate(ctx, registerID)
		if err != nil {
			return err
		}
		if !reg.IsOpen() {
			return domain.Conflict("cash register is already closed")
		}
		if err := checkOwnership(actor, reg); err != nil {
			return err
		}

		// Totals are recomputed from the movements themselves; cancelled
		// ones never count.
		totals, err := repos.Transactions.SumTotals(ctx, reg.ID)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		reg.TotalEntries = totals.Entries
		reg.TotalExits = totals.Exits
		reg.ClosingBalance = decimal.NewNullDecimal(reg.OpeningBalance.Add(totals.Entries).Sub(totals.Exits))
		reg.Status = domain.RegisterStatusClosed
		reg.ClosedAt = &now
		reg.UpdatedAt = now
		if obs := strings.TrimSpace(observations); obs != "" {
			reg.Observations = obs
		}
		return repos.Registers.Close(ctx, reg)
	})
	if err != nil {
		logger.ExitMethodWithError("cashierService.CloseRegister", err, "registerID", registerID)
		return nil, err
	}

	s.audit.Record(ctx, auditEvent(actor, domain.AuditCashierClose, "cash_register", reg.ID,
		"closing balance %s (entries %s, exits %s)", reg.ClosingBalance.Decimal.StringFixed(2),
		reg.TotalEntries.StringFixed(2), reg.TotalExits.StringFixed(2)))
	logger.Info("Cash register closed", "registerID", reg.ID, "closingBalance", reg.ClosingBalance.Decimal.StringFixed(2))
	logger.ExitMethod("cashierService.CloseRegister", "registerID", reg.ID)
	return reg, nil
}

func (s *cashierService) GetRegister(ctx context.Context, id int64) (*domain.CashRegister, error) {
	return s.store.Repos().Registers.GetByID(ctx, id)
}

func (s *cashierService) GetOpenRegister(ctx context.Context, operatorID int64) (*domain.CashRegister, error) {
	return s.store.Repos().Registers.GetOpenByOperator(ctx, operatorID)
}

func (s *cashierService) ListRegisters(ctx context.Context, filter domain.RegisterFilter) ([]domain.CashRegister, int64, error) {
	if filter.Status != "" && filter.Status != domain.RegisterStatusOpen && filter.Status != domain.RegisterStatusClosed {
		return nil, 0, domain.Validation("invalid register status %q", filter.Status)
	}
	return s.store.Repos().Registers.List(ctx, filter)
}

func (s *cashierService) GetRegisterSummary(ctx context.Context, registerID int64) (*domain.RegisterSummary, error) {
	logger.EnterMethod("cashierService.GetRegisterSummary", "registerID", registerID)

	repos := s.store.Repos()
	reg, err := repos.Registers.GetByID(ctx, registerID)
	if err != nil {
		logger.ExitMethodWithError("cashierService.GetRegisterSummary", err, "registerID", registerID)
		return nil, err
	}
	totals, err := repos.Transactions.SumTotals(ctx, registerID)
	if err != nil {
		logger.ExitMethodWithError("cashierService.GetRegisterSummary", err, "registerID", registerID)
		return nil, err
	}
	byCategory, err := repos.Transactions.SumByCategory(ctx, registerID)
	if err != nil {
		logger.ExitMethodWithError("cashierService.GetRegisterSummary", err, "registerID", registerID)
		return nil, err
	}
	byMethod, err := repos.Transactions.SumByPaymentMethod(ctx, registerID)
	if err != nil {
		logger.ExitMethodWithError("cashierService.GetRegisterSummary", err, "registerID", registerID)
		return nil, err
	}

	summary := &domain.RegisterSummary{
		Register:        reg,
		CurrentBalance:  reg.OpeningBalance.Add(totals.Entries).Sub(totals.Exits),
		Totals:          totals,
		ByCategory:      byCategory,
		ByPaymentMethod: byMethod,
	}
	logger.ExitMethod("cashierService.GetRegisterSummary", "registerID", registerID, "currentBalance", summary.CurrentBalance)
	return summary, nil
}

func (s *cashierService) CreateTransaction(ctx context.Context, actor domain.Actor, in domain.NewTransaction) (*domain.CashTransaction, error) {
	logger.EnterMethod("cashierService.CreateTransaction", "registerID", in.RegisterID, "type", in.Type, "amount", in.Amount)

	var tx *domain.CashTransaction
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		tx, err = recordTransaction(ctx, repos, s.clock, actor, in)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("cashierService.CreateTransaction", err, "registerID", in.RegisterID)
		return nil, err
	}

	s.audit.Record(ctx, movementEvent(actor, tx))
	logger.ExitMethod("cashierService.CreateTransaction", "transactionID", tx.ID)
	return tx, nil
}

func (s *cashierService) CancelTransaction(ctx context.Context, actor domain.Actor, transactionID int64, reason string) (*domain.CashTransaction, error) {
	logger.EnterMethod("cashierService.CancelTransaction", "transactionID", transactionID, "actorID", actor.UserID)

	var tx *domain.CashTransaction
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		tx, err = repos.Transactions.GetByID(ctx, transactionID)
		if err != nil {
			return err
		}
		if tx.Cancelled {
			return domain.Conflict("transaction is already cancelled")
		}
		reg, err := repos.Registers.GetByIDForUpdate(ctx, tx.RegisterID)
		if err != nil {
			return err
		}
		if !reg.IsOpen() {
			return domain.Conflict("cannot cancel a movement of a closed register")
		}
		if err := checkOwnership(actor, reg); err != nil {
			return err
		}
		reason = strings.TrimSpace(reason)
		if utf8.RuneCountInString(reason) < minCancellationReason {
			return domain.Validation("cancellation reason must have at least %d characters", minCancellationReason)
		}

		now := s.clock.Now()
		by := actor.UserID
		tx.Cancelled = true
		tx.CancelledAt = &now
		tx.CancelledBy = &by
		tx.CancellationReason = &reason
		return repos.Transactions.Cancel(ctx, tx)
	})
	if err != nil {
		logger.ExitMethodWithError("cashierService.CancelTransaction", err, "transactionID", transactionID)
		return nil, err
	}

	s.audit.Record(ctx, auditEvent(actor, domain.AuditCashierCancel, "cash_transaction", tx.ID,
		"cancelled %s %s: %s", tx.Type, tx.Amount.StringFixed(2), *tx.CancellationReason))
	logger.Info("Cash transaction cancelled", "transactionID", tx.ID, "registerID", tx.RegisterID)
	logger.ExitMethod("cashierService.CancelTransaction", "transactionID", tx.ID)
	return tx, nil
}

func (s *cashierService) GetTransaction(ctx context.Context, id int64) (*domain.CashTransaction, error) {
	return s.store.Repos().Transactions.GetByID(ctx, id)
}

func (s *cashierService) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.CashTransaction, int64, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, domain.Validation("invalid transaction type %q", filter.Type)
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, 0, domain.Validation("invalid category %q", filter.Category)
	}
	return s.store.Repos().Transactions.List(ctx, filter)
}

// recordTransaction validates and inserts one movement. It is shared by the
// cashier and the rental dispatch flow and must run inside a transaction.
func recordTransaction(ctx context.Context, repos repository.Repositories, clock domain.Clock, actor domain.Actor, in domain.NewTransaction) (*domain.CashTransaction, error) {
	reg, err := repos.Registers.GetByIDForUpdate(ctx, in.RegisterID)
	if err != nil {
		return nil, err
	}
	if !reg.IsOpen() {
		return nil, domain.Conflict("cannot register movement on closed register")
	}
	if err := checkOwnership(actor, reg); err != nil {
		return nil, err
	}
	if err := validateMovement(in); err != nil {
		return nil, err
	}

	tx := &domain.CashTransaction{
		RegisterID:    reg.ID,
		Type:          in.Type,
		Category:      in.Category,
		Amount:        in.Amount,
		Description:   strings.TrimSpace(in.Description),
		PaymentMethod: in.PaymentMethod,
		Reference:     in.Reference,
		CreatedBy:     actor.UserID,
		CreatedAt:     clock.Now(),
	}
	if err := repos.Transactions.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func validateMovement(in domain.NewTransaction) error {
	if !in.Amount.IsPositive() {
		return domain.Validation("amount must be greater than zero")
	}
	if !domain.HasCentsPrecision(in.Amount) {
		return domain.Validation("amount must have at most two decimal places")
	}
	if !in.Type.Valid() {
		return domain.Validation("invalid transaction type %q", in.Type)
	}
	if !in.Category.Valid() {
		return domain.Validation("invalid category %q", in.Category)
	}
	if in.PaymentMethod != nil && !in.PaymentMethod.Valid() {
		return domain.Validation("invalid payment method %q", *in.PaymentMethod)
	}
	if strings.TrimSpace(in.Description) == "" {
		return domain.Validation("description is required")
	}
	if in.Reference != nil && (in.Reference.Type == "" || in.Reference.ID <= 0) {
		return domain.Validation("reference needs a type and a positive id")
	}
	return nil
}

// checkOwnership allows the operator who opened the register, or an elevated
// actor, to act on it.
func checkOwnership(actor domain.Actor, reg *domain.CashRegister) error {
	if reg.OperatorID == actor.UserID || actor.Elevated() {
		return nil
	}
	return domain.Forbidden("cash register #%d belongs to another operator", reg.ID)
}

func movementEvent(actor domain.Actor, tx *domain.CashTransaction) domain.AuditEvent {
	action := domain.AuditCashierEntry
	if tx.Type == domain.TransactionTypeExit {
		action = domain.AuditCashierExit
	}
	return auditEvent(actor, action, "cash_transaction", tx.ID,
		"%s %s on register #%d: %s", tx.Category, tx.Amount.StringFixed(2), tx.RegisterID, tx.Description)
}
