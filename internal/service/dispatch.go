package service

import (
	"context"
	"fmt"

	"rental-backoffice/internal/domain"
	"rental-backoffice/internal/logger"
	"rental-backoffice/internal/repository"

	"github.com/shopspring/decimal"
)

type dispatchService struct {
	store repository.Store
	clock domain.Clock
	audit AuditSink
}

func NewDispatchService(store repository.Store, clock domain.Clock, audit AuditSink) DispatchService {
	return &dispatchService{store: store, clock: clock, audit: audit}
}

// SendToCashier posts only what has not been posted yet for the rental. The
// amounts already sent are read from non-cancelled movements referencing the
// rental, so repeated calls never double-post.
func (s *dispatchService) SendToCashier(ctx context.Context, actor domain.Actor, rentalID int64, in domain.SendToCashier) ([]domain.CashTransaction, error) {
	logger.EnterMethod("dispatchService.SendToCashier", "rentalID", rentalID, "mode", in.Mode, "actorID", actor.UserID)

	if in.PaymentMethod != "" && !in.PaymentMethod.Valid() {
		return nil, domain.Validation("invalid payment method %q", in.PaymentMethod)
	}

	var posted []domain.CashTransaction
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		// The rental row lock serializes dispatches of one rental across
		// registers, so the sent totals below cannot go stale.
		rental, err := repos.Rentals.GetByIDForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		reg, err := repos.Registers.GetOpenByOperator(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if reg == nil {
			return domain.Conflict("you have no open cash register, open one first")
		}

		ref := domain.Reference{Type: domain.ReferenceTypeRental, ID: rental.ID}
		sent, err := repos.Transactions.SentByReference(ctx, ref)
		if err != nil {
			return err
		}

		moves, err := planDispatch(rental, in, sent)
		if err != nil {
			return err
		}
		for _, m := range moves {
			m.RegisterID = reg.ID
			m.Reference = &ref
			tx, err := recordTransaction(ctx, repos, s.clock, actor, m)
			if err != nil {
				return err
			}
			posted = append(posted, *tx)
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("dispatchService.SendToCashier", err, "rentalID", rentalID)
		return nil, err
	}

	for i := range posted {
		s.audit.Record(ctx, movementEvent(actor, &posted[i]))
	}
	s.audit.Record(ctx, auditEvent(actor, domain.AuditRentalToCashier, "rental", rentalID,
		"rental sent to cashier, %d movement(s)", len(posted)))
	logger.Info("Rental sent to cashier", "rentalID", rentalID, "movements", len(posted))
	logger.ExitMethod("dispatchService.SendToCashier", "rentalID", rentalID, "movements", len(posted))
	return posted, nil
}

// planDispatch computes the movements still owed to the cash drawer. sent
// holds signed sums per category, so exits such as discounts are negative.
func planDispatch(rental *domain.Rental, in domain.SendToCashier, sent map[domain.TransactionCategory]decimal.Decimal) ([]domain.NewTransaction, error) {
	label := fmt.Sprintf("rental #%d - %s (%s)", rental.ID, rental.ItemName, rental.ClientName)

	switch in.Mode {
	case domain.SendModeDeposit:
		remaining := rental.Deposit.Sub(sent[domain.CategoryDeposit])
		if !remaining.IsPositive() {
			return nil, domain.Conflict("deposit was already fully sent to the cashier")
		}
		return []domain.NewTransaction{{
			Type:          domain.TransactionTypeEntry,
			Category:      domain.CategoryDeposit,
			Amount:        remaining,
			Description:   "Deposit " + label,
			PaymentMethod: methodOr(in.PaymentMethod, domain.PaymentMethodCash),
		}}, nil

	case domain.SendModeFull:
		var moves []domain.NewTransaction
		paymentRemaining := rental.TotalPaid.Sub(sent[domain.CategoryRentalPayment]).Sub(sent[domain.CategoryDeposit])
		if paymentRemaining.IsPositive() {
			moves = append(moves, domain.NewTransaction{
				Type:          domain.TransactionTypeEntry,
				Category:      domain.CategoryRentalPayment,
				Amount:        paymentRemaining,
				Description:   "Payment " + label,
				PaymentMethod: methodOr(in.PaymentMethod, domain.PaymentMethodCash),
			})
		}
		discountRemaining := rental.Discount.Sub(sent[domain.CategoryAdjustment].Abs())
		if discountRemaining.IsPositive() {
			moves = append(moves, domain.NewTransaction{
				Type:        domain.TransactionTypeExit,
				Category:    domain.CategoryAdjustment,
				Amount:      discountRemaining,
				Description: fmt.Sprintf("Discount rental #%d - %s", rental.ID, rental.ItemName),
			})
		}
		if len(moves) == 0 {
			return nil, domain.Conflict("all amounts of this rental were already sent to the cashier")
		}
		return moves, nil

	case domain.SendModeAmount:
		if !in.Amount.IsPositive() {
			return nil, domain.Validation("amount must be greater than zero")
		}
		return []domain.NewTransaction{{
			Type:          domain.TransactionTypeEntry,
			Category:      domain.CategoryRentalPayment,
			Amount:        in.Amount,
			Description:   "Payment " + label,
			PaymentMethod: methodOr(in.PaymentMethod, domain.PaymentMethodPix),
		}}, nil
	}
	return nil, domain.Validation("invalid send mode %q", in.Mode)
}

func methodOr(m, fallback domain.PaymentMethod) *domain.PaymentMethod {
	if m == "" {
		m = fallback
	}
	return &m
}
