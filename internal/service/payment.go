package service

import (
	"context"
	"strings"

	"rental-backoffice/internal/domain"
	"rental-backoffice/internal/logger"
	"rental-backoffice/internal/repository"
)

type paymentService struct {
	store repository.Store
	clock domain.Clock
	audit AuditSink
}

func NewPaymentService(store repository.Store, clock domain.Clock, audit AuditSink) PaymentService {
	return &paymentService{store: store, clock: clock, audit: audit}
}

func (s *paymentService) CreatePayment(ctx context.Context, actor domain.Actor, in domain.NewPayment) (*domain.Payment, error) {
	logger.EnterMethod("paymentService.CreatePayment", "rentalID", in.RentalID, "amount", in.Amount)

	if !in.Amount.IsPositive() {
		return nil, domain.Validation("amount must be greater than zero")
	}
	if !domain.HasCentsPrecision(in.Amount) {
		return nil, domain.Validation("amount must have at most two decimal places")
	}
	if !in.Method.Valid() {
		return nil, domain.Validation("invalid payment method %q", in.Method)
	}

	var payment *domain.Payment
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		rental, err := repos.Rentals.GetByIDForUpdate(ctx, in.RentalID)
		if err != nil {
			return err
		}
		paid, err := repos.Payments.SumByRental(ctx, rental.ID)
		if err != nil {
			return err
		}
		remaining := rental.TotalValue.Sub(paid)
		// Amounts carry cents, so any overshoot reaches the tolerance.
		if in.Amount.Sub(remaining).GreaterThanOrEqual(domain.PaymentTolerance) {
			return domain.Validation("amount %s exceeds the remaining balance (total %s, paid %s, remaining %s)",
				in.Amount.StringFixed(2), rental.TotalValue.StringFixed(2), paid.StringFixed(2), remaining.StringFixed(2))
		}

		now := s.clock.Now()
		payment = &domain.Payment{
			RentalID:    rental.ID,
			Amount:      in.Amount,
			Method:      in.Method,
			PaymentDate: now,
			Notes:       strings.TrimSpace(in.Notes),
			CreatedAt:   now,
		}
		if in.PaymentDate != nil {
			payment.PaymentDate = *in.PaymentDate
		}
		return repos.Payments.Create(ctx, payment)
	})
	if err != nil {
		logger.ExitMethodWithError("paymentService.CreatePayment", err, "rentalID", in.RentalID)
		return nil, err
	}

	s.audit.Record(ctx, auditEvent(actor, domain.AuditPaymentCreate, "payment", payment.ID,
		"payment %s (%s) for rental #%d", payment.Amount.StringFixed(2), payment.Method, payment.RentalID))
	logger.Info("Payment recorded", "paymentID", payment.ID, "rentalID", payment.RentalID)
	logger.ExitMethod("paymentService.CreatePayment", "paymentID", payment.ID)
	return payment, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id int64) (*domain.Payment, error) {
	return s.store.Repos().Payments.GetByID(ctx, id)
}

func (s *paymentService) ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, error) {
	if filter.Method != "" && !filter.Method.Valid() {
		return nil, domain.Validation("invalid payment method %q", filter.Method)
	}
	return s.store.Repos().Payments.List(ctx, filter)
}

func (s *paymentService) GetBalance(ctx context.Context, rentalID int64) (*domain.RentalBalance, error) {
	repos := s.store.Repos()
	rental, err := repos.Rentals.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	paid, err := repos.Payments.SumByRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	return &domain.RentalBalance{
		TotalValue: rental.TotalValue,
		TotalPaid:  paid,
		Remaining:  rental.TotalValue.Sub(paid),
	}, nil
}
