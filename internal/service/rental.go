package service

import (
	"context"
	"strings"
	"time"

	"rental-backoffice/internal/domain"
	"rental-backoffice/internal/logger"
	"rental-backoffice/internal/repository"
	"rental-backoffice/internal/utils"

	"github.com/shopspring/decimal"
)

type rentalService struct {
	store repository.Store
	clock domain.Clock
	audit AuditSink
}

func NewRentalService(store repository.Store, clock domain.Clock, audit AuditSink) RentalService {
	return &rentalService{store: store, clock: clock, audit: audit}
}

func (s *rentalService) CreateRental(ctx context.Context, actor domain.Actor, in domain.NewRental) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.CreateRental", "clientID", in.ClientID, "itemID", in.ItemID)

	if err := validateNewRental(in); err != nil {
		logger.ExitMethodWithError("rentalService.CreateRental", err, "itemID", in.ItemID)
		return nil, err
	}

	var rental *domain.Rental
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		client, err := repos.Clients.GetByID(ctx, in.ClientID)
		if err != nil {
			return err
		}
		if !client.Active {
			return domain.Validation("client %q is inactive", client.Name)
		}

		item, err := repos.Items.GetByIDForUpdate(ctx, in.ItemID)
		if err != nil {
			return err
		}
		if !item.Active {
			return domain.Validation("item %q is inactive", item.Name)
		}
		if item.Status != domain.ItemStatusAvailable {
			return domain.Conflict("item %q is not available (status: %s)", item.Name, item.Status)
		}

		var tier *domain.PricingTier
		if in.PricingTierID != nil {
			tier, err = repos.Items.GetPricingTier(ctx, *in.PricingTierID)
			if err != nil {
				return err
			}
			if tier.ItemID != item.ID {
				return domain.Validation("pricing tier %d does not belong to item %d", tier.ID, item.ID)
			}
		}

		quote, err := utils.QuoteRental(item, tier, in.StartDate, in.ExpectedEndDate)
		if err != nil {
			return domain.Validation("%s", err.Error())
		}
		if in.Discount.GreaterThan(quote.RentalValue) {
			return domain.Validation("discount %s exceeds rental value %s", in.Discount.StringFixed(2), quote.RentalValue.StringFixed(2))
		}
		total := domain.RoundCents(quote.RentalValue.Sub(in.Discount))
		if in.Deposit.GreaterThan(total) {
			return domain.Validation("deposit %s exceeds rental total %s", in.Deposit.StringFixed(2), total.StringFixed(2))
		}

		now := s.clock.Now()
		duration := quote.DurationMinutes
		rental = &domain.Rental{
			ClientID:               client.ID,
			ItemID:                 item.ID,
			StartDate:              in.StartDate,
			ExpectedEndDate:        in.ExpectedEndDate,
			RentalValue:            quote.RentalValue,
			Deposit:                in.Deposit,
			LateFee:                decimal.Zero,
			Discount:               in.Discount,
			TotalValue:             total,
			PricingDurationMinutes: &duration,
			Status:                 domain.RentalStatusActive,
			Observations:           strings.TrimSpace(in.Observations),
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		if err := repos.Rentals.Create(ctx, rental); err != nil {
			return err
		}
		if err := repos.Items.SetStatus(ctx, item.ID, domain.ItemStatusRented, now); err != nil {
			return err
		}
		if in.Deposit.IsPositive() {
			deposit := &domain.Payment{
				RentalID:    rental.ID,
				Amount:      in.Deposit,
				Method:      domain.PaymentMethodCash,
				PaymentDate: now,
				Notes:       domain.DepositPaymentNote,
				CreatedAt:   now,
			}
			if err := repos.Payments.Create(ctx, deposit); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("rentalService.CreateRental", err, "itemID", in.ItemID)
		return nil, err
	}

	s.audit.Record(ctx, auditEvent(actor, domain.AuditRentalCreate, "rental", rental.ID,
		"rental value %s, discount %s, deposit %s, total %s", rental.RentalValue.StringFixed(2),
		rental.Discount.StringFixed(2), rental.Deposit.StringFixed(2), rental.TotalValue.StringFixed(2)))
	logger.Info("Rental created", "rentalID", rental.ID, "itemID", rental.ItemID, "total", rental.TotalValue.StringFixed(2))
	logger.ExitMethod("rentalService.CreateRental", "rentalID", rental.ID)
	return s.GetRental(ctx, rental.ID)
}

func validateNewRental(in domain.NewRental) error {
	if in.StartDate.IsZero() || in.ExpectedEndDate.IsZero() {
		return domain.Validation("start and expected end dates are required")
	}
	if !in.ExpectedEndDate.After(in.StartDate) {
		return domain.Validation("expected end date must be after start date")
	}
	amounts := []struct {
		name  string
		value decimal.Decimal
	}{{"deposit", in.Deposit}, {"discount", in.Discount}}
	for _, a := range amounts {
		if a.value.IsNegative() {
			return domain.Validation("%s must not be negative", a.name)
		}
		if !domain.HasCentsPrecision(a.value) {
			return domain.Validation("%s must have at most two decimal places", a.name)
		}
	}
	return nil
}

func (s *rentalService) CompleteRental(ctx context.Context, actor domain.Actor, rentalID int64, actualEnd *time.Time) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.CompleteRental", "rentalID", rentalID)

	var rental *domain.Rental
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		rental, err = repos.Rentals.GetByIDForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if rental.Status != domain.RentalStatusActive && rental.Status != domain.RentalStatusOverdue {
			return domain.Validation("rental cannot be completed (status: %s)", rental.Status)
		}

		now := s.clock.Now()
		end := now
		if actualEnd != nil {
			end = *actualEnd
		}
		if end.Before(rental.StartDate) {
			return domain.Validation("actual end date is before the rental start")
		}

		rental.ActualEndDate = &end
		rental.LateFee = utils.CalculateLateFee(rental.RentalValue, rental.PricingDurationMinutes, rental.ExpectedEndDate, end)
		rental.TotalValue = rental.RentalValue.Sub(rental.Discount).Add(rental.LateFee)
		rental.Status = domain.RentalStatusCompleted
		rental.UpdatedAt = now
		if err := repos.Rentals.Complete(ctx, rental); err != nil {
			return err
		}
		return repos.Items.SetStatus(ctx, rental.ItemID, domain.ItemStatusAvailable, now)
	})
	if err != nil {
		logger.ExitMethodWithError("rentalService.CompleteRental", err, "rentalID", rentalID)
		return nil, err
	}

	s.audit.Record(ctx, auditEvent(actor, domain.AuditRentalComplete, "rental", rental.ID,
		"discount %s, late fee %s, total %s", rental.Discount.StringFixed(2),
		rental.LateFee.StringFixed(2), rental.TotalValue.StringFixed(2)))
	logger.Info("Rental completed", "rentalID", rental.ID, "lateFee", rental.LateFee.StringFixed(2))
	logger.ExitMethod("rentalService.CompleteRental", "rentalID", rental.ID)
	return s.GetRental(ctx, rental.ID)
}

func (s *rentalService) CancelRental(ctx context.Context, actor domain.Actor, rentalID int64) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.CancelRental", "rentalID", rentalID)

	var rental *domain.Rental
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		rental, err = repos.Rentals.GetByIDForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if rental.Status.IsTerminal() {
			return domain.Validation("rental cannot be cancelled (status: %s)", rental.Status)
		}
		now := s.clock.Now()
		if err := repos.Rentals.UpdateStatus(ctx, rental.ID, domain.RentalStatusCancelled, now); err != nil {
			return err
		}
		return repos.Items.SetStatus(ctx, rental.ItemID, domain.ItemStatusAvailable, now)
	})
	if err != nil {
		logger.ExitMethodWithError("rentalService.CancelRental", err, "rentalID", rentalID)
		return nil, err
	}

	s.audit.Record(ctx, auditEvent(actor, domain.AuditRentalCancel, "rental", rental.ID,
		"cancelled from status %s", rental.Status))
	logger.Info("Rental cancelled", "rentalID", rental.ID)
	logger.ExitMethod("rentalService.CancelRental", "rentalID", rental.ID)
	return s.GetRental(ctx, rental.ID)
}

func (s *rentalService) GetRental(ctx context.Context, id int64) (*domain.Rental, error) {
	return s.store.Repos().Rentals.GetByID(ctx, id)
}

func (s *rentalService) ListRentals(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.Validation("invalid rental status %q", filter.Status)
	}
	return s.store.Repos().Rentals.List(ctx, filter)
}

func (s *rentalService) CheckOverdueRentals(ctx context.Context) (int64, error) {
	logger.EnterMethod("rentalService.CheckOverdueRentals")

	now := s.clock.Now()
	n, err := s.store.Repos().Rentals.MarkOverdue(ctx, now)
	if err != nil {
		logger.ExitMethodWithError("rentalService.CheckOverdueRentals", err)
		return 0, err
	}
	if n > 0 {
		logger.Info("Rentals marked overdue", "count", n, "asOf", now.Format(time.DateTime))
	}
	logger.ExitMethod("rentalService.CheckOverdueRentals", "count", n)
	return n, nil
}
