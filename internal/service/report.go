package service

import (
	"context"
	"time"

	"rental-backoffice/internal/domain"
	"rental-backoffice/internal/logger"
	"rental-backoffice/internal/repository"
)

type reportService struct {
	store repository.Store
	clock domain.Clock
}

func NewReportService(store repository.Store, clock domain.Clock) ReportService {
	return &reportService{store: store, clock: clock}
}

// Dashboard counts catalog and rental state and sums payments received today
// and in the current month.
func (s *reportService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	logger.EnterMethod("reportService.Dashboard")

	repos := s.store.Repos()
	now := s.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	d := &domain.Dashboard{}
	var err error
	if d.ActiveClients, err = repos.Clients.CountActive(ctx); err != nil {
		return nil, err
	}
	if d.ItemsByStatus, err = repos.Items.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if d.ActiveRentals, err = repos.Rentals.CountByStatus(ctx, domain.RentalStatusActive); err != nil {
		return nil, err
	}
	if d.OverdueRentals, err = repos.Rentals.CountByStatus(ctx, domain.RentalStatusOverdue); err != nil {
		return nil, err
	}
	if d.RevenueToday, err = repos.Payments.SumBetween(ctx, today, today.AddDate(0, 0, 1)); err != nil {
		return nil, err
	}
	if d.RevenueMonth, err = repos.Payments.SumBetween(ctx, month, month.AddDate(0, 1, 0)); err != nil {
		logger.ExitMethodWithError("reportService.Dashboard", err)
		return nil, err
	}

	logger.ExitMethod("reportService.Dashboard", "activeRentals", d.ActiveRentals, "overdueRentals", d.OverdueRentals)
	return d, nil
}

func (s *reportService) AuditTrail(ctx context.Context, resource string, resourceID int64) ([]domain.AuditEvent, error) {
	if resource == "" || resourceID <= 0 {
		return nil, domain.Validation("resource and resource id are required")
	}
	events, err := s.store.Repos().Audit.List(ctx, resource, resourceID)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []domain.AuditEvent{}
	}
	return events, nil
}
