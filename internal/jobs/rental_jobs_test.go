package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"rental-backoffice/internal/config"
	"rental-backoffice/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) CreateRental(ctx context.Context, actor domain.Actor, in domain.NewRental) (*domain.Rental, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalService) CompleteRental(ctx context.Context, actor domain.Actor, rentalID int64, actualEnd *time.Time) (*domain.Rental, error) {
	args := m.Called(ctx, actor, rentalID, actualEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalService) CancelRental(ctx context.Context, actor domain.Actor, rentalID int64) (*domain.Rental, error) {
	args := m.Called(ctx, actor, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalService) GetRental(ctx context.Context, id int64) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalService) ListRentals(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalService) CheckOverdueRentals(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func newRunner(svc *MockRentalService) *JobRunner {
	return NewJobRunner(&Services{Rental: svc}, &config.Config{})
}

func TestJobRunner_CheckOverdueRentals(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockRentalService)
		svc.On("CheckOverdueRentals", mock.Anything).Return(int64(3), nil).Once()

		newRunner(svc).CheckOverdueRentals()
		svc.AssertExpectations(t)
	})

	t.Run("ErrorIsLogged", func(t *testing.T) {
		svc := new(MockRentalService)
		svc.On("CheckOverdueRentals", mock.Anything).Return(int64(0), errors.New("db down")).Once()

		assert.NotPanics(t, func() { newRunner(svc).CheckOverdueRentals() })
		svc.AssertExpectations(t)
	})

	t.Run("PanicIsRecovered", func(t *testing.T) {
		svc := new(MockRentalService)
		svc.On("CheckOverdueRentals", mock.Anything).Run(func(mock.Arguments) { panic("boom") }).Return(int64(0), nil)

		assert.NotPanics(t, func() { newRunner(svc).RunAll() })
	})

	t.Run("CarriesDeadline", func(t *testing.T) {
		svc := new(MockRentalService)
		svc.On("CheckOverdueRentals", mock.MatchedBy(func(ctx context.Context) bool {
			_, ok := ctx.Deadline()
			return ok
		})).Return(int64(0), nil).Once()

		newRunner(svc).CheckOverdueRentals()
		svc.AssertExpectations(t)
	})
}
