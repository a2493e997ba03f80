package postgres_test

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"rental-backoffice/internal/domain"
	"rental-backoffice/internal/logger"
	"rental-backoffice/internal/repository/postgres"
	"rental-backoffice/internal/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch_LocksRentalBeforeReadingSentTotals(t *testing.T) {
	db, mock := newMock(t)
	mock.MatchExpectationsInOrder(true)

	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	clock := domain.FixedClock{T: now}
	dispatch := service.NewDispatchService(postgres.NewStore(db), clock, service.NopAuditSink{})
	actor := domain.Actor{UserID: 1, Role: domain.RoleOperator}

	t.Run("Deposit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM rentals r (.+) WHERE r.id = \\$1 FOR UPDATE OF r").
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(rentalCols).
				AddRow(5, 1, 2, now, now.Add(2*time.Hour), nil, "20.00", "10.00", "0", "0", "20.00", 120,
					"active", "", now, now, "Maria", "Drill", "FUR-01", "10.00"))
		mock.ExpectQuery("SELECT (.+) FROM cash_registers cr (.+) WHERE cr.operator_id = \\$1 AND cr.status = 'open'").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(registerCols).
				AddRow(3, 1, "Ana", "0", nil, "0", "0", "open", "", now, nil, now))
		mock.ExpectQuery("SELECT category, SUM(.+) FROM cash_transactions").
			WithArgs(domain.ReferenceTypeRental, int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"category", "sum"}))
		mock.ExpectQuery("SELECT (.+) FROM cash_registers cr (.+) WHERE cr.id = \\$1 FOR UPDATE OF cr").
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(registerCols).
				AddRow(3, 1, "Ana", "0", nil, "0", "0", "open", "", now, nil, now))
		mock.ExpectQuery("INSERT INTO cash_transactions").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
		mock.ExpectCommit()

		posted, err := dispatch.SendToCashier(context.Background(), actor, 5, domain.SendToCashier{Mode: domain.SendModeDeposit})
		require.NoError(t, err)
		require.Len(t, posted, 1)
		assert.Equal(t, domain.CategoryDeposit, posted[0].Category)
		assert.True(t, posted[0].Amount.Equal(domain.Amount("10.00")))
	})

	t.Run("Unknown rental rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM rentals r (.+) WHERE r.id = \\$1 FOR UPDATE OF r").
			WithArgs(int64(6)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := dispatch.SendToCashier(context.Background(), actor, 6, domain.SendToCashier{Mode: domain.SendModeDeposit})
		assert.True(t, domain.IsNotFound(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCashierSummary_LogsFailedAggregates(t *testing.T) {
	var buf bytes.Buffer
	logger.InitializeWriter(&buf, "debug", "json")
	t.Cleanup(func() { logger.Initialize("info", "text") })

	db, mock := newMock(t)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	cashier := service.NewCashierService(postgres.NewStore(db), domain.FixedClock{T: now}, service.NopAuditSink{})

	mock.ExpectQuery("SELECT (.+) FROM cash_registers cr (.+) WHERE cr.id = \\$1").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(registerCols).
			AddRow(3, 1, "Ana", "100.00", nil, "0", "0", "open", "", now, nil, now))
	mock.ExpectQuery("FROM cash_transactions WHERE cash_register_id = \\$1").
		WithArgs(int64(3)).
		WillReturnError(errors.New("connection reset"))

	_, err := cashier.GetRegisterSummary(context.Background(), 3)
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"method":"cashierService.GetRegisterSummary","event":"exit","error":"connection reset"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
