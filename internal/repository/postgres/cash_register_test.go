package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"rental-backoffice/internal/domain"
	"rental-backoffice/internal/repository"
	"rental-backoffice/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var registerCols = []string{"id", "operator_id", "operator_name", "opening_balance", "closing_balance",
	"total_entries", "total_exits", "status", "observations", "opened_at", "closed_at", "updated_at"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestCashRegisterRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewCashRegisterRepository(db)
	ctx := context.Background()
	opened := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		reg := &domain.CashRegister{
			OperatorID:     7,
			OpeningBalance: domain.Amount("100.00"),
			Status:         domain.RegisterStatusOpen,
			OpenedAt:       opened,
			UpdatedAt:      opened,
		}
		mock.ExpectQuery("INSERT INTO cash_registers").
			WithArgs(int64(7), sqlmock.AnyArg(), domain.RegisterStatusOpen, "", opened, opened).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

		require.NoError(t, repo.Create(ctx, reg))
		assert.Equal(t, int64(3), reg.ID)
	})

	t.Run("Second open register maps to conflict", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO cash_registers").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "ux_cash_registers_open_operator"})

		err := repo.Create(ctx, &domain.CashRegister{OperatorID: 7, Status: domain.RegisterStatusOpen})
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("Other failures propagate", func(t *testing.T) {
		boom := errors.New("connection reset")
		mock.ExpectQuery("INSERT INTO cash_registers").WillReturnError(boom)

		err := repo.Create(ctx, &domain.CashRegister{OperatorID: 7})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, domain.ErrorKind(""), domain.KindOf(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCashRegisterRepository_Lookups(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewCashRegisterRepository(db)
	ctx := context.Background()
	opened := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	t.Run("GetByID", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM cash_registers cr (.+) WHERE cr.id = \\$1").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(registerCols).
				AddRow(1, 7, "Ana", "100.00", nil, "0", "0", "open", "", opened, nil, opened))

		reg, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Ana", reg.OperatorName)
		assert.True(t, reg.OpeningBalance.Equal(domain.Amount("100")))
		assert.False(t, reg.ClosingBalance.Valid)
		assert.Nil(t, reg.ClosedAt)
		assert.True(t, reg.IsOpen())
	})

	t.Run("GetByID not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM cash_registers").WithArgs(int64(99)).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, 99)
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("GetOpenByOperator none", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) WHERE cr.operator_id = \\$1 AND cr.status = 'open'").
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(registerCols))

		reg, err := repo.GetOpenByOperator(ctx, 7)
		assert.NoError(t, err)
		assert.Nil(t, reg)
	})

	t.Run("List with filter and paging", func(t *testing.T) {
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM cash_registers cr WHERE cr.operator_id = \\$1 AND cr.status = \\$2").
			WithArgs(int64(7), domain.RegisterStatusClosed).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
		mock.ExpectQuery("ORDER BY cr.opened_at DESC LIMIT \\$3 OFFSET \\$4").
			WithArgs(int64(7), domain.RegisterStatusClosed, 10, 0).
			WillReturnRows(sqlmock.NewRows(registerCols).
				AddRow(2, 7, "Ana", "50", "80", "40", "10", "closed", "", opened, opened, opened))

		regs, total, err := repo.List(ctx, domain.RegisterFilter{OperatorID: 7, Status: domain.RegisterStatusClosed, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(12), total)
		require.Len(t, regs, 1)
		assert.True(t, regs[0].ClosingBalance.Decimal.Equal(domain.Amount("80")))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCashRegisterRepository_Close(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewCashRegisterRepository(db)
	ctx := context.Background()
	closed := time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC)

	reg := &domain.CashRegister{ID: 4, Status: domain.RegisterStatusClosed, ClosedAt: &closed, UpdatedAt: closed}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE cash_registers SET").WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Close(ctx, reg))
	})

	t.Run("Already closed", func(t *testing.T) {
		mock.ExpectExec("UPDATE cash_registers SET").WillReturnResult(sqlmock.NewResult(0, 0))
		assert.True(t, domain.IsConflict(repo.Close(ctx, reg)))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RunInTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		db, mock := newMock(t)
		store := postgres.NewStore(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE items SET status").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := store.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
			return repos.Items.SetStatus(ctx, 1, domain.ItemStatusRented, time.Now())
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rollback on error", func(t *testing.T) {
		db, mock := newMock(t)
		store := postgres.NewStore(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE items SET status").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectRollback()

		err := store.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
			if err := repos.Items.SetStatus(ctx, 1, domain.ItemStatusRented, time.Now()); err != nil {
				return err
			}
			return domain.Validation("deposit must not be negative")
		})
		assert.True(t, domain.IsValidation(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
