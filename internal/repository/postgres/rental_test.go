package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"rental-backoffice/internal/domain"
	"rental-backoffice/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rentalCols = []string{"id", "client_id", "item_id", "start_date", "expected_end_date", "actual_end_date",
	"rental_value", "deposit", "late_fee", "discount", "total_value", "pricing_duration_minutes",
	"status", "observations", "created_at", "updated_at", "client_name", "item_name", "item_code", "total_paid"}

func TestRentalRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM rentals r (.+) WHERE r.id = \\$1").
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(rentalCols).
				AddRow(5, 1, 2, start, end, nil, "20.00", "0", "0", "0", "20.00", 120,
					"active", "", start, start, "Maria", "Drill", "FUR-01", "10.00"))

		rt, err := repo.GetByID(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, "Maria", rt.ClientName)
		assert.Equal(t, "FUR-01", rt.ItemCode)
		require.NotNil(t, rt.PricingDurationMinutes)
		assert.Equal(t, int64(120), *rt.PricingDurationMinutes)
		assert.True(t, rt.TotalPaid.Equal(domain.Amount("10")))
		assert.Nil(t, rt.ActualEndDate)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM rentals").WithArgs(int64(6)).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, 6)
		assert.True(t, domain.IsNotFound(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_MarkOverdue(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewRentalRepository(db)
	now := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE rentals SET status = 'overdue', updated_at = \\$1 WHERE status = 'active' AND expected_end_date < \\$1").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("UPDATE rentals SET status = 'overdue'").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.MarkOverdue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = repo.MarkOverdue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_Complete(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()
	actual := time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)

	rt := &domain.Rental{ID: 5, ActualEndDate: &actual, LateFee: domain.Amount("5.00"),
		TotalValue: domain.Amount("25.00"), Status: domain.RentalStatusCompleted, UpdatedAt: actual}

	mock.ExpectExec("UPDATE rentals SET actual_end_date (.+) WHERE id = \\$6 AND status IN \\('active', 'overdue'\\)").
		WithArgs(&actual, sqlmock.AnyArg(), sqlmock.AnyArg(), domain.RentalStatusCompleted, actual, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Complete(ctx, rt))

	mock.ExpectExec("UPDATE rentals SET actual_end_date").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.True(t, domain.IsValidation(repo.Complete(ctx, rt)))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCashTransactionRepository_Aggregates(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewCashTransactionRepository(db)
	ctx := context.Background()

	t.Run("SumTotals", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM cash_transactions WHERE cash_register_id = \\$1").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"entries", "exits", "active", "cancelled"}).
				AddRow("50.00", "20.00", 2, 1))

		totals, err := repo.SumTotals(ctx, 1)
		require.NoError(t, err)
		assert.True(t, totals.Net.Equal(domain.Amount("30")))
		assert.Equal(t, int64(2), totals.ActiveCount)
		assert.Equal(t, int64(1), totals.CancelledCount)
	})

	t.Run("SentByReference", func(t *testing.T) {
		mock.ExpectQuery("SELECT category, SUM(.+) WHERE reference_type = \\$1 AND reference_id = \\$2 AND NOT cancelled").
			WithArgs(domain.ReferenceTypeRental, int64(9)).
			WillReturnRows(sqlmock.NewRows([]string{"category", "sum"}).
				AddRow("deposit", "30.00").
				AddRow("adjustment", "-5.00"))

		sent, err := repo.SentByReference(ctx, domain.Reference{Type: domain.ReferenceTypeRental, ID: 9})
		require.NoError(t, err)
		assert.True(t, sent[domain.CategoryDeposit].Equal(domain.Amount("30")))
		assert.True(t, sent[domain.CategoryAdjustment].Equal(domain.Amount("-5")))
	})

	t.Run("Cancel twice is a conflict", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
		by := int64(7)
		reason := "wrong amount"
		tx := &domain.CashTransaction{ID: 3, CancelledAt: &now, CancelledBy: &by, CancellationReason: &reason}

		mock.ExpectExec("UPDATE cash_transactions SET cancelled = TRUE").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE cash_transactions SET cancelled = TRUE").WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.Cancel(ctx, tx))
		assert.True(t, domain.IsConflict(repo.Cancel(ctx, tx)))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_ReplacePricing(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewItemRepository(db)

	tiers := []domain.PricingTier{
		{DurationMinutes: 60, Label: "1h", Price: domain.Amount("10.00")},
		{DurationMinutes: 240, Label: "4h", Price: domain.Amount("30.00"), ToleranceMinutes: 15},
	}

	mock.ExpectExec("DELETE FROM item_pricing WHERE item_id = \\$1").
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectQuery("INSERT INTO item_pricing").
		WithArgs(int64(2), int64(60), "1h", sqlmock.AnyArg(), int64(0), 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery("INSERT INTO item_pricing").
		WithArgs(int64(2), int64(240), "4h", sqlmock.AnyArg(), int64(15), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))

	require.NoError(t, repo.ReplacePricing(context.Background(), 2, tiers))
	assert.Equal(t, int64(11), tiers[0].ID)
	assert.Equal(t, 1, tiers[1].SortOrder)
	assert.Equal(t, int64(2), tiers[1].ItemID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	for i, m := range postgres.Migrations {
		applied := i < len(postgres.Migrations)-1
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(m.Version).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(applied))
	}
	last := postgres.Migrations[len(postgres.Migrations)-1]
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS audit_logs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs(last.Version, last.Name).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, postgres.Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
