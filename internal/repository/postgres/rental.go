package postgres

import (
	"context"
	"time"

	"rental-backoffice/internal/domain"
	"rental-backoffice/internal/logger"
	"rental-backoffice/internal/repository"

	"github.com/lib/pq"
)

const rentalColumns = `r.id, r.client_id, r.item_id, r.start_date, r.expected_end_date, r.actual_end_date,
       r.rental_value, r.deposit, r.late_fee, r.discount, r.total_value, r.pricing_duration_minutes,
       r.status, r.observations, r.created_at, r.updated_at,
       COALESCE(c.name, ''), COALESCE(i.name, ''), COALESCE(i.internal_code, ''),
       COALESCE((SELECT SUM(p.amount) FROM payments p WHERE p.rental_id = r.id), 0)`

const rentalFrom = ` FROM rentals r
       LEFT JOIN clients c ON c.id = r.client_id
       LEFT JOIN items i ON i.id = r.item_id`

type rentalRepository struct {
	db DBTX
}

func NewRentalRepository(db DBTX) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func scanRental(row rowScanner) (*domain.Rental, error) {
	rt := &domain.Rental{}
	err := row.Scan(&rt.ID, &rt.ClientID, &rt.ItemID, &rt.StartDate, &rt.ExpectedEndDate, &rt.ActualEndDate,
		&rt.RentalValue, &rt.Deposit, &rt.LateFee, &rt.Discount, &rt.TotalValue, &rt.PricingDurationMinutes,
		&rt.Status, &rt.Observations, &rt.CreatedAt, &rt.UpdatedAt,
		&rt.ClientName, &rt.ItemName, &rt.ItemCode, &rt.TotalPaid)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	logger.EnterMethod("rentalRepository.Create", "clientID", rt.ClientID, "itemID", rt.ItemID)

	query := `INSERT INTO rentals (client_id, item_id, start_date, expected_end_date, rental_value, deposit, late_fee, discount,
	                               total_value, pricing_duration_minutes, status, observations, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		rt.ClientID, rt.ItemID, rt.StartDate, rt.ExpectedEndDate, rt.RentalValue, rt.Deposit, rt.LateFee, rt.Discount,
		rt.TotalValue, rt.PricingDurationMinutes, rt.Status, rt.Observations, rt.CreatedAt, rt.UpdatedAt,
	).Scan(&rt.ID)
	if err != nil {
		logger.ExitMethodWithError("rentalRepository.Create", err, "itemID", rt.ItemID)
		return err
	}

	logger.ExitMethod("rentalRepository.Create", "rentalID", rt.ID)
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id int64) (*domain.Rental, error) {
	rt, err := scanRental(r.db.QueryRowContext(ctx, `SELECT `+rentalColumns+rentalFrom+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, notFound(err, "rental")
	}
	return rt, nil
}

func (r *rentalRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Rental, error) {
	rt, err := scanRental(r.db.QueryRowContext(ctx, `SELECT `+rentalColumns+rentalFrom+` WHERE r.id = $1 FOR UPDATE OF r`, id))
	if err != nil {
		return nil, notFound(err, "rental")
	}
	return rt, nil
}

func (r *rentalRepository) Complete(ctx context.Context, rt *domain.Rental) error {
	logger.EnterMethod("rentalRepository.Complete", "rentalID", rt.ID)

	query := `UPDATE rentals SET actual_end_date = $1, late_fee = $2, total_value = $3, status = $4, updated_at = $5
	          WHERE id = $6 AND status IN ('active', 'overdue')`
	res, err := r.db.ExecContext(ctx, query, rt.ActualEndDate, rt.LateFee, rt.TotalValue, rt.Status, rt.UpdatedAt, rt.ID)
	if err != nil {
		logger.ExitMethodWithError("rentalRepository.Complete", err, "rentalID", rt.ID)
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return domain.Validation("rental %d cannot be completed", rt.ID)
	}

	logger.ExitMethod("rentalRepository.Complete", "rentalID", rt.ID)
	return nil
}

func (r *rentalRepository) UpdateStatus(ctx context.Context, id int64, status domain.RentalStatus, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE rentals SET status = $1, updated_at = $2 WHERE id = $3`, status, at, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("rental")
	}
	return nil
}

func (r *rentalRepository) List(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error) {
	w := &where{}
	if filter.Status != "" {
		w.add("r.status = $%d", filter.Status)
	}
	if filter.ClientID != 0 {
		w.add("r.client_id = $%d", filter.ClientID)
	}
	if filter.ItemID != 0 {
		w.add("r.item_id = $%d", filter.ItemID)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+rentalColumns+rentalFrom+w.String()+` ORDER BY r.created_at DESC, r.id DESC`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}

func (r *rentalRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE rentals SET status = 'overdue', updated_at = $1 WHERE status = 'active' AND expected_end_date < $1`
	logger.DatabaseCall("mark_overdue", query, "now", now)

	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		logger.DatabaseResult("mark_overdue", 0, err)
		return 0, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("mark_overdue", n, err)
	return n, err
}

func (r *rentalRepository) CountByStatus(ctx context.Context, statuses ...domain.RentalStatus) (int64, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM rentals WHERE status = ANY($1)`, pq.Array(values)).Scan(&n)
	return n, err
}
