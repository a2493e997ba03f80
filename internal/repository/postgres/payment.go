package postgres

import (
	"context"
	"time"

	"rental-backoffice/internal/domain"
	"rental-backoffice/internal/logger"
	"rental-backoffice/internal/repository"

	"github.com/shopspring/decimal"
)

const paymentColumns = `p.id, p.rental_id, p.amount, p.payment_method, p.payment_date, p.notes, p.created_at,
       COALESCE(c.name, ''), COALESCE(i.name, '')`

const paymentFrom = ` FROM payments p
       JOIN rentals r ON r.id = p.rental_id
       LEFT JOIN clients c ON c.id = r.client_id
       LEFT JOIN items i ON i.id = r.item_id`

type paymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	p := &domain.Payment{}
	if err := row.Scan(&p.ID, &p.RentalID, &p.Amount, &p.Method, &p.PaymentDate, &p.Notes, &p.CreatedAt,
		&p.ClientName, &p.ItemName); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	logger.EnterMethod("paymentRepository.Create", "rentalID", p.RentalID, "amount", p.Amount)

	query := `INSERT INTO payments (rental_id, amount, payment_method, payment_date, notes, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, p.RentalID, p.Amount, p.Method, p.PaymentDate, p.Notes, p.CreatedAt).Scan(&p.ID)
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.Create", err, "rentalID", p.RentalID)
		return err
	}

	logger.ExitMethod("paymentRepository.Create", "paymentID", p.ID)
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+paymentFrom+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, notFound(err, "payment")
	}
	return p, nil
}

func (r *paymentRepository) List(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, error) {
	w := &where{}
	if filter.RentalID != 0 {
		w.add("p.rental_id = $%d", filter.RentalID)
	}
	if filter.Method != "" {
		w.add("p.payment_method = $%d", filter.Method)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+paymentColumns+paymentFrom+w.String()+` ORDER BY p.payment_date DESC, p.id DESC`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func (r *paymentRepository) SumByRental(ctx context.Context, rentalID int64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE rental_id = $1`, rentalID).Scan(&sum)
	return sum, err
}

func (r *paymentRepository) SumBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE payment_date >= $1 AND payment_date < $2`, from, to,
	).Scan(&sum)
	return sum, err
}
