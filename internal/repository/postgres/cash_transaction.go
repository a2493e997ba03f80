package postgres

import (
	"context"
	"database/sql"

	"rental-backoffice/internal/domain"
	"rental-backoffice/internal/logger"
	"rental-backoffice/internal/repository"

	"github.com/shopspring/decimal"
)

const transactionColumns = `id, cash_register_id, type, category, amount, description, payment_method,
       reference_type, reference_id, user_id, cancelled, cancelled_at, cancelled_by, cancellation_reason, created_at`

type cashTransactionRepository struct {
	db DBTX
}

func NewCashTransactionRepository(db DBTX) repository.CashTransactionRepository {
	return &cashTransactionRepository{db: db}
}

func scanTransaction(row rowScanner) (*domain.CashTransaction, error) {
	var (
		tx      domain.CashTransaction
		method  sql.NullString
		refType sql.NullString
		refID   sql.NullInt64
	)
	err := row.Scan(&tx.ID, &tx.RegisterID, &tx.Type, &tx.Category, &tx.Amount, &tx.Description, &method,
		&refType, &refID, &tx.CreatedBy, &tx.Cancelled, &tx.CancelledAt, &tx.CancelledBy, &tx.CancellationReason, &tx.CreatedAt)
	if err != nil {
		return nil, err
	}
	if method.Valid {
		m := domain.PaymentMethod(method.String)
		tx.PaymentMethod = &m
	}
	if refType.Valid && refID.Valid {
		tx.Reference = &domain.Reference{Type: refType.String, ID: refID.Int64}
	}
	return &tx, nil
}

func (r *cashTransactionRepository) Create(ctx context.Context, tx *domain.CashTransaction) error {
	logger.EnterMethod("cashTransactionRepository.Create", "registerID", tx.RegisterID, "type", tx.Type, "amount", tx.Amount)

	var method, refType sql.NullString
	var refID sql.NullInt64
	if tx.PaymentMethod != nil {
		method = sql.NullString{String: string(*tx.PaymentMethod), Valid: true}
	}
	if tx.Reference != nil {
		refType = sql.NullString{String: tx.Reference.Type, Valid: true}
		refID = sql.NullInt64{Int64: tx.Reference.ID, Valid: true}
	}

	query := `INSERT INTO cash_transactions (cash_register_id, type, category, amount, description, payment_method, reference_type, reference_id, user_id, cancelled, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, $10) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		tx.RegisterID, tx.Type, tx.Category, tx.Amount, tx.Description, method, refType, refID, tx.CreatedBy, tx.CreatedAt,
	).Scan(&tx.ID)
	if err != nil {
		logger.ExitMethodWithError("cashTransactionRepository.Create", err, "registerID", tx.RegisterID)
		return err
	}

	logger.ExitMethod("cashTransactionRepository.Create", "transactionID", tx.ID)
	return nil
}

func (r *cashTransactionRepository) GetByID(ctx context.Context, id int64) (*domain.CashTransaction, error) {
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM cash_transactions WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "transaction")
	}
	return tx, nil
}

func (r *cashTransactionRepository) Cancel(ctx context.Context, tx *domain.CashTransaction) error {
	logger.EnterMethod("cashTransactionRepository.Cancel", "transactionID", tx.ID)

	query := `UPDATE cash_transactions SET cancelled = TRUE, cancelled_at = $1, cancelled_by = $2, cancellation_reason = $3
	          WHERE id = $4 AND cancelled = FALSE`
	res, err := r.db.ExecContext(ctx, query, tx.CancelledAt, tx.CancelledBy, tx.CancellationReason, tx.ID)
	if err != nil {
		logger.ExitMethodWithError("cashTransactionRepository.Cancel", err, "transactionID", tx.ID)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.Conflict("transaction %d is already cancelled", tx.ID)
	}

	logger.ExitMethod("cashTransactionRepository.Cancel", "transactionID", tx.ID)
	return nil
}

func (r *cashTransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]domain.CashTransaction, int64, error) {
	w := &where{}
	if filter.RegisterID != 0 {
		w.add("cash_register_id = $%d", filter.RegisterID)
	}
	if filter.Type != "" {
		w.add("type = $%d", filter.Type)
	}
	if filter.Category != "" {
		w.add("category = $%d", filter.Category)
	}
	if filter.Cancelled != nil {
		w.add("cancelled = $%d", *filter.Cancelled)
	}
	if filter.From != nil {
		w.add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		w.add("created_at < $%d", *filter.To)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM cash_transactions`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + transactionColumns + ` FROM cash_transactions` + w.String() + ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ` + w.next(filter.Limit) + ` OFFSET ` + w.next(filter.Offset)
	}
	txs, err := r.query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

func (r *cashTransactionRepository) ListByRegister(ctx context.Context, registerID int64) ([]domain.CashTransaction, error) {
	return r.query(ctx, `SELECT `+transactionColumns+` FROM cash_transactions WHERE cash_register_id = $1 ORDER BY created_at, id`, registerID)
}

func (r *cashTransactionRepository) query(ctx context.Context, query string, args ...any) ([]domain.CashTransaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.CashTransaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

func (r *cashTransactionRepository) SumTotals(ctx context.Context, registerID int64) (domain.RegisterTotals, error) {
	query := `SELECT
	              COALESCE(SUM(CASE WHEN type = 'entry' AND NOT cancelled THEN amount END), 0),
	              COALESCE(SUM(CASE WHEN type = 'exit' AND NOT cancelled THEN amount END), 0),
	              COUNT(*) FILTER (WHERE NOT cancelled),
	              COUNT(*) FILTER (WHERE cancelled)
	          FROM cash_transactions WHERE cash_register_id = $1`
	logger.DatabaseCall("sum_register_totals", query, "registerID", registerID)

	var t domain.RegisterTotals
	err := r.db.QueryRowContext(ctx, query, registerID).Scan(&t.Entries, &t.Exits, &t.ActiveCount, &t.CancelledCount)
	if err != nil {
		return domain.RegisterTotals{}, err
	}
	t.Net = t.Entries.Sub(t.Exits)
	return t, nil
}

func (r *cashTransactionRepository) SumByCategory(ctx context.Context, registerID int64) ([]domain.CategoryTotal, error) {
	query := `SELECT type, category, SUM(amount), COUNT(*) FROM cash_transactions
	          WHERE cash_register_id = $1 AND NOT cancelled
	          GROUP BY type, category ORDER BY type, category`
	rows, err := r.db.QueryContext(ctx, query, registerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CategoryTotal
	for rows.Next() {
		var ct domain.CategoryTotal
		if err := rows.Scan(&ct.Type, &ct.Category, &ct.Total, &ct.Count); err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

func (r *cashTransactionRepository) SumByPaymentMethod(ctx context.Context, registerID int64) ([]domain.PaymentMethodTotal, error) {
	query := `SELECT payment_method, type, SUM(amount), COUNT(*) FROM cash_transactions
	          WHERE cash_register_id = $1 AND NOT cancelled AND payment_method IS NOT NULL
	          GROUP BY payment_method, type ORDER BY payment_method, type`
	rows, err := r.db.QueryContext(ctx, query, registerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PaymentMethodTotal
	for rows.Next() {
		var pm domain.PaymentMethodTotal
		if err := rows.Scan(&pm.PaymentMethod, &pm.Type, &pm.Total, &pm.Count); err != nil {
			return nil, err
		}
		out = append(out, pm)
	}
	return out, rows.Err()
}

func (r *cashTransactionRepository) SentByReference(ctx context.Context, ref domain.Reference) (map[domain.TransactionCategory]decimal.Decimal, error) {
	query := `SELECT category, SUM(CASE WHEN type = 'entry' THEN amount ELSE -amount END)
	          FROM cash_transactions
	          WHERE reference_type = $1 AND reference_id = $2 AND NOT cancelled
	          GROUP BY category`
	rows, err := r.db.QueryContext(ctx, query, ref.Type, ref.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sent := make(map[domain.TransactionCategory]decimal.Decimal)
	for rows.Next() {
		var cat domain.TransactionCategory
		var sum decimal.Decimal
		if err := rows.Scan(&cat, &sum); err != nil {
			return nil, err
		}
		sent[cat] = sum
	}
	return sent, rows.Err()
}
