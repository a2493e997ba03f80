package postgres

import (
	"context"
	"database/sql"
	"time"

	"rental-backoffice/internal/domain"
	"rental-backoffice/internal/logger"
	"rental-backoffice/internal/repository"
)

const registerColumns = `cr.id, cr.operator_id, COALESCE(u.name, ''), cr.opening_balance, cr.closing_balance,
       cr.total_entries, cr.total_exits, cr.status, cr.observations, cr.opened_at, cr.closed_at, cr.updated_at`

const registerFrom = ` FROM cash_registers cr LEFT JOIN users u ON u.id = cr.operator_id`

type cashRegisterRepository struct {
	db DBTX
}

func NewCashRegisterRepository(db DBTX) repository.CashRegisterRepository {
	return &cashRegisterRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegister(row rowScanner) (*domain.CashRegister, error) {
	reg := &domain.CashRegister{}
	err := row.Scan(&reg.ID, &reg.OperatorID, &reg.OperatorName, &reg.OpeningBalance, &reg.ClosingBalance,
		&reg.TotalEntries, &reg.TotalExits, &reg.Status, &reg.Observations, &reg.OpenedAt, &reg.ClosedAt, &reg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *cashRegisterRepository) Create(ctx context.Context, reg *domain.CashRegister) error {
	logger.EnterMethod("cashRegisterRepository.Create", "operatorID", reg.OperatorID)

	query := `INSERT INTO cash_registers (operator_id, opening_balance, total_entries, total_exits, status, observations, opened_at, updated_at)
	          VALUES ($1, $2, 0, 0, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		reg.OperatorID, reg.OpeningBalance, reg.Status, reg.Observations, reg.OpenedAt, reg.UpdatedAt,
	).Scan(&reg.ID)
	if err != nil {
		if isUniqueViolation(err, "ux_cash_registers_open_operator") {
			err = domain.Conflict("operator %d already has an open cash register", reg.OperatorID)
		}
		logger.ExitMethodWithError("cashRegisterRepository.Create", err, "operatorID", reg.OperatorID)
		return err
	}

	logger.ExitMethod("cashRegisterRepository.Create", "registerID", reg.ID)
	return nil
}

func (r *cashRegisterRepository) GetByID(ctx context.Context, id int64) (*domain.CashRegister, error) {
	reg, err := scanRegister(r.db.QueryRowContext(ctx, `SELECT `+registerColumns+registerFrom+` WHERE cr.id = $1`, id))
	if err != nil {
		return nil, notFound(err, "cash register")
	}
	return reg, nil
}

func (r *cashRegisterRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.CashRegister, error) {
	reg, err := scanRegister(r.db.QueryRowContext(ctx, `SELECT `+registerColumns+registerFrom+` WHERE cr.id = $1 FOR UPDATE OF cr`, id))
	if err != nil {
		return nil, notFound(err, "cash register")
	}
	return reg, nil
}

func (r *cashRegisterRepository) GetOpenByOperator(ctx context.Context, operatorID int64) (*domain.CashRegister, error) {
	query := `SELECT ` + registerColumns + registerFrom + ` WHERE cr.operator_id = $1 AND cr.status = 'open' ORDER BY cr.opened_at DESC LIMIT 1`
	reg, err := scanRegister(r.db.QueryRowContext(ctx, query, operatorID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *cashRegisterRepository) Close(ctx context.Context, reg *domain.CashRegister) error {
	logger.EnterMethod("cashRegisterRepository.Close", "registerID", reg.ID)

	query := `UPDATE cash_registers SET
	              closing_balance = $1, total_entries = $2, total_exits = $3,
	              status = $4, closed_at = $5, observations = $6, updated_at = $7
	          WHERE id = $8 AND status = 'open'`
	res, err := r.db.ExecContext(ctx, query,
		reg.ClosingBalance, reg.TotalEntries, reg.TotalExits, reg.Status, reg.ClosedAt, reg.Observations, reg.UpdatedAt, reg.ID)
	if err != nil {
		logger.ExitMethodWithError("cashRegisterRepository.Close", err, "registerID", reg.ID)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("close_register", n, nil, "registerID", reg.ID)
	if n == 0 {
		return domain.Conflict("cash register %d is already closed", reg.ID)
	}

	logger.ExitMethod("cashRegisterRepository.Close", "registerID", reg.ID)
	return nil
}

func (r *cashRegisterRepository) List(ctx context.Context, filter domain.RegisterFilter) ([]domain.CashRegister, int64, error) {
	w := &where{}
	if filter.OperatorID != 0 {
		w.add("cr.operator_id = $%d", filter.OperatorID)
	}
	if filter.Status != "" {
		w.add("cr.status = $%d", filter.Status)
	}
	if filter.From != nil {
		w.add("cr.opened_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		w.add("cr.opened_at < $%d", *filter.To)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM cash_registers cr`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + registerColumns + registerFrom + w.String() + ` ORDER BY cr.opened_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ` + w.next(filter.Limit) + ` OFFSET ` + w.next(filter.Offset)
	}
	logger.DatabaseCall("list_registers", query)

	regs, err := r.query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return regs, total, nil
}

func (r *cashRegisterRepository) ListOpenedBetween(ctx context.Context, from, to time.Time) ([]domain.CashRegister, error) {
	query := `SELECT ` + registerColumns + registerFrom + ` WHERE cr.opened_at >= $1 AND cr.opened_at < $2 ORDER BY cr.opened_at`
	return r.query(ctx, query, from, to)
}

func (r *cashRegisterRepository) query(ctx context.Context, query string, args ...any) ([]domain.CashRegister, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []domain.CashRegister
	for rows.Next() {
		reg, err := scanRegister(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}
