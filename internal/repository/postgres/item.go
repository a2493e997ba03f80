package postgres

import (
	"context"
	"database/sql"
	"time"

	"rental-backoffice/internal/domain"
	"rental-backoffice/internal/logger"
	"rental-backoffice/internal/repository"
)

const itemColumns = `id, name, internal_code, category, rental_value, rental_period, status, observations, active, created_at, updated_at`

const pricingColumns = `id, item_id, duration_minutes, label, price, tolerance_minutes, sort_order`

type itemRepository struct {
	db DBTX
}

func NewItemRepository(db DBTX) repository.ItemRepository {
	return &itemRepository{db: db}
}

func scanItem(row rowScanner) (*domain.Item, error) {
	it := &domain.Item{}
	err := row.Scan(&it.ID, &it.Name, &it.Code, &it.Category, &it.BaseRentalValue, &it.RentalPeriod,
		&it.Status, &it.Observations, &it.Active, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (r *itemRepository) Create(ctx context.Context, it *domain.Item) error {
	logger.EnterMethod("itemRepository.Create", "code", it.Code)

	query := `INSERT INTO items (name, internal_code, category, rental_value, rental_period, status, observations, active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8, $9) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		it.Name, it.Code, it.Category, it.BaseRentalValue, it.RentalPeriod, it.Status, it.Observations, it.CreatedAt, it.UpdatedAt,
	).Scan(&it.ID)
	if err != nil {
		if isUniqueViolation(err, "") {
			err = domain.Conflict("item code %q is already in use", it.Code)
		}
		logger.ExitMethodWithError("itemRepository.Create", err, "code", it.Code)
		return err
	}
	it.Active = true

	logger.ExitMethod("itemRepository.Create", "itemID", it.ID)
	return nil
}

func (r *itemRepository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	it, err := scanItem(r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "item")
	}
	return it, nil
}

func (r *itemRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Item, error) {
	it, err := scanItem(r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "item")
	}
	return it, nil
}

func (r *itemRepository) GetByCode(ctx context.Context, code string) (*domain.Item, error) {
	it, err := scanItem(r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE internal_code = $1`, code))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return it, err
}

func (r *itemRepository) Update(ctx context.Context, it *domain.Item) error {
	logger.EnterMethod("itemRepository.Update", "itemID", it.ID)

	query := `UPDATE items SET name = $1, internal_code = $2, category = $3, rental_value = $4, rental_period = $5,
	                 observations = $6, updated_at = $7
	          WHERE id = $8`
	_, err := r.db.ExecContext(ctx, query,
		it.Name, it.Code, it.Category, it.BaseRentalValue, it.RentalPeriod, it.Observations, it.UpdatedAt, it.ID)
	if err != nil {
		if isUniqueViolation(err, "") {
			err = domain.Conflict("item code %q is already in use", it.Code)
		}
		logger.ExitMethodWithError("itemRepository.Update", err, "itemID", it.ID)
		return err
	}

	logger.ExitMethod("itemRepository.Update", "itemID", it.ID)
	return nil
}

func (r *itemRepository) SetStatus(ctx context.Context, id int64, status domain.ItemStatus, at time.Time) error {
	logger.DatabaseCall("set_item_status", "UPDATE items SET status", "itemID", id, "status", status)
	_, err := r.db.ExecContext(ctx, `UPDATE items SET status = $1, updated_at = $2 WHERE id = $3`, status, at, id)
	return err
}

func (r *itemRepository) Deactivate(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE items SET active = FALSE, updated_at = $1 WHERE id = $2`, at, id)
	return err
}

func (r *itemRepository) List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	w := &where{}
	w.addRaw("active = TRUE")
	if filter.Category != "" {
		w.add("category = $%d", filter.Category)
	}
	if filter.Status != "" {
		w.add("status = $%d", filter.Status)
	}
	if filter.Search != "" {
		w.add("(name ILIKE $%[1]d OR internal_code ILIKE $%[1]d)", "%"+filter.Search+"%")
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM items`+w.String()+` ORDER BY name`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (r *itemRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT category FROM items WHERE active = TRUE AND category <> '' ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *itemRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, count(*) FROM items WHERE active = TRUE GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *itemRepository) ListPricing(ctx context.Context, itemID int64) ([]domain.PricingTier, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+pricingColumns+` FROM item_pricing WHERE item_id = $1 ORDER BY sort_order, duration_minutes`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tiers := []domain.PricingTier{}
	for rows.Next() {
		var t domain.PricingTier
		if err := rows.Scan(&t.ID, &t.ItemID, &t.DurationMinutes, &t.Label, &t.Price, &t.ToleranceMinutes, &t.SortOrder); err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

func (r *itemRepository) GetPricingTier(ctx context.Context, id int64) (*domain.PricingTier, error) {
	var t domain.PricingTier
	err := r.db.QueryRowContext(ctx, `SELECT `+pricingColumns+` FROM item_pricing WHERE id = $1`, id).
		Scan(&t.ID, &t.ItemID, &t.DurationMinutes, &t.Label, &t.Price, &t.ToleranceMinutes, &t.SortOrder)
	if err != nil {
		return nil, notFound(err, "pricing tier")
	}
	return &t, nil
}

// ReplacePricing must run inside a transaction for the replace to be atomic.
func (r *itemRepository) ReplacePricing(ctx context.Context, itemID int64, tiers []domain.PricingTier) error {
	logger.EnterMethod("itemRepository.ReplacePricing", "itemID", itemID, "tiers", len(tiers))

	if _, err := r.db.ExecContext(ctx, `DELETE FROM item_pricing WHERE item_id = $1`, itemID); err != nil {
		logger.ExitMethodWithError("itemRepository.ReplacePricing", err, "itemID", itemID)
		return err
	}

	query := `INSERT INTO item_pricing (item_id, duration_minutes, label, price, tolerance_minutes, sort_order)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	for i := range tiers {
		t := &tiers[i]
		t.ItemID = itemID
		t.SortOrder = i
		if err := r.db.QueryRowContext(ctx, query, itemID, t.DurationMinutes, t.Label, t.Price, t.ToleranceMinutes, t.SortOrder).Scan(&t.ID); err != nil {
			logger.ExitMethodWithError("itemRepository.ReplacePricing", err, "itemID", itemID)
			return err
		}
	}

	logger.ExitMethod("itemRepository.ReplacePricing", "itemID", itemID)
	return nil
}
