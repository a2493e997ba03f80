package postgres

import (
	"context"

	"rental-backoffice/internal/domain"
	"rental-backoffice/internal/logger"
	"rental-backoffice/internal/repository"
)

const clientColumns = `id, name, document, phone, email, address, observations, active, created_at, updated_at`

type clientRepository struct {
	db DBTX
}

func NewClientRepository(db DBTX) repository.ClientRepository {
	return &clientRepository{db: db}
}

func scanClient(row rowScanner) (*domain.Client, error) {
	c := &domain.Client{}
	if err := row.Scan(&c.ID, &c.Name, &c.Document, &c.Phone, &c.Email, &c.Address, &c.Observations,
		&c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *clientRepository) Create(ctx context.Context, c *domain.Client) error {
	logger.EnterMethod("clientRepository.Create", "name", c.Name)

	query := `INSERT INTO clients (name, document, phone, email, address, observations, active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		c.Name, c.Document, c.Phone, c.Email, c.Address, c.Observations, c.Active, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		logger.ExitMethodWithError("clientRepository.Create", err)
		return err
	}

	logger.ExitMethod("clientRepository.Create", "clientID", c.ID)
	return nil
}

func (r *clientRepository) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	c, err := scanClient(r.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "client")
	}
	return c, nil
}

func (r *clientRepository) Update(ctx context.Context, c *domain.Client) error {
	query := `UPDATE clients SET name = $1, document = $2, phone = $3, email = $4, address = $5, observations = $6,
	                 active = $7, updated_at = $8
	          WHERE id = $9`
	_, err := r.db.ExecContext(ctx, query,
		c.Name, c.Document, c.Phone, c.Email, c.Address, c.Observations, c.Active, c.UpdatedAt, c.ID)
	return err
}

func (r *clientRepository) List(ctx context.Context, filter domain.ClientFilter) ([]domain.Client, error) {
	w := &where{}
	if filter.ActiveOnly {
		w.addRaw("active = TRUE")
	}
	if filter.Search != "" {
		w.add("(name ILIKE $%[1]d OR document ILIKE $%[1]d)", "%"+filter.Search+"%")
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients`+w.String()+` ORDER BY name`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

func (r *clientRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM clients WHERE active = TRUE`).Scan(&n)
	return n, err
}
