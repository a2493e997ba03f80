package postgres

import (
	"context"

	"rental-backoffice/internal/domain"
	"rental-backoffice/internal/repository"
)

type auditRepository struct {
	db DBTX
}

func NewAuditRepository(db DBTX) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, ev *domain.AuditEvent) error {
	query := `INSERT INTO audit_logs (id, user_id, action, resource, resource_id, details, ip_address, request_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		ev.ID, ev.UserID, ev.Action, ev.Resource, ev.ResourceID, ev.Details, ev.IPAddress, ev.RequestID, ev.CreatedAt)
	return err
}

func (r *auditRepository) List(ctx context.Context, resource string, resourceID int64) ([]domain.AuditEvent, error) {
	query := `SELECT id, user_id, action, resource, resource_id, details, ip_address, request_id, created_at
	          FROM audit_logs WHERE resource = $1 AND resource_id = $2 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, resource, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.AuditEvent
	for rows.Next() {
		var ev domain.AuditEvent
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.Action, &ev.Resource, &ev.ResourceID, &ev.Details,
			&ev.IPAddress, &ev.RequestID, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
