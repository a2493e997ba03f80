package service

import (
	"context"
	"fmt"

	"rental-backoffice/internal/domain"
	"rental-backoffice/internal/logger"
	"rental-backoffice/internal/repository"

	"github.com/oklog/ulid/v2"
)

type auditRecorder struct {
	repo  repository.AuditRepository
	clock domain.Clock
}

// NewAuditRecorder appends events to the audit log. Write failures are logged
// and swallowed.
func NewAuditRecorder(repo repository.AuditRepository, clock domain.Clock) AuditSink {
	return &auditRecorder{repo: repo, clock: clock}
}

func (r *auditRecorder) Record(ctx context.Context, ev domain.AuditEvent) {
	if ev.ID == "" {
		ev.ID = ulid.Make().String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = r.clock.Now()
	}
	if err := r.repo.Append(ctx, &ev); err != nil {
		logger.Warn("Failed to append audit event", "action", ev.Action, "resource", ev.Resource,
			"resourceID", ev.ResourceID, "error", err)
		return
	}
	logger.Debug("Audit event recorded", "id", ev.ID, "action", ev.Action, "resourceID", ev.ResourceID)
}

func auditEvent(actor domain.Actor, action domain.AuditAction, resource string, id int64, format string, args ...any) domain.AuditEvent {
	return domain.AuditEvent{
		UserID:     actor.UserID,
		Action:     action,
		Resource:   resource,
		ResourceID: id,
		Details:    fmt.Sprintf(format, args...),
		IPAddress:  actor.IPAddress,
		RequestID:  actor.RequestID,
	}
}

// NopAuditSink discards events.
type NopAuditSink struct{}

func (NopAuditSink) Record(context.Context, domain.AuditEvent) {}
