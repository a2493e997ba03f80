package service

import (
	"context"
	"strings"

	"rental-backoffice/internal/domain"
	"rental-backoffice/internal/logger"
	"rental-backoffice/internal/repository"
)

type clientService struct {
	store repository.Store
	clock domain.Clock
	audit AuditSink
}

func NewClientService(store repository.Store, clock domain.Clock, audit AuditSink) ClientService {
	return &clientService{store: store, clock: clock, audit: audit}
}

func trimClient(c *domain.Client) {
	c.Name = strings.TrimSpace(c.Name)
	c.Document = strings.TrimSpace(c.Document)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.Address = strings.TrimSpace(c.Address)
	c.Observations = strings.TrimSpace(c.Observations)
}

func (s *clientService) CreateClient(ctx context.Context, actor domain.Actor, c *domain.Client) (*domain.Client, error) {
	logger.EnterMethod("clientService.CreateClient")

	trimClient(c)
	if c.Name == "" {
		return nil, domain.Validation("name is required")
	}
	now := s.clock.Now()
	c.ID = 0
	c.Active = true
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := s.store.Repos().Clients.Create(ctx, c); err != nil {
		logger.ExitMethodWithError("clientService.CreateClient", err)
		return nil, err
	}

	s.audit.Record(ctx, auditEvent(actor, domain.AuditClientCreate, "client", c.ID, "client %s", c.Name))
	logger.ExitMethod("clientService.CreateClient", "clientID", c.ID)
	return c, nil
}

func (s *clientService) GetClient(ctx context.Context, id int64) (*domain.Client, error) {
	return s.store.Repos().Clients.GetByID(ctx, id)
}

func (s *clientService) UpdateClient(ctx context.Context, actor domain.Actor, c *domain.Client) (*domain.Client, error) {
	trimClient(c)
	if c.Name == "" {
		return nil, domain.Validation("name is required")
	}
	repos := s.store.Repos()
	cur, err := repos.Clients.GetByID(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Active = cur.Active
	c.CreatedAt = cur.CreatedAt
	c.UpdatedAt = s.clock.Now()
	if err := repos.Clients.Update(ctx, c); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, auditEvent(actor, domain.AuditClientUpdate, "client", c.ID, "client %s updated", c.Name))
	return c, nil
}

func (s *clientService) DeactivateClient(ctx context.Context, actor domain.Actor, id int64) error {
	repos := s.store.Repos()
	c, err := repos.Clients.GetByID(ctx, id)
	if err != nil {
		return err
	}
	c.Active = false
	c.UpdatedAt = s.clock.Now()
	if err := repos.Clients.Update(ctx, c); err != nil {
		return err
	}
	s.audit.Record(ctx, auditEvent(actor, domain.AuditClientUpdate, "client", id, "client %s deactivated", c.Name))
	return nil
}

func (s *clientService) ListClients(ctx context.Context, filter domain.ClientFilter) ([]domain.Client, error) {
	return s.store.Repos().Clients.List(ctx, filter)
}
