package service

import (
	"context"
	"strings"

	"rental-backoffice/internal/domain"
	"rental-backoffice/internal/logger"
	"rental-backoffice/internal/repository"
)

type itemService struct {
	store repository.Store
	clock domain.Clock
	audit AuditSink
}

func NewItemService(store repository.Store, clock domain.Clock, audit AuditSink) ItemService {
	return &itemService{store: store, clock: clock, audit: audit}
}

func (s *itemService) CreateItem(ctx context.Context, actor domain.Actor, in domain.NewItem) (*domain.Item, error) {
	logger.EnterMethod("itemService.CreateItem", "code", in.Code)

	tiers, err := normalizeTiers(in.PricingTiers)
	if err != nil {
		return nil, err
	}
	item := &domain.Item{
		Name:            strings.TrimSpace(in.Name),
		Code:            strings.TrimSpace(in.Code),
		Category:        strings.TrimSpace(in.Category),
		BaseRentalValue: in.BaseRentalValue,
		RentalPeriod:    in.RentalPeriod,
		Status:          domain.ItemStatusAvailable,
		Observations:    strings.TrimSpace(in.Observations),
	}
	if item.RentalPeriod == "" {
		item.RentalPeriod = domain.RentalPeriodDay
	}
	if len(tiers) > 0 {
		item.BaseRentalValue = tiers[0].Price
	}
	if err := validateItem(item); err != nil {
		logger.ExitMethodWithError("itemService.CreateItem", err, "code", in.Code)
		return nil, err
	}

	now := s.clock.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	err = s.store.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		existing, err := repos.Items.GetByCode(ctx, item.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.Conflict("item code %q is already in use", item.Code)
		}
		if err := repos.Items.Create(ctx, item); err != nil {
			return err
		}
		if len(tiers) > 0 {
			return repos.Items.ReplacePricing(ctx, item.ID, tiers)
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("itemService.CreateItem", err, "code", in.Code)
		return nil, err
	}
	item.PricingTiers = tiers

	s.audit.Record(ctx, auditEvent(actor, domain.AuditItemCreate, "item", item.ID,
		"item %s (%s) at %s per %s", item.Name, item.Code, item.BaseRentalValue.StringFixed(2), item.RentalPeriod))
	logger.ExitMethod("itemService.CreateItem", "itemID", item.ID)
	return item, nil
}

func (s *itemService) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	repos := s.store.Repos()
	item, err := repos.Items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.PricingTiers, err = repos.Items.ListPricing(ctx, id); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *itemService) UpdateItem(ctx context.Context, actor domain.Actor, id int64, in domain.ItemUpdate) (*domain.Item, error) {
	logger.EnterMethod("itemService.UpdateItem", "itemID", id)

	var item *domain.Item
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		item, err = repos.Items.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			item.Name = strings.TrimSpace(*in.Name)
		}
		if in.Code != nil && strings.TrimSpace(*in.Code) != item.Code {
			code := strings.TrimSpace(*in.Code)
			existing, err := repos.Items.GetByCode(ctx, code)
			if err != nil {
				return err
			}
			if existing != nil {
				return domain.Conflict("item code %q is already in use", code)
			}
			item.Code = code
		}
		if in.Category != nil {
			item.Category = strings.TrimSpace(*in.Category)
		}
		if in.BaseRentalValue != nil {
			item.BaseRentalValue = *in.BaseRentalValue
		}
		if in.RentalPeriod != nil {
			item.RentalPeriod = *in.RentalPeriod
		}
		if in.Observations != nil {
			item.Observations = strings.TrimSpace(*in.Observations)
		}
		if err := validateItem(item); err != nil {
			return err
		}
		item.UpdatedAt = s.clock.Now()
		return repos.Items.Update(ctx, item)
	})
	if err != nil {
		logger.ExitMethodWithError("itemService.UpdateItem", err, "itemID", id)
		return nil, err
	}

	s.audit.Record(ctx, auditEvent(actor, domain.AuditItemUpdate, "item", item.ID, "item %s updated", item.Code))
	logger.ExitMethod("itemService.UpdateItem", "itemID", id)
	return s.GetItem(ctx, id)
}

func (s *itemService) DeactivateItem(ctx context.Context, actor domain.Actor, id int64) error {
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		item, err := repos.Items.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if item.Status == domain.ItemStatusRented {
			return domain.Conflict("item %q is rented and cannot be deactivated", item.Name)
		}
		return repos.Items.Deactivate(ctx, id, s.clock.Now())
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, auditEvent(actor, domain.AuditItemUpdate, "item", id, "item deactivated"))
	return nil
}

func (s *itemService) ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.Validation("invalid item status %q", filter.Status)
	}
	return s.store.Repos().Items.List(ctx, filter)
}

func (s *itemService) ListCategories(ctx context.Context) ([]string, error) {
	return s.store.Repos().Items.Categories(ctx)
}

// SetMaintenance is the only manual way to change an item's status. A rented
// item is released by its rental, never by hand.
func (s *itemService) SetMaintenance(ctx context.Context, actor domain.Actor, id int64, on bool) (*domain.Item, error) {
	logger.EnterMethod("itemService.SetMaintenance", "itemID", id, "on", on)

	var item *domain.Item
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		item, err = repos.Items.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if item.Status == domain.ItemStatusRented {
			return domain.Conflict("item %q is rented", item.Name)
		}
		status := domain.ItemStatusAvailable
		if on {
			status = domain.ItemStatusMaintenance
		}
		if item.Status == status {
			return nil
		}
		item.Status = status
		item.UpdatedAt = s.clock.Now()
		return repos.Items.SetStatus(ctx, id, status, item.UpdatedAt)
	})
	if err != nil {
		logger.ExitMethodWithError("itemService.SetMaintenance", err, "itemID", id)
		return nil, err
	}

	s.audit.Record(ctx, auditEvent(actor, domain.AuditItemMaintenance, "item", id, "status %s", item.Status))
	logger.ExitMethod("itemService.SetMaintenance", "itemID", id, "status", item.Status)
	return item, nil
}

func (s *itemService) ListPricing(ctx context.Context, itemID int64) ([]domain.PricingTier, error) {
	repos := s.store.Repos()
	if _, err := repos.Items.GetByID(ctx, itemID); err != nil {
		return nil, err
	}
	return repos.Items.ListPricing(ctx, itemID)
}

func (s *itemService) ReplacePricing(ctx context.Context, actor domain.Actor, itemID int64, tiers []domain.PricingTier) ([]domain.PricingTier, error) {
	logger.EnterMethod("itemService.ReplacePricing", "itemID", itemID, "tiers", len(tiers))

	tiers, err := normalizeTiers(tiers)
	if err != nil {
		return nil, err
	}
	err = s.store.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Items.GetByIDForUpdate(ctx, itemID); err != nil {
			return err
		}
		return repos.Items.ReplacePricing(ctx, itemID, tiers)
	})
	if err != nil {
		logger.ExitMethodWithError("itemService.ReplacePricing", err, "itemID", itemID)
		return nil, err
	}

	s.audit.Record(ctx, auditEvent(actor, domain.AuditItemPricing, "item", itemID, "%d pricing tiers saved", len(tiers)))
	logger.ExitMethod("itemService.ReplacePricing", "itemID", itemID)
	return tiers, nil
}

func validateItem(item *domain.Item) error {
	if item.Name == "" {
		return domain.Validation("name is required")
	}
	if item.Code == "" {
		return domain.Validation("internal code is required")
	}
	if !item.RentalPeriod.Valid() {
		return domain.Validation("invalid rental period %q", item.RentalPeriod)
	}
	if item.BaseRentalValue.IsNegative() || !domain.HasCentsPrecision(item.BaseRentalValue) {
		return domain.Validation("rental value must be a non-negative amount in cents")
	}
	return nil
}

// normalizeTiers validates tiers and returns a fresh slice so callers never
// see ids assigned by the store on their own input.
func normalizeTiers(in []domain.PricingTier) ([]domain.PricingTier, error) {
	out := make([]domain.PricingTier, 0, len(in))
	for i, t := range in {
		t.Label = strings.TrimSpace(t.Label)
		switch {
		case t.DurationMinutes <= 0:
			return nil, domain.Validation("tier %d: duration must be greater than zero", i+1)
		case t.Label == "":
			return nil, domain.Validation("tier %d: label is required", i+1)
		case t.Price.IsNegative() || !domain.HasCentsPrecision(t.Price):
			return nil, domain.Validation("tier %d: price must be a non-negative amount in cents", i+1)
		case t.ToleranceMinutes < 0:
			return nil, domain.Validation("tier %d: tolerance must not be negative", i+1)
		}
		t.ID = 0
		out = append(out, t)
	}
	return out, nil
}
