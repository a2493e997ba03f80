package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"rental-backoffice/internal/domain"
)

type itemRepo struct{ *view }

func (r *itemRepo) codeTaken(d *data, code string, except int64) bool {
	for _, it := range d.items {
		if it.Code == code && it.ID != except {
			return true
		}
	}
	return false
}

func (r *itemRepo) Create(_ context.Context, it *domain.Item) error {
	return r.do(func(d *data) error {
		if r.codeTaken(d, it.Code, 0) {
			return domain.Conflict("item code %q is already in use", it.Code)
		}
		it.ID = d.nextID()
		it.Active = true
		stored := *it
		stored.PricingTiers = nil
		d.items[it.ID] = stored
		return nil
	})
}

func (r *itemRepo) GetByID(_ context.Context, id int64) (*domain.Item, error) {
	var out domain.Item
	err := r.do(func(d *data) error {
		it, ok := d.items[id]
		if !ok {
			return domain.NotFound("item")
		}
		out = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *itemRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Item, error) {
	return r.GetByID(ctx, id)
}

func (r *itemRepo) GetByCode(_ context.Context, code string) (*domain.Item, error) {
	var out *domain.Item
	err := r.do(func(d *data) error {
		for _, it := range d.items {
			if it.Code == code {
				found := it
				out = &found
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *itemRepo) Update(_ context.Context, it *domain.Item) error {
	return r.do(func(d *data) error {
		cur, ok := d.items[it.ID]
		if !ok {
			return domain.NotFound("item")
		}
		if r.codeTaken(d, it.Code, it.ID) {
			return domain.Conflict("item code %q is already in use", it.Code)
		}
		cur.Name = it.Name
		cur.Code = it.Code
		cur.Category = it.Category
		cur.BaseRentalValue = it.BaseRentalValue
		cur.RentalPeriod = it.RentalPeriod
		cur.Observations = it.Observations
		cur.UpdatedAt = it.UpdatedAt
		d.items[it.ID] = cur
		return nil
	})
}

func (r *itemRepo) SetStatus(_ context.Context, id int64, status domain.ItemStatus, at time.Time) error {
	return r.do(func(d *data) error {
		cur, ok := d.items[id]
		if !ok {
			return domain.NotFound("item")
		}
		cur.Status = status
		cur.UpdatedAt = at
		d.items[id] = cur
		return nil
	})
}

func (r *itemRepo) Deactivate(_ context.Context, id int64, at time.Time) error {
	return r.do(func(d *data) error {
		cur, ok := d.items[id]
		if !ok {
			return domain.NotFound("item")
		}
		cur.Active = false
		cur.UpdatedAt = at
		d.items[id] = cur
		return nil
	})
}

func (r *itemRepo) List(_ context.Context, f domain.ItemFilter) ([]domain.Item, error) {
	var out []domain.Item
	search := strings.ToLower(f.Search)
	err := r.do(func(d *data) error {
		for _, it := range d.items {
			if !it.Active {
				continue
			}
			if f.Category != "" && it.Category != f.Category {
				continue
			}
			if f.Status != "" && it.Status != f.Status {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(it.Name), search) &&
				!strings.Contains(strings.ToLower(it.Code), search) {
				continue
			}
			out = append(out, it)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return nil
	})
	return out, err
}

func (r *itemRepo) Categories(_ context.Context) ([]string, error) {
	var out []string
	err := r.do(func(d *data) error {
		seen := map[string]bool{}
		for _, it := range d.items {
			if it.Active && it.Category != "" && !seen[it.Category] {
				seen[it.Category] = true
				out = append(out, it.Category)
			}
		}
		sort.Strings(out)
		return nil
	})
	return out, err
}

func (r *itemRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	err := r.do(func(d *data) error {
		for _, it := range d.items {
			if it.Active {
				counts[string(it.Status)]++
			}
		}
		return nil
	})
	return counts, err
}

func (r *itemRepo) ListPricing(_ context.Context, itemID int64) ([]domain.PricingTier, error) {
	tiers := []domain.PricingTier{}
	err := r.do(func(d *data) error {
		for _, t := range d.tiers {
			if t.ItemID == itemID {
				tiers = append(tiers, t)
			}
		}
		sort.Slice(tiers, func(i, j int) bool {
			if tiers[i].SortOrder != tiers[j].SortOrder {
				return tiers[i].SortOrder < tiers[j].SortOrder
			}
			return tiers[i].DurationMinutes < tiers[j].DurationMinutes
		})
		return nil
	})
	return tiers, err
}

func (r *itemRepo) GetPricingTier(_ context.Context, id int64) (*domain.PricingTier, error) {
	var out domain.PricingTier
	err := r.do(func(d *data) error {
		t, ok := d.tiers[id]
		if !ok {
			return domain.NotFound("pricing tier")
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *itemRepo) ReplacePricing(_ context.Context, itemID int64, tiers []domain.PricingTier) error {
	return r.do(func(d *data) error {
		for id, t := range d.tiers {
			if t.ItemID == itemID {
				delete(d.tiers, id)
			}
		}
		for i := range tiers {
			t := &tiers[i]
			t.ID = d.nextID()
			t.ItemID = itemID
			t.SortOrder = i
			d.tiers[t.ID] = *t
		}
		return nil
	})
}

type clientRepo struct{ *view }

func (r *clientRepo) Create(_ context.Context, c *domain.Client) error {
	return r.do(func(d *data) error {
		c.ID = d.nextID()
		d.clients[c.ID] = *c
		return nil
	})
}

func (r *clientRepo) GetByID(_ context.Context, id int64) (*domain.Client, error) {
	var out domain.Client
	err := r.do(func(d *data) error {
		c, ok := d.clients[id]
		if !ok {
			return domain.NotFound("client")
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *clientRepo) Update(_ context.Context, c *domain.Client) error {
	return r.do(func(d *data) error {
		if _, ok := d.clients[c.ID]; !ok {
			return domain.NotFound("client")
		}
		d.clients[c.ID] = *c
		return nil
	})
}

func (r *clientRepo) List(_ context.Context, f domain.ClientFilter) ([]domain.Client, error) {
	var out []domain.Client
	search := strings.ToLower(f.Search)
	err := r.do(func(d *data) error {
		for _, c := range d.clients {
			if f.ActiveOnly && !c.Active {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(c.Name), search) &&
				!strings.Contains(strings.ToLower(c.Document), search) {
				continue
			}
			out = append(out, c)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return nil
	})
	return out, err
}

func (r *clientRepo) CountActive(_ context.Context) (int64, error) {
	var n int64
	err := r.do(func(d *data) error {
		for _, c := range d.clients {
			if c.Active {
				n++
			}
		}
		return nil
	})
	return n, err
}

type auditRepo struct{ *view }

func (r *auditRepo) Append(_ context.Context, ev *domain.AuditEvent) error {
	return r.do(func(d *data) error {
		d.audit = append(d.audit, *ev)
		return nil
	})
}

func (r *auditRepo) List(_ context.Context, resource string, resourceID int64) ([]domain.AuditEvent, error) {
	var out []domain.AuditEvent
	err := r.do(func(d *data) error {
		for _, ev := range d.audit {
			if ev.Resource == resource && ev.ResourceID == resourceID {
				out = append(out, ev)
			}
		}
		return nil
	})
	return out, err
}
