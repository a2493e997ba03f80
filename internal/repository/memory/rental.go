package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"rental-backoffice/internal/domain"

	"github.com/shopspring/decimal"
)

type rentalRepo struct{ *view }

func (r *rentalRepo) joined(d *data, rt domain.Rental) domain.Rental {
	if c, ok := d.clients[rt.ClientID]; ok {
		rt.ClientName = c.Name
	}
	if it, ok := d.items[rt.ItemID]; ok {
		rt.ItemName = it.Name
		rt.ItemCode = it.Code
	}
	rt.TotalPaid = decimal.Zero
	for _, p := range d.payments {
		if p.RentalID == rt.ID {
			rt.TotalPaid = rt.TotalPaid.Add(p.Amount)
		}
	}
	return rt
}

func (r *rentalRepo) Create(_ context.Context, rt *domain.Rental) error {
	return r.do(func(d *data) error {
		rt.ID = d.nextID()
		d.rentals[rt.ID] = *rt
		return nil
	})
}

func (r *rentalRepo) GetByID(_ context.Context, id int64) (*domain.Rental, error) {
	var out domain.Rental
	err := r.do(func(d *data) error {
		rt, ok := d.rentals[id]
		if !ok {
			return domain.NotFound("rental")
		}
		out = r.joined(d, rt)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *rentalRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Rental, error) {
	return r.GetByID(ctx, id)
}

func (r *rentalRepo) Complete(_ context.Context, rt *domain.Rental) error {
	return r.do(func(d *data) error {
		cur, ok := d.rentals[rt.ID]
		if !ok {
			return domain.NotFound("rental")
		}
		if cur.Status != domain.RentalStatusActive && cur.Status != domain.RentalStatusOverdue {
			return domain.Validation("rental %d cannot be completed", rt.ID)
		}
		cur.ActualEndDate = rt.ActualEndDate
		cur.LateFee = rt.LateFee
		cur.TotalValue = rt.TotalValue
		cur.Status = rt.Status
		cur.UpdatedAt = rt.UpdatedAt
		d.rentals[rt.ID] = cur
		return nil
	})
}

func (r *rentalRepo) UpdateStatus(_ context.Context, id int64, status domain.RentalStatus, at time.Time) error {
	return r.do(func(d *data) error {
		cur, ok := d.rentals[id]
		if !ok {
			return domain.NotFound("rental")
		}
		cur.Status = status
		cur.UpdatedAt = at
		d.rentals[id] = cur
		return nil
	})
}

func (r *rentalRepo) List(_ context.Context, f domain.RentalFilter) ([]domain.Rental, error) {
	var out []domain.Rental
	err := r.do(func(d *data) error {
		for _, rt := range d.rentals {
			if f.Status != "" && rt.Status != f.Status {
				continue
			}
			if f.ClientID != 0 && rt.ClientID != f.ClientID {
				continue
			}
			if f.ItemID != 0 && rt.ItemID != f.ItemID {
				continue
			}
			out = append(out, r.joined(d, rt))
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].ID > out[j].ID
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
		return nil
	})
	return out, err
}

func (r *rentalRepo) MarkOverdue(_ context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.do(func(d *data) error {
		for id, rt := range d.rentals {
			if rt.Status == domain.RentalStatusActive && rt.ExpectedEndDate.Before(now) {
				rt.Status = domain.RentalStatusOverdue
				rt.UpdatedAt = now
				d.rentals[id] = rt
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *rentalRepo) CountByStatus(_ context.Context, statuses ...domain.RentalStatus) (int64, error) {
	var n int64
	err := r.do(func(d *data) error {
		for _, rt := range d.rentals {
			if slices.Contains(statuses, rt.Status) {
				n++
			}
		}
		return nil
	})
	return n, err
}

type paymentRepo struct{ *view }

func (r *paymentRepo) joined(d *data, p domain.Payment) domain.Payment {
	if rt, ok := d.rentals[p.RentalID]; ok {
		p.ClientName = d.clients[rt.ClientID].Name
		p.ItemName = d.items[rt.ItemID].Name
	}
	return p
}

func (r *paymentRepo) Create(_ context.Context, p *domain.Payment) error {
	return r.do(func(d *data) error {
		if _, ok := d.rentals[p.RentalID]; !ok {
			return domain.NotFound("rental")
		}
		p.ID = d.nextID()
		d.payments[p.ID] = *p
		return nil
	})
}

func (r *paymentRepo) GetByID(_ context.Context, id int64) (*domain.Payment, error) {
	var out domain.Payment
	err := r.do(func(d *data) error {
		p, ok := d.payments[id]
		if !ok {
			return domain.NotFound("payment")
		}
		out = r.joined(d, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *paymentRepo) List(_ context.Context, f domain.PaymentFilter) ([]domain.Payment, error) {
	var out []domain.Payment
	err := r.do(func(d *data) error {
		for _, p := range d.payments {
			if f.RentalID != 0 && p.RentalID != f.RentalID {
				continue
			}
			if f.Method != "" && p.Method != f.Method {
				continue
			}
			out = append(out, r.joined(d, p))
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].PaymentDate.Equal(out[j].PaymentDate) {
				return out[i].ID > out[j].ID
			}
			return out[i].PaymentDate.After(out[j].PaymentDate)
		})
		return nil
	})
	return out, err
}

func (r *paymentRepo) SumByRental(_ context.Context, rentalID int64) (decimal.Decimal, error) {
	sum := decimal.Zero
	err := r.do(func(d *data) error {
		for _, p := range d.payments {
			if p.RentalID == rentalID {
				sum = sum.Add(p.Amount)
			}
		}
		return nil
	})
	return sum, err
}

func (r *paymentRepo) SumBetween(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	err := r.do(func(d *data) error {
		for _, p := range d.payments {
			if !p.PaymentDate.Before(from) && p.PaymentDate.Before(to) {
				sum = sum.Add(p.Amount)
			}
		}
		return nil
	})
	return sum, err
}
