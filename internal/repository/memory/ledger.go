package memory

import (
	"context"
	"sort"
	"time"

	"rental-backoffice/internal/domain"

	"github.com/shopspring/decimal"
)

type registerRepo struct{ *view }

func (r *registerRepo) withName(d *data, reg domain.CashRegister) *domain.CashRegister {
	reg.OperatorName = d.operators[reg.OperatorID]
	return &reg
}

func (r *registerRepo) Create(_ context.Context, reg *domain.CashRegister) error {
	return r.do(func(d *data) error {
		for _, existing := range d.registers {
			if existing.OperatorID == reg.OperatorID && existing.IsOpen() {
				return domain.Conflict("operator %d already has an open cash register", reg.OperatorID)
			}
		}
		reg.ID = d.nextID()
		reg.TotalEntries = decimal.Zero
		reg.TotalExits = decimal.Zero
		d.registers[reg.ID] = *reg
		return nil
	})
}

func (r *registerRepo) GetByID(_ context.Context, id int64) (*domain.CashRegister, error) {
	var out *domain.CashRegister
	err := r.do(func(d *data) error {
		reg, ok := d.registers[id]
		if !ok {
			return domain.NotFound("cash register")
		}
		out = r.withName(d, reg)
		return nil
	})
	return out, err
}

func (r *registerRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.CashRegister, error) {
	return r.GetByID(ctx, id)
}

func (r *registerRepo) GetOpenByOperator(_ context.Context, operatorID int64) (*domain.CashRegister, error) {
	var out *domain.CashRegister
	err := r.do(func(d *data) error {
		for _, reg := range d.registers {
			if reg.OperatorID == operatorID && reg.IsOpen() {
				out = r.withName(d, reg)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *registerRepo) Close(_ context.Context, reg *domain.CashRegister) error {
	return r.do(func(d *data) error {
		cur, ok := d.registers[reg.ID]
		if !ok {
			return domain.NotFound("cash register")
		}
		if !cur.IsOpen() {
			return domain.Conflict("cash register %d is already closed", reg.ID)
		}
		cur.ClosingBalance = reg.ClosingBalance
		cur.TotalEntries = reg.TotalEntries
		cur.TotalExits = reg.TotalExits
		cur.Status = reg.Status
		cur.ClosedAt = reg.ClosedAt
		cur.Observations = reg.Observations
		cur.UpdatedAt = reg.UpdatedAt
		d.registers[reg.ID] = cur
		return nil
	})
}

func (r *registerRepo) List(_ context.Context, f domain.RegisterFilter) ([]domain.CashRegister, int64, error) {
	var out []domain.CashRegister
	var total int64
	err := r.do(func(d *data) error {
		var all []domain.CashRegister
		for _, reg := range d.registers {
			if f.OperatorID != 0 && reg.OperatorID != f.OperatorID {
				continue
			}
			if f.Status != "" && reg.Status != f.Status {
				continue
			}
			if f.From != nil && reg.OpenedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && !reg.OpenedAt.Before(*f.To) {
				continue
			}
			all = append(all, *r.withName(d, reg))
		}
		sort.Slice(all, func(i, j int) bool {
			if all[i].OpenedAt.Equal(all[j].OpenedAt) {
				return all[i].ID > all[j].ID
			}
			return all[i].OpenedAt.After(all[j].OpenedAt)
		})
		total = int64(len(all))
		out = page(all, f.Limit, f.Offset)
		return nil
	})
	return out, total, err
}

func (r *registerRepo) ListOpenedBetween(_ context.Context, from, to time.Time) ([]domain.CashRegister, error) {
	var out []domain.CashRegister
	err := r.do(func(d *data) error {
		for _, reg := range d.registers {
			if !reg.OpenedAt.Before(from) && reg.OpenedAt.Before(to) {
				out = append(out, *r.withName(d, reg))
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].OpenedAt.Equal(out[j].OpenedAt) {
				return out[i].ID < out[j].ID
			}
			return out[i].OpenedAt.Before(out[j].OpenedAt)
		})
		return nil
	})
	return out, err
}

type transactionRepo struct{ *view }

func (r *transactionRepo) Create(_ context.Context, tx *domain.CashTransaction) error {
	return r.do(func(d *data) error {
		if _, ok := d.registers[tx.RegisterID]; !ok {
			return domain.NotFound("cash register")
		}
		tx.ID = d.nextID()
		d.transactions[tx.ID] = *tx
		return nil
	})
}

func (r *transactionRepo) GetByID(_ context.Context, id int64) (*domain.CashTransaction, error) {
	var out *domain.CashTransaction
	err := r.do(func(d *data) error {
		tx, ok := d.transactions[id]
		if !ok {
			return domain.NotFound("transaction")
		}
		out = &tx
		return nil
	})
	return out, err
}

func (r *transactionRepo) Cancel(_ context.Context, tx *domain.CashTransaction) error {
	return r.do(func(d *data) error {
		cur, ok := d.transactions[tx.ID]
		if !ok {
			return domain.NotFound("transaction")
		}
		if cur.Cancelled {
			return domain.Conflict("transaction %d is already cancelled", tx.ID)
		}
		cur.Cancelled = true
		cur.CancelledAt = tx.CancelledAt
		cur.CancelledBy = tx.CancelledBy
		cur.CancellationReason = tx.CancellationReason
		d.transactions[tx.ID] = cur
		return nil
	})
}

func sortTransactions(txs []domain.CashTransaction, desc bool) {
	sort.Slice(txs, func(i, j int) bool {
		a, b := txs[i], txs[j]
		if desc {
			a, b = b, a
		}
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

func (r *transactionRepo) List(_ context.Context, f domain.TransactionFilter) ([]domain.CashTransaction, int64, error) {
	var out []domain.CashTransaction
	var total int64
	err := r.do(func(d *data) error {
		var all []domain.CashTransaction
		for _, tx := range d.transactions {
			if f.RegisterID != 0 && tx.RegisterID != f.RegisterID {
				continue
			}
			if f.Type != "" && tx.Type != f.Type {
				continue
			}
			if f.Category != "" && tx.Category != f.Category {
				continue
			}
			if f.Cancelled != nil && tx.Cancelled != *f.Cancelled {
				continue
			}
			if f.From != nil && tx.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && !tx.CreatedAt.Before(*f.To) {
				continue
			}
			all = append(all, tx)
		}
		sortTransactions(all, true)
		total = int64(len(all))
		out = page(all, f.Limit, f.Offset)
		return nil
	})
	return out, total, err
}

func (r *transactionRepo) ListByRegister(_ context.Context, registerID int64) ([]domain.CashTransaction, error) {
	var out []domain.CashTransaction
	err := r.do(func(d *data) error {
		for _, tx := range d.transactions {
			if tx.RegisterID == registerID {
				out = append(out, tx)
			}
		}
		sortTransactions(out, false)
		return nil
	})
	return out, err
}

func (r *transactionRepo) SumTotals(_ context.Context, registerID int64) (domain.RegisterTotals, error) {
	t := domain.RegisterTotals{Entries: decimal.Zero, Exits: decimal.Zero}
	err := r.do(func(d *data) error {
		for _, tx := range d.transactions {
			if tx.RegisterID != registerID {
				continue
			}
			if tx.Cancelled {
				t.CancelledCount++
				continue
			}
			t.ActiveCount++
			if tx.Type == domain.TransactionTypeEntry {
				t.Entries = t.Entries.Add(tx.Amount)
			} else {
				t.Exits = t.Exits.Add(tx.Amount)
			}
		}
		return nil
	})
	t.Net = t.Entries.Sub(t.Exits)
	return t, err
}

func (r *transactionRepo) SumByCategory(_ context.Context, registerID int64) ([]domain.CategoryTotal, error) {
	type key struct {
		t domain.TransactionType
		c domain.TransactionCategory
	}
	var out []domain.CategoryTotal
	err := r.do(func(d *data) error {
		acc := map[key]*domain.CategoryTotal{}
		for _, tx := range d.transactions {
			if tx.RegisterID != registerID || tx.Cancelled {
				continue
			}
			k := key{tx.Type, tx.Category}
			ct, ok := acc[k]
			if !ok {
				ct = &domain.CategoryTotal{Type: tx.Type, Category: tx.Category, Total: decimal.Zero}
				acc[k] = ct
			}
			ct.Total = ct.Total.Add(tx.Amount)
			ct.Count++
		}
		for _, ct := range acc {
			out = append(out, *ct)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Type != out[j].Type {
				return out[i].Type < out[j].Type
			}
			return out[i].Category < out[j].Category
		})
		return nil
	})
	return out, err
}

func (r *transactionRepo) SumByPaymentMethod(_ context.Context, registerID int64) ([]domain.PaymentMethodTotal, error) {
	type key struct {
		m domain.PaymentMethod
		t domain.TransactionType
	}
	var out []domain.PaymentMethodTotal
	err := r.do(func(d *data) error {
		acc := map[key]*domain.PaymentMethodTotal{}
		for _, tx := range d.transactions {
			if tx.RegisterID != registerID || tx.Cancelled || tx.PaymentMethod == nil {
				continue
			}
			k := key{*tx.PaymentMethod, tx.Type}
			pm, ok := acc[k]
			if !ok {
				pm = &domain.PaymentMethodTotal{PaymentMethod: k.m, Type: k.t, Total: decimal.Zero}
				acc[k] = pm
			}
			pm.Total = pm.Total.Add(tx.Amount)
			pm.Count++
		}
		for _, pm := range acc {
			out = append(out, *pm)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].PaymentMethod != out[j].PaymentMethod {
				return out[i].PaymentMethod < out[j].PaymentMethod
			}
			return out[i].Type < out[j].Type
		})
		return nil
	})
	return out, err
}

func (r *transactionRepo) SentByReference(_ context.Context, ref domain.Reference) (map[domain.TransactionCategory]decimal.Decimal, error) {
	sent := make(map[domain.TransactionCategory]decimal.Decimal)
	err := r.do(func(d *data) error {
		for _, tx := range d.transactions {
			if tx.Cancelled || tx.Reference == nil || *tx.Reference != ref {
				continue
			}
			sent[tx.Category] = sent[tx.Category].Add(tx.Signed())
		}
		return nil
	})
	return sent, err
}
