package service

import (
	"testing"

	"rental-backoffice/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCashierService_RegisterSummary(t *testing.T) {
	f := newFixture(t)
	reg := f.openRegister(t, operator, "100.00")

	f.entry(t, operator, reg.ID, "50.00")
	_, err := f.cashier.CreateTransaction(f.ctx, operator, domain.NewTransaction{
		RegisterID:  reg.ID,
		Type:        domain.TransactionTypeExit,
		Category:    domain.CategoryExpense,
		Amount:      domain.Amount("20.00"),
		Description: "cleaning supplies",
	})
	require.NoError(t, err)

	summary, err := f.cashier.GetRegisterSummary(f.ctx, reg.ID)
	require.NoError(t, err)
	assert.True(t, summary.CurrentBalance.Equal(domain.Amount("130.00")), summary.CurrentBalance.String())
	assert.True(t, summary.Totals.Entries.Equal(domain.Amount("50.00")))
	assert.True(t, summary.Totals.Exits.Equal(domain.Amount("20.00")))
	assert.Equal(t, int64(2), summary.Totals.ActiveCount)
	assert.Len(t, summary.ByCategory, 2)
	assert.Equal(t, "Ana", summary.Register.OperatorName)

	f.audit.assertRecorded(t, domain.AuditCashierOpen)
	f.audit.assertRecorded(t, domain.AuditCashierEntry)
	f.audit.assertRecorded(t, domain.AuditCashierExit)
}

func TestCashierService_OpenRegister(t *testing.T) {
	t.Run("NegativeBalance", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.cashier.OpenRegister(f.ctx, operator, domain.Amount("-1.00"), "")
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("FractionOfCent", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.cashier.OpenRegister(f.ctx, operator, domain.Amount("10.005"), "")
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("SingleOpenPerOperator", func(t *testing.T) {
		f := newFixture(t)
		reg := f.openRegister(t, operator, "0")

		_, err := f.cashier.OpenRegister(f.ctx, operator, domain.Amount("10.00"), "")
		assert.True(t, domain.IsConflict(err))

		// Another operator is unaffected.
		f.openRegister(t, otherOperator, "0")

		_, err = f.cashier.CloseRegister(f.ctx, operator, reg.ID, "end of day")
		require.NoError(t, err)
		again := f.openRegister(t, operator, "5.00")
		assert.NotEqual(t, reg.ID, again.ID)

		open, err := f.cashier.GetOpenRegister(f.ctx, operator.UserID)
		require.NoError(t, err)
		assert.Equal(t, again.ID, open.ID)
	})
}

func TestCashierService_CloseRegister(t *testing.T) {
	f := newFixture(t)
	reg := f.openRegister(t, operator, "100.00")
	f.entry(t, operator, reg.ID, "40.00")
	cancelled := f.entry(t, operator, reg.ID, "999.00")
	_, err := f.cashier.CancelTransaction(f.ctx, operator, cancelled.ID, "typed the wrong amount")
	require.NoError(t, err)

	closed, err := f.cashier.CloseRegister(f.ctx, operator, reg.ID, "done")
	require.NoError(t, err)
	assert.Equal(t, domain.RegisterStatusClosed, closed.Status)
	require.True(t, closed.ClosingBalance.Valid)
	assert.True(t, closed.ClosingBalance.Decimal.Equal(domain.Amount("140.00")), closed.ClosingBalance.Decimal.String())
	assert.True(t, closed.TotalEntries.Equal(domain.Amount("40.00")))
	require.NotNil(t, closed.ClosedAt)

	t.Run("AlreadyClosed", func(t *testing.T) {
		_, err := f.cashier.CloseRegister(f.ctx, operator, reg.ID, "")
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("NoMovementAfterClose", func(t *testing.T) {
		_, err := f.cashier.CreateTransaction(f.ctx, operator, domain.NewTransaction{
			RegisterID:  reg.ID,
			Type:        domain.TransactionTypeEntry,
			Category:    domain.CategoryOther,
			Amount:      domain.Amount("1.00"),
			Description: "late",
		})
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("NoCancelAfterClose", func(t *testing.T) {
		txs, _, err := f.cashier.ListTransactions(f.ctx, domain.TransactionFilter{RegisterID: reg.ID})
		require.NoError(t, err)
		var active *domain.CashTransaction
		for i := range txs {
			if !txs[i].Cancelled {
				active = &txs[i]
			}
		}
		require.NotNil(t, active)
		_, err = f.cashier.CancelTransaction(f.ctx, operator, active.ID, "too late now")
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := f.cashier.CloseRegister(f.ctx, operator, 4040, "")
		assert.True(t, domain.IsNotFound(err))
	})

	f.audit.assertRecorded(t, domain.AuditCashierClose)
}

func TestCashierService_CreateTransactionValidation(t *testing.T) {
	f := newFixture(t)
	reg := f.openRegister(t, operator, "0")

	base := domain.NewTransaction{
		RegisterID:  reg.ID,
		Type:        domain.TransactionTypeEntry,
		Category:    domain.CategoryOther,
		Amount:      domain.Amount("1.00"),
		Description: "misc",
	}
	cases := map[string]func(in *domain.NewTransaction){
		"ZeroAmount":     func(in *domain.NewTransaction) { in.Amount = domain.Amount("0") },
		"NegativeAmount": func(in *domain.NewTransaction) { in.Amount = domain.Amount("-3.00") },
		"SubCentAmount":  func(in *domain.NewTransaction) { in.Amount = domain.Amount("0.001") },
		"BadType":        func(in *domain.NewTransaction) { in.Type = "transfer" },
		"BadCategory":    func(in *domain.NewTransaction) { in.Category = "tips" },
		"BadMethod":      func(in *domain.NewTransaction) { in.PaymentMethod = method("cheque") },
		"NoDescription":  func(in *domain.NewTransaction) { in.Description = "   " },
		"IncompleteRef":  func(in *domain.NewTransaction) { in.Reference = &domain.Reference{Type: "rental"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := base
			mutate(&in)
			_, err := f.cashier.CreateTransaction(f.ctx, operator, in)
			assert.True(t, domain.IsValidation(err), "got %v", err)
		})
	}

	t.Run("UnknownRegister", func(t *testing.T) {
		in := base
		in.RegisterID = 777
		_, err := f.cashier.CreateTransaction(f.ctx, operator, in)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestCashierService_CancelTransaction(t *testing.T) {
	f := newFixture(t)
	reg := f.openRegister(t, operator, "0")
	tx := f.entry(t, operator, reg.ID, "10.00")

	_, err := f.cashier.CancelTransaction(f.ctx, operator, tx.ID, "no")
	assert.True(t, domain.IsValidation(err))

	_, err = f.cashier.CancelTransaction(f.ctx, operator, tx.ID, "  n  ")
	assert.True(t, domain.IsValidation(err))

	got, err := f.cashier.CancelTransaction(f.ctx, operator, tx.ID, "ok!")
	require.NoError(t, err)
	assert.True(t, got.Cancelled)
	require.NotNil(t, got.CancelledBy)
	assert.Equal(t, operator.UserID, *got.CancelledBy)
	assert.Equal(t, "ok!", *got.CancellationReason)
	assert.True(t, got.Amount.Equal(domain.Amount("10.00")))

	_, err = f.cashier.CancelTransaction(f.ctx, operator, tx.ID, "again please")
	assert.True(t, domain.IsConflict(err))

	summary, err := f.cashier.GetRegisterSummary(f.ctx, reg.ID)
	require.NoError(t, err)
	assert.True(t, summary.CurrentBalance.IsZero())
	assert.Equal(t, int64(1), summary.Totals.CancelledCount)

	f.audit.assertRecorded(t, domain.AuditCashierCancel)
}

func TestCashierService_Ownership(t *testing.T) {
	f := newFixture(t)
	reg := f.openRegister(t, operator, "0")
	tx := f.entry(t, operator, reg.ID, "10.00")

	_, err := f.cashier.CreateTransaction(f.ctx, otherOperator, domain.NewTransaction{
		RegisterID:  reg.ID,
		Type:        domain.TransactionTypeEntry,
		Category:    domain.CategoryOther,
		Amount:      domain.Amount("1.00"),
		Description: "not mine",
	})
	assert.Equal(t, domain.ErrKindForbidden, domain.KindOf(err))

	_, err = f.cashier.CancelTransaction(f.ctx, otherOperator, tx.ID, "not mine either")
	assert.Equal(t, domain.ErrKindForbidden, domain.KindOf(err))

	_, err = f.cashier.CloseRegister(f.ctx, otherOperator, reg.ID, "")
	assert.Equal(t, domain.ErrKindForbidden, domain.KindOf(err))

	closed, err := f.cashier.CloseRegister(f.ctx, admin, reg.ID, "closed by admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RegisterStatusClosed, closed.Status)
}

func TestCashierService_ListRegisters(t *testing.T) {
	f := newFixture(t)
	f.openRegister(t, operator, "0")
	f.openRegister(t, otherOperator, "0")

	regs, total, err := f.cashier.ListRegisters(f.ctx, domain.RegisterFilter{OperatorID: otherOperator.UserID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, regs, 1)
	assert.Equal(t, "Bruno", regs[0].OperatorName)
}

func TestCashierService_ClosingBalanceConservation(t *testing.T) {
	type move struct {
		typ    domain.TransactionType
		amount string
		cancel bool
	}
	moves := []move{
		{domain.TransactionTypeEntry, "50.00", false},
		{domain.TransactionTypeExit, "20.00", false},
		{domain.TransactionTypeEntry, "30.00", false},
		{domain.TransactionTypeExit, "500.00", true},
		{domain.TransactionTypeExit, "15.00", false},
	}

	f := newFixture(t)
	run := func(actor domain.Actor, order []move) *domain.CashRegister {
		reg := f.openRegister(t, actor, "100.00")
		for _, m := range order {
			category := domain.CategoryRentalPayment
			if m.typ == domain.TransactionTypeExit {
				category = domain.CategoryExpense
			}
			tx, err := f.cashier.CreateTransaction(f.ctx, actor, domain.NewTransaction{
				RegisterID:    reg.ID,
				Type:          m.typ,
				Category:      category,
				Amount:        domain.Amount(m.amount),
				Description:   "counter movement",
				PaymentMethod: method(domain.PaymentMethodCash),
			})
			require.NoError(t, err)
			if m.cancel {
				_, err = f.cashier.CancelTransaction(f.ctx, actor, tx.ID, "typed the wrong amount")
				require.NoError(t, err)
			}
		}
		closed, err := f.cashier.CloseRegister(f.ctx, actor, reg.ID, "")
		require.NoError(t, err)
		require.True(t, closed.ClosingBalance.Valid)
		return closed
	}

	forward := run(operator, moves)
	assert.True(t, forward.TotalEntries.Equal(domain.Amount("80.00")), forward.TotalEntries.String())
	assert.True(t, forward.TotalExits.Equal(domain.Amount("35.00")), forward.TotalExits.String())
	expected := forward.OpeningBalance.Add(forward.TotalEntries).Sub(forward.TotalExits)
	assert.True(t, forward.ClosingBalance.Decimal.Equal(expected), forward.ClosingBalance.Decimal.String())
	assert.True(t, forward.ClosingBalance.Decimal.Equal(domain.Amount("145.00")), forward.ClosingBalance.Decimal.String())

	reversed := make([]move, len(moves))
	for i, m := range moves {
		reversed[len(moves)-1-i] = m
	}
	backward := run(otherOperator, reversed)
	assert.True(t, backward.ClosingBalance.Decimal.Equal(forward.ClosingBalance.Decimal), backward.ClosingBalance.Decimal.String())
}
