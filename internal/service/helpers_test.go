package service

import (
	"context"
	"testing"
	"time"

	"rental-backoffice/internal/domain"
	"rental-backoffice/internal/repository/memory"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuditSink struct {
	mock.Mock
}

func (m *MockAuditSink) Record(ctx context.Context, ev domain.AuditEvent) {
	m.Called(ctx, ev)
}

// assertRecorded checks that at least one event with the action was emitted.
func (m *MockAuditSink) assertRecorded(t *testing.T, action domain.AuditAction) {
	t.Helper()
	m.AssertCalled(t, "Record", mock.Anything, mock.MatchedBy(func(ev domain.AuditEvent) bool {
		return ev.Action == action
	}))
}

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) set(t time.Time) { c.t = t }

var (
	operator      = domain.Actor{UserID: 1, Role: domain.RoleOperator, IPAddress: "10.0.0.1"}
	otherOperator = domain.Actor{UserID: 2, Role: domain.RoleOperator}
	admin         = domain.Actor{UserID: 9, Role: domain.RoleAdmin}
)

type fixture struct {
	ctx      context.Context
	store    *memory.Store
	clock    *testClock
	audit    *MockAuditSink
	cashier  CashierService
	rentals  RentalService
	payments PaymentService
	items    ItemService
	clients  ClientService
	reports  ReportService
	dispatch DispatchService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	store.SetOperatorName(operator.UserID, "Ana")
	store.SetOperatorName(otherOperator.UserID, "Bruno")
	clock := &testClock{t: at("2024-01-01T08:00")}
	audit := new(MockAuditSink)
	audit.On("Record", mock.Anything, mock.Anything).Return()

	return &fixture{
		ctx:      context.Background(),
		store:    store,
		clock:    clock,
		audit:    audit,
		cashier:  NewCashierService(store, clock, audit),
		rentals:  NewRentalService(store, clock, audit),
		payments: NewPaymentService(store, clock, audit),
		items:    NewItemService(store, clock, audit),
		clients:  NewClientService(store, clock, audit),
		reports:  NewReportService(store, clock),
		dispatch: NewDispatchService(store, clock, audit),
	}
}

func at(s string) time.Time {
	t, err := domain.ParseLocal(s)
	if err != nil {
		panic(err)
	}
	return t
}

func method(m domain.PaymentMethod) *domain.PaymentMethod { return &m }

func (f *fixture) client(t *testing.T, name string) *domain.Client {
	t.Helper()
	c, err := f.clients.CreateClient(f.ctx, operator, &domain.Client{Name: name})
	require.NoError(t, err)
	return c
}

func (f *fixture) item(t *testing.T, code, base string, period domain.RentalPeriod) *domain.Item {
	t.Helper()
	it, err := f.items.CreateItem(f.ctx, operator, domain.NewItem{
		Name:            "Item " + code,
		Code:            code,
		Category:        "tools",
		BaseRentalValue: domain.Amount(base),
		RentalPeriod:    period,
	})
	require.NoError(t, err)
	return it
}

func (f *fixture) openRegister(t *testing.T, actor domain.Actor, balance string) *domain.CashRegister {
	t.Helper()
	reg, err := f.cashier.OpenRegister(f.ctx, actor, domain.Amount(balance), "")
	require.NoError(t, err)
	return reg
}

func (f *fixture) entry(t *testing.T, actor domain.Actor, registerID int64, amount string) *domain.CashTransaction {
	t.Helper()
	tx, err := f.cashier.CreateTransaction(f.ctx, actor, domain.NewTransaction{
		RegisterID:    registerID,
		Type:          domain.TransactionTypeEntry,
		Category:      domain.CategoryRentalPayment,
		Amount:        domain.Amount(amount),
		Description:   "counter sale",
		PaymentMethod: method(domain.PaymentMethodCash),
	})
	require.NoError(t, err)
	return tx
}
