package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RegisterStatus string

const (
	RegisterStatusOpen   RegisterStatus = "open"
	RegisterStatusClosed RegisterStatus = "closed"
)

type CashRegister struct {
	ID             int64               `json:"id"`
	OperatorID     int64               `json:"operator_id"`
	OperatorName   string              `json:"operator_name,omitempty"`
	OpeningBalance decimal.Decimal     `json:"opening_balance"`
	ClosingBalance decimal.NullDecimal `json:"closing_balance"`
	TotalEntries   decimal.Decimal     `json:"total_entries"`
	TotalExits     decimal.Decimal     `json:"total_exits"`
	Status         RegisterStatus      `json:"status"`
	Observations   string              `json:"observations"`
	OpenedAt       time.Time           `json:"opened_at"`
	ClosedAt       *time.Time          `json:"closed_at,omitempty"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func (r *CashRegister) IsOpen() bool { return r.Status == RegisterStatusOpen }

type TransactionType string

const (
	TransactionTypeEntry TransactionType = "entry"
	TransactionTypeExit  TransactionType = "exit"
)

func (t TransactionType) Valid() bool {
	return t == TransactionTypeEntry || t == TransactionTypeExit
}

type TransactionCategory string

const (
	CategoryRentalPayment TransactionCategory = "rental_payment"
	CategoryDeposit       TransactionCategory = "deposit"
	CategoryRefund        TransactionCategory = "refund"
	CategoryExpense       TransactionCategory = "expense"
	CategoryAdjustment    TransactionCategory = "adjustment"
	CategoryWithdrawal    TransactionCategory = "withdrawal"
	CategorySupply        TransactionCategory = "supply"
	CategoryOther         TransactionCategory = "other"
)

func (c TransactionCategory) Valid() bool {
	switch c {
	case CategoryRentalPayment, CategoryDeposit, CategoryRefund, CategoryExpense,
		CategoryAdjustment, CategoryWithdrawal, CategorySupply, CategoryOther:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "cash"
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodDebitCard  PaymentMethod = "debit_card"
	PaymentMethodPix        PaymentMethod = "pix"
	PaymentMethodTransfer   PaymentMethod = "transfer"
	PaymentMethodOther      PaymentMethod = "other"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCreditCard, PaymentMethodDebitCard,
		PaymentMethodPix, PaymentMethodTransfer, PaymentMethodOther:
		return true
	}
	return false
}

const ReferenceTypeRental = "rental"

// Reference links a ledger movement to an entity outside the ledger.
type Reference struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
}

type CashTransaction struct {
	ID                 int64               `json:"id"`
	RegisterID         int64               `json:"cash_register_id"`
	Type               TransactionType     `json:"type"`
	Category           TransactionCategory `json:"category"`
	Amount             decimal.Decimal     `json:"amount"` // always positive, sign comes from Type
	Description        string              `json:"description"`
	PaymentMethod      *PaymentMethod      `json:"payment_method"`
	Reference          *Reference          `json:"reference,omitempty"`
	CreatedBy          int64               `json:"user_id"`
	Cancelled          bool                `json:"cancelled"`
	CancelledAt        *time.Time          `json:"cancelled_at,omitempty"`
	CancelledBy        *int64              `json:"cancelled_by,omitempty"`
	CancellationReason *string             `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}

// Signed returns the amount with the sign implied by the movement type.
func (t *CashTransaction) Signed() decimal.Decimal {
	if t.Type == TransactionTypeExit {
		return t.Amount.Neg()
	}
	return t.Amount
}

type NewTransaction struct {
	RegisterID    int64
	Type          TransactionType
	Category      TransactionCategory
	Amount        decimal.Decimal
	Description   string
	PaymentMethod *PaymentMethod
	Reference     *Reference
}

type RegisterFilter struct {
	OperatorID int64
	Status     RegisterStatus
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

type TransactionFilter struct {
	RegisterID int64
	Type       TransactionType
	Category   TransactionCategory
	Cancelled  *bool
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

type RegisterTotals struct {
	Entries        decimal.Decimal `json:"entries"`
	Exits          decimal.Decimal `json:"exits"`
	Net            decimal.Decimal `json:"net"`
	ActiveCount    int64           `json:"active_transactions"`
	CancelledCount int64           `json:"cancelled_transactions"`
}

type CategoryTotal struct {
	Type     TransactionType     `json:"type"`
	Category TransactionCategory `json:"category"`
	Total    decimal.Decimal     `json:"total"`
	Count    int64               `json:"count"`
}

type PaymentMethodTotal struct {
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Type          TransactionType `json:"type"`
	Total         decimal.Decimal `json:"total"`
	Count         int64           `json:"count"`
}

type RegisterSummary struct {
	Register        *CashRegister        `json:"register"`
	CurrentBalance  decimal.Decimal      `json:"current_balance"`
	Totals          RegisterTotals       `json:"totals"`
	ByCategory      []CategoryTotal      `json:"by_category"`
	ByPaymentMethod []PaymentMethodTotal `json:"by_payment_method"`
}
