package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const DepositPaymentNote = "Caução (pagamento antecipado)"

type Payment struct {
	ID          int64           `json:"id"`
	RentalID    int64           `json:"rental_id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      PaymentMethod   `json:"payment_method"`
	PaymentDate time.Time       `json:"payment_date"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
	ClientName  string          `json:"client_name,omitempty"`
	ItemName    string          `json:"item_name,omitempty"`
}

type NewPayment struct {
	RentalID    int64
	Amount      decimal.Decimal
	Method      PaymentMethod
	PaymentDate *time.Time
	Notes       string
}

type PaymentFilter struct {
	RentalID int64
	Method   PaymentMethod
}

type RentalBalance struct {
	TotalValue decimal.Decimal `json:"total_value"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	Remaining  decimal.Decimal `json:"remaining"`
}
