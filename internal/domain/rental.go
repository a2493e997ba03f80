package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RentalStatus string

const (
	RentalStatusActive    RentalStatus = "active"
	RentalStatusOverdue   RentalStatus = "overdue"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusCancelled RentalStatus = "cancelled"
)

func (s RentalStatus) IsTerminal() bool {
	return s == RentalStatusCompleted || s == RentalStatusCancelled
}

func (s RentalStatus) Valid() bool {
	switch s {
	case RentalStatusActive, RentalStatusOverdue, RentalStatusCompleted, RentalStatusCancelled:
		return true
	}
	return false
}

type Rental struct {
	ID              int64      `json:"id"`
	ClientID        int64      `json:"client_id"`
	ItemID          int64      `json:"item_id"`
	StartDate       time.Time  `json:"start_date"`
	ExpectedEndDate time.Time  `json:"expected_end_date"`
	ActualEndDate   *time.Time `json:"actual_end_date,omitempty"`
	// RentalValue is fixed at creation; TotalValue is RentalValue - Discount
	// plus LateFee once completed.
	RentalValue            decimal.Decimal `json:"rental_value"`
	Deposit                decimal.Decimal `json:"deposit"`
	LateFee                decimal.Decimal `json:"late_fee"`
	Discount               decimal.Decimal `json:"discount"`
	TotalValue             decimal.Decimal `json:"total_value"`
	PricingDurationMinutes *int64          `json:"pricing_duration_minutes"`
	Status                 RentalStatus    `json:"status"`
	Observations           string          `json:"observations"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`

	ClientName string          `json:"client_name,omitempty"`
	ItemName   string          `json:"item_name,omitempty"`
	ItemCode   string          `json:"item_code,omitempty"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
}

type NewRental struct {
	ClientID        int64
	ItemID          int64
	StartDate       time.Time
	ExpectedEndDate time.Time
	Deposit         decimal.Decimal
	Discount        decimal.Decimal
	Observations    string
	PricingTierID   *int64
}

type RentalFilter struct {
	Status   RentalStatus
	ClientID int64
	ItemID   int64
}

// SendMode selects what a send-to-cashier call posts.
type SendMode string

const (
	SendModeDeposit SendMode = "deposit"
	SendModeFull    SendMode = "full"
	SendModeAmount  SendMode = "amount"
)

type SendToCashier struct {
	Mode          SendMode
	PaymentMethod PaymentMethod
	Amount        decimal.Decimal
}
