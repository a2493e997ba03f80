package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ItemStatus string

const (
	ItemStatusAvailable   ItemStatus = "available"
	ItemStatusRented      ItemStatus = "rented"
	ItemStatusMaintenance ItemStatus = "maintenance"
)

func (s ItemStatus) Valid() bool {
	return s == ItemStatusAvailable || s == ItemStatusRented || s == ItemStatusMaintenance
}

type RentalPeriod string

const (
	RentalPeriodHour  RentalPeriod = "hour"
	RentalPeriodDay   RentalPeriod = "day"
	RentalPeriodWeek  RentalPeriod = "week"
	RentalPeriodMonth RentalPeriod = "month"
)

func (p RentalPeriod) Valid() bool {
	switch p {
	case RentalPeriodHour, RentalPeriodDay, RentalPeriodWeek, RentalPeriodMonth:
		return true
	}
	return false
}

type Item struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Code            string          `json:"internal_code"`
	Category        string          `json:"category"`
	BaseRentalValue decimal.Decimal `json:"rental_value"`
	RentalPeriod    RentalPeriod    `json:"rental_period"`
	Status          ItemStatus      `json:"status"`
	Observations    string          `json:"observations"`
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	PricingTiers    []PricingTier   `json:"pricing_tiers,omitempty"`
}

type PricingTier struct {
	ID               int64           `json:"id"`
	ItemID           int64           `json:"item_id"`
	DurationMinutes  int64           `json:"duration_minutes"`
	Label            string          `json:"label"`
	Price            decimal.Decimal `json:"price"`
	ToleranceMinutes int64           `json:"tolerance_minutes"`
	SortOrder        int             `json:"sort_order"`
}

type NewItem struct {
	Name            string
	Code            string
	Category        string
	BaseRentalValue decimal.Decimal
	RentalPeriod    RentalPeriod
	Observations    string
	PricingTiers    []PricingTier
}

// ItemUpdate carries the descriptive fields an operator may edit. Status is
// absent on purpose: it moves only through rentals and the maintenance toggle.
type ItemUpdate struct {
	Name            *string
	Code            *string
	Category        *string
	BaseRentalValue *decimal.Decimal
	RentalPeriod    *RentalPeriod
	Observations    *string
}

type ItemFilter struct {
	Category string
	Status   ItemStatus
	Search   string
}
