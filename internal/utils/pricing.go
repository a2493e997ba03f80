package utils

import (
	"fmt"
	"time"

	"rental-backoffice/internal/domain"

	"github.com/shopspring/decimal"
)

// DefaultPricingDurationMinutes is the rate basis for late fees when a rental
// carries no pricing duration. It is not derived from the item's rental
// period and only approximates the rate of legacy rentals.
const DefaultPricingDurationMinutes = 60

// Quote is the resolved price of a rental and the duration it pays for.
type Quote struct {
	RentalValue     decimal.Decimal
	DurationMinutes int64
	Tier            *domain.PricingTier
}

// PeriodHours returns the length of one billing unit. A month is fixed at
// 30 days.
func PeriodHours(period domain.RentalPeriod) (int64, error) {
	switch period {
	case domain.RentalPeriodHour:
		return 1, nil
	case domain.RentalPeriodDay:
		return 24, nil
	case domain.RentalPeriodWeek:
		return 24 * 7, nil
	case domain.RentalPeriodMonth:
		return 24 * 30, nil
	default:
		return 0, fmt.Errorf("unknown rental period %q", period)
	}
}

// ceilDiv divides two positive durations rounding up.
func ceilDiv(d, unit time.Duration) int64 {
	n := int64(d / unit)
	if d%unit != 0 {
		n++
	}
	return n
}

// CalculateRentalValue charges every started billing unit between start and
// end at the item's base value.
func CalculateRentalValue(base decimal.Decimal, period domain.RentalPeriod, start, end time.Time) (decimal.Decimal, error) {
	hours, err := PeriodHours(period)
	if err != nil {
		return decimal.Zero, err
	}
	d := end.Sub(start)
	if d <= 0 {
		return decimal.Zero, fmt.Errorf("end %s is not after start %s", end, start)
	}
	units := ceilDiv(d, time.Duration(hours)*time.Hour)
	return base.Mul(decimal.NewFromInt(units)), nil
}

// EstimateDurationMinutes rounds the span to the nearest minute, half up.
func EstimateDurationMinutes(start, end time.Time) int64 {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return int64((d + 30*time.Second) / time.Minute)
}

// MinutesLate counts every started minute past the expected end.
func MinutesLate(expectedEnd, actualEnd time.Time) int64 {
	d := actualEnd.Sub(expectedEnd)
	if d <= 0 {
		return 0
	}
	return ceilDiv(d, time.Minute)
}

// CalculateLateFee prorates rentalValue per minute of the pricing duration and
// charges it for every started late minute, rounded half up to cents.
func CalculateLateFee(rentalValue decimal.Decimal, pricingDurationMinutes *int64, expectedEnd, actualEnd time.Time) decimal.Decimal {
	late := MinutesLate(expectedEnd, actualEnd)
	if late == 0 {
		return decimal.Zero
	}
	duration := int64(DefaultPricingDurationMinutes)
	if pricingDurationMinutes != nil && *pricingDurationMinutes > 0 {
		duration = *pricingDurationMinutes
	}
	fee := rentalValue.Mul(decimal.NewFromInt(late)).Div(decimal.NewFromInt(duration))
	return domain.RoundCents(fee)
}

// QuoteRental resolves the price of renting item between start and end. A
// tier, when given, fixes both price and duration; otherwise the item's
// period rate applies and the duration is estimated from the span.
func QuoteRental(item *domain.Item, tier *domain.PricingTier, start, end time.Time) (Quote, error) {
	if tier != nil {
		return Quote{RentalValue: tier.Price, DurationMinutes: tier.DurationMinutes, Tier: tier}, nil
	}
	value, err := CalculateRentalValue(item.BaseRentalValue, item.RentalPeriod, start, end)
	if err != nil {
		return Quote{}, err
	}
	return Quote{RentalValue: value, DurationMinutes: EstimateDurationMinutes(start, end)}, nil
}
