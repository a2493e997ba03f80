package service

import (
	"context"
	"time"

	"rental-backoffice/internal/domain"
	"rental-backoffice/internal/logger"

	"github.com/shopspring/decimal"
)

const maxReportDays = 366

func (s *cashierService) DailyReport(ctx context.Context, day time.Time) (*domain.DailyReport, error) {
	logger.EnterMethod("cashierService.DailyReport", "date", domain.FormatDay(day))

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	repos := s.store.Repos()
	regs, err := repos.Registers.ListOpenedBetween(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		logger.ExitMethodWithError("cashierService.DailyReport", err)
		return nil, err
	}

	report := &domain.DailyReport{
		Date:      domain.FormatDay(start),
		Registers: make([]domain.RegisterActivity, 0, len(regs)),
		Totals: domain.ReportTotals{
			OpeningBalance: decimal.Zero,
			ClosingBalance: decimal.NewNullDecimal(decimal.Zero),
			TotalEntries:   decimal.Zero,
			TotalExits:     decimal.Zero,
		},
	}
	t := &report.Totals
	for _, reg := range regs {
		txs, err := repos.Transactions.ListByRegister(ctx, reg.ID)
		if err != nil {
			return nil, err
		}
		if txs == nil {
			txs = []domain.CashTransaction{}
		}
		report.Registers = append(report.Registers, domain.RegisterActivity{CashRegister: reg, Transactions: txs})

		t.OpeningBalance = t.OpeningBalance.Add(reg.OpeningBalance)
		t.ClosingBalance = addClosing(t.ClosingBalance, reg.ClosingBalance)
		for _, tx := range txs {
			if tx.Cancelled {
				t.CancelledCount++
				continue
			}
			t.TransactionCount++
			if tx.Type == domain.TransactionTypeEntry {
				t.TotalEntries = t.TotalEntries.Add(tx.Amount)
			} else {
				t.TotalExits = t.TotalExits.Add(tx.Amount)
			}
		}
	}
	t.NetMovement = t.TotalEntries.Sub(t.TotalExits)

	logger.ExitMethod("cashierService.DailyReport", "registers", len(regs))
	return report, nil
}

// PeriodReport summarizes registers opened between start and end, both days
// inclusive, one row per day with activity.
func (s *cashierService) PeriodReport(ctx context.Context, start, end time.Time) (*domain.PeriodReport, error) {
	logger.EnterMethod("cashierService.PeriodReport", "start", domain.FormatDay(start), "end", domain.FormatDay(end))

	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	if !to.After(from) {
		return nil, domain.Validation("end date must not be before start date")
	}
	if to.Sub(from) > maxReportDays*24*time.Hour {
		return nil, domain.Validation("period must not exceed %d days", maxReportDays)
	}

	repos := s.store.Repos()
	regs, err := repos.Registers.ListOpenedBetween(ctx, from, to)
	if err != nil {
		logger.ExitMethodWithError("cashierService.PeriodReport", err)
		return nil, err
	}

	report := &domain.PeriodReport{
		StartDate:    domain.FormatDay(from),
		EndDate:      domain.FormatDay(to.AddDate(0, 0, -1)),
		DailySummary: []domain.DailySummary{},
		Totals: domain.PeriodTotals{
			TotalOpening: decimal.Zero,
			TotalClosing: decimal.NewNullDecimal(decimal.Zero),
			TotalEntries: decimal.Zero,
			TotalExits:   decimal.Zero,
		},
	}

	var cur *domain.DailySummary
	for _, reg := range regs {
		day := domain.FormatDay(reg.OpenedAt)
		if cur == nil || cur.Date != day {
			report.DailySummary = append(report.DailySummary, domain.DailySummary{
				Date:         day,
				TotalOpening: decimal.Zero,
				TotalClosing: decimal.NewNullDecimal(decimal.Zero),
				TotalEntries: decimal.Zero,
				TotalExits:   decimal.Zero,
			})
			cur = &report.DailySummary[len(report.DailySummary)-1]
		}

		totals, err := repos.Transactions.SumTotals(ctx, reg.ID)
		if err != nil {
			return nil, err
		}
		cur.RegistersCount++
		cur.TotalOpening = cur.TotalOpening.Add(reg.OpeningBalance)
		cur.TotalClosing = addClosing(cur.TotalClosing, reg.ClosingBalance)
		cur.TotalEntries = cur.TotalEntries.Add(totals.Entries)
		cur.TotalExits = cur.TotalExits.Add(totals.Exits)
	}

	pt := &report.Totals
	for _, d := range report.DailySummary {
		pt.TotalRegisters += d.RegistersCount
		pt.TotalOpening = pt.TotalOpening.Add(d.TotalOpening)
		pt.TotalClosing = addClosing(pt.TotalClosing, d.TotalClosing)
		pt.TotalEntries = pt.TotalEntries.Add(d.TotalEntries)
		pt.TotalExits = pt.TotalExits.Add(d.TotalExits)
	}
	pt.NetMovement = pt.TotalEntries.Sub(pt.TotalExits)
	pt.DaysCount = len(report.DailySummary)

	logger.ExitMethod("cashierService.PeriodReport", "days", pt.DaysCount, "registers", pt.TotalRegisters)
	return report, nil
}

// addClosing sums closing balances. An open register has no closing balance,
// which makes the aggregate unknown rather than zero.
func addClosing(acc, next decimal.NullDecimal) decimal.NullDecimal {
	if !acc.Valid || !next.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(acc.Decimal.Add(next.Decimal))
}
