package domain

import "github.com/shopspring/decimal"

type RegisterActivity struct {
	CashRegister
	Transactions []CashTransaction `json:"transactions"`
}

// ReportTotals aggregates a set of registers. ClosingBalance is null as soon
// as one register in the set is still open.
type ReportTotals struct {
	OpeningBalance   decimal.Decimal     `json:"opening_balance"`
	ClosingBalance   decimal.NullDecimal `json:"closing_balance"`
	TotalEntries     decimal.Decimal     `json:"total_entries"`
	TotalExits       decimal.Decimal     `json:"total_exits"`
	NetMovement      decimal.Decimal     `json:"net_movement"`
	TransactionCount int64               `json:"transaction_count"`
	CancelledCount   int64               `json:"cancelled_count"`
}

type DailyReport struct {
	Date      string             `json:"date"`
	Registers []RegisterActivity `json:"registers"`
	Totals    ReportTotals       `json:"totals"`
}

type DailySummary struct {
	Date           string              `json:"date"`
	RegistersCount int64               `json:"registers_count"`
	TotalOpening   decimal.Decimal     `json:"total_opening"`
	TotalClosing   decimal.NullDecimal `json:"total_closing"`
	TotalEntries   decimal.Decimal     `json:"total_entries"`
	TotalExits     decimal.Decimal     `json:"total_exits"`
}

type PeriodTotals struct {
	TotalRegisters int64               `json:"total_registers"`
	TotalOpening   decimal.Decimal     `json:"total_opening"`
	TotalClosing   decimal.NullDecimal `json:"total_closing"`
	TotalEntries   decimal.Decimal     `json:"total_entries"`
	TotalExits     decimal.Decimal     `json:"total_exits"`
	NetMovement    decimal.Decimal     `json:"net_movement"`
	DaysCount      int                 `json:"days_count"`
}

type PeriodReport struct {
	StartDate    string         `json:"start_date"`
	EndDate      string         `json:"end_date"`
	DailySummary []DailySummary `json:"daily_summary"`
	Totals       PeriodTotals   `json:"totals"`
}

type Dashboard struct {
	ActiveClients  int64            `json:"total_clients"`
	ItemsByStatus  map[string]int64 `json:"items_by_status"`
	ActiveRentals  int64            `json:"active_rentals"`
	OverdueRentals int64            `json:"overdue_rentals"`
	RevenueToday   decimal.Decimal  `json:"revenue_today"`
	RevenueMonth   decimal.Decimal  `json:"revenue_month"`
}
