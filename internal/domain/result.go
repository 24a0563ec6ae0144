package domain

import "github.com/shopspring/decimal"

// FlowEntry is one itemized amount within a MonthResult, tagged by reason.
type FlowEntry struct {
	Name   string
	Amount decimal.Decimal
}

// WithdrawalEntry records one drain from one account during a shortfall.
type WithdrawalEntry struct {
	Account            string
	Gross              decimal.Decimal
	OrdinaryPortion    decimal.Decimal
	CapitalGainsPortion decimal.Decimal
	TaxFreePortion     decimal.Decimal
	EarlyPenalty       decimal.Decimal
}

// RMDEntry records one account's contribution to a December RMD.
type RMDEntry struct {
	Owner   Owner
	Account string
	Amount  decimal.Decimal
}

// AccountDelta labels one balance change on one account during the month.
type AccountDelta struct {
	Account string
	Reason  string
	Amount  decimal.Decimal
}

// MonthResult records every flow that occurred during one simulated month.
// It is produced by value and never aliases PlanState.
type MonthResult struct {
	Cursor              YearMonth
	Income              []FlowEntry
	Contributions        []FlowEntry
	EmployerMatches      []FlowEntry
	TransferLegs         []FlowEntry
	ConversionLegs       []FlowEntry
	RMDs                 []RMDEntry
	AccountDeltas        []AccountDelta
	TaxWithheld          decimal.Decimal
	FICAWithheld         decimal.Decimal
	ExpensesByCategory   map[SpendingType]decimal.Decimal
	Withdrawals          []WithdrawalEntry
	HealthcareCost       decimal.Decimal
	IRMAASurcharge       decimal.Decimal
	Insolvent            bool
	UnpaidShortfall      decimal.Decimal
	EndingCash           decimal.Decimal
	EndingAccountBalances map[string]decimal.Decimal
}

// NewMonthResult returns a zeroed result for the given month.
func NewMonthResult(cursor YearMonth) MonthResult {
	return MonthResult{
		Cursor:             cursor,
		ExpensesByCategory: map[SpendingType]decimal.Decimal{},
		EndingAccountBalances: map[string]decimal.Decimal{},
	}
}

// TaxResult is the output of the annual tax engine.
type TaxResult struct {
	FederalOrdinary        decimal.Decimal
	LongTermGains          decimal.Decimal
	NIIT                   decimal.Decimal
	AMT                    decimal.Decimal
	State                  decimal.Decimal
	FICASettled            decimal.Decimal // always zero; FICA settles monthly
	EarlyWithdrawalPenalty decimal.Decimal
	Total                  decimal.Decimal
}

// AnnualResult aggregates twelve MonthResults plus the December settlement.
type AnnualResult struct {
	Year          int
	Months        [12]MonthResult
	Tax           TaxResult
	MAGI          decimal.Decimal
	EndingBalances map[string]decimal.Decimal
	NetWorth      decimal.Decimal
	Insolvent     bool
}

// PercentileBands is an order-independent per-year percentile aggregation
// across runs in an ensemble mode.
type PercentileBands struct {
	P10, P25, P50, P75, P90 decimal.Decimal
}

// SeriesPercentiles holds percentile bands keyed by simulation year for one
// aggregated series (net worth, income, expenses, or taxes).
type SeriesPercentiles map[int]PercentileBands

// SimulationResult is the top-level output of one orchestrator run.
// For deterministic mode, Runs has exactly one element and every percentile
// band collapses to that run's own value.
type SimulationResult struct {
	Mode           SimulationMode
	Seed           int64
	Runs           [][]AnnualResult
	NetWorth       SeriesPercentiles
	Income         SeriesPercentiles
	Expenses       SeriesPercentiles
	Taxes          SeriesPercentiles
	SuccessRate    decimal.Decimal
	Metadata       []string
}
