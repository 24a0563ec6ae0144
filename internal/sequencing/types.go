package sequencing

import (
	"github.com/shopspring/decimal"

	"github.com/timmydo/tfp/internal/domain"
)

// TaxTreatment represents tax characteristics of a withdrawal source
// Ordinary: fully taxable as ordinary income (traditional, pensions)
// TaxFree: no current year tax impact (Roth principal / qualified dist.)
// CapitalGains: only gains portion taxed (approx via basis tracking)
type TaxTreatment int

const (
	TaxFree TaxTreatment = iota
	OrdinaryIncome
	CapitalGains
)

func (tt TaxTreatment) String() string {
	switch tt {
	case TaxFree:
		return "tax_free"
	case OrdinaryIncome:
		return "ordinary"
	case CapitalGains:
		return "capital_gains"
	default:
		return "unknown"
	}
}

// WithdrawalSource represents one account available to be drained to cover
// a shortfall, in the order the caller supplies.
type WithdrawalSource struct {
	Name                  string
	Kind                  domain.AccountKind
	Balance               decimal.Decimal
	Basis                 decimal.Decimal
	TaxTreatment          TaxTreatment
	AgeMonthsAtWithdrawal int
}

// WithdrawalAllocation captures one source's actual withdrawal and its
// tax/MAGI/penalty decomposition.
type WithdrawalAllocation struct {
	Source              string
	Gross               decimal.Decimal
	OrdinaryPortion     decimal.Decimal
	CapitalGainsPortion decimal.Decimal
	TaxFreePortion      decimal.Decimal
	MAGIImpact          decimal.Decimal
	Penalty             decimal.Decimal
}

// WithdrawalPlan aggregates the full plan for meeting a shortfall amount.
type WithdrawalPlan struct {
	Requested               decimal.Decimal
	Allocations             []WithdrawalAllocation
	TotalSourced            decimal.Decimal
	RemainingNeed           decimal.Decimal
	EstimatedOrdinaryIncome decimal.Decimal
	EstimatedCapitalGains   decimal.Decimal
	EstimatedMAGIImpact     decimal.Decimal
	Notes                   []string
	StrategyUsed            string
}

// StrategyContext provides the amount a sequencing strategy should attempt
// to source.
type StrategyContext struct {
	NeedAmount decimal.Decimal
}

// SequencingStrategy defines the interface for a withdrawal drain algorithm.
type SequencingStrategy interface {
	Name() string
	Plan(sources []WithdrawalSource, ctx StrategyContext) WithdrawalPlan
}
