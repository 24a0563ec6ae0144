// Package taxes implements the annual tax engine: federal ordinary income,
// long-term capital gains, NIIT, a simplified AMT, state income tax,
// early-withdrawal penalty bookkeeping, and settlement against withholding.
package taxes

import (
	"github.com/shopspring/decimal"

	"github.com/timmydo/tfp/internal/domain"
	"github.com/timmydo/tfp/internal/regulatory"
)

// infinity stands in for an open-ended bracket top (regulatory Max == 0).
var infinity = decimal.NewFromInt(1 << 32)

func effectiveMax(max decimal.Decimal) decimal.Decimal {
	if max.IsZero() {
		return infinity
	}
	return max
}

// applyBrackets sums the piecewise tax owed on taxableIncome across brackets.
func applyBrackets(taxableIncome decimal.Decimal, brackets []regulatory.TaxBracket) decimal.Decimal {
	total := decimal.Zero
	for _, b := range brackets {
		if taxableIncome.LessThanOrEqual(b.Min) {
			break
		}
		top := effectiveMax(b.Max)
		inBracket := decimal.Min(taxableIncome, top).Sub(b.Min)
		if inBracket.GreaterThan(decimal.Zero) {
			total = total.Add(inBracket.Mul(b.Rate))
		}
	}
	return total
}

// taxStackedAbove computes, for a chain of brackets stacked above a
// baseline (ordinary income), how much of `amount` falls in each bracket
// and the resulting tax; used for LTCG-atop-ordinary-income stacking.
func taxStackedAbove(baseline, amount decimal.Decimal, brackets []regulatory.TaxBracket) decimal.Decimal {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	total := decimal.Zero
	remaining := amount
	floor := baseline
	for _, b := range brackets {
		top := effectiveMax(b.Max)
		if floor.GreaterThanOrEqual(top) {
			continue
		}
		bracketRoom := top.Sub(decimal.Max(floor, b.Min))
		if bracketRoom.LessThanOrEqual(decimal.Zero) {
			continue
		}
		taxedHere := decimal.Min(remaining, bracketRoom)
		total = total.Add(taxedHere.Mul(b.Rate))
		remaining = remaining.Sub(taxedHere)
		floor = floor.Add(taxedHere)
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
	}
	return total
}

// YearIncomeSummary is the tax engine's sole input: a year's income summary.
type YearIncomeSummary struct {
	Year                   int
	FilingStatus           domain.FilingStatus
	PrimaryState           string
	OrdinaryIncome         decimal.Decimal
	LongTermGains          decimal.Decimal
	InvestmentIncome       decimal.Decimal
	AGI                    decimal.Decimal
	TaxExemptInterest      decimal.Decimal
	SALTPaid               decimal.Decimal
	MortgageInterestPaid   decimal.Decimal
	CharitableContributions decimal.Decimal
	EarlyWithdrawalPenaltyBase decimal.Decimal
	WithheldYTD            decimal.Decimal
	InflationRate          decimal.Decimal
}

// Engine computes annual taxes from a YearIncomeSummary against a loaded
// regulatory bundle.
type Engine struct {
	Tables *regulatory.Tables
}

// New returns a tax engine backed by the given regulatory tables.
func New(tables *regulatory.Tables) *Engine {
	return &Engine{Tables: tables}
}

// Compute runs the full annual tax algorithm.
func (e *Engine) Compute(s YearIncomeSummary, niitEnabled, amtEnabled bool) domain.TaxResult {
	yt := e.Tables.For(s.Year, s.InflationRate)

	itemized := decimal.Min(s.SALTPaid, yt.SALTCap).Add(s.MortgageInterestPaid).Add(s.CharitableContributions)
	deduction := decimal.Max(yt.StandardDeduction.ByFilingStatus(s.FilingStatus), itemized)

	taxableOrdinary := decimal.Max(decimal.Zero, s.OrdinaryIncome.Sub(deduction))
	federalOrdinary := applyBrackets(taxableOrdinary, yt.FederalBrackets.ByFilingStatus(s.FilingStatus))

	ltcgBrackets := yt.LTCGBracketsSingle
	if s.FilingStatus == domain.MarriedFilingJointly || s.FilingStatus == domain.QualifyingSurvivingSpouse {
		ltcgBrackets = yt.LTCGBracketsMFJ
	}
	ltcgTax := taxStackedAbove(taxableOrdinary, s.LongTermGains, ltcgBrackets)

	niit := decimal.Zero
	if niitEnabled {
		threshold := yt.NIIT.ThresholdSingle
		switch s.FilingStatus {
		case domain.MarriedFilingJointly, domain.QualifyingSurvivingSpouse:
			threshold = yt.NIIT.ThresholdMFJ
		case domain.MarriedFilingSeparately:
			threshold = yt.NIIT.ThresholdMFS
		}
		// NIIT is levied on the greater of investment income (here, dividends)
		// or gross long-term gains, capped at the excess of AGI over threshold.
		niitIncome := decimal.Max(s.InvestmentIncome, s.LongTermGains)
		base := decimal.Min(niitIncome, decimal.Max(decimal.Zero, s.AGI.Sub(threshold)))
		niit = base.Mul(yt.NIIT.Rate)
	}

	amt := decimal.Zero
	if amtEnabled {
		amt = e.computeAMT(s, yt, federalOrdinary)
	}

	state := e.computeState(s, yt, taxableOrdinary)

	penalty := s.EarlyWithdrawalPenaltyBase.Mul(decimal.NewFromFloat(0.10))

	total := federalOrdinary.Add(ltcgTax).Add(niit).Add(amt).Add(state).Add(penalty).Sub(s.WithheldYTD)

	return domain.TaxResult{
		FederalOrdinary:        federalOrdinary,
		LongTermGains:          ltcgTax,
		NIIT:                   niit,
		AMT:                    amt,
		State:                  state,
		FICASettled:            decimal.Zero,
		EarlyWithdrawalPenalty: penalty,
		Total:                  total,
	}
}

func (e *Engine) computeAMT(s YearIncomeSummary, yt regulatory.YearTables, regularFederal decimal.Decimal) decimal.Decimal {
	amti := s.OrdinaryIncome.Add(s.LongTermGains) // simplified AMTI
	exemption := yt.AMT.ExemptionSingle
	phaseoutThreshold := yt.AMT.PhaseoutThresholdSingle
	switch s.FilingStatus {
	case domain.MarriedFilingJointly, domain.QualifyingSurvivingSpouse:
		exemption = yt.AMT.ExemptionMFJ
		phaseoutThreshold = yt.AMT.PhaseoutThresholdMFJ
	case domain.MarriedFilingSeparately:
		exemption = yt.AMT.ExemptionMFS
		phaseoutThreshold = yt.AMT.PhaseoutThresholdMFS
	}
	if amti.GreaterThan(phaseoutThreshold) {
		phaseout := amti.Sub(phaseoutThreshold).Mul(decimal.NewFromFloat(0.25))
		exemption = decimal.Max(decimal.Zero, exemption.Sub(phaseout))
	}
	amtBase := decimal.Max(decimal.Zero, amti.Sub(exemption))
	low := decimal.Min(amtBase, yt.AMT.RateBreakpoint).Mul(yt.AMT.LowRate)
	high := decimal.Max(decimal.Zero, amtBase.Sub(yt.AMT.RateBreakpoint)).Mul(yt.AMT.HighRate)
	tentative := low.Add(high)
	return decimal.Max(decimal.Zero, tentative.Sub(regularFederal))
}

func (e *Engine) computeState(s YearIncomeSummary, yt regulatory.YearTables, taxableOrdinary decimal.Decimal) decimal.Decimal {
	sr, ok := yt.States[s.PrimaryState]
	if !ok {
		return decimal.Zero
	}
	base := s.OrdinaryIncome.Add(s.LongTermGains)
	if sr.SocialSecurityExempt {
		base = taxableOrdinary.Add(s.LongTermGains)
	}
	if len(sr.Brackets) > 0 {
		return applyBrackets(base, sr.Brackets)
	}
	return base.Mul(sr.Rate)
}
