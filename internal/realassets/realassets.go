// Package realassets implements monthly appreciation, standard mortgage
// amortization, property-tax accrual, and sale with the primary-residence
// exclusion for steps 14/15 of the monthly engine. Maintenance costs are
// computed by the engine itself, not here.
package realassets

import (
	"github.com/shopspring/decimal"

	"github.com/timmydo/tfp/internal/domain"
)

const (
	exclusionSingle = 250000
	exclusionMFJ    = 500000
)

// monthlyRate converts an annual change rate to the implied monthly factor
// using the same geometric convention as account growth (step 11).
func monthlyRate(annual decimal.Decimal) decimal.Decimal {
	return domain.MonthlyGrowthFactor(annual)
}

// Appreciate advances a.CurrentValue by one month under its change policy.
func Appreciate(a *domain.RealAsset, inflationRate decimal.Decimal) {
	rate := a.ChangeRate
	switch a.ChangePolicy {
	case domain.ChangeMatchInflation:
		rate = inflationRate
	case domain.ChangeInflationPlus:
		rate = inflationRate.Add(a.ChangeRate)
	case domain.ChangeInflationMinus:
		rate = inflationRate.Sub(a.ChangeRate)
	case domain.ChangeDecrease:
		rate = a.ChangeRate.Neg()
	}
	a.CurrentValue = a.CurrentValue.Mul(decimal.NewFromInt(1).Add(monthlyRate(rate)))
}

// AmortizeMortgage applies one month's interest/principal split to m and
// returns the interest and principal portions. The mortgage detaches (the
// caller should set a.Mortgage = nil) once RemainingBalance reaches zero.
func AmortizeMortgage(m *domain.Mortgage) (interest, principal decimal.Decimal) {
	if m == nil || m.RemainingBalance.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero
	}
	monthlyRate := m.AnnualRate.Div(decimal.NewFromInt(12))
	interest = m.RemainingBalance.Mul(monthlyRate)
	principal = m.Payment.Sub(interest)
	if principal.GreaterThan(m.RemainingBalance) {
		principal = m.RemainingBalance
	}
	m.RemainingBalance = m.RemainingBalance.Sub(principal)
	if m.RemainingBalance.LessThan(decimal.Zero) {
		m.RemainingBalance = decimal.Zero
	}
	return interest, principal
}

// AccruePropertyTax returns this month's property tax charge.
func AccruePropertyTax(a *domain.RealAsset) decimal.Decimal {
	return a.PropertyTaxRate.Mul(a.CurrentValue).Div(decimal.NewFromInt(12))
}

// SaleResult is the outcome of selling a real asset (step 15, sell_asset).
type SaleResult struct {
	NetProceeds decimal.Decimal
	Gain        decimal.Decimal
}

// Sell computes net proceeds and the taxable gain for selling a real asset,
// applying the primary-residence exclusion when applicable.
func Sell(a domain.RealAsset, grossAmount, fees decimal.Decimal, fs domain.FilingStatus) SaleResult {
	net := grossAmount.Sub(fees)
	gain := grossAmount.Sub(a.PurchasePrice)
	if a.PrimaryResidence {
		exclusion := decimal.NewFromInt(exclusionSingle)
		if fs == domain.MarriedFilingJointly || fs == domain.QualifyingSurvivingSpouse {
			exclusion = decimal.NewFromInt(exclusionMFJ)
		}
		gain = decimal.Max(decimal.Zero, gain.Sub(exclusion))
	}
	return SaleResult{NetProceeds: net, Gain: gain}
}
