// Package socialsecurity implements converting a primary insurance
// amount and claiming age into a monthly benefit, spousal top-up, COLA, and
// the combined-income taxability rule.
package socialsecurity

import (
	"github.com/shopspring/decimal"

	"github.com/timmydo/tfp/internal/domain"
	"github.com/timmydo/tfp/internal/regulatory"
)

const fullRetirementAge = 67 // whole years; the pivot for early/delayed adjustment, not a configurable input

// AdjustmentFactor returns the multiplier applied to the PIA for claiming at
// claimAgeYears (which may be fractional), per the early/delayed rules.
func AdjustmentFactor(claimAgeYears decimal.Decimal, rules regulatory.SocialSecurityRules) decimal.Decimal {
	fra := decimal.NewFromInt(fullRetirementAge)
	monthsFromFRA := claimAgeYears.Sub(fra).Mul(decimal.NewFromInt(12))

	if monthsFromFRA.IsZero() {
		return decimal.NewFromInt(1)
	}
	if monthsFromFRA.LessThan(decimal.Zero) {
		monthsEarly := monthsFromFRA.Neg()
		first36 := decimal.Min(monthsEarly, decimal.NewFromInt(36))
		beyond36 := decimal.Max(decimal.Zero, monthsEarly.Sub(decimal.NewFromInt(36)))
		reduction := first36.Mul(rules.EarlyRetirement.First36MonthsRate).
			Add(beyond36.Mul(rules.EarlyRetirement.AdditionalMonthsRate))
		return decimal.NewFromInt(1).Sub(reduction)
	}
	credit := monthsFromFRA.Mul(rules.DelayedRetirementCreditMonthly)
	return decimal.NewFromInt(1).Add(credit)
}

// MonthlyBenefit returns the benefit a person receives for one month,
// including the spousal top-up, given the person's PIA and claiming age and
// the spouse's PIA. The top-up is scaled by the person's own claiming-age
// factor. spousePIA is zero-valued and hasSpouse false when there is no spouse.
func MonthlyBenefit(pia, claimAgeYears decimal.Decimal, rules regulatory.SocialSecurityRules, spousePIA decimal.Decimal, hasSpouse bool) decimal.Decimal {
	own := pia.Mul(AdjustmentFactor(claimAgeYears, rules))
	if !hasSpouse {
		return own
	}
	ownFactor := AdjustmentFactor(claimAgeYears, rules)
	spousalTopUp := spousePIA.Mul(decimal.NewFromFloat(0.5)).Mul(ownFactor)
	if own.LessThan(spousalTopUp) {
		return spousalTopUp
	}
	return own
}

// ApplyCOLA compounds a benefit amount by one year's cost-of-living
// adjustment.
func ApplyCOLA(benefit, colaRate decimal.Decimal) decimal.Decimal {
	return benefit.Mul(decimal.NewFromInt(1).Add(colaRate))
}

// TaxablePortion applies the two-threshold combined-income rule to return
// the ordinary-income-includible portion of annual Social Security benefits
// received
func TaxablePortion(annualSS, agiExcludingSS, taxExemptInterest decimal.Decimal, fs domain.FilingStatus, rules regulatory.SocialSecurityRules) decimal.Decimal {
	combined := agiExcludingSS.Add(taxExemptInterest).Add(annualSS.Mul(decimal.NewFromFloat(0.5)))

	thresholds := rules.TaxationThresholds.Single
	if fs == domain.MarriedFilingJointly || fs == domain.QualifyingSurvivingSpouse {
		thresholds = rules.TaxationThresholds.MarriedFilingJointly
	}

	if combined.LessThanOrEqual(thresholds.Threshold1) {
		return decimal.Zero
	}

	half := decimal.NewFromFloat(0.5)
	eightyFive := decimal.NewFromFloat(0.85)

	if combined.LessThanOrEqual(thresholds.Threshold2) {
		taxable := decimal.Min(combined.Sub(thresholds.Threshold1).Mul(half), annualSS.Mul(half))
		return taxable
	}

	tier2Base := thresholds.Threshold2.Sub(thresholds.Threshold1).Mul(half)
	tier3 := combined.Sub(thresholds.Threshold2).Mul(eightyFive)
	taxable := decimal.Min(tier2Base.Add(tier3), annualSS.Mul(eightyFive))
	return taxable
}
