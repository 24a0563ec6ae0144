// Package healthcare implements the phase-based monthly healthcare cost
// model with an IRMAA surcharge looked up via a 2-year MAGI lookback.
package healthcare

import (
	"github.com/shopspring/decimal"

	"github.com/timmydo/tfp/internal/domain"
	"github.com/timmydo/tfp/internal/regulatory"
)

// MonthlyCost returns one person's healthcare outflow for the month,
// switching from the pre-Medicare premium to Part B/supplement/Part D plus
// IRMAA once the person is Medicare-eligible.
func MonthlyCost(plan domain.HealthcarePlan, ageYears int, isMedicareEligible bool, magiLookback decimal.Decimal, isMarriedFilingJointly bool, yt regulatory.YearTables) (cost, irmaaSurcharge decimal.Decimal) {
	inflated := func(base decimal.Decimal) decimal.Decimal { return base }

	if !isMedicareEligible {
		premium := inflated(plan.PreMedicarePremium)
		oop := inflated(plan.AnnualOutOfPocket).Div(decimal.NewFromInt(12))
		return premium.Add(oop), decimal.Zero
	}

	irmaaSurcharge = surcharge(magiLookback, isMarriedFilingJointly, yt)
	base := inflated(plan.PartBPremium).Add(inflated(plan.SupplementPremium)).Add(inflated(plan.PartDPremium))
	oop := inflated(plan.AnnualOutOfPocket).Div(decimal.NewFromInt(12))
	return base.Add(oop).Add(irmaaSurcharge), irmaaSurcharge
}

// surcharge returns the monthly IRMAA surcharge for the given MAGI. Tiers
// are a ladder of absolute dollar amounts, not deltas, so the highest tier
// reached replaces rather than stacks on the lower ones.
func surcharge(magi decimal.Decimal, isMFJ bool, yt regulatory.YearTables) decimal.Decimal {
	total := decimal.Zero
	for _, tier := range yt.Medicare.IRMAATiers {
		threshold := tier.IncomeThresholdSingle
		if isMFJ {
			threshold = tier.IncomeThresholdJoint
		}
		if magi.GreaterThan(threshold) {
			total = tier.MonthlySurcharge
		}
	}
	return total
}
