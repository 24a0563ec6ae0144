package healthcare

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/timmydo/tfp/internal/domain"
	"github.com/timmydo/tfp/internal/regulatory"
)

func testYearTables() regulatory.YearTables {
	return regulatory.YearTables{
		Medicare: regulatory.MedicareRules{
			PartBBasePremium: decimal.NewFromInt(175),
			IRMAATiers: []regulatory.IRMAATier{
				{IncomeThresholdSingle: decimal.NewFromInt(103000), IncomeThresholdJoint: decimal.NewFromInt(206000), MonthlySurcharge: decimal.NewFromInt(70)},
				{IncomeThresholdSingle: decimal.NewFromInt(129000), IncomeThresholdJoint: decimal.NewFromInt(258000), MonthlySurcharge: decimal.NewFromInt(175)},
			},
		},
	}
}

func TestMonthlyCost_PreMedicareUsesPremiumAndOutOfPocket(t *testing.T) {
	plan := domain.HealthcarePlan{
		PreMedicarePremium: decimal.NewFromInt(600),
		AnnualOutOfPocket:  decimal.NewFromInt(1200),
	}
	cost, irmaa := MonthlyCost(plan, 60, false, decimal.Zero, false, testYearTables())
	assert.True(t, cost.Equal(decimal.NewFromInt(700))) // 600 + 1200/12
	assert.True(t, irmaa.IsZero())
}

func TestMonthlyCost_MedicareEligibleBelowIRMAAThresholdHasNoSurcharge(t *testing.T) {
	plan := domain.HealthcarePlan{
		PartBPremium:      decimal.NewFromInt(175),
		SupplementPremium: decimal.NewFromInt(200),
		PartDPremium:      decimal.NewFromInt(40),
	}
	cost, irmaa := MonthlyCost(plan, 67, true, decimal.NewFromInt(80000), false, testYearTables())
	assert.True(t, irmaa.IsZero())
	assert.True(t, cost.Equal(decimal.NewFromInt(415)))
}

func TestMonthlyCost_MedicareEligibleAboveIRMAAThresholdAddsSurcharge(t *testing.T) {
	plan := domain.HealthcarePlan{
		PartBPremium:      decimal.NewFromInt(175),
		SupplementPremium: decimal.NewFromInt(200),
		PartDPremium:      decimal.NewFromInt(40),
	}
	cost, irmaa := MonthlyCost(plan, 67, true, decimal.NewFromInt(110000), false, testYearTables())
	assert.True(t, irmaa.Equal(decimal.NewFromInt(70)))
	assert.True(t, cost.Equal(decimal.NewFromInt(485)))
}

func TestMonthlyCost_HighestTierReplacesRatherThanStacks(t *testing.T) {
	plan := domain.HealthcarePlan{PartBPremium: decimal.NewFromInt(175)}
	_, irmaa := MonthlyCost(plan, 67, true, decimal.NewFromInt(140000), false, testYearTables())
	// above both tiers: surcharge should be the higher tier's value, not the sum
	assert.True(t, irmaa.Equal(decimal.NewFromInt(175)))
}

func TestMonthlyCost_MFJUsesJointThresholds(t *testing.T) {
	plan := domain.HealthcarePlan{PartBPremium: decimal.NewFromInt(175)}
	_, irmaa := MonthlyCost(plan, 67, true, decimal.NewFromInt(110000), true, testYearTables())
	// 110k is above the single threshold (103k) but below the joint one (206k)
	assert.True(t, irmaa.IsZero())
}
