package socialsecurity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/timmydo/tfp/internal/domain"
	"github.com/timmydo/tfp/internal/regulatory"
)

func testRules() regulatory.SocialSecurityRules {
	return regulatory.SocialSecurityRules{
		EarlyRetirement: regulatory.EarlyRetirementRates{
			First36MonthsRate:    decimal.NewFromFloat(0.0056),
			AdditionalMonthsRate: decimal.NewFromFloat(0.0042),
		},
		DelayedRetirementCreditMonthly: decimal.NewFromFloat(0.00667),
		TaxationThresholds: regulatory.SSTaxationThresholds{
			Single: regulatory.ThresholdPair{
				Threshold1: decimal.NewFromInt(25000),
				Threshold2: decimal.NewFromInt(34000),
			},
			MarriedFilingJointly: regulatory.ThresholdPair{
				Threshold1: decimal.NewFromInt(32000),
				Threshold2: decimal.NewFromInt(44000),
			},
		},
	}
}

func TestAdjustmentFactor_AtFullRetirementAgeIsOne(t *testing.T) {
	factor := AdjustmentFactor(decimal.NewFromInt(67), testRules())
	assert.True(t, factor.Equal(decimal.NewFromInt(1)))
}

func TestAdjustmentFactor_ClaimingEarlyReducesBenefit(t *testing.T) {
	factor := AdjustmentFactor(decimal.NewFromInt(62), testRules())
	assert.True(t, factor.LessThan(decimal.NewFromInt(1)))
}

func TestAdjustmentFactor_ClaimingLateIncreasesBenefit(t *testing.T) {
	factor := AdjustmentFactor(decimal.NewFromInt(70), testRules())
	assert.True(t, factor.GreaterThan(decimal.NewFromInt(1)))
}

func TestMonthlyBenefit_SpousalTopUpAppliesWhenHigher(t *testing.T) {
	rules := testRules()
	// own PIA small, spouse PIA large: half of spouse's should exceed own benefit
	benefit := MonthlyBenefit(decimal.NewFromInt(500), decimal.NewFromInt(67), rules, decimal.NewFromInt(3000), true)
	assert.True(t, benefit.Equal(decimal.NewFromInt(1500)))
}

func TestMonthlyBenefit_OwnBenefitUsedWhenHigherThanTopUp(t *testing.T) {
	rules := testRules()
	benefit := MonthlyBenefit(decimal.NewFromInt(2500), decimal.NewFromInt(67), rules, decimal.NewFromInt(500), true)
	assert.True(t, benefit.Equal(decimal.NewFromInt(2500)))
}

func TestMonthlyBenefit_NoSpouseReturnsOwnBenefitOnly(t *testing.T) {
	rules := testRules()
	benefit := MonthlyBenefit(decimal.NewFromInt(1800), decimal.NewFromInt(67), rules, decimal.Zero, false)
	assert.True(t, benefit.Equal(decimal.NewFromInt(1800)))
}

func TestApplyCOLA_CompoundsByRate(t *testing.T) {
	result := ApplyCOLA(decimal.NewFromInt(2000), decimal.NewFromFloat(0.03))
	assert.True(t, result.Equal(decimal.NewFromInt(2060)))
}

func TestTaxablePortion_BelowFirstThresholdIsZero(t *testing.T) {
	rules := testRules()
	taxable := TaxablePortion(decimal.NewFromInt(20000), decimal.NewFromInt(10000), decimal.Zero, domain.Single, rules)
	assert.True(t, taxable.IsZero())
}

func TestTaxablePortion_BetweenThresholdsTaxesHalfOfExcess(t *testing.T) {
	rules := testRules()
	// combined = 16000 + 10000 (half of 20000 SS) = 26000, between 25000 and 34000
	taxable := TaxablePortion(decimal.NewFromInt(20000), decimal.NewFromInt(16000), decimal.Zero, domain.Single, rules)
	assert.True(t, taxable.Equal(decimal.NewFromInt(500)))
}

func TestTaxablePortion_AboveSecondThresholdCapsAtEightyFivePercent(t *testing.T) {
	rules := testRules()
	taxable := TaxablePortion(decimal.NewFromInt(40000), decimal.NewFromInt(100000), decimal.Zero, domain.Single, rules)
	assert.True(t, taxable.Equal(decimal.NewFromInt(40000).Mul(decimal.NewFromFloat(0.85))))
}

func TestTaxablePortion_MFJUsesJointThresholds(t *testing.T) {
	rules := testRules()
	// combined income (30000) that would be taxable for single but below MFJ threshold1
	taxable := TaxablePortion(decimal.NewFromInt(20000), decimal.NewFromInt(20000), decimal.Zero, domain.MarriedFilingJointly, rules)
	assert.True(t, taxable.IsZero())
}
