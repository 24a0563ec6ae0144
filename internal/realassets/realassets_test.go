package realassets

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/timmydo/tfp/internal/domain"
)

func TestAppreciate_FixedRateGrowsValue(t *testing.T) {
	a := &domain.RealAsset{CurrentValue: decimal.NewFromInt(400000), ChangePolicy: domain.ChangeIncrease, ChangeRate: decimal.NewFromFloat(0.03)}
	Appreciate(a, decimal.Zero)
	assert.True(t, a.CurrentValue.GreaterThan(decimal.NewFromInt(400000)))
}

func TestAppreciate_MatchInflationUsesInflationRate(t *testing.T) {
	a := &domain.RealAsset{CurrentValue: decimal.NewFromInt(400000), ChangePolicy: domain.ChangeMatchInflation}
	Appreciate(a, decimal.NewFromFloat(0.02))
	assert.True(t, a.CurrentValue.GreaterThan(decimal.NewFromInt(400000)))
}

func TestAppreciate_DecreasePolicyShrinksValue(t *testing.T) {
	a := &domain.RealAsset{CurrentValue: decimal.NewFromInt(400000), ChangePolicy: domain.ChangeDecrease, ChangeRate: decimal.NewFromFloat(0.05)}
	Appreciate(a, decimal.Zero)
	assert.True(t, a.CurrentValue.LessThan(decimal.NewFromInt(400000)))
}

func TestAmortizeMortgage_SplitsInterestAndPrincipal(t *testing.T) {
	m := &domain.Mortgage{Payment: decimal.NewFromInt(2000), RemainingBalance: decimal.NewFromInt(300000), AnnualRate: decimal.NewFromFloat(0.06)}
	interest, principal := AmortizeMortgage(m)
	assert.True(t, interest.Equal(decimal.NewFromInt(1500))) // 300000 * 0.06/12
	assert.True(t, principal.Equal(decimal.NewFromInt(500)))
	assert.True(t, m.RemainingBalance.Equal(decimal.NewFromInt(299500)))
}

func TestAmortizeMortgage_FinalPaymentClampsPrincipalToBalance(t *testing.T) {
	m := &domain.Mortgage{Payment: decimal.NewFromInt(2000), RemainingBalance: decimal.NewFromInt(100), AnnualRate: decimal.NewFromFloat(0.06)}
	_, principal := AmortizeMortgage(m)
	assert.True(t, m.RemainingBalance.IsZero())
	assert.True(t, principal.LessThanOrEqual(decimal.NewFromInt(100)))
}

func TestAmortizeMortgage_NilOrPaidOffMortgageIsNoOp(t *testing.T) {
	interest, principal := AmortizeMortgage(nil)
	assert.True(t, interest.IsZero())
	assert.True(t, principal.IsZero())

	paidOff := &domain.Mortgage{RemainingBalance: decimal.Zero}
	interest, principal = AmortizeMortgage(paidOff)
	assert.True(t, interest.IsZero())
	assert.True(t, principal.IsZero())
}

func TestAccruePropertyTax_OneTwelfthOfAnnualRate(t *testing.T) {
	a := &domain.RealAsset{CurrentValue: decimal.NewFromInt(400000), PropertyTaxRate: decimal.NewFromFloat(0.012)}
	monthly := AccruePropertyTax(a)
	assert.True(t, monthly.Equal(decimal.NewFromInt(400)))
}

func TestSell_NonPrimaryResidenceHasNoExclusion(t *testing.T) {
	a := domain.RealAsset{PurchasePrice: decimal.NewFromInt(200000)}
	result := Sell(a, decimal.NewFromInt(500000), decimal.NewFromInt(10000), domain.Single)
	assert.True(t, result.NetProceeds.Equal(decimal.NewFromInt(490000)))
	assert.True(t, result.Gain.Equal(decimal.NewFromInt(300000)))
}

func TestSell_PrimaryResidenceSingleExclusionCapsGain(t *testing.T) {
	a := domain.RealAsset{PurchasePrice: decimal.NewFromInt(200000), PrimaryResidence: true}
	result := Sell(a, decimal.NewFromInt(500000), decimal.Zero, domain.Single)
	// gain 300000 - 250000 exclusion = 50000
	assert.True(t, result.Gain.Equal(decimal.NewFromInt(50000)))
}

func TestSell_PrimaryResidenceMFJExclusionCoversLargerGain(t *testing.T) {
	a := domain.RealAsset{PurchasePrice: decimal.NewFromInt(200000), PrimaryResidence: true}
	result := Sell(a, decimal.NewFromInt(650000), decimal.Zero, domain.MarriedFilingJointly)
	// gain 450000 fully covered by the 500000 MFJ exclusion
	assert.True(t, result.Gain.IsZero())
}

func TestSell_ExclusionNeverMakesGainNegative(t *testing.T) {
	a := domain.RealAsset{PurchasePrice: decimal.NewFromInt(450000), PrimaryResidence: true}
	result := Sell(a, decimal.NewFromInt(500000), decimal.Zero, domain.Single)
	// raw gain 50000, fully under the 250000 exclusion
	assert.True(t, result.Gain.IsZero())
}
