package taxes

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmydo/tfp/internal/domain"
	"github.com/timmydo/tfp/internal/regulatory"
)

func loadTestTables(t *testing.T) *regulatory.Tables {
	t.Helper()
	tables, err := regulatory.Load("../regulatory/testdata/regulatory.yaml")
	require.NoError(t, err)
	return tables
}

func TestCompute_SingleFilerOrdinaryIncomeOnly(t *testing.T) {
	e := New(loadTestTables(t))
	result := e.Compute(YearIncomeSummary{
		Year:         2024,
		FilingStatus: domain.Single,
		OrdinaryIncome: decimal.NewFromInt(80000),
	}, false, false)

	assert.True(t, result.FederalOrdinary.GreaterThan(decimal.Zero))
	assert.True(t, result.LongTermGains.IsZero())
	assert.True(t, result.NIIT.IsZero())
	assert.True(t, result.AMT.IsZero())
}

func TestCompute_WithholdingOffsetsTotal(t *testing.T) {
	e := New(loadTestTables(t))
	withoutWithholding := e.Compute(YearIncomeSummary{
		Year: 2024, FilingStatus: domain.Single, OrdinaryIncome: decimal.NewFromInt(80000),
	}, false, false)
	withWithholding := e.Compute(YearIncomeSummary{
		Year: 2024, FilingStatus: domain.Single, OrdinaryIncome: decimal.NewFromInt(80000),
		WithheldYTD: decimal.NewFromInt(5000),
	}, false, false)

	assert.True(t, withWithholding.Total.Equal(withoutWithholding.Total.Sub(decimal.NewFromInt(5000))))
}

func TestCompute_LongTermGainsStackAboveOrdinaryIncome(t *testing.T) {
	e := New(loadTestTables(t))
	result := e.Compute(YearIncomeSummary{
		Year: 2024, FilingStatus: domain.Single,
		OrdinaryIncome: decimal.NewFromInt(30000),
		LongTermGains:  decimal.NewFromInt(20000),
	}, false, false)

	assert.True(t, result.LongTermGains.GreaterThanOrEqual(decimal.Zero))
}

func TestCompute_NIITAppliesAboveThreshold(t *testing.T) {
	e := New(loadTestTables(t))
	result := e.Compute(YearIncomeSummary{
		Year: 2024, FilingStatus: domain.Single,
		OrdinaryIncome:   decimal.NewFromInt(150000),
		InvestmentIncome: decimal.NewFromInt(50000),
		AGI:              decimal.NewFromInt(250000),
	}, true, false)

	// AGI 250000 - threshold 200000 = 50000 base, capped by investment income 50000
	expected := decimal.NewFromInt(50000).Mul(decimal.NewFromFloat(0.038))
	assert.True(t, result.NIIT.Equal(expected))
}

func TestCompute_NIITUsesMFSThresholdNotSingle(t *testing.T) {
	e := New(loadTestTables(t))
	result := e.Compute(YearIncomeSummary{
		Year: 2024, FilingStatus: domain.MarriedFilingSeparately,
		OrdinaryIncome:   decimal.NewFromInt(150000),
		InvestmentIncome: decimal.NewFromInt(50000),
		AGI:              decimal.NewFromInt(150000),
	}, true, false)

	// AGI 150000 - MFS threshold 125000 = 25000 base, capped by investment income 50000
	expected := decimal.NewFromInt(25000).Mul(decimal.NewFromFloat(0.038))
	assert.True(t, result.NIIT.Equal(expected), "want %s, got %s", expected, result.NIIT)
}

func TestComputeAMT_UsesMFSExemptionNotSingle(t *testing.T) {
	e := New(loadTestTables(t))
	yt := e.Tables.For(2024, decimal.Zero)
	summary := YearIncomeSummary{FilingStatus: domain.MarriedFilingSeparately, OrdinaryIncome: decimal.NewFromInt(200000)}

	// regularFederal held at zero isolates the tentative-AMT computation,
	// which must use the MFS exemption (66650) rather than falling back to
	// single's (85700).
	got := e.computeAMT(summary, yt, decimal.Zero)

	amtBase := decimal.NewFromInt(200000).Sub(yt.AMT.ExemptionMFS)
	low := decimal.Min(amtBase, yt.AMT.RateBreakpoint).Mul(yt.AMT.LowRate)
	high := decimal.Max(decimal.Zero, amtBase.Sub(yt.AMT.RateBreakpoint)).Mul(yt.AMT.HighRate)
	expected := low.Add(high)

	assert.True(t, got.Equal(expected), "want %s, got %s", expected, got)
	assert.False(t, yt.AMT.ExemptionMFS.Equal(yt.AMT.ExemptionSingle), "fixture must give MFS a distinct exemption from single")
}

func TestCompute_NIITDisabledYieldsZero(t *testing.T) {
	e := New(loadTestTables(t))
	result := e.Compute(YearIncomeSummary{
		Year: 2024, FilingStatus: domain.Single,
		OrdinaryIncome:   decimal.NewFromInt(150000),
		InvestmentIncome: decimal.NewFromInt(50000),
		AGI:              decimal.NewFromInt(250000),
	}, false, false)
	assert.True(t, result.NIIT.IsZero())
}

func TestCompute_EarlyWithdrawalPenaltyIsTenPercent(t *testing.T) {
	e := New(loadTestTables(t))
	result := e.Compute(YearIncomeSummary{
		Year: 2024, FilingStatus: domain.Single,
		EarlyWithdrawalPenaltyBase: decimal.NewFromInt(10000),
	}, false, false)
	assert.True(t, result.EarlyWithdrawalPenalty.Equal(decimal.NewFromInt(1000)))
}

func TestCompute_StateTaxAppliesFlatRateForKnownState(t *testing.T) {
	e := New(loadTestTables(t))
	result := e.Compute(YearIncomeSummary{
		Year: 2024, FilingStatus: domain.Single, PrimaryState: "PA",
		OrdinaryIncome: decimal.NewFromInt(80000),
	}, false, false)
	assert.True(t, result.State.GreaterThan(decimal.Zero))
}

func TestCompute_UnknownStateHasNoStateTax(t *testing.T) {
	e := New(loadTestTables(t))
	result := e.Compute(YearIncomeSummary{
		Year: 2024, FilingStatus: domain.Single, PrimaryState: "NOSTATE",
		OrdinaryIncome: decimal.NewFromInt(80000),
	}, false, false)
	assert.True(t, result.State.IsZero())
}

func TestCompute_ItemizedDeductionUsedWhenLargerThanStandard(t *testing.T) {
	e := New(loadTestTables(t))
	standardOnly := e.Compute(YearIncomeSummary{
		Year: 2024, FilingStatus: domain.Single, OrdinaryIncome: decimal.NewFromInt(80000),
	}, false, false)
	withItemized := e.Compute(YearIncomeSummary{
		Year: 2024, FilingStatus: domain.Single, OrdinaryIncome: decimal.NewFromInt(80000),
		MortgageInterestPaid: decimal.NewFromInt(20000),
	}, false, false)

	assert.True(t, withItemized.FederalOrdinary.LessThan(standardOnly.FederalOrdinary))
}

func TestCompute_AMTIsNonNegativeWhenEnabled(t *testing.T) {
	e := New(loadTestTables(t))
	result := e.Compute(YearIncomeSummary{
		Year: 2024, FilingStatus: domain.MarriedFilingJointly,
		OrdinaryIncome: decimal.NewFromInt(1000000),
	}, false, true)
	assert.True(t, result.AMT.GreaterThanOrEqual(decimal.Zero))
}
