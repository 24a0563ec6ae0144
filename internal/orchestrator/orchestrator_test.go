package orchestrator

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmydo/tfp/internal/domain"
	"github.com/timmydo/tfp/internal/regulatory"
	"github.com/timmydo/tfp/internal/returns"
)

func loadTestTables(t *testing.T) *regulatory.Tables {
	t.Helper()
	tables, err := regulatory.Load("../regulatory/testdata/regulatory.yaml")
	require.NoError(t, err)
	return tables
}

func costBasisPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func basePlan() *domain.PlanInput {
	return &domain.PlanInput{
		People: []domain.Person{
			{Name: "Alex", Owner: domain.OwnerPrimary, BirthDate: domain.YearMonth{Year: 1970, Month: 1}, SSClaimAge: decimal.NewFromInt(67), RMDStartAge: 73},
		},
		Accounts: []domain.Account{
			{Name: "cash", Kind: domain.KindCash, Owner: domain.OwnerPrimary, Balance: decimal.NewFromInt(5000), AllowWithdrawals: true},
			{Name: "brokerage", Kind: domain.KindTaxableBrokerage, Owner: domain.OwnerPrimary, Balance: decimal.NewFromInt(100000), AllowWithdrawals: true, GrowthRate: decimal.NewFromFloat(0.06), BondAllocationPct: decimal.NewFromInt(40), CostBasis: costBasisPtr(60000)},
		},
		CashFlows: []domain.CashFlowItem{
			{
				Name: "salary", Kind: "income", Owner: domain.OwnerPrimary,
				StartDate: domain.YearMonth{Year: 2024, Month: 1}, Frequency: domain.FrequencyMonthly,
				StartAmount: decimal.NewFromInt(6000), ChangePolicy: domain.ChangeFixed,
				IncomeCategory: domain.IncomeWages,
			},
			{
				Name: "groceries", Kind: "expense", Owner: domain.OwnerPrimary,
				StartDate: domain.YearMonth{Year: 2024, Month: 1}, Frequency: domain.FrequencyMonthly,
				StartAmount: decimal.NewFromInt(1000), ChangePolicy: domain.ChangeFixed,
				SpendingType: domain.SpendingEssential,
			},
		},
		Withdrawals: domain.WithdrawalOrder{UseAccountSpecific: true, AccountOrder: []string{"brokerage"}},
		Settings: domain.PlanSettings{
			PlanStart:    domain.YearMonth{Year: 2024, Month: 1},
			PlanEnd:      domain.YearMonth{Year: 2025, Month: 12},
			FilingStatus: domain.Single,
			PrimaryState: "PA",
			Mode:         domain.ModeDeterministic,
		},
	}
}

func TestRun_DeterministicModeRunsExactlyOnePass(t *testing.T) {
	input := basePlan()
	orch := New(loadTestTables(t), nil)

	result, err := orch.Run(context.Background(), input)
	require.NoError(t, err)

	assert.Len(t, result.Runs, 1)
	assert.Len(t, result.Runs[0], 2) // 2024, 2025
}

func TestRun_DeterministicPercentileBandsCollapseToSingleValue(t *testing.T) {
	input := basePlan()
	orch := New(loadTestTables(t), nil)

	result, err := orch.Run(context.Background(), input)
	require.NoError(t, err)

	for _, bands := range result.NetWorth {
		assert.True(t, bands.P10.Equal(bands.P50))
		assert.True(t, bands.P50.Equal(bands.P90))
	}
}

func TestRun_IsDeterministicAcrossRepeatedCalls(t *testing.T) {
	input := basePlan()
	input.Settings.Seed = 42
	orch := New(loadTestTables(t), nil)

	r1, err := orch.Run(context.Background(), input)
	require.NoError(t, err)
	r2, err := orch.Run(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, r1.Runs[0][0].NetWorth.Equal(r2.Runs[0][0].NetWorth))
	assert.True(t, r1.Runs[0][1].NetWorth.Equal(r2.Runs[0][1].NetWorth))
}

func TestRun_MonteCarloUsesConfiguredRunCount(t *testing.T) {
	input := basePlan()
	input.Settings.Mode = domain.ModeMonteCarlo
	input.Settings.Runs = 8
	input.Settings.Seed = 7
	input.Settings.MonteCarloStockMean = decimal.NewFromFloat(0.07)
	input.Settings.MonteCarloStockStdDev = decimal.NewFromFloat(0.15)
	input.Settings.MonteCarloBondMean = decimal.NewFromFloat(0.03)
	input.Settings.MonteCarloBondStdDev = decimal.NewFromFloat(0.05)
	input.Settings.MonteCarloCorrelation = decimal.NewFromFloat(0.2)
	orch := New(loadTestTables(t), nil)

	result, err := orch.Run(context.Background(), input)
	require.NoError(t, err)
	assert.Len(t, result.Runs, 8)
}

func TestRun_MonteCarloRunsAreIndependentUnderConcurrency(t *testing.T) {
	// Regression guard: each goroutine's run must operate on its own cloned
	// PlanState; a shared pointer would let one run's account mutations leak
	// into another's, producing suspiciously identical or corrupted results.
	input := basePlan()
	input.Settings.Mode = domain.ModeMonteCarlo
	input.Settings.Runs = 24
	input.Settings.Seed = 99
	input.Settings.MonteCarloStockMean = decimal.NewFromFloat(0.07)
	input.Settings.MonteCarloStockStdDev = decimal.NewFromFloat(0.18)
	input.Settings.MonteCarloBondMean = decimal.NewFromFloat(0.03)
	input.Settings.MonteCarloBondStdDev = decimal.NewFromFloat(0.05)
	input.Settings.MonteCarloCorrelation = decimal.NewFromFloat(0.2)
	orch := New(loadTestTables(t), nil)

	result, err := orch.Run(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, result.Runs, 24)

	distinct := map[string]bool{}
	for _, run := range result.Runs {
		require.Len(t, run, 2)
		distinct[run[len(run)-1].NetWorth.String()] = true
	}
	// with stock stddev this large across 24 independent draws, collapsing to
	// one shared value would indicate state is being shared across goroutines
	assert.Greater(t, len(distinct), 1)

	for _, run := range result.Runs {
		for _, annual := range run {
			for name, bal := range annual.EndingBalances {
				assert.False(t, bal.IsNegative(), "account %s went negative", name)
			}
		}
	}
}

func TestRun_RejectsMonteCarloCorrelationOutsideRange(t *testing.T) {
	input := basePlan()
	input.Settings.Mode = domain.ModeMonteCarlo
	input.Settings.Runs = 1
	input.Settings.MonteCarloCorrelation = decimal.NewFromFloat(1.5)
	orch := New(loadTestTables(t), nil)

	_, err := orch.Run(context.Background(), input)
	require.Error(t, err)
}

func TestRun_RejectsHistoricalModeWithoutBundledData(t *testing.T) {
	input := basePlan()
	input.Settings.Mode = domain.ModeHistorical
	input.Settings.Runs = 1
	orch := New(loadTestTables(t), nil) // no historical series

	_, err := orch.Run(context.Background(), input)
	require.Error(t, err)
}

func TestRun_HistoricalModeUsesBundledSeries(t *testing.T) {
	input := basePlan()
	input.Settings.Mode = domain.ModeHistorical
	input.Settings.Runs = 4
	input.Settings.Seed = 3
	input.Settings.HistoricalHorizonYears = 2
	series := []returns.HistoricalSeries{
		{Year: 2000, Stock: decimal.NewFromFloat(0.10), Bond: decimal.NewFromFloat(0.04)},
		{Year: 2001, Stock: decimal.NewFromFloat(-0.05), Bond: decimal.NewFromFloat(0.03)},
		{Year: 2002, Stock: decimal.NewFromFloat(0.18), Bond: decimal.NewFromFloat(0.02)},
	}
	orch := New(loadTestTables(t), series)

	result, err := orch.Run(context.Background(), input)
	require.NoError(t, err)
	assert.Len(t, result.Runs, 4)
}

func TestRun_SuccessRateReflectsInsolvency(t *testing.T) {
	input := basePlan()
	input.CashFlows = input.CashFlows[1:] // drop salary, keep groceries
	input.Accounts[0].Balance = decimal.NewFromInt(50)
	input.Accounts = input.Accounts[:1] // cash only, nothing to draw down
	input.Withdrawals = domain.WithdrawalOrder{}
	orch := New(loadTestTables(t), nil)

	result, err := orch.Run(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, result.SuccessRate.IsZero())
}

func TestRun_RespectsContextCancellation(t *testing.T) {
	input := basePlan()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	orch := New(loadTestTables(t), nil)

	_, err := orch.Run(ctx, input)
	require.Error(t, err)
}
