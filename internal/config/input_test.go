package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmydo/tfp/internal/domain"
)

func basePlan() *domain.PlanInput {
	basis := decimal.NewFromInt(50000)
	return &domain.PlanInput{
		People: []domain.Person{
			{Name: "Alex", Owner: domain.OwnerPrimary, BirthDate: domain.YearMonth{Year: 1970, Month: 1}, RMDStartAge: 73},
		},
		Accounts: []domain.Account{
			{Name: "checking", Kind: domain.KindCash, Owner: domain.OwnerPrimary, Balance: decimal.NewFromInt(10000)},
			{Name: "brokerage", Kind: domain.KindTaxableBrokerage, Owner: domain.OwnerPrimary, Balance: decimal.NewFromInt(100000), CostBasis: &basis},
		},
		Withdrawals: domain.WithdrawalOrder{KindOrder: []domain.AccountKind{domain.KindCash, domain.KindTaxableBrokerage}},
		Settings: domain.PlanSettings{
			PlanStart:    domain.YearMonth{Year: 2026, Month: 1},
			PlanEnd:      domain.YearMonth{Year: 2050, Month: 12},
			FilingStatus: domain.Single,
			Mode:         domain.ModeDeterministic,
		},
	}
}

func TestValidate_AcceptsWellFormedPlan(t *testing.T) {
	ip := NewInputParser()
	assert.NoError(t, ip.Validate(basePlan()))
}

func TestValidate_RequiresAtLeastOnePerson(t *testing.T) {
	plan := basePlan()
	plan.People = nil
	ip := NewInputParser()
	err := ip.Validate(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "$.people")
}

func TestValidate_RequiresSpouseForJointFiling(t *testing.T) {
	plan := basePlan()
	plan.Settings.FilingStatus = domain.MarriedFilingJointly
	ip := NewInputParser()
	err := ip.Validate(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filing_status")
}

func TestValidate_RequiresCashAccount(t *testing.T) {
	plan := basePlan()
	plan.Accounts = plan.Accounts[1:] // drop the only cash account
	ip := NewInputParser()
	err := ip.Validate(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one account of kind \"cash\"")
}

func TestValidate_RequiresCostBasisOnTaxableBrokerage(t *testing.T) {
	plan := basePlan()
	plan.Accounts[1].CostBasis = nil
	ip := NewInputParser()
	err := ip.Validate(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cost_basis")
}

func TestValidate_RejectsDuplicateAccountNames(t *testing.T) {
	plan := basePlan()
	plan.Accounts = append(plan.Accounts, plan.Accounts[0])
	ip := NewInputParser()
	err := ip.Validate(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate account name")
}

func TestValidate_RejectsPlanEndBeforePlanStart(t *testing.T) {
	plan := basePlan()
	plan.Settings.PlanEnd = domain.YearMonth{Year: 2020, Month: 1}
	ip := NewInputParser()
	err := ip.Validate(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan_end")
}

func TestValidate_RequiresWithholdPercentWhenWithholding(t *testing.T) {
	plan := basePlan()
	plan.CashFlows = []domain.CashFlowItem{
		{Name: "salary", Kind: "income", Owner: domain.OwnerPrimary, TaxHandling: domain.TaxHandlingWithhold},
	}
	ip := NewInputParser()
	err := ip.Validate(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "withhold_percent")
}

func TestValidate_ResolvesCashFlowAccountReferences(t *testing.T) {
	plan := basePlan()
	plan.CashFlows = []domain.CashFlowItem{
		{Name: "rent", Kind: "expense", Owner: domain.OwnerPrimary, SourceAccount: "nonexistent"},
	}
	ip := NewInputParser()
	err := ip.Validate(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source_account")
}

func TestValidate_RothScheduleRequiresTraditionalSourceAndRothDestination(t *testing.T) {
	plan := basePlan()
	plan.Accounts = append(plan.Accounts,
		domain.Account{Name: "ira", Kind: domain.KindTraditionalIRA, Owner: domain.OwnerPrimary},
		domain.Account{Name: "roth", Kind: domain.KindRothIRA, Owner: domain.OwnerPrimary},
	)
	plan.RothSchedules = []domain.RothConversionSchedule{
		{Name: "fill-22", SourceAccount: "brokerage", DestinationAccount: "roth", Fixed: true, AnnualAmount: decimal.NewFromInt(10000)},
	}
	ip := NewInputParser()
	err := ip.Validate(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a traditional tax-deferred account")
}

func TestValidate_RMDAccountsMustBeTaxDeferred(t *testing.T) {
	plan := basePlan()
	plan.RMDs = []domain.RMDConfig{
		{Owner: domain.OwnerPrimary, Accounts: []string{"brokerage"}, DestinationAccount: "checking"},
	}
	ip := NewInputParser()
	err := ip.Validate(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be tax-deferred")
}

func TestValidate_SellAssetTransactionRequiresPurchasePrice(t *testing.T) {
	plan := basePlan()
	plan.RealAssets = []domain.RealAsset{
		{Name: "house", Owner: domain.OwnerPrimary, CurrentValue: decimal.NewFromInt(400000)},
	}
	plan.Transactions = []domain.Transaction{
		{Name: "sell-house", Kind: domain.TransactionSellAsset, Account: "checking", AssetName: "house"},
	}
	ip := NewInputParser()
	err := ip.Validate(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "purchase_price")
}

func TestValidate_MonteCarloCorrelationMustBeWithinRange(t *testing.T) {
	plan := basePlan()
	plan.Settings.Mode = domain.ModeMonteCarlo
	plan.Settings.MonteCarloCorrelation = decimal.NewFromFloat(1.5)
	ip := NewInputParser()
	err := ip.Validate(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monte_carlo_correlation")
}

func TestLoadFromFile_ReadsAndValidatesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	doc := `
people:
  - name: Alex
    owner: primary
    birth_date: "1970-01"
    rmd_start_age: 73
accounts:
  - name: checking
    kind: cash
    owner: primary
    balance: "10000"
withdrawals:
  kind_order: [cash]
settings:
  plan_start: "2026-01"
  plan_end: "2050-12"
  filing_status: single
  mode: deterministic
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	ip := NewInputParser()
	input, err := ip.LoadFromFile(path)
	require.NoError(t, err)
	require.Len(t, input.People, 1)
	assert.Equal(t, "Alex", input.People[0].Name)
	assert.Equal(t, domain.YearMonth{Year: 2026, Month: 1}, input.Settings.PlanStart)
}

func TestLoadFromFile_PropagatesMissingFileError(t *testing.T) {
	ip := NewInputParser()
	_, err := ip.LoadFromFile("/nonexistent/path/plan.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}
