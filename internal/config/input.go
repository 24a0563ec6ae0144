// Package config loads and validates a plan input document from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/timmydo/tfp/internal/domain"
)

// InputParser handles parsing and validation of plan input documents.
type InputParser struct{}

// NewInputParser returns a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile reads, parses, and validates a plan input document at path.
func (ip *InputParser) LoadFromFile(path string) (*domain.PlanInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	var input domain.PlanInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.Validate(&input); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &input, nil
}

// Validate runs the cross-reference and structural checks below and returns
// the first failure. It does not check person-name uniqueness or the
// presence of change_rate for non-fixed change policies. Errors carry a
// JSON-path-style prefix identifying the offending element.
func (ip *InputParser) Validate(input *domain.PlanInput) error {
	if len(input.People) == 0 {
		return fmt.Errorf("$.people: at least one person is required")
	}
	owners := map[domain.Owner]bool{}
	for i, p := range input.People {
		path := fmt.Sprintf("$.people[%d]", i)
		if p.Name == "" {
			return fmt.Errorf("%s.name: is required", path)
		}
		if p.Owner != domain.OwnerPrimary && p.Owner != domain.OwnerSpouse && p.Owner != domain.OwnerJoint {
			return fmt.Errorf("%s.owner: %q is not a recognized owner", path, p.Owner)
		}
		owners[p.Owner] = true
	}

	switch input.Settings.FilingStatus {
	case domain.MarriedFilingJointly, domain.MarriedFilingSeparately, domain.QualifyingSurvivingSpouse:
		if !owners[domain.OwnerSpouse] {
			return fmt.Errorf("$.settings.filing_status: %q requires a spouse in $.people", input.Settings.FilingStatus)
		}
	case domain.Single, domain.HeadOfHousehold:
		// no spouse requirement
	default:
		return fmt.Errorf("$.settings.filing_status: %q is not a recognized filing status", input.Settings.FilingStatus)
	}

	if input.Settings.PlanEnd.Before(input.Settings.PlanStart) {
		return fmt.Errorf("$.settings.plan_end: must not be before $.settings.plan_start")
	}

	accountNames := map[string]bool{}
	hasCash := false
	for i, a := range input.Accounts {
		path := fmt.Sprintf("$.accounts[%d]", i)
		if a.Name == "" {
			return fmt.Errorf("%s.name: is required", path)
		}
		if accountNames[a.Name] {
			return fmt.Errorf("%s.name: duplicate account name %q", path, a.Name)
		}
		accountNames[a.Name] = true
		if !owners[a.Owner] && a.Owner != domain.OwnerJoint {
			return fmt.Errorf("%s.owner: %q does not match any person in $.people", path, a.Owner)
		}
		if a.Kind == domain.KindTaxableBrokerage && a.CostBasis == nil {
			return fmt.Errorf("%s.cost_basis: is required for kind %q", path, a.Kind)
		}
		if a.Kind == domain.KindCash {
			hasCash = true
		}
		if !validAccountKind(a.Kind) {
			return fmt.Errorf("%s.kind: %q is not a recognized account kind", path, a.Kind)
		}
	}
	if !hasCash {
		return fmt.Errorf("$.accounts: at least one account of kind \"cash\" is required")
	}

	assetNames := map[string]bool{}
	for i, ra := range input.RealAssets {
		path := fmt.Sprintf("$.real_assets[%d]", i)
		if ra.Name == "" {
			return fmt.Errorf("%s.name: is required", path)
		}
		if assetNames[ra.Name] {
			return fmt.Errorf("%s.name: duplicate real asset name %q", path, ra.Name)
		}
		assetNames[ra.Name] = true
	}

	for i, c := range input.CashFlows {
		path := fmt.Sprintf("$.cash_flows[%d]", i)
		if c.Name == "" {
			return fmt.Errorf("%s.name: is required", path)
		}
		if c.EndDate != (domain.YearMonth{}) && c.EndDate.Before(c.StartDate) {
			return fmt.Errorf("%s.end_date: must not be before start_date", path)
		}
		if c.SourceAccount != "" && c.SourceAccount != "income" && !accountNames[c.SourceAccount] {
			return fmt.Errorf("%s.source_account: %q does not resolve to a known account", path, c.SourceAccount)
		}
		if c.DestinationAccount != "" && !accountNames[c.DestinationAccount] {
			return fmt.Errorf("%s.destination_account: %q does not resolve to a known account", path, c.DestinationAccount)
		}
		if c.TaxHandling == domain.TaxHandlingWithhold && c.WithholdPercent.IsZero() {
			return fmt.Errorf("%s.withhold_percent: is required when tax_handling is \"withhold\"", path)
		}
	}

	for i, t := range input.Transactions {
		path := fmt.Sprintf("$.transactions[%d]", i)
		if !accountNames[t.Account] {
			return fmt.Errorf("%s.account: %q does not resolve to a known account", path, t.Account)
		}
		switch t.Kind {
		case domain.TransactionSellAsset:
			ra := findAsset(input.RealAssets, t.AssetName)
			if ra == nil {
				return fmt.Errorf("%s.asset_name: %q does not resolve to a known real asset", path, t.AssetName)
			}
			if ra.PurchasePrice.IsZero() {
				return fmt.Errorf("%s.asset_name: linked real asset %q has no purchase_price", path, t.AssetName)
			}
		case domain.TransactionBuyAsset, domain.TransactionTransfer, domain.TransactionOther:
			// no additional cross-reference requirement
		default:
			return fmt.Errorf("%s.kind: %q is not a recognized transaction kind", path, t.Kind)
		}
	}

	for i, rs := range input.RothSchedules {
		path := fmt.Sprintf("$.roth_schedules[%d]", i)
		src := findAccount(input.Accounts, rs.SourceAccount)
		dst := findAccount(input.Accounts, rs.DestinationAccount)
		if src == nil {
			return fmt.Errorf("%s.source_account: %q does not resolve to a known account", path, rs.SourceAccount)
		}
		if dst == nil {
			return fmt.Errorf("%s.destination_account: %q does not resolve to a known account", path, rs.DestinationAccount)
		}
		if !src.Kind.IsTaxDeferred() {
			return fmt.Errorf("%s.source_account: %q must be a traditional tax-deferred account", path, rs.SourceAccount)
		}
		if dst.Kind != domain.KindRothIRA {
			return fmt.Errorf("%s.destination_account: %q must be a Roth account", path, rs.DestinationAccount)
		}
	}

	for i, rmd := range input.RMDs {
		path := fmt.Sprintf("$.rmds[%d]", i)
		if !owners[rmd.Owner] {
			return fmt.Errorf("%s.owner: %q does not match any person in $.people", path, rmd.Owner)
		}
		for j, accName := range rmd.Accounts {
			a := findAccount(input.Accounts, accName)
			if a == nil {
				return fmt.Errorf("%s.accounts[%d]: %q does not resolve to a known account", path, j, accName)
			}
			if !a.Kind.IsTaxDeferred() {
				return fmt.Errorf("%s.accounts[%d]: %q must be tax-deferred", path, j, accName)
			}
		}
		if !accountNames[rmd.DestinationAccount] {
			return fmt.Errorf("%s.destination_account: %q does not resolve to a known account", path, rmd.DestinationAccount)
		}
	}

	for i, em := range input.EmployerMatches {
		path := fmt.Sprintf("$.employer_matches[%d]", i)
		if findCashFlow(input.CashFlows, em.EmployeeContributionItem) == nil {
			return fmt.Errorf("%s.employee_contribution_item: %q does not resolve to a known cash flow", path, em.EmployeeContributionItem)
		}
		if findCashFlow(input.CashFlows, em.SalaryItem) == nil {
			return fmt.Errorf("%s.salary_item: %q does not resolve to a known cash flow", path, em.SalaryItem)
		}
		if !accountNames[em.DestinationAccount] {
			return fmt.Errorf("%s.destination_account: %q does not resolve to a known account", path, em.DestinationAccount)
		}
	}

	if input.Settings.Mode == domain.ModeMonteCarlo {
		if input.Settings.MonteCarloCorrelation.LessThan(decimal.NewFromInt(-1)) || input.Settings.MonteCarloCorrelation.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("$.settings.monte_carlo_correlation: must be within [-1, 1]")
		}
	}

	return nil
}

func validAccountKind(k domain.AccountKind) bool {
	switch k {
	case domain.KindCash, domain.KindTaxableBrokerage, domain.Kind401k, domain.KindTraditionalIRA,
		domain.KindRothIRA, domain.KindHSA, domain.Kind529, domain.KindOther:
		return true
	default:
		return false
	}
}

func findAccount(accounts []domain.Account, name string) *domain.Account {
	for i := range accounts {
		if accounts[i].Name == name {
			return &accounts[i]
		}
	}
	return nil
}

func findAsset(assets []domain.RealAsset, name string) *domain.RealAsset {
	for i := range assets {
		if assets[i].Name == name {
			return &assets[i]
		}
	}
	return nil
}

func findCashFlow(items []domain.CashFlowItem, name string) *domain.CashFlowItem {
	for i := range items {
		if items[i].Name == name {
			return &items[i]
		}
	}
	return nil
}
