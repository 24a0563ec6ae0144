package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// YearMonth is a calendar year+month with no day-of-month component.
type YearMonth struct {
	Year  int
	Month int
}

// Before reports whether ym occurs strictly before other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// After reports whether ym occurs strictly after other.
func (ym YearMonth) After(other YearMonth) bool { return other.Before(ym) }

// AddMonths returns ym shifted by n months (n may be negative).
func (ym YearMonth) AddMonths(n int) YearMonth {
	total := ym.Year*12 + (ym.Month - 1) + n
	return YearMonth{Year: total / 12, Month: total%12 + 1}
}

// FromTime converts a time.Time to a YearMonth, ignoring day/time-of-day.
func FromTime(t time.Time) YearMonth { return YearMonth{Year: t.Year(), Month: int(t.Month())} }

// String renders ym as "YYYY-MM".
func (ym YearMonth) String() string { return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month) }

// MarshalYAML renders ym as a "YYYY-MM" scalar.
func (ym YearMonth) MarshalYAML() (interface{}, error) { return ym.String(), nil }

// UnmarshalYAML parses a "YYYY-MM" scalar into ym.
func (ym *YearMonth) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		*ym = YearMonth{}
		return nil
	}
	var year, month int
	if _, err := fmt.Sscanf(s, "%d-%d", &year, &month); err != nil {
		return fmt.Errorf("invalid year-month %q: %w", s, err)
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("invalid year-month %q: month out of range", s)
	}
	*ym = YearMonth{Year: year, Month: month}
	return nil
}

// Person is a household member the engine ages and pays benefits to.
type Person struct {
	Name          string          `yaml:"name"`
	Owner         Owner           `yaml:"owner"`
	BirthDate     YearMonth       `yaml:"birth_date"`
	SSPIA         decimal.Decimal `yaml:"ss_pia"` // primary insurance amount at full retirement age
	SSClaimAge    decimal.Decimal `yaml:"ss_claim_age"` // claiming age in years, may be fractional (e.g. 67.5)
	RMDStartAge   int             `yaml:"rmd_start_age"`
	MedicareStart YearMonth       `yaml:"medicare_start_date"`
}

// AgeInMonths returns the person's age in whole months at the given cursor.
func (p Person) AgeInMonths(cursor YearMonth) int {
	return (cursor.Year*12 + cursor.Month) - (p.BirthDate.Year*12 + p.BirthDate.Month)
}

// AgeInYears returns the person's age in whole years at the given cursor.
func (p Person) AgeInYears(cursor YearMonth) int { return p.AgeInMonths(cursor) / 12 }

// Mortgage is the amortizing liability tied to a RealAsset.
type Mortgage struct {
	Payment          decimal.Decimal `yaml:"payment"`
	RemainingBalance decimal.Decimal `yaml:"remaining_balance"`
	AnnualRate       decimal.Decimal `yaml:"annual_rate"`
	EndDate          YearMonth       `yaml:"end_date"`
}

// MaintenanceItem is a recurring upkeep cost on a RealAsset.
type MaintenanceItem struct {
	Name         string          `yaml:"name"`
	AnnualAmount decimal.Decimal `yaml:"annual_amount"`
	ChangePolicy ChangePolicy    `yaml:"change_policy"`
	ChangeRate   decimal.Decimal `yaml:"change_rate"`
}

// RealAsset is a non-financial asset such as a home, tracked for
// appreciation, mortgage amortization, property tax, and eventual sale.
type RealAsset struct {
	Name             string            `yaml:"name"`
	Owner            Owner             `yaml:"owner"`
	CurrentValue     decimal.Decimal   `yaml:"current_value"`
	PurchasePrice    decimal.Decimal   `yaml:"purchase_price"`
	PrimaryResidence bool              `yaml:"primary_residence"`
	ChangePolicy     ChangePolicy      `yaml:"change_policy"`
	ChangeRate       decimal.Decimal   `yaml:"change_rate"`
	PropertyTaxRate  decimal.Decimal   `yaml:"property_tax_rate"`
	Mortgage         *Mortgage         `yaml:"mortgage,omitempty"`
	Maintenance      []MaintenanceItem `yaml:"maintenance,omitempty"`
	AccruedPropertyTax decimal.Decimal `yaml:"-"`
}

// CashFlowItem is a recurring or one-time income, expense, contribution, or
// transfer. Its monthly amount is derived from StartAmount, the elapsed
// whole years since StartDate, and ChangePolicy/ChangeRate.
type CashFlowItem struct {
	Name            string          `yaml:"name"`
	Kind            string          `yaml:"kind"` // "income" | "expense" | "contribution" | "transfer"
	Owner           Owner           `yaml:"owner"`
	StartDate       YearMonth       `yaml:"start_date"`
	EndDate         YearMonth       `yaml:"end_date,omitempty"` // zero value means open-ended
	Frequency       Frequency       `yaml:"frequency"`
	StartAmount     decimal.Decimal `yaml:"start_amount"`
	ChangePolicy    ChangePolicy    `yaml:"change_policy"`
	ChangeRate      decimal.Decimal `yaml:"change_rate,omitempty"`
	TaxHandling     TaxHandling     `yaml:"tax_handling,omitempty"`
	WithholdPercent decimal.Decimal `yaml:"withhold_percent,omitempty"`
	IncomeCategory  IncomeCategory  `yaml:"income_category,omitempty"`
	SourceAccount   string          `yaml:"source_account,omitempty"` // "income" for payroll-sourced contributions
	DestinationAccount string       `yaml:"destination_account,omitempty"`
	TaxTreatment    TaxTreatment    `yaml:"tax_treatment,omitempty"`
	SpendingType    SpendingType    `yaml:"spending_type,omitempty"`
	IsSelfEmployment bool           `yaml:"is_self_employment,omitempty"`
}

// Active reports whether the item is in force during cursor.
func (c CashFlowItem) Active(cursor YearMonth) bool {
	if cursor.Before(c.StartDate) {
		return false
	}
	if c.EndDate != (YearMonth{}) && cursor.After(c.EndDate) {
		return false
	}
	return true
}

// MonthlyAmount returns the dollar amount this item contributes for cursor,
// applying ChangePolicy/ChangeRate compounded over elapsed whole years since
// StartDate, and dividing annual-frequency amounts by 12.
func (c CashFlowItem) MonthlyAmount(cursor YearMonth, inflationRate decimal.Decimal) decimal.Decimal {
	if !c.Active(cursor) {
		return decimal.Zero
	}
	elapsedYears := cursor.Year - c.StartDate.Year
	if cursor.Month < c.StartDate.Month {
		elapsedYears--
	}
	if elapsedYears < 0 {
		elapsedYears = 0
	}

	rate := decimal.Zero
	switch c.ChangePolicy {
	case ChangeFixed:
		rate = decimal.Zero
	case ChangeIncrease:
		rate = c.ChangeRate
	case ChangeDecrease:
		rate = c.ChangeRate.Neg()
	case ChangeMatchInflation:
		rate = inflationRate
	case ChangeInflationPlus:
		rate = inflationRate.Add(c.ChangeRate)
	case ChangeInflationMinus:
		rate = inflationRate.Sub(c.ChangeRate)
	}

	factor := decimal.NewFromInt(1).Add(rate)
	grown := c.StartAmount.Mul(pow(factor, elapsedYears))

	switch c.Frequency {
	case FrequencyAnnual:
		return grown.Div(decimal.NewFromInt(12))
	case FrequencyOneTime:
		if cursor == c.StartDate {
			return grown
		}
		return decimal.Zero
	default: // monthly
		return grown
	}
}

// pow raises d to a non-negative integer exponent.
func pow(d decimal.Decimal, n int) decimal.Decimal {
	result := decimal.NewFromInt(1)
	for i := 0; i < n; i++ {
		result = result.Mul(d)
	}
	return result
}

// RothConversionSchedule configures one Roth-conversion program.
type RothConversionSchedule struct {
	Name              string          `yaml:"name"`
	SourceAccount     string          `yaml:"source_account"`
	DestinationAccount string         `yaml:"destination_account"`
	Fixed             bool            `yaml:"fixed"`
	AnnualAmount      decimal.Decimal `yaml:"annual_amount,omitempty"` // used when Fixed
	BracketFillName   string          `yaml:"bracket_fill_name,omitempty"` // e.g. "22%", used when !Fixed
	StartDate         YearMonth       `yaml:"start_date"`
	EndDate           YearMonth       `yaml:"end_date,omitempty"`
}

// RMDConfig configures required-minimum-distribution sourcing for one owner.
type RMDConfig struct {
	Owner              Owner    `yaml:"owner"`
	Accounts           []string `yaml:"accounts"`
	DestinationAccount string   `yaml:"destination_account"`
	SatisfiedFirst     bool     `yaml:"rmd_satisfied_first"`
}

// WithdrawalOrder configures the account drain order used by the withdrawal
// strategy on a shortfall month.
type WithdrawalOrder struct {
	UseAccountSpecific bool          `yaml:"use_account_specific"`
	KindOrder          []AccountKind `yaml:"kind_order,omitempty"`
	AccountOrder       []string      `yaml:"account_order,omitempty"`
}

// EmployerMatchConfig computes an employer match off an employee
// contribution item each month it is active.
type EmployerMatchConfig struct {
	Name                    string          `yaml:"name"`
	EmployeeContributionItem string         `yaml:"employee_contribution_item"` // name of the CashFlowItem to match
	SalaryItem              string          `yaml:"salary_item"`  // name of the CashFlowItem providing the referenced salary
	MatchPercent            decimal.Decimal `yaml:"match_percent"`
	UpToPercentOfSalary     decimal.Decimal `yaml:"up_to_percent_of_salary"`
	DestinationAccount      string          `yaml:"destination_account"`
}

// TransactionKind is the closed set of one-time transaction types.
type TransactionKind string

const (
	TransactionSellAsset TransactionKind = "sell_asset"
	TransactionBuyAsset  TransactionKind = "buy_asset"
	TransactionTransfer  TransactionKind = "transfer"
	TransactionOther     TransactionKind = "other"
)

// Transaction is a scheduled one-time event (asset sale/purchase, transfer).
type Transaction struct {
	Name          string          `yaml:"name"`
	Kind          TransactionKind `yaml:"kind"`
	Date          YearMonth       `yaml:"date"`
	Amount        decimal.Decimal `yaml:"amount"`
	Fees          decimal.Decimal `yaml:"fees,omitempty"`
	Account       string          `yaml:"account"`
	AssetName     string          `yaml:"asset_name,omitempty"`
	PrimaryResidence bool         `yaml:"primary_residence,omitempty"`
	TaxTreatment  TaxTreatment    `yaml:"tax_treatment,omitempty"`
}

// PlanSettings holds household-wide simulation parameters.
type PlanSettings struct {
	PlanStart                    YearMonth       `yaml:"plan_start"`
	PlanEnd                      YearMonth       `yaml:"plan_end"`
	FilingStatus                 FilingStatus    `yaml:"filing_status"`
	PrimaryState                 string          `yaml:"primary_state,omitempty"`
	InflationRate                decimal.Decimal `yaml:"inflation_rate"`
	COLAAssumption                decimal.Decimal `yaml:"cola_assumption"`
	SALTCap                      decimal.Decimal `yaml:"salt_cap,omitempty"`
	NIITEnabled                  bool            `yaml:"niit_enabled"`
	AMTEnabled                   bool            `yaml:"amt_enabled"`
	DefaultDividendTaxTreatment  TaxTreatment    `yaml:"default_dividend_tax_treatment"`
	IRMAALookbackYears           int             `yaml:"irmaa_lookback_years"`
	Mode                         SimulationMode  `yaml:"mode"`
	Runs                         int             `yaml:"runs,omitempty"`
	Seed                         int64           `yaml:"seed,omitempty"`
	MonteCarloCorrelation        decimal.Decimal `yaml:"monte_carlo_correlation,omitempty"`
	MonteCarloStockMean          decimal.Decimal `yaml:"monte_carlo_stock_mean,omitempty"`
	MonteCarloStockStdDev        decimal.Decimal `yaml:"monte_carlo_stock_stddev,omitempty"`
	MonteCarloBondMean           decimal.Decimal `yaml:"monte_carlo_bond_mean,omitempty"`
	MonteCarloBondStdDev         decimal.Decimal `yaml:"monte_carlo_bond_stddev,omitempty"`
	HistoricalUseRollingPeriods  bool            `yaml:"use_rolling_periods,omitempty"`
	HistoricalHorizonYears       int             `yaml:"horizon_years,omitempty"`
}

// PlanInput is the complete, externally validated household description
// the core consumes. Validation itself happens upstream; the core
// refuses to run without one (see config.InputParser.LoadFromFile).
type PlanInput struct {
	People       []Person                 `yaml:"people"`
	Accounts     []Account                `yaml:"accounts"`
	RealAssets   []RealAsset              `yaml:"real_assets,omitempty"`
	CashFlows    []CashFlowItem           `yaml:"cash_flows,omitempty"`
	Transactions []Transaction            `yaml:"transactions,omitempty"`
	RothSchedules []RothConversionSchedule `yaml:"roth_schedules,omitempty"`
	RMDs         []RMDConfig              `yaml:"rmds,omitempty"`
	EmployerMatches []EmployerMatchConfig `yaml:"employer_matches,omitempty"`
	Withdrawals  WithdrawalOrder          `yaml:"withdrawals"`
	HealthPlans  []HealthcarePlan         `yaml:"health_plans,omitempty"`
	Settings     PlanSettings             `yaml:"settings"`
}
