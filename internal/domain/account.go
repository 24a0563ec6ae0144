package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// Account is a financial account, identified by its unique Name.
type Account struct {
	Name              string          `yaml:"name"`
	Kind              AccountKind     `yaml:"kind"`
	Owner             Owner           `yaml:"owner"`
	Balance           decimal.Decimal `yaml:"balance"`
	GrowthRate        decimal.Decimal `yaml:"growth_rate"`   // annual
	DividendRate      decimal.Decimal `yaml:"dividend_rate,omitempty"` // annual
	FeeRate           decimal.Decimal `yaml:"fee_rate,omitempty"`    // annual
	BondAllocationPct decimal.Decimal `yaml:"bond_allocation_pct,omitempty"` // 0-100
	AllowWithdrawals  bool            `yaml:"allow_withdrawals"`
	DividendReinvested bool           `yaml:"dividend_reinvested,omitempty"`
	DividendTaxTreatment TaxTreatment `yaml:"dividend_tax_treatment,omitempty"` // defaults to plan settings when unset

	// CostBasis is present iff Kind == KindTaxableBrokerage.
	CostBasis *decimal.Decimal `yaml:"cost_basis,omitempty"`
}

// MonthlyGrowthFactor converts an annual rate to the equivalent monthly
// geometric factor: (1+annual)^(1/12) - 1.
func MonthlyGrowthFactor(annualRate decimal.Decimal) decimal.Decimal {
	// decimal has no general Pow(1/12); use float64 for the root only,
	// then convert back. This mirrors how monthly factors are derived
	// from annual Monte-Carlo/historical draws elsewhere in the engine.
	f, _ := annualRate.Float64()
	monthly := math.Pow(1+f, 1.0/12.0) - 1
	return decimal.NewFromFloatWithExponent(monthly, -12)
}

// HealthcarePlan configures one person's healthcare cost stream.
type HealthcarePlan struct {
	Owner              Owner           `yaml:"owner"`
	PreMedicarePremium decimal.Decimal `yaml:"pre_medicare_premium,omitempty"` // monthly
	AnnualOutOfPocket  decimal.Decimal `yaml:"annual_out_of_pocket,omitempty"`
	PartBPremium       decimal.Decimal `yaml:"part_b_premium,omitempty"` // monthly base, before IRMAA
	SupplementPremium  decimal.Decimal `yaml:"supplement_premium,omitempty"` // monthly
	PartDPremium       decimal.Decimal `yaml:"part_d_premium,omitempty"` // monthly
	ChangePolicy       ChangePolicy    `yaml:"change_policy,omitempty"`
	ChangeRate         decimal.Decimal `yaml:"change_rate,omitempty"`
}
