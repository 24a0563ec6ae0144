// Package regulatory loads and extrapolates the bracketed tax, FICA, Social
// Security, Medicare/IRMAA, and RMD data. Tables are bundled as YAML for one
// or more explicit years and extrapolated by inflation beyond the last
// bundled year.
package regulatory

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/timmydo/tfp/internal/domain"
)

// TaxBracket is one marginal-rate band, inclusive of Min and exclusive of Max.
// A zero Max means "and above."
type TaxBracket struct {
	Min  decimal.Decimal `yaml:"min"`
	Max  decimal.Decimal `yaml:"max"`
	Rate decimal.Decimal `yaml:"rate"`
}

// StandardDeductions holds the standard deduction by filing status.
type StandardDeductions struct {
	Single               decimal.Decimal `yaml:"single"`
	MarriedFilingJointly decimal.Decimal `yaml:"mfj"`
	MarriedFilingSeparately decimal.Decimal `yaml:"mfs"`
	HeadOfHousehold      decimal.Decimal `yaml:"hoh"`
	QualifyingSurvivingSpouse decimal.Decimal `yaml:"qss"`
}

// ByFilingStatus returns the deduction for fs.
func (s StandardDeductions) ByFilingStatus(fs domain.FilingStatus) decimal.Decimal {
	switch fs {
	case domain.MarriedFilingJointly:
		return s.MarriedFilingJointly
	case domain.MarriedFilingSeparately:
		return s.MarriedFilingSeparately
	case domain.HeadOfHousehold:
		return s.HeadOfHousehold
	case domain.QualifyingSurvivingSpouse:
		return s.QualifyingSurvivingSpouse
	default:
		return s.Single
	}
}

// BracketSet holds the federal ordinary brackets for every filing status for
// one tax year.
type BracketSet struct {
	Single               []TaxBracket `yaml:"single"`
	MarriedFilingJointly []TaxBracket `yaml:"mfj"`
	MarriedFilingSeparately []TaxBracket `yaml:"mfs"`
	HeadOfHousehold      []TaxBracket `yaml:"hoh"`
	QualifyingSurvivingSpouse []TaxBracket `yaml:"qss"`
}

// ByFilingStatus returns the bracket schedule for fs.
func (b BracketSet) ByFilingStatus(fs domain.FilingStatus) []TaxBracket {
	switch fs {
	case domain.MarriedFilingJointly:
		return b.MarriedFilingJointly
	case domain.MarriedFilingSeparately:
		return b.MarriedFilingSeparately
	case domain.HeadOfHousehold:
		return b.HeadOfHousehold
	case domain.QualifyingSurvivingSpouse:
		return b.QualifyingSurvivingSpouse
	default:
		return b.Single
	}
}

// FICARules holds payroll-tax rates and the Social-Security wage base.
type FICARules struct {
	SocialSecurityRate     decimal.Decimal `yaml:"social_security_rate"`
	SocialSecurityWageBase decimal.Decimal `yaml:"social_security_wage_base"`
	MedicareRate           decimal.Decimal `yaml:"medicare_rate"`
	AdditionalMedicareRate decimal.Decimal `yaml:"additional_medicare_rate"`
	AdditionalMedicareThresholdMFJ decimal.Decimal `yaml:"additional_medicare_threshold_mfj"`
	AdditionalMedicareThresholdOther decimal.Decimal `yaml:"additional_medicare_threshold_other"`
	SelfEmploymentRate     decimal.Decimal `yaml:"self_employment_rate"`
}

// ThresholdPair is the two-threshold shape used by Social Security taxation
// and NIIT, keyed by filing status group.
type ThresholdPair struct {
	Threshold1 decimal.Decimal `yaml:"threshold_1"`
	Threshold2 decimal.Decimal `yaml:"threshold_2"`
}

// SSTaxationThresholds holds the combined-income thresholds by filing status.
type SSTaxationThresholds struct {
	MarriedFilingJointly ThresholdPair `yaml:"mfj"`
	Single               ThresholdPair `yaml:"single"`
}

// EarlyRetirementRates holds the SS early-claiming reduction rates.
type EarlyRetirementRates struct {
	First36MonthsRate    decimal.Decimal `yaml:"first_36_months_rate"`
	AdditionalMonthsRate decimal.Decimal `yaml:"additional_months_rate"`
}

// SocialSecurityRules bundles SS taxation and benefit-adjustment rates.
type SocialSecurityRules struct {
	TaxationThresholds SSTaxationThresholds `yaml:"taxation_thresholds"`
	EarlyRetirement     EarlyRetirementRates `yaml:"early_retirement_reduction"`
	DelayedRetirementCreditMonthly decimal.Decimal `yaml:"delayed_retirement_credit_monthly"`
}

// IRMAATier is one Part B/D surcharge bracket.
type IRMAATier struct {
	IncomeThresholdSingle decimal.Decimal `yaml:"income_threshold_single"`
	IncomeThresholdJoint  decimal.Decimal `yaml:"income_threshold_joint"`
	MonthlySurcharge      decimal.Decimal `yaml:"monthly_surcharge"`
}

// MedicareRules holds Part B base premium and the IRMAA tier ladder.
type MedicareRules struct {
	PartBBasePremium decimal.Decimal `yaml:"part_b_base_premium"`
	IRMAATiers       []IRMAATier     `yaml:"irmaa_tiers"`
}

// NIITRules holds Net Investment Income Tax thresholds. MFS gets its own
// (half-of-MFJ) threshold rather than collapsing onto Single,
// since the statutory MFS threshold is not simply the single figure.
type NIITRules struct {
	Rate                decimal.Decimal `yaml:"rate"`
	ThresholdMFJ        decimal.Decimal `yaml:"threshold_mfj"`
	ThresholdSingle     decimal.Decimal `yaml:"threshold_single"`
	ThresholdMFS        decimal.Decimal `yaml:"threshold_mfs"`
}

// AMTRules holds the simplified AMT parameters. MFS gets its own exemption
// and phaseout threshold, roughly half the MFJ figures rather than the
// single figures.
type AMTRules struct {
	LowRate          decimal.Decimal `yaml:"low_rate"`
	HighRate         decimal.Decimal `yaml:"high_rate"`
	RateBreakpoint   decimal.Decimal `yaml:"rate_breakpoint"`
	ExemptionMFJ     decimal.Decimal `yaml:"exemption_mfj"`
	ExemptionSingle  decimal.Decimal `yaml:"exemption_single"`
	ExemptionMFS     decimal.Decimal `yaml:"exemption_mfs"`
	PhaseoutThresholdMFJ decimal.Decimal `yaml:"phaseout_threshold_mfj"`
	PhaseoutThresholdSingle decimal.Decimal `yaml:"phaseout_threshold_single"`
	PhaseoutThresholdMFS decimal.Decimal `yaml:"phaseout_threshold_mfs"`
}

// StateRules describes one state's income-tax treatment. A flat Rate with
// no Brackets represents a single-rate or no-tax state uniformly.
type StateRules struct {
	Rate                    decimal.Decimal `yaml:"rate"`
	Brackets                []TaxBracket    `yaml:"brackets"`
	SocialSecurityExempt    bool            `yaml:"social_security_exempt"`
}

// LTCGBracket is one long-term-capital-gains bracket (0/15/20%).
type LTCGBracket = TaxBracket

// YearTables is the complete regulatory bundle for one calendar year.
type YearTables struct {
	Year                int                    `yaml:"year"`
	StandardDeduction   StandardDeductions     `yaml:"standard_deduction"`
	FederalBrackets     BracketSet             `yaml:"federal_brackets"`
	LTCGBracketsMFJ     []LTCGBracket          `yaml:"ltcg_brackets_mfj"`
	LTCGBracketsSingle  []LTCGBracket          `yaml:"ltcg_brackets_single"`
	FICA                FICARules              `yaml:"fica"`
	SocialSecurity      SocialSecurityRules    `yaml:"social_security"`
	Medicare            MedicareRules          `yaml:"medicare"`
	NIIT                NIITRules              `yaml:"niit"`
	AMT                 AMTRules               `yaml:"amt"`
	States               map[string]StateRules `yaml:"states"`
	SALTCap              decimal.Decimal       `yaml:"salt_cap"`
	UniformLifetimeDivisors map[int]decimal.Decimal `yaml:"uniform_lifetime_divisors"`
	BracketFillNames     map[string]decimal.Decimal `yaml:"bracket_fill_rates"` // "22%" -> 0.22, used to find the matching BracketSet entry
}

// Bundle holds every explicitly bundled year, sorted ascending by Year.
type Bundle struct {
	Years []YearTables `yaml:"years"`
}

// Tables is the immutable, loaded regulatory data threaded by reference
// through every component that needs it.
type Tables struct {
	bundle Bundle
}

// Load reads a YAML regulatory bundle from path.
func Load(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read regulatory bundle %s: %w", path, err)
	}
	var b Bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse regulatory bundle: %w", err)
	}
	if len(b.Years) == 0 {
		return nil, fmt.Errorf("regulatory bundle %s has no years", path)
	}
	return &Tables{bundle: b}, nil
}

// lastBundled returns the last explicitly bundled year's tables.
func (t *Tables) lastBundled() YearTables {
	last := t.bundle.Years[0]
	for _, y := range t.bundle.Years {
		if y.Year > last.Year {
			last = y
		}
	}
	return last
}

// exact returns the bundled tables for year, if present.
func (t *Tables) exact(year int) (YearTables, bool) {
	for _, y := range t.bundle.Years {
		if y.Year == year {
			return y, true
		}
	}
	return YearTables{}, false
}

// For returns the tables for year. Beyond the last bundled year it scales
// brackets, deductions, FICA wage base and Additional Medicare thresholds,
// IRMAA tiers, the Part B premium, and AMT exemptions/phaseouts by
// (1+inflationRate)^(year-lastBundledYear); Social Security taxation
// thresholds, NIIT thresholds, the SALT cap, and RMD divisors are carried
// over unscaled. A year before the first bundled year gets the last bundled
// year's tables.
func (t *Tables) For(year int, inflationRate decimal.Decimal) YearTables {
	if exact, ok := t.exact(year); ok {
		return exact
	}
	base := t.lastBundled()
	if year <= base.Year {
		return base
	}
	factor := decimal.NewFromInt(1).Add(inflationRate)
	growth := pow(factor, year-base.Year)
	return extrapolate(base, year, growth)
}

func pow(d decimal.Decimal, n int) decimal.Decimal {
	result := decimal.NewFromInt(1)
	for i := 0; i < n; i++ {
		result = result.Mul(d)
	}
	return result
}

func scaleBracket(b TaxBracket, growth decimal.Decimal) TaxBracket {
	out := b
	if !b.Min.IsZero() {
		out.Min = b.Min.Mul(growth)
	}
	if !b.Max.IsZero() {
		out.Max = b.Max.Mul(growth)
	}
	return out
}

func scaleBrackets(bs []TaxBracket, growth decimal.Decimal) []TaxBracket {
	out := make([]TaxBracket, len(bs))
	for i, b := range bs {
		out[i] = scaleBracket(b, growth)
	}
	return out
}

func extrapolate(base YearTables, year int, growth decimal.Decimal) YearTables {
	out := base
	out.Year = year
	out.StandardDeduction = StandardDeductions{
		Single:                  base.StandardDeduction.Single.Mul(growth),
		MarriedFilingJointly:    base.StandardDeduction.MarriedFilingJointly.Mul(growth),
		MarriedFilingSeparately: base.StandardDeduction.MarriedFilingSeparately.Mul(growth),
		HeadOfHousehold:         base.StandardDeduction.HeadOfHousehold.Mul(growth),
		QualifyingSurvivingSpouse: base.StandardDeduction.QualifyingSurvivingSpouse.Mul(growth),
	}
	out.FederalBrackets = BracketSet{
		Single:                  scaleBrackets(base.FederalBrackets.Single, growth),
		MarriedFilingJointly:    scaleBrackets(base.FederalBrackets.MarriedFilingJointly, growth),
		MarriedFilingSeparately: scaleBrackets(base.FederalBrackets.MarriedFilingSeparately, growth),
		HeadOfHousehold:         scaleBrackets(base.FederalBrackets.HeadOfHousehold, growth),
		QualifyingSurvivingSpouse: scaleBrackets(base.FederalBrackets.QualifyingSurvivingSpouse, growth),
	}
	out.LTCGBracketsMFJ = scaleBrackets(base.LTCGBracketsMFJ, growth)
	out.LTCGBracketsSingle = scaleBrackets(base.LTCGBracketsSingle, growth)
	out.FICA.SocialSecurityWageBase = base.FICA.SocialSecurityWageBase.Mul(growth)
	out.FICA.AdditionalMedicareThresholdMFJ = base.FICA.AdditionalMedicareThresholdMFJ.Mul(growth)
	out.FICA.AdditionalMedicareThresholdOther = base.FICA.AdditionalMedicareThresholdOther.Mul(growth)
	out.SocialSecurity.TaxationThresholds.MarriedFilingJointly = ThresholdPair{
		Threshold1: base.SocialSecurity.TaxationThresholds.MarriedFilingJointly.Threshold1,
		Threshold2: base.SocialSecurity.TaxationThresholds.MarriedFilingJointly.Threshold2,
	} // SS taxation thresholds are statutorily fixed (never inflation-indexed)
	tiers := make([]IRMAATier, len(base.Medicare.IRMAATiers))
	for i, tier := range base.Medicare.IRMAATiers {
		tiers[i] = IRMAATier{
			IncomeThresholdSingle: tier.IncomeThresholdSingle.Mul(growth),
			IncomeThresholdJoint:  tier.IncomeThresholdJoint.Mul(growth),
			MonthlySurcharge:      tier.MonthlySurcharge.Mul(growth),
		}
	}
	out.Medicare = MedicareRules{PartBBasePremium: base.Medicare.PartBBasePremium.Mul(growth), IRMAATiers: tiers}
	out.NIIT.ThresholdMFJ = base.NIIT.ThresholdMFJ
	out.NIIT.ThresholdSingle = base.NIIT.ThresholdSingle // NIIT thresholds are also statutorily fixed
	out.NIIT.ThresholdMFS = base.NIIT.ThresholdMFS
	out.AMT.ExemptionMFJ = base.AMT.ExemptionMFJ.Mul(growth)
	out.AMT.ExemptionSingle = base.AMT.ExemptionSingle.Mul(growth)
	out.AMT.ExemptionMFS = base.AMT.ExemptionMFS.Mul(growth)
	out.AMT.PhaseoutThresholdMFJ = base.AMT.PhaseoutThresholdMFJ.Mul(growth)
	out.AMT.PhaseoutThresholdSingle = base.AMT.PhaseoutThresholdSingle.Mul(growth)
	out.AMT.PhaseoutThresholdMFS = base.AMT.PhaseoutThresholdMFS.Mul(growth)
	out.SALTCap = base.SALTCap
	states := make(map[string]StateRules, len(base.States))
	for name, sr := range base.States {
		states[name] = StateRules{
			Rate:                 sr.Rate,
			Brackets:             scaleBrackets(sr.Brackets, growth),
			SocialSecurityExempt: sr.SocialSecurityExempt,
		}
	}
	out.States = states
	return out
}

// UniformLifetimeDivisor returns the RMD divisor at the given age. An age
// missing from the table uses the closest tabulated age below it, so ages
// past the last entry use the last entry.
func (y YearTables) UniformLifetimeDivisor(age int) decimal.Decimal {
	if d, ok := y.UniformLifetimeDivisors[age]; ok {
		return d
	}
	best := -1
	for a := range y.UniformLifetimeDivisors {
		if a <= age && a > best {
			best = a
		}
	}
	if best >= 0 {
		return y.UniformLifetimeDivisors[best]
	}
	return decimal.NewFromInt(1) // guarded fallback for an age below the first tabulated age
}

// BracketTop returns the upper bound of the named bracket (e.g. "22%") for
// the household's filing status, for use by Roth bracket-fill.
func (y YearTables) BracketTop(name string, fs domain.FilingStatus) (decimal.Decimal, error) {
	rate, ok := y.BracketFillNames[name]
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown bracket fill name %q", name)
	}
	for _, b := range y.FederalBrackets.ByFilingStatus(fs) {
		if b.Rate.Equal(rate) {
			return b.Max, nil
		}
	}
	return decimal.Zero, fmt.Errorf("no bracket with rate matching %q for filing status %s", name, fs)
}
