package domain

// FilingStatus is the federal/state filing status used to key tax tables.
type FilingStatus string

const (
	Single                 FilingStatus = "single"
	MarriedFilingJointly   FilingStatus = "mfj"
	MarriedFilingSeparately FilingStatus = "mfs"
	HeadOfHousehold        FilingStatus = "hoh"
	QualifyingSurvivingSpouse FilingStatus = "qss"
)

// AccountKind is the closed set of account types the engine understands.
type AccountKind string

const (
	KindCash             AccountKind = "cash"
	KindTaxableBrokerage AccountKind = "taxable_brokerage"
	Kind401k             AccountKind = "401k"
	KindTraditionalIRA   AccountKind = "traditional_ira"
	KindRothIRA          AccountKind = "roth_ira"
	KindHSA              AccountKind = "hsa"
	Kind529              AccountKind = "529"
	KindOther            AccountKind = "other"
)

// IsTaxDeferred reports whether withdrawals from this kind are ordinary income.
func (k AccountKind) IsTaxDeferred() bool {
	return k == Kind401k || k == KindTraditionalIRA
}

// Owner identifies whose account, asset, or cash-flow item this is.
type Owner string

const (
	OwnerPrimary Owner = "primary"
	OwnerSpouse  Owner = "spouse"
	OwnerJoint   Owner = "joint"
)

// Frequency describes how often a cash-flow item or transaction recurs.
type Frequency string

const (
	FrequencyMonthly  Frequency = "monthly"
	FrequencyAnnual   Frequency = "annual"
	FrequencyOneTime  Frequency = "one_time"
)

// ChangePolicy describes how a dollar amount evolves year over year.
type ChangePolicy string

const (
	ChangeFixed           ChangePolicy = "fixed"
	ChangeIncrease        ChangePolicy = "increase"
	ChangeDecrease        ChangePolicy = "decrease"
	ChangeMatchInflation  ChangePolicy = "match_inflation"
	ChangeInflationPlus   ChangePolicy = "inflation_plus"
	ChangeInflationMinus  ChangePolicy = "inflation_minus"
)

// TaxTreatment classifies how a dollar flow is taxed.
type TaxTreatment string

const (
	TaxFree      TaxTreatment = "tax_free"
	TaxIncome    TaxTreatment = "income"
	TaxCapGains  TaxTreatment = "capital_gains"
)

// SpendingType classifies an expense for reporting purposes.
type SpendingType string

const (
	SpendingEssential     SpendingType = "essential"
	SpendingDiscretionary SpendingType = "discretionary"
)

// TaxHandling describes how an income item interacts with withholding.
type TaxHandling string

const (
	TaxHandlingNone     TaxHandling = "none"
	TaxHandlingWithhold TaxHandling = "withhold"
)

// IncomeCategory distinguishes wage income (FICA-subject) from other income.
type IncomeCategory string

const (
	IncomeWages          IncomeCategory = "wages"
	IncomeSelfEmployment IncomeCategory = "self_employment"
	IncomeSocialSecurity IncomeCategory = "social_security"
	IncomeOther          IncomeCategory = "other"
)

// SimulationMode selects which return-generation strategy the orchestrator runs.
type SimulationMode string

const (
	ModeDeterministic SimulationMode = "deterministic"
	ModeMonteCarlo     SimulationMode = "monte_carlo"
	ModeHistorical     SimulationMode = "historical"
)
