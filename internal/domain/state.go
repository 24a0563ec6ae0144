package domain

import "github.com/shopspring/decimal"

// YTDAccumulators are the year-to-date totals the monthly engine threads
// through December settlement.
type YTDAccumulators struct {
	WagesByPerson         map[string]decimal.Decimal // for FICA wage-base tracking
	OrdinaryIncome        decimal.Decimal
	LongTermGains         decimal.Decimal
	InvestmentIncome      decimal.Decimal
	RothConversionIncome  decimal.Decimal
	SocialSecurityIncome  decimal.Decimal // gross SS received, taxed at settlement via the combined-income rule
	EarlyWithdrawalPenalty decimal.Decimal
	TaxWithheld           decimal.Decimal
	FICAWithheld          decimal.Decimal
	SALTPaid              decimal.Decimal
	MortgageInterestPaid  decimal.Decimal
	CharitableContributions decimal.Decimal
}

// NewYTDAccumulators returns a zeroed accumulator set.
func NewYTDAccumulators() YTDAccumulators {
	return YTDAccumulators{
		WagesByPerson:  map[string]decimal.Decimal{},
		OrdinaryIncome: decimal.Zero,
		LongTermGains:  decimal.Zero,
	}
}

// Reset zeroes every accumulator in place, as happens at year boundary.
func (y *YTDAccumulators) Reset() {
	*y = NewYTDAccumulators()
}

// PlanState is the single mutable record the engine advances one month at a
// time. One run owns exactly one PlanState for its duration.
type PlanState struct {
	Cursor       YearMonth
	Cash         decimal.Decimal // not maintained by the engine; the cash balance lives on the cash account in Accounts
	Accounts     map[string]*Account
	RealAssets   []*RealAsset
	People       []Person
	YTD          YTDAccumulators
	MAGIHistory  map[int]decimal.Decimal // calendar year -> MAGI, for IRMAA lookback
	Insolvent    bool
	InsolventMonths []YearMonth
	RothScheduleState map[string]decimal.Decimal // schedule name -> cumulative converted this year, reserved for future use
}

// NewPlanState builds the initial mutable state from a validated plan input.
func NewPlanState(input *PlanInput) *PlanState {
	accounts := make(map[string]*Account, len(input.Accounts))
	for i := range input.Accounts {
		a := input.Accounts[i]
		if a.CostBasis != nil {
			basis := *a.CostBasis
			a.CostBasis = &basis
		}
		accounts[a.Name] = &a
	}
	assets := make([]*RealAsset, len(input.RealAssets))
	for i := range input.RealAssets {
		ra := input.RealAssets[i]
		if ra.Mortgage != nil {
			m := *ra.Mortgage
			ra.Mortgage = &m
		}
		assets[i] = &ra
	}
	return &PlanState{
		Cursor:      input.Settings.PlanStart,
		Accounts:    accounts,
		RealAssets:  assets,
		People:      input.People,
		YTD:         NewYTDAccumulators(),
		MAGIHistory: map[int]decimal.Decimal{},
	}
}

// AccountNamed returns the account with the given name, or nil.
func (s *PlanState) AccountNamed(name string) *Account {
	return s.Accounts[name]
}

// TotalBalance sums the balances of the named accounts.
func (s *PlanState) TotalBalance(names []string) decimal.Decimal {
	total := decimal.Zero
	for _, n := range names {
		if a := s.Accounts[n]; a != nil {
			total = total.Add(a.Balance)
		}
	}
	return total
}

// PersonByOwner returns the person with the given owner tag, or nil.
func (s *PlanState) PersonByOwner(o Owner) *Person {
	for i := range s.People {
		if s.People[i].Owner == o {
			return &s.People[i]
		}
	}
	return nil
}

// MAGILookback returns the MAGI recorded lookbackYears before the given
// calendar year, or zero if not yet recorded (early in the horizon).
func (s *PlanState) MAGILookback(year, lookbackYears int) decimal.Decimal {
	if v, ok := s.MAGIHistory[year-lookbackYears]; ok {
		return v
	}
	return decimal.Zero
}
