package engine

import (
	"github.com/shopspring/decimal"

	"github.com/timmydo/tfp/internal/costbasis"
	"github.com/timmydo/tfp/internal/domain"
	"github.com/timmydo/tfp/internal/rmd"
	"github.com/timmydo/tfp/internal/rothconversion"
)

// rothConversions implements step 9: fixed-schedule conversions run every
// active month; fill-to-bracket schedules only run in December, once the
// year's ordinary income is otherwise settled.
func (e *Engine) rothConversions(state *domain.PlanState, result *domain.MonthResult) error {
	for _, sched := range e.Input.RothSchedules {
		if !schedActive(sched, state.Cursor) {
			continue
		}
		src := state.AccountNamed(sched.SourceAccount)
		dest := state.AccountNamed(sched.DestinationAccount)
		if src == nil || dest == nil {
			continue
		}

		var amount decimal.Decimal
		if sched.Fixed {
			amount = rothconversion.FixedMonthlyAmount(sched, src.Balance)
		} else {
			if state.Cursor.Month != 12 {
				continue
			}
			yt := e.Tables.For(state.Cursor.Year, e.Input.Settings.InflationRate)
			var err error
			amount, err = rothconversion.BracketFillAmount(sched, state.YTD.OrdinaryIncome, src.Balance, e.Input.Settings.FilingStatus, yt)
			if err != nil {
				return err
			}
		}
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		src.Balance = src.Balance.Sub(amount)
		dest.Balance = dest.Balance.Add(amount)
		if dest.CostBasis != nil {
			*dest.CostBasis = costbasis.Contribute(*dest.CostBasis, amount)
		}
		state.YTD.OrdinaryIncome = state.YTD.OrdinaryIncome.Add(amount)
		state.YTD.RothConversionIncome = state.YTD.RothConversionIncome.Add(amount)
		result.ConversionLegs = append(result.ConversionLegs, domain.FlowEntry{Name: sched.Name, Amount: amount})
	}
	return nil
}

func schedActive(sched domain.RothConversionSchedule, cursor domain.YearMonth) bool {
	if cursor.Before(sched.StartDate) {
		return false
	}
	if sched.EndDate != (domain.YearMonth{}) && cursor.After(sched.EndDate) {
		return false
	}
	return true
}

// rmds implements step 10: required minimum distributions computed off the
// prior calendar year-end aggregate balance and distributed pro rata, run
// only in December.
func (e *Engine) rmds(state *domain.PlanState, result *domain.MonthResult) error {
	for _, cfg := range e.Input.RMDs {
		owner := state.PersonByOwner(cfg.Owner)
		if owner == nil || !rmd.Due(*owner, state.Cursor.Year) {
			continue
		}

		balances := map[string]decimal.Decimal{}
		aggregate := decimal.Zero
		for _, name := range cfg.Accounts {
			bal := e.priorYearEndBalances[name]
			balances[name] = bal
			aggregate = aggregate.Add(bal)
		}
		if aggregate.LessThanOrEqual(decimal.Zero) {
			continue
		}

		ageAtYearEnd := state.Cursor.Year - owner.BirthDate.Year
		yt := e.Tables.For(state.Cursor.Year, e.Input.Settings.InflationRate)
		_, dists := rmd.Compute(aggregate, ageAtYearEnd, balances, yt)

		dest := state.AccountNamed(cfg.DestinationAccount)
		for _, d := range dists {
			src := state.AccountNamed(d.Account)
			if src == nil {
				continue
			}
			withdrawn := decimal.Min(d.Amount, src.Balance)
			src.Balance = src.Balance.Sub(withdrawn)
			if dest != nil {
				dest.Balance = dest.Balance.Add(withdrawn)
				if dest.CostBasis != nil {
					*dest.CostBasis = costbasis.Contribute(*dest.CostBasis, withdrawn)
				}
			}
			state.YTD.OrdinaryIncome = state.YTD.OrdinaryIncome.Add(withdrawn)
			result.RMDs = append(result.RMDs, domain.RMDEntry{Owner: cfg.Owner, Account: d.Account, Amount: withdrawn})
		}
	}
	return nil
}
