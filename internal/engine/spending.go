package engine

import (
	"github.com/shopspring/decimal"

	"github.com/timmydo/tfp/internal/domain"
	"github.com/timmydo/tfp/internal/healthcare"
	"github.com/timmydo/tfp/internal/sequencing"
)

// healthcareCosts implements step 16: each person's premium/out-of-pocket
// cost, switching to Medicare Part B/D plus an IRMAA surcharge keyed off a
// MAGI several years back, once they reach their configured Medicare start
// month.
func (e *Engine) healthcareCosts(state *domain.PlanState, result *domain.MonthResult) {
	isMFJ := e.Input.Settings.FilingStatus == domain.MarriedFilingJointly
	yt := e.Tables.For(state.Cursor.Year, e.Input.Settings.InflationRate)
	lookbackYears := e.Input.Settings.IRMAALookbackYears
	if lookbackYears <= 0 {
		lookbackYears = 2
	}

	for _, plan := range e.Input.HealthPlans {
		person := state.PersonByOwner(plan.Owner)
		if person == nil {
			continue
		}
		isMedicareEligible := !state.Cursor.Before(person.MedicareStart)
		magiLookback := state.MAGILookback(state.Cursor.Year, lookbackYears)

		cost, irmaa := healthcare.MonthlyCost(plan, person.AgeInYears(state.Cursor), isMedicareEligible, magiLookback, isMFJ, yt)
		result.HealthcareCost = result.HealthcareCost.Add(cost)
		result.IRMAASurcharge = result.IRMAASurcharge.Add(irmaa)
	}
}

// nonHealthcareExpenses implements step 17: every active expense item,
// split into essential and discretionary totals for reporting.
func (e *Engine) nonHealthcareExpenses(state *domain.PlanState) (essential, discretionary decimal.Decimal) {
	for _, item := range e.Input.CashFlows {
		if item.Kind != "expense" || !item.Active(state.Cursor) {
			continue
		}
		amount := item.MonthlyAmount(state.Cursor, e.Input.Settings.InflationRate)
		switch item.SpendingType {
		case domain.SpendingDiscretionary:
			discretionary = discretionary.Add(amount)
		default:
			essential = essential.Add(amount)
		}
	}
	return essential, discretionary
}

// shortfallAndWithdrawals implements step 18: when projected outflow
// exceeds cash on hand, drain the configured account order via the
// withdrawal-sequencing strategy to cover the gap.
func (e *Engine) shortfallAndWithdrawals(state *domain.PlanState, result *domain.MonthResult, cash *domain.Account, totalOutflow decimal.Decimal) {
	shortfall := totalOutflow.Sub(cash.Balance)
	if shortfall.LessThanOrEqual(decimal.Zero) {
		return
	}

	ageMonths := map[domain.Owner]int{}
	for _, p := range state.People {
		ageMonths[p.Owner] = p.AgeInMonths(state.Cursor)
	}

	ordered := orderedAccounts(state, e.Input.Withdrawals)
	sources := sequencing.BuildSources(ordered, ageMonths)
	plan := e.Strategy.Plan(sources, sequencing.StrategyContext{NeedAmount: shortfall})

	for _, alloc := range plan.Allocations {
		a := state.AccountNamed(alloc.Source)
		if a == nil {
			continue
		}
		a.Balance = a.Balance.Sub(alloc.Gross)
		if a.Kind == domain.KindTaxableBrokerage && a.CostBasis != nil {
			// alloc already split Gross into a gain (CapitalGainsPortion) and a
			// basis return (TaxFreePortion) via the same average-basis ratio;
			// reduce basis by the basis-return portion, not by Gross.
			*a.CostBasis = decimal.Max(decimal.Zero, a.CostBasis.Sub(alloc.TaxFreePortion))
		}
		state.YTD.OrdinaryIncome = state.YTD.OrdinaryIncome.Add(alloc.OrdinaryPortion)
		state.YTD.LongTermGains = state.YTD.LongTermGains.Add(alloc.CapitalGainsPortion)
		state.YTD.EarlyWithdrawalPenalty = state.YTD.EarlyWithdrawalPenalty.Add(alloc.Penalty)

		cash.Balance = cash.Balance.Add(alloc.Gross)
		result.Withdrawals = append(result.Withdrawals, domain.WithdrawalEntry{
			Account:             alloc.Source,
			Gross:               alloc.Gross,
			OrdinaryPortion:     alloc.OrdinaryPortion,
			CapitalGainsPortion: alloc.CapitalGainsPortion,
			TaxFreePortion:      alloc.TaxFreePortion,
			EarlyPenalty:        alloc.Penalty,
		})
	}
}

// orderedAccounts returns the non-cash accounts in the configured drain
// order: by explicit account-name sequence, or by account-kind sequence
// (every account of the first kind, then the second,...), falling back to
// map iteration order for any account named/kinded outside the configured
// sequence.
func orderedAccounts(state *domain.PlanState, order domain.WithdrawalOrder) []*domain.Account {
	seen := map[string]bool{}
	out := []*domain.Account{}

	add := func(a *domain.Account) {
		if a.Kind == domain.KindCash || seen[a.Name] {
			return
		}
		seen[a.Name] = true
		out = append(out, a)
	}

	if order.UseAccountSpecific {
		for _, name := range order.AccountOrder {
			if a := state.AccountNamed(name); a != nil {
				add(a)
			}
		}
	} else {
		for _, kind := range order.KindOrder {
			for _, a := range state.Accounts {
				if a.Kind == kind {
					add(a)
				}
			}
		}
	}

	for _, a := range state.Accounts {
		add(a)
	}
	return out
}
