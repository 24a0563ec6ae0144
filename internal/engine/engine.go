// Package engine implements the 21-step monthly pipeline that advances a
// PlanState by one calendar month, plus the December year-boundary
// settlement.
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/timmydo/tfp/internal/domain"
	"github.com/timmydo/tfp/internal/regulatory"
	"github.com/timmydo/tfp/internal/sequencing"
	"github.com/timmydo/tfp/internal/taxes"
)

// Engine owns the month pipeline and the annual settlement for one run. Apart
// from the year-end balance snapshot it keeps for RMDs, all mutation happens
// on the *domain.PlanState passed to each call.
type Engine struct {
	Input     *domain.PlanInput
	Tables    *regulatory.Tables
	TaxEngine *taxes.Engine
	Strategy  sequencing.SequencingStrategy

	// priorYearEndBalances supports RMD computation; keyed by account name,
	// refreshed every December after the growth/dividend/fee steps.
	priorYearEndBalances map[string]decimal.Decimal
}

// New returns an engine for the given validated plan and regulatory tables.
func New(input *domain.PlanInput, tables *regulatory.Tables) *Engine {
	return &Engine{
		Input:                input,
		Tables:               tables,
		TaxEngine:            taxes.New(tables),
		Strategy:             sequencing.NewOrderedStrategy(),
		priorYearEndBalances: map[string]decimal.Decimal{},
	}
}

func cashAccountName(input *domain.PlanInput) string {
	for _, a := range input.Accounts {
		if a.Kind == domain.KindCash {
			return a.Name
		}
	}
	return ""
}

// AdvanceMonth runs steps 1-21 of the monthly pipeline and returns the
// resulting MonthResult. It mutates state in place.
func (e *Engine) AdvanceMonth(state *domain.PlanState, monthlyFactors map[string]decimal.Decimal) (domain.MonthResult, error) {
	result := domain.NewMonthResult(state.Cursor)
	cashName := cashAccountName(e.Input)
	cash := state.AccountNamed(cashName)
	if cash == nil {
		return result, fmt.Errorf("plan has no cash account")
	}

	// Step 1: ages are implicit via state.People[i].AgeInMonths(state.Cursor);
	// nothing to mutate here since Person.BirthDate is immutable.

	// Step 2: income collection.
	e.collectIncome(state, &result, cash)

	// Step 3: payroll taxes.
	e.payrollTaxes(state, &result, cash)

	// Step 4: income-tax withholding.
	e.withholding(state, &result, cash)

	// Step 5: payroll-sourced contributions.
	e.payrollContributions(state, &result)

	// Step 6: employer match.
	e.employerMatch(state, &result)

	// Step 7: other (non-payroll) contributions.
	e.otherContributions(state, &result, cash)

	// Step 8: recurring transfers.
	e.transfers(state, &result)

	// Step 9: Roth conversions.
	if err := e.rothConversions(state, &result); err != nil {
		return result, err
	}

	// Step 10: RMDs (December only).
	if state.Cursor.Month == 12 {
		if err := e.rmds(state, &result); err != nil {
			return result, err
		}
	}

	// Step 11: account growth.
	e.growth(state, monthlyFactors)

	// Step 12: dividends.
	e.dividends(state, &result)

	// Step 13: fees.
	e.fees(state)

	if state.Cursor.Month == 12 {
		for name, a := range state.Accounts {
			e.priorYearEndBalances[name] = a.Balance
		}
	}

	// Step 14: real assets.
	e.realAssets(state, &result)

	// Step 15: transactions.
	if err := e.transactions(state, &result, cash); err != nil {
		return result, err
	}

	// Step 16: healthcare costs.
	e.healthcareCosts(state, &result)

	// Step 17: non-healthcare expenses.
	essential, discretionary := e.nonHealthcareExpenses(state)
	result.ExpensesByCategory[domain.SpendingEssential] = result.ExpensesByCategory[domain.SpendingEssential].Add(essential)
	result.ExpensesByCategory[domain.SpendingDiscretionary] = result.ExpensesByCategory[domain.SpendingDiscretionary].Add(discretionary)
	totalOutflow := result.HealthcareCost.Add(essential).Add(discretionary)

	// Step 18: shortfall and withdrawals.
	e.shortfallAndWithdrawals(state, &result, cash, totalOutflow)

	// Step 19: expenses are paid from cash.
	cash.Balance = cash.Balance.Sub(totalOutflow)
	if cash.Balance.LessThan(decimal.Zero) {
		result.UnpaidShortfall = result.UnpaidShortfall.Add(cash.Balance.Neg())
		result.Insolvent = true
		cash.Balance = decimal.Zero
	}

	// Step 20: cost basis updates happen inline in the steps that move
	// money (contributions, dividends, withdrawals, sales) via costbasis.*.

	if result.Insolvent {
		state.Insolvent = true
		state.InsolventMonths = append(state.InsolventMonths, state.Cursor)
	}

	// Step 21: recording.
	for name, a := range state.Accounts {
		result.EndingAccountBalances[name] = a.Balance
	}
	result.EndingCash = cash.Balance
	return result, nil
}
