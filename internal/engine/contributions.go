package engine

import (
	"github.com/shopspring/decimal"

	"github.com/timmydo/tfp/internal/costbasis"
	"github.com/timmydo/tfp/internal/domain"
)

// payrollContributions implements step 5: pre-tax payroll-sourced
// contributions (SourceAccount == "income") are deducted from the cash
// already credited in step 2 and reduce YTD ordinary income, since they
// never left the paycheck as taxable wages.
func (e *Engine) payrollContributions(state *domain.PlanState, result *domain.MonthResult) {
	for _, item := range e.Input.CashFlows {
		if item.Kind != "contribution" || item.SourceAccount != "income" || !item.Active(state.Cursor) {
			continue
		}
		amount := item.MonthlyAmount(state.Cursor, e.Input.Settings.InflationRate)
		if amount.IsZero() {
			continue
		}
		dest := state.AccountNamed(item.DestinationAccount)
		if dest == nil {
			continue
		}
		cash := state.AccountNamed(cashAccountName(e.Input))
		cash.Balance = cash.Balance.Sub(amount)
		dest.Balance = dest.Balance.Add(amount)
		if dest.Kind == domain.KindTaxableBrokerage && dest.CostBasis != nil {
			*dest.CostBasis = costbasis.Contribute(*dest.CostBasis, amount)
		}
		state.YTD.OrdinaryIncome = state.YTD.OrdinaryIncome.Sub(amount)
		result.Contributions = append(result.Contributions, domain.FlowEntry{Name: item.Name, Amount: amount})
	}
}

// employerMatch implements step 6: match = min(employee_contribution,
// salary*up_to_percent_of_salary) * match_percent, credited directly to the
// destination account with no cash leg.
func (e *Engine) employerMatch(state *domain.PlanState, result *domain.MonthResult) {
	for _, m := range e.Input.EmployerMatches {
		contribItem := findCashFlow(e.Input.CashFlows, m.EmployeeContributionItem)
		salaryItem := findCashFlow(e.Input.CashFlows, m.SalaryItem)
		if contribItem == nil || salaryItem == nil || !contribItem.Active(state.Cursor) {
			continue
		}
		contribution := contribItem.MonthlyAmount(state.Cursor, e.Input.Settings.InflationRate)
		salary := salaryItem.MonthlyAmount(state.Cursor, e.Input.Settings.InflationRate)
		cap := salary.Mul(m.UpToPercentOfSalary).Div(decimal.NewFromInt(100))
		matchable := decimal.Min(contribution, cap)
		match := matchable.Mul(m.MatchPercent).Div(decimal.NewFromInt(100))
		if match.LessThanOrEqual(decimal.Zero) {
			continue
		}
		dest := state.AccountNamed(m.DestinationAccount)
		if dest == nil {
			continue
		}
		dest.Balance = dest.Balance.Add(match)
		result.EmployerMatches = append(result.EmployerMatches, domain.FlowEntry{Name: m.Name, Amount: match})
	}
}

func findCashFlow(items []domain.CashFlowItem, name string) *domain.CashFlowItem {
	for i := range items {
		if items[i].Name == name {
			return &items[i]
		}
	}
	return nil
}

// otherContributions implements step 7: post-tax contributions from cash
// into an account (e.g. a Roth IRA contribution), which do not affect YTD
// ordinary income.
func (e *Engine) otherContributions(state *domain.PlanState, result *domain.MonthResult, cash *domain.Account) {
	for _, item := range e.Input.CashFlows {
		if item.Kind != "contribution" || item.SourceAccount == "income" || !item.Active(state.Cursor) {
			continue
		}
		amount := item.MonthlyAmount(state.Cursor, e.Input.Settings.InflationRate)
		if amount.IsZero() {
			continue
		}
		dest := state.AccountNamed(item.DestinationAccount)
		if dest == nil {
			continue
		}
		cash.Balance = cash.Balance.Sub(amount)
		dest.Balance = dest.Balance.Add(amount)
		if dest.CostBasis != nil {
			*dest.CostBasis = costbasis.Contribute(*dest.CostBasis, amount)
		}
		result.Contributions = append(result.Contributions, domain.FlowEntry{Name: item.Name, Amount: amount})
	}
}

// transfers implements step 8: recurring account-to-account moves that are
// neither income, expense, nor contribution, e.g. a monthly cash sweep into
// a brokerage account.
func (e *Engine) transfers(state *domain.PlanState, result *domain.MonthResult) {
	for _, item := range e.Input.CashFlows {
		if item.Kind != "transfer" || !item.Active(state.Cursor) {
			continue
		}
		amount := item.MonthlyAmount(state.Cursor, e.Input.Settings.InflationRate)
		if amount.IsZero() {
			continue
		}
		src := state.AccountNamed(item.SourceAccount)
		dest := state.AccountNamed(item.DestinationAccount)
		if src == nil || dest == nil {
			continue
		}
		moved := decimal.Min(amount, src.Balance)
		src.Balance = src.Balance.Sub(moved)
		dest.Balance = dest.Balance.Add(moved)
		if dest.CostBasis != nil {
			*dest.CostBasis = costbasis.Contribute(*dest.CostBasis, moved)
		}
		result.TransferLegs = append(result.TransferLegs, domain.FlowEntry{Name: item.Name, Amount: moved})
	}
}
