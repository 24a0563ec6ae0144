package engine

import (
	"github.com/shopspring/decimal"

	"github.com/timmydo/tfp/internal/costbasis"
	"github.com/timmydo/tfp/internal/domain"
)

// growth implements step 11: each account's balance grows by the monthly
// factor the orchestrator precomputed for this year from the active return
// generator (deterministic rate or blended Monte-Carlo/historical draw).
func (e *Engine) growth(state *domain.PlanState, monthlyFactors map[string]decimal.Decimal) {
	for name, a := range state.Accounts {
		factor, ok := monthlyFactors[name]
		if !ok {
			continue
		}
		a.Balance = a.Balance.Mul(decimal.NewFromInt(1).Add(factor))
	}
}

// dividends implements step 12: the account balance grows by its
// geometric monthly dividend rate (the same annual-to-monthly conversion
// growth uses), either reinvested (raising basis on taxable accounts) or
// paid to cash, per DividendReinvested.
func (e *Engine) dividends(state *domain.PlanState, result *domain.MonthResult) {
	cash := state.AccountNamed(cashAccountName(e.Input))
	for _, a := range state.Accounts {
		if a.DividendRate.IsZero() || a.Balance.LessThanOrEqual(decimal.Zero) {
			continue
		}
		amount := a.Balance.Mul(domain.MonthlyGrowthFactor(a.DividendRate))
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		state.YTD.InvestmentIncome = state.YTD.InvestmentIncome.Add(amount)
		treatment := a.DividendTaxTreatment
		if treatment == "" {
			treatment = e.Input.Settings.DefaultDividendTaxTreatment
		}
		if treatment == domain.TaxIncome {
			state.YTD.OrdinaryIncome = state.YTD.OrdinaryIncome.Add(amount)
		} else if treatment == domain.TaxCapGains {
			state.YTD.LongTermGains = state.YTD.LongTermGains.Add(amount)
		}

		if a.DividendReinvested {
			a.Balance = a.Balance.Add(amount)
			if a.CostBasis != nil {
				*a.CostBasis = costbasis.Contribute(*a.CostBasis, amount)
			}
		} else if cash != nil {
			cash.Balance = cash.Balance.Add(amount)
		}
		result.AccountDeltas = append(result.AccountDeltas, domain.AccountDelta{Account: a.Name, Reason: "dividend", Amount: amount})
	}
}

// fees implements step 13: the balance's geometric monthly fee rate is
// deducted in place.
func (e *Engine) fees(state *domain.PlanState) {
	for _, a := range state.Accounts {
		if a.FeeRate.IsZero() || a.Balance.LessThanOrEqual(decimal.Zero) {
			continue
		}
		fee := a.Balance.Mul(domain.MonthlyGrowthFactor(a.FeeRate))
		a.Balance = a.Balance.Sub(fee)
	}
}
