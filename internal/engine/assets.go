package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/timmydo/tfp/internal/domain"
	"github.com/timmydo/tfp/internal/realassets"
)

// realAssets implements step 14: appreciation, mortgage amortization,
// property-tax accrual, and maintenance, all paid out of cash as they
// occur.
func (e *Engine) realAssets(state *domain.PlanState, result *domain.MonthResult) {
	cash := state.AccountNamed(cashAccountName(e.Input))
	inflation := e.Input.Settings.InflationRate

	for _, a := range state.RealAssets {
		realassets.Appreciate(a, inflation)

		if a.Mortgage != nil {
			interest, principal := realassets.AmortizeMortgage(a.Mortgage)
			payment := interest.Add(principal)
			if cash != nil {
				cash.Balance = cash.Balance.Sub(payment)
			}
			state.YTD.MortgageInterestPaid = state.YTD.MortgageInterestPaid.Add(interest)
			if a.Mortgage.RemainingBalance.LessThanOrEqual(decimal.Zero) {
				a.Mortgage = nil
			}
			if payment.GreaterThan(decimal.Zero) {
				result.AccountDeltas = append(result.AccountDeltas, domain.AccountDelta{Account: a.Name, Reason: "mortgage_payment", Amount: payment})
			}
		}

		propertyTax := realassets.AccruePropertyTax(a)
		if propertyTax.GreaterThan(decimal.Zero) {
			if cash != nil {
				cash.Balance = cash.Balance.Sub(propertyTax)
			}
			state.YTD.SALTPaid = state.YTD.SALTPaid.Add(propertyTax)
		}

		for _, m := range a.Maintenance {
			monthly := maintenanceMonthlyAmount(m, state.Cursor, e.Input.Settings.PlanStart, inflation)
			if monthly.GreaterThan(decimal.Zero) && cash != nil {
				cash.Balance = cash.Balance.Sub(monthly)
			}
		}
	}
}

// maintenanceMonthlyAmount grows a maintenance item's annual cost by its
// change policy once per calendar year elapsed since the plan start year
// (maintenance items carry no start date of their own). Unlike
// CashFlowItem.MonthlyAmount, it does not wait for the start month's
// anniversary.
func maintenanceMonthlyAmount(m domain.MaintenanceItem, cursor, planStart domain.YearMonth, inflationRate decimal.Decimal) decimal.Decimal {
	elapsedYears := cursor.Year - planStart.Year
	if elapsedYears < 0 {
		elapsedYears = 0
	}
	rate := decimal.Zero
	switch m.ChangePolicy {
	case domain.ChangeIncrease:
		rate = m.ChangeRate
	case domain.ChangeDecrease:
		rate = m.ChangeRate.Neg()
	case domain.ChangeMatchInflation:
		rate = inflationRate
	case domain.ChangeInflationPlus:
		rate = inflationRate.Add(m.ChangeRate)
	case domain.ChangeInflationMinus:
		rate = inflationRate.Sub(m.ChangeRate)
	}
	factor := decimal.NewFromInt(1).Add(rate)
	grown := m.AnnualAmount
	for i := 0; i < elapsedYears; i++ {
		grown = grown.Mul(factor)
	}
	return grown.Div(decimal.NewFromInt(12))
}

// transactions implements step 15: one-time scheduled events (asset sales,
// purchases, transfers, and ad hoc flows) that fall on this exact month.
func (e *Engine) transactions(state *domain.PlanState, result *domain.MonthResult, cash *domain.Account) error {
	for _, tx := range e.Input.Transactions {
		if tx.Date != state.Cursor {
			continue
		}
		switch tx.Kind {
		case domain.TransactionSellAsset:
			asset := findAsset(state.RealAssets, tx.AssetName)
			if asset == nil {
				return fmt.Errorf("transaction %q references unknown asset %q", tx.Name, tx.AssetName)
			}
			sale := realassets.Sell(*asset, tx.Amount, tx.Fees, e.Input.Settings.FilingStatus)
			cash.Balance = cash.Balance.Add(sale.NetProceeds)
			state.YTD.LongTermGains = state.YTD.LongTermGains.Add(sale.Gain)
			asset.CurrentValue = decimal.Zero
			removeAsset(state, tx.AssetName)
			result.AccountDeltas = append(result.AccountDeltas, domain.AccountDelta{Account: tx.AssetName, Reason: "sale", Amount: sale.NetProceeds})

		case domain.TransactionBuyAsset:
			cash.Balance = cash.Balance.Sub(tx.Amount).Sub(tx.Fees)
			state.RealAssets = append(state.RealAssets, &domain.RealAsset{
				Name:             tx.AssetName,
				Owner:            cash.Owner,
				CurrentValue:     tx.Amount,
				PurchasePrice:    tx.Amount,
				PrimaryResidence: tx.PrimaryResidence,
			})
			result.AccountDeltas = append(result.AccountDeltas, domain.AccountDelta{Account: tx.AssetName, Reason: "purchase", Amount: tx.Amount})

		case domain.TransactionTransfer:
			src := state.AccountNamed(tx.Account)
			if src == nil {
				continue
			}
			moved := decimal.Min(tx.Amount, src.Balance)
			src.Balance = src.Balance.Sub(moved)
			cash.Balance = cash.Balance.Add(moved)
			result.AccountDeltas = append(result.AccountDeltas, domain.AccountDelta{Account: tx.Account, Reason: "transfer_out", Amount: moved})

		case domain.TransactionOther:
			cash.Balance = cash.Balance.Add(tx.Amount)
			result.AccountDeltas = append(result.AccountDeltas, domain.AccountDelta{Account: "cash", Reason: tx.Name, Amount: tx.Amount})
		}
	}
	return nil
}

func findAsset(assets []*domain.RealAsset, name string) *domain.RealAsset {
	for _, a := range assets {
		if a.Name == name {
			return a
		}
	}
	return nil
}

func removeAsset(state *domain.PlanState, name string) {
	out := state.RealAssets[:0]
	for _, a := range state.RealAssets {
		if a.Name != name {
			out = append(out, a)
		}
	}
	state.RealAssets = out
}
