package sequencing

import (
	"github.com/shopspring/decimal"

	"github.com/timmydo/tfp/internal/domain"
)

// OrderedStrategy drains WithdrawalSources in the exact order supplied by
// the caller: "iterate the configured account order...draw
// min(shortfall_remaining, available)...stop when the shortfall is covered
// or the list is exhausted." The ordering itself (by AccountKind sequence or
// by explicit account name sequence) is decided by the caller building
// `sources` in that order; this strategy has no opinion on account kinds.
type OrderedStrategy struct{}

// NewOrderedStrategy returns the single withdrawal-sequencing strategy the
// engine uses.
func NewOrderedStrategy() *OrderedStrategy { return &OrderedStrategy{} }

func (s *OrderedStrategy) Name() string { return "ordered" }

const earlyWithdrawalAgeMonths = 59*12 + 6 // 59 1/2

func (s *OrderedStrategy) Plan(sources []WithdrawalSource, ctx StrategyContext) WithdrawalPlan {
	plan := WithdrawalPlan{Requested: ctx.NeedAmount, StrategyUsed: s.Name(), Allocations: []WithdrawalAllocation{}}
	remaining := ctx.NeedAmount

	for i := range sources {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		src := &sources[i]
		if src.Balance.LessThanOrEqual(decimal.Zero) {
			continue
		}

		withdraw := decimal.Min(src.Balance, remaining)
		alloc := allocate(src, withdraw)

		plan.Allocations = append(plan.Allocations, alloc)
		plan.TotalSourced = plan.TotalSourced.Add(withdraw)
		remaining = remaining.Sub(withdraw)
		src.Balance = src.Balance.Sub(withdraw)

		plan.EstimatedOrdinaryIncome = plan.EstimatedOrdinaryIncome.Add(alloc.OrdinaryPortion)
		plan.EstimatedCapitalGains = plan.EstimatedCapitalGains.Add(alloc.CapitalGainsPortion)
		plan.EstimatedMAGIImpact = plan.EstimatedMAGIImpact.Add(alloc.MAGIImpact)
	}

	plan.RemainingNeed = remaining
	if remaining.GreaterThan(decimal.Zero) {
		plan.Notes = append(plan.Notes, "insufficient balances to meet request")
	}
	return plan
}

// allocate splits one source's withdrawal into its tax/MAGI components and
// computes any early-withdrawal penalty.
func allocate(src *WithdrawalSource, withdraw decimal.Decimal) WithdrawalAllocation {
	alloc := WithdrawalAllocation{Source: src.Name, Gross: withdraw}

	switch src.TaxTreatment {
	case OrdinaryIncome:
		alloc.OrdinaryPortion = withdraw
		alloc.MAGIImpact = withdraw
		if penalized(src) {
			alloc.Penalty = withdraw.Mul(decimal.NewFromFloat(0.10))
		}
	case CapitalGains:
		basisPortion := decimal.Zero
		if src.Balance.GreaterThan(decimal.Zero) {
			basisPortion = withdraw.Mul(src.Basis).Div(src.Balance)
		}
		gain := withdraw.Sub(basisPortion)
		alloc.CapitalGainsPortion = gain
		alloc.TaxFreePortion = withdraw.Sub(gain)
		alloc.MAGIImpact = gain
	case TaxFree:
		// Roth "earnings" under the average-basis simplification:
		// amounts beyond cumulative contributions tracked in Basis.
		earnings := decimal.Zero
		if src.Kind == domain.KindRothIRA && src.Balance.GreaterThan(src.Basis) {
			unrealized := src.Balance.Sub(src.Basis)
			earnings = withdraw.Mul(unrealized).Div(src.Balance)
		}
		alloc.TaxFreePortion = withdraw.Sub(earnings)
		alloc.CapitalGainsPortion = decimal.Zero
		if earnings.GreaterThan(decimal.Zero) && penalized(src) {
			alloc.Penalty = earnings.Mul(decimal.NewFromFloat(0.10))
			alloc.TaxFreePortion = withdraw.Sub(earnings)
		} else {
			alloc.TaxFreePortion = withdraw
		}
	}
	return alloc
}

func penalized(src *WithdrawalSource) bool {
	return (src.Kind == domain.Kind401k || src.Kind == domain.KindTraditionalIRA || src.Kind == domain.KindRothIRA) &&
		src.AgeMonthsAtWithdrawal < earlyWithdrawalAgeMonths
}

// BuildSources turns the engine's ordered account list into WithdrawalSources,
// carrying each account's cost basis, kind, and the owner's age in months
// (for the early-withdrawal penalty rule).
func BuildSources(accounts []*domain.Account, ageMonthsByOwner map[domain.Owner]int) []WithdrawalSource {
	sources := make([]WithdrawalSource, 0, len(accounts))
	for _, a := range accounts {
		if !a.AllowWithdrawals {
			continue
		}
		tt := OrdinaryIncome
		basis := decimal.Zero
		switch {
		case a.Kind == domain.KindTaxableBrokerage:
			tt = CapitalGains
			if a.CostBasis != nil {
				basis = *a.CostBasis
			}
		case a.Kind == domain.KindRothIRA || a.Kind == domain.KindHSA || a.Kind == domain.Kind529 || a.Kind == domain.KindCash:
			tt = TaxFree
			if a.CostBasis != nil {
				basis = *a.CostBasis
			}
		case a.Kind.IsTaxDeferred():
			tt = OrdinaryIncome
		}
		sources = append(sources, WithdrawalSource{
			Name:                  a.Name,
			Kind:                  a.Kind,
			Balance:               a.Balance,
			Basis:                 basis,
			TaxTreatment:          tt,
			AgeMonthsAtWithdrawal: ageMonthsByOwner[a.Owner],
		})
	}
	return sources
}
