// Package rmd implements mapping age to a Uniform Lifetime divisor and
// computing/distributing yearly required minimum distributions. No April-1
// deferral of the first RMD is modeled (explicit Non-goal).
package rmd

import (
	"github.com/shopspring/decimal"

	"github.com/timmydo/tfp/internal/domain"
	"github.com/timmydo/tfp/internal/regulatory"
)

// Distribution is one account's pro-rata share of a required distribution.
type Distribution struct {
	Account string
	Amount  decimal.Decimal
}

// Due reports whether owner must take an RMD in year given their birth date
// and configured start age: true from the December they reach rmdStartAge
// onward.
func Due(owner domain.Person, year int) bool {
	ageAtYearEnd := year - owner.BirthDate.Year
	return ageAtYearEnd >= owner.RMDStartAge
}

// Compute returns the required total distribution and its pro-rata split
// across accountBalances (prior-year-end balances keyed by account name),
//: required = prior_year_end_aggregate / divisor[age].
func Compute(priorYearEndAggregate decimal.Decimal, age int, accountBalances map[string]decimal.Decimal, yt regulatory.YearTables) (decimal.Decimal, []Distribution) {
	divisor := yt.UniformLifetimeDivisor(age)
	if divisor.IsZero() {
		return decimal.Zero, nil
	}
	required := priorYearEndAggregate.Div(divisor)

	if priorYearEndAggregate.IsZero() {
		return required, nil
	}

	dists := make([]Distribution, 0, len(accountBalances))
	for name, bal := range accountBalances {
		share := bal.Div(priorYearEndAggregate).Mul(required)
		dists = append(dists, Distribution{Account: name, Amount: share})
	}
	return required, dists
}
