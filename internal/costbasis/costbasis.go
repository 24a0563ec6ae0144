// Package costbasis implements an average-cost running basis tracker per
// taxable account. Tax-advantaged accounts are not tracked; their
// withdrawals are fully ordinary or fully tax-free by kind.
package costbasis

import "github.com/shopspring/decimal"

// Contribute increases basis by the exact amount added (a contribution or a
// reinvested dividend).
func Contribute(basis decimal.Decimal, amount decimal.Decimal) decimal.Decimal {
	return basis.Add(amount)
}

// Withdraw reduces basis by withdrawn*basis/balance and returns the updated
// basis along with the realized gain (the complement of the basis portion).
// If balance is zero, the division-by-zero guard yields zero gain.
func Withdraw(basis, balance, withdrawn decimal.Decimal) (newBasis, basisPortion, gain decimal.Decimal) {
	if balance.IsZero() {
		return decimal.Zero, decimal.Zero, decimal.Zero
	}
	basisPortion = withdrawn.Mul(basis).Div(balance)
	gain = withdrawn.Sub(basisPortion)
	newBasis = basis.Sub(basisPortion)
	if newBasis.LessThan(decimal.Zero) {
		newBasis = decimal.Zero
	}
	return newBasis, basisPortion, gain
}
