// Package rothconversion implements fixed-schedule and December
// bracket-fill Roth conversions.
package rothconversion

import (
	"github.com/shopspring/decimal"

	"github.com/timmydo/tfp/internal/domain"
	"github.com/timmydo/tfp/internal/regulatory"
)

// FixedMonthlyAmount returns this month's conversion for a fixed schedule:
// annual_amount/12, capped by the source balance.
func FixedMonthlyAmount(sched domain.RothConversionSchedule, sourceBalance decimal.Decimal) decimal.Decimal {
	amount := sched.AnnualAmount.Div(decimal.NewFromInt(12))
	return decimal.Min(amount, sourceBalance)
}

// BracketFillAmount returns the December top-up for a fill-to-bracket
// schedule: max(0, bracket_top - ytd_ordinary_income), capped by the source
// balance.
func BracketFillAmount(sched domain.RothConversionSchedule, ytdOrdinaryIncome, sourceBalance decimal.Decimal, fs domain.FilingStatus, yt regulatory.YearTables) (decimal.Decimal, error) {
	top, err := yt.BracketTop(sched.BracketFillName, fs)
	if err != nil {
		return decimal.Zero, err
	}
	amount := decimal.Max(decimal.Zero, top.Sub(ytdOrdinaryIncome))
	return decimal.Min(amount, sourceBalance), nil
}
