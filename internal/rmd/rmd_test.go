package rmd

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/timmydo/tfp/internal/domain"
	"github.com/timmydo/tfp/internal/regulatory"
)

func testYearTables() regulatory.YearTables {
	return regulatory.YearTables{
		UniformLifetimeDivisors: map[int]decimal.Decimal{
			72: decimal.NewFromFloat(27.4),
			73: decimal.NewFromFloat(26.5),
			74: decimal.NewFromFloat(25.5),
		},
	}
}

func TestDue_FalseBeforeStartAge(t *testing.T) {
	p := domain.Person{BirthDate: domain.YearMonth{Year: 1950, Month: 6}, RMDStartAge: 73}
	assert.False(t, Due(p, 2020))
}

func TestDue_TrueFromStartAgeYearOnward(t *testing.T) {
	p := domain.Person{BirthDate: domain.YearMonth{Year: 1950, Month: 6}, RMDStartAge: 73}
	assert.True(t, Due(p, 2023))
	assert.True(t, Due(p, 2024))
}

func TestCompute_DividesAggregateByDivisor(t *testing.T) {
	required, _ := Compute(decimal.NewFromInt(265000), 73, map[string]decimal.Decimal{"ira": decimal.NewFromInt(265000)}, testYearTables())
	assert.True(t, required.Equal(decimal.NewFromInt(10000)))
}

func TestCompute_SplitsProRataAcrossAccounts(t *testing.T) {
	balances := map[string]decimal.Decimal{
		"ira":    decimal.NewFromInt(159000), // 60%
		"401k":   decimal.NewFromInt(106000), // 40%
	}
	required, dists := Compute(decimal.NewFromInt(265000), 73, balances, testYearTables())

	byAccount := map[string]decimal.Decimal{}
	for _, d := range dists {
		byAccount[d.Account] = d.Amount
	}
	assert.True(t, byAccount["ira"].Equal(decimal.NewFromInt(6000)))
	assert.True(t, byAccount["401k"].Equal(decimal.NewFromInt(4000)))
	assert.True(t, byAccount["ira"].Add(byAccount["401k"]).Equal(required))
}

func TestCompute_ZeroAggregateSkipsDistributions(t *testing.T) {
	required, dists := Compute(decimal.Zero, 73, map[string]decimal.Decimal{"ira": decimal.Zero}, testYearTables())
	assert.True(t, required.IsZero())
	assert.Empty(t, dists)
}

func TestCompute_AgeAboveBundledMaxUsesHighestDivisor(t *testing.T) {
	required, _ := Compute(decimal.NewFromInt(255000), 90, map[string]decimal.Decimal{"ira": decimal.NewFromInt(255000)}, testYearTables())
	assert.True(t, required.Equal(decimal.NewFromInt(10000))) // 255000 / 25.5
}
