// Package returns implements deterministic, correlated Monte-Carlo, and
// historical-replay return streams with seeded reproducibility. Each run
// owns an independent *rand.Rand seeded from a sub-seed derived from the
// master seed and run index, so runs stay reproducible and
// order-independent under concurrent execution regardless of scheduling.
package returns

import (
	"math"
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/timmydo/tfp/internal/domain"
)

// SubSeed derives a run-local seed from the master seed and run index using
// splitmix64-style mixing, so every run gets an independent, reproducible
// stream regardless of execution order.
func SubSeed(masterSeed int64, runIndex int) int64 {
	z := uint64(masterSeed) + uint64(runIndex)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z = z ^ (z >> 31)
	return int64(z)
}

// AnnualReturns is one simulated year's stock and bond return.
type AnnualReturns struct {
	Stock decimal.Decimal
	Bond  decimal.Decimal
}

// AccountReturn blends stock/bond annual returns by bond allocation and
// returns the equivalent monthly growth factor used for all twelve months
// of that year.
func AccountReturn(annual AnnualReturns, bondSharePct decimal.Decimal) decimal.Decimal {
	bondShare := bondSharePct.Div(decimal.NewFromInt(100))
	stockShare := decimal.NewFromInt(1).Sub(bondShare)
	annualRate := bondShare.Mul(annual.Bond).Add(stockShare.Mul(annual.Stock))
	return domain.MonthlyGrowthFactor(annualRate)
}

// Generator produces one run's sequence of annual returns.
type Generator interface {
	// YearReturns returns the annual stock/bond returns for simulation
	// year index (0-based from plan start).
	YearReturns(yearIndex int) AnnualReturns
}

// DeterministicGenerator returns the plan's fixed annual rates every year.
type DeterministicGenerator struct {
	Stock, Bond decimal.Decimal
}

func (g DeterministicGenerator) YearReturns(yearIndex int) AnnualReturns {
	return AnnualReturns{Stock: g.Stock, Bond: g.Bond}
}

// MonteCarloParams configures the correlated normal-variate draw.
type MonteCarloParams struct {
	StockMean, StockStdDev decimal.Decimal
	BondMean, BondStdDev   decimal.Decimal
	Correlation            decimal.Decimal
}

// MonteCarloGenerator draws correlated standard-normal variates per year via
// the Box-Muller transform over two uniform draws from its math/rand source.
type MonteCarloGenerator struct {
	Params MonteCarloParams
	rng    *rand.Rand
}

// NewMonteCarloGenerator returns a generator with its own independent,
// seeded source.
func NewMonteCarloGenerator(params MonteCarloParams, seed int64) *MonteCarloGenerator {
	return &MonteCarloGenerator{Params: params, rng: rand.New(rand.NewSource(seed))}
}

func (g *MonteCarloGenerator) YearReturns(yearIndex int) AnnualReturns {
	u1 := 1 - g.rng.Float64() // in (0, 1], keeps the log finite
	u2 := g.rng.Float64()
	radius := math.Sqrt(-2 * math.Log(u1))
	z1 := radius * math.Cos(2*math.Pi*u2)
	z2 := radius * math.Sin(2*math.Pi*u2)

	rho, _ := g.Params.Correlation.Float64()
	bondZ := rho*z1 + math.Sqrt(1-rho*rho)*z2

	stockMean, _ := g.Params.StockMean.Float64()
	stockStd, _ := g.Params.StockStdDev.Float64()
	bondMean, _ := g.Params.BondMean.Float64()
	bondStd, _ := g.Params.BondStdDev.Float64()

	stock := stockMean + stockStd*z1
	bond := bondMean + bondStd*bondZ

	return AnnualReturns{
		Stock: decimal.NewFromFloatWithExponent(stock, -9),
		Bond:  decimal.NewFromFloatWithExponent(bond, -9),
	}
}

// HistoricalSeries is one bundled year's observed stock/bond return.
type HistoricalSeries struct {
	Year  int
	Stock decimal.Decimal
	Bond  decimal.Decimal
}

// HistoricalGenerator samples from bundled annual return data, either as a
// rolling window starting at a uniformly chosen year, or as independent
// annual draws with replacement, per UseRollingPeriods.
type HistoricalGenerator struct {
	Series             []HistoricalSeries
	UseRollingPeriods  bool
	HorizonYears       int
	rng                *rand.Rand
	rollingStartIndex  int
}

// NewHistoricalGenerator returns a generator with its own independent,
// seeded source, and (for rolling mode) picks the window start immediately.
func NewHistoricalGenerator(series []HistoricalSeries, useRolling bool, horizonYears int, seed int64) *HistoricalGenerator {
	g := &HistoricalGenerator{Series: series, UseRollingPeriods: useRolling, HorizonYears: horizonYears, rng: rand.New(rand.NewSource(seed))}
	if useRolling && len(series) > 0 {
		maxStart := len(series) - horizonYears
		if maxStart < 0 {
			maxStart = 0
		}
		g.rollingStartIndex = g.rng.Intn(maxStart + 1)
	}
	return g
}

func (g *HistoricalGenerator) YearReturns(yearIndex int) AnnualReturns {
	if len(g.Series) == 0 {
		return AnnualReturns{}
	}
	var s HistoricalSeries
	if g.UseRollingPeriods {
		idx := (g.rollingStartIndex + yearIndex) % len(g.Series)
		s = g.Series[idx]
	} else {
		idx := g.rng.Intn(len(g.Series))
		s = g.Series[idx]
	}
	return AnnualReturns{Stock: s.Stock, Bond: s.Bond}
}
