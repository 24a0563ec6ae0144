// Package orchestrator builds the initial plan state, drives the monthly
// engine across the simulation horizon, and aggregates one or many runs
// into a SimulationResult. Ensembles fan out across runs with an
// independent *domain.PlanState and return stream per run.
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/timmydo/tfp/internal/domain"
	"github.com/timmydo/tfp/internal/engine"
	"github.com/timmydo/tfp/internal/regulatory"
	"github.com/timmydo/tfp/internal/returns"
)

// Orchestrator owns the regulatory tables and historical-return series
// needed to build an engine and return generator for each run.
type Orchestrator struct {
	Tables     *regulatory.Tables
	Historical []returns.HistoricalSeries
}

// New returns an orchestrator backed by the given regulatory tables and
// bundled historical return series (nil/empty if historical mode is unused).
func New(tables *regulatory.Tables, historical []returns.HistoricalSeries) *Orchestrator {
	return &Orchestrator{Tables: tables, Historical: historical}
}

// Run executes the plan's configured mode (deterministic runs exactly one
// pass; Monte-Carlo and historical run Settings.Runs passes) and returns the
// aggregated SimulationResult. ctx is checked between runs and between years
// within a run; on cancellation the in-flight work is discarded and ctx.Err()
// is returned.
func (o *Orchestrator) Run(ctx context.Context, input *domain.PlanInput) (domain.SimulationResult, error) {
	settings := input.Settings
	seed := settings.Seed

	runs := 1
	if settings.Mode != domain.ModeDeterministic {
		runs = settings.Runs
		if runs <= 0 {
			runs = 1
		}
	}

	if settings.Mode == domain.ModeMonteCarlo {
		if settings.MonteCarloCorrelation.LessThan(decimal.NewFromInt(-1)) || settings.MonteCarloCorrelation.GreaterThan(decimal.NewFromInt(1)) {
			return domain.SimulationResult{}, fmt.Errorf("monte carlo correlation %s outside [-1, 1]", settings.MonteCarloCorrelation)
		}
	}
	if settings.Mode == domain.ModeHistorical && len(o.Historical) == 0 {
		return domain.SimulationResult{}, fmt.Errorf("historical mode requested but no historical return data is bundled")
	}

	results := make([][]domain.AnnualResult, runs)
	errs := make([]error, runs)

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrency())
	for i := 0; i < runs; i++ {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(runIndex int) {
			defer wg.Done()
			defer func() { <-sem }()
			annual, err := o.runOne(ctx, input, seed, runIndex)
			results[runIndex] = annual
			errs[runIndex] = err
		}(i)
	}
	wg.Wait()

	if ctx.Err() != nil {
		return domain.SimulationResult{}, ctx.Err()
	}
	for _, err := range errs {
		if err != nil {
			return domain.SimulationResult{}, err
		}
	}

	result := domain.SimulationResult{
		Mode: settings.Mode,
		Seed: seed,
		Runs: results,
	}
	result.NetWorth, result.Income, result.Expenses, result.Taxes = aggregatePercentiles(results)
	result.SuccessRate = successRate(results)
	return result, nil
}

// maxConcurrency bounds the number of runs executed at once; the ensemble is
// embarrassingly parallel so any positive bound is correct, this one just
// avoids spawning thousands of goroutines for a huge run count.
func maxConcurrency() int {
	return 16
}

// runOne executes a single pass over [plan_start, plan_end], returning one
// AnnualResult per simulated year.
func (o *Orchestrator) runOne(ctx context.Context, input *domain.PlanInput, masterSeed int64, runIndex int) ([]domain.AnnualResult, error) {
	state := domain.NewPlanState(input)
	eng := engine.New(input, o.Tables)
	gen := o.buildGenerator(input, masterSeed, runIndex)

	start, end := input.Settings.PlanStart, input.Settings.PlanEnd
	numYears := end.Year - start.Year + 1
	annuals := make([]domain.AnnualResult, 0, numYears)

	for state.Cursor.Year <= end.Year {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		year := state.Cursor.Year
		yearIndex := year - start.Year
		annualReturn := gen.YearReturns(yearIndex)
		monthlyFactors := monthlyFactorsFor(input, annualReturn)

		annual := domain.AnnualResult{Year: year, EndingBalances: map[string]decimal.Decimal{}}
		monthSlot := 0
		for state.Cursor.Year == year {
			if state.Cursor.After(end) {
				break
			}
			monthResult, err := eng.AdvanceMonth(state, monthlyFactors)
			if err != nil {
				return nil, fmt.Errorf("run %d, %d-%02d: %w", runIndex, state.Cursor.Year, state.Cursor.Month, err)
			}
			if monthSlot < 12 {
				annual.Months[monthSlot] = monthResult
			}
			monthSlot++
			state.Cursor = state.Cursor.AddMonths(1)
		}

		tax, err := eng.SettleYear(state, year)
		if err != nil {
			return nil, fmt.Errorf("run %d, settling %d: %w", runIndex, year, err)
		}
		annual.Tax = tax
		annual.MAGI = state.MAGIHistory[year]
		annual.Insolvent = state.Insolvent

		netWorth := decimal.Zero
		for name, a := range state.Accounts {
			annual.EndingBalances[name] = a.Balance
			netWorth = netWorth.Add(a.Balance)
		}
		for _, ra := range state.RealAssets {
			netWorth = netWorth.Add(ra.CurrentValue)
			if ra.Mortgage != nil {
				netWorth = netWorth.Sub(ra.Mortgage.RemainingBalance)
			}
		}
		annual.NetWorth = netWorth

		annuals = append(annuals, annual)
	}

	return annuals, nil
}

// buildGenerator returns the per-run return generator for the plan's
// configured mode, seeded deterministically from masterSeed and runIndex.
func (o *Orchestrator) buildGenerator(input *domain.PlanInput, masterSeed int64, runIndex int) returns.Generator {
	settings := input.Settings
	subSeed := returns.SubSeed(masterSeed, runIndex)

	switch settings.Mode {
	case domain.ModeMonteCarlo:
		return returns.NewMonteCarloGenerator(returns.MonteCarloParams{
			StockMean:   settings.MonteCarloStockMean,
			StockStdDev: settings.MonteCarloStockStdDev,
			BondMean:    settings.MonteCarloBondMean,
			BondStdDev:  settings.MonteCarloBondStdDev,
			Correlation: settings.MonteCarloCorrelation,
		}, subSeed)
	case domain.ModeHistorical:
		return returns.NewHistoricalGenerator(o.Historical, settings.HistoricalUseRollingPeriods, settings.HistoricalHorizonYears, subSeed)
	default:
		return deterministicGenerator{}
	}
}

// deterministicGenerator has no stock/bond split to draw: deterministic mode
// reads each account's own fixed GrowthRate directly in monthlyFactorsFor.
type deterministicGenerator struct{}

func (deterministicGenerator) YearReturns(yearIndex int) returns.AnnualReturns { return returns.AnnualReturns{} }

// monthlyFactorsFor computes the monthly growth factor for every account for
// the given simulated year: deterministic mode uses each account's own
// GrowthRate directly, Monte-Carlo/historical modes blend the drawn
// stock/bond annual returns by the account's BondAllocationPct.
func monthlyFactorsFor(input *domain.PlanInput, annual returns.AnnualReturns) map[string]decimal.Decimal {
	factors := make(map[string]decimal.Decimal, len(input.Accounts))
	for _, a := range input.Accounts {
		switch input.Settings.Mode {
		case domain.ModeDeterministic:
			factors[a.Name] = domain.MonthlyGrowthFactor(a.GrowthRate)
		default:
			factors[a.Name] = returns.AccountReturn(annual, a.BondAllocationPct)
		}
	}
	return factors
}

// successRate reports the fraction of runs that never became insolvent.
func successRate(runs [][]domain.AnnualResult) decimal.Decimal {
	if len(runs) == 0 {
		return decimal.Zero
	}
	successes := 0
	for _, run := range runs {
		insolvent := false
		for _, a := range run {
			if a.Insolvent {
				insolvent = true
				break
			}
		}
		if !insolvent {
			successes++
		}
	}
	return decimal.NewFromInt(int64(successes)).Div(decimal.NewFromInt(int64(len(runs))))
}

// aggregatePercentiles builds the four SeriesPercentiles the core emits, one
// per simulated year, across every run's AnnualResult at that year index.
func aggregatePercentiles(runs [][]domain.AnnualResult) (netWorth, income, expenses, taxes domain.SeriesPercentiles) {
	netWorth = domain.SeriesPercentiles{}
	income = domain.SeriesPercentiles{}
	expenses = domain.SeriesPercentiles{}
	taxes = domain.SeriesPercentiles{}

	maxYears := 0
	for _, run := range runs {
		if len(run) > maxYears {
			maxYears = len(run)
		}
	}

	for yearIdx := 0; yearIdx < maxYears; yearIdx++ {
		var nwSamples, incSamples, expSamples, taxSamples []decimal.Decimal
		year := 0
		for _, run := range runs {
			if yearIdx >= len(run) {
				continue
			}
			a := run[yearIdx]
			year = a.Year
			nwSamples = append(nwSamples, a.NetWorth)
			incSamples = append(incSamples, yearIncome(a))
			expSamples = append(expSamples, yearExpenses(a))
			taxSamples = append(taxSamples, a.Tax.Total)
		}
		if year == 0 {
			continue
		}
		netWorth[year] = percentileBands(nwSamples)
		income[year] = percentileBands(incSamples)
		expenses[year] = percentileBands(expSamples)
		taxes[year] = percentileBands(taxSamples)
	}
	return netWorth, income, expenses, taxes
}

func yearIncome(a domain.AnnualResult) decimal.Decimal {
	total := decimal.Zero
	for _, m := range a.Months {
		for _, e := range m.Income {
			total = total.Add(e.Amount)
		}
	}
	return total
}

func yearExpenses(a domain.AnnualResult) decimal.Decimal {
	total := decimal.Zero
	for _, m := range a.Months {
		for _, amt := range m.ExpensesByCategory {
			total = total.Add(amt)
		}
		total = total.Add(m.HealthcareCost)
	}
	return total
}

// percentileBands sorts samples and linearly interpolates the 10/25/50/75/90
// percentiles, matching the aggregation the ensemble Monte Carlo uses.
func percentileBands(samples []decimal.Decimal) domain.PercentileBands {
	if len(samples) == 0 {
		return domain.PercentileBands{}
	}
	sorted := append([]decimal.Decimal(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	return domain.PercentileBands{
		P10: interpolate(sorted, 0.10),
		P25: interpolate(sorted, 0.25),
		P50: interpolate(sorted, 0.50),
		P75: interpolate(sorted, 0.75),
		P90: interpolate(sorted, 0.90),
	}
}

func interpolate(sorted []decimal.Decimal, p float64) decimal.Decimal {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lowerIdx := int(pos)
	upperIdx := lowerIdx + 1
	if upperIdx >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := decimal.NewFromFloatWithExponent(pos-float64(lowerIdx), -9)
	lower, upper := sorted[lowerIdx], sorted[upperIdx]
	return lower.Add(upper.Sub(lower).Mul(frac))
}
