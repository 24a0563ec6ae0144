package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/timmydo/tfp/internal/config"
	"github.com/timmydo/tfp/internal/domain"
	"github.com/timmydo/tfp/internal/orchestrator"
	"github.com/timmydo/tfp/internal/regulatory"
	"github.com/timmydo/tfp/internal/returns"
)

var (
	flagOutput     string
	flagMode       string
	flagRuns       int
	flagSeed       int64
	flagValidate   bool
	flagSummary    bool
	flagRegulatory string
	flagHistorical string
)

var rootCmd = &cobra.Command{
	Use:   "simcore [plan-file]",
	Short: "Run a household financial-planning simulation",
	Long:  "simcore projects a household's accounts, taxes, and benefits month by month across the plan horizon, optionally across a Monte-Carlo or historical-replay ensemble.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimulation,
}

func init() {
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "write results to this path instead of stdout")
	rootCmd.Flags().StringVar(&flagMode, "mode", "", "override the plan's simulation mode: deterministic, monte_carlo, historical")
	rootCmd.Flags().IntVar(&flagRuns, "runs", 0, "override the plan's run count for monte_carlo/historical modes")
	rootCmd.Flags().Int64Var(&flagSeed, "seed", 0, "override the plan's random seed (0 means: use the plan's own seed, or a freshly generated one)")
	rootCmd.Flags().BoolVar(&flagValidate, "validate", false, "only load and validate the plan file, then exit")
	rootCmd.Flags().BoolVar(&flagSummary, "summary", false, "print a condensed summary instead of the full year-by-year series")
	rootCmd.Flags().StringVar(&flagRegulatory, "regulatory-config", "regulatory.yaml", "path to the bundled tax/benefit regulatory tables")
	rootCmd.Flags().StringVar(&flagHistorical, "historical-data", "", "path to bundled historical return series (historical.yaml is used when empty and the mode is historical)")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	planFile := args[0]

	parser := config.NewInputParser()
	input, err := parser.LoadFromFile(planFile)
	if err != nil {
		return fmt.Errorf("loading %s: %w", planFile, err)
	}

	if flagValidate {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is a valid plan\n", planFile)
		return nil
	}

	applyOverrides(input)

	if input.Settings.Seed == 0 {
		input.Settings.Seed = rand.Int63()
		fmt.Fprintf(cmd.ErrOrStderr(), "no seed given, using generated seed %d\n", input.Settings.Seed)
	}

	tables, err := regulatory.Load(flagRegulatory)
	if err != nil {
		return fmt.Errorf("loading regulatory tables from %s: %w", flagRegulatory, err)
	}

	var historical []returns.HistoricalSeries
	if input.Settings.Mode == domain.ModeHistorical || flagHistorical != "" {
		path := flagHistorical
		if path == "" {
			path = "historical.yaml"
		}
		historical, err = returns.LoadHistoricalSeries(path)
		if err != nil {
			return fmt.Errorf("loading historical return data from %s: %w", path, err)
		}
	}

	orch := orchestrator.New(tables, historical)
	result, err := orch.Run(context.Background(), input)
	if err != nil {
		return fmt.Errorf("running simulation: %w", err)
	}

	out := cmd.OutOrStdout()
	if flagOutput != "" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return fmt.Errorf("opening %s: %w", flagOutput, err)
		}
		defer f.Close()
		out = f
	}

	if flagSummary {
		writeSummary(out, result)
	} else {
		writeFull(out, result)
	}
	return nil
}

func applyOverrides(input *domain.PlanInput) {
	if flagMode != "" {
		input.Settings.Mode = domain.SimulationMode(flagMode)
	}
	if flagRuns > 0 {
		input.Settings.Runs = flagRuns
	}
	if flagSeed != 0 {
		input.Settings.Seed = flagSeed
	}
}

func writeSummary(out io.Writer, result domain.SimulationResult) {
	fmt.Fprintf(out, "mode: %s, seed: %d, runs: %d\n", result.Mode, result.Seed, len(result.Runs))
	fmt.Fprintf(out, "success rate: %s%%\n", result.SuccessRate.Mul(decimal.NewFromInt(100)).StringFixed(1))

	years := sortedYears(result.NetWorth)
	if len(years) == 0 {
		return
	}
	last := years[len(years)-1]
	band := result.NetWorth[last]
	fmt.Fprintf(out, "ending net worth (year %d): p10=$%s p50=$%s p90=$%s\n",
		last, band.P10.StringFixed(0), band.P50.StringFixed(0), band.P90.StringFixed(0))
}

func writeFull(out io.Writer, result domain.SimulationResult) {
	fmt.Fprintf(out, "mode: %s, seed: %d, runs: %d\n", result.Mode, result.Seed, len(result.Runs))
	fmt.Fprintf(out, "success rate: %s%%\n\n", result.SuccessRate.Mul(decimal.NewFromInt(100)).StringFixed(1))

	fmt.Fprintln(out, "year  net_worth(p10/p50/p90)           income(p50)     expenses(p50)   taxes(p50)")
	for _, year := range sortedYears(result.NetWorth) {
		nw := result.NetWorth[year]
		inc := result.Income[year]
		exp := result.Expenses[year]
		tax := result.Taxes[year]
		fmt.Fprintf(out, "%d  $%s / $%s / $%s   $%s   $%s   $%s\n",
			year,
			nw.P10.StringFixed(0), nw.P50.StringFixed(0), nw.P90.StringFixed(0),
			inc.P50.StringFixed(0), exp.P50.StringFixed(0), tax.P50.StringFixed(0))
	}
}

func sortedYears(series domain.SeriesPercentiles) []int {
	years := make([]int, 0, len(series))
	for y := range series {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
