// Command validate runs integrity checks over a folder of dengue exports:
// every export parses, national totals add up, and the breakdown tables agree
// with the state table.
//
// Usage:
//
//	go run ./cmd/validate --data-dir data
//	go run ./cmd/validate --data-dir data --manifest data/manifest.yaml --min-year 2014
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/dengue-dashboard/internal/adapter/source"
	"github.com/couchcryptid/dengue-dashboard/internal/config"
	"github.com/spf13/cobra"
)

type options struct {
	dataDir   string
	manifest  string
	minYear   int
	tolerance float64
	timeout   time.Duration
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "validate",
		Short:         "Check the integrity of a folder of SINAN dengue exports",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `  validate --data-dir data
  validate --data-dir data --manifest data/manifest.yaml --tolerance 0.5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "data", "directory the manifest locations are relative to")
	cmd.Flags().StringVar(&opts.manifest, "manifest", "", "YAML dataset manifest (default: built-in file names)")
	cmd.Flags().IntVar(&opts.minYear, "min-year", 2014, "first year the dashboard shows")
	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", 0.5, "largest accepted difference between a total and its parts")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "timeout for each remote export")
	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, opts options) error {
	manifest := config.DefaultManifest()
	if opts.manifest != "" {
		m, err := config.LoadManifest(opts.manifest)
		if err != nil {
			return err
		}
		manifest = m
	}

	fetcher := source.NewFetcher(opts.timeout, slog.New(slog.NewTextHandler(io.Discard, nil)))

	fmt.Fprintln(out, "=== Dengue Export Integrity Validation ===")
	fmt.Fprintln(out)

	ds, parsing := validateParsing(ctx, fetcher, manifest.Locations(opts.dataDir), manifest.Columns)
	phases := []*phase{parsing}
	if ds != nil {
		phases = append(phases,
			validateYearCoverage(ds, opts.minYear),
			validateWideTotals(ds, opts.tolerance),
			validateLevelTotals(ds, opts.tolerance),
			validateBreakdownTotals(ds, opts.tolerance),
			validateSeasonalityTotals(ds, opts.tolerance),
		)
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	if ds != nil {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Rows: %d states, %d municipalities, %d years\n",
			ds.States.Len(), ds.Municipalities.Len(), len(ds.States.Years))
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if !allPassed {
		fmt.Fprintln(out, "\nValidation FAILED.")
		return fmt.Errorf("validation failed")
	}
	fmt.Fprintln(out, "\nAll validations passed.")
	return nil
}
