package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/adapter/csvfeed"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/adapter/repository"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/adapter/repository/memory"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/config"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/usecase/calculator"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/usecase/seeder"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ifyouinvest",
		Short: "Simulate investing in an index fund over its price history",
		Long: `ifyouinvest loads daily closing prices and dividends, and answers
"what if I had invested" questions over them, projecting prices past the
last stored day at a predicted annualized return.`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newImportCmd(), newSimulateCmd())
	return rootCmd
}

func newImportCmd() *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a date,close,dividend CSV into the configured price store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return err
			}
			log := cfg.NewLogger()

			points, err := csvfeed.ReadFile(csvPath)
			if err != nil {
				return err
			}

			store, err := repository.Open(cfg, log)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := seeder.Import(ctx, store, points, seeder.DefaultBatchSize); err != nil {
				return err
			}

			log.WithField("rows", len(points)).Info("import complete")
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d prices from %s\n", len(points), csvPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "path to the CSV file")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

type simulateFlags struct {
	csvPath string
	start   string
	end     string
	initial string
	day     int
	amount  string
	rate    string
	summary bool
}

func newSimulateCmd() *cobra.Command {
	var f simulateFlags

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a calculation over a CSV without a database and print the JSON report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.request(cmd)
			if err != nil {
				return err
			}

			points, err := csvfeed.ReadFile(f.csvPath)
			if err != nil {
				return err
			}

			cfg := config.Load()
			log := cfg.NewLogger()
			log.SetOutput(cmd.ErrOrStderr())

			calc := calculator.NewCalculatorService(memory.NewPriceRepository(points...), log, cfg.DefaultPredictedReturn)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			report, err := calc.Calculate(ctx, req)
			if err != nil {
				return err
			}
			if f.summary {
				report.MonthlyBreakdown = nil
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.csvPath, "csv", "", "path to the CSV file")
	flags.StringVar(&f.start, "start", "", "first day, YYYY-MM-DD (default: first day in the file)")
	flags.StringVar(&f.end, "end", "", "last day, YYYY-MM-DD (default: last day in the file)")
	flags.StringVar(&f.initial, "initial", "0", "lump sum invested on the first day")
	flags.IntVar(&f.day, "day", 0, "day of month for recurring contributions, 1-31")
	flags.StringVar(&f.amount, "amount", "0", "recurring monthly contribution")
	flags.StringVar(&f.rate, "rate", "", "predicted annualized return in percent for days past the file")
	flags.BoolVar(&f.summary, "summary", false, "omit the monthly breakdown")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

func (f simulateFlags) request(cmd *cobra.Command) (calculator.Request, error) {
	req := calculator.Request{StartDate: f.start, EndDate: f.end}

	var err error
	if req.InitialInvestment, err = decimal.NewFromString(f.initial); err != nil {
		return req, fmt.Errorf("invalid --initial %q", f.initial)
	}
	if req.MonthlyInvestmentAmount, err = decimal.NewFromString(f.amount); err != nil {
		return req, fmt.Errorf("invalid --amount %q", f.amount)
	}
	if cmd.Flags().Changed("day") {
		day := f.day
		req.MonthlyInvestmentDate = &day
	}
	if f.rate != "" {
		rate, err := decimal.NewFromString(f.rate)
		if err != nil {
			return req, fmt.Errorf("invalid --rate %q", f.rate)
		}
		req.PredictedAnnualizedReturn = &rate
	}
	return req, nil
}
