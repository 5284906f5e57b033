package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"setsplit/internal"
	"setsplit/internal/errors"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		internal.DefaultLogger.Debug("No .env file found, using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(errors.ExitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "setsplit [data] [sets]",
		Short: "Split items into statistically equivalent sets",
		Long: `Split the rows of a CSV or XLSX file into N sets that do not differ
significantly on any continuous or categorical column.

Each column gets a role: l=label, c=categorical, n=continuous,
a=absolute (balanced within each of its values), d=disregard.

Example: setsplit stimuli.csv 3 --roles l,n,n,c,a --seed 42`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.dataPath = args[0]
			opts.setsArg = args[1]
			opts.seedSet = cmd.Flags().Changed("seed")
			return execute(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.runs, "runs", 1, "Number of independent runs")
	f.StringVar(&opts.roles, "roles", "", "Column roles in column order, e.g. l,n,n,c,a")
	f.StringVar(&opts.rolesFile, "roles-file", "", "YAML file mapping column names to roles")
	f.Int64Var(&opts.seed, "seed", 0, "Random seed (default: SETSPLIT_SEED, else time based)")
	f.StringVar(&opts.outDir, "out", "", "Output directory (default: SETSPLIT_OUTPUT_DIR or .)")
	f.StringVar(&opts.dataFile, "output-file", "", "Name of the annotated data file (.csv or .xlsx)")
	f.StringVar(&opts.reportFile, "report", "", "Name of the statistics report")
	f.BoolVar(&opts.html, "html", false, "Also write the report as HTML")
	f.StringVar(&opts.delimiter, "delimiter", "", "Field delimiter of delimited input (default: detected)")
	f.StringVar(&opts.sheet, "sheet", "", "Worksheet to read from XLSX input (default: first)")
	f.IntVar(&opts.workers, "workers", -1, "Strata processed in parallel (0 = all)")

	return cmd
}
