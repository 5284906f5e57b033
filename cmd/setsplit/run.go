package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	"setsplit/adapters/excel"
	"setsplit/adapters/rng"
	"setsplit/app"
	"setsplit/domain/partition"
	"setsplit/internal"
	"setsplit/internal/cluster"
	"setsplit/internal/config"
	"setsplit/internal/errors"
	"setsplit/internal/report"
	"setsplit/internal/roles"
	"setsplit/ports"
)

// options carries the command line
type options struct {
	dataPath   string
	setsArg    string
	runs       int
	roles      string
	rolesFile  string
	seed       int64
	seedSet    bool
	outDir     string
	dataFile   string
	reportFile string
	html       bool
	delimiter  string
	sheet      string
	workers    int

	// stdin and interactive are swapped out in tests
	stdin       io.Reader
	interactive *bool
}

// loadConfig reads the environment and applies command line overrides
func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.seedSet {
		cfg.Partition.Seed = opts.seed
	}
	if opts.workers >= 0 {
		cfg.Partition.Workers = opts.workers
	}
	if opts.outDir != "" {
		cfg.Output.Dir = opts.outDir
	}
	if opts.dataFile != "" {
		cfg.Output.DataFile = opts.dataFile
	}
	if opts.reportFile != "" {
		cfg.Output.ReportFile = opts.reportFile
	}
	if opts.html {
		cfg.Output.HTML = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// execute runs every requested run in memory and writes artifacts only after
// all of them succeeded.
func execute(ctx context.Context, opts options, stdout io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))

	sets, err := strconv.Atoi(opts.setsArg)
	if err != nil || sets < 2 {
		return errors.ConfigInvalidf("number of sets must be an integer of at least 2, got %q", opts.setsArg)
	}
	if opts.runs < 1 {
		return errors.ConfigInvalidf("--runs must be at least 1, got %d", opts.runs)
	}

	reader, err := newReader(opts, logger)
	if err != nil {
		return err
	}
	d, err := reader.ReadDataset(ctx, opts.dataPath)
	if err != nil {
		return err
	}

	var prompter ports.RolePrompter
	interactive := roles.StdinIsTerminal()
	if opts.interactive != nil {
		interactive = *opts.interactive
	}
	if interactive {
		in := opts.stdin
		if in == nil {
			in = os.Stdin
		}
		prompter = roles.NewStdinPrompter(in, os.Stderr, excel.SuggestRoles(d))
	}
	columnRoles, err := roles.NewResolver(prompter, logger).Resolve(ctx, d, opts.roles, opts.rolesFile)
	if err != nil {
		return err
	}

	p := cfg.Partition
	service := app.NewPartitionService(
		app.NewStageRunner(cluster.NewEngine(logger), rng.NewSeededAdapter(), logger), logger)

	baseSeed := p.Seed
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}

	artifacts := make([]report.Artifact, 0, opts.runs)
	for runNumber := 1; runNumber <= opts.runs; runNumber++ {
		plan := partition.Plan{
			Dataset:          d,
			Roles:            columnRoles,
			Sets:             sets,
			Threshold:        p.PThreshold,
			MaxRetries:       p.MaxRetries,
			MaxClusters:      p.MaxClusters,
			SilhouetteSample: p.SilhouetteSample,
			ClusterMaxIter:   p.ClusterMaxIter,
			Seed:             baseSeed + int64(runNumber-1),
			Workers:          p.Workers,
		}
		outcome, err := service.Run(ctx, plan, runNumber)
		if err != nil {
			return err
		}
		text, err := report.Render(outcome, d)
		if err != nil {
			return errors.WithCode(errors.CodeInternalError, err)
		}
		artifacts = append(artifacts, report.Artifact{
			Outcome: outcome,
			Report:  text,
			Paths: report.ArtifactPaths(cfg.Output.Dir, cfg.Output.DataFile, cfg.Output.ReportFile,
				cfg.Output.HTML, runNumber, opts.runs),
		})
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	// the data file keeps the separator the input was read with
	writer := excel.NewDataWriter(logger)
	if err := report.NewWriter(writer, logger).WriteAll(ctx, artifacts); err != nil {
		return err
	}

	for _, a := range artifacts {
		status := "balanced"
		if !a.Outcome.Balanced() {
			status = "NOT balanced (retry cap reached)"
		}
		fmt.Fprintf(stdout, "Run %d: %s after %d iterations, set sizes %v -> %s\n",
			a.Outcome.Manifest.RunNumber, status, a.Outcome.Iterations,
			partition.Sizes(a.Outcome.Subsets), a.Paths.Data)
	}
	return nil
}

// newReader configures the input reader from the sheet and delimiter flags
func newReader(opts options, logger *internal.Logger) (ports.DatasetReader, error) {
	reader := excel.NewDataReader(logger)
	reader.Sheet = opts.sheet
	if opts.delimiter != "" {
		delimiter, err := parseDelimiter(opts.delimiter)
		if err != nil {
			return nil, err
		}
		reader.Delimiter = delimiter
	}
	return reader, nil
}

// parseDelimiter accepts a single character or the words tab, comma, semicolon
func parseDelimiter(s string) (rune, error) {
	switch s {
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, errors.ConfigInvalidf("delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
