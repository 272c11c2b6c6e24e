package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/salaryforest/datasets"
	"github.com/YuminosukeSato/salaryforest/pipeline"
	"github.com/YuminosukeSato/salaryforest/pkg/log"
	"github.com/YuminosukeSato/salaryforest/report"
)

type flags struct {
	configPath  string
	records     int
	seed        int64
	dataSeed    uint64
	testSize    float64
	cvFolds     int
	estimators  int
	maxDepth    int
	jobs        int
	backend     string
	headRows    int
	plotsDir    string
	format      string
	logLevel    string
	logFormat   string
	importances bool
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "salaryforest",
		Short:         "Train and evaluate a salary regression model on synthetic employee data",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			if err := log.SetupLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr()); err != nil {
				return err
			}
			res, err := pipeline.Run(cfg)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res, f.importances)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "YAML config file")
	fl.IntVar(&f.records, "records", 0, "number of synthetic records")
	fl.Int64Var(&f.seed, "seed", 0, "random state for the split and the model")
	fl.Uint64Var(&f.dataSeed, "data-seed", 0, "seed for data generation and salary noise (unseeded when omitted)")
	fl.Float64Var(&f.testSize, "test-size", 0, "fraction of records held out for testing")
	fl.IntVar(&f.cvFolds, "cv-folds", 0, "k-fold cross-validation on the training split (0 disables)")
	fl.IntVar(&f.estimators, "estimators", 0, "number of trees in the forest")
	fl.IntVar(&f.maxDepth, "max-depth", 0, "maximum tree depth (0 is unlimited)")
	fl.IntVar(&f.jobs, "jobs", 0, "trees fitted concurrently (-1 uses every core)")
	fl.StringVar(&f.backend, "backend", "", "regressor back end: random_forest, decision_tree or linear_regression")
	fl.IntVar(&f.headRows, "head", 0, "rows shown in the head and tail dumps")
	fl.StringVar(&f.plotsDir, "plots-dir", "", "directory for the figures (figures are not saved when empty)")
	fl.StringVar(&f.format, "format", "", "figure format: png, svg or pdf")
	fl.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	fl.StringVar(&f.logFormat, "log-format", "", "console or json")
	fl.BoolVar(&f.importances, "importances", false, "print the feature importance table")
	return cmd
}

// resolveConfig layers the config file over the defaults and explicit flags
// over both.
func resolveConfig(cmd *cobra.Command, f flags) (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()
	if f.configPath != "" {
		var err error
		if cfg, err = pipeline.LoadConfig(f.configPath); err != nil {
			return cfg, err
		}
	}

	set := cmd.Flags().Changed
	if set("records") {
		cfg.Records = f.records
	}
	if set("seed") {
		cfg.RandomState = f.seed
	}
	if set("data-seed") {
		s := f.dataSeed
		cfg.DataSeed = &s
	}
	if set("test-size") {
		cfg.TestSize = f.testSize
	}
	if set("cv-folds") {
		cfg.CVFolds = f.cvFolds
	}
	if set("estimators") {
		cfg.Estimator.NEstimators = f.estimators
	}
	if set("max-depth") {
		cfg.Estimator.MaxDepth = f.maxDepth
	}
	if set("jobs") {
		cfg.Estimator.NJobs = f.jobs
	}
	if set("backend") {
		cfg.Estimator.Kind = f.backend
	}
	if set("head") {
		cfg.Output.HeadRows = f.headRows
	}
	if set("plots-dir") {
		cfg.Output.PlotsDir = f.plotsDir
	}
	if set("format") {
		cfg.Output.Format = f.format
	}
	if set("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if set("log-format") {
		cfg.Log.Format = f.logFormat
	}
	return cfg, cfg.Validate()
}

func printResult(w io.Writer, res *pipeline.Result, importances bool) error {
	k := res.Config.Output.HeadRows
	if err := report.WriteHead(w, res.Frame, k); err != nil {
		return err
	}
	if err := report.WriteTail(w, res.Frame, k); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := report.WriteMetrics(w, res.Metrics); err != nil {
		return err
	}
	if importances {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if err := report.WriteImportances(w, datasets.FeatureNames(), res.Importances); err != nil {
			return err
		}
	}
	for _, p := range res.FigurePaths {
		if _, err := fmt.Fprintf(w, "saved %s\n", p); err != nil {
			return err
		}
	}
	return nil
}
