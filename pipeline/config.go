package pipeline

import (
	"os"
	"strings"

	"github.com/YuminosukeSato/salaryforest/pkg/errors"
	"github.com/YuminosukeSato/salaryforest/pkg/log"
	"gopkg.in/yaml.v3"
)

// Estimator back ends.
const (
	BackendRandomForest     = "random_forest"
	BackendDecisionTree     = "decision_tree"
	BackendLinearRegression = "linear_regression"
)

// Config threads every run parameter through the pipeline stages.
type Config struct {
	Records int `yaml:"records"`

	// DataSeed seeds feature generation and salary noise. When nil the data
	// is drawn from an unseeded source and differs between runs.
	DataSeed *uint64 `yaml:"data_seed,omitempty"`

	TestSize    float64 `yaml:"test_size"`
	RandomState int64   `yaml:"random_state"`

	// CVFolds enables k-fold cross-validation on the training split when >= 2.
	CVFolds int `yaml:"cv_folds"`

	Estimator EstimatorConfig `yaml:"estimator"`
	Output    OutputConfig    `yaml:"output"`
	Log       LogConfig       `yaml:"log"`
}

// EstimatorConfig selects and parameterizes the regression back end.
type EstimatorConfig struct {
	Kind            string `yaml:"kind"`
	NEstimators     int    `yaml:"n_estimators"`
	MaxDepth        int    `yaml:"max_depth"`
	MinSamplesSplit int    `yaml:"min_samples_split"`
	MinSamplesLeaf  int    `yaml:"min_samples_leaf"`
	MaxFeatures     int    `yaml:"max_features"`
	NJobs           int    `yaml:"n_jobs"`
}

// OutputConfig controls console and figure output.
type OutputConfig struct {
	HeadRows int    `yaml:"head_rows"`
	PlotsDir string `yaml:"plots_dir"` // empty disables saving figures
	Format   string `yaml:"format"`
}

// LogConfig configures pkg/log.SetupLogger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the reference run: 100 records, a 20% test split,
// 100 trees and random state 42.
func DefaultConfig() Config {
	return Config{
		Records:     100,
		TestSize:    0.2,
		RandomState: 42,
		Estimator: EstimatorConfig{
			Kind:            BackendRandomForest,
			NEstimators:     100,
			MinSamplesSplit: 2,
			MinSamplesLeaf:  1,
			NJobs:           1,
		},
		Output: OutputConfig{
			HeadRows: 5,
			Format:   "png",
		},
		Log: LogConfig{
			Level:  "info",
			Format: log.FormatConsole,
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Keys missing from the
// file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate checks every field and returns the first ValidationError.
func (c Config) Validate() error {
	if c.Records <= 0 {
		return errors.NewValidationError("records", "must be positive", c.Records)
	}
	if c.TestSize <= 0 || c.TestSize >= 1 {
		return errors.NewValidationError("test_size", "must be in (0, 1)", c.TestSize)
	}
	if c.CVFolds < 0 || c.CVFolds == 1 {
		return errors.NewValidationError("cv_folds", "must be 0 (off) or at least 2", c.CVFolds)
	}
	if err := c.Estimator.Validate(); err != nil {
		return err
	}
	if c.Output.HeadRows < 0 {
		return errors.NewValidationError("output.head_rows", "must be non-negative", c.Output.HeadRows)
	}
	switch strings.ToLower(c.Output.Format) {
	case "png", "svg", "pdf":
	default:
		return errors.NewValidationError("output.format", "must be png, svg or pdf", c.Output.Format)
	}
	if _, err := log.ToLogLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case log.FormatConsole, log.FormatJSON, "":
	default:
		return errors.NewValidationError("log.format", "must be console or json", c.Log.Format)
	}
	return nil
}

// Validate checks the estimator parameters.
func (e EstimatorConfig) Validate() error {
	switch e.Kind {
	case BackendRandomForest:
		if e.NEstimators < 1 {
			return errors.NewValidationError("estimator.n_estimators", "must be at least 1", e.NEstimators)
		}
		if e.NJobs == 0 || e.NJobs < -1 {
			return errors.NewValidationError("estimator.n_jobs", "must be positive or -1", e.NJobs)
		}
	case BackendDecisionTree, BackendLinearRegression:
	default:
		return errors.NewValidationError("estimator.kind",
			"must be "+BackendRandomForest+", "+BackendDecisionTree+" or "+BackendLinearRegression, e.Kind)
	}
	if e.MinSamplesSplit < 2 {
		return errors.NewValidationError("estimator.min_samples_split", "must be at least 2", e.MinSamplesSplit)
	}
	if e.MinSamplesLeaf < 1 {
		return errors.NewValidationError("estimator.min_samples_leaf", "must be at least 1", e.MinSamplesLeaf)
	}
	if e.MaxFeatures < 0 {
		return errors.NewValidationError("estimator.max_features", "must be non-negative", e.MaxFeatures)
	}
	return nil
}
