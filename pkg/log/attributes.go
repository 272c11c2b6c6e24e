// Package log defines standard attribute keys for pipeline and estimator logs.
//
// Keys follow a dotted hierarchy ("model.name", "data.samples") so records
// from different stages can be filtered the same way.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator type.
	// Examples: "RandomForestRegressor", "LabelEncoder"
	ModelNameKey = "model.name"

	// EstimatorIDKey identifies one estimator instance.
	EstimatorIDKey = "estimator.id"

	// OperationKey is the operation being performed ("fit", "predict", ...).
	OperationKey = "ml.operation"

	// ComponentKey identifies the package emitting the record.
	ComponentKey = "ml.component"

	// PhaseKey is the lifecycle phase ("training", "testing", ...).
	PhaseKey = "ml.phase"

	// StageKey names the pipeline stage ("generate", "encode", ...).
	StageKey = "pipeline.stage"

	// RunIDKey identifies one pipeline run.
	RunIDKey = "pipeline.run_id"
)

// Data Shape and Characteristics
const (
	// SamplesKey is the number of rows being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns.
	FeaturesKey = "data.features"

	// ClassesKey is the number of distinct categories seen by an encoder.
	ClassesKey = "data.classes"

	// ColumnKey names the column being processed.
	ColumnKey = "data.column"

	// TrainSizeKey and TestSizeKey record the split sizes.
	TrainSizeKey = "data.train_size"
	TestSizeKey  = "data.test_size"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// R2ScoreKey records the coefficient of determination.
	R2ScoreKey = "metrics.r2_score"

	// MAEKey records the mean absolute error.
	MAEKey = "metrics.mae"

	// MSEKey records the mean squared error.
	MSEKey = "metrics.mse"

	RMSEKey              = "metrics.rmse"
	MAPEKey              = "metrics.mape"
	ExplainedVarianceKey = "metrics.explained_variance"
)

// Hyperparameters and Configuration
const (
	// EstimatorsKey records the number of trees in an ensemble.
	EstimatorsKey = "hyperparams.n_estimators"

	// MaxDepthKey records the tree depth limit.
	MaxDepthKey = "hyperparams.max_depth"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"

	// JobsKey records the requested parallelism.
	JobsKey = "config.n_jobs"

	// PathKey records a file or directory path.
	PathKey = "config.path"
)

// Standard attribute values.
const (
	OperationFit          = "fit"
	OperationPredict      = "predict"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationScore        = "score"
	OperationSplit        = "split"
	OperationRender       = "render"

	PhaseTraining      = "training"
	PhaseTesting       = "testing"
	PhasePreprocessing = "preprocessing"
	PhaseReporting     = "reporting"
)
