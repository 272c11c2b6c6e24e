package pipeline

import (
	"github.com/YuminosukeSato/salaryforest/core/model"
	"github.com/YuminosukeSato/salaryforest/linear"
	"github.com/YuminosukeSato/salaryforest/pkg/errors"
	"github.com/YuminosukeSato/salaryforest/sklearn/ensemble"
	"github.com/YuminosukeSato/salaryforest/sklearn/tree"
)

// Regressor is any back end that can be fitted on the training split and
// queried on the test split. Back ends that also implement
// model.FeatureImporter feed the feature importance figure.
type Regressor = model.Regressor

// NewRegressor builds the configured back end seeded with randomState.
func NewRegressor(cfg EstimatorConfig, randomState int64) (Regressor, error) {
	switch cfg.Kind {
	case BackendRandomForest:
		return ensemble.NewRandomForestRegressor(
			ensemble.WithNEstimators(cfg.NEstimators),
			ensemble.WithMaxDepth(cfg.MaxDepth),
			ensemble.WithMinSamplesSplit(cfg.MinSamplesSplit),
			ensemble.WithMinSamplesLeaf(cfg.MinSamplesLeaf),
			ensemble.WithMaxFeatures(cfg.MaxFeatures),
			ensemble.WithNJobs(cfg.NJobs),
			ensemble.WithRandomState(randomState),
		), nil
	case BackendDecisionTree:
		return tree.NewDecisionTreeRegressor(
			tree.WithMaxDepth(cfg.MaxDepth),
			tree.WithMinSamplesSplit(cfg.MinSamplesSplit),
			tree.WithMinSamplesLeaf(cfg.MinSamplesLeaf),
			tree.WithMaxFeatures(cfg.MaxFeatures),
			tree.WithRandomState(randomState),
		), nil
	case BackendLinearRegression:
		return linear.NewLinearRegression(), nil
	default:
		return nil, errors.Wrapf(errors.ErrUnknownBackend, "estimator kind %q", cfg.Kind)
	}
}
