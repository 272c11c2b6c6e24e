// Package ensemble implements bagged tree ensembles.
package ensemble

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/YuminosukeSato/salaryforest/core/model"
	"github.com/YuminosukeSato/salaryforest/core/parallel"
	"github.com/YuminosukeSato/salaryforest/metrics"
	"github.com/YuminosukeSato/salaryforest/pkg/errors"
	"github.com/YuminosukeSato/salaryforest/pkg/log"
	"github.com/YuminosukeSato/salaryforest/sklearn/tree"
	"gonum.org/v1/gonum/mat"
)

var (
	_ model.Regressor       = (*RandomForestRegressor)(nil)
	_ model.Scorer          = (*RandomForestRegressor)(nil)
	_ model.FeatureImporter = (*RandomForestRegressor)(nil)
	_ model.ParamsAccessor  = (*RandomForestRegressor)(nil)
)

// RandomForestRegressor averages bootstrapped CART regression trees.
type RandomForestRegressor struct {
	model.BaseEstimator

	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int
	Bootstrap       bool
	RandomState     int64
	NJobs           int

	estimators  []*tree.DecisionTreeRegressor
	importances []float64

	logger log.Logger
}

// NewRandomForestRegressor returns a forest with scikit-learn defaults:
// 100 trees, bootstrap on, every feature considered at each split.
func NewRandomForestRegressor(opts ...Option) *RandomForestRegressor {
	rf := &RandomForestRegressor{
		NEstimators:     100,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
		NJobs:           1,
		logger: log.GetLoggerWithName("ensemble.forest").With(
			log.ModelNameKey, "RandomForestRegressor",
		),
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

func (rf *RandomForestRegressor) validateParams() error {
	if rf.NEstimators < 1 {
		return errors.NewValidationError("n_estimators", "must be at least 1", rf.NEstimators)
	}
	if rf.NJobs == 0 || rf.NJobs < -1 {
		return errors.NewValidationError("n_jobs", "must be positive or -1", rf.NJobs)
	}
	return nil
}

// Fit trains NEstimators trees on bootstrap samples of (X, y).
//
// Tree seeds are drawn from RandomState before any tree is grown, so the
// fitted forest does not depend on NJobs.
func (rf *RandomForestRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "RandomForestRegressor.Fit")

	if err := rf.validateParams(); err != nil {
		return err
	}
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.NewModelError("RandomForestRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	yRows, _ := y.Dims()
	if yRows != n {
		return errors.NewDimensionError("RandomForestRegressor.Fit", n, yRows, 0)
	}

	start := time.Now()
	workers := parallel.Workers(rf.NJobs, rf.NEstimators)
	rf.logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, n,
		log.FeaturesKey, p,
		log.EstimatorsKey, rf.NEstimators,
		log.RandomSeedKey, rf.RandomState,
		log.JobsKey, workers,
	)

	master := rand.New(rand.NewPCG(uint64(rf.RandomState), uint64(rf.RandomState)))
	seeds := make([]uint64, rf.NEstimators)
	for i := range seeds {
		seeds[i] = master.Uint64()
	}

	rf.Reset()
	trees := make([]*tree.DecisionTreeRegressor, rf.NEstimators)
	errs := make([]error, rf.NEstimators)
	parallel.ParallelizeN(rf.NEstimators, workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			op := fmt.Sprintf("RandomForestRegressor.Fit[tree %d]", i)
			errs[i] = errors.SafeExecute(op, func() error {
				t, err := rf.fitTree(X, y, n, seeds[i])
				trees[i] = t
				return err
			})
		}
	})
	for i, e := range errs {
		if e != nil {
			return errors.NewModelError("RandomForestRegressor.Fit", fmt.Sprintf("tree %d", i), e)
		}
	}

	rf.estimators = trees
	rf.importances = meanImportances(trees, p)
	rf.SetFitted(p)

	rf.logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.EstimatorsKey, len(trees),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

func (rf *RandomForestRegressor) fitTree(X, y mat.Matrix, n int, seed uint64) (*tree.DecisionTreeRegressor, error) {
	t := tree.NewDecisionTreeRegressor(
		tree.WithMaxDepth(rf.MaxDepth),
		tree.WithMinSamplesSplit(rf.MinSamplesSplit),
		tree.WithMinSamplesLeaf(rf.MinSamplesLeaf),
		tree.WithMaxFeatures(rf.MaxFeatures),
		tree.WithRandomState(int64(seed>>1)),
	)

	idx := make([]int, n)
	if rf.Bootstrap {
		r := rand.New(rand.NewPCG(seed, seed))
		for j := range idx {
			idx[j] = r.IntN(n)
		}
	} else {
		for j := range idx {
			idx[j] = j
		}
	}
	if err := t.FitSamples(X, y, idx); err != nil {
		return nil, err
	}
	return t, nil
}

// meanImportances averages the importances of trees that split at least
// once and renormalizes the result.
func meanImportances(trees []*tree.DecisionTreeRegressor, p int) []float64 {
	out := make([]float64, p)
	used := 0
	for _, t := range trees {
		imp := t.GetFeatureImportances()
		var s float64
		for _, v := range imp {
			s += v
		}
		if s == 0 {
			continue
		}
		for j, v := range imp {
			out[j] += v
		}
		used++
	}
	if used == 0 {
		return out
	}
	var total float64
	for j := range out {
		out[j] /= float64(used)
		total += out[j]
	}
	for j := range out {
		out[j] /= total
	}
	return out
}

// Predict returns the mean tree prediction for each row of X.
func (rf *RandomForestRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !rf.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestRegressor", "Predict")
	}
	r, c := X.Dims()
	if c != rf.NFeatures {
		return nil, errors.NewDimensionError("RandomForestRegressor.Predict", rf.NFeatures, c, 1)
	}

	preds := make([]mat.Matrix, len(rf.estimators))
	errs := make([]error, len(rf.estimators))
	parallel.ParallelizeN(len(rf.estimators), parallel.Workers(rf.NJobs, len(rf.estimators)), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			preds[i], errs[i] = rf.estimators[i].Predict(X)
		}
	})

	out := mat.NewDense(r, 1, nil)
	for i, p := range preds {
		if errs[i] != nil {
			return nil, errors.Wrapf(errs[i], "tree %d", i)
		}
		for row := 0; row < r; row++ {
			out.Set(row, 0, out.At(row, 0)+p.At(row, 0))
		}
	}
	out.Scale(1/float64(len(preds)), out)

	rf.logger.Debug("Prediction completed",
		log.OperationKey, log.OperationPredict,
		log.SamplesKey, r,
	)
	return out, nil
}

// Score returns the R² of the predictions on X against y.
func (rf *RandomForestRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := rf.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, pred)
}

// FeatureImportances returns the forest's normalized importances, or nil
// before Fit.
func (rf *RandomForestRegressor) FeatureImportances() []float64 {
	if !rf.IsFitted() {
		return nil
	}
	return append([]float64(nil), rf.importances...)
}

// Estimators returns the fitted trees.
func (rf *RandomForestRegressor) Estimators() []*tree.DecisionTreeRegressor {
	return append([]*tree.DecisionTreeRegressor(nil), rf.estimators...)
}

// GetParams returns the hyperparameters.
func (rf *RandomForestRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":      rf.NEstimators,
		"max_depth":         rf.MaxDepth,
		"min_samples_split": rf.MinSamplesSplit,
		"min_samples_leaf":  rf.MinSamplesLeaf,
		"max_features":      rf.MaxFeatures,
		"bootstrap":         rf.Bootstrap,
		"random_state":      rf.RandomState,
		"n_jobs":            rf.NJobs,
	}
}

// SetParams updates hyperparameters.
func (rf *RandomForestRegressor) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "n_estimators", "max_depth", "min_samples_split", "min_samples_leaf", "max_features", "n_jobs":
			v, ok := value.(int)
			if !ok {
				return errors.NewValidationError(key, "must be an int", value)
			}
			switch key {
			case "n_estimators":
				rf.NEstimators = v
			case "max_depth":
				rf.MaxDepth = v
			case "min_samples_split":
				rf.MinSamplesSplit = v
			case "min_samples_leaf":
				rf.MinSamplesLeaf = v
			case "max_features":
				rf.MaxFeatures = v
			case "n_jobs":
				rf.NJobs = v
			}
		case "bootstrap":
			v, ok := value.(bool)
			if !ok {
				return errors.NewValidationError(key, "must be a bool", value)
			}
			rf.Bootstrap = v
		case "random_state":
			switch v := value.(type) {
			case int64:
				rf.RandomState = v
			case int:
				rf.RandomState = int64(v)
			default:
				return errors.NewValidationError(key, "must be an integer", value)
			}
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return rf.validateParams()
}
