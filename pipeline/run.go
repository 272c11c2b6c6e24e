// Package pipeline wires the salary model stages into a single run:
// generate, encode, split, train, predict, evaluate and visualize.
package pipeline

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/salaryforest/core/model"
	"github.com/YuminosukeSato/salaryforest/datasets"
	"github.com/YuminosukeSato/salaryforest/metrics"
	"github.com/YuminosukeSato/salaryforest/pkg/errors"
	"github.com/YuminosukeSato/salaryforest/pkg/log"
	"github.com/YuminosukeSato/salaryforest/sklearn/model_selection"
	"github.com/YuminosukeSato/salaryforest/visualization"
)

// Stage names used in logs and StageError.
const (
	StageGenerate      = "generate"
	StageEncode        = "encode"
	StageSplit         = "split"
	StageCrossValidate = "cross_validate"
	StageTrain         = "train"
	StagePredict       = "predict"
	StageEvaluate      = "evaluate"
	StageVisualize     = "visualize"
	StageSave          = "save"
)

// Result is everything a run produced.
type Result struct {
	RunID  string
	Config Config

	Employees datasets.Employees
	Frame     *datasets.EncodedFrame
	Split     *model_selection.Split

	Actual      []float64 // test targets in split order
	Predictions []float64
	Importances []float64
	Metrics     metrics.Report
	CVScores    []float64 // nil unless cross-validation ran

	Figures     visualization.Figures
	FigurePaths []string
}

type runOptions struct {
	regressor Regressor
	dataRand  *rand.Rand
	logger    log.Logger
}

// RunOption customizes Run.
type RunOption func(*runOptions)

// WithRegressor replaces the configured back end.
func WithRegressor(r Regressor) RunOption {
	return func(o *runOptions) { o.regressor = r }
}

// WithDataRand supplies the generator used for data and noise draws,
// overriding Config.DataSeed.
func WithDataRand(r *rand.Rand) RunOption {
	return func(o *runOptions) { o.dataRand = r }
}

// WithLogger replaces the pipeline logger.
func WithLogger(l log.Logger) RunOption {
	return func(o *runOptions) { o.logger = l }
}

// Run executes every stage in order. The first failing stage aborts the run
// and its error is returned wrapped in a StageError.
func Run(cfg Config, opts ...RunOption) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := runOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	res := &Result{RunID: uuid.NewString(), Config: cfg}
	logger := o.logger
	if logger == nil {
		logger = log.GetLoggerWithName("pipeline")
	}
	logger = logger.With(log.RunIDKey, res.RunID)

	p := &runner{cfg: cfg, opts: o, res: res, logger: logger}
	stages := []struct {
		name string
		fn   func() error
	}{
		{StageGenerate, p.generate},
		{StageEncode, p.encode},
		{StageSplit, p.split},
		{StageCrossValidate, p.crossValidate},
		{StageTrain, p.train},
		{StagePredict, p.predict},
		{StageEvaluate, p.evaluate},
		{StageVisualize, p.visualize},
		{StageSave, p.save},
	}

	start := time.Now()
	for _, s := range stages {
		if err := p.stage(s.name, s.fn); err != nil {
			return res, err
		}
	}
	logger.Info("Run completed",
		log.R2ScoreKey, res.Metrics.R2,
		log.MAEKey, res.Metrics.MAE,
		log.MSEKey, res.Metrics.MSE,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}

type runner struct {
	cfg    Config
	opts   runOptions
	res    *Result
	logger log.Logger

	regressor Regressor
}

func (p *runner) stage(name string, fn func() error) error {
	l := p.logger.With(log.StageKey, name)
	start := time.Now()
	l.Debug("Stage started")
	if err := fn(); err != nil {
		l.Error("Stage failed", err)
		return errors.NewStageError(name, err)
	}
	l.Debug("Stage finished", log.DurationMsKey, time.Since(start).Milliseconds())
	return nil
}

// dataRand returns the generator for feature and noise draws.
func (p *runner) dataRand() *rand.Rand {
	if p.opts.dataRand != nil {
		return p.opts.dataRand
	}
	if p.cfg.DataSeed != nil {
		s := *p.cfg.DataSeed
		return rand.New(rand.NewPCG(s, s))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func (p *runner) generate() error {
	es, err := datasets.Generate(p.cfg.Records, p.dataRand())
	if err != nil {
		return err
	}
	p.res.Employees = es
	p.logger.Info("Dataset generated",
		log.SamplesKey, len(es),
		"data.seeded", p.cfg.DataSeed != nil || p.opts.dataRand != nil,
	)
	return nil
}

func (p *runner) encode() error {
	f, err := datasets.Encode(p.res.Employees)
	if err != nil {
		return err
	}
	p.res.Frame = f
	return nil
}

func (p *runner) split() error {
	s, err := model_selection.TrainTestSplit(p.res.Frame.Features(), p.res.Frame.Target(),
		model_selection.WithTestSize(p.cfg.TestSize),
		model_selection.WithRandomState(p.cfg.RandomState),
	)
	if err != nil {
		return err
	}
	p.res.Split = s
	p.logger.Info("Data split",
		log.TrainSizeKey, len(s.TrainIndex),
		log.TestSizeKey, len(s.TestIndex),
		log.RandomSeedKey, p.cfg.RandomState,
	)
	return nil
}

func (p *runner) crossValidate() error {
	if p.cfg.CVFolds < 2 {
		return nil
	}
	// a substituted back end cannot be re-created per fold
	if p.opts.regressor != nil {
		p.logger.Warn("Cross-validation skipped for a custom regressor")
		return nil
	}
	kf := model_selection.NewKFold(p.cfg.CVFolds, true, p.cfg.RandomState)
	scores, err := model_selection.CrossValScore(func() (model.Regressor, error) {
		return NewRegressor(p.cfg.Estimator, p.cfg.RandomState)
	}, p.res.Split.XTrain, p.res.Split.YTrain, kf)
	if err != nil {
		return err
	}
	p.res.CVScores = scores
	p.logger.Info("Cross-validation completed",
		"cv.folds", len(scores),
		"cv.mean_r2", stat.Mean(scores, nil),
		"cv.std_r2", stat.StdDev(scores, nil),
	)
	return nil
}

func (p *runner) train() error {
	r := p.opts.regressor
	if r == nil {
		var err error
		if r, err = NewRegressor(p.cfg.Estimator, p.cfg.RandomState); err != nil {
			return err
		}
	}
	if err := r.Fit(p.res.Split.XTrain, p.res.Split.YTrain); err != nil {
		return err
	}
	p.regressor = r
	return nil
}

func (p *runner) predict() error {
	pred, err := p.regressor.Predict(p.res.Split.XTest)
	if err != nil {
		return err
	}
	p.res.Predictions = column(pred)
	p.res.Actual = column(p.res.Split.YTest)

	_, nFeatures := p.res.Split.XTrain.Dims()
	if fi, ok := p.regressor.(model.FeatureImporter); ok {
		p.res.Importances = fi.FeatureImportances()
	}
	if len(p.res.Importances) != nFeatures {
		p.logger.Warn("Regressor reports no feature importances")
		p.res.Importances = make([]float64, nFeatures)
	}
	return nil
}

func (p *runner) evaluate() error {
	pred := mat.NewDense(len(p.res.Predictions), 1, p.res.Predictions)
	rep, err := metrics.Evaluate(p.res.Split.YTest, pred)
	if err != nil {
		return err
	}
	p.res.Metrics = rep
	p.logger.Info("Model evaluated",
		log.PhaseKey, log.PhaseTesting,
		log.R2ScoreKey, rep.R2,
		log.MAEKey, rep.MAE,
		log.MSEKey, rep.MSE,
		log.RMSEKey, rep.RMSE,
		log.MAPEKey, rep.MAPE,
		log.ExplainedVarianceKey, rep.ExplainedVariance,
	)
	return nil
}

func (p *runner) visualize() error {
	figs, err := visualization.Build(visualization.Input{
		Actual:       p.res.Actual,
		Predicted:    p.res.Predictions,
		Importances:  p.res.Importances,
		FeatureNames: datasets.FeatureNames(),
		Columns:      p.res.Frame.Names(),
		Data:         p.res.Frame.Matrix(),
	})
	if err != nil {
		return err
	}
	p.res.Figures = figs
	return nil
}

func (p *runner) save() error {
	if p.cfg.Output.PlotsDir == "" {
		return nil
	}
	paths, err := p.res.Figures.Save(p.cfg.Output.PlotsDir, p.cfg.Output.Format)
	p.res.FigurePaths = paths
	if err != nil {
		return err
	}
	p.logger.Info("Figures saved",
		log.PhaseKey, log.PhaseReporting,
		log.PathKey, p.cfg.Output.PlotsDir,
		"figures.count", len(paths),
	)
	return nil
}

func column(m mat.Matrix) []float64 {
	r, _ := m.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = m.At(i, 0)
	}
	return out
}
