// Package linear は最小二乗法による線形回帰のベースラインを提供します。
package linear

import (
	"math"

	"github.com/YuminosukeSato/salaryforest/core/model"
	"github.com/YuminosukeSato/salaryforest/core/parallel"
	"github.com/YuminosukeSato/salaryforest/metrics"
	"github.com/YuminosukeSato/salaryforest/pkg/errors"
	"github.com/YuminosukeSato/salaryforest/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// 並列処理の閾値（この行数以下では逐次処理）
const parallelThreshold = 1000

var (
	_ model.Regressor      = (*LinearRegression)(nil)
	_ model.Scorer         = (*LinearRegression)(nil)
	_ model.ParamsAccessor = (*LinearRegression)(nil)
)

// LinearRegression は通常の最小二乗線形回帰モデル
type LinearRegression struct {
	model.BaseEstimator

	// FitIntercept が false なら原点を通る直線を当てはめる
	FitIntercept bool

	coef      []float64
	intercept float64
}

// NewLinearRegression は切片ありの線形回帰モデルを作成する
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{FitIntercept: true}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit は [1, X] w = y をQR分解による最小二乗で解く
func (lr *LinearRegression) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "LinearRegression.Fit")

	r, c := X.Dims()
	ry, cy := y.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}
	if err := errors.CheckMatrix("LinearRegression.Fit", X); err != nil {
		return err
	}

	offset := 0
	if lr.FitIntercept {
		offset = 1
	}
	if r < c+offset {
		return errors.NewModelError("LinearRegression.Fit", "underdetermined system",
			errors.Newf("%d samples for %d coefficients", r, c+offset))
	}

	// 切片項のために X の先頭に 1 の列を追加
	design := mat.NewDense(r, c+offset, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			if offset == 1 {
				design.Set(i, 0, 1)
			}
			for j := 0; j < c; j++ {
				design.Set(i, j+offset, X.At(i, j))
			}
		}
	})

	target := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		target.SetVec(i, y.At(i, 0))
	}

	var w mat.VecDense
	if err := w.SolveVec(design, target); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return errors.NewModelError("LinearRegression.Fit", "least squares", err)
		}
		// 条件数 +Inf は三角系が解けず w が未設定のまま。NaN/Inf の解も特異として扱う
		if math.IsInf(float64(cond), 1) ||
			errors.CheckNumericalStability("LinearRegression.Fit", w.RawVector().Data) != nil {
			return errors.NewModelError("LinearRegression.Fit", "singular matrix", errors.ErrSingularMatrix)
		}
		log.GetLoggerWithName("linear").Warn("Ill-conditioned design matrix",
			log.OperationKey, log.OperationFit,
			"condition", float64(cond),
		)
	}

	lr.intercept = 0
	if offset == 1 {
		lr.intercept = w.AtVec(0)
	}
	lr.coef = make([]float64, c)
	for j := range lr.coef {
		lr.coef[j] = w.AtVec(j + offset)
	}
	lr.SetFitted(c)
	return nil
}

// Predict は y = X·coef + intercept を返す
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}
	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	out := mat.NewDense(r, 1, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			pred := lr.intercept
			for j, w := range lr.coef {
				pred += X.At(i, j) * w
			}
			out.Set(i, 0, pred)
		}
	})
	return out, nil
}

// Score は決定係数（R²）を返す
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, pred)
}

// Coefficients は学習された係数のコピーを返す。未学習なら nil
func (lr *LinearRegression) Coefficients() []float64 {
	if !lr.IsFitted() {
		return nil
	}
	return append([]float64(nil), lr.coef...)
}

// Intercept は学習された切片を返す
func (lr *LinearRegression) Intercept() float64 {
	return lr.intercept
}

// GetParams はハイパーパラメータを返す
func (lr *LinearRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{"fit_intercept": lr.FitIntercept}
}

// SetParams はハイパーパラメータを設定する
func (lr *LinearRegression) SetParams(params map[string]interface{}) error {
	for k, v := range params {
		switch k {
		case "fit_intercept":
			b, ok := v.(bool)
			if !ok {
				return errors.NewValidationError(k, "must be a bool", v)
			}
			lr.FitIntercept = b
		default:
			return errors.NewValidationError(k, "unknown parameter", v)
		}
	}
	return nil
}
