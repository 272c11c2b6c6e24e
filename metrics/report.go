package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Report はテストセットに対する回帰評価の結果
type Report struct {
	R2   float64 `json:"r2" yaml:"r2"`
	MAE  float64 `json:"mae" yaml:"mae"`
	MSE  float64 `json:"mse" yaml:"mse"`
	RMSE float64 `json:"rmse" yaml:"rmse"`

	// MAPE と ExplainedVariance は定義できない入力では NaN
	MAPE              float64 `json:"mape" yaml:"mape"`
	ExplainedVariance float64 `json:"explained_variance" yaml:"explained_variance"`
}

// Evaluate は yTrue と yPred（いずれも n×1）から R²、MAE、MSE、RMSE、
// MAPE、説明分散スコアを計算する
func Evaluate(yTrue, yPred mat.Matrix) (Report, error) {
	t, p, err := matrixPair("Evaluate", yTrue, yPred)
	if err != nil {
		return Report{}, err
	}

	var rep Report
	if rep.R2, err = R2Score(t, p); err != nil {
		return Report{}, err
	}
	if rep.MAE, err = MAE(t, p); err != nil {
		return Report{}, err
	}
	if rep.MSE, err = MSE(t, p); err != nil {
		return Report{}, err
	}
	if rep.RMSE, err = RMSE(t, p); err != nil {
		return Report{}, err
	}
	// 入力は検証済みなので、残るエラーは値が定義できない場合のみ
	if rep.MAPE, err = MAPE(t, p); err != nil {
		rep.MAPE = math.NaN()
	}
	if rep.ExplainedVariance, err = ExplainedVarianceScore(t, p); err != nil {
		rep.ExplainedVariance = math.NaN()
	}
	return rep, nil
}

// Residuals は yTrue - yPred を返す
func Residuals(yTrue, yPred mat.Matrix) ([]float64, error) {
	t, p, err := matrixPair("Residuals", yTrue, yPred)
	if err != nil {
		return nil, err
	}
	out := make([]float64, t.Len())
	for i := range out {
		out[i] = t.AtVec(i) - p.AtVec(i)
	}
	return out, nil
}
