// Package model はestimatorの共通インターフェースと学習状態を定義します。
package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる。y は n×1 の列ベクトル
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を n×1 行列で返す
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Regressor は回帰モデルのインターフェース
type Regressor interface {
	Fitter
	Predictor
}

// Scorer は決定係数（R²）を計算できるモデル
type Scorer interface {
	Score(X, y mat.Matrix) (float64, error)
}

// FeatureImporter は特徴量重要度を返せるモデル
type FeatureImporter interface {
	// FeatureImportances は合計1に正規化された重要度を返す
	FeatureImportances() []float64
}

// ParamsAccessor はscikit-learn互換のハイパーパラメータ操作
type ParamsAccessor interface {
	GetParams() map[string]interface{}
	SetParams(params map[string]interface{}) error
}
