// Package model_selection はscikit-learn互換のデータ分割と交差検証を提供します。
package model_selection

import (
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/salaryforest/pkg/errors"
	"github.com/YuminosukeSato/salaryforest/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// Split は TrainTestSplit の結果
type Split struct {
	XTrain, XTest *mat.Dense
	YTrain, YTest *mat.Dense

	// TrainIndex と TestIndex は元の行番号
	TrainIndex []int
	TestIndex  []int
}

type splitConfig struct {
	testSize    float64
	randomState int64
	shuffle     bool
}

// SplitOption は TrainTestSplit のオプション
type SplitOption func(*splitConfig)

// WithTestSize はテストデータの割合を (0, 1) で指定する（デフォルト: 0.25）
func WithTestSize(f float64) SplitOption {
	return func(c *splitConfig) { c.testSize = f }
}

// WithRandomState はシャッフルの乱数シードを指定する
func WithRandomState(seed int64) SplitOption {
	return func(c *splitConfig) { c.randomState = seed }
}

// WithShuffle は分割前にシャッフルするかを指定する（デフォルト: true）
func WithShuffle(shuffle bool) SplitOption {
	return func(c *splitConfig) { c.shuffle = shuffle }
}

// TrainTestSplit は X, y を訓練用とテスト用に分割する
//
// テスト件数は ceil(testSize * n)、訓練件数は残り全部。
// 行番号を乱数シードで並べ替え、先頭 n_test 件をテストに割り当てる。
// 訓練とテストは互いに素で、合わせると全行を覆う。
//
// 使用例:
//
//	s, err := model_selection.TrainTestSplit(X, y,
//	    model_selection.WithTestSize(0.2),
//	    model_selection.WithRandomState(42),
//	)
func TrainTestSplit(X, y mat.Matrix, opts ...SplitOption) (*Split, error) {
	cfg := splitConfig{testSize: 0.25, shuffle: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	n, nFeatures := X.Dims()
	yRows, yCols := y.Dims()
	if n == 0 || nFeatures == 0 {
		return nil, errors.NewModelError("TrainTestSplit", "empty data", errors.ErrEmptyData)
	}
	if yRows != n {
		return nil, errors.NewDimensionError("TrainTestSplit", n, yRows, 0)
	}
	if cfg.testSize <= 0 || cfg.testSize >= 1 || math.IsNaN(cfg.testSize) {
		return nil, errors.NewValidationError("test_size", "must be in (0, 1)", cfg.testSize)
	}

	nTest := int(math.Ceil(cfg.testSize * float64(n)))
	nTrain := n - nTest
	if nTrain <= 0 || nTest <= 0 {
		return nil, errors.NewValidationError("test_size",
			"resulting train or test set would be empty", cfg.testSize)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if cfg.shuffle {
		seed := uint64(cfg.randomState)
		r := rand.New(rand.NewPCG(seed, seed))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	s := &Split{
		TestIndex:  append([]int(nil), indices[:nTest]...),
		TrainIndex: append([]int(nil), indices[nTest:]...),
	}
	s.XTest = takeRows(X, s.TestIndex, nFeatures)
	s.XTrain = takeRows(X, s.TrainIndex, nFeatures)
	s.YTest = takeRows(y, s.TestIndex, yCols)
	s.YTrain = takeRows(y, s.TrainIndex, yCols)

	log.GetLoggerWithName("model_selection").Debug("Data split",
		log.OperationKey, log.OperationSplit,
		log.SamplesKey, n,
		log.TrainSizeKey, nTrain,
		log.TestSizeKey, nTest,
		log.RandomSeedKey, cfg.randomState,
	)
	return s, nil
}

// takeRows は指定した行を新しい行列にコピーする
func takeRows(m mat.Matrix, rows []int, cols int) *mat.Dense {
	out := mat.NewDense(len(rows), cols, nil)
	for i, r := range rows {
		for j := 0; j < cols; j++ {
			out.Set(i, j, m.At(r, j))
		}
	}
	return out
}
