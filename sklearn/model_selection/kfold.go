package model_selection

import (
	"fmt"
	"math/rand/v2"

	"github.com/YuminosukeSato/salaryforest/core/model"
	"github.com/YuminosukeSato/salaryforest/metrics"
	"github.com/YuminosukeSato/salaryforest/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Fold は1つの分割の訓練・検証インデックス
type Fold struct {
	TrainIndex []int
	TestIndex  []int
}

// KFold はk分割交差検証の分割器
type KFold struct {
	NSplits     int
	Shuffle     bool
	RandomState int64
}

// NewKFold は新しいKFoldを作成する。nSplits < 2 の場合は5になる
func NewKFold(nSplits int, shuffle bool, randomState int64) *KFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &KFold{NSplits: nSplits, Shuffle: shuffle, RandomState: randomState}
}

// Split は n 行を NSplits 個のフォールドに分ける
// 先頭の n % NSplits 個のフォールドは1件多い
func (kf *KFold) Split(n int) ([]Fold, error) {
	if n < kf.NSplits {
		return nil, errors.NewValidationError("n_splits",
			fmt.Sprintf("cannot be greater than the number of samples (%d)", n), kf.NSplits)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		seed := uint64(kf.RandomState)
		r := rand.New(rand.NewPCG(seed, seed))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]Fold, kf.NSplits)
	foldSize := n / kf.NSplits
	remainder := n % kf.NSplits

	current := 0
	for i := range folds {
		size := foldSize
		if i < remainder {
			size++
		}
		test := append([]int(nil), indices[current:current+size]...)
		train := make([]int, 0, n-size)
		train = append(train, indices[:current]...)
		train = append(train, indices[current+size:]...)
		folds[i] = Fold{TrainIndex: train, TestIndex: test}
		current += size
	}
	return folds, nil
}

// CrossValScore は各フォールドでモデルを学習し、検証側のR²を返す
//
// newEstimator はフォールドごとに未学習のモデルを返す必要がある。
func CrossValScore(newEstimator func() (model.Regressor, error), X, y mat.Matrix, kf *KFold) ([]float64, error) {
	n, nFeatures := X.Dims()
	yRows, yCols := y.Dims()
	if yRows != n {
		return nil, errors.NewDimensionError("CrossValScore", n, yRows, 0)
	}

	folds, err := kf.Split(n)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(folds))
	for i, f := range folds {
		est, err := newEstimator()
		if err != nil {
			return nil, err
		}
		if err := est.Fit(takeRows(X, f.TrainIndex, nFeatures), takeRows(y, f.TrainIndex, yCols)); err != nil {
			return nil, errors.Wrapf(err, "fold %d", i)
		}
		pred, err := est.Predict(takeRows(X, f.TestIndex, nFeatures))
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d", i)
		}
		if scores[i], err = metrics.R2ScoreMatrix(takeRows(y, f.TestIndex, yCols), pred); err != nil {
			return nil, errors.Wrapf(err, "fold %d", i)
		}
	}
	return scores, nil
}
