// Package preprocessing はscikit-learn互換の前処理器を提供します。
package preprocessing

import (
	"fmt"
	"sort"

	"github.com/YuminosukeSato/salaryforest/core/model"
	"github.com/YuminosukeSato/salaryforest/pkg/errors"
	"github.com/YuminosukeSato/salaryforest/pkg/log"
)

// LabelEncoder はscikit-learn互換のラベルエンコーダー
// カテゴリ文字列を 0..k-1 の整数コードに変換する
type LabelEncoder struct {
	model.BaseEstimator

	// classes は辞書順にソートされた一意なラベル
	classes []string

	// index はラベルからコードへの逆引き
	index map[string]int

	logger log.Logger
}

// NewLabelEncoder は新しいLabelEncoderを作成する
//
// 使用例:
//
//	enc := preprocessing.NewLabelEncoder()
//	codes, err := enc.FitTransform([]string{"PhD", "Bachelors", "PhD"})
//	// codes == [1 0 1], enc.Classes() == [Bachelors PhD]
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{
		logger: log.GetLoggerWithName("preprocessing.label_encoder").With(
			log.ModelNameKey, "LabelEncoder",
		),
	}
}

// Fit はラベルの一覧からクラスを学習する
//
// パラメータ:
//   - labels: 学習に使うラベル列
//
// 戻り値:
//   - error: labels が空の場合
func (e *LabelEncoder) Fit(labels []string) error {
	if len(labels) == 0 {
		return errors.NewModelError("LabelEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	seen := make(map[string]struct{}, len(labels))
	classes := make([]string, 0)
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		classes = append(classes, l)
	}
	// scikit-learnと同じく辞書順
	sort.Strings(classes)

	e.classes = classes
	e.index = make(map[string]int, len(classes))
	for i, c := range classes {
		e.index[c] = i
	}
	e.SetFitted(1)

	e.logger.Debug("LabelEncoder fitted",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, len(labels),
		log.ClassesKey, len(classes),
	)
	return nil
}

// Transform はラベルを整数コードに変換する
//
// 戻り値:
//   - []int: Classes() のインデックス
//   - error: 未学習、または未知のラベルを含む場合
func (e *LabelEncoder) Transform(labels []string) ([]int, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "Transform")
	}

	codes := make([]int, len(labels))
	for i, l := range labels {
		code, ok := e.index[l]
		if !ok {
			return nil, errors.NewValueError("LabelEncoder.Transform",
				fmt.Sprintf("y contains previously unseen label: %q", l))
		}
		codes[i] = code
	}
	return codes, nil
}

// FitTransform は学習と変換を一度に行う
func (e *LabelEncoder) FitTransform(labels []string) ([]int, error) {
	if err := e.Fit(labels); err != nil {
		return nil, err
	}
	return e.Transform(labels)
}

// InverseTransform は整数コードを元のラベルに戻す
func (e *LabelEncoder) InverseTransform(codes []int) ([]string, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "InverseTransform")
	}

	labels := make([]string, len(codes))
	for i, c := range codes {
		if c < 0 || c >= len(e.classes) {
			return nil, errors.NewValueError("LabelEncoder.InverseTransform",
				fmt.Sprintf("code %d out of range [0, %d)", c, len(e.classes)))
		}
		labels[i] = e.classes[c]
	}
	return labels, nil
}

// Classes は学習済みクラスのコピーを返す。未学習なら nil
func (e *LabelEncoder) Classes() []string {
	if e.classes == nil {
		return nil
	}
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}
