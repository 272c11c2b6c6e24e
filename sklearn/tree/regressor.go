// Package tree implements CART decision trees.
package tree

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/YuminosukeSato/salaryforest/core/model"
	"github.com/YuminosukeSato/salaryforest/metrics"
	"github.com/YuminosukeSato/salaryforest/pkg/errors"
	"github.com/YuminosukeSato/salaryforest/pkg/log"
	"gonum.org/v1/gonum/mat"
)

const (
	// featureThreshold is the minimum gap between two sorted values for a
	// threshold to be placed between them.
	featureThreshold = 1e-7

	// minImpurity marks a node as pure.
	minImpurity = 1e-7
)

var (
	_ model.Regressor       = (*DecisionTreeRegressor)(nil)
	_ model.Scorer          = (*DecisionTreeRegressor)(nil)
	_ model.FeatureImporter = (*DecisionTreeRegressor)(nil)
	_ model.ParamsAccessor  = (*DecisionTreeRegressor)(nil)
)

// DecisionTreeRegressor is a CART regression tree using the squared error
// criterion.
type DecisionTreeRegressor struct {
	model.BaseEstimator

	MaxDepth            int     // <= 0 means unlimited
	MinSamplesSplit     int     // default 2
	MinSamplesLeaf      int     // default 1
	MaxFeatures         int     // 0 means all features
	MinImpurityDecrease float64 // default 0
	RandomState         int64

	root        *node
	importances []float64
	depth       int
	nLeaves     int

	logger log.Logger
}

// node is a tree node. Samples with x[feature] <= threshold go left.
type node struct {
	isLeaf    bool
	feature   int
	threshold float64
	left      *node
	right     *node

	value    float64 // mean target of the node
	impurity float64 // variance of the node
	samples  int
}

// NewDecisionTreeRegressor returns a regressor with scikit-learn defaults.
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	t := &DecisionTreeRegressor{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		logger: log.GetLoggerWithName("tree").With(
			log.ModelNameKey, "DecisionTreeRegressor",
		),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Fit builds the tree from X (n×p) and y (n×1).
func (t *DecisionTreeRegressor) Fit(X, y mat.Matrix) error {
	n, _ := X.Dims()
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return t.FitSamples(X, y, idx)
}

// FitSamples builds the tree from the rows of X and y listed in indices.
// Indices may repeat, which is how bootstrap samples are passed in.
func (t *DecisionTreeRegressor) FitSamples(X, y mat.Matrix, indices []int) (err error) {
	defer errors.Recover(&err, "DecisionTreeRegressor.Fit")

	if err := t.validateParams(); err != nil {
		return err
	}
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.NewModelError("DecisionTreeRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	yRows, yCols := y.Dims()
	if yRows != n {
		return errors.NewDimensionError("DecisionTreeRegressor.Fit", n, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("DecisionTreeRegressor.Fit", 1, yCols, 1)
	}
	if len(indices) == 0 {
		return errors.NewModelError("DecisionTreeRegressor.Fit", "empty sample", errors.ErrEmptyData)
	}
	for _, i := range indices {
		if i < 0 || i >= n {
			return errors.NewValueError("DecisionTreeRegressor.Fit",
				fmt.Sprintf("sample index %d out of range [0, %d)", i, n))
		}
	}
	if err := errors.CheckMatrix("DecisionTreeRegressor.Fit", X); err != nil {
		return err
	}
	if err := errors.CheckMatrix("DecisionTreeRegressor.Fit", y); err != nil {
		return err
	}

	start := time.Now()

	b := &builder{
		tree:        t,
		cols:        make([][]float64, p),
		y:           make([]float64, n),
		importances: make([]float64, p),
		total:       float64(len(indices)),
	}
	for j := 0; j < p; j++ {
		col := make([]float64, n)
		for i := 0; i < n; i++ {
			col[i] = X.At(i, j)
		}
		b.cols[j] = col
	}
	for i := 0; i < n; i++ {
		b.y[i] = y.At(i, 0)
	}
	if t.MaxFeatures > 0 && t.MaxFeatures < p {
		seed := uint64(t.RandomState)
		b.rng = rand.New(rand.NewPCG(seed, seed))
	}

	t.Reset()
	t.depth, t.nLeaves = 0, 0
	t.root = b.build(append([]int(nil), indices...), 0)
	t.importances = normalize(b.importances)
	t.SetFitted(p)

	t.logger.Debug("Tree fitted",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, len(indices),
		log.FeaturesKey, p,
		"tree.depth", t.depth,
		"tree.n_leaves", t.nLeaves,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

func (t *DecisionTreeRegressor) validateParams() error {
	if t.MinSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be at least 2", t.MinSamplesSplit)
	}
	if t.MinSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be at least 1", t.MinSamplesLeaf)
	}
	if t.MaxFeatures < 0 {
		return errors.NewValidationError("max_features", "must be non-negative", t.MaxFeatures)
	}
	if t.MinImpurityDecrease < 0 {
		return errors.NewValidationError("min_impurity_decrease", "must be non-negative", t.MinImpurityDecrease)
	}
	return nil
}

// builder holds the column-major copy of the training data while growing.
type builder struct {
	tree        *DecisionTreeRegressor
	cols        [][]float64
	y           []float64
	rng         *rand.Rand
	importances []float64
	total       float64 // number of samples at the root
}

type candidate struct {
	feature   int
	threshold float64
	proxy     float64 // sumL²/nL + sumR²/nR, larger is better
	nLeft     int
}

func (b *builder) build(idx []int, depth int) *node {
	t := b.tree
	n := len(idx)

	var sum, sumSq float64
	for _, i := range idx {
		sum += b.y[i]
		sumSq += b.y[i] * b.y[i]
	}
	mean := sum / float64(n)
	nd := &node{
		value:    mean,
		impurity: max(sumSq/float64(n)-mean*mean, 0),
		samples:  n,
	}
	if depth > t.depth {
		t.depth = depth
	}

	if n < t.MinSamplesSplit || n < 2*t.MinSamplesLeaf ||
		nd.impurity <= minImpurity ||
		(t.MaxDepth > 0 && depth >= t.MaxDepth) {
		return b.leaf(nd)
	}

	base := sum * sum / float64(n)
	best := candidate{feature: -1}
	for _, f := range b.features() {
		if c, ok := b.bestSplit(idx, f, sum); ok && (best.feature < 0 || c.proxy > best.proxy) {
			best = c
		}
	}
	// decrease equals n·impurity − nL·impurityL − nR·impurityR
	decrease := best.proxy - base
	if best.feature < 0 || decrease <= minImpurity*float64(n) {
		return b.leaf(nd)
	}
	// min_impurity_decrease is compared against the decrease weighted by
	// the node's share of the training sample
	if decrease/b.total < t.MinImpurityDecrease {
		return b.leaf(nd)
	}

	left := make([]int, 0, best.nLeft)
	right := make([]int, 0, n-best.nLeft)
	for _, i := range idx {
		if b.cols[best.feature][i] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	b.importances[best.feature] += decrease

	nd.feature = best.feature
	nd.threshold = best.threshold
	nd.left = b.build(left, depth+1)
	nd.right = b.build(right, depth+1)
	return nd
}

func (b *builder) leaf(nd *node) *node {
	nd.isLeaf = true
	b.tree.nLeaves++
	return nd
}

// features returns the candidate features for one node.
func (b *builder) features() []int {
	p := len(b.cols)
	feats := make([]int, p)
	for j := range feats {
		feats[j] = j
	}
	if b.rng == nil {
		return feats
	}
	b.rng.Shuffle(p, func(i, j int) { feats[i], feats[j] = feats[j], feats[i] })
	k := b.tree.MaxFeatures
	feats = feats[:k]
	sort.Ints(feats)
	return feats
}

// bestSplit sweeps the sorted values of feature f and returns the threshold
// maximising sumL²/nL + sumR²/nR, which minimises the summed squared error.
func (b *builder) bestSplit(idx []int, f int, sum float64) (candidate, bool) {
	col := b.cols[f]
	sorted := append([]int(nil), idx...)
	sort.SliceStable(sorted, func(i, j int) bool { return col[sorted[i]] < col[sorted[j]] })

	n := len(sorted)
	minLeaf := b.tree.MinSamplesLeaf
	best := candidate{feature: -1}
	found := false

	var sumL float64
	for i := 0; i < n-1; i++ {
		sumL += b.y[sorted[i]]
		lo, hi := col[sorted[i]], col[sorted[i+1]]
		if hi-lo <= featureThreshold {
			continue
		}
		nL := i + 1
		nR := n - nL
		if nL < minLeaf || nR < minLeaf {
			continue
		}
		sumR := sum - sumL
		proxy := sumL*sumL/float64(nL) + sumR*sumR/float64(nR)
		if !found || proxy > best.proxy {
			thr := lo + (hi-lo)/2
			if thr >= hi {
				thr = lo
			}
			best = candidate{feature: f, threshold: thr, proxy: proxy, nLeft: nL}
			found = true
		}
	}
	return best, found
}

// normalize scales v to sum to 1. An all-zero vector stays zero.
func normalize(v []float64) []float64 {
	var total float64
	for _, x := range v {
		total += x
	}
	out := make([]float64, len(v))
	if total <= 0 {
		return out
	}
	for i, x := range v {
		out[i] = x / total
	}
	return out
}

// Predict returns the leaf mean for each row of X as an n×1 matrix.
func (t *DecisionTreeRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeRegressor", "Predict")
	}
	r, c := X.Dims()
	if c != t.NFeatures {
		return nil, errors.NewDimensionError("DecisionTreeRegressor.Predict", t.NFeatures, c, 1)
	}
	out := mat.NewDense(r, 1, nil)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			row[j] = X.At(i, j)
		}
		out.Set(i, 0, t.predictRow(row))
	}
	return out, nil
}

func (t *DecisionTreeRegressor) predictRow(row []float64) float64 {
	nd := t.root
	for !nd.isLeaf {
		if row[nd.feature] <= nd.threshold {
			nd = nd.left
		} else {
			nd = nd.right
		}
	}
	return nd.value
}

// Score returns the R² of the predictions on X against y.
func (t *DecisionTreeRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := t.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, pred)
}

// GetFeatureImportances returns the normalized impurity-decrease importances.
// A tree that never split returns all zeros.
func (t *DecisionTreeRegressor) GetFeatureImportances() []float64 {
	if !t.IsFitted() {
		return nil
	}
	return append([]float64(nil), t.importances...)
}

// FeatureImportances is GetFeatureImportances.
func (t *DecisionTreeRegressor) FeatureImportances() []float64 {
	return t.GetFeatureImportances()
}

// GetDepth returns the depth of the deepest leaf. A single-leaf tree has depth 0.
func (t *DecisionTreeRegressor) GetDepth() int { return t.depth }

// GetNLeaves returns the number of leaves.
func (t *DecisionTreeRegressor) GetNLeaves() int { return t.nLeaves }

// GetParams returns the hyperparameters.
func (t *DecisionTreeRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"max_depth":             t.MaxDepth,
		"min_samples_split":     t.MinSamplesSplit,
		"min_samples_leaf":      t.MinSamplesLeaf,
		"max_features":          t.MaxFeatures,
		"min_impurity_decrease": t.MinImpurityDecrease,
		"random_state":          t.RandomState,
	}
}

// SetParams updates hyperparameters. Unknown keys and wrongly typed values
// are rejected.
func (t *DecisionTreeRegressor) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "max_depth", "min_samples_split", "min_samples_leaf", "max_features":
			v, ok := value.(int)
			if !ok {
				return errors.NewValidationError(key, "must be an int", value)
			}
			switch key {
			case "max_depth":
				t.MaxDepth = v
			case "min_samples_split":
				t.MinSamplesSplit = v
			case "min_samples_leaf":
				t.MinSamplesLeaf = v
			case "max_features":
				t.MaxFeatures = v
			}
		case "min_impurity_decrease":
			v, ok := value.(float64)
			if !ok {
				return errors.NewValidationError(key, "must be a float64", value)
			}
			t.MinImpurityDecrease = v
		case "random_state":
			switch v := value.(type) {
			case int64:
				t.RandomState = v
			case int:
				t.RandomState = int64(v)
			default:
				return errors.NewValidationError(key, "must be an integer", value)
			}
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return t.validateParams()
}
