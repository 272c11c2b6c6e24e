package tree

// Option configures a DecisionTreeRegressor.
type Option func(*DecisionTreeRegressor)

// WithMaxDepth limits the depth of the tree. d <= 0 means no limit.
func WithMaxDepth(d int) Option { return func(t *DecisionTreeRegressor) { t.MaxDepth = d } }

// WithMinSamplesSplit sets the minimum number of samples needed to split a node.
func WithMinSamplesSplit(n int) Option {
	return func(t *DecisionTreeRegressor) { t.MinSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum number of samples each child must keep.
func WithMinSamplesLeaf(n int) Option {
	return func(t *DecisionTreeRegressor) { t.MinSamplesLeaf = n }
}

// WithMaxFeatures sets how many features are sampled at each node. 0 uses all.
func WithMaxFeatures(k int) Option { return func(t *DecisionTreeRegressor) { t.MaxFeatures = k } }

// WithMinImpurityDecrease requires each split to reduce the weighted impurity
// by at least v.
func WithMinImpurityDecrease(v float64) Option {
	return func(t *DecisionTreeRegressor) { t.MinImpurityDecrease = v }
}

// WithRandomState seeds feature subsampling.
func WithRandomState(seed int64) Option {
	return func(t *DecisionTreeRegressor) { t.RandomState = seed }
}
