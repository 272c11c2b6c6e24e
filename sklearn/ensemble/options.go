package ensemble

// Option configures a RandomForestRegressor.
type Option func(*RandomForestRegressor)

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) Option { return func(rf *RandomForestRegressor) { rf.NEstimators = n } }

// WithMaxDepth limits the depth of every tree. d <= 0 means unlimited.
func WithMaxDepth(d int) Option { return func(rf *RandomForestRegressor) { rf.MaxDepth = d } }

// WithMinSamplesSplit sets min_samples_split for every tree.
func WithMinSamplesSplit(n int) Option {
	return func(rf *RandomForestRegressor) { rf.MinSamplesSplit = n }
}

// WithMinSamplesLeaf sets min_samples_leaf for every tree.
func WithMinSamplesLeaf(n int) Option {
	return func(rf *RandomForestRegressor) { rf.MinSamplesLeaf = n }
}

// WithMaxFeatures sets the number of features sampled per split. 0 uses all.
func WithMaxFeatures(k int) Option { return func(rf *RandomForestRegressor) { rf.MaxFeatures = k } }

// WithBootstrap toggles bootstrap sampling.
func WithBootstrap(b bool) Option { return func(rf *RandomForestRegressor) { rf.Bootstrap = b } }

// WithRandomState sets the master seed.
func WithRandomState(seed int64) Option {
	return func(rf *RandomForestRegressor) { rf.RandomState = seed }
}

// WithNJobs sets the number of trees fitted concurrently. -1 uses every core.
func WithNJobs(n int) Option { return func(rf *RandomForestRegressor) { rf.NJobs = n } }
