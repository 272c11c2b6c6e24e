package visualization

import (
	"math"

	"github.com/YuminosukeSato/salaryforest/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot/plotter"
)

// Density curve defaults.
const (
	KDEGridSize = 200
	KDECut      = 3 // grid extends this many bandwidths past the data
)

// GaussianKDE is a one-dimensional Gaussian kernel density estimate.
type GaussianKDE struct {
	data      []float64
	Bandwidth float64
}

// NewGaussianKDE fits a KDE with Scott's rule: n^(-1/5) times the sample
// standard deviation.
func NewGaussianKDE(data []float64) (*GaussianKDE, error) {
	if len(data) < 2 {
		return nil, errors.NewValueError("NewGaussianKDE", "need at least two samples")
	}
	if err := errors.CheckNumericalStability("NewGaussianKDE", data); err != nil {
		return nil, err
	}
	sd := stat.StdDev(data, nil)
	if sd == 0 {
		return nil, errors.NewValueError("NewGaussianKDE", "data has zero variance")
	}
	bw := math.Pow(float64(len(data)), -0.2) * sd
	return &GaussianKDE{data: append([]float64(nil), data...), Bandwidth: bw}, nil
}

// Density evaluates the estimate at x.
func (k *GaussianKDE) Density(x float64) float64 {
	var sum float64
	for _, d := range k.data {
		sum += distuv.UnitNormal.Prob((x - d) / k.Bandwidth)
	}
	return sum / (float64(len(k.data)) * k.Bandwidth)
}

// Curve evaluates the estimate on points evenly spaced values spanning the
// data range extended by cut bandwidths on each side.
func (k *GaussianKDE) Curve(points int, cut float64) plotter.XYs {
	lo := floats.Min(k.data) - cut*k.Bandwidth
	hi := floats.Max(k.data) + cut*k.Bandwidth
	xs := make([]float64, points)
	floats.Span(xs, lo, hi)

	xys := make(plotter.XYs, points)
	for i, x := range xs {
		xys[i].X = x
		xys[i].Y = k.Density(x)
	}
	return xys
}
