package visualization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaussianKDE_Bandwidth(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	kde, err := NewGaussianKDE(data)
	require.NoError(t, err)

	// sample std of 1..5 is sqrt(2.5)
	want := math.Pow(5, -0.2) * math.Sqrt(2.5)
	assert.InDelta(t, want, kde.Bandwidth, 1e-12)
}

func TestGaussianKDE_IntegratesToOne(t *testing.T) {
	kde, err := NewGaussianKDE([]float64{52000, 61000, 75000, 48000, 90000, 66000})
	require.NoError(t, err)

	curve := kde.Curve(KDEGridSize, KDECut)
	require.Len(t, curve, KDEGridSize)

	// trapezoid rule over the cut grid catches nearly all of the mass
	var area float64
	for i := 1; i < len(curve); i++ {
		area += (curve[i].X - curve[i-1].X) * (curve[i].Y + curve[i-1].Y) / 2
	}
	assert.InDelta(t, 1.0, area, 0.01)

	assert.InDelta(t, 48000-3*kde.Bandwidth, curve[0].X, 1e-6)
	assert.InDelta(t, 90000+3*kde.Bandwidth, curve[len(curve)-1].X, 1e-6)
}

func TestGaussianKDE_Errors(t *testing.T) {
	_, err := NewGaussianKDE([]float64{1})
	assert.Error(t, err)
	_, err = NewGaussianKDE([]float64{4, 4, 4})
	assert.Error(t, err)
	_, err = NewGaussianKDE([]float64{1, math.NaN()})
	assert.Error(t, err)
}
