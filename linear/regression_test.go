package linear

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/salaryforest/pkg/errors"
)

func TestLinearRegression_Fit(t *testing.T) {
	tests := []struct {
		name      string
		opts      []Option
		X         *mat.Dense
		y         *mat.Dense
		coef      []float64
		intercept float64
	}{
		{
			name:      "y = 2x + 1",
			X:         mat.NewDense(4, 1, []float64{1, 2, 3, 4}),
			y:         mat.NewDense(4, 1, []float64{3, 5, 7, 9}),
			coef:      []float64{2},
			intercept: 1,
		},
		{
			name: "no intercept",
			opts: []Option{WithFitIntercept(false)},
			X:    mat.NewDense(4, 1, []float64{1, 2, 3, 4}),
			y:    mat.NewDense(4, 1, []float64{2, 4, 6, 8}),
			coef: []float64{2},
		},
		{
			name: "two features",
			X:    mat.NewDense(5, 2, []float64{
				1, 0,
				0, 1,
				1, 1,
				2, 1,
				3, 2,
			}),
			// y = 3a - b + 10
			y:         mat.NewDense(5, 1, []float64{13, 9, 12, 15, 17}),
			coef:      []float64{3, -1},
			intercept: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := NewLinearRegression(tt.opts...)
			if err := lr.Fit(tt.X, tt.y); err != nil {
				t.Fatalf("Fit failed: %v", err)
			}
			coef := lr.Coefficients()
			for j, want := range tt.coef {
				if math.Abs(coef[j]-want) > 1e-9 {
					t.Errorf("coef[%d] = %f, want %f", j, coef[j], want)
				}
			}
			if math.Abs(lr.Intercept()-tt.intercept) > 1e-9 {
				t.Errorf("intercept = %f, want %f", lr.Intercept(), tt.intercept)
			}
			score, err := lr.Score(tt.X, tt.y)
			if err != nil {
				t.Fatalf("Score failed: %v", err)
			}
			if math.Abs(score-1) > 1e-9 {
				t.Errorf("score = %f, want 1", score)
			}
		})
	}
}

func TestLinearRegression_Predict(t *testing.T) {
	lr := NewLinearRegression()
	if err := lr.Fit(mat.NewDense(3, 1, []float64{0, 1, 2}), mat.NewDense(3, 1, []float64{1, 3, 5})); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	pred, err := lr.Predict(mat.NewDense(2, 1, []float64{5, 6}))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	for i, want := range []float64{11, 13} {
		if math.Abs(pred.At(i, 0)-want) > 1e-9 {
			t.Errorf("pred[%d] = %f, want %f", i, pred.At(i, 0), want)
		}
	}

	if _, err := lr.Predict(mat.NewDense(1, 2, []float64{1, 2})); err == nil {
		t.Error("expected a dimension error")
	}
}

func TestLinearRegression_Errors(t *testing.T) {
	t.Run("not fitted", func(t *testing.T) {
		_, err := NewLinearRegression().Predict(mat.NewDense(1, 1, []float64{1}))
		var nf *errors.NotFittedError
		if !errors.As(err, &nf) {
			t.Errorf("expected NotFittedError, got %v", err)
		}
		if NewLinearRegression().Coefficients() != nil {
			t.Error("unfitted model should have no coefficients")
		}
	})

	t.Run("row mismatch", func(t *testing.T) {
		err := NewLinearRegression().Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewDense(2, 1, []float64{1, 2}))
		var de *errors.DimensionError
		if !errors.As(err, &de) {
			t.Errorf("expected DimensionError, got %v", err)
		}
	})

	t.Run("underdetermined", func(t *testing.T) {
		err := NewLinearRegression().Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4}), mat.NewDense(2, 1, []float64{1, 2}))
		if err == nil {
			t.Error("expected an error for fewer samples than coefficients")
		}
	})

	t.Run("singular design", func(t *testing.T) {
		// the second feature is always zero, so [1, X] has rank 2 of 3
		X := mat.NewDense(5, 2, []float64{
			1, 0,
			2, 0,
			3, 0,
			4, 0,
			5, 0,
		})
		y := mat.NewDense(5, 1, []float64{3, 5, 7, 9, 11})

		lr := NewLinearRegression()
		err := lr.Fit(X, y)
		if !errors.Is(err, errors.ErrSingularMatrix) {
			t.Fatalf("expected ErrSingularMatrix, got %v", err)
		}
		if lr.IsFitted() {
			t.Error("a singular fit must leave the model unfitted")
		}
	})

	t.Run("NaN input", func(t *testing.T) {
		err := NewLinearRegression().Fit(mat.NewDense(3, 1, []float64{1, math.NaN(), 3}), mat.NewDense(3, 1, []float64{1, 2, 3}))
		if err == nil {
			t.Error("expected an error for NaN input")
		}
	})
}

func TestLinearRegression_Params(t *testing.T) {
	lr := NewLinearRegression()
	if err := lr.SetParams(map[string]interface{}{"fit_intercept": false}); err != nil {
		t.Fatalf("SetParams failed: %v", err)
	}
	if lr.GetParams()["fit_intercept"] != false {
		t.Error("fit_intercept not applied")
	}
	if err := lr.SetParams(map[string]interface{}{"alpha": 1.0}); err == nil {
		t.Error("unknown parameter should be rejected")
	}
	if err := lr.SetParams(map[string]interface{}{"fit_intercept": "yes"}); err == nil {
		t.Error("non-bool fit_intercept should be rejected")
	}
}
