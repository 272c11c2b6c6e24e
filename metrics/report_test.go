package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestEvaluatePerfectPrediction(t *testing.T) {
	y := mat.NewDense(5, 1, []float64{52000, 61000, 75000, 48000, 90000})

	rep, err := Evaluate(y, y)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if rep.R2 != 1.0 {
		t.Errorf("R2 = %v, want 1", rep.R2)
	}
	if rep.MAE != 0 || rep.MSE != 0 {
		t.Errorf("MAE = %v, MSE = %v, want 0", rep.MAE, rep.MSE)
	}
}

func TestEvaluate(t *testing.T) {
	yTrue := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	yPred := mat.NewDense(4, 1, []float64{1.5, 2.5, 2.5, 3.5})

	rep, err := Evaluate(yTrue, yPred)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if math.Abs(rep.R2-0.8) > 1e-10 || math.Abs(rep.MAE-0.5) > 1e-10 || math.Abs(rep.MSE-0.25) > 1e-10 {
		t.Errorf("unexpected report %+v", rep)
	}

	if math.Abs(rep.RMSE-0.5) > 1e-10 {
		t.Errorf("RMSE = %v, want 0.5", rep.RMSE)
	}
	// |0.5|/1 + 0.5/2 + 0.5/3 + 0.5/4 over 4 samples, as a percentage
	wantMAPE := (0.5 + 0.25 + 0.5/3 + 0.125) / 4 * 100
	if math.Abs(rep.MAPE-wantMAPE) > 1e-10 {
		t.Errorf("MAPE = %v, want %v", rep.MAPE, wantMAPE)
	}
	// residuals are -0.5, -0.5, 0.5, 0.5: variance 0.25 against 1.25
	if math.Abs(rep.ExplainedVariance-0.8) > 1e-10 {
		t.Errorf("ExplainedVariance = %v, want 0.8", rep.ExplainedVariance)
	}

	if _, err := Evaluate(yTrue, mat.NewDense(3, 1, nil)); err == nil {
		t.Error("length mismatch should fail")
	}
}

func TestEvaluateUndefinedMetrics(t *testing.T) {
	yTrue := mat.NewDense(3, 1, []float64{0, 0, 0})
	yPred := mat.NewDense(3, 1, []float64{1, 0, -1})

	rep, err := Evaluate(yTrue, yPred)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !math.IsNaN(rep.MAPE) {
		t.Errorf("MAPE = %v, want NaN when every target is zero", rep.MAPE)
	}
	if !math.IsNaN(rep.ExplainedVariance) {
		t.Errorf("ExplainedVariance = %v, want NaN without target variance", rep.ExplainedVariance)
	}
	if math.Abs(rep.RMSE-math.Sqrt(2.0/3)) > 1e-10 {
		t.Errorf("RMSE = %v, want %v", rep.RMSE, math.Sqrt(2.0/3))
	}
}

func TestResiduals(t *testing.T) {
	res, err := Residuals(
		mat.NewDense(3, 1, []float64{10, 20, 30}),
		mat.NewDense(3, 1, []float64{12, 18, 30}),
	)
	if err != nil {
		t.Fatalf("Residuals() error = %v", err)
	}
	want := []float64{-2, 2, 0}
	for i := range want {
		if res[i] != want[i] {
			t.Errorf("res[%d] = %v, want %v", i, res[i], want[i])
		}
	}
}
