package errors

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "RandomForestRegressor.Fit",
			kind:    "tree fit failed",
			err:     fmt.Errorf("boom"),
			wantMsg: "salaryforest: RandomForestRegressor.Fit: tree fit failed: boom",
		},
		{
			name:    "without original error",
			op:      "Predict",
			kind:    "not fitted",
			err:     nil,
			wantMsg: "salaryforest: Predict: not fitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースにテストファイルが含まれること
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 4, 3, 1)

	want := "salaryforest: Predict: dimension mismatch on axis 1 (features). Expected 4, got 3"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Fatal("Error should be castable to *DimensionError")
	}
	if dimErr.Expected != 4 || dimErr.Got != 3 {
		t.Errorf("unexpected fields: %+v", dimErr)
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("LabelEncoder", "Transform")

	want := "salaryforest: LabelEncoder: this estimator is not fitted yet. Call Fit() before using Transform()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("test_size", "must be in (0, 1)", 1.5)

	want := "salaryforest: validation failed for parameter 'test_size': must be in (0, 1) (got: 1.5)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var vErr *ValidationError
	if !As(err, &vErr) {
		t.Fatal("Error should be castable to *ValidationError")
	}
	if vErr.ParamName != "test_size" {
		t.Errorf("ParamName = %q", vErr.ParamName)
	}
}

func TestStageError(t *testing.T) {
	if NewStageError("train", nil) != nil {
		t.Fatal("nil error must stay nil")
	}

	cause := NewValueError("Transform", "unknown label")
	err := NewStageError("encode", cause)

	var stageErr *StageError
	if !As(err, &stageErr) {
		t.Fatal("Error should be castable to *StageError")
	}
	if stageErr.Stage != "encode" {
		t.Errorf("Stage = %q", stageErr.Stage)
	}

	var valErr *ValueError
	if !As(err, &valErr) {
		t.Error("cause should still be reachable through StageError")
	}
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrap(ErrEmptyData, "while encoding")
	if !Is(wrapped, ErrEmptyData) {
		t.Error("wrapped error should match ErrEmptyData")
	}
	if !strings.Contains(wrapped.Error(), "while encoding") {
		t.Errorf("unexpected message %q", wrapped.Error())
	}

	wrappedf := Wrapf(ErrUnknownBackend, "backend %q", "svm")
	if !Is(wrappedf, ErrUnknownBackend) {
		t.Error("wrapf error should match ErrUnknownBackend")
	}
}

func TestWarn(t *testing.T) {
	var (
		mu  sync.Mutex
		got []error
	)
	SetWarningHandler(func(w error) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, w)
	})
	defer SetWarningHandler(func(error) {})

	Warn(NewUndefinedMetricWarning("R2Score", "zero variance in y_true", 0))

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}
	want := "'R2Score' is ill-defined and being set to 0 due to zero variance in y_true."
	if got[0].Error() != want {
		t.Errorf("warning = %q, want %q", got[0].Error(), want)
	}
}

func TestWarnPrefersZerologFunc(t *testing.T) {
	handlerCalled := false
	zerologCalled := false
	SetWarningHandler(func(error) { handlerCalled = true })
	SetZerologWarnFunc(func(error) { zerologCalled = true })
	defer SetZerologWarnFunc(nil)

	Warn(New("something odd"))

	if !zerologCalled || handlerCalled {
		t.Errorf("zerolog=%v handler=%v, want zerolog only", zerologCalled, handlerCalled)
	}
}

func TestCheckNumericalStability(t *testing.T) {
	if err := CheckNumericalStability("ok", []float64{1, 2, 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := CheckNumericalStability("predict", []float64{1, math.NaN(), math.Inf(1)})
	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if len(numErr.Values) != 2 {
		t.Errorf("expected 2 offending values, got %d", len(numErr.Values))
	}
}
