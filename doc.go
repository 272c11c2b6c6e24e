// Package salaryforest predicts employee salaries from a synthetic dataset
// with a random forest regressor.
//
// A run generates employee records (experience, education, job role and
// industry), label-encodes the categorical columns, holds out a test split,
// fits a forest and reports R², MAE and MSE alongside a set of diagnostic
// figures.
//
// # Packages
//
//   - datasets: record generation and label-encoded frames
//   - preprocessing: LabelEncoder
//   - sklearn/tree, sklearn/ensemble: CART regressor and random forest
//   - sklearn/model_selection: train/test split and k-fold scoring
//   - metrics: regression metrics
//   - visualization: gonum/plot figures and Gaussian KDE
//   - pipeline: configuration and the staged runner
//   - report: console output
//
// # Quick Start
//
//	package main
//
//	import (
//	    "log"
//	    "os"
//
//	    "github.com/YuminosukeSato/salaryforest/pipeline"
//	    "github.com/YuminosukeSato/salaryforest/report"
//	)
//
//	func main() {
//	    cfg := pipeline.DefaultConfig()
//	    res, err := pipeline.Run(cfg)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    report.WriteMetrics(os.Stdout, res.Metrics)
//	}
//
// The salaryforest command wraps the same flow with flags and a YAML config.
package salaryforest
