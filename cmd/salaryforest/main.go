// Command salaryforest generates a synthetic employee dataset, trains a
// random forest to predict salary and reports the fit.
//
// Usage:
//
//	salaryforest --data-seed 7 --plots-dir plots
//	salaryforest --config run.yaml --backend decision_tree
package main

import (
	"os"

	"github.com/YuminosukeSato/salaryforest/pkg/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.GetLogger().Error("salaryforest failed", err)
		os.Exit(1)
	}
}
