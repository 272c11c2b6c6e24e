package datasets

import (
	"fmt"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/salaryforest/preprocessing"
	"github.com/YuminosukeSato/salaryforest/pkg/errors"
	"github.com/YuminosukeSato/salaryforest/pkg/log"
)

// IndexColumn is the row-number column added to tabular dumps.
const IndexColumn = "Index"

// EncodedFrame is the all-integer form of a dataset. Categorical columns hold
// label codes; the source Employees are left untouched.
type EncodedFrame struct {
	columns  map[string][]int
	n        int
	encoders map[string]*preprocessing.LabelEncoder
}

// Encode label-encodes Education, Job_Role and Industry with one encoder per
// column.
func Encode(es Employees) (*EncodedFrame, error) {
	if len(es) == 0 {
		return nil, errors.NewModelError("datasets.Encode", "empty data", errors.ErrEmptyData)
	}
	start := time.Now()
	logger := log.GetLoggerWithName("datasets.encode")

	f := &EncodedFrame{
		columns:  make(map[string][]int, len(Columns())),
		n:        len(es),
		encoders: make(map[string]*preprocessing.LabelEncoder, len(CategoricalColumns())),
	}

	exp := make([]int, len(es))
	sal := make([]int, len(es))
	for i, e := range es {
		exp[i] = e.Experience
		sal[i] = e.Salary
	}
	f.columns[ColExperience] = exp
	f.columns[ColSalary] = sal

	for _, col := range CategoricalColumns() {
		raw, err := es.Column(col)
		if err != nil {
			return nil, err
		}
		enc := preprocessing.NewLabelEncoder()
		codes, err := enc.FitTransform(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "encode column %s", col)
		}
		f.columns[col] = codes
		f.encoders[col] = enc
		logger.Debug("Column encoded",
			log.ColumnKey, col,
			log.ClassesKey, len(enc.Classes()),
		)
	}

	logger.Info("Dataset encoded",
		log.OperationKey, log.OperationFitTransform,
		log.PhaseKey, log.PhasePreprocessing,
		log.SamplesKey, f.n,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return f, nil
}

// Len returns the number of rows.
func (f *EncodedFrame) Len() int { return f.n }

// Names returns the column names in frame order.
func (f *EncodedFrame) Names() []string { return Columns() }

// Column returns a copy of the named column.
func (f *EncodedFrame) Column(name string) ([]int, error) {
	c, ok := f.columns[name]
	if !ok {
		return nil, errors.NewValueError("EncodedFrame.Column", fmt.Sprintf("unknown column %q", name))
	}
	out := make([]int, len(c))
	copy(out, c)
	return out, nil
}

// Encoder returns the fitted encoder of a categorical column, or nil.
func (f *EncodedFrame) Encoder(name string) *preprocessing.LabelEncoder {
	return f.encoders[name]
}

// Features returns the n×4 feature matrix (Experience, Education, Job_Role,
// Industry).
func (f *EncodedFrame) Features() *mat.Dense {
	return f.dense(FeatureNames())
}

// Target returns the n×1 salary column.
func (f *EncodedFrame) Target() *mat.Dense {
	return f.dense([]string{ColSalary})
}

// Matrix returns all five columns as an n×5 matrix.
func (f *EncodedFrame) Matrix() *mat.Dense {
	return f.dense(Columns())
}

func (f *EncodedFrame) dense(cols []string) *mat.Dense {
	m := mat.NewDense(f.n, len(cols), nil)
	for j, name := range cols {
		for i, v := range f.columns[name] {
			m.Set(i, j, float64(v))
		}
	}
	return m
}

// DataFrame returns the frame as a gota DataFrame with a leading Index column.
func (f *EncodedFrame) DataFrame() dataframe.DataFrame {
	idx := make([]int, f.n)
	for i := range idx {
		idx[i] = i
	}
	cols := []series.Series{series.New(idx, series.Int, IndexColumn)}
	for _, name := range Columns() {
		cols = append(cols, series.New(f.columns[name], series.Int, name))
	}
	return dataframe.New(cols...)
}

// Head returns the first k rows (fewer if the frame is shorter).
func (f *EncodedFrame) Head(k int) dataframe.DataFrame {
	return f.rows(0, min(k, f.n))
}

// Tail returns the last k rows, keeping their original Index values.
func (f *EncodedFrame) Tail(k int) dataframe.DataFrame {
	return f.rows(max(f.n-k, 0), f.n)
}

func (f *EncodedFrame) rows(start, end int) dataframe.DataFrame {
	if end < start {
		end = start
	}
	idx := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		idx = append(idx, i)
	}
	return f.DataFrame().Subset(idx)
}
