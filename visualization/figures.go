// Package visualization renders the diagnostic figures of a salary model run
// with gonum/plot.
package visualization

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/YuminosukeSato/salaryforest/pkg/errors"
	"github.com/YuminosukeSato/salaryforest/pkg/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Figure names, also used as output file stems.
const (
	ActualVsPredictedName = "actual_vs_predicted"
	FeatureImportanceName = "feature_importance"
	ResidualsName         = "residuals"
	DistributionName      = "distribution"
	CorrelationName       = "correlation"
)

var (
	blue   = color.RGBA{B: 255, A: 255}
	red    = color.RGBA{R: 255, A: 255}
	green  = color.RGBA{G: 128, A: 255}
	purple = color.RGBA{R: 128, B: 128, A: 255}
)

// Figure is one rendered plot with its page size.
type Figure struct {
	Name   string
	Title  string
	Plot   *plot.Plot
	Width  vg.Length
	Height vg.Length
}

// Figures is an ordered set of figures.
type Figures []Figure

// Get returns the figure with the given name.
func (fs Figures) Get(name string) (Figure, bool) {
	for _, f := range fs {
		if f.Name == name {
			return f, true
		}
	}
	return Figure{}, false
}

// Names returns the figure names in order.
func (fs Figures) Names() []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name
	}
	return out
}

// Save writes every figure to dir as <name>.<format> and returns the paths.
// format is one of png, svg, pdf or any other extension gonum/plot accepts.
func (fs Figures) Save(dir, format string) ([]string, error) {
	format = strings.TrimPrefix(strings.ToLower(format), ".")
	if format == "" {
		format = "png"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create plots directory %s", dir)
	}

	logger := log.GetLoggerWithName("visualization")
	paths := make([]string, 0, len(fs))
	for _, f := range fs {
		path := filepath.Join(dir, f.Name+"."+format)
		if err := f.Plot.Save(f.Width, f.Height, path); err != nil {
			return paths, errors.Wrapf(err, "save figure %s", f.Name)
		}
		logger.Debug("Figure saved",
			log.OperationKey, log.OperationRender,
			log.PathKey, path,
		)
		paths = append(paths, path)
	}
	return paths, nil
}

// Input carries everything the figures are drawn from.
type Input struct {
	Actual       []float64 // test targets
	Predicted    []float64 // test predictions
	Importances  []float64
	FeatureNames []string
	Columns      []string   // names of the columns of Data
	Data         mat.Matrix // full encoded dataset
}

// Build renders all five figures.
func Build(in Input) (Figures, error) {
	avp, err := ActualVsPredicted(in.Actual, in.Predicted)
	if err != nil {
		return nil, err
	}
	imp, err := FeatureImportance(in.FeatureNames, in.Importances)
	if err != nil {
		return nil, err
	}
	res, err := Residuals(in.Actual, in.Predicted)
	if err != nil {
		return nil, err
	}
	dist, err := Distribution(in.Actual, in.Predicted)
	if err != nil {
		return nil, err
	}
	corr, err := Correlation(in.Columns, in.Data)
	if err != nil {
		return nil, err
	}
	return Figures{avp, imp, res, dist, corr}, nil
}

func checkPaired(op string, actual, predicted []float64) error {
	if len(actual) == 0 {
		return errors.NewValueError(op, "no samples")
	}
	if len(actual) != len(predicted) {
		return errors.NewDimensionError(op, len(actual), len(predicted), 0)
	}
	return nil
}

// ActualVsPredicted is a scatter of (actual, predicted) with the identity
// line drawn from min(actual) to max(actual).
func ActualVsPredicted(actual, predicted []float64) (Figure, error) {
	if err := checkPaired("ActualVsPredicted", actual, predicted); err != nil {
		return Figure{}, err
	}

	p := plot.New()
	p.Title.Text = "Actual vs Predicted Salaries"
	p.X.Label.Text = "Actual Salary"
	p.Y.Label.Text = "Predicted Salary"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(actual))
	for i := range actual {
		pts[i].X = actual[i]
		pts[i].Y = predicted[i]
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return Figure{}, errors.Wrap(err, "actual vs predicted scatter")
	}
	s.GlyphStyle.Color = blue
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(3)

	lo, hi := floats.Min(actual), floats.Max(actual)
	diag, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return Figure{}, errors.Wrap(err, "actual vs predicted diagonal")
	}
	diag.LineStyle.Color = red
	diag.LineStyle.Width = vg.Points(1.5)
	diag.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}

	p.Add(s, diag)
	return Figure{Name: ActualVsPredictedName, Title: p.Title.Text, Plot: p, Width: 7 * vg.Inch, Height: 5 * vg.Inch}, nil
}

// FeatureImportance is a horizontal bar chart, one bar per feature.
func FeatureImportance(names []string, importances []float64) (Figure, error) {
	if len(names) == 0 {
		return Figure{}, errors.NewValueError("FeatureImportance", "no features")
	}
	if len(names) != len(importances) {
		return Figure{}, errors.NewDimensionError("FeatureImportance", len(names), len(importances), 0)
	}

	p := plot.New()
	p.Title.Text = "Feature Importance"
	p.X.Label.Text = "Importance"

	bars, err := importanceBars(importances)
	if err != nil {
		return Figure{}, err
	}
	for _, b := range bars {
		p.Add(b)
	}

	// first feature on top
	n := len(names)
	labels := make([]string, n)
	for i := range names {
		labels[n-1-i] = names[i]
	}
	p.NominalY(labels...)
	p.X.Min = 0
	return Figure{Name: FeatureImportanceName, Title: p.Title.Text, Plot: p, Width: 6 * vg.Inch, Height: 4 * vg.Inch}, nil
}

// importanceBars returns one horizontal bar per feature, the first feature at
// the top, each coloured from the Kindlmann map in feature order.
func importanceBars(importances []float64) ([]*plotter.BarChart, error) {
	n := len(importances)
	// drop the near-black and near-white ends of the map
	colors := moreland.Kindlmann().Palette(n + 2).Colors()[1 : n+1]

	bars := make([]*plotter.BarChart, n)
	for i, v := range importances {
		b, err := plotter.NewBarChart(plotter.Values{v}, vg.Points(20))
		if err != nil {
			return nil, errors.Wrapf(err, "feature importance bar %d", i)
		}
		b.Horizontal = true
		b.XMin = float64(n - 1 - i)
		b.Color = colors[i]
		b.LineStyle.Width = 0
		bars[i] = b
	}
	return bars, nil
}

// Residuals plots actual − predicted against the test sample position.
func Residuals(actual, predicted []float64) (Figure, error) {
	if err := checkPaired("Residuals", actual, predicted); err != nil {
		return Figure{}, err
	}

	p := plot.New()
	p.Title.Text = "Residual Errors"
	p.X.Label.Text = "Test Sample Index"
	p.Y.Label.Text = "Error (Actual - Predicted)"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(actual))
	for i := range actual {
		pts[i].X = float64(i)
		pts[i].Y = actual[i] - predicted[i]
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return Figure{}, errors.Wrap(err, "residual line")
	}
	line.LineStyle.Color = red
	points.GlyphStyle.Color = red
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	points.GlyphStyle.Radius = vg.Points(2.5)

	p.Add(line, points)
	return Figure{Name: ResidualsName, Title: p.Title.Text, Plot: p, Width: 7 * vg.Inch, Height: 4 * vg.Inch}, nil
}

// Distribution overlays shaded Gaussian KDE curves of the actual and
// predicted salaries. A sample with zero variance has no density and is
// left out of the figure.
func Distribution(actual, predicted []float64) (Figure, error) {
	if err := checkPaired("Distribution", actual, predicted); err != nil {
		return Figure{}, err
	}

	p := plot.New()
	p.Title.Text = "Distribution of Actual vs Predicted Salaries"
	p.X.Label.Text = "Salary"
	p.Y.Label.Text = "Density"
	p.Legend.Top = true

	logger := log.GetLoggerWithName("visualization")
	series := []struct {
		label string
		data  []float64
		c     color.RGBA
	}{
		{"Actual", actual, green},
		{"Predicted", predicted, purple},
	}
	for _, s := range series {
		kde, err := NewGaussianKDE(s.data)
		if err != nil {
			logger.Warn("Density skipped", "series", s.label, log.ErrAttrKey, err)
			continue
		}
		line, err := plotter.NewLine(kde.Curve(KDEGridSize, KDECut))
		if err != nil {
			return Figure{}, errors.Wrapf(err, "%s density", s.label)
		}
		line.LineStyle.Color = s.c
		line.LineStyle.Width = vg.Points(1.5)
		line.FillColor = color.NRGBA{R: s.c.R, G: s.c.G, B: s.c.B, A: 64}
		p.Add(line)
		p.Legend.Add(s.label, line)
	}
	p.Y.Min = 0
	return Figure{Name: DistributionName, Title: p.Title.Text, Plot: p, Width: 7 * vg.Inch, Height: 4 * vg.Inch}, nil
}

// CorrelationMatrix returns the pairwise Pearson correlations of the columns
// of data. Pairs involving a constant column are NaN.
func CorrelationMatrix(data mat.Matrix) *mat.SymDense {
	r, c := data.Dims()
	cols := make([][]float64, c)
	for j := range cols {
		cols[j] = make([]float64, r)
		for i := 0; i < r; i++ {
			cols[j][i] = data.At(i, j)
		}
	}
	out := mat.NewSymDense(c, nil)
	for i := 0; i < c; i++ {
		for j := i; j < c; j++ {
			v := 1.0
			if i != j {
				v = stat.Correlation(cols[i], cols[j], nil)
			} else if stat.Variance(cols[i], nil) == 0 {
				v = math.NaN()
			}
			out.SetSym(i, j, v)
		}
	}
	return out
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ with the first
// column at the top.
type corrGrid struct {
	m *mat.SymDense
}

func (g corrGrid) Dims() (c, r int) {
	n := g.m.SymmetricDim()
	return n, n
}

func (g corrGrid) Z(c, r int) float64 {
	n := g.m.SymmetricDim()
	return g.m.At(n-1-r, c)
}

func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }

// Correlation is a heatmap of the correlation matrix of every encoded column,
// annotated with two-decimal values.
func Correlation(names []string, data mat.Matrix) (Figure, error) {
	if data == nil {
		return Figure{}, errors.NewValueError("Correlation", "no data")
	}
	r, c := data.Dims()
	if r < 2 || c == 0 {
		return Figure{}, errors.NewValueError("Correlation", "need at least two rows")
	}
	if len(names) != c {
		return Figure{}, errors.NewDimensionError("Correlation", c, len(names), 1)
	}

	corr := CorrelationMatrix(data)

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	hm := plotter.NewHeatMap(corrGrid{m: corr}, cm.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = color.Gray{Y: 200}

	p := plot.New()
	p.Title.Text = "Feature Correlation"
	p.Add(hm)

	var xys plotter.XYs
	var labels []string
	for row := 0; row < c; row++ {
		for col := 0; col < c; col++ {
			v := corr.At(row, col)
			xys = append(xys, plotter.XY{X: float64(col), Y: float64(c - 1 - row)})
			if math.IsNaN(v) {
				labels = append(labels, "nan")
			} else {
				labels = append(labels, fmt.Sprintf("%.2f", v))
			}
		}
	}
	ann, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return Figure{}, errors.Wrap(err, "correlation annotations")
	}
	for i := range ann.TextStyle {
		ann.TextStyle[i].XAlign = text.XCenter
		ann.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(ann)

	yNames := make([]string, c)
	for i, n := range names {
		yNames[c-1-i] = n
	}
	p.NominalX(names...)
	p.NominalY(yNames...)
	return Figure{Name: CorrelationName, Title: p.Title.Text, Plot: p, Width: 6 * vg.Inch, Height: 5 * vg.Inch}, nil
}
