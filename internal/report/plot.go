package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

var algorithmLabels = map[string]string{
	"OPTIMAL":               "Optimal",
	"BEST_EFFORT_BOTTOM_UP": "Bottom-Up",
	"BEST_EFFORT_GENETIC":   "Genetic",
	"BEST_EFFORT_TOP_DOWN":  "Top-Down",
}

func algorithmLabel(a string) string {
	if l, ok := algorithmLabels[a]; ok {
		return l
	}
	return a
}

// ordered returns the distinct values of key over summaries in order of
// first appearance.
func ordered(summaries []Summary, key func(Summary) string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range summaries {
		v := key(s)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// TimeChart renders the mean time of every algorithm per dataset as a
// grouped bar chart. The file format follows the extension of path.
func TimeChart(summaries []Summary, title, path string) error {
	if len(summaries) == 0 {
		return fmt.Errorf("no results to plot")
	}
	datasets := ordered(summaries, func(s Summary) string { return s.Dataset })
	algorithms := ordered(summaries, func(s Summary) string { return s.Algorithm })

	mean := map[[2]string]float64{}
	for _, s := range summaries {
		mean[[2]string{s.Algorithm, s.Dataset}] = s.TimeMean
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Time (s)"

	w := vg.Points(20)
	offset := -w * vg.Length(len(algorithms)-1) / 2
	for i, a := range algorithms {
		values := make(plotter.Values, len(datasets))
		for j, d := range datasets {
			values[j] = mean[[2]string{a, d}]
		}
		bars, err := plotter.NewBarChart(values, w)
		if err != nil {
			return fmt.Errorf("could not create bars for %s: %w", a, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = offset + w*vg.Length(i)
		p.Add(bars)
		p.Legend.Add(algorithmLabel(a), bars)
	}
	p.Legend.Top = true
	p.NominalX(datasets...)

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("could not save plot: %w", err)
	}
	return nil
}

// TraceChart renders the averaged utility trace of every algorithm on one
// dataset.
func TraceChart(traces []Trace, dataset string, xMax float64, path string) error {
	byAlgorithm := map[string][]Trace{}
	var algorithms []string
	for _, tr := range traces {
		if tr.Dataset != dataset {
			continue
		}
		if _, ok := byAlgorithm[tr.Algorithm]; !ok {
			algorithms = append(algorithms, tr.Algorithm)
		}
		byAlgorithm[tr.Algorithm] = append(byAlgorithm[tr.Algorithm], tr)
	}
	if len(algorithms) == 0 {
		return fmt.Errorf("no traces for dataset %s", dataset)
	}

	p := plot.New()
	p.Title.Text = dataset
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Quality (%)"
	p.X.Min, p.X.Max = 0, xMax

	for i, a := range algorithms {
		xs, ys, err := AverageTraces(byAlgorithm[a], xMax)
		if err != nil {
			return fmt.Errorf("average %s traces: %w", a, err)
		}
		pts := make(plotter.XYs, len(xs))
		for j := range xs {
			pts[j].X, pts[j].Y = xs[j], ys[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("could not create line for %s: %w", a, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(algorithmLabel(a), line)
	}
	p.Legend.Top = true
	p.Legend.Left = false

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("could not save plot: %w", err)
	}
	return nil
}
