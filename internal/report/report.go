// Package report summarizes the sequence content of a dataset for preview
// responses: per-column length statistics plus an SVG plot of the overall
// length distribution.
package report

import (
	"bytes"
	"image/color"
	"unicode/utf8"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"covab2fasta/internal/fasta"
)

// ColumnStats describe the usable sequences of one column. Lengths count
// characters, matching the wrapping and truncation budgets.
type ColumnStats struct {
	Column  string  `json:"column"`
	Count   int     `json:"count"`   // usable sequence cells
	Skipped int     `json:"skipped"` // blank or sentinel cells
	MinLen  int     `json:"minLength"`
	MaxLen  int     `json:"maxLength"`
	MeanLen float64 `json:"meanLength"`
	StdLen  float64 `json:"stdLength"` // sample standard deviation
}

// Report aggregates sequence-length statistics per selected column.
type Report struct {
	Columns []ColumnStats `json:"columns"`
	Total   int           `json:"totalSequences"`

	lengths []float64 // every usable length, in scan order
}

// Build scans every (row, sequence column) cell the way the generator
// will: blank and sentinel cells are skipped, everything else counts as a
// sequence.
func Build(data fasta.Dataset, seqColumns []string) *Report {
	rep := &Report{}
	for _, col := range seqColumns {
		cs := ColumnStats{Column: col}
		var lengths []float64
		for i := 0; i < data.Len(); i++ {
			v, ok := data.Value(i, col)
			if !ok || fasta.IsSentinel(v) {
				cs.Skipped++
				continue
			}
			n := utf8.RuneCountInString(v)
			if cs.Count == 0 || n < cs.MinLen {
				cs.MinLen = n
			}
			if n > cs.MaxLen {
				cs.MaxLen = n
			}
			cs.Count++
			lengths = append(lengths, float64(n))
		}
		if len(lengths) > 0 {
			cs.MeanLen = stat.Mean(lengths, nil)
		}
		if len(lengths) > 1 {
			cs.StdLen = stat.StdDev(lengths, nil)
		}
		rep.Columns = append(rep.Columns, cs)
		rep.lengths = append(rep.lengths, lengths...)
	}
	rep.Total = len(rep.lengths)
	return rep
}

// Lengths returns every usable sequence length in scan order. The slice is
// owned by the report; callers must not modify it.
func (r *Report) Lengths() []float64 { return r.lengths }

// HistogramSVG renders the report's length distribution. An empty report
// yields an empty string, not an error: there is nothing to plot.
func (r *Report) HistogramSVG() (string, error) {
	return LengthHistogramSVG(r.lengths)
}

// LengthHistogramSVG plots a binned length distribution as an SVG line
// chart sized for inlining into the preview page.
func LengthHistogramSVG(lengths []float64) (string, error) {
	if len(lengths) == 0 {
		return "", nil
	}

	p := plot.New()
	p.Title.Text = "Sequence Length Distribution"
	p.X.Label.Text = "Sequence Length"
	p.Y.Label.Text = "Sequences"

	minLen, maxLen := int(lengths[0]), int(lengths[0])
	for _, l := range lengths {
		if int(l) < minLen {
			minLen = int(l)
		}
		if int(l) > maxLen {
			maxLen = int(l)
		}
	}

	// Integer-width bins keep discrete lengths from smearing.
	span := maxLen - minLen + 1
	binWidth := (span + 49) / 50
	binCount := (span + binWidth - 1) / binWidth
	counts := make([]float64, binCount)
	for _, val := range lengths {
		bin := (int(val) - minLen) / binWidth
		if bin >= binCount {
			bin = binCount - 1
		}
		counts[bin]++
	}

	points := make(plotter.XYs, binCount)
	for i := 0; i < binCount; i++ {
		points[i].X = float64(minLen) + float64(binWidth)*float64(i) + float64(binWidth)/2
		points[i].Y = counts[i]
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return "", err
	}
	line.LineStyle.Color = color.RGBA{R: 50, G: 100, B: 200, A: 255}
	line.LineStyle.Width = vg.Points(2)
	p.Add(line)
	p.Legend.Add("Sequences", line)
	p.Legend.Top = true

	var buf bytes.Buffer
	writer, err := p.WriterTo(8*vg.Inch, 3*vg.Inch, "svg")
	if err != nil {
		return "", err
	}
	if _, err := writer.WriteTo(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
