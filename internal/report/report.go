// Package report renders the history store as standalone HTML charts.
package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/huangsam/timemachine/internal/contract"
	"github.com/huangsam/timemachine/schema"
)

// Output file names inside the report directory.
const (
	OwnershipFile  = "ownership_pie.html"
	ChurnFile      = "churn_weekly.html"
	ComplexityFile = "complexity_avg.html"
	IndexFile      = "report.html"
)

// maxPieAuthors caps the ownership pie.
const maxPieAuthors = 12

const unknownAuthor = "unknown"

// renderer is the part of a go-echarts chart the report needs.
type renderer interface {
	components.Charter
	Render(w io.Writer) error
}

// Generate writes one HTML file per chart with data, then report.html combining them.
// Charts without data are skipped. It returns the written paths in that order.
func Generate(ctx context.Context, store contract.HistoryReader, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	authors, err := store.OwnershipByAuthor(ctx, maxPieAuthors)
	if err != nil {
		return nil, fmt.Errorf("failed to load ownership: %w", err)
	}
	churn, err := store.WeeklyChurn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load churn: %w", err)
	}
	trend, err := store.ComplexityTrend(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load complexity trend: %w", err)
	}

	var (
		written []string
		page    = components.NewPage()
	)
	page.PageTitle = "Codebase Time Machine Report"

	add := func(name string, chart renderer) error {
		path := filepath.Join(outDir, name)
		if err := renderFile(path, chart); err != nil {
			return err
		}
		page.AddCharts(chart)
		written = append(written, path)
		return nil
	}

	if len(authors) > 0 {
		if err := add(OwnershipFile, OwnershipPie(authors)); err != nil {
			return written, err
		}
	}
	if len(churn) > 0 {
		if err := add(ChurnFile, ChurnLine(churn)); err != nil {
			return written, err
		}
	}
	if len(trend) > 0 {
		if err := add(ComplexityFile, ComplexityLine(trend)); err != nil {
			return written, err
		}
	}

	indexPath := filepath.Join(outDir, IndexFile)
	if err := renderFile(indexPath, page); err != nil {
		return written, err
	}
	return append(written, indexPath), nil
}

// OwnershipPie charts summed commits per author.
func OwnershipPie(authors []schema.AuthorShare) *charts.Pie {
	data := make([]opts.PieData, len(authors))
	for i, a := range authors {
		name := a.AuthorEmail
		if name == "" {
			name = unknownAuthor
		}
		data[i] = opts.PieData{Name: name, Value: a.Commits}
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Ownership", Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: "Ownership by commits"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)
	pie.AddSeries("Commits", data).SetSeriesOptions(
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}),
	)
	return pie
}

// ChurnLine charts added plus deleted lines per week.
func ChurnLine(points []schema.ChurnPoint) *charts.Line {
	labels := make([]string, len(points))
	data := make([]opts.LineData, len(points))
	for i, p := range points {
		labels[i] = formatDate(p.WeekStart)
		data[i] = opts.LineData{Value: p.Churn}
	}
	line := newLine("Churn over time (weekly)", "Week", "Lines changed")
	line.SetXAxis(labels).AddSeries("Churn", data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
	)
	return line
}

// ComplexityLine charts the mean per-function cyclomatic complexity of each sampled commit.
func ComplexityLine(points []schema.ComplexityPoint) *charts.Line {
	labels := make([]string, len(points))
	data := make([]opts.LineData, len(points))
	for i, p := range points {
		labels[i] = formatDate(p.AuthoredDate)
		data[i] = opts.LineData{Value: p.AvgCCN, Name: p.CommitID}
	}
	line := newLine("Average cyclomatic complexity per commit", "Time", "Avg CCN")
	line.SetXAxis(labels).AddSeries("Avg CCN", data)
	return line
}

func newLine(title, xName, yName string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1000px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: xName}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)
	return line
}

func formatDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(time.DateOnly)
}

func renderFile(path string, r interface{ Render(io.Writer) error }) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := r.Render(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return f.Close()
}
