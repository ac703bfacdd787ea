package charts

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// ErrNoData is returned when a series has no buckets to plot
var ErrNoData = errors.New("no performance data to plot")

const (
	DefaultPerformanceWidth  = 960
	DefaultPerformanceHeight = 360

	// Larger requests are clamped so a query string cannot size the raster
	MaxPerformanceWidth  = 4096
	MaxPerformanceHeight = 2048

	maxXTicks = 12
)

var (
	countPalette = []string{"#3B82F6", "#10B981", "#8B5CF6", "#6B7280"}
	speedPalette = []string{"#F59E0B", "#EF4444"}
)

// RenderPerformancePNG draws the series as a line chart. Count
// datasets use the left axis, speed datasets the right one.
func RenderPerformancePNG(w io.Writer, series *domain.MetricsSeries, width, height int) error {
	if err := series.Validate(); err != nil {
		return err
	}
	if len(series.Labels) == 0 || len(series.Datasets) == 0 {
		return ErrNoData
	}

	width, height = PerformanceSize(width, height)

	// go-chart needs two points per line, so a single bucket is drawn flat
	// across the whole x-range.
	points := len(series.Labels)
	if points == 1 {
		points = 2
	}
	xs := make([]float64, points)
	for i := range xs {
		xs[i] = float64(i)
	}

	var (
		plotted            []chart.Series
		countMax, speedMax float64
		counts, speeds     int
		hasSpeed           bool
	)

	for _, ds := range series.Datasets {
		st := chart.Style{StrokeWidth: 2, DotWidth: 3}
		s := chart.ContinuousSeries{
			Name:    ds.Label,
			XValues: xs,
			YValues: padSingle(ds.Data),
		}

		if ds.Axis == domain.AxisSpeed {
			col := hexColor(speedPalette[speeds%len(speedPalette)])
			speeds++
			hasSpeed = true
			speedMax = math.Max(speedMax, maxOf(ds.Data))
			s.YAxis = chart.YAxisSecondary
			st.StrokeColor, st.DotColor = col, col
			st.StrokeDashArray = []float64{5, 5}
		} else {
			col := hexColor(countPalette[counts%len(countPalette)])
			counts++
			countMax = math.Max(countMax, maxOf(ds.Data))
			st.StrokeColor, st.DotColor = col, col
		}

		s.Style = st
		plotted = append(plotted, s)
	}

	ch := chart.Chart{
		Title:      "Performance",
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: math.Max(float64(len(xs)-1), 1)},
			Ticks: labelTicks(series.Labels),
		},
		YAxis: chart.YAxis{
			Name:  "Count",
			Range: &chart.ContinuousRange{Min: 0, Max: headroom(countMax)},
		},
		YAxisSecondary: chart.YAxis{
			Name:  "Speed (MH/s)",
			Range: &chart.ContinuousRange{Min: 0, Max: headroom(speedMax)},
			Style: chart.Style{Hidden: !hasSpeed},
		},
		Series: plotted,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch, chart.Style{FontColor: drawing.ColorBlack})}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render performance chart: %w", err)
	}

	return nil
}

// PerformanceSize applies the defaults and upper bounds to a requested size
func PerformanceSize(width, height int) (int, int) {
	if width <= 0 {
		width = DefaultPerformanceWidth
	}
	if height <= 0 {
		height = DefaultPerformanceHeight
	}
	return min(width, MaxPerformanceWidth), min(height, MaxPerformanceHeight)
}

func padSingle(data []float64) []float64 {
	if len(data) != 1 {
		return data
	}
	return []float64{data[0], data[0]}
}

// labelTicks thins the bucket labels to at most maxXTicks ticks
func labelTicks(labels []string) []chart.Tick {
	step := (len(labels) + maxXTicks - 1) / maxXTicks
	if step < 1 {
		step = 1
	}

	ticks := make([]chart.Tick, 0, maxXTicks+1)
	for i := 0; i < len(labels); i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: labels[i]})
	}

	return ticks
}

// headroom leaves 10% above the highest value; a flat zero line still
// needs a non-empty range.
func headroom(v float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1
	}
	return math.Ceil(v * 1.1)
}

func maxOf(data []float64) float64 {
	m := 0.0
	for _, v := range data {
		if v > m {
			m = v
		}
	}
	return m
}
