package charts

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// DefaultDonutSize is the edge length of a donut chart in pixels
const DefaultDonutSize = 240

// MaxDonutSize bounds the requested edge length
const MaxDonutSize = 1024

// DonutSize applies the default and upper bound to a requested size
func DonutSize(size int) int {
	if size <= 0 {
		return DefaultDonutSize
	}
	return min(size, MaxDonutSize)
}

const emptyRingColor = "#E5E7EB"

// DonutModel is what a status donut shows: the total in the middle and
// one segment per non-empty state.
type DonutModel struct {
	Title      string
	Total      int
	TotalLabel string
	Segments   []domain.Segment
}

// NewDonutModel drops zero segments and computes the total label
func NewDonutModel(title string, segments []domain.Segment) DonutModel {
	m := DonutModel{Title: title}

	for _, s := range segments {
		m.Total += s.Value
		if s.Value > 0 {
			m.Segments = append(m.Segments, s)
		}
	}
	m.TotalLabel = strconv.Itoa(m.Total)

	return m
}

func TaskDonut(c domain.TaskCounts) DonutModel {
	return NewDonutModel("Task Status", c.Segments())
}

func AgentDonut(c domain.AgentCounts) DonutModel {
	return NewDonutModel("Agent Status", c.Segments())
}

// Empty reports whether the donut has nothing to draw
func (m DonutModel) Empty() bool {
	return len(m.Segments) == 0
}

// RenderDonutSVG writes the donut as SVG. An empty model is drawn as a
// plain ring so the total label still has a frame.
func RenderDonutSVG(w io.Writer, m DonutModel, size int) error {
	size = DonutSize(size)

	var buf bytes.Buffer

	if m.Empty() {
		fmt.Fprintf(&buf,
			`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><circle cx="%d" cy="%d" r="%d" fill="none" stroke="%s" stroke-width="%d"/></svg>`,
			size, size, size/2, size/2, size*3/8, emptyRingColor, size/8)
	} else {
		values := make([]chart.Value, 0, len(m.Segments))
		for _, s := range m.Segments {
			col := hexColor(s.Color)
			values = append(values, chart.Value{
				Label: s.Label,
				Value: float64(s.Value),
				Style: chart.Style{
					FillColor:   col,
					StrokeColor: drawing.ColorWhite,
					StrokeWidth: 2,
					FontColor:   drawing.ColorWhite,
				},
			})
		}

		dc := chart.DonutChart{
			Width:  size,
			Height: size,
			Values: values,
		}

		if err := dc.Render(chart.SVG, &buf); err != nil {
			return fmt.Errorf("failed to render donut chart: %w", err)
		}
	}

	_, err := w.Write(withCenterLabel(buf.Bytes(), m.TotalLabel, size))
	return err
}

func withCenterLabel(svg []byte, label string, size int) []byte {
	text := fmt.Sprintf(
		`<text class="donut-total" x="%d" y="%d" text-anchor="middle" dominant-baseline="central" font-family="sans-serif" font-size="%d" fill="#374151">%s</text>`,
		size/2, size/2, size/6, html.EscapeString(label))

	i := bytes.LastIndex(svg, []byte("</svg>"))
	if i < 0 {
		return svg
	}

	out := make([]byte, 0, len(svg)+len(text))
	out = append(out, svg[:i]...)
	out = append(out, text...)
	out = append(out, svg[i:]...)
	return out
}

func hexColor(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}
