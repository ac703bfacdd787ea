package charts

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
	"github.com/sadewadee/hashcat-dashboard/internal/perfdata"
)

func TestNewDonutModel(t *testing.T) {
	tests := []struct {
		name      string
		model     DonutModel
		wantTotal string
		wantKeys  []string
	}{
		{
			name:      "all zero tasks",
			model:     TaskDonut(domain.TaskCounts{}),
			wantTotal: "0",
		},
		{
			name:      "all zero agents",
			model:     AgentDonut(domain.AgentCounts{}),
			wantTotal: "0",
		},
		{
			name:      "skips empty states",
			model:     TaskDonut(domain.TaskCounts{Pending: 2, Completed: 5, Cancelled: 1}),
			wantTotal: "8",
			wantKeys:  []string{domain.AttrTaskPending, domain.AttrTaskCompleted, domain.AttrTaskCancelled},
		},
		{
			name:      "agents keep display order",
			model:     AgentDonut(domain.AgentCounts{Online: 3, Busy: 1, Offline: 4}),
			wantTotal: "8",
			wantKeys:  []string{domain.AttrAgentOnline, domain.AttrAgentBusy, domain.AttrAgentOffline},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantTotal, tt.model.TotalLabel)

			var keys []string
			for _, s := range tt.model.Segments {
				keys = append(keys, s.Key)
			}
			assert.Equal(t, tt.wantKeys, keys)
			assert.Equal(t, len(tt.wantKeys) == 0, tt.model.Empty())
		})
	}
}

func TestRenderDonutSVGEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderDonutSVG(&buf, TaskDonut(domain.TaskCounts{}), 200))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, `class="donut-total"`)
	assert.Contains(t, out, `>0</text>`)
	assert.NotContains(t, out, "<path")
	assert.True(t, strings.HasSuffix(out, "</svg>"))
}

func TestRenderDonutSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderDonutSVG(&buf, AgentDonut(domain.AgentCounts{Online: 2, Offline: 1}), 0))

	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "<path")
	assert.Contains(t, out, `>3</text>`)
}

func TestRenderPerformancePNG(t *testing.T) {
	series := perfdata.MockSeries(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), nil)

	var buf bytes.Buffer
	require.NoError(t, RenderPerformancePNG(&buf, series, 640, 240))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestRenderPerformancePNGSingleBucket(t *testing.T) {
	tests := []struct {
		name     string
		datasets []domain.Dataset
	}{
		{
			name: "all zero count",
			datasets: []domain.Dataset{
				{Label: "Active Agents", Data: []float64{0}, Axis: domain.AxisCount},
			},
		},
		{
			name: "count and speed",
			datasets: []domain.Dataset{
				{Label: "Active Agents", Data: []float64{4}, Axis: domain.AxisCount},
				{Label: "Speed (MH/s)", Data: []float64{2.5}, Axis: domain.AxisSpeed},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := &domain.MetricsSeries{Labels: []string{"3:00"}, Datasets: tt.datasets}

			var buf bytes.Buffer
			require.NoError(t, RenderPerformancePNG(&buf, series, 320, 160))

			img, err := png.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, 320, img.Bounds().Dx())
			assert.Equal(t, []float64{tt.datasets[0].Data[0]}, series.Datasets[0].Data, "input is not padded in place")
		})
	}
}

func TestChartSizes(t *testing.T) {
	w, h := PerformanceSize(0, 0)
	assert.Equal(t, DefaultPerformanceWidth, w)
	assert.Equal(t, DefaultPerformanceHeight, h)

	w, h = PerformanceSize(50000, 50000)
	assert.Equal(t, MaxPerformanceWidth, w)
	assert.Equal(t, MaxPerformanceHeight, h)

	w, h = PerformanceSize(480, 200)
	assert.Equal(t, 480, w)
	assert.Equal(t, 200, h)

	assert.Equal(t, DefaultDonutSize, DonutSize(-1))
	assert.Equal(t, MaxDonutSize, DonutSize(1<<20))
	assert.Equal(t, 300, DonutSize(300))
}

func TestRenderPerformancePNGRejects(t *testing.T) {
	var buf bytes.Buffer

	err := RenderPerformancePNG(&buf, &domain.MetricsSeries{Labels: []string{}, Datasets: []domain.Dataset{}}, 0, 0)
	assert.ErrorIs(t, err, ErrNoData)

	err = RenderPerformancePNG(&buf, &domain.MetricsSeries{Labels: []string{"1:00"}}, 0, 0)
	assert.ErrorIs(t, err, domain.ErrMalformedSeries)
}

func TestLabelTicks(t *testing.T) {
	labels := make([]string, 24)
	for i := range labels {
		labels[i] = domain.FormatHour(time.Date(2024, 1, 1, i, 0, 0, 0, time.UTC))
	}

	ticks := labelTicks(labels)
	assert.Len(t, ticks, 12)
	assert.Equal(t, "0:00", ticks[0].Label)
	assert.Equal(t, "2:00", ticks[1].Label)

	assert.Len(t, labelTicks(labels[:5]), 5)
}
