package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// Axis selects which y-axis a dataset is plotted against
type Axis string

const (
	AxisCount Axis = "count"
	AxisSpeed Axis = "speed"
)

var (
	// ErrMalformedSeries is returned for performance data that lacks
	// labels or datasets, or whose datasets do not line up with labels.
	ErrMalformedSeries = errors.New("malformed metrics series")
	ErrNotFound        = errors.New("not found")
)

// Dataset is one plotted line of a MetricsSeries
type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
	Axis  Axis      `json:"axis"`
}

// UnmarshalJSON accepts both the axis field and the chart-style
// yAxisID field ("y" for counts, "y1" for speed).
func (d *Dataset) UnmarshalJSON(b []byte) error {
	var aux struct {
		Label   string    `json:"label"`
		Data    []float64 `json:"data"`
		Axis    Axis      `json:"axis"`
		YAxisID string    `json:"yAxisID"`
	}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	d.Label = aux.Label
	d.Data = aux.Data
	d.Axis = aux.Axis

	if d.Axis == "" {
		switch aux.YAxisID {
		case "y1":
			d.Axis = AxisSpeed
		default:
			d.Axis = AxisCount
		}
	}

	return nil
}

// MetricsSeries is the time-bucketed performance data behind the
// performance chart.
type MetricsSeries struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Validate checks that every dataset has one value per label
func (s *MetricsSeries) Validate() error {
	if s == nil || s.Labels == nil || s.Datasets == nil {
		return ErrMalformedSeries
	}

	for _, ds := range s.Datasets {
		if len(ds.Data) != len(s.Labels) {
			return fmt.Errorf("%w: dataset %q has %d values for %d labels",
				ErrMalformedSeries, ds.Label, len(ds.Data), len(s.Labels))
		}
	}

	return nil
}

// Clone returns a deep copy so callers cannot mutate shared series
func (s *MetricsSeries) Clone() *MetricsSeries {
	if s == nil {
		return nil
	}

	out := &MetricsSeries{
		Labels:   append([]string(nil), s.Labels...),
		Datasets: make([]Dataset, len(s.Datasets)),
	}
	for i, ds := range s.Datasets {
		out.Datasets[i] = Dataset{
			Label: ds.Label,
			Data:  append([]float64(nil), ds.Data...),
			Axis:  ds.Axis,
		}
	}

	return out
}

// DecodeMetricsSeries reads a series from JSON. A body without a
// labels or datasets field is reported as ErrMalformedSeries.
func DecodeMetricsSeries(r io.Reader) (*MetricsSeries, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSeries, err)
	}

	for _, field := range []string{"labels", "datasets"} {
		v, ok := raw[field]
		if !ok || string(v) == "null" {
			return nil, fmt.Errorf("%w: missing %s", ErrMalformedSeries, field)
		}
	}

	series := &MetricsSeries{}
	if err := json.Unmarshal(raw["labels"], &series.Labels); err != nil {
		return nil, fmt.Errorf("%w: labels: %v", ErrMalformedSeries, err)
	}
	if err := json.Unmarshal(raw["datasets"], &series.Datasets); err != nil {
		return nil, fmt.Errorf("%w: datasets: %v", ErrMalformedSeries, err)
	}

	if err := series.Validate(); err != nil {
		return nil, err
	}

	return series, nil
}

// PerformanceMetric is one hourly sample of cluster throughput
type PerformanceMetric struct {
	ID             int64     `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	ActiveAgents   int       `json:"active_agents"`
	CompletedTasks int       `json:"completed_tasks"`
	Speed          float64   `json:"speed"`
}

// FormatHour renders an hour bucket label without a leading zero
func FormatHour(t time.Time) string {
	return fmt.Sprintf("%d:00", t.Hour())
}
