package perfdata

import (
	"math/rand/v2"
	"time"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// MockHours is the window of the locally generated series
const MockHours = 24

// MockSeries synthesizes a 24 hour series ending at now, used when the
// performance endpoint cannot be read. rng may be nil.
func MockSeries(now time.Time, rng *rand.Rand) *domain.MetricsSeries {
	series := &domain.MetricsSeries{
		Labels: make([]string, 0, MockHours),
		Datasets: []domain.Dataset{
			{Label: "Active Agents", Data: make([]float64, 0, MockHours), Axis: domain.AxisCount},
			{Label: "Completed Tasks", Data: make([]float64, 0, MockHours), Axis: domain.AxisCount},
			{Label: "Speed (MH/s)", Data: make([]float64, 0, MockHours), Axis: domain.AxisSpeed},
		},
	}

	for i := MockHours - 1; i >= 0; i-- {
		series.Labels = append(series.Labels, domain.FormatHour(now.Add(-time.Duration(i)*time.Hour)))

		series.Datasets[0].Data = append(series.Datasets[0].Data, float64(intN(rng, 10)))
		series.Datasets[1].Data = append(series.Datasets[1].Data, float64(intN(rng, 20)))
		series.Datasets[2].Data = append(series.Datasets[2].Data, float64N(rng)*10)
	}

	return series
}

func intN(rng *rand.Rand, n int) int {
	if rng == nil {
		return rand.IntN(n)
	}
	return rng.IntN(n)
}

func float64N(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.Float64()
	}
	return rng.Float64()
}
