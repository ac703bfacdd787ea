package perfdata

import (
	"context"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

func TestMockSeries(t *testing.T) {
	now := time.Date(2024, 6, 1, 5, 30, 0, 0, time.UTC)
	series := MockSeries(now, rand.New(rand.NewPCG(1, 2)))

	require.NoError(t, series.Validate())
	require.Len(t, series.Labels, 24)
	assert.Equal(t, "6:00", series.Labels[0])
	assert.Equal(t, "5:00", series.Labels[23])

	require.Len(t, series.Datasets, 3)
	assert.Equal(t, domain.AxisCount, series.Datasets[0].Axis)
	assert.Equal(t, domain.AxisCount, series.Datasets[1].Axis)
	assert.Equal(t, domain.AxisSpeed, series.Datasets[2].Axis)

	for i := range series.Labels {
		agents := series.Datasets[0].Data[i]
		assert.True(t, agents >= 0 && agents <= 9 && agents == float64(int(agents)))
		tasks := series.Datasets[1].Data[i]
		assert.True(t, tasks >= 0 && tasks <= 19 && tasks == float64(int(tasks)))
		speed := series.Datasets[2].Data[i]
		assert.True(t, speed >= 0 && speed < 10)
	}
}

func newAPI(t *testing.T, debugStatus int, dataStatus int, body string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/debug", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(debugStatus)
	})
	mux.HandleFunc("/api/performance-data", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(dataStatus)
		_, _ = w.Write([]byte(body))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcherFetch(t *testing.T) {
	valid := `{"labels":["1:00","2:00"],"datasets":[{"label":"Active Agents","data":[1,2],"axis":"count"}]}`

	tests := []struct {
		name        string
		debugStatus int
		dataStatus  int
		body        string
		wantSource  Source
	}{
		{name: "valid data", debugStatus: 200, dataStatus: 200, body: valid, wantSource: SourceRemote},
		{name: "debug failure is ignored", debugStatus: 500, dataStatus: 200, body: valid, wantSource: SourceRemote},
		{name: "missing datasets falls back", debugStatus: 200, dataStatus: 200, body: `{"labels":[]}`, wantSource: SourceMock},
		{name: "missing labels falls back", debugStatus: 200, dataStatus: 200, body: `{"datasets":[]}`, wantSource: SourceMock},
		{name: "server error falls back", debugStatus: 200, dataStatus: 502, body: `bad gateway`, wantSource: SourceMock},
		{name: "garbage falls back", debugStatus: 200, dataStatus: 200, body: `<html></html>`, wantSource: SourceMock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newAPI(t, tt.debugStatus, tt.dataStatus, tt.body)

			res := NewFetcher(srv.URL).Fetch(context.Background())

			assert.Equal(t, tt.wantSource, res.Source)
			require.NotNil(t, res.Series)
			assert.NoError(t, res.Series.Validate())
			if tt.wantSource == SourceMock {
				assert.Error(t, res.Err)
				assert.Len(t, res.Series.Labels, MockHours)
				assert.Len(t, res.Series.Datasets, 3)
			}
		})
	}
}

func TestFetcherUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := NewFetcher(url).Fetch(context.Background())

	assert.Equal(t, SourceMock, res.Source)
	assert.NotNil(t, res.Series)
}

func TestFetcherSendsToken(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, NewFetcher(srv.URL).WithToken("secret").Probe(context.Background()))
	assert.Equal(t, "Bearer secret", got.Load())
}

// gatedSource returns the series for each call once its gate is released
type gatedSource struct {
	mu    sync.Mutex
	gates []chan struct{}
	calls atomic.Int32
}

func (g *gatedSource) gate(i int) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	for len(g.gates) <= i {
		g.gates = append(g.gates, make(chan struct{}))
	}
	return g.gates[i]
}

func (g *gatedSource) Fetch(ctx context.Context) Result {
	n := int(g.calls.Add(1)) - 1
	<-g.gate(n)
	return Result{
		Series: &domain.MetricsSeries{Labels: []string{"call"}, Datasets: []domain.Dataset{{Label: "n", Data: []float64{float64(n)}}}},
		Source: SourceRemote,
	}
}

type instantSource struct{ calls atomic.Int32 }

func (s *instantSource) Fetch(context.Context) Result {
	s.calls.Add(1)
	return Result{Series: MockSeries(time.Now(), nil), Source: SourceMock}
}

func TestControllerDiscardsStaleResponses(t *testing.T) {
	src := &gatedSource{}
	c := NewController(src, time.Hour)
	ctx := context.Background()

	slow := make(chan bool)
	go func() { slow <- c.Refresh(ctx) }()
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)
	assert.True(t, c.Loading())

	fast := make(chan bool)
	go func() { fast <- c.Refresh(ctx) }()
	require.Eventually(t, func() bool { return src.calls.Load() == 2 }, time.Second, time.Millisecond)

	close(src.gate(1))
	assert.True(t, <-fast)

	close(src.gate(0))
	assert.False(t, <-slow, "older request resolving last must not overwrite newer data")

	snap := c.Snapshot()
	assert.Equal(t, uint64(2), snap.Token)
	assert.Equal(t, []float64{1}, snap.Series.Datasets[0].Data)
	assert.False(t, c.Loading())
}

func TestControllerStartStop(t *testing.T) {
	src := &instantSource{}
	c := NewController(src, 10*time.Millisecond)

	var applied atomic.Int32
	c.OnApply(func(s Snapshot) { applied.Add(1) })

	assert.Nil(t, c.Snapshot().Series)

	c.Start(context.Background())
	c.Start(context.Background())

	snap := c.Snapshot()
	require.NotNil(t, snap.Series, "first render happens before Start returns")
	assert.Equal(t, SourceMock, snap.Source)

	assert.Eventually(t, func() bool { return src.calls.Load() >= 3 }, time.Second, time.Millisecond)

	c.Stop()
	c.Stop()

	calls := src.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, src.calls.Load(), "no refresh after Stop")
	assert.GreaterOrEqual(t, applied.Load(), int32(3))
}

func TestChartSnapshotIsACopy(t *testing.T) {
	c := NewController(&instantSource{}, time.Hour)
	require.True(t, c.Refresh(context.Background()))

	snap := c.Snapshot()
	snap.Series.Labels[0] = "mutated"

	assert.NotEqual(t, "mutated", c.Snapshot().Series.Labels[0])
	assert.Same(t, c.Chart(), c.Chart())
}
