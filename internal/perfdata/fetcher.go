package perfdata

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// Source tells where a series came from
type Source string

const (
	SourceRemote Source = "remote"
	SourceMock   Source = "mock"
)

// Result is the outcome of one fetch. Series is never nil.
type Result struct {
	Series *domain.MetricsSeries
	Source Source
	Err    error
}

// Fetcher reads performance data from the dashboard API and falls back
// to a mock series when the data cannot be used.
type Fetcher struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
	now        func() time.Time
}

// NewFetcher creates a Fetcher for the API at baseURL
func NewFetcher(baseURL string) *Fetcher {
	apiToken := os.Getenv("API_TOKEN")
	if apiToken == "" {
		apiToken = os.Getenv("API_KEY")
	}

	return &Fetcher{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		now: time.Now,
	}
}

// WithToken overrides the API token sent with requests
func (f *Fetcher) WithToken(token string) *Fetcher {
	f.apiToken = token
	return f
}

// Probe checks API connectivity. Callers log and ignore the error.
func (f *Fetcher) Probe(ctx context.Context) error {
	resp, err := f.get(ctx, "/api/debug")
	if err != nil {
		return fmt.Errorf("failed to reach debug endpoint: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("debug endpoint returned %d", resp.StatusCode)
	}

	return nil
}

// Fetch returns the remote series or, on any failure, a mock series
func (f *Fetcher) Fetch(ctx context.Context) Result {
	if err := f.Probe(ctx); err != nil {
		log.Printf("[perfdata] debug probe failed: %v", err)
	}

	series, err := f.fetchSeries(ctx)
	if err != nil {
		log.Printf("[perfdata] using mock performance data: %v", err)
		return Result{Series: MockSeries(f.now(), nil), Source: SourceMock, Err: err}
	}

	return Result{Series: series, Source: SourceRemote}
}

func (f *Fetcher) fetchSeries(ctx context.Context) (*domain.MetricsSeries, error) {
	resp, err := f.get(ctx, "/api/performance-data")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch performance data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, f.parseError(resp)
	}

	series, err := domain.DecodeMetricsSeries(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode performance data: %w", err)
	}

	return series, nil
}

func (f *Fetcher) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if f.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+f.apiToken)
	}

	return f.httpClient.Do(req)
}

func (f *Fetcher) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("performance endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
