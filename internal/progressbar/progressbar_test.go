package progressbar

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const page = `<html><body>
<div class="mb-4" id="task-1">
  <span class="progress-data hidden">42.5</span>
  <div class="bg-gray-200"><div class="h-2.5 bg-blue-600 rounded-full" style="width: 0%; color: red"></div></div>
</div>
<div class="mb-4" id="task-2">
  <span class="text-xs text-gray-500">Progress 17% done</span>
  <div class="bg-gray-200"><div class="h-2.5 bg-blue-600"></div></div>
</div>
<div class="mb-3" id="recovery">
  <span class="recovery-data">150</span>
  <div><div class="recovery-progress-bar"></div></div>
</div>
<div id="agent">
  <span id="agent-progress-data">63.25</span>
  <div id="agent-progress-indicator"></div>
</div>
<div class="mb-3">
  <span class="text-xs text-gray-500">8.5% complete</span>
  <div><div id="agent-progress-bar"></div></div>
</div>
<div class="progress-bar" data-width="30"></div>
<div class="mb-4" id="task-3">
  <span class="progress-data">n/a</span>
  <div><div class="h-2.5 bg-blue-600" style="width: 5%"></div></div>
</div>
</body></html>`

func load(t *testing.T, s string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

func TestSync(t *testing.T) {
	doc := load(t, page)

	assert.Equal(t, 6, Sync(doc))

	style := func(sel string) string {
		return doc.Find(sel).AttrOr("style", "")
	}

	assert.Equal(t, "width: 42.5%; color: red", style("#task-1 .bg-blue-600"))
	assert.Equal(t, "width: 17%", style("#task-2 .bg-blue-600"))
	assert.Equal(t, "width: 150%", style(".recovery-progress-bar"), "values are not clamped")
	assert.Equal(t, "width: 63.25%", style("#agent-progress-indicator"))
	assert.Equal(t, "width: 8.5%", style("#agent-progress-bar"))
	assert.Equal(t, "width: 30%", style(".progress-bar"))
	assert.Equal(t, "width: 5%", style("#task-3 .bg-blue-600"), "non-numeric data leaves the bar alone")
}

func TestSyncIdempotent(t *testing.T) {
	doc := load(t, page)

	Sync(doc)
	first, err := doc.Html()
	require.NoError(t, err)

	Sync(doc)
	second, err := doc.Html()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSyncWithoutAnchors(t *testing.T) {
	doc := load(t, `<html><body><p>nothing here</p></body></html>`)
	assert.Zero(t, Sync(doc))
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{in: "42", want: 42, ok: true},
		{in: " 42.5% ", want: 42.5, ok: true},
		{in: "-3", want: -3, ok: true},
		{in: ".5", want: 0.5, ok: true},
		{in: "1e2x", want: 100, ok: true},
		{in: "abc", ok: false},
		{in: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseFloat(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePercentText(t *testing.T) {
	v, ok := ParsePercentText("Cracked 12 of 40 (30%)")
	assert.True(t, ok)
	assert.Equal(t, 30.0, v)

	_, ok = ParsePercentText("no percentage")
	assert.False(t, ok)
}

func TestSetStyleWidth(t *testing.T) {
	tests := []struct {
		style string
		want  string
	}{
		{style: "", want: "width: 10%"},
		{style: "color: red;", want: "color: red; width: 10%"},
		{style: "WIDTH:3%;height:2px", want: "width: 10%; height:2px"},
		{style: "width: 1%; width: 2%", want: "width: 10%"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SetStyleWidth(tt.style, "10%"), tt.style)
	}
}

func parseNodes(t *testing.T, s string) []*html.Node {
	t.Helper()
	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div})
	require.NoError(t, err)
	return nodes
}

func TestObserver(t *testing.T) {
	doc := load(t, `<html><body><div id="list"></div></body></html>`)
	obs := NewObserver(doc)
	assert.Equal(t, 1, obs.Scans())

	assert.False(t, obs.Append(doc.Find("#list"), parseNodes(t, `<p>unrelated</p>`)...))
	assert.Equal(t, 1, obs.Scans())

	added := parseNodes(t, `<div class="mb-4"><span class="progress-data">77</span><div><div class="h-2.5 bg-blue-600"></div></div></div>`)
	assert.True(t, obs.Append(doc.Find("#list"), added...))
	assert.Equal(t, 2, obs.Scans())
	assert.Equal(t, "width: 77%", doc.Find("#list .bg-blue-600").AttrOr("style", ""))

	assert.False(t, obs.Notify())
	assert.True(t, obs.Notify(parseNodes(t, `<span id="agent-progress-data">1</span>`)...))
}

func TestMiddleware(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, `<html><body><div class="progress-bar" data-width="12"></div></body></html>`)
		case "/fragment":
			w.Header().Set("Content-Type", "text/html")
			_, _ = io.WriteString(w, `<div class="mb-4"><span class="progress-data">9</span><div><div class="h-2.5 bg-blue-600"></div></div></div>`)
		case "/plain-fragment":
			w.Header().Set("Content-Type", "text/html")
			_, _ = io.WriteString(w, `<p>hello   world</p>`)
		default:
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"progress-bar":1}`)
		}
	}))

	tests := []struct {
		name     string
		path     string
		htmx     bool
		contains string
		exact    string
	}{
		{name: "full page", path: "/page", contains: `style="width: 12%"`},
		{name: "htmx fragment", path: "/fragment", htmx: true, contains: `style="width: 9%"`},
		{name: "untouched fragment", path: "/plain-fragment", htmx: true, exact: `<p>hello   world</p>`},
		{name: "json passes through", path: "/json", exact: `{"progress-bar":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.htmx {
				req.Header.Set("HX-Request", "true")
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			if tt.contains != "" {
				assert.Contains(t, rec.Body.String(), tt.contains)
			}
			if tt.exact != "" {
				assert.Equal(t, tt.exact, rec.Body.String())
			}
		})
	}
}
