// Package web renders the dashboard's HTML pages.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sadewadee/hashcat-dashboard/internal/charts"
	"github.com/sadewadee/hashcat-dashboard/internal/domain"
	"github.com/sadewadee/hashcat-dashboard/internal/perfdata"
	"github.com/sadewadee/hashcat-dashboard/internal/taskform"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page names
const (
	PageDashboard    = "dashboard"
	PageTasks        = "tasks"
	PageTaskProgress = "task_progress"
	PageResults      = "results"
	PageTaskNew      = "task_new"
)

var funcs = template.FuncMap{
	"percent": domain.FormatPercent,
	"crackedAt": func(t time.Time) string {
		return t.UTC().Format(domain.CrackedAtLayout)
	},
	"shortHash": func(s string) string {
		if len(s) <= 16 {
			return s
		}
		return s[:16] + "…"
	},
}

// Renderer executes the embedded templates
type Renderer struct {
	pages     map[string]*template.Template
	fragments *template.Template
	version   string
}

// NewRenderer parses every page together with the layout
func NewRenderer(version string) (*Renderer, error) {
	base, err := template.New("base").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/task_progress.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	r := &Renderer{
		pages:     make(map[string]*template.Template),
		fragments: base,
		version:   version,
	}

	for _, page := range []string{PageDashboard, PageTasks, PageResults, PageTaskNew} {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layout: %w", err)
		}

		t, err := clone.ParseFS(templatesFS, "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", page, err)
		}

		r.pages[page] = t
	}

	return r, nil
}

// Render writes a full page. data must embed Base.
func (r *Renderer) Render(w io.Writer, page string, data Page) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	data.base().Version = r.version
	return t.ExecuteTemplate(w, "layout", data)
}

// RenderFragment writes a template without the layout
func (r *Renderer) RenderFragment(w io.Writer, name string, data any) error {
	return r.fragments.ExecuteTemplate(w, name, data)
}

// ServePage renders into a buffer first so a failed template never
// leaves a half-written page.
func (r *Renderer) ServePage(w http.ResponseWriter, page string, data Page) {
	r.ServePageStatus(w, http.StatusOK, page, data)
}

// ServePageStatus is ServePage with a status other than 200, e.g. a
// form re-rendered with its validation error.
func (r *Renderer) ServePageStatus(w http.ResponseWriter, status int, page string, data Page) {
	var buf bytes.Buffer
	if err := r.Render(&buf, page, data); err != nil {
		log.Printf("template error: %v", err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// ServeFragment is ServePage for layout-less fragments
func (r *Renderer) ServeFragment(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := r.RenderFragment(&buf, name, data); err != nil {
		log.Printf("template error: %v", err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// Page is implemented by every page model through Base
type Page interface {
	base() *Base
}

// Base carries what the layout needs
type Base struct {
	Title   string
	Notice  string
	Version string
}

func (b *Base) base() *Base { return b }

// Donut is a status donut mount
type Donut struct {
	ID    string
	URL   template.URL
	Model charts.DonutModel
}

// DashboardPage is the model of /
type DashboardPage struct {
	Base
	Stats       domain.Stats
	TaskDonut   Donut
	AgentDonut  Donut
	Performance perfdata.Snapshot
	Loading     bool
}

// NewDashboardPage builds the dashboard model. The donut image URLs
// carry the counts the chart endpoints read.
func NewDashboardPage(stats domain.Stats, perf perfdata.Snapshot, loading bool) *DashboardPage {
	taskQuery := url.Values{}
	for _, s := range stats.Tasks.Segments() {
		taskQuery.Set(s.Key, fmt.Sprint(s.Value))
	}
	agentQuery := url.Values{}
	for _, s := range stats.Agents.Segments() {
		agentQuery.Set(s.Key, fmt.Sprint(s.Value))
	}

	return &DashboardPage{
		Base:  Base{Title: "Dashboard"},
		Stats: stats,
		TaskDonut: Donut{
			ID:    "task-status-chart",
			URL:   template.URL("/charts/tasks.svg?" + taskQuery.Encode()),
			Model: charts.TaskDonut(stats.Tasks),
		},
		AgentDonut: Donut{
			ID:    "agent-status-chart",
			URL:   template.URL("/charts/agents.svg?" + agentQuery.Encode()),
			Model: charts.AgentDonut(stats.Agents),
		},
		Performance: perf,
		Loading:     loading,
	}
}

// TasksPage is the model of /tasks
type TasksPage struct {
	Base
	Tasks []*domain.Task
	Total int
}

// ResultFilterForm holds the raw values of the filter form
type ResultFilterForm struct {
	HashValue string
	Plaintext string
	TaskID    string
}

// Query encodes the form for links that keep the current filter
func (f ResultFilterForm) Query() url.Values {
	q := url.Values{}
	if f.HashValue != "" {
		q.Set("hash_value", f.HashValue)
	}
	if f.Plaintext != "" {
		q.Set("plaintext", f.Plaintext)
	}
	if f.TaskID != "" {
		q.Set("task_id", f.TaskID)
	}
	return q
}

// ResultsPage is the model of /results
type ResultsPage struct {
	Base
	Results []*domain.Result
	Total   int
	Filter  ResultFilterForm
}

// ExportURL links an export of the current filter in format
func (p *ResultsPage) ExportURL(format string) string {
	q := p.Filter.Query()
	q.Set("format", format)
	return "/results/export?" + q.Encode()
}

// ModeOption is one entry of the attack mode selector
type ModeOption struct {
	Value    int
	Label    string
	Selected bool
}

// TaskForm holds the raw values of the new task form
type TaskForm struct {
	Name         string
	HashType     string
	HashTypeID   string
	Hashes       string
	AttackMode   string
	WordlistPath string
	RulePath     string
	Mask         string
}

// TaskNewPage is the model of /tasks/new
type TaskNewPage struct {
	Base
	Form     TaskForm
	Modes    []ModeOption
	Sections taskform.Sections
	Error    string
}

// NewTaskNewPage selects form.AttackMode and applies the section
// visibility for it. Empty, unparsable or unlisted values select the
// first listed mode, the one a browser would show.
func NewTaskNewPage(form TaskForm) *TaskNewPage {
	selected := domain.AttackModes[0]
	if m, ok := taskform.ParseMode(form.AttackMode); ok && m.IsValid() {
		selected = m
	}
	form.AttackMode = strconv.Itoa(int(selected))

	var f taskform.Form
	sections := f.Init(form.AttackMode)

	modes := make([]ModeOption, 0, len(domain.AttackModes))
	for _, m := range domain.AttackModes {
		modes = append(modes, ModeOption{Value: int(m), Label: m.String(), Selected: m == selected})
	}

	return &TaskNewPage{
		Base:     Base{Title: "New Task"},
		Form:     form,
		Modes:    modes,
		Sections: sections,
	}
}
