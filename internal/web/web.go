// Package web serves the Genify front-end: an HTML form, a results page and a JSON API over the same
// [tasks.Analyzer] used by the CLI and terminal UI.
//
// # Routes
//
//	GET  /             → playlist form with one weight field per audio feature
//	POST /result       → run a lookup and render suggestions, target profile and contributor balance
//	GET  /api/analyze  → the same lookup as JSON (playlist=…&weight_energy=…&suggestions=…)
//	GET  /health       → {"status":"ok"}
//
// Pages are rendered server-side with html/template from embedded files. Each suggested track carries a
// QR code linking to it on Spotify.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/genify/internal/formatter"
	"github.com/desertthunder/genify/internal/models"
	"github.com/desertthunder/genify/internal/server"
	"github.com/desertthunder/genify/internal/shared"
	"github.com/desertthunder/genify/internal/tasks"
)

//go:embed templates/*.html
var templateFiles embed.FS

// AppOpts configures [NewApp].
type AppOpts struct {
	Analyzer  tasks.Analyzer
	Defaults  tasks.AnalyzeOpts // Pre-filled form values and fallbacks for omitted fields
	Logger    *log.Logger
	TopTracks int  // Representative tracks shown per result (default: formatter.DefaultTopTracks)
	NoQRCodes bool // Skip QR code generation on the results page
}

// App holds the handlers of the web front-end.
type App struct {
	analyzer  tasks.Analyzer
	defaults  tasks.AnalyzeOpts
	logger    *log.Logger
	templates *template.Template
	topTracks int
	qrCodes   bool
}

// NewApp parses the embedded templates and returns an [App].
func NewApp(opts AppOpts) (*App, error) {
	if opts.Analyzer == nil {
		return nil, fmt.Errorf("%w: analyzer is required", shared.ErrMissingArgument)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if len(opts.Defaults.Weights) == 0 {
		opts.Defaults.Weights = models.DefaultWeights()
	}
	if opts.Defaults.Suggestions <= 0 {
		opts.Defaults.Suggestions = 6
	}

	tmpl, err := template.New("genify").Funcs(templateFuncs).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &App{
		analyzer:  opts.Analyzer,
		defaults:  opts.Defaults,
		logger:    shared.WithLogger(opts.Logger, "component", "web"),
		templates: tmpl,
		topTracks: opts.TopTracks,
		qrCodes:   !opts.NoQRCodes,
	}, nil
}

// Register adds the form, result and API routes to r. [HealthHandler] is registered separately so it can
// sit outside rate limiting.
func (a *App) Register(r server.Router) {
	r.HandleFunc(http.MethodGet, "/{$}", a.Index)
	r.HandleFunc(http.MethodPost, "/result", a.Result)
	r.HandleFunc(http.MethodGet, "/api/analyze", a.Analyze)
}

// Index renders the playlist form.
func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	a.render(w, http.StatusOK, "index", newFormPage(a.defaults))
}

// Result runs a lookup from the submitted form and renders the results page.
func (a *App) Result(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.renderError(w, r, "", fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err))
		return
	}

	input, opts, err := parseLookup(r.PostForm, "spotify_url", a.defaults)
	if err != nil {
		a.renderError(w, r, input, err)
		return
	}

	res, err := a.analyzer.Analyze(r.Context(), input, opts, nil)
	if err != nil {
		a.renderError(w, r, input, err)
		return
	}

	report := formatter.NewReport(res, a.topTracks)
	page := resultPage{
		Title:       report.Playlist.Name,
		Input:       input,
		Report:      report,
		Suggestions: a.suggestions(report.Recommendations),
	}
	a.render(w, http.StatusOK, "result", page)
}

// Analyze is the JSON counterpart of [App.Result]. The playlist comes from the "playlist" query parameter.
func (a *App) Analyze(w http.ResponseWriter, r *http.Request) {
	input, opts, err := parseLookup(r.URL.Query(), "playlist", a.defaults)
	if err != nil {
		a.writeError(w, r, input, err)
		return
	}

	res, err := a.analyzer.Analyze(r.Context(), input, opts, nil)
	if err != nil {
		a.writeError(w, r, input, err)
		return
	}

	writeJSON(w, http.StatusOK, formatter.NewReport(res, a.topTracks))
}

// HealthHandler answers liveness probes.
type HealthHandler struct{}

var _ server.Handler = HealthHandler{}

func (HealthHandler) Routes() []string { return []string{"GET /health"} }

func (HealthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StatusFor maps a lookup error to the HTTP status shown to the client.
func StatusFor(err error) int {
	switch {
	case shared.IsInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrPlaylistNotFound), errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, shared.ErrMissingCredentials), errors.Is(err, shared.ErrMissingConfig):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func (a *App) logFailure(r *http.Request, input string, status int, err error) {
	kv := []any{"path", r.URL.Path, "input", input, "status", status, "error", err}
	if status >= http.StatusInternalServerError {
		a.logger.Error("lookup failed", kv...)
	} else {
		a.logger.Warn("lookup failed", kv...)
	}
}

func (a *App) renderError(w http.ResponseWriter, r *http.Request, input string, err error) {
	status := StatusFor(err)
	a.logFailure(r, input, status, err)
	a.render(w, status, "result", resultPage{Title: "Error", Input: input, Error: "Error: " + err.Error()})
}

func (a *App) writeError(w http.ResponseWriter, r *http.Request, input string, err error) {
	status := StatusFor(err)
	a.logFailure(r, input, status, err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// render executes a page template into memory first so a template error can still produce a 500.
func (a *App) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, name, data); err != nil {
		a.logger.Error("template execution failed", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
