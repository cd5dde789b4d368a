package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/genify/internal/formatter"
	"github.com/desertthunder/genify/internal/shared"
	"github.com/desertthunder/genify/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	InputView ViewState = iota
	AnalyzeView
	ResultView
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	barWidth      = 30
)

// analysisRun tracks one in-flight lookup so results from a canceled run can be ignored.
type analysisRun struct {
	progress chan tasks.ProgressUpdate
	done     chan analysisOutcome
	cancel   context.CancelFunc
}

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	view        ViewState
	analyzer    tasks.Analyzer
	opts        tasks.AnalyzeOpts
	width       int
	height      int
	input       textinput.Model
	inputErr    error
	spinner     spinner.Model
	run         *analysisRun
	progress    tasks.ProgressUpdate
	result      *tasks.AnalysisResult
	report      *formatter.Report
	suggestions list.Model
	err         error
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model that runs lookups through analyzer with opts.
func NewModel(ctx context.Context, analyzer tasks.Analyzer, opts tasks.AnalyzeOpts) *Model {
	ti := textinput.New()
	ti.Placeholder = "https://open.spotify.com/playlist/..."
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Width = defaultWidth - 6
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.bar))

	return &Model{
		ctx:      ctx,
		view:     InputView,
		analyzer: analyzer,
		opts:     opts,
		input:    ti,
		spinner:  sp,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init starts the cursor blinking in the playlist prompt.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-6, 20)
		m.resizeList()
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case InputView:
			return m.handleInputKeys(msg)
		case AnalyzeView:
			return m.handleAnalyzeKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != AnalyzeView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		if msg.run == nil || msg.run != m.run {
			return m, nil
		}
		switch msg.kind {
		case MsgProgressUpdate:
			m.progress = msg.data.(tasks.ProgressUpdate)
			return m, m.waitForProgress()
		case MsgAnalysisComplete:
			m.finish(msg.data.(analysisOutcome))
			return m, nil
		}
	}

	if m.view == InputView {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case InputView:
		return m.renderInput()
	case AnalyzeView:
		return m.renderAnalyze()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

// Err returns the error of the last completed lookup, if any.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		if value == "" {
			m.inputErr = fmt.Errorf("%w: enter a playlist URL, URI or ID", shared.ErrMissingArgument)
			return m, nil
		}
		if _, err := shared.ExtractPlaylistID(value); err != nil {
			m.inputErr = err
			return m, nil
		}
		m.inputErr = nil
		return m, m.startAnalysis(value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleAnalyzeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.cancelRun()
		return m, tea.Quit
	case "esc":
		m.cancelRun()
		m.view = InputView
		return m, m.input.Focus()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = InputView
		m.result = nil
		m.report = nil
		m.err = nil
		m.input.Reset()
		return m, m.input.Focus()
	}

	if m.report == nil {
		return m, nil
	}
	var cmd tea.Cmd
	m.suggestions, cmd = m.suggestions.Update(msg)
	return m, cmd
}

func (m *Model) startAnalysis(input string) tea.Cmd {
	ctx, cancel := context.WithCancel(m.ctx)
	run := &analysisRun{
		progress: make(chan tasks.ProgressUpdate, 16),
		done:     make(chan analysisOutcome, 1),
		cancel:   cancel,
	}
	m.run = run
	m.view = AnalyzeView
	m.progress = tasks.ProgressUpdate{Message: "Starting..."}
	m.input.Blur()

	analyzer, opts := m.analyzer, m.opts
	go func() {
		result, err := analyzer.Analyze(ctx, input, opts, run.progress)
		run.done <- analysisOutcome{result: result, err: err}
	}()

	return tea.Batch(m.spinner.Tick, m.waitForProgress())
}

func (m *Model) waitForProgress() tea.Cmd {
	run := m.run
	if run == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case update := <-run.progress:
			return progressUpdateMsg(run, update)
		case out := <-run.done:
			return analysisCompleteMsg(run, out.result, out.err)
		}
	}
}

func (m *Model) cancelRun() {
	if m.run != nil {
		m.run.cancel()
		m.run = nil
	}
}

func (m *Model) finish(out analysisOutcome) {
	m.cancelRun()
	m.view = ResultView
	m.result = out.result
	m.err = out.err
	m.report = nil
	if out.err != nil || out.result == nil {
		return
	}

	m.report = formatter.NewReport(out.result, 0)
	delegate := list.NewDefaultDelegate()
	m.suggestions = list.New(suggestionItems(m.report.Recommendations), delegate, 0, 0)
	m.suggestions.Title = "Suggested tracks"
	m.suggestions.SetShowStatusBar(false)
	m.suggestions.SetFilteringEnabled(false)
	m.suggestions.SetShowHelp(false)
	m.resizeList()
}

func (m *Model) resizeList() {
	if m.report == nil {
		return
	}
	w, h := m.width, m.height
	if w == 0 || h == 0 {
		w, h = defaultWidth, defaultHeight
	}
	m.suggestions.SetSize(w-4, max(h-len(m.report.Contributors)-10, 8))
}

func (m *Model) renderInput() string {
	title := styles.title.Render("Genify")
	prompt := "Enter a Spotify playlist URL, URI or ID:"

	var errLine string
	if m.inputErr != nil {
		errLine = "\n" + styles.err.Render(m.inputErr.Error())
	}

	quit := key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, quit})

	return fmt.Sprintf("%s\n%s\n%s%s\n\n%s", title, prompt, m.input.View(), errLine, helpView)
}

func (m *Model) renderAnalyze() string {
	title := styles.title.Render("Analyzing Playlist")
	status := fmt.Sprintf("%s %s", m.spinner.View(), phaseLabel(m.progress.Phase))

	var bar string
	if m.progress.Total > 1 {
		bar = "\n" + progressBar(m.progress.Step, m.progress.Total)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back})
	return fmt.Sprintf("%s\n%s\n%s%s\n\n%s", title, status, styles.help.Render(m.progress.Message), bar, helpView)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Analysis failed: %v", m.err)) + "\n\n" +
			m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})
	}
	if m.report == nil {
		return styles.err.Render("No result available") + "\n\n" +
			m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})
	}

	var b strings.Builder
	b.WriteString(styles.title.Render("Playlist: " + m.report.Playlist.Name))
	fmt.Fprintf(&b, "\nTotal tracks: %d\n\n", m.report.Playlist.TrackCount)

	if len(m.report.Recommendations) == 0 {
		b.WriteString(styles.warn.Render("No new tracks were suggested for this playlist."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.suggestions.View())
		b.WriteString("\n")
	}

	b.WriteString("\n" + styles.ok.Render("Contributor statistics:") + "\n")
	for _, c := range m.report.Contributors {
		fmt.Fprintf(&b, "User %s: %d tracks (%.1f%%)\n", c.Name, c.Count, c.Percent)
	}

	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.restart, m.keys.quit}))
	return b.String()
}

func phaseLabel(p tasks.Phase) string {
	switch p {
	case tasks.FetchPlaylist:
		return "Fetching playlist"
	case tasks.FetchTracks:
		return "Loading tracks"
	case tasks.FetchFeatures:
		return "Analyzing audio features"
	case tasks.ScoreTracks:
		return "Scoring tracks"
	case tasks.FetchRecommendations:
		return "Getting song suggestions"
	case tasks.TallyContributors:
		return "Analyzing contributor balance"
	case tasks.RecordLookup:
		return "Saving lookup"
	default:
		return "Working"
	}
}

func progressBar(step, total int) string {
	filled := min(barWidth*step/max(total, 1), barWidth)
	return styles.bar.Render(strings.Repeat("█", filled)) + strings.Repeat("░", barWidth-filled) +
		fmt.Sprintf(" %d/%d", step, total)
}
