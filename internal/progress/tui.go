package progress

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	colorLime = "154"
	colorGray = "245"
	colorRed  = "196"
)

// tuiRenderer drives a bubbletea program showing a spinner, stage label,
// and progress bar for the running index/reindex.
type tuiRenderer struct {
	mu      sync.Mutex
	program *tea.Program
	cancel  context.CancelFunc
	done    chan struct{}
}

func newTUIRenderer(cfg Config) (*tuiRenderer, error) {
	if !isTTY(cfg.Output) {
		return nil, fmt.Errorf("output is not a TTY")
	}
	return &tuiRenderer{done: make(chan struct{})}, nil
}

func (r *tuiRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, r.cancel = context.WithCancel(ctx)

	model := newModel()
	r.program = tea.NewProgram(model, tea.WithOutput(os.Stdout))

	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()
	return nil
}

func (r *tuiRenderer) Update(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program != nil {
		r.program.Send(updateMsg(event))
	}
}

func (r *tuiRenderer) AddError(file string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program != nil {
		r.program.Send(errorMsg{file: file, err: err})
	}
}

func (r *tuiRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program != nil {
		r.program.Send(completeMsg(stats))
	}
}

func (r *tuiRenderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
	if r.program == nil {
		return nil
	}
	r.program.Quit()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
	}
	return nil
}

var _ Renderer = (*tuiRenderer)(nil)

type updateMsg Event
type errorMsg struct {
	file string
	err  error
}
type completeMsg CompletionStats

type model struct {
	spinner  spinner.Model
	bar      progressbar.Model
	stage    Stage
	current  int
	total    int
	file     string
	errCount int
	complete bool
	stats    CompletionStats
}

func newModel() *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(colorLime))

	p := progressbar.New(progressbar.WithSolidFill(colorLime), progressbar.WithWidth(40), progressbar.WithoutPercentage())

	return &model{spinner: s, bar: p}
}

func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 20
		if m.bar.Width < 10 {
			m.bar.Width = 10
		}

	case updateMsg:
		m.stage = msg.Stage
		m.current = msg.Current
		m.total = msg.Total
		m.file = msg.CurrentFile
		return m, nil

	case errorMsg:
		m.errCount++
		return m, nil

	case completeMsg:
		m.complete = true
		m.stats = CompletionStats(msg)
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) View() string {
	if m.complete {
		return fmt.Sprintf("Complete: %d files, %d chunks in %s\n", m.stats.Files, m.stats.Chunks, m.stats.Duration.Round(100*time.Millisecond))
	}

	label := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorLime)).Render(m.stage.String())
	var bar string
	if m.total > 0 {
		percent := float64(m.current) / float64(m.total)
		bar = fmt.Sprintf("%s %3.0f%% (%d/%d)", m.bar.ViewAs(percent), percent*100, m.current, m.total)
	} else {
		bar = "preparing..."
	}

	lines := []string{fmt.Sprintf("%s %s  %s", m.spinner.View(), label, bar)}
	if m.file != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)).Render(m.file))
	}
	if m.errCount > 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed)).Render(fmt.Sprintf("%d errors", m.errCount)))
	}
	return strings.Join(lines, "\n") + "\n"
}
