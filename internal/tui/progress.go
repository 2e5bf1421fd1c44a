package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// RetryFunc is the work shown by RunWithProgress. It must pass onRetry to the
// executor it drives and honor ctx.
type RetryFunc func(ctx context.Context, onRetry func(attempt int, err error, delay time.Duration)) error

type retryMsg struct {
	attempt int
	err     error
	delay   time.Duration
	at      time.Time
}

type doneMsg struct {
	err error
}

type clockMsg time.Time

// progressModel renders a spinner, the attempt counter and the pending wait.
type progressModel struct {
	spinner     spinner.Model
	title       string
	maxAttempts int
	cancel      context.CancelFunc

	failed   int
	lastErr  error
	waitEnds time.Time
	now      time.Time

	done bool
	err  error
}

func newProgressModel(title string, maxAttempts int, cancel context.CancelFunc) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return progressModel{
		spinner:     s,
		title:       title,
		maxAttempts: maxAttempts,
		cancel:      cancel,
		now:         time.Now(),
	}
}

func tickClock() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return clockMsg(t) })
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickClock())
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil
	case retryMsg:
		m.failed = msg.attempt + 1
		m.lastErr = msg.err
		m.waitEnds = msg.at.Add(msg.delay)
		return m, nil
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case clockMsg:
		m.now = time.Time(msg)
		return m, tickClock()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		if m.err != nil {
			return ErrorStyle.Render("✗ "+m.title+": "+m.err.Error()) + "\n"
		}
		return SuccessStyle.Render("✓ "+m.title) + "\n"
	}

	var b strings.Builder
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(m.title)
	b.WriteString(MutedStyle.Render(fmt.Sprintf("  attempt %d/%d", m.failed+1, m.maxAttempts)))

	if m.lastErr != nil {
		if remaining := m.waitEnds.Sub(m.now); remaining > 0 {
			b.WriteString(WarningStyle.Render(fmt.Sprintf("  next in %s", remaining.Round(100*time.Millisecond))))
		}
		b.WriteString("\n  ")
		b.WriteString(MutedStyle.Render(truncate(m.lastErr.Error(), 120)))
	}
	return b.String() + "\n"
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// RunWithProgress runs fn while drawing an animated status on stderr.
// Without a terminal it simply calls fn with the given fallback callback.
func RunWithProgress(ctx context.Context, title string, maxAttempts int, fallback func(int, error, time.Duration), fn RetryFunc) error {
	if !IsInteractive() {
		return fn(ctx, fallback)
	}
	return runProgram(ctx, os.Stderr, title, maxAttempts, fn)
}

func runProgram(ctx context.Context, out io.Writer, title string, maxAttempts int, fn RetryFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(
		newProgressModel(title, maxAttempts, cancel),
		tea.WithOutput(out),
		tea.WithContext(ctx),
	)

	result := make(chan error, 1)
	go func() {
		err := fn(ctx, func(attempt int, err error, delay time.Duration) {
			p.Send(retryMsg{attempt: attempt, err: err, delay: delay, at: time.Now()})
		})
		result <- err
		p.Send(doneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		// The program stops early when ctx is cancelled; the work result still wins.
		cancel()
	}
	return <-result
}
