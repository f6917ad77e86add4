package internal

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

// SessionProgress tracks how far through a batch an annotator is, and when
// to nudge them toward a break. Rating quality degrades without breaks, so
// the reminders are part of the tool, not decoration.
type SessionProgress struct {
	Total     int
	Completed int
	StartedAt time.Time
	cfg       *Config
}

// NewSessionProgress creates progress tracking for a batch
func NewSessionProgress(total int, cfg *Config) *SessionProgress {
	return &SessionProgress{Total: total, StartedAt: time.Now(), cfg: cfg}
}

// Ratio returns completed/total in [0,1]
func (p *SessionProgress) Ratio() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total)
}

// Summary renders a one-line progress summary
func (p *SessionProgress) Summary() string {
	return fmt.Sprintf("%d/%d conversations rated (%.1f%%)", p.Completed, p.Total, p.Ratio()*100)
}

// BreakDue reports whether a break reminder is due after the latest rating
func (p *SessionProgress) BreakDue() bool {
	return p.cfg.BreakInterval > 0 && p.Completed > 0 && p.Completed%p.cfg.BreakInterval == 0
}

// SessionTooLong reports whether the session has run past the recommended
// duration. A max_session_minutes of 0 disables the check.
func (p *SessionProgress) SessionTooLong() bool {
	if p.cfg.MaxSessionMinutes <= 0 {
		return false
	}
	return time.Since(p.StartedAt) > time.Duration(p.cfg.MaxSessionMinutes)*time.Minute
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	if isTerminal(os.Stdout) {
		fmt.Printf("%s %s\n", successStyle.Render("✓"), message)
	} else {
		fmt.Println(message)
	}
}

// PrintError prints an error message
func PrintError(message string) {
	if isTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("✗"), message)
	} else {
		fmt.Fprintf(os.Stderr, "%s\n", message)
	}
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	if isTerminal(os.Stdout) {
		fmt.Printf("%s %s\n", progressStyle.Render("ℹ"), message)
	} else {
		fmt.Println(message)
	}
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	if isTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s %s\n", warningStyle.Render("⚠"), message)
	} else {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", message)
	}
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}
