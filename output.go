package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/Someblueman/semmap/internal/semmap"
)

var (
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#6C7A89")
)

// printer styles summaries when writing to a terminal and prints plain text otherwise.
type printer struct {
	styled bool

	title   lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	muted   lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	return &printer{
		styled:  isTerminal(w),
		title:   lipgloss.NewStyle().Bold(true),
		success: lipgloss.NewStyle().Foreground(colorSuccess),
		warn:    lipgloss.NewStyle().Foreground(colorWarning),
		err:     lipgloss.NewStyle().Foreground(colorError),
		muted:   lipgloss.NewStyle().Foreground(colorMuted),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

func (p *printer) heading(s string) string { return p.render(p.title, s) }
func (p *printer) ok(s string) string      { return p.render(p.success, s) }
func (p *printer) warning(s string) string { return p.render(p.warn, s) }
func (p *printer) failure(s string) string { return p.render(p.err, s) }
func (p *printer) dim(s string) string     { return p.render(p.muted, s) }

// reconcileSummary renders "+N -M" followed by one line per added or removed path.
func (p *printer) reconcileSummary(report semmap.ReconcileReport) string {
	var b strings.Builder
	b.WriteString(p.heading(report.Summary()))
	b.WriteByte('\n')
	for _, path := range report.Added {
		b.WriteString(p.ok("  + " + path))
		b.WriteByte('\n')
	}
	for _, path := range report.Removed {
		b.WriteString(p.failure("  - " + path))
		b.WriteByte('\n')
	}
	return b.String()
}

// issueLine renders one validation issue.
func (p *printer) issueLine(issue semmap.Issue) string {
	if issue.Severity == semmap.SeverityError {
		return p.failure(issue.String())
	}
	return p.warning(issue.String())
}

func (p *printer) validationSummary(report *semmap.Report) string {
	summary := fmt.Sprintf("%d error(s), %d warning(s)", report.ErrorCount(), report.WarningCount())
	switch {
	case report.HasErrors():
		return p.failure(summary)
	case report.WarningCount() > 0:
		return p.warning(summary)
	}
	return p.ok(summary)
}
