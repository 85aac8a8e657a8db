package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Format selects how a report is rendered
type Format string

const (
	FormatSummary Format = "summary"
	FormatJSON    Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatSummary, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown report format %q (expected summary or json)", s)
	}
}

// Reporter writes reports to a destination
type Reporter struct {
	writer io.Writer
	format Format
	styles styles
}

type styles struct {
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	muted  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header: r.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true),
		label:  r.NewStyle().Foreground(lipgloss.Color("#96CEB4")).Bold(true),
		value:  r.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),
		muted:  r.NewStyle().Foreground(lipgloss.Color("#626262")),
	}
}

// NewReporter creates a reporter. Colour is disabled when noColor is set or
// the writer is not a terminal.
func NewReporter(writer io.Writer, format Format, noColor bool) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	renderer := lipgloss.NewRenderer(writer)
	if noColor {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return &Reporter{
		writer: writer,
		format: format,
		styles: newStyles(renderer),
	}
}

// Write renders rep in the reporter's format.
func (r *Reporter) Write(rep *Report) error {
	switch r.format {
	case FormatJSON:
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		_, err = r.writer.Write(append(data, '\n'))
		return err
	case FormatSummary, "":
		_, err := io.WriteString(r.writer, r.summary(rep))
		return err
	default:
		return fmt.Errorf("unknown report format %q", r.format)
	}
}

func (r *Reporter) summary(rep *Report) string {
	s := r.styles
	cfg := rep.Config
	var b strings.Builder

	complete := "partial"
	if cfg.CompleteInformation {
		complete = "complete"
	}
	b.WriteString(s.header.Render(fmt.Sprintf("Congestion game: %s network, %d agents, %d trials of %d rounds",
		cfg.Topology, cfg.Agents, cfg.Trials, cfg.MaxIterations)))
	b.WriteString("\n")
	b.WriteString(s.muted.Render(fmt.Sprintf("epsilon %.3g, %s information, seed %d",
		cfg.ExplorationRate, complete, cfg.Seed)))
	b.WriteString("\n\n")

	for _, rt := range rep.Routes {
		b.WriteString(s.label.Render(rt.Route.String() + ":"))
		b.WriteString(" ")
		b.WriteString(s.value.Render(fmt.Sprintf("%.4f", rt.Frequency)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	payoffLine := func(name string, p PayoffSummary) {
		b.WriteString(s.label.Render(fmt.Sprintf("%-19s", name)))
		b.WriteString(s.value.Render(fmt.Sprintf("%.2f ± %.2f", p.Mean, p.StdDev)))
		b.WriteString(s.muted.Render(fmt.Sprintf(" (95%% CI %.2f to %.2f)", p.CI95Low, p.CI95High)))
		b.WriteString("\n")
	}
	payoffLine("Mean round payoff", rep.Payoffs.MeanRound)
	payoffLine("Final round payoff", rep.Payoffs.FinalRound)
	b.WriteString("\n")

	b.WriteString(s.muted.Render(fmt.Sprintf("%d rounds in %.2fs (%.0f rounds/s)",
		rep.Metadata.TotalRounds, rep.Metadata.DurationSeconds, rep.Metadata.RoundsPerSecond)))
	b.WriteString("\n")

	return b.String()
}
