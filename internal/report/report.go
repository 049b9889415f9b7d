package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/provisr/provisr/internal/model"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	summaryStyle = lipgloss.NewStyle().Bold(true)
)

// Render formats step results as a human-readable run summary. Styling is
// dropped when colored is false, e.g. when stdout is not a terminal.
func Render(results []model.StepResult, colored bool) string {
	var b strings.Builder

	var succeeded, failed, skipped int
	var total time.Duration

	for _, res := range results {
		total += res.Duration

		var symbol, line string
		switch res.Status {
		case model.StatusSuccess:
			succeeded++
			symbol = "✓"
			line = fmt.Sprintf("%s %s (%s)", symbol, res.StepID, res.Duration.Round(time.Millisecond))
			if colored {
				line = successStyle.Render(line)
			}
		case model.StatusFailed:
			failed++
			symbol = "✗"
			line = fmt.Sprintf("%s %s: %s", symbol, res.StepID, res.Message)
			if colored {
				line = failureStyle.Render(line)
			}
		default:
			skipped++
			symbol = "-"
			line = fmt.Sprintf("%s %s: %s", symbol, res.StepID, res.Message)
			if colored {
				line = skippedStyle.Render(line)
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	summary := fmt.Sprintf("%d succeeded, %d failed, %d skipped (%s)", succeeded, failed, skipped, total.Round(time.Millisecond))
	if colored {
		summary = summaryStyle.Render(summary)
	}
	b.WriteString(summary)
	b.WriteString("\n")

	return b.String()
}
