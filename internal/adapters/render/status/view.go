package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/waapi-creator/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 24

// Summary is the outcome of one batch. Failed is empty when every name was
// created.
type Summary struct {
	Tool    domain.ToolInfo
	Parent  domain.ObjectID
	Type    string
	Total   int
	Created []domain.Object
	Failed  string
	Reason  string
	Elapsed time.Duration
}

func renderView(summary Summary, s styles) string {
	lines := []string{
		s.title.Render("Batch create"),
		s.header.Render(fmt.Sprintf("tool: %s  parent: %s", summary.Tool, parentLabel(summary.Parent))),
	}

	if summary.Total == 0 {
		lines = append(lines, s.detail.Render("nothing to create"))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines, s.section.Render(countLine(summary, s)))
	if summary.Failed != "" {
		lines = append(lines, s.warning.Render(fmt.Sprintf("stopped at %s: %s", summary.Failed, summary.Reason)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func countLine(summary Summary, s styles) string {
	created := len(summary.Created)
	percent := 100 * float64(created) / float64(summary.Total)

	parts := []string{
		s.countKey.Render(summary.Type + ":"),
		" ",
		renderProgressBar(percent, barWidth, s),
		" ",
		s.detail.Render(fmt.Sprintf("%d/%d created", created, summary.Total)),
	}
	if summary.Elapsed > 0 {
		parts = append(parts, " ", s.header.Render(fmt.Sprintf("in %s", summary.Elapsed.Round(time.Millisecond))))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func parentLabel(id domain.ObjectID) string {
	if id == "" {
		return "none"
	}
	return string(id)
}

func renderProgressBar(donePercent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(donePercent) / 100))
	filled = min(max(filled, 0), width)

	empty := width - filled
	fillSegment := s.barFill.Render(strings.Repeat("=", filled))
	emptySegment := s.barEmpty.Render(strings.Repeat("-", empty))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		fillSegment,
		emptySegment,
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
