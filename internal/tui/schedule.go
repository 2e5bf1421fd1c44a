package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vvka-141/retrier/internal/retry"
	"github.com/vvka-141/retrier/pkg/retrier"
)

// RenderSchedule formats the waits of a retry schedule as a table.
func RenderSchedule(cfg retrier.Config, steps []retry.Step) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Retry schedule"))
	b.WriteString("\n")
	b.WriteString(MutedStyle.Render(fmt.Sprintf(
		"max attempts %d, multiplier %s, min timeout %s, max timeout %s",
		cfg.MaxAttempts(),
		strconv.FormatFloat(cfg.Multiplier(), 'g', -1, 64),
		cfg.MinTimeout(),
		cfg.MaxTimeout(),
	)))
	b.WriteString("\n")

	if len(steps) == 0 {
		b.WriteString("single attempt, no waits\n")
		return b.String()
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(MutedStyle).
		Headers("after attempt", "wait up to", "sample").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}
			return CellStyle
		})

	for _, s := range steps {
		t.Row(strconv.Itoa(s.Attempt), s.MaxWait.String(), s.Sample.String())
	}

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("worst-case total wait: %s\n", retry.WorstCaseWait(steps)))
	return b.String()
}
