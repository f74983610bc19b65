package render

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/leapproof/internal/history"
)

// Runs prints recorded verification runs, newest first.
func (r *Renderer) Runs(runs []history.Run) error {
	mode := r.EffectiveMode()
	if mode == ModeJSON {
		if runs == nil {
			runs = []history.Run{}
		}
		return r.JSON(runs)
	}
	if len(runs) == 0 {
		r.Println("(no runs recorded)")
		return nil
	}

	s := r.styles
	t := r.newTable(table.Row{"Run", "Checked", "File", "Result", "Goal", "Failed lines"})
	for _, run := range runs {
		result := s.Success.Render("ok")
		if !run.OK {
			result = s.Error.Render("failed")
		}
		t.AppendRow(table.Row{
			shortID(run.ID),
			run.CheckedAt.UTC().Format("2006-01-02 15:04:05"),
			run.File,
			result,
			run.Goal,
			failedLines(run.Lines),
		})
	}

	if mode == ModeMarkdown {
		r.Println(FormatHeader(1, "History"))
		r.Println("")
		t.RenderMarkdown()
	} else {
		t.Render()
	}
	r.Printf("(%d runs)\n", len(runs))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func failedLines(lines []history.LineFailure) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%d (%s)", l.Line, l.Failure))
	}
	return strings.Join(parts, ", ")
}
