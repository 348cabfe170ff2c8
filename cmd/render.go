package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"
	"github.com/nakachan-ing/fieldsync-cli/internal/model"
	"github.com/nakachan-ing/fieldsync-cli/internal/tasksync"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// statusLabel turns a wire status such as in_progress into "In Progress".
func statusLabel(status string) string {
	if status == "" {
		return "-"
	}
	return titleCaser.String(strings.ReplaceAll(status, "_", " "))
}

func colorStatus(status string) string {
	label := statusLabel(status)
	bucket, ok := tasksync.BucketOf(status)
	if !ok {
		return text.FgHiBlack.Sprintf("%s", label)
	}
	switch bucket {
	case tasksync.FilterOpen:
		return text.FgHiRed.Sprintf("%s", label)
	case tasksync.FilterProgress:
		return text.FgHiYellow.Sprintf("%s", label)
	case tasksync.FilterCompleted:
		return text.FgHiGreen.Sprintf("%s", label)
	case tasksync.FilterCancelled:
		return text.FgHiMagenta.Sprintf("%s", label)
	}
	return label
}

func colorPriority(priority string) string {
	switch strings.ToLower(priority) {
	case "high", "urgent", "critical":
		return text.FgHiRed.Sprintf("%s", priority)
	case "low":
		return text.FgHiBlue.Sprintf("%s", priority)
	default:
		return priority
	}
}

// truncate shortens s to width terminal cells.
func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return runewidth.Truncate(s, width, "…")
}

// formatTimestamp shows portal timestamps in local time when they parse,
// and verbatim otherwise.
func formatTimestamp(raw string) string {
	if raw == "" {
		return "-"
	}
	dt, err := strfmt.ParseDateTime(raw)
	if err != nil {
		return raw
	}
	return time.Time(dt).Local().Format("2006-01-02 15:04")
}

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleDouble)
	t.Style().Options.SeparateRows = false
	return t
}

func header(cols ...string) table.Row {
	row := make(table.Row, 0, len(cols))
	for _, c := range cols {
		row = append(row, text.FgGreen.Sprintf("%s", c))
	}
	return row
}

func renderTaskTable(out io.Writer, tasks []model.Task) {
	t := newTable(out)
	t.AppendHeader(header("ID", "Ticket", text.Bold.Sprintf("Title"), "Customer", "Status", "Priority", "Created"))

	for _, task := range tasks {
		t.AppendRow(table.Row{
			task.ID,
			task.TicketNumber,
			truncate(task.Title, 40),
			truncate(task.CustomerName, 24),
			colorStatus(task.Status),
			colorPriority(task.Priority),
			formatTimestamp(task.CreatedAt),
		})
	}
	t.Render()
}

func renderCounts(out io.Writer, counts tasksync.StatusCounts) {
	t := newTable(out)
	t.AppendHeader(header("Open", "In Progress", "Completed", "Cancelled", "Other", "Total"))
	t.AppendRow(table.Row{
		text.FgHiRed.Sprintf("%d", counts.Open),
		text.FgHiYellow.Sprintf("%d", counts.InProgress),
		text.FgHiGreen.Sprintf("%d", counts.Completed),
		text.FgHiMagenta.Sprintf("%d", counts.Cancelled),
		counts.Unrecognized,
		counts.Total(),
	})
	t.Render()
}

func renderUpdates(out io.Writer, updates []model.TaskUpdate) {
	t := newTable(out)
	t.AppendHeader(header("#", "When", "Field", "Value", "Result"))
	for _, u := range updates {
		result := text.FgHiGreen.Sprintf("sent")
		if !u.Succeeded {
			result = text.FgHiRed.Sprintf("failed: %s", truncate(u.Error, 50))
		}
		t.AppendRow(table.Row{u.ID, u.CreatedAt, u.Field, truncate(u.Value, 40), result})
	}
	t.Render()
}

// taskMarkdown is the text copied to the clipboard and rendered by task show.
func taskMarkdown(task model.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s\n\n", task.TicketNumber, task.Title)
	fmt.Fprintf(&b, "- **Status:** %s\n", statusLabel(task.Status))
	fmt.Fprintf(&b, "- **Priority:** %s\n", task.Priority)
	fmt.Fprintf(&b, "- **Type:** %s\n", task.IssueType)
	fmt.Fprintf(&b, "- **Customer:** %s\n", task.CustomerName)
	for _, kv := range [][2]string{
		{"City", task.CustomerCity},
		{"Address", task.CustomerAddress},
		{"Phone", task.CustomerPhone},
		{"Email", task.CustomerEmail},
	} {
		if kv[1] != "" {
			fmt.Fprintf(&b, "- **%s:** %s\n", kv[0], kv[1])
		}
	}
	if task.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", task.Description)
	}
	return b.String()
}

func formatSyncTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
