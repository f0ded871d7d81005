// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"todoboard/internal/service"
)

const (
	// SectionSeparator is the separator line around section headers.
	SectionSeparator = "------------"

	// MarkdownStyle is the glamour style used for descriptions.
	MarkdownStyle = "notty"
)

// FormatTodo formats a todo line.
// Format: "{ID:>4}  [x] {TITLE}[  {START} - {END}][  @{ASSIGNEE}]\n"
func FormatTodo(w io.Writer, todo service.Todo, assignee string) {
	check := " "
	if todo.Completed {
		check = "x"
	}
	line := fmt.Sprintf("%4d  [%s] %s", todo.ID, check, DisplayTitle(todo.Title))
	if span := TimeSpan(todo); span != "" {
		line += "  " + span
	}
	if assignee != "" {
		line += "  @" + assignee
	}
	fmt.Fprintln(w, line)
}

// FormatSectionHeader formats a section header with the number of entries.
func FormatSectionHeader(w io.Writer, title string, count int) {
	fmt.Fprintln(w, SectionSeparator)
	fmt.Fprintf(w, "%s (%d)\n", title, count)
	fmt.Fprintln(w, SectionSeparator)
}

// FormatTodoDetail formats a single todo with every field. description is
// printed as given, after a blank line, when non-empty.
func FormatTodoDetail(w io.Writer, todo service.Todo, assignee, description string) {
	status := "active"
	if todo.Completed {
		status = "completed"
	}
	fmt.Fprintf(w, "#%d %s\n", todo.ID, DisplayTitle(todo.Title))
	fmt.Fprintf(w, "status:   %s\n", status)
	fmt.Fprintf(w, "color:    %s\n", todo.Color)
	if todo.Date != nil {
		fmt.Fprintf(w, "date:     %s\n", *todo.Date)
	}
	if span := TimeSpan(todo); span != "" {
		fmt.Fprintf(w, "time:     %s\n", span)
	}
	if assignee != "" {
		fmt.Fprintf(w, "assignee: %s\n", assignee)
	}
	if description = strings.TrimSpace(description); description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, description)
	}
}

// FormatMember formats a team member line.
// Format: "{ID:>4}  {NAME}[  {AVATAR}]\n"
func FormatMember(w io.Writer, m service.TeamMember) {
	line := fmt.Sprintf("%4d  %s", m.ID, DisplayTitle(m.Name))
	if m.Avatar != nil && *m.Avatar != "" {
		line += "  " + *m.Avatar
	}
	fmt.Fprintln(w, line)
}

// RenderMarkdown renders md for the terminal. On a rendering failure the
// source text is returned unchanged.
func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, MarkdownStyle)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

// TimeSpan renders the start/end times of a todo, or "" when neither is set.
func TimeSpan(todo service.Todo) string {
	start := strings.TrimSpace(service.Deref(todo.StartTime))
	end := strings.TrimSpace(service.Deref(todo.EndTime))
	switch {
	case start != "" && end != "":
		return start + " - " + end
	case start != "":
		return "from " + start
	case end != "":
		return "until " + end
	}
	return ""
}

// DisplayTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func DisplayTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
