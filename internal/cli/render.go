// Package cli renders import results for the terminal.
package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"

	"github.com/JonMunkholm/members/internal/core"
)

var (
	accent  = lipgloss.Color("#FF0000")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	warning = lipgloss.Color("#FFAA00")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(warning).Bold(true)
)

const rule = "  ─────────────────────────────────────"

// RenderEntities lists the importable entities and their headers.
func RenderEntities(w io.Writer, infos []core.EntityInfo) {
	fmt.Fprintln(w)
	for _, info := range infos {
		fmt.Fprintf(w, "  %s %s\n", titleStyle.Render(fmt.Sprintf("%-10s", info.Key)), mutedStyle.Render(strings.Join(info.Headers, ",")))
	}
	fmt.Fprintln(w)
}

// RenderPreview prints the totals and the sampled rows of a preview.
func RenderPreview(w io.Writer, r *core.PreviewResult) {
	fmt.Fprintln(w)
	if r.FileError != "" {
		fmt.Fprintln(w, errorStyle.Render("  ✗ FILE REJECTED"))
		fmt.Fprintf(w, "  %s\n\n", r.FileError)
		return
	}

	if r.HasErrors {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("  ! %s PREVIEW: %d OF %d ROWS INVALID", strings.ToUpper(r.Entity), r.InvalidRows, r.TotalRows)))
	} else {
		fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("  ✓ %s PREVIEW: ALL %d ROWS VALID", strings.ToUpper(r.Entity), r.TotalRows)))
	}
	fmt.Fprintln(w, mutedStyle.Render(rule))

	for _, row := range r.Rows {
		mark := successStyle.Render("✓")
		if !row.Valid {
			mark = errorStyle.Render("✗")
		}
		fmt.Fprintf(w, "  %s %s %s\n", mark, mutedStyle.Render(fmt.Sprintf("row %-5d", row.RowNumber)), strings.Join(row.Cells, ", "))
		for _, msg := range row.Errors {
			fmt.Fprintf(w, "      %s\n", errorStyle.Render(msg))
		}
	}
	if hidden := r.TotalRows - len(r.Rows); hidden > 0 {
		fmt.Fprintf(w, "  %s\n", mutedStyle.Render(fmt.Sprintf("… %d more rows not shown", hidden)))
	}
	fmt.Fprintln(w)
}

// RenderImport prints the outcome of an import and every row error.
func RenderImport(w io.Writer, r *core.ImportResult) {
	fmt.Fprintln(w)
	switch {
	case r.RolledBack:
		fmt.Fprintln(w, errorStyle.Render("  ✗ IMPORT ROLLED BACK"))
	default:
		fmt.Fprintln(w, successStyle.Render("  ✓ IMPORT COMPLETE"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Entity:   "), titleStyle.Render(r.Entity))
	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Rows:     "), titleStyle.Render(fmt.Sprint(r.TotalRows)))
	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Succeeded:"), titleStyle.Render(fmt.Sprint(r.SuccessCount)))
	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Failed:   "), titleStyle.Render(fmt.Sprint(r.ErrorCount)))
	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Time:     "), titleStyle.Render(formatDuration(time.Duration(r.DurationMs)*time.Millisecond)))
	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Import ID:"), mutedStyle.Render(r.ImportID))

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, mutedStyle.Render(rule))
		for _, fe := range r.Errors {
			fmt.Fprintf(w, "  %s %s %s\n",
				mutedStyle.Render(fmt.Sprintf("row %-5d", fe.Row)),
				warnStyle.Render(fmt.Sprintf("%-14s", fe.Field)),
				fe.Message)
		}
	}
	if r.RolledBack {
		fmt.Fprintln(w)
		fmt.Fprintln(w, mutedStyle.Render("  Nothing was saved. Fix the rows above and import the file again."))
	}
	fmt.Fprintln(w)
}

// RenderError prints err in its operator-facing form.
func RenderError(w io.Writer, err error) {
	msg := core.MapError(err)
	text := msg.Message
	if fe, ok := core.AsFileError(err); ok {
		text = fe.Error()
	}
	fmt.Fprintln(w, errorStyle.Render("  ✗ "+text))
	if msg.Action != "" {
		fmt.Fprintln(w, mutedStyle.Render("  "+msg.Action))
	}
	if msg.Code != "" {
		fmt.Fprintln(w, mutedStyle.Render("  code "+msg.Code))
	}
}

// Progress draws a bar for an import once the row count is known. Pass
// Update to core.WithProgress.
type Progress struct {
	w           io.Writer
	description string
	bar         *progressbar.ProgressBar
}

func NewProgress(w io.Writer, description string) *Progress {
	return &Progress{w: w, description: description}
}

func (p *Progress) Update(done, total int) {
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetDescription(p.description),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "█",
				SaucerHead:    "█",
				SaucerPadding: "░",
			}),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set(done)
}

// Finish clears the bar, if one was drawn.
func (p *Progress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}
