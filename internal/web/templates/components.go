// Package templates renders the HTMX fragments returned by the admin
// import endpoints.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/members/internal/core"
)

// fragment builds a component from a render function that collects its
// markup in a builder and writes it once.
func fragment(build func(b *strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		build(&b)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func text(b *strings.Builder, s string) {
	b.WriteString(templ.EscapeString(s))
}

// ErrorAlert is the inline error box shown in place of a result.
func ErrorAlert(message, action, code string) templ.Component {
	return fragment(func(b *strings.Builder) {
		b.WriteString(`<div class="alert alert-error" role="alert"><p class="alert-message">`)
		text(b, message)
		b.WriteString(`</p>`)
		if action != "" {
			b.WriteString(`<p class="alert-action">`)
			text(b, action)
			b.WriteString(`</p>`)
		}
		if code != "" {
			b.WriteString(`<p class="alert-code">Code: `)
			text(b, code)
			b.WriteString(`</p>`)
		}
		b.WriteString(`</div>`)
	})
}

// ImportSummary shows the outcome of an import run with every row error.
func ImportSummary(r *core.ImportResult) templ.Component {
	return fragment(func(b *strings.Builder) {
		state, class := "Import complete", "import-summary committed"
		if r.RolledBack {
			state, class = "Import rolled back", "import-summary rolled-back"
		}
		fmt.Fprintf(b, `<section class="%s" data-import-id="%s"><h3>`, class, templ.EscapeString(r.ImportID))
		text(b, state)
		b.WriteString(`</h3>`)
		fmt.Fprintf(b, `<dl><dt>Rows</dt><dd>%d</dd><dt>Valid</dt><dd>%d</dd><dt>Failed</dt><dd>%d</dd><dt>Duration</dt><dd>%d ms</dd></dl>`,
			r.TotalRows, r.SuccessCount, r.ErrorCount, r.DurationMs)

		if len(r.Errors) > 0 {
			b.WriteString(`<table class="import-errors"><thead><tr><th>Row</th><th>Field</th><th>Message</th></tr></thead><tbody>`)
			for _, e := range r.Errors {
				fmt.Fprintf(b, `<tr><td>%d</td><td>`, e.Row)
				text(b, e.Field)
				b.WriteString(`</td><td>`)
				text(b, e.Message)
				b.WriteString(`</td></tr>`)
			}
			b.WriteString(`</tbody></table>`)
		}
		if r.RolledBack {
			b.WriteString(`<p class="hint">Nothing was saved. Fix the rows above and upload the file again.</p>`)
		}
		b.WriteString(`</section>`)
	})
}

// PreviewTable lists the sampled rows of a preview with their messages.
func PreviewTable(p *core.PreviewResult) templ.Component {
	return fragment(func(b *strings.Builder) {
		if p.FileError != "" {
			b.WriteString(`<section class="preview rejected"><h3>File rejected</h3><p>`)
			text(b, p.FileError)
			b.WriteString(`</p></section>`)
			return
		}

		fmt.Fprintf(b, `<section class="preview" data-entity="%s"><p class="preview-totals">%d rows, %d valid, %d invalid</p>`,
			templ.EscapeString(p.Entity), p.TotalRows, p.ValidRows, p.InvalidRows)

		b.WriteString(`<table><thead><tr><th>Row</th>`)
		for _, h := range p.Headers {
			b.WriteString(`<th>`)
			text(b, h)
			b.WriteString(`</th>`)
		}
		b.WriteString(`<th>Errors</th></tr></thead><tbody>`)

		for _, row := range p.Rows {
			class := "valid"
			if !row.Valid {
				class = "invalid"
			}
			fmt.Fprintf(b, `<tr class="%s"><td>%d</td>`, class, row.RowNumber)
			for _, c := range row.Cells {
				b.WriteString(`<td>`)
				text(b, c)
				b.WriteString(`</td>`)
			}
			b.WriteString(`<td>`)
			text(b, strings.Join(row.Errors, "; "))
			b.WriteString(`</td></tr>`)
		}
		b.WriteString(`</tbody></table>`)

		if hidden := p.TotalRows - len(p.Rows); hidden > 0 {
			fmt.Fprintf(b, `<p class="hint">%d more rows not shown</p>`, hidden)
		}
		b.WriteString(`</section>`)
	})
}
