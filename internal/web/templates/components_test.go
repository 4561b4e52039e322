package templates

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/members/internal/core"
)

func TestErrorAlert_Escapes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ErrorAlert("<b>bad</b>", "", "FILE006").Render(context.Background(), &buf))

	out := buf.String()
	assert.Contains(t, out, "&lt;b&gt;bad&lt;/b&gt;")
	assert.Contains(t, out, "Code: FILE006")
	assert.NotContains(t, out, "alert-action")
}

func TestImportSummary(t *testing.T) {
	var buf bytes.Buffer
	err := ImportSummary(&core.ImportResult{
		ImportID:   "run-7",
		TotalRows:  2,
		ErrorCount: 1,
		RolledBack: true,
		Errors:     []core.FieldError{{Row: 3, Field: "email", Message: "User with email 'a@b.co' already exists"}},
	}).Render(context.Background(), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `data-import-id="run-7"`)
	assert.Contains(t, out, "Import rolled back")
	assert.Contains(t, out, "User with email &#39;a@b.co&#39; already exists")
	assert.Contains(t, out, "Nothing was saved")
}

func TestPreviewTable(t *testing.T) {
	var buf bytes.Buffer
	err := PreviewTable(&core.PreviewResult{
		Entity:      "team",
		Headers:     []string{"name", "description"},
		TotalRows:   5,
		ValidRows:   4,
		InvalidRows: 1,
		Rows: []core.PreviewRow{
			{RowNumber: 2, Cells: []string{"", "x"}, Errors: []string{"Name is required"}},
		},
	}).Render(context.Background(), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `<tr class="invalid"><td>2</td>`)
	assert.Contains(t, out, "Name is required")
	assert.Contains(t, out, "4 more rows not shown")
}

func TestPreviewTable_FileError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PreviewTable(&core.PreviewResult{FileError: "Invalid CSV header"}).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "File rejected")
	assert.NotContains(t, buf.String(), "<table>")
}
