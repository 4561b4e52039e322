package core

// FieldError is one problem found in one field of one row.
type FieldError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportResult is the outcome of one import run. It is complete even when
// the run was rolled back, so the caller can report exactly what failed.
type ImportResult struct {
	ImportID     string       `json:"importId"`
	Entity       string       `json:"entity"`
	TotalRows    int          `json:"totalRows"`
	SuccessCount int          `json:"successCount"`
	ErrorCount   int          `json:"errorCount"`
	RolledBack   bool         `json:"rolledBack"`
	Errors       []FieldError `json:"errors"`
	Created      []Created    `json:"created"`
	DurationMs   int64        `json:"durationMs"`
}

// HasErrors reports whether any row failed.
func (r *ImportResult) HasErrors() bool {
	return r.ErrorCount > 0
}

// ErrorsForRow returns the errors recorded against row n.
func (r *ImportResult) ErrorsForRow(n int) []FieldError {
	var out []FieldError
	for _, e := range r.Errors {
		if e.Row == n {
			out = append(out, e)
		}
	}
	return out
}

// ledger accumulates an ImportResult during a run. Only the import engine
// writes to it, and nothing writes after seal.
type ledger struct {
	result     *ImportResult
	failedRows map[int]bool
	sealed     bool
}

func newLedger(importID, entity string) *ledger {
	return &ledger{
		result: &ImportResult{
			ImportID: importID,
			Entity:   entity,
			Errors:   []FieldError{},
			Created:  []Created{},
		},
		failedRows: make(map[int]bool),
	}
}

func (l *ledger) countRow() {
	l.mustBeOpen()
	l.result.TotalRows++
}

// addError records a problem; a row counts once toward ErrorCount however
// many errors it has.
func (l *ledger) addError(row int, field, message string) {
	l.mustBeOpen()
	l.result.Errors = append(l.result.Errors, FieldError{Row: row, Field: field, Message: message})
	if !l.failedRows[row] {
		l.failedRows[row] = true
		l.result.ErrorCount++
	}
}

func (l *ledger) addIssues(row int, issues Issues) {
	for _, is := range issues {
		l.addError(row, is.Field, is.Message)
	}
}

func (l *ledger) succeed(c Created) {
	l.mustBeOpen()
	l.result.SuccessCount++
	l.result.Created = append(l.result.Created, c)
}

// rollBack marks the run as discarded. SuccessCount keeps reporting how many
// rows would have been saved, but nothing created remains.
func (l *ledger) rollBack() {
	l.mustBeOpen()
	l.result.RolledBack = true
	l.result.Created = []Created{}
}

func (l *ledger) seal(durationMs int64) *ImportResult {
	l.result.DurationMs = durationMs
	l.sealed = true
	return l.result
}

func (l *ledger) mustBeOpen() {
	if l.sealed {
		panic("core: import ledger written after the run finished")
	}
}

// PreviewRow is one sampled row of a preview with the messages it would get
// on import.
type PreviewRow struct {
	RowNumber int      `json:"rowNumber"`
	Cells     []string `json:"cells"`
	Valid     bool     `json:"valid"`
	Errors    []string `json:"errors"`
}

// PreviewResult describes what an import of the same file would do.
// FileError is set instead of rows when the file itself is unusable.
type PreviewResult struct {
	Entity      string       `json:"entity"`
	Headers     []string     `json:"headers"`
	Rows        []PreviewRow `json:"rows"`
	TotalRows   int          `json:"totalRows"`
	ValidRows   int          `json:"validRows"`
	InvalidRows int          `json:"invalidRows"`
	HasErrors   bool         `json:"hasErrors"`
	FileError   string       `json:"fileError,omitempty"`
}
