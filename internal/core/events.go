package core

import (
	"context"
	"time"
)

// ImportCompleted is published after every import run that reached the end
// of its file, whether it committed or rolled back.
type ImportCompleted struct {
	ImportID     string    `json:"importId"`
	Entity       string    `json:"entity"`
	TotalRows    int       `json:"totalRows"`
	SuccessCount int       `json:"successCount"`
	ErrorCount   int       `json:"errorCount"`
	RolledBack   bool      `json:"rolledBack"`
	DurationMs   int64     `json:"durationMs"`
	Actor        Actor     `json:"actor"`
	FinishedAt   time.Time `json:"finishedAt"`
}

// EventPublisher delivers import events. Publishing is best effort: a failure
// is logged and never changes the import result.
type EventPublisher interface {
	PublishImportCompleted(ctx context.Context, evt ImportCompleted) error
}

func newImportCompleted(ctx context.Context, r *ImportResult, finished time.Time) ImportCompleted {
	return ImportCompleted{
		ImportID:     r.ImportID,
		Entity:       r.Entity,
		TotalRows:    r.TotalRows,
		SuccessCount: r.SuccessCount,
		ErrorCount:   r.ErrorCount,
		RolledBack:   r.RolledBack,
		DurationMs:   r.DurationMs,
		Actor:        ActorFromContext(ctx),
		FinishedAt:   finished,
	}
}
