package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JonMunkholm/members/internal/logging"
)

// ImportOption configures a single Import call.
type ImportOption func(*importOptions)

type importOptions struct {
	progress func(done, total int)
}

// WithProgress reports after every processed row.
func WithProgress(fn func(done, total int)) ImportOption {
	return func(o *importOptions) { o.progress = fn }
}

// Import validates and saves every row of data inside one unit of work.
//
// A row that breaks a rule, or whose save fails, is recorded in the result
// and the scan continues. If any row failed, every write of the run is
// discarded and RolledBack is set; otherwise the run commits.
//
// A problem with the file itself returns a *FileFormatError before any row
// is touched. Cancellation aborts the run and returns the context error.
func (s *Service) Import(ctx context.Context, entity string, data []byte, opts ...ImportOption) (*ImportResult, error) {
	def, err := Lookup(entity)
	if err != nil {
		return nil, err
	}

	var o importOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := s.now()
	importID := uuid.NewString()
	logger := logging.WithFields(ctx, "import_id", importID, "entity", def.Info.Key)

	rows, err := s.readRows(def, data)
	if err != nil {
		logger.Info("import rejected", "error", err)
		return nil, err
	}

	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		if err := uow.Abort(context.WithoutCancel(ctx)); err != nil {
			logger.Error("abort import", "error", err)
		}
	}()

	logger.Info("import started", "rows", len(rows))

	led := newLedger(importID, def.Info.Key)
	check := NewCheck(uow)
	env := Env{Repos: uow, Hasher: s.hasher, Now: start}

	for i, row := range rows {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				logger.Warn("import cancelled", "row", row.Number, "error", err)
				return nil, err
			}
		}

		led.countRow()

		issues, err := def.Validate(ctx, check, row)
		if err != nil {
			return nil, fmt.Errorf("validate row %d: %w", row.Number, err)
		}

		if len(issues) > 0 {
			led.addIssues(row.Number, issues)
		} else {
			check.claim(def.Keys(row))

			var created Created
			err := uow.Savepoint(ctx, func() error {
				var perr error
				created, perr = def.Process(ctx, env, row)
				return perr
			})
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					logger.Warn("import cancelled", "row", row.Number, "error", ctxErr)
					return nil, ctxErr
				}
				logger.Warn("row save failed", "row", row.Number, "error", err)
				led.addError(row.Number, "Database", fmt.Sprintf("Failed to save %s: %v", def.Info.Key, err))
			} else {
				led.succeed(created)
			}
		}

		if o.progress != nil {
			o.progress(i+1, len(rows))
		}
	}

	if led.result.HasErrors() {
		if err := uow.Abort(ctx); err != nil {
			return nil, fmt.Errorf("roll back import: %w", err)
		}
		led.rollBack()
	} else {
		if err := uow.Commit(ctx); err != nil {
			logger.Error("commit import", "error", err)
			return nil, fmt.Errorf("commit import: %w", err)
		}
	}

	finished := s.now()
	result := led.seal(finished.Sub(start).Milliseconds())

	logger.Info("import finished",
		"total", result.TotalRows,
		"succeeded", result.SuccessCount,
		"failed", result.ErrorCount,
		"rolled_back", result.RolledBack,
		"duration_ms", result.DurationMs,
	)

	if s.publisher != nil {
		evt := newImportCompleted(ctx, result, finished)
		if err := s.publisher.PublishImportCompleted(context.WithoutCancel(ctx), evt); err != nil {
			logger.Warn("publish import event", "error", err)
		}
	}

	return result, nil
}
