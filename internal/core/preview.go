package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/members/internal/logging"
)

// Preview reports what importing data as entity would do without writing
// anything. Problems with the file itself are returned in
// PreviewResult.FileError with a nil error; the error return is for unknown
// entities, store failures and cancellation.
//
// Only the first PreviewSampleSize rows are returned in detail, but every
// row is counted.
func (s *Service) Preview(ctx context.Context, entity string, data []byte) (*PreviewResult, error) {
	def, err := Lookup(entity)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	result := &PreviewResult{
		Entity:  def.Info.Key,
		Headers: def.Info.Headers,
		Rows:    []PreviewRow{},
	}

	rows, err := s.readRows(def, data)
	if err != nil {
		if fe, ok := AsFileError(err); ok {
			result.FileError = fe.Error()
			result.HasErrors = true
			return result, nil
		}
		return nil, err
	}

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer func() {
		if err := snap.Release(context.WithoutCancel(ctx)); err != nil {
			logging.FromContext(ctx).Warn("release preview snapshot", "entity", def.Info.Key, "error", err)
		}
	}()

	check := NewCheck(snap)
	for i, row := range rows {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		issues, err := def.Validate(ctx, check, row)
		if err != nil {
			return nil, fmt.Errorf("validate row %d: %w", row.Number, err)
		}

		result.TotalRows++
		valid := len(issues) == 0
		if valid {
			result.ValidRows++
			check.claim(def.Keys(row))
		} else {
			result.InvalidRows++
		}

		if len(result.Rows) < s.cfg.PreviewSampleSize {
			msgs := issues.Messages()
			if msgs == nil {
				msgs = []string{}
			}
			result.Rows = append(result.Rows, PreviewRow{
				RowNumber: row.Number,
				Cells:     row.Cells,
				Valid:     valid,
				Errors:    msgs,
			})
		}
	}

	result.HasErrors = result.InvalidRows > 0
	return result, nil
}
