package core

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/members/internal/config"
)

const (
	defaultMaxRows           = 10000
	defaultPreviewSampleSize = 10

	// cancelCheckInterval is how many rows are processed between context checks.
	cancelCheckInterval = 100
)

// Service runs previews, imports and file generation for every registered
// entity against one Store.
type Service struct {
	store     Store
	cfg       config.ImportConfig
	encoding  Encoding
	hasher    PasswordHasher
	publisher EventPublisher
	limiter   *ImportLimiter
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithPasswordHasher sets the hasher used for imported user passwords.
func WithPasswordHasher(h PasswordHasher) Option {
	return func(s *Service) { s.hasher = h }
}

// WithEventPublisher sets where import-completed events go.
func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock overrides time.Now, for deterministic timestamps in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLimiter replaces the limiter built from the config.
func WithLimiter(l *ImportLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

// NewService creates a Service. Zero limits in cfg fall back to defaults.
func NewService(store Store, cfg config.ImportConfig, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("core: store is required")
	}
	enc, err := ParseEncoding(cfg.Encoding)
	if err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = defaultMaxRows
	}
	if cfg.PreviewSampleSize <= 0 {
		cfg.PreviewSampleSize = defaultPreviewSampleSize
	}

	s := &Service{
		store:    store,
		cfg:      cfg,
		encoding: enc,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.limiter == nil {
		s.limiter = NewImportLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime)
	}
	return s, nil
}

// Entities describes every importable entity, sorted by key.
func (s *Service) Entities() []EntityInfo {
	defs := All()
	infos := make([]EntityInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// Limiter exposes the concurrency limiter for status reporting.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// WaitForImports blocks until no preview or import is running, or ctx ends.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// readRows parses a file for def: header check, blank-row skipping and the
// row cap. Errors about the file are *FileFormatError.
func (s *Service) readRows(def Definition, data []byte) ([]Row, error) {
	records, err := ParseRows(data, s.encoding)
	if err != nil {
		return nil, err
	}
	if err := ValidateHeader(records[0], def.Info.Headers); err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		row := Row{Number: i + 2, Cells: rec}
		if row.Blank() {
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) > s.cfg.MaxRows {
		return nil, fileError(ErrTooManyRows, "The file has %d data rows; at most %d are allowed per import", len(rows), s.cfg.MaxRows)
	}
	return rows, nil
}
