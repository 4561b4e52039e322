package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Row is one parsed data record. Number is the 1-based position in the file
// counting the header, so the first data row is 2.
type Row struct {
	Number int
	Cells  []string
}

// Cell returns the trimmed value at column i, or "" when the row is short.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[i])
}

// Blank reports whether every cell is empty after trimming.
func (r Row) Blank() bool {
	for _, c := range r.Cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Issue is a single rule violation found in a row.
type Issue struct {
	Field   string
	Message string
}

// Issues collects the violations of one row in the order they were found.
type Issues []Issue

// Add appends a violation for field.
func (is *Issues) Add(field, format string, args ...any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	*is = append(*is, Issue{Field: field, Message: msg})
}

// Messages returns the violation messages without their field names, the
// shape a preview shows.
func (is Issues) Messages() []string {
	if len(is) == 0 {
		return nil
	}
	out := make([]string, len(is))
	for i, issue := range is {
		out[i] = issue.Message
	}
	return out
}

// Key is a natural key a row would occupy once saved, such as a team name.
// Scope separates independent keys of the same entity (position name and
// position abbreviation).
type Key struct {
	Scope string
	Value string
}

// Created references an entity persisted by an import.
type Created struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// EntityInfo describes an importable entity type.
type EntityInfo struct {
	// Key is the lowercase singular name used in routes and commands.
	Key   string `json:"key"`
	Label string `json:"label"`

	// Headers is the exact header row an upload must start with.
	Headers []string `json:"headers"`

	// ExportHeaders is the header row written by Export.
	ExportHeaders []string `json:"exportHeaders"`
}

// Check is what a validator reads: the live data through Finder and the keys
// already taken by earlier rows of the same file.
type Check struct {
	Finder
	claimed map[Key]bool
}

// NewCheck wraps finder with an empty set of claimed keys.
func NewCheck(finder Finder) *Check {
	return &Check{Finder: finder, claimed: make(map[Key]bool)}
}

// Claimed reports whether an earlier row of this file holds value in scope.
// Comparison is case-insensitive.
func (c *Check) Claimed(scope, value string) bool {
	return c.claimed[normalizeKey(scope, value)]
}

// claim records the keys of a row that passed validation. Preview and
// Import both claim before any save, so a failed save still holds its keys.
func (c *Check) claim(keys []Key) {
	for _, k := range keys {
		if strings.TrimSpace(k.Value) == "" {
			continue
		}
		c.claimed[normalizeKey(k.Scope, k.Value)] = true
	}
}

func normalizeKey(scope, value string) Key {
	return Key{Scope: scope, Value: strings.ToLower(strings.TrimSpace(value))}
}

// PasswordHasher turns a plaintext password into its stored form.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// Env is what a processor needs to persist a row.
type Env struct {
	Repos  Repositories
	Hasher PasswordHasher
	Now    time.Time
}

// Definition is everything the pipeline knows about one entity type. Every
// importable entity registers one at init time.
type Definition struct {
	Info EntityInfo

	// Validate applies the entity's rules to a row. Both preview and import
	// call it, so the two always agree. The error return is reserved for
	// lookup failures and aborts the run.
	Validate func(ctx context.Context, c *Check, row Row) (Issues, error)

	// Keys lists the natural keys a valid row occupies.
	Keys func(row Row) []Key

	// Process builds the entity for a valid row and saves it.
	Process func(ctx context.Context, env Env, row Row) (Created, error)

	// Sample returns illustrative data rows matching Info.Headers.
	Sample func() [][]string

	// Export serializes every live entity as rows matching Info.ExportHeaders.
	Export func(ctx context.Context, f Finder) ([][]string, error)
}
