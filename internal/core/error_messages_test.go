package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"empty file sentinel", ErrEmptyFile, "FILE005"},
		{"wrapped header mismatch", &FileFormatError{Err: ErrHeaderMismatch, Message: "Invalid CSV header"}, "FILE006"},
		{"malformed file", fmt.Errorf("parse: %w", ErrMalformedFile), "FILE002"},
		{"too many rows", fileError(ErrTooManyRows, "too many"), "IMP001"},
		{"busy", ErrTooManyImports, "IMP002"},
		{"cancelled", fmt.Errorf("import: %w", context.Canceled), "IMP003"},
		{"deadline", context.DeadlineExceeded, "IMP004"},
		{"unknown entity", fmt.Errorf("%w: %q", ErrUnknownEntity, "widgets"), "ENT001"},
		{"duplicate key from store", errors.New(`duplicate key value violates unique constraint "teams_name_key"`), "DB001"},
		{"foreign key", errors.New(`insert on table "projects" violates foreign key constraint`), "DB003"},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5432: connection refused"), "DB004"},
		{"struct constraint", errors.New("constraint violation: email violates max=255"), "DB008"},
		{"body too large", errors.New("http: request body too large"), "FILE001"},
		{"case insensitive", errors.New("DEADLOCK detected"), "DB007"},
		{"unknown error", errors.New("something odd"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapError(tt.err).Code; got != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrTooManyImports)
	want := "The system is busy processing other imports (Code: IMP002). Please wait a moment and try again"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil error should not be user facing")
	}
	if !IsUserFacing(ErrEmptyFile) {
		t.Error("empty file should be user facing")
	}
	if IsUserFacing(errors.New("random internal error xyz")) {
		t.Error("unknown error should not be user facing")
	}
}

func TestNewUserError(t *testing.T) {
	if got := NewUserError(nil); got != nil {
		t.Errorf("NewUserError(nil) = %v, want nil", got)
	}

	techErr := errors.New("pq: duplicate key value")
	userErr := NewUserError(techErr)
	if userErr.Error() != "A record with this value already exists" {
		t.Errorf("Error() = %q, want user message", userErr.Error())
	}
	if !errors.Is(userErr, techErr) {
		t.Error("Unwrap() should return the technical error")
	}
}
