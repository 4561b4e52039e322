package core

import (
	"strings"
)

// ValidateHeader compares the first record of a file with the expected
// header. Cells are trimmed, then matched exactly and by position.
func ValidateHeader(got, want []string) error {
	trimmed := make([]string, len(got))
	for i, h := range got {
		trimmed[i] = strings.TrimSpace(h)
	}

	if len(trimmed) == len(want) {
		match := true
		for i := range want {
			if trimmed[i] != want[i] {
				match = false
				break
			}
		}
		if match {
			return nil
		}
	}

	return fileError(ErrHeaderMismatch, "Invalid CSV header. Expected: %s but found: %s",
		strings.Join(want, ","), strings.Join(trimmed, ","))
}
