package core

import (
	"strings"
	"testing"
)

func TestIsBlank(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"\t\n", true},
		{"x", false},
		{" x ", false},
	}
	for _, tt := range tests {
		if got := IsBlank(tt.input); got != tt.want {
			t.Errorf("IsBlank(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTooLong(t *testing.T) {
	if TooLong(strings.Repeat("é", 50), 50) {
		t.Error("50 multi-byte characters should fit a limit of 50")
	}
	if !TooLong(strings.Repeat("a", 51), 50) {
		t.Error("51 characters should exceed a limit of 50")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input  string
		wantOK bool
		isNil  bool
	}{
		{"2024-01-15", true, false},
		{"  2024-01-15 ", true, false},
		{"", true, true},
		{"15/01/2024", false, true},
		{"2024-02-30", false, true},
		{"2024-1-5", false, true},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.input)
		if ok != tt.wantOK {
			t.Errorf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
		}
		if (got == nil) != tt.isNil {
			t.Errorf("ParseDate(%q) = %v, want nil %v", tt.input, got, tt.isNil)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" a@x.io ; ;b@x.io;", ";")
	if len(got) != 2 || got[0] != "a@x.io" || got[1] != "b@x.io" {
		t.Errorf("SplitList = %q, want [a@x.io b@x.io]", got)
	}
	if got := SplitList("   ", ";"); got != nil {
		t.Errorf("SplitList(blank) = %q, want nil", got)
	}
}

func TestSplitFields(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"Go:EXPERT:3", 3},
		{"Go:EXPERT", 2},
		{"Java:", 1},
		{"Java::", 1},
		{"Java", 1},
		{":EXPERT", 2},
	}
	for _, tt := range tests {
		if got := SplitFields(tt.input, ":"); len(got) != tt.want {
			t.Errorf("SplitFields(%q) = %q, want %d parts", tt.input, got, tt.want)
		}
	}
}
