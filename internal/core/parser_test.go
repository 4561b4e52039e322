package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseRows(t *testing.T) {
	tests := []struct {
		name string
		data string
		enc  Encoding
		want [][]string
	}{
		{
			name: "plain",
			data: "name,description\nBackend,desc1\n",
			want: [][]string{{"name", "description"}, {"Backend", "desc1"}},
		},
		{
			name: "utf-8 bom stripped",
			data: "\xEF\xBB\xBFname,description\nQA,x\n",
			want: [][]string{{"name", "description"}, {"QA", "x"}},
		},
		{
			name: "quoted delimiter and newline",
			data: "name,skills\nJohn,\"Go:EXPERT;Java:BEGINNER\"\nJane,\"a, b\nc\"\n",
			want: [][]string{{"name", "skills"}, {"John", "Go:EXPERT;Java:BEGINNER"}, {"Jane", "a, b\nc"}},
		},
		{
			name: "stray quote in unquoted cell",
			data: "name,description\nBackend,the \"core\" team\n",
			want: [][]string{{"name", "description"}, {"Backend", `the "core" team`}},
		},
		{
			name: "ragged rows allowed",
			data: "a,b,c\n1\n1,2,3,4\n",
			want: [][]string{{"a", "b", "c"}, {"1"}, {"1", "2", "3", "4"}},
		},
		{
			name: "windows-1252",
			data: "name\nCaf\xe9\n",
			enc:  EncodingWindows1252,
			want: [][]string{{"name"}, {"Café"}},
		},
		{
			name: "utf-16 with bom",
			data: "\xFF\xFEn\x00,\x00x\x00\n\x00",
			enc:  EncodingUTF8,
			want: [][]string{{"n", "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := tt.enc
			if enc == "" {
				enc = EncodingUTF8
			}
			got, err := ParseRows([]byte(tt.data), enc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRows_FileErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrEmptyFile},
		{"whitespace only", []byte("  \n\n"), ErrEmptyFile},
		{"bom only", []byte("\xEF\xBB\xBF"), ErrEmptyFile},
		{"invalid utf-8", []byte("name\n\xff\xfe\xfd\n"), ErrInvalidEncoding},
		{"bad spreadsheet", []byte("PK\x03\x04garbage"), ErrMalformedFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRows(tt.data, EncodingUTF8)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			_, ok := AsFileError(err)
			assert.True(t, ok, "expected *FileFormatError, got %T", err)
		})
	}
}

func TestParseRows_XLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]string{"name", "description"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]string{"Backend", "server side"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := ParseRows(buf.Bytes(), EncodingUTF8)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name", "description"}, {"Backend", "server side"}}, rows)
}

func TestParseEncoding(t *testing.T) {
	for in, want := range map[string]Encoding{
		"":             EncodingUTF8,
		"UTF8":         EncodingUTF8,
		"utf-16":       EncodingUTF16,
		"Windows-1252": EncodingWindows1252,
		"latin1":       EncodingLatin1,
	} {
		got, err := ParseEncoding(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseEncoding("ebcdic")
	assert.Error(t, err)
}

func TestValidateHeader(t *testing.T) {
	want := []string{"name", "description"}

	tests := []struct {
		name string
		got  []string
		ok   bool
	}{
		{"exact", []string{"name", "description"}, true},
		{"surrounding spaces trimmed", []string{" name ", "description\t"}, true},
		{"case differs", []string{"Name", "description"}, false},
		{"order differs", []string{"description", "name"}, false},
		{"missing column", []string{"name"}, false},
		{"extra column", []string{"name", "description", "extra"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHeader(tt.got, want)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrHeaderMismatch)
			assert.Contains(t, err.Error(), "Expected: name,description")
		})
	}
}
