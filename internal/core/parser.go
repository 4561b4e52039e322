package core

// parser.go turns an uploaded file into records.
//
// CSV uploads are decoded from the configured text encoding (a byte-order
// mark always wins) and read with a quoting-aware reader. XLSX uploads are
// detected by their zip signature and read from the first sheet.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names the text encoding assumed for CSV uploads without a BOM.
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingUTF16       Encoding = "utf-16"
	EncodingWindows1252 Encoding = "windows-1252"
	EncodingLatin1      Encoding = "iso-8859-1"
)

// ParseEncoding resolves a configured encoding name.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "utf-16", "utf16":
		return EncodingUTF16, nil
	case "windows-1252", "cp1252":
		return EncodingWindows1252, nil
	case "iso-8859-1", "latin1":
		return EncodingLatin1, nil
	}
	return "", fmt.Errorf("unsupported encoding %q", name)
}

var zipMagic = []byte("PK\x03\x04")

// ParseRows reads every record of an uploaded file. The first record is the
// header. Empty, undecodable or malformed input yields a *FileFormatError.
func ParseRows(data []byte, enc Encoding) ([][]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fileError(ErrEmptyFile, "The uploaded file is empty")
	}

	if bytes.HasPrefix(data, zipMagic) {
		return parseXLSX(data)
	}

	text, err := decode(data, enc)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fileError(ErrEmptyFile, "The uploaded file is empty")
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, fileError(ErrMalformedFile, "Unable to parse file: line %d: %v", pe.Line, pe.Err)
		}
		return nil, fileError(ErrMalformedFile, "Unable to parse file: %v", err)
	}
	if len(records) == 0 {
		return nil, fileError(ErrEmptyFile, "The uploaded file is empty")
	}
	return records, nil
}

func decode(data []byte, enc Encoding) (string, error) {
	var fallback transform.Transformer
	switch enc {
	case EncodingUTF16:
		fallback = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case EncodingWindows1252:
		fallback = charmap.Windows1252.NewDecoder()
	case EncodingLatin1:
		fallback = charmap.ISO8859_1.NewDecoder()
	default:
		fallback = transform.Nop
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(fallback), data)
	if err != nil {
		return "", fileError(ErrInvalidEncoding, "Unable to decode file as %s: %v", enc, err)
	}
	if !utf8.Valid(out) {
		return "", fileError(ErrInvalidEncoding, "The file is not valid %s text", enc)
	}
	return string(out), nil
}

func parseXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fileError(ErrMalformedFile, "Unable to open spreadsheet: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fileError(ErrEmptyFile, "The spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fileError(ErrMalformedFile, "Unable to read spreadsheet rows: %v", err)
	}
	if len(rows) == 0 {
		return nil, fileError(ErrEmptyFile, "The uploaded file is empty")
	}
	return rows, nil
}
