package core

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// utf8BOM prefixes generated CSV files so spreadsheet programs detect UTF-8.
const utf8BOM = "\uFEFF"

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// File is generated content ready to download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Template returns an empty upload file holding only the header row.
func (s *Service) Template(entity string) (*File, error) {
	def, err := Lookup(entity)
	if err != nil {
		return nil, err
	}
	data, err := encodeCSV(def.Info.Headers, nil)
	if err != nil {
		return nil, err
	}
	return &File{
		Name:        fmt.Sprintf("%ss_import_template.csv", def.Info.Key),
		ContentType: ContentTypeCSV,
		Data:        data,
	}, nil
}

// Sample returns an upload file with illustrative rows.
func (s *Service) Sample(entity string) (*File, error) {
	def, err := Lookup(entity)
	if err != nil {
		return nil, err
	}
	data, err := encodeCSV(def.Info.Headers, def.Sample())
	if err != nil {
		return nil, err
	}
	return &File{
		Name:        fmt.Sprintf("%ss_sample.csv", def.Info.Key),
		ContentType: ContentTypeCSV,
		Data:        data,
	}, nil
}

// Export writes every live record of entity as csv or xlsx. An empty format
// means csv.
func (s *Service) Export(ctx context.Context, entity, format string) (*File, error) {
	def, err := Lookup(entity)
	if err != nil {
		return nil, err
	}

	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer snap.Release(context.WithoutCancel(ctx))

	rows, err := def.Export(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", def.Info.Key, err)
	}

	stamp := s.now().Format("20060102_150405")
	name := fmt.Sprintf("%ss_export_%s.%s", def.Info.Key, stamp, format)

	if format == FormatXLSX {
		data, err := encodeXLSX(def.Info.Label, def.Info.ExportHeaders, rows)
		if err != nil {
			return nil, err
		}
		return &File{Name: name, ContentType: ContentTypeXLSX, Data: data}, nil
	}

	data, err := encodeCSV(def.Info.ExportHeaders, rows)
	if err != nil {
		return nil, err
	}
	return &File{Name: name, ContentType: ContentTypeCSV, Data: data}, nil
}

func encodeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write rows: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeXLSX(sheet string, header []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write spreadsheet: %w", err)
	}
	return buf.Bytes(), nil
}
