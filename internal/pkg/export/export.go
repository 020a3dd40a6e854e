// internal/pkg/export/export.go
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Table is a rendered dataset ready to be written out.
type Table struct {
	Dataset string
	Header  []string
	Rows    [][]string
}

// Exportable rows know how to render themselves as a flat record.
type Exportable interface {
	ExportRow() []string
}

// NewTable renders items under header.
func NewTable[T Exportable](dataset string, header []string, items []T) Table {
	rows := make([][]string, len(items))
	for i, item := range items {
		rows[i] = item.ExportRow()
	}
	return Table{Dataset: dataset, Header: header, Rows: rows}
}

// WriteCSV writes the header and rows with standard quoting.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}

// WriteXLSX writes a single-sheet workbook with a bold header row.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Dataset
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRow(f, sheet, 1, t.Header); err != nil {
		return err
	}
	if len(t.Header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(t.Header), 1)
		if err != nil {
			return fmt.Errorf("failed to resolve header range: %w", err)
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	for i, row := range t.Rows {
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to resolve row %d: %w", row, err)
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

// Render encodes t in the given format and returns the body with its content type.
func Render(t Table, format string) ([]byte, string, error) {
	var buf bytes.Buffer
	switch format {
	case "", FormatCSV:
		if err := WriteCSV(&buf, t); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), ContentTypeCSV, nil
	case FormatXLSX:
		if err := WriteXLSX(&buf, t); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), ContentTypeXLSX, nil
	}
	return nil, "", fmt.Errorf("unsupported export format %q", format)
}

// Filename is <dataset>_<YYYY-MM-DD>.<ext>.
func Filename(dataset, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", dataset, now.Format("2006-01-02"), ext)
}

// Ext normalises a requested format to a file extension.
func Ext(format string) string {
	if format == "" {
		return FormatCSV
	}
	return format
}
