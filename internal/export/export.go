package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// ErrNoResults aborts an export of an empty table
var ErrNoResults = errors.New("No results to export")

// Format is an export file type
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTXT  Format = "txt"
	FormatXLSX Format = "xlsx"
)

const (
	MimeCSV  = "text/csv"
	MimeTXT  = "text/plain"
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	baseName = "hashcat-results"
)

// Header is the first line of CSV and XLSX exports
var Header = []string{"Hash", "Plaintext", "Task ID", "Cracked At"}

// ParseFormat accepts csv, txt and xlsx in any case
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatTXT, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// FileName returns the download name, e.g. hashcat-results.csv
func (f Format) FileName() string {
	return baseName + "." + string(f)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return MimeCSV
	case FormatXLSX:
		return MimeXLSX
	default:
		return MimeTXT
	}
}

// File is an export ready to be downloaded or stored
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Encode renders rows in the given format
func Encode(f Format, rows []domain.ResultRow) (*File, error) {
	var (
		data []byte
		err  error
	)

	switch f {
	case FormatCSV:
		data, err = CSV(rows)
	case FormatTXT:
		data, err = TXT(rows)
	case FormatXLSX:
		data, err = XLSX(rows)
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}

	if err != nil {
		return nil, err
	}

	return &File{Name: f.FileName(), ContentType: f.ContentType(), Data: data}, nil
}

// CSV writes the header and one line per row with four cells or more.
// Fields are wrapped in double quotes as they are; quotes inside a
// value are not escaped.
func CSV(rows []domain.ResultRow) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNoResults
	}

	var buf bytes.Buffer
	buf.WriteString(strings.Join(Header, ","))
	buf.WriteByte('\n')

	for _, r := range rows {
		if r.Cells < 4 {
			continue
		}
		fmt.Fprintf(&buf, "\"%s\",\"%s\",\"%s\",\"%s\"\n", r.Hash, r.Plaintext, r.TaskID, r.CrackedAt)
	}

	return buf.Bytes(), nil
}

// TXT writes hash:plaintext lines for rows with two cells or more
func TXT(rows []domain.ResultRow) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNoResults
	}

	var buf bytes.Buffer
	for _, r := range rows {
		if r.Cells < 2 {
			continue
		}
		buf.WriteString(r.Hash)
		buf.WriteByte(':')
		buf.WriteString(r.Plaintext)
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}

// XLSX writes a single "Results" sheet with a bold header
func XLSX(rows []domain.ResultRow) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNoResults
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Results"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, col := range Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	lastCol, _ := excelize.CoordinatesToCellName(len(Header), 1)
	f.SetCellStyle(sheetName, "A1", lastCol, headerStyle)

	rowNum := 2
	for _, r := range rows {
		if r.Cells < 4 {
			continue
		}
		for i, v := range []string{r.Hash, r.Plaintext, r.TaskID, r.CrackedAt} {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowNum)
			f.SetCellStr(sheetName, cell, v)
		}
		rowNum++
	}

	for i := range Header {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 24)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}

	return buf.Bytes(), nil
}
