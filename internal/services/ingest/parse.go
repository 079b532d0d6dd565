package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

// RawRow maps a header column name to the cell value of one data row. Rows
// only live between parsing and normalization.
type RawRow map[string]string

const (
	FormatXLSX = "xlsx"
	FormatXLS  = "xls"
	FormatCSV  = "csv"
)

var formatByMimeType = map[string]string{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FormatXLSX,
	"application/vnd.ms-excel": FormatXLS,
	"text/csv":                 FormatCSV,
}

var formatByExtension = map[string]string{
	".xlsx": FormatXLSX,
	".xls":  FormatXLS,
	".csv":  FormatCSV,
}

// DetectFormat resolves the declared MIME type against the allow-list,
// falling back to the file extension. Anything else is a FormatError.
func DetectFormat(fileName, mimeType string) (string, error) {
	if format, ok := formatByMimeType[normalizeMimeType(mimeType)]; ok {
		return format, nil
	}
	if format, ok := formatByExtension[strings.ToLower(filepath.Ext(fileName))]; ok {
		return format, nil
	}
	return "", &FormatError{Detail: "invalid file type, only Excel and CSV files are allowed"}
}

func normalizeMimeType(mimeType string) string {
	mimeType = strings.TrimSpace(strings.ToLower(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}

// ParseTable reads the first sheet of the given document into raw rows. The
// first row is the header; blank rows are skipped. Parsing is pure: no I/O
// beyond the byte slice.
func ParseTable(data []byte, format string) ([]RawRow, error) {
	if int64(len(data)) > MaxFileSize {
		return nil, &FormatError{Detail: "file size exceeds 50MB limit"}
	}

	switch format {
	case FormatCSV:
		return parseCSV(data)
	case FormatXLSX:
		return parseWorkbook(data)
	case FormatXLS:
		return parseLegacyWorkbook(data)
	default:
		return nil, &FormatError{Detail: fmt.Sprintf("unsupported format %q", format)}
	}
}

func parseCSV(data []byte) ([]RawRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, &MalformedInputError{Format: FormatCSV, Err: err}
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedInputError{Format: FormatCSV, Err: err}
		}
		rows = append(rows, record)
	}
	return tableToRows(header, rows), nil
}

func parseWorkbook(data []byte) ([]RawRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &MalformedInputError{Format: FormatXLSX, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &MalformedInputError{Format: FormatXLSX, Err: errors.New("workbook has no sheets")}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &MalformedInputError{Format: FormatXLSX, Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return tableToRows(rows[0], rows[1:]), nil
}

// parseLegacyWorkbook reads the pre-2007 binary workbook format, which
// excelize does not decode.
func parseLegacyWorkbook(data []byte) ([]RawRow, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &MalformedInputError{Format: FormatXLS, Err: err}
	}
	if wb.GetNumberSheets() == 0 {
		return nil, &MalformedInputError{Format: FormatXLS, Err: errors.New("workbook has no sheets")}
	}

	sheet, err := wb.GetSheet(0)
	if err != nil {
		return nil, &MalformedInputError{Format: FormatXLS, Err: err}
	}

	var table [][]string
	for i := 0; i < sheet.GetNumberRows(); i++ {
		row, err := sheet.GetRow(i)
		if err != nil {
			continue
		}
		cells := row.GetCols()
		record := make([]string, len(cells))
		for j, cell := range cells {
			record[j] = cell.GetString()
		}
		table = append(table, record)
	}
	if len(table) == 0 {
		return nil, nil
	}
	return tableToRows(table[0], table[1:]), nil
}

func tableToRows(header []string, records [][]string) []RawRow {
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	var out []RawRow
	for _, record := range records {
		if isBlankRecord(record) {
			continue
		}
		row := make(RawRow, len(columns))
		for i, column := range columns {
			if column == "" || i >= len(record) {
				continue
			}
			row[column] = strings.TrimSpace(record[i])
		}
		out = append(out, row)
	}
	return out
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
