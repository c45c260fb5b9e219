package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gridxml/domain/convert"
	"gridxml/internal/errors"
)

// csvSheetName is the synthetic sheet a CSV file presents as its only sheet.
const csvSheetName = "Sheet1"

// Workbook is a loaded spreadsheet: an ordered set of named sheets,
// immutable once opened, discarded after extraction.
type Workbook struct {
	filePath string
	fileType string // "xlsx" or "csv"
	xlsx     *excelize.File
	csvRows  [][]string
}

// OpenWorkbook loads a spreadsheet from disk. It fails with FILE_NOT_FOUND
// when the path does not exist and WORKBOOK_READ_ERROR when the file cannot
// be parsed.
func OpenWorkbook(filePath string) (*Workbook, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, errors.FileNotFound(filePath)
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}

	wb := &Workbook{filePath: filePath, fileType: fileType}

	startTime := time.Now()
	switch fileType {
	case "csv":
		file, err := os.Open(filePath)
		if err != nil {
			return nil, errors.WorkbookRead(filePath, err)
		}
		defer file.Close()

		reader := csv.NewReader(file)
		reader.FieldsPerRecord = -1
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, errors.WorkbookRead(filePath, err)
		}
		wb.csvRows = rows
	default:
		f, err := excelize.OpenFile(filePath)
		if err != nil {
			return nil, errors.WorkbookRead(filePath, err)
		}
		wb.xlsx = f
	}
	log.Printf("[Workbook] Opened %s file %s in %.2fms", strings.ToUpper(fileType), filePath, float64(time.Since(startTime).Nanoseconds())/1e6)

	return wb, nil
}

// Close releases the underlying file handle
func (w *Workbook) Close() error {
	if w.xlsx != nil {
		return w.xlsx.Close()
	}
	return nil
}

// SheetNames returns the workbook's sheet names in workbook order
func (w *Workbook) SheetNames() []string {
	if w.fileType == "csv" {
		return []string{csvSheetName}
	}
	return w.xlsx.GetSheetList()
}

// SelectSheet resolves the sheet to extract. An empty name selects the
// workbook's first sheet; a named sheet that does not exist fails with
// SHEET_NOT_FOUND.
func (w *Workbook) SelectSheet(name string) (string, error) {
	sheets := w.SheetNames()
	if len(sheets) == 0 {
		return "", errors.SheetNotFound("(workbook has no sheets)")
	}
	if name == "" {
		return sheets[0], nil
	}
	for _, sheet := range sheets {
		if sheet == name {
			return sheet, nil
		}
	}
	return "", errors.SheetNotFound(name)
}

// Extract reads the sheet's display grid into column names and records.
// Cell text is the display value (number and date formatting applied), the
// header row supplies column names with COL_<n> synthesized for blanks, and
// rows whose cells are all blank are dropped. Fails with EMPTY_DATA when no
// data rows survive.
func (w *Workbook) Extract(sheet string) (*convert.TableData, error) {
	var rows [][]string
	switch w.fileType {
	case "csv":
		rows = w.csvRows
	default:
		// GetRows applies the cell's number format, so a numeric 7 styled
		// as "000" comes back as "007" — the display text, not the raw value.
		var err error
		rows, err = w.xlsx.GetRows(sheet)
		if err != nil {
			return nil, errors.WorkbookRead(w.filePath, err)
		}
	}

	data, err := tableFromRows(rows)
	if err != nil {
		return nil, err
	}

	log.Printf("[Workbook] Extracted sheet %q (%d columns, %d rows)", sheet, len(data.Columns), len(data.Rows))
	return data, nil
}

// tableFromRows builds the column header map and the filtered record
// sequence from a raw display grid.
func tableFromRows(rows [][]string) (*convert.TableData, error) {
	if len(rows) == 0 {
		return nil, errors.EmptyData("sheet has no content")
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return nil, errors.EmptyData("sheet has no content")
	}

	headerRow := rows[0]
	columns := make([]string, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(headerRow) {
			name = strings.TrimSpace(headerRow[i])
		}
		if name == "" {
			name = fmt.Sprintf("COL_%d", i+1)
		}
		columns[i] = name
	}

	var records []convert.Row
	for _, row := range rows[1:] {
		record := make(convert.Row, width)
		nonEmpty := false
		for i, column := range columns {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			if strings.TrimSpace(value) != "" {
				nonEmpty = true
			}
			record[column] = value
		}
		if nonEmpty {
			records = append(records, record)
		}
	}

	if len(records) == 0 {
		return nil, errors.EmptyData("sheet has no data rows")
	}

	return &convert.TableData{Columns: columns, Rows: records}, nil
}
