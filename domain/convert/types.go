package convert

// Row represents one extracted data row as column-name to display-text pairs.
// Column order lives in TableData.Columns; every row's keys are drawn from it.
type Row map[string]string

// TableData represents the complete extracted dataset of one sheet
type TableData struct {
	Columns []string // Column headers, in column order
	Rows    []Row    // Data rows, in row order, all-empty rows excluded
}

// HeaderField is a caller-supplied metadata pair rendered into the XML
// header section, independent of spreadsheet content.
type HeaderField struct {
	Name  string
	Value any
}
