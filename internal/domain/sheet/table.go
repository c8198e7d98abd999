package sheet

// NoHeader marks a table whose header row could not be detected.
const NoHeader = -1

// Table is a rectangular set of rows under a detected header.
type Table struct {
	// Name is the sheet name, page label or file stem.
	Name string
	// HeaderRow is the 0-based index of the header among the non-blank rows, or NoHeader.
	HeaderRow int
	// Columns are unique column names.
	Columns []string
	// Rows are data rows below the header, each len(Columns) wide.
	Rows [][]string
}

// HasHeader reports whether a header row was detected.
func (t *Table) HasHeader() bool { return t.HeaderRow != NoHeader }

// ColumnIndex returns the index of a column by name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at row/col, or "" when out of range.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}
