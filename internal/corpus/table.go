package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Column names every corpus file must carry in its header row.
const (
	columnID    = "id"
	columnTitle = "title"
	columnText  = "text"
)

// Table is an open corpus file with all rows materialized. Rows are
// addressable by their natural file order, which is the row-index space
// stored in document locators.
type Table struct {
	path string
	rows []Row
}

// OpenTable reads the corpus file at path. The first record must be a
// header naming the id, title, and text columns; extra columns are ignored.
func OpenTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{columnID, columnTitle, columnText} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("source file %s is missing column %q", path, required)
		}
	}

	var rows []Row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d of %s: %w", len(rows), path, err)
		}

		id, err := strconv.ParseInt(record[cols[columnID]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d of %s has non-numeric id %q: %w",
				len(rows), path, record[cols[columnID]], err)
		}

		rows = append(rows, Row{
			ID:    id,
			Title: record[cols[columnTitle]],
			Text:  record[cols[columnText]],
		})
	}

	return &Table{path: path, rows: rows}, nil
}

// Path returns the file path this table was read from.
func (t *Table) Path() string {
	return t.path
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.rows)
}

// Row returns the row at index i in natural file order.
// ok is false when i is out of range for the file as it exists now.
func (t *Table) Row(i int) (Row, bool) {
	if i < 0 || i >= len(t.rows) {
		return Row{}, false
	}
	return t.rows[i], true
}

// Rows returns all rows in natural file order.
func (t *Table) Rows() []Row {
	return t.rows
}

// CountRows returns the current number of data rows in the file at path
// without retaining the parsed table.
func CountRows(path string) (int, error) {
	t, err := OpenTable(path)
	if err != nil {
		return 0, err
	}
	return t.RowCount(), nil
}
