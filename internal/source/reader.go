package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned when the data source extension is neither
// .csv nor .xlsx.
var ErrUnsupportedFormat = errors.New("unsupported data source format")

// Row is one raw record from the data source. Cells maps header names to the
// raw cell text; Index is the 1-based data row number (the header row is not
// counted), used for error reporting and default test names.
type Row struct {
	Index int
	Cells map[string]string
}

// Get returns the trimmed cell value for the given column, or "" when the
// column is absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.Cells[column])
}

// Load reads a CSV or XLSX data source into ordered raw rows. For XLSX only
// the first sheet is read. The first record is treated as the header row.
func Load(path string) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path)
	case ".xlsx":
		return loadXLSX(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func loadCSV(path string) ([]Row, error) {
	clean := filepath.Clean(path)
	// #nosec G304 -- path comes from operator configuration
	f, err := os.Open(clean)
	if err != nil {
		return nil, fmt.Errorf("open data source: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	// Allow ragged rows; missing trailing cells read as empty.
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows []Row
	idx := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", idx+1, err)
		}
		idx++
		rows = append(rows, buildRow(header, rec, idx))
	}
	return rows, nil
}

func loadXLSX(path string) ([]Row, error) {
	clean := filepath.Clean(path)
	f, err := excelize.OpenFile(clean)
	if err != nil {
		return nil, fmt.Errorf("open data source: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		rows = append(rows, buildRow(header, rec, i+1))
	}
	return rows, nil
}

func buildRow(header, rec []string, index int) Row {
	cells := make(map[string]string, len(header))
	for i, col := range header {
		name := strings.TrimSpace(col)
		if name == "" {
			continue
		}
		if i < len(rec) {
			cells[name] = rec[i]
		} else {
			cells[name] = ""
		}
	}
	return Row{Index: index, Cells: cells}
}
