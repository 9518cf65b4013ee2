package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	logging "fundrace/internal/infra/log"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Table is a raw sheet: a header row plus data rows of strings.
type Table struct {
	Header []string
	Rows   [][]string
}

// LoadOptions selects what Load reads.
type LoadOptions struct {
	Measure string // defaults to DefaultMeasure
	Sheet   string // xlsx only, defaults to the first sheet
}

// Load reads a CSV or XLSX export and normalizes it.
func Load(path string, opts LoadOptions) (*Dataset, error) {
	if opts.Measure == "" {
		opts.Measure = DefaultMeasure
	}

	var (
		table *Table
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		table, err = ReadXLSX(path, opts.Sheet)
	default:
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		table, err = ReadCSV(f)
	}
	if err != nil {
		return nil, err
	}

	logging.LogInfo("Input table read",
		zap.String("path", path),
		zap.Int("columns", len(table.Header)),
		zap.Int("rows", len(table.Rows)))

	ds, err := Normalize(table, opts.Measure)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize %s: %w", path, err)
	}

	logging.LogInfo("Observations normalized",
		zap.String("measure", opts.Measure),
		zap.Int("observations", ds.Len()),
		zap.Int("dates", len(ds.Dates())))

	return ds, nil
}

// ReadCSV reads all records; the first one is the header.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return &Table{Header: header, Rows: records[1:]}, nil
}

// ReadXLSX reads a worksheet with the same layout as the CSV export.
func ReadXLSX(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}
	return &Table{Header: rows[0], Rows: rows[1:]}, nil
}
