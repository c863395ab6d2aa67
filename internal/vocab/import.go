package vocab

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ImportOptions selects where rows are read from.
type ImportOptions struct {
	// Sheet is the workbook sheet; empty means the first sheet.
	Sheet string
	// SkipHeader drops the first row.
	SkipHeader bool
}

// DefaultImportOptions reads the first sheet and skips a header row.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{SkipHeader: true}
}

// ImportResult summarizes an import.
type ImportResult struct {
	Processed int
	Imported  int
	Skipped   int
	Errors    []string
}

// Import reads entries from an .xlsx workbook or a .csv file. Columns A-D hold
// korean, english, part of speech and level. Invalid rows are skipped and
// reported in the result.
func Import(path string, opts ImportOptions) ([]Entry, ImportResult, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(path, opts.Sheet)
	default:
		return nil, ImportResult{}, fmt.Errorf("unsupported file type %q (want .xlsx or .csv)", filepath.Ext(path))
	}
	if err != nil {
		return nil, ImportResult{}, err
	}

	var result ImportResult
	var entries []Entry
	for i, row := range rows {
		if i == 0 && opts.SkipHeader {
			continue
		}
		if blankRow(row) {
			continue
		}
		result.Processed++
		entry, err := entryFromRow(row)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		entries = append(entries, entry)
		result.Imported++
	}
	if len(entries) == 0 {
		return nil, result, ErrEmpty
	}
	return entries, result, nil
}

func readWorkbook(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for read-only workbook.
			_ = cerr
		}
	}()
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only csv.
			_ = cerr
		}
	}()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func entryFromRow(row []string) (Entry, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	entry := Entry{
		Korean:  cell(0),
		English: cell(1),
		POS:     ParsePOS(cell(2)),
	}
	if entry.Korean == "" {
		return Entry{}, fmt.Errorf("korean is empty")
	}
	if entry.English == "" {
		return Entry{}, fmt.Errorf("english is empty")
	}
	level, err := strconv.Atoi(cell(3))
	if err != nil {
		return Entry{}, fmt.Errorf("invalid level %q", cell(3))
	}
	if err := checkLevel(level); err != nil {
		return Entry{}, err
	}
	entry.Level = level
	return entry, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
