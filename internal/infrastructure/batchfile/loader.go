package batchfile

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gritsee-inspector/internal/domain/entity"
)

// headerScanRows is how many leading rows are searched for the header.
// Batch sheets often carry a title block above the real column names.
const headerScanRows = 10

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// Load reads a batch sheet (.csv or .xlsx) into batch items. The header row
// is located by looking for cells containing "link" and "fecha"; rows with a
// blank link are skipped; unparseable timestamps stay zero so the pipeline
// falls back to ingestion time.
func Load(path string) ([]entity.BatchItem, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported batch file %q: want .csv or .xlsx", path)
	}
	if err != nil {
		return nil, err
	}

	return parseRows(rows)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("batch file %q has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	return rows, nil
}

func parseRows(rows [][]string) ([]entity.BatchItem, error) {
	headerIdx, linkCol, dateCol := findHeader(rows)
	if headerIdx < 0 {
		return nil, fmt.Errorf("no header row with link and fecha columns in the first %d rows", headerScanRows)
	}

	var items []entity.BatchItem
	for _, row := range rows[headerIdx+1:] {
		if linkCol >= len(row) {
			continue
		}
		link := strings.TrimSpace(row[linkCol])
		if link == "" {
			continue
		}

		item := entity.BatchItem{ImageRef: link}
		if dateCol >= 0 && dateCol < len(row) {
			item.Timestamp = parseTimestamp(row[dateCol])
		}
		items = append(items, item)
	}
	return items, nil
}

// findHeader scans the leading rows for one containing both a "link" and a
// "fecha" cell, and returns the row index plus both column indexes.
func findHeader(rows [][]string) (headerIdx, linkCol, dateCol int) {
	limit := len(rows)
	if limit > headerScanRows {
		limit = headerScanRows
	}

	for i := 0; i < limit; i++ {
		linkCol, dateCol = -1, -1
		for c, cell := range rows[i] {
			v := strings.ToLower(cell)
			if linkCol < 0 && strings.Contains(v, "link") {
				linkCol = c
			}
			if dateCol < 0 && strings.Contains(v, "fecha") {
				dateCol = c
			}
		}
		if linkCol >= 0 && dateCol >= 0 {
			return i, linkCol, dateCol
		}
	}
	return -1, -1, -1
}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
