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

	"emptrack/internal/domain"
)

// Task log column headers.
const (
	ColDate         = "Date"
	ColWorkMode     = "Work Mode"
	ColEmpID        = "Emp Id"
	ColName         = "Name"
	ColProject      = "Project Name"
	ColTaskTitle    = "Task Title"
	ColAssignedBy   = "Task Assigned By"
	ColPriority     = "Task Priority"
	ColStatus       = "Task Status"
	ColPlan         = "Plan for next day"
	ColComments     = "Comments"
	ColPerformance  = "Employee Performance (%)"
	ColEffort       = "Effort (in hours)"
	ColAvailability = "Availability"
)

var knownTaskColumns = map[string]struct{}{
	strings.ToLower(ColDate): {}, strings.ToLower(ColEmpID): {}, strings.ToLower(ColName): {},
	strings.ToLower(ColProject): {}, strings.ToLower(ColTaskTitle): {}, strings.ToLower(ColPriority): {},
	strings.ToLower(ColStatus): {}, strings.ToLower(ColPerformance): {}, strings.ToLower(ColEffort): {},
	strings.ToLower(ColAvailability): {},
}

// LoadTasks reads the task log from an .xlsx workbook (first sheet)
// or a .csv file. The first row is the header.
func LoadTasks(path string) (*domain.TaskLog, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	default:
		rows, err = readWorkbook(path)
	}
	if err != nil {
		return nil, err
	}
	return ParseTaskRows(rows), nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening task log: %w", err)
	}
	defer f.Close()
	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	var rows [][]string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				// malformed line; drop it
				continue
			}
			return nil, fmt.Errorf("reading task log: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening task log: %w", err)
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("task log %s has no sheets", path)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// ParseTaskRows converts a header row plus data rows into a TaskLog.
// Fully blank rows are skipped.
func ParseTaskRows(rows [][]string) *domain.TaskLog {
	log := &domain.TaskLog{}
	if len(rows) == 0 {
		return log
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	log.Columns = header
	cols := columnIndex(header)
	_, log.HasDateColumn = cols[strings.ToLower(ColDate)]

	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		r := domain.TaskRow{
			EmpID:        domain.CanonicalID(cell(row, cols, ColEmpID)),
			Name:         strings.TrimSpace(cell(row, cols, ColName)),
			Project:      strings.TrimSpace(cell(row, cols, ColProject)),
			Title:        strings.TrimSpace(cell(row, cols, ColTaskTitle)),
			Status:       strings.TrimSpace(cell(row, cols, ColStatus)),
			Priority:     strings.TrimSpace(cell(row, cols, ColPriority)),
			Performance:  ParseNumber(cell(row, cols, ColPerformance)),
			Effort:       ParseNumber(cell(row, cols, ColEffort)),
			Availability: strings.TrimSpace(cell(row, cols, ColAvailability)),
		}
		if log.HasDateColumn {
			r.Date, r.HasDate = ParseDate(cell(row, cols, ColDate))
		}
		for i, h := range header {
			if _, known := knownTaskColumns[strings.ToLower(h)]; known || i >= len(row) {
				continue
			}
			if r.Extra == nil {
				r.Extra = make(map[string]string)
			}
			r.Extra[h] = row[i]
		}
		log.Rows = append(log.Rows, r)
	}
	return log
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
