package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"emptrack/internal/domain"
)

// LedgerHeader is the attendance CSV header.
var LedgerHeader = []string{"emp_id", "status", "timestamp", "check_in_time", "notes"}

// Ledger is the append-only attendance CSV.
type Ledger struct {
	mu   sync.Mutex
	path string
}

func NewLedger(path string) *Ledger { return &Ledger{path: path} }

// Load returns all parseable records in file order. Rows with an
// unparseable timestamp or an unknown status are dropped.
func (l *Ledger) Load() ([]domain.AttendanceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()
	return readLedger(f)
}

func readLedger(r io.Reader) ([]domain.AttendanceRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading ledger header: %w", err)
	}
	cols := columnIndex(header)
	var out []domain.AttendanceRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// malformed line; keep going
			continue
		}
		ts, ok := ParseTimestamp(cell(row, cols, "timestamp"))
		if !ok {
			continue
		}
		status, ok := domain.CanonicalStatus(cell(row, cols, "status"))
		if !ok {
			continue
		}
		id := domain.CanonicalID(cell(row, cols, "emp_id"))
		if id == "" {
			continue
		}
		out = append(out, domain.AttendanceRecord{
			EmpID:       id,
			Status:      status,
			Timestamp:   ts,
			CheckInTime: strings.TrimSpace(cell(row, cols, "check_in_time")),
			Notes:       cell(row, cols, "notes"),
		})
	}
	return out, nil
}

// Append writes one record, creating the file and header if needed.
func (l *Ledger) Append(rec domain.AttendanceRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat ledger: %w", err)
	}
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(LedgerHeader); err != nil {
			return fmt.Errorf("writing ledger header: %w", err)
		}
	}
	row := []string{
		domain.CanonicalID(rec.EmpID),
		rec.Status,
		rec.Timestamp.Format(time.RFC3339),
		rec.CheckInTime,
		rec.Notes,
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("writing ledger row: %w", err)
	}
	w.Flush()
	return w.Error()
}

func columnIndex(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := m[key]; !dup {
			m[key] = i
		}
	}
	return m
}

func cell(row []string, cols map[string]int, name string) string {
	i, ok := cols[strings.ToLower(name)]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
