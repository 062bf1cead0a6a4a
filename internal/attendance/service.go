// Package attendance records daily check-ins into the ledger.
package attendance

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"emptrack/internal/domain"
	"emptrack/internal/source"
)

// CheckInLayout is the display format of check_in_time.
const CheckInLayout = "03:04 PM"

// Source is the subset of source.Loader the service reads and writes.
type Source interface {
	LoadEmployees() *source.Directory
	LoadAttendance() []domain.AttendanceRecord
	Ledger() *source.Ledger
}

// Result describes a stored check-in.
type Result struct {
	Employee domain.Employee
	Record   domain.AttendanceRecord
	Late     bool
}

type Service struct {
	mu        sync.Mutex
	src       Source
	now       func() time.Time
	lateAfter time.Duration
	logger    *zap.Logger
}

// NewService creates a check-in service. lateAfter is the local time
// of day after which a present check-in is late.
func NewService(src Source, lateAfter time.Duration, now func() time.Time, logger *zap.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Service{src: src, now: now, lateAfter: lateAfter, logger: logger.Named("attendance")}
}

// CheckIn appends today's record for empID. An employee checks in at
// most once per calendar day.
func (s *Service) CheckIn(empID, status, notes string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := domain.CanonicalID(empID)
	emp, ok := s.src.LoadEmployees().Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownEmployee, id)
	}
	canonical, ok := domain.CanonicalStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	now := s.now().Local()
	if prev, ok := s.todayRecord(id, now); ok {
		return nil, fmt.Errorf("%w: %s as %s at %s", domain.ErrAlreadyCheckedIn, id, prev.Status, prev.CheckInTime)
	}

	rec := domain.AttendanceRecord{
		EmpID:       id,
		Status:      canonical,
		Timestamp:   now,
		CheckInTime: now.Format(CheckInLayout),
		Notes:       strings.TrimSpace(notes),
	}
	if err := s.src.Ledger().Append(rec); err != nil {
		return nil, fmt.Errorf("recording check-in: %w", err)
	}
	res := &Result{Employee: emp, Record: rec, Late: s.late(rec)}
	s.logger.Info("checked in",
		zap.String("emp_id", id),
		zap.String("status", canonical),
		zap.Bool("late", res.Late),
	)
	return res, nil
}

// Today returns the employee's last record of the current day.
func (s *Service) Today(empID string) (domain.AttendanceRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.todayRecord(domain.CanonicalID(empID), s.now().Local())
}

func (s *Service) todayRecord(id string, now time.Time) (domain.AttendanceRecord, bool) {
	var (
		last  domain.AttendanceRecord
		found bool
	)
	y, m, d := now.Date()
	for _, r := range s.src.LoadAttendance() {
		ry, rm, rd := r.Timestamp.Local().Date()
		if r.EmpID == id && ry == y && rm == m && rd == d {
			last, found = r, true
		}
	}
	return last, found
}

func (s *Service) late(r domain.AttendanceRecord) bool {
	if !domain.IsPresent(r.Status) || s.lateAfter <= 0 {
		return false
	}
	t := r.Timestamp.Local()
	at := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
	return at > s.lateAfter
}
