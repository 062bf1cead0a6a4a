package summary

import (
	"time"

	"emptrack/internal/domain"
)

const notCheckedIn = "Not checked in"

// Attendance summarises one employee's ledger history. It returns nil
// when the ledger is missing or empty.
func (s *Summarizer) Attendance(empID string) *domain.AttendanceSummary {
	if len(s.snap.Ledger) == 0 {
		return nil
	}
	id := domain.CanonicalID(empID)
	out := &domain.AttendanceSummary{
		TodayStatus:  notCheckedIn,
		TodayCheckIn: "-",
	}
	var mine []domain.AttendanceRecord
	for _, r := range s.snap.Ledger {
		if domain.CanonicalID(r.EmpID) != id {
			continue
		}
		mine = append(mine, r)
		if dayOf(r.Timestamp).Equal(s.today) {
			// last record of today wins
			out.TodayStatus = r.Status
			out.TodayCheckIn = checkInDisplay(r)
		}
	}
	out.Week = s.window(mine, weekDays)
	out.Month = s.window(mine, monthDays)
	return out
}

// window counts distinct calendar days in [today-(days-1), today].
func (s *Summarizer) window(recs []domain.AttendanceRecord, days int) domain.Window {
	start := s.today.AddDate(0, 0, -(days - 1))
	all := map[time.Time]struct{}{}
	present := map[time.Time]struct{}{}
	leave := map[time.Time]struct{}{}
	wfo := map[time.Time]struct{}{}
	wfh := map[time.Time]struct{}{}
	for _, r := range recs {
		d := dayOf(r.Timestamp)
		if d.Before(start) || d.After(s.today) {
			continue
		}
		all[d] = struct{}{}
		switch r.Status {
		case domain.StatusWFO:
			present[d] = struct{}{}
			wfo[d] = struct{}{}
		case domain.StatusWFH:
			present[d] = struct{}{}
			wfh[d] = struct{}{}
		case domain.StatusOnLeave:
			leave[d] = struct{}{}
		}
	}
	return domain.Window{
		Days:           days,
		DistinctDays:   len(all),
		PresentDays:    len(present),
		LeaveDays:      len(leave),
		WFO:            len(wfo),
		WFH:            len(wfh),
		AttendanceRate: round1(ratio(len(present), len(all))),
	}
}

func checkInDisplay(r domain.AttendanceRecord) string {
	if r.CheckInTime != "" {
		return r.CheckInTime
	}
	return r.Timestamp.Format("03:04 PM")
}
