package summary

import (
	"strings"
	"time"

	"emptrack/internal/domain"
)

// FleetDaily computes the five daily aggregates from today's ledger
// records. Only the first record seen per employee today counts.
func (s *Summarizer) FleetDaily() map[domain.Intent]domain.AggregateMeta {
	seen := map[string]struct{}{}
	var checkedIn, wfo, wfh, leave, late []domain.Member
	for _, r := range s.snap.Ledger {
		if !dayOf(r.Timestamp).Equal(s.today) {
			continue
		}
		id := domain.CanonicalID(r.EmpID)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		m := s.member(id, r)
		checkedIn = append(checkedIn, m)
		switch r.Status {
		case domain.StatusWFO:
			wfo = append(wfo, m)
		case domain.StatusWFH:
			wfh = append(wfh, m)
		case domain.StatusOnLeave:
			leave = append(leave, m)
		}
		if domain.IsPresent(r.Status) && s.isLate(r.CheckInTime) {
			late = append(late, m)
		}
	}

	var absent []domain.Member
	present, total := 0, s.snap.Directory.Len()
	for _, e := range s.snap.Directory.All() {
		if _, ok := seen[e.EmpID]; ok {
			present++
			continue
		}
		absent = append(absent, domain.Member{EmpID: e.EmpID, Name: e.Name})
	}
	if total == 0 {
		present, total = len(seen), len(seen)
	}

	list := func(intent domain.Intent, members []domain.Member) domain.AggregateMeta {
		return domain.AggregateMeta{Intent: intent, Members: nonNil(members), Count: len(members)}
	}
	checked := list(domain.IntentCheckedIn, checkedIn)
	checked.Late = late
	return map[domain.Intent]domain.AggregateMeta{
		domain.IntentCheckedIn: checked,
		domain.IntentWFO:       list(domain.IntentWFO, wfo),
		domain.IntentWFH:       list(domain.IntentWFH, wfh),
		domain.IntentOnLeave:   list(domain.IntentOnLeave, leave),
		domain.IntentAttendanceRatio: {
			Intent:  domain.IntentAttendanceRatio,
			Members: []domain.Member{},
			Absent:  absent,
			Present: present,
			Total:   total,
			Ratio:   round1(ratio(present, total)),
		},
	}
}

func (s *Summarizer) member(id string, r domain.AttendanceRecord) domain.Member {
	name := id
	if e, ok := s.snap.Directory.Get(id); ok && strings.TrimSpace(e.Name) != "" {
		name = e.Name
	}
	return domain.Member{EmpID: id, Name: name, Status: r.Status, CheckInTime: checkInDisplay(r)}
}

// isLate reports whether a "03:04 PM" check-in is after the threshold.
// Unparseable values are never late.
func (s *Summarizer) isLate(checkIn string) bool {
	checkIn = strings.ToUpper(strings.TrimSpace(checkIn))
	for _, layout := range []string{"03:04 PM", "3:04 PM"} {
		if t, err := time.Parse(layout, checkIn); err == nil {
			at := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
			return at > s.lateAfter
		}
	}
	return false
}

func nonNil(m []domain.Member) []domain.Member {
	if m == nil {
		return []domain.Member{}
	}
	return m
}
