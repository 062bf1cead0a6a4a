// Package document turns summaries into indexable text documents.
package document

import (
	"fmt"
	"strings"

	"emptrack/internal/domain"
	"emptrack/internal/summary"
)

// Phrases anchor each aggregate document. The first phrase is also
// the lookup query for the intent.
var Phrases = map[domain.Intent][]string{
	domain.IntentCheckedIn: {
		"employees checked in today",
		"who checked in today",
		"who checked-in today",
	},
	domain.IntentWFO: {
		"employees working from office today",
		"who is wfo today",
		"wfo work mode today",
	},
	domain.IntentWFH: {
		"employees working from home today",
		"who is wfh today",
		"wfh work mode today",
	},
	domain.IntentOnLeave: {
		"employees on leave today",
		"who is on leave today",
		"on leave today",
	},
	domain.IntentAttendanceRatio: {
		"attendance ratio today",
		"today attendance ratio present total",
		"attendance ratio of employees today",
	},
}

// Build emits one document per directory member followed by one per
// aggregate intent. It returns nil when there is nothing to index.
func Build(s *summary.Summarizer) []domain.Document {
	snap := s.Snapshot()
	if snap.Directory.Len() == 0 && len(snap.Ledger) == 0 {
		return nil
	}
	docs := make([]domain.Document, 0, snap.Directory.Len()+len(domain.Intents))
	for _, e := range snap.Directory.All() {
		meta := &domain.EmployeeMeta{
			EmpID:      e.EmpID,
			Name:       e.Name,
			Email:      e.Email,
			Department: e.Department,
			Role:       e.Role,
			Attendance: s.Attendance(e.EmpID),
			Perf:       s.Performance(e.EmpID, e.Name),
		}
		docs = append(docs, domain.Document{
			ID:       e.EmpID,
			Text:     EmployeeText(meta),
			Metadata: domain.Metadata{Kind: domain.KindEmployee, Employee: meta},
		})
	}
	fleet := s.FleetDaily()
	for _, intent := range domain.Intents {
		agg := fleet[intent]
		docs = append(docs, domain.Document{
			ID:       intent.DocID(),
			Text:     AggregateText(agg),
			Anchor:   strings.Join(Phrases[intent], ". "),
			Metadata: domain.Metadata{Kind: domain.KindAggregate, Aggregate: &agg},
		})
	}
	return docs
}

// EmployeeText renders the single-line employee document.
func EmployeeText(m *domain.EmployeeMeta) string {
	parts := []string{
		fmt.Sprintf("%s (%s) department %s role %s", m.Name, m.EmpID, orNA(m.Department), orNA(m.Role)),
	}
	if p := m.Perf; p != nil {
		parts = append(parts,
			fmt.Sprintf("performance %.2f%% rating %s latest %.2f%% weekly %.2f%%", p.AvgPerformance, p.Rating, p.LatestPerformance, p.WeeklyAvgPerformance),
			fmt.Sprintf("availability %s project %s", p.Availability, p.PrimaryProject),
			fmt.Sprintf("tasks %d total %d completed %d in-progress %d pending", p.TotalTasks, p.Completed, p.InProgress, p.Pending),
		)
	} else {
		parts = append(parts, "performance N/A")
	}
	if a := m.Attendance; a != nil {
		parts = append(parts,
			fmt.Sprintf("weekly attendance %d/%d days %.1f%%", a.Week.PresentDays, a.Week.DistinctDays, a.Week.AttendanceRate),
			fmt.Sprintf("monthly attendance %d/%d days %.1f%%", a.Month.PresentDays, a.Month.DistinctDays, a.Month.AttendanceRate),
			fmt.Sprintf("current status %s check-in %s", a.TodayStatus, a.TodayCheckIn),
		)
	}
	return strings.Join(parts, " | ")
}

// AggregateText renders an aggregate document with its member list.
func AggregateText(a domain.AggregateMeta) string {
	var b strings.Builder
	b.WriteString(strings.Join(Phrases[a.Intent], ". "))
	if a.Intent == domain.IntentAttendanceRatio {
		fmt.Fprintf(&b, ". %.1f%% (%d/%d present)", a.Ratio, a.Present, a.Total)
		return b.String()
	}
	fmt.Fprintf(&b, ". count %d", a.Count)
	if len(a.Members) > 0 {
		names := make([]string, len(a.Members))
		for i, m := range a.Members {
			names[i] = fmt.Sprintf("%s (%s)", m.Name, m.EmpID)
		}
		b.WriteString(": ")
		b.WriteString(strings.Join(names, ", "))
	}
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
