package assistant

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"emptrack/internal/domain"
	"emptrack/internal/summary"
)

var listTitles = map[domain.Intent]string{
	domain.IntentCheckedIn: "Employees checked in today",
	domain.IntentWFO:       "Employees working from office today",
	domain.IntentWFH:       "Employees working from home today",
	domain.IntentOnLeave:   "Employees on leave today",
}

func renderAggregate(a domain.AggregateMeta) string {
	if a.Intent == domain.IntentAttendanceRatio {
		return fmt.Sprintf("Attendance ratio today: %.1f%% (%d/%d present)", a.Ratio, a.Present, a.Total)
	}
	if len(a.Members) == 0 {
		return NoMatch
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d):", listTitles[a.Intent], len(a.Members))
	for _, m := range a.Members {
		fmt.Fprintf(&b, "\n- %s (%s)", m.Name, m.EmpID)
		if a.Intent != domain.IntentOnLeave && m.CheckInTime != "" {
			fmt.Fprintf(&b, ": %s at %s", m.Status, m.CheckInTime)
		}
	}
	if a.Intent == domain.IntentCheckedIn && len(a.Late) > 0 {
		fmt.Fprintf(&b, "\n\nLate check-ins (%d):", len(a.Late))
		for _, m := range a.Late {
			fmt.Fprintf(&b, "\n- %s (%s) at %s", m.Name, m.EmpID, m.CheckInTime)
		}
	}
	return b.String()
}

func renderEmployee(e *domain.EmployeeMeta) string {
	lines := []string{fmt.Sprintf("Employee: %s (%s)", e.Name, e.EmpID)}
	if a := e.Attendance; a != nil {
		lines = append(lines,
			fmt.Sprintf("Today: %s (check-in %s)", a.TodayStatus, a.TodayCheckIn),
			fmt.Sprintf("This week: %d/%d days present (%.1f%%)", a.Week.PresentDays, a.Week.DistinctDays, a.Week.AttendanceRate),
			fmt.Sprintf("This month: %d/%d days present (%.1f%%)", a.Month.PresentDays, a.Month.DistinctDays, a.Month.AttendanceRate),
		)
	} else {
		lines = append(lines, "Attendance: no records")
	}
	if p := e.Perf; p != nil {
		lines = append(lines,
			fmt.Sprintf("Average: %.1f%%", p.AvgPerformance),
			fmt.Sprintf("Rating: %s", p.Rating),
			fmt.Sprintf("Tasks: %d/%d completed", p.Completed, p.TotalTasks),
			fmt.Sprintf("Availability: %s", p.Availability),
		)
	} else {
		lines = append(lines, "Performance: no task records")
	}
	return strings.Join(lines, "\n")
}

const dashboardWidth = 44

// renderDashboard recomputes the employee's summaries from the live
// snapshot and lays them out as fixed-width rows.
func renderDashboard(e domain.Employee, s *summary.Summarizer) string {
	var b strings.Builder
	title := cases.Title(language.English)
	rule := strings.Repeat("=", dashboardWidth)
	row := func(label string, value any) {
		fmt.Fprintf(&b, "%-22s %v\n", label+":", value)
	}
	section := func(heading string) {
		fmt.Fprintf(&b, "\n%s\n%s\n", heading, strings.Repeat("-", dashboardWidth))
	}

	fmt.Fprintf(&b, "%s\nEMPLOYEE DASHBOARD: %s\n%s\n", rule, e.Name, rule)
	row("Employee ID", e.EmpID)
	row("Email", orNA(e.Email))
	row("Department", orNA(title.String(e.Department)))
	row("Role", orNA(title.String(e.Role)))

	section("ATTENDANCE")
	if a := s.Attendance(e.EmpID); a != nil {
		row("Today", a.TodayStatus)
		row("Check-in", a.TodayCheckIn)
		for _, w := range []struct {
			label string
			win   domain.Window
		}{{"Last 7 days", a.Week}, {"Last 30 days", a.Month}} {
			row(w.label, fmt.Sprintf("%d/%d present, %d WFO, %d WFH, %d leave (%.1f%%)",
				w.win.PresentDays, w.win.DistinctDays, w.win.WFO, w.win.WFH, w.win.LeaveDays, w.win.AttendanceRate))
		}
	} else {
		row("Records", "none")
	}

	section("PERFORMANCE")
	if p := s.Performance(e.EmpID, e.Name); p != nil {
		row("Tasks", fmt.Sprintf("%d total, %d completed, %d in progress, %d pending", p.TotalTasks, p.Completed, p.InProgress, p.Pending))
		row("Completion rate", fmt.Sprintf("%.2f%%", p.CompletionRate))
		row("Average performance", fmt.Sprintf("%.2f%%", p.AvgPerformance))
		row("Latest performance", fmt.Sprintf("%.2f%%", p.LatestPerformance))
		row("Weekly average", fmt.Sprintf("%.2f%%", p.WeeklyAvgPerformance))
		row("Productivity", fmt.Sprintf("%.2f", p.Productivity))
		row("Quality", fmt.Sprintf("%.2f", p.Quality))
		row("Efficiency", fmt.Sprintf("%.2f", p.Efficiency))
		row("Rating", p.Rating)
		row("Primary project", p.PrimaryProject)
		row("Availability", p.Availability)
		if p.FirstDate != summary.NotAvailable {
			row("Period", p.FirstDate+" to "+p.LastDate)
		}
	} else {
		row("Records", "none")
	}
	b.WriteString(rule)
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
