package summary

import (
	"math"
	"sort"
	"strings"
	"time"

	"emptrack/internal/domain"
)

// NotAvailable fills performance fields with no source value.
const NotAvailable = "N/A"

// Performance summarises the task rows of one employee. Rows are
// selected by emp_id, falling back to the trimmed name. It returns nil
// when the task log is missing or no row matches.
func (s *Summarizer) Performance(empID, name string) *domain.PerformanceSummary {
	rows := s.employeeRows(empID, name)
	if len(rows) == 0 {
		return nil
	}

	out := &domain.PerformanceSummary{TotalTasks: len(rows)}
	sum := 0.0
	for _, r := range rows {
		sum += r.Performance
		switch strings.ToLower(r.Status) {
		case strings.ToLower(domain.TaskCompleted):
			out.Completed++
		case strings.ToLower(domain.TaskInProgress):
			out.InProgress++
		case strings.ToLower(domain.TaskPending):
			out.Pending++
		}
	}
	avg := sum / float64(len(rows))
	out.AvgPerformance = round2(avg)
	out.CompletionRate = round2(ratio(out.Completed, out.TotalTasks))
	out.Productivity = round2(avg)
	out.Quality = round2(math.Min(avg*1.10, 100))
	out.Efficiency = round2(math.Min(avg*0.95, 100))
	out.Rating = Rating(avg)

	// Undated rows keep their input order ahead of dated ones so the
	// most recent dated row is always last.
	ordered := make([]domain.TaskRow, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.HasDate != b.HasDate {
			return !a.HasDate
		}
		return a.HasDate && a.Date.Before(b.Date)
	})

	out.LatestPerformance = round2(avg)
	out.FirstDate, out.LastDate = NotAvailable, NotAvailable
	var dated []domain.TaskRow
	for _, r := range ordered {
		if r.HasDate {
			dated = append(dated, r)
		}
	}
	if s.snap.Tasks.HasDateColumn && len(dated) > 0 {
		out.LatestPerformance = round2(dated[len(dated)-1].Performance)
		out.FirstDate = dated[0].Date.Format("2006-01-02")
		out.LastDate = dated[len(dated)-1].Date.Format("2006-01-02")
	}

	for i := len(ordered) - 1; i >= 0; i-- {
		if out.PrimaryProject == "" && ordered[i].Project != "" {
			out.PrimaryProject = ordered[i].Project
		}
		if out.Availability == "" && ordered[i].Availability != "" {
			out.Availability = ordered[i].Availability
		}
	}
	if out.PrimaryProject == "" {
		out.PrimaryProject = NotAvailable
	}
	if out.Availability == "" {
		out.Availability = NotAvailable
	}

	weekStart := s.today.AddDate(0, 0, -weekDays)
	wsum, wn := 0.0, 0
	for _, r := range dated {
		if !r.Date.Before(weekStart) {
			wsum += r.Performance
			wn++
		}
	}
	if wn > 0 {
		out.WeeklyAvgPerformance = round2(wsum / float64(wn))
	}
	return out
}

func (s *Summarizer) employeeRows(empID, name string) []domain.TaskRow {
	if s.snap.Tasks == nil {
		return nil
	}
	var rows []domain.TaskRow
	if id := strings.TrimSpace(empID); id != "" {
		for _, r := range s.snap.Tasks.Rows {
			if sameFold(r.EmpID, id) {
				rows = append(rows, r)
			}
		}
	}
	if len(rows) == 0 && strings.TrimSpace(name) != "" {
		for _, r := range s.snap.Tasks.Rows {
			if sameFold(r.Name, name) {
				rows = append(rows, r)
			}
		}
	}
	return rows
}

// HasTaskOn reports whether the employee logged any task dated day.
func (s *Summarizer) HasTaskOn(empID, name string, day time.Time) bool {
	d := dayOf(day)
	for _, r := range s.employeeRows(empID, name) {
		if r.HasDate && dayOf(r.Date).Equal(d) {
			return true
		}
	}
	return false
}
