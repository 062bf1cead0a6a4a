package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emptrack/internal/domain"
	"emptrack/internal/source"
)

var now = time.Date(2025, 1, 10, 12, 0, 0, 0, time.Local)

func at(day, hour, min int) time.Time {
	return time.Date(2025, 1, day, hour, min, 0, 0, time.Local)
}

func rec(id, status string, ts time.Time, checkIn string) domain.AttendanceRecord {
	return domain.AttendanceRecord{EmpID: id, Status: status, Timestamp: ts, CheckInTime: checkIn}
}

func directory() *source.Directory {
	return source.NewDirectory(
		domain.Employee{EmpID: "E001", Name: "Asha"},
		domain.Employee{EmpID: "E002", Name: "Rahul"},
		domain.Employee{EmpID: "E003", Name: "Meera"},
	)
}

func TestRating(t *testing.T) {
	cases := map[float64]string{
		100: "Excellent", 80: "Excellent", 79.99: "Good", 60: "Good",
		59.9: "Fair", 40: "Fair", 39.99: "Needs Improvement", 0: "Needs Improvement",
	}
	for avg, want := range cases {
		assert.Equal(t, want, Rating(avg), "avg=%v", avg)
	}
}

func TestAttendance_NilWithoutLedger(t *testing.T) {
	s := New(source.Snapshot{Directory: directory()}, now, 0)
	assert.Nil(t, s.Attendance("E001"))
}

func TestAttendance_Windows(t *testing.T) {
	ledger := []domain.AttendanceRecord{
		rec("E001", domain.StatusWFO, at(10, 9, 0), "09:00 AM"),
		// later today with a lowercase id; wins
		rec("e001", domain.StatusWFH, at(10, 11, 0), "11:00 AM"),
		rec("E001", domain.StatusWFO, at(9, 9, 0), "09:00 AM"),
		// same day, deduplicated
		rec("E001", domain.StatusWFO, at(9, 9, 30), "09:30 AM"),
		// day 7 of the week window
		rec("E001", domain.StatusOnLeave, at(4, 9, 0), ""),
		// outside week, inside month
		rec("E001", domain.StatusWFH, at(3, 9, 0), ""),
		rec("E002", domain.StatusWFO, at(10, 9, 0), ""),
	}
	s := New(source.Snapshot{Directory: directory(), Ledger: ledger}, now, 0)

	a := s.Attendance("E001")
	require.NotNil(t, a)
	assert.Equal(t, domain.StatusWFH, a.TodayStatus)
	assert.Equal(t, "11:00 AM", a.TodayCheckIn)

	assert.Equal(t, 3, a.Week.DistinctDays)
	assert.Equal(t, 2, a.Week.PresentDays)
	assert.Equal(t, 1, a.Week.LeaveDays)
	assert.Equal(t, 2, a.Week.WFO)
	assert.Equal(t, 1, a.Week.WFH)
	assert.Equal(t, 66.7, a.Week.AttendanceRate)

	assert.Equal(t, 4, a.Month.DistinctDays)
	assert.Equal(t, 3, a.Month.PresentDays)
	assert.Equal(t, 75.0, a.Month.AttendanceRate)
}

func TestAttendance_NoRecordsForEmployee(t *testing.T) {
	ledger := []domain.AttendanceRecord{rec("E002", domain.StatusWFO, at(10, 9, 0), "")}
	s := New(source.Snapshot{Directory: directory(), Ledger: ledger}, now, 0)

	a := s.Attendance("E003")
	require.NotNil(t, a)
	assert.Equal(t, notCheckedIn, a.TodayStatus)
	assert.Equal(t, 0, a.Week.DistinctDays)
	assert.Equal(t, 0.0, a.Week.AttendanceRate)
}

func tasks(rows ...domain.TaskRow) *domain.TaskLog {
	return &domain.TaskLog{HasDateColumn: true, Rows: rows}
}

func task(id, name string, day int, perf float64, status string) domain.TaskRow {
	return domain.TaskRow{EmpID: id, Name: name, Date: at(day, 0, 0), HasDate: true, Performance: perf, Status: status}
}

func TestPerformance_Metrics(t *testing.T) {
	log := tasks(
		task("E001", "Asha", 1, 90, domain.TaskCompleted),
		task("E001", "Asha", 5, 70, domain.TaskInProgress),
		task("E001", "Asha", 3, 80, domain.TaskPending),
		task("E001", "Asha", 9, 60, "Blocked"),
	)
	log.Rows[1].Project = "Apollo"
	log.Rows[2].Project = "Zeus"
	log.Rows[0].Availability = "Full-time"
	s := New(source.Snapshot{Tasks: log}, now, 0)

	p := s.Performance("e001", "")
	require.NotNil(t, p)
	assert.Equal(t, 4, p.TotalTasks)
	assert.Equal(t, 1, p.Completed)
	assert.Equal(t, 1, p.InProgress)
	assert.Equal(t, 1, p.Pending)
	assert.LessOrEqual(t, p.Completed+p.InProgress+p.Pending, p.TotalTasks)
	assert.Equal(t, 25.0, p.CompletionRate)
	assert.Equal(t, 75.0, p.AvgPerformance)
	assert.Equal(t, 60.0, p.LatestPerformance)
	assert.Equal(t, 82.5, p.Quality)
	assert.Equal(t, 71.25, p.Efficiency)
	assert.Equal(t, 75.0, p.Productivity)
	assert.Equal(t, "Good", p.Rating)
	assert.Equal(t, "Apollo", p.PrimaryProject)
	assert.Equal(t, "Full-time", p.Availability)
	assert.Equal(t, "2025-01-01", p.FirstDate)
	assert.Equal(t, "2025-01-09", p.LastDate)
	// rows dated on or after Jan 3
	assert.Equal(t, 70.0, p.WeeklyAvgPerformance)
}

func TestPerformance_QualityCapped(t *testing.T) {
	s := New(source.Snapshot{Tasks: tasks(task("E001", "Asha", 1, 95, domain.TaskCompleted))}, now, 0)
	p := s.Performance("E001", "Asha")
	require.NotNil(t, p)
	assert.Equal(t, 100.0, p.Quality)
}

func TestPerformance_FallsBackToName(t *testing.T) {
	s := New(source.Snapshot{Tasks: tasks(task("", " asha ", 1, 50, domain.TaskCompleted))}, now, 0)
	p := s.Performance("E001", "Asha")
	require.NotNil(t, p)
	assert.Equal(t, 1, p.TotalTasks)
	assert.Equal(t, "Fair", p.Rating)
}

func TestPerformance_NoDateColumn(t *testing.T) {
	log := &domain.TaskLog{Rows: []domain.TaskRow{
		{EmpID: "E001", Performance: 40, Status: domain.TaskCompleted},
		{EmpID: "E001", Performance: 60, Status: domain.TaskCompleted},
	}}
	s := New(source.Snapshot{Tasks: log}, now, 0)
	p := s.Performance("E001", "")
	require.NotNil(t, p)
	assert.Equal(t, 50.0, p.LatestPerformance)
	assert.Equal(t, "N/A", p.FirstDate)
	assert.Equal(t, "N/A", p.LastDate)
	assert.Equal(t, 100.0, p.CompletionRate)
}

func TestPerformance_NilWithoutTasks(t *testing.T) {
	s := New(source.Snapshot{}, now, 0)
	assert.Nil(t, s.Performance("E001", "Asha"))
}

func TestFleetDaily(t *testing.T) {
	ledger := []domain.AttendanceRecord{
		rec("E001", domain.StatusWFO, at(10, 9, 45), "09:45 AM"),
		rec("e002", domain.StatusOnLeave, at(10, 10, 0), "10:00 AM"),
		rec("E001", domain.StatusWFH, at(10, 12, 0), "12:00 PM"), // duplicate, first wins
		rec("E003", domain.StatusWFO, at(9, 11, 0), "11:00 AM"),  // yesterday
	}
	s := New(source.Snapshot{Directory: directory(), Ledger: ledger}, now, 0)
	agg := s.FleetDaily()
	require.Len(t, agg, 5)

	checked := agg[domain.IntentCheckedIn]
	assert.Equal(t, 2, checked.Count)
	assert.Equal(t, "Asha", checked.Members[0].Name)
	assert.Equal(t, domain.StatusWFO, checked.Members[0].Status)
	assert.Empty(t, checked.Late)

	assert.Equal(t, 1, agg[domain.IntentWFO].Count)
	assert.Equal(t, 0, agg[domain.IntentWFH].Count)
	assert.Equal(t, "E002", agg[domain.IntentOnLeave].Members[0].EmpID)

	r := agg[domain.IntentAttendanceRatio]
	assert.Equal(t, 2, r.Present)
	assert.Equal(t, 3, r.Total)
	assert.Equal(t, 66.7, r.Ratio)
	require.Len(t, r.Absent, 1)
	assert.Equal(t, "E003", r.Absent[0].EmpID)
}

func TestFleetDaily_Late(t *testing.T) {
	ledger := []domain.AttendanceRecord{
		rec("E001", domain.StatusWFO, at(10, 10, 31), "10:31 AM"),
		rec("E002", domain.StatusWFH, at(10, 10, 30), "10:30 AM"),
		rec("E003", domain.StatusOnLeave, at(10, 11, 0), "11:00 AM"),
	}
	s := New(source.Snapshot{Directory: directory(), Ledger: ledger}, now, 0)
	late := s.FleetDaily()[domain.IntentCheckedIn].Late
	require.Len(t, late, 1)
	assert.Equal(t, "E001", late[0].EmpID)
}

func TestFleetDaily_EmptySources(t *testing.T) {
	s := New(source.Snapshot{}, now, 0)
	agg := s.FleetDaily()
	require.Len(t, agg, 5)
	for _, a := range agg {
		assert.Equal(t, 0, a.Count)
		assert.NotNil(t, a.Members)
	}
	assert.Equal(t, 0.0, agg[domain.IntentAttendanceRatio].Ratio)
}
