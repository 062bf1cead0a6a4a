package domain

import (
	"errors"
	"strings"
	"time"
)

// Attendance statuses admitted by the ledger.
const (
	StatusWFO     = "WFO"
	StatusWFH     = "WFH"
	StatusOnLeave = "On Leave"
)

// Task statuses counted by the summariser.
const (
	TaskCompleted  = "Completed"
	TaskInProgress = "In Progress"
	TaskPending    = "Pending"
)

var (
	ErrEmptyCorpus      = errors.New("empty corpus")
	ErrNotPrepared      = errors.New("embedder not prepared")
	ErrUnknownEmployee  = errors.New("unknown employee")
	ErrAlreadyCheckedIn = errors.New("already checked in today")
	ErrInvalidStatus    = errors.New("invalid attendance status")
)

// Employee is an identity record from the employee directory.
type Employee struct {
	EmpID        string `json:"-"`
	PasswordHash string `json:"password_hash,omitempty"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Department   string `json:"department"`
	Role         string `json:"role"`
}

// AttendanceRecord is one append-only ledger event.
type AttendanceRecord struct {
	EmpID       string
	Status      string
	Timestamp   time.Time
	CheckInTime string
	Notes       string
}

// TaskRow is one row of the task log. Columns the core does not read
// are kept in Extra keyed by header.
type TaskRow struct {
	EmpID        string
	Name         string
	Date         time.Time
	HasDate      bool
	Project      string
	Title        string
	Status       string
	Priority     string
	Performance  float64
	Effort       float64
	Availability string
	Extra        map[string]string
}

// TaskLog is the tabular task view. HasDateColumn is false when the
// source had no Date header at all.
type TaskLog struct {
	Columns       []string
	Rows          []TaskRow
	HasDateColumn bool
}

// Document kinds.
const (
	KindEmployee  = "employee"
	KindAggregate = "aggregate"
)

// Document is a unit of text indexed for retrieval. When Anchor is
// set, the document's vector is dominated by the anchor so a long Text
// does not dilute what the document is about.
type Document struct {
	ID       string
	Text     string
	Anchor   string
	Metadata Metadata
}

// Metadata mirrors the summaries a document was built from so answers
// can be rendered from a search hit alone.
type Metadata struct {
	Kind      string         `json:"kind"`
	Employee  *EmployeeMeta  `json:"employee,omitempty"`
	Aggregate *AggregateMeta `json:"aggregate,omitempty"`
}

// EmployeeMeta carries the per-employee summary fields.
type EmployeeMeta struct {
	EmpID      string              `json:"emp_id"`
	Name       string              `json:"name"`
	Email      string              `json:"email"`
	Department string              `json:"department"`
	Role       string              `json:"role"`
	Attendance *AttendanceSummary  `json:"attendance,omitempty"`
	Perf       *PerformanceSummary `json:"performance,omitempty"`
}

// AggregateMeta carries one fleet-wide daily aggregate.
type AggregateMeta struct {
	Intent  Intent   `json:"intent"`
	Members []Member `json:"members"`
	Late    []Member `json:"late,omitempty"`
	Absent  []Member `json:"absent,omitempty"`
	Count   int      `json:"count"`
	Present int      `json:"present"`
	Total   int      `json:"total"`
	Ratio   float64  `json:"ratio"`
}

// Member is an employee listed in an aggregate.
type Member struct {
	EmpID       string `json:"emp_id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	CheckInTime string `json:"check_in_time"`
}

// Window is one rolling attendance window.
type Window struct {
	Days           int     `json:"days"`
	DistinctDays   int     `json:"distinct_days"`
	PresentDays    int     `json:"present_days"`
	LeaveDays      int     `json:"leave_days"`
	WFO            int     `json:"wfo"`
	WFH            int     `json:"wfh"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// AttendanceSummary is the attendance block of an employee summary.
type AttendanceSummary struct {
	TodayStatus  string `json:"today_status"`
	TodayCheckIn string `json:"today_check_in"`
	Week         Window `json:"week"`
	Month        Window `json:"month"`
}

// PerformanceSummary is the performance block of an employee summary.
type PerformanceSummary struct {
	TotalTasks           int     `json:"total_tasks"`
	Completed            int     `json:"completed"`
	InProgress           int     `json:"in_progress"`
	Pending              int     `json:"pending"`
	CompletionRate       float64 `json:"completion_rate"`
	AvgPerformance       float64 `json:"avg_performance"`
	LatestPerformance    float64 `json:"latest_performance"`
	Productivity         float64 `json:"productivity"`
	Quality              float64 `json:"quality"`
	Efficiency           float64 `json:"efficiency"`
	Rating               string  `json:"rating"`
	PrimaryProject       string  `json:"primary_project"`
	Availability         string  `json:"availability"`
	WeeklyAvgPerformance float64 `json:"weekly_avg_performance"`
	FirstDate            string  `json:"first_date"`
	LastDate             string  `json:"last_date"`
}

// SearchResult is a document hit with its inner-product score.
type SearchResult struct {
	Document Document
	Score    float64
}

// Intent names a fleet-wide daily aggregate.
type Intent string

const (
	IntentCheckedIn       Intent = "checked_in_today"
	IntentWFO             Intent = "wfo_today"
	IntentWFH             Intent = "wfh_today"
	IntentOnLeave         Intent = "on_leave_today"
	IntentAttendanceRatio Intent = "attendance_ratio_today"
)

// Intents lists the aggregate intents in document order.
var Intents = []Intent{IntentCheckedIn, IntentWFO, IntentWFH, IntentOnLeave, IntentAttendanceRatio}

// DocID returns the document id of the aggregate for this intent.
func (i Intent) DocID() string { return "agg_" + string(i) }

// CanonicalID normalises an employee id for storage and comparison.
func CanonicalID(id string) string { return strings.ToUpper(strings.TrimSpace(id)) }

// CanonicalStatus maps loose spellings onto an admitted status.
// The second return is false for anything else.
func CanonicalStatus(s string) (string, bool) {
	switch strings.ToLower(strings.Join(strings.Fields(s), " ")) {
	case "wfo":
		return StatusWFO, true
	case "wfh":
		return StatusWFH, true
	case "on leave", "leave":
		return StatusOnLeave, true
	}
	return "", false
}

// IsPresent reports whether status counts as a present day.
func IsPresent(status string) bool { return status == StatusWFO || status == StatusWFH }
