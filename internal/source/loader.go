package source

import (
	"go.uber.org/zap"

	"emptrack/internal/domain"
)

// Snapshot is one consistent read of the three sources.
type Snapshot struct {
	Directory *Directory
	Ledger    []domain.AttendanceRecord
	Tasks     *domain.TaskLog
}

// Provider yields a fresh snapshot on every call.
type Provider interface {
	Load() Snapshot
}

// Loader reads the sources from disk. Each loader degrades to an empty
// value on failure so the rest of the pipeline keeps working.
type Loader struct {
	EmployeesPath  string
	AttendancePath string
	TasksPath      string

	ledger *Ledger
	logger *zap.Logger
}

func NewLoader(employeesPath, attendancePath, tasksPath string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.L()
	}
	return &Loader{
		EmployeesPath:  employeesPath,
		AttendancePath: attendancePath,
		TasksPath:      tasksPath,
		ledger:         NewLedger(attendancePath),
		logger:         logger.Named("source"),
	}
}

// Ledger exposes the attendance ledger for the check-in path.
func (l *Loader) Ledger() *Ledger { return l.ledger }

func (l *Loader) LoadEmployees() *Directory {
	d, err := LoadDirectory(l.EmployeesPath)
	if err != nil {
		l.logger.Warn("employee directory unavailable", zap.String("path", l.EmployeesPath), zap.Error(err))
		return NewDirectory()
	}
	return d
}

func (l *Loader) LoadAttendance() []domain.AttendanceRecord {
	recs, err := l.ledger.Load()
	if err != nil {
		l.logger.Warn("attendance ledger unavailable", zap.String("path", l.AttendancePath), zap.Error(err))
		return nil
	}
	return recs
}

// LoadTasks returns nil when the task log is missing or unreadable.
func (l *Loader) LoadTasks() *domain.TaskLog {
	if l.TasksPath == "" {
		return nil
	}
	t, err := LoadTasks(l.TasksPath)
	if err != nil {
		l.logger.Warn("task log unavailable", zap.String("path", l.TasksPath), zap.Error(err))
		return nil
	}
	return t
}

func (l *Loader) Load() Snapshot {
	return Snapshot{
		Directory: l.LoadEmployees(),
		Ledger:    l.LoadAttendance(),
		Tasks:     l.LoadTasks(),
	}
}

// Static is a Provider over fixed values.
type Static Snapshot

func (s Static) Load() Snapshot { return Snapshot(s) }
