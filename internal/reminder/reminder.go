// Package reminder nudges employees who have not filed a task report
// for the day.
package reminder

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"emptrack/internal/domain"
	"emptrack/internal/source"
	"emptrack/internal/summary"
)

// Reminder is one pending daily report.
type Reminder struct {
	Employee domain.Employee
	Date     time.Time
}

// Notifier delivers reminders.
type Notifier interface {
	Notify(ctx context.Context, reminders []Reminder) error
}

// CronSpec builds a five-field cron spec from an HH:MM time and
// weekdays numbered 0=Monday..6=Sunday.
func CronSpec(at string, days []int) (string, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(at), ":")
	if !ok {
		return "", fmt.Errorf("invalid reminder time %q: want HH:MM", at)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid reminder hour in %q", at)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid reminder minute in %q", at)
	}
	if len(days) == 0 {
		return "", fmt.Errorf("no reminder days")
	}
	seen := map[int]struct{}{}
	var dow []int
	for _, d := range days {
		if d < 0 || d > 6 {
			return "", fmt.Errorf("invalid reminder day %d: want 0 (Mon) to 6 (Sun)", d)
		}
		c := (d + 1) % 7
		if _, dup := seen[c]; !dup {
			seen[c] = struct{}{}
			dow = append(dow, c)
		}
	}
	sort.Ints(dow)
	parts := make([]string, len(dow))
	for i, d := range dow {
		parts[i] = strconv.Itoa(d)
	}
	return fmt.Sprintf("%d %d * * %s", minute, hour, strings.Join(parts, ",")), nil
}

// Pending lists directory members with no task row dated today.
func Pending(s *summary.Summarizer) []Reminder {
	var out []Reminder
	for _, e := range s.Snapshot().Directory.All() {
		if !s.HasTaskOn(e.EmpID, e.Name, s.Today()) {
			out = append(out, Reminder{Employee: e, Date: s.Today()})
		}
	}
	return out
}

// Scheduler runs the reminder job on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	spec     string
	provider source.Provider
	notifier Notifier
	now      func() time.Time
	logger   *zap.Logger
}

func NewScheduler(spec string, provider source.Provider, notifier Notifier, now func() time.Time, logger *zap.Logger) (*Scheduler, error) {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.L()
	}
	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(time.Local), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		spec:     spec,
		provider: provider,
		notifier: notifier,
		now:      now,
		logger:   logger.Named("reminder"),
	}
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("scheduling reminders %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Warn("reminder run failed", zap.Error(err))
	}
}

// RunOnce sends reminders for the current day and returns how many
// employees were pending.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	sum := summary.New(s.provider.Load(), s.now(), 0)
	pending := Pending(sum)
	if len(pending) == 0 {
		s.logger.Info("all task reports filed")
		return 0, nil
	}
	if err := s.notifier.Notify(ctx, pending); err != nil {
		return len(pending), fmt.Errorf("sending reminders: %w", err)
	}
	return len(pending), nil
}

func (s *Scheduler) Start() {
	s.logger.Info("reminders scheduled", zap.String("spec", s.spec))
	s.cron.Start()
}

// Stop halts the schedule; the returned context is done once a
// running job finishes.
func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }

// Next returns the next scheduled run, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// LogNotifier writes reminders to the log. Recipients are the
// configured email and Telegram destinations, reported for context.
type LogNotifier struct {
	Emails  []string
	ChatIDs []string
	Logger  *zap.Logger
}

func (n LogNotifier) Notify(_ context.Context, reminders []Reminder) error {
	logger := n.Logger
	if logger == nil {
		logger = zap.L().Named("reminder")
	}
	for _, r := range reminders {
		logger.Info("task report pending",
			zap.String("emp_id", r.Employee.EmpID),
			zap.String("name", r.Employee.Name),
			zap.String("email", r.Employee.Email),
			zap.String("date", r.Date.Format("2006-01-02")),
		)
	}
	logger.Info("reminders sent",
		zap.Int("pending", len(reminders)),
		zap.Strings("emails", n.Emails),
		zap.Strings("telegram_chat_ids", n.ChatIDs),
	)
	return nil
}
