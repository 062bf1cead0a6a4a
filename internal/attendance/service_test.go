package attendance

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emptrack/internal/domain"
	"emptrack/internal/source"
)

func setup(t *testing.T) (*source.Loader, string) {
	t.Helper()
	dir := t.TempDir()
	employees := filepath.Join(dir, "employees.json")
	data, err := json.Marshal(map[string]domain.Employee{
		"E001": {Name: "Asha"},
		"E002": {Name: "Rahul"},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(employees, data, 0o644))
	ledger := filepath.Join(dir, "attendance.csv")
	return source.NewLoader(employees, ledger, "", nil), ledger
}

func fixedClock(hour, min int) func() time.Time {
	return func() time.Time { return time.Date(2025, 1, 10, hour, min, 0, 0, time.Local) }
}

const lateAfter = 10*time.Hour + 30*time.Minute

func TestCheckIn_Appends(t *testing.T) {
	src, path := setup(t)
	svc := NewService(src, lateAfter, fixedClock(9, 45), nil)

	res, err := svc.CheckIn("e001", "wfo", " on site ")
	require.NoError(t, err)
	assert.Equal(t, "Asha", res.Employee.Name)
	assert.Equal(t, domain.StatusWFO, res.Record.Status)
	assert.Equal(t, "09:45 AM", res.Record.CheckInTime)
	assert.Equal(t, "on site", res.Record.Notes)
	assert.False(t, res.Late)

	recs, err := source.NewLedger(path).Load()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "E001", recs[0].EmpID)

	got, ok := svc.Today("E001")
	require.True(t, ok)
	assert.Equal(t, domain.StatusWFO, got.Status)
}

func TestCheckIn_OncePerDay(t *testing.T) {
	src, _ := setup(t)
	svc := NewService(src, lateAfter, fixedClock(9, 0), nil)

	_, err := svc.CheckIn("E002", "WFH", "")
	require.NoError(t, err)
	_, err = svc.CheckIn("E002", "WFO", "")
	assert.ErrorIs(t, err, domain.ErrAlreadyCheckedIn)
}

func TestCheckIn_Late(t *testing.T) {
	src, _ := setup(t)
	svc := NewService(src, lateAfter, fixedClock(11, 5), nil)

	res, err := svc.CheckIn("E001", "WFH", "")
	require.NoError(t, err)
	assert.True(t, res.Late)

	res, err = svc.CheckIn("E002", "leave", "")
	require.NoError(t, err)
	assert.False(t, res.Late)
	assert.Equal(t, domain.StatusOnLeave, res.Record.Status)
}

func TestCheckIn_Rejects(t *testing.T) {
	src, path := setup(t)
	svc := NewService(src, lateAfter, fixedClock(9, 0), nil)

	_, err := svc.CheckIn("E999", "WFO", "")
	assert.ErrorIs(t, err, domain.ErrUnknownEmployee)
	_, err = svc.CheckIn("E001", "remote", "")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestToday_NoRecord(t *testing.T) {
	src, _ := setup(t)
	svc := NewService(src, lateAfter, fixedClock(9, 0), nil)
	_, ok := svc.Today("E001")
	assert.False(t, ok)
}
