package convlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JSONFile stores the log as a single JSON array of {role, content}.
type JSONFile struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

func NewJSONFile(path string, logger *zap.Logger) *JSONFile {
	if logger == nil {
		logger = zap.L()
	}
	return &JSONFile{path: path, logger: logger.Named("convlog")}
}

func (j *JSONFile) Append(msgs ...Message) {
	if err := j.append(msgs); err != nil {
		j.logger.Warn("conversation log write failed", zap.String("path", j.path), zap.Error(err))
	}
}

func (j *JSONFile) append(msgs []Message) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	history, err := j.read()
	var corrupt *corruptError
	if errors.As(err, &corrupt) {
		aside := fmt.Sprintf("%s.corrupt-%d", j.path, time.Now().UnixNano())
		if rerr := os.Rename(j.path, aside); rerr != nil {
			return fmt.Errorf("moving corrupt log aside: %w", rerr)
		}
		j.logger.Warn("conversation log corrupt, starting a new one", zap.String("moved_to", aside), zap.Error(err))
		history, err = nil, nil
	}
	if err != nil {
		return err
	}
	history = append(history, msgs...)
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(j.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := j.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, j.path)
}

// History returns every stored message.
func (j *JSONFile) History() ([]Message, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.read()
}

func (j *JSONFile) read() ([]Message, error) {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var history []Message
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, &corruptError{err: err}
	}
	return history, nil
}

type corruptError struct{ err error }

func (e *corruptError) Error() string { return "parsing conversation log: " + e.err.Error() }

func (e *corruptError) Unwrap() error { return e.err }
