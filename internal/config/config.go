package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// EmbedderConfig selects the embedder: sparse, or openai with sparse fallback.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// IndexConfig tunes the index lifecycle.
type IndexConfig struct {
	TTLSecs    int    `yaml:"ttl_secs"`
	PersistDir string `yaml:"persist_dir"`
}

// ConversationConfig selects the conversation log store: json or sqlite.
type ConversationConfig struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	ExcelFilePath   string             `yaml:"excel_file_path"`
	EmployeesPath   string             `yaml:"employees_path"`
	AttendancePath  string             `yaml:"attendance_path"`
	ReminderTime    string             `yaml:"reminder_time"`
	ReminderDays    []int              `yaml:"reminder_days"`
	ReminderEmails  []string           `yaml:"reminder_emails"`
	TelegramChatIDs []string           `yaml:"telegram_chat_ids"`
	LateCheckIn     string             `yaml:"late_check_in"`
	Embedder        EmbedderConfig     `yaml:"embedder"`
	VectorStore     VectorStoreConfig  `yaml:"vector_store"`
	Index           IndexConfig        `yaml:"index"`
	Conversation    ConversationConfig `yaml:"conversation"`
	Log             LogConfig          `yaml:"log"`
}

// LateAfter parses LateCheckIn as a time of day.
func (c *AppConfig) LateAfter() (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(c.LateCheckIn))
	if err != nil {
		return 0, fmt.Errorf("invalid late_check_in %q: %w", c.LateCheckIn, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// TTL returns the index staleness window.
func (c *AppConfig) TTL() time.Duration { return time.Duration(c.Index.TTLSecs) * time.Second }

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/emptrack/config.yaml.
// If neither exists, it writes defaults to ~/.config/emptrack/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnv(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "emptrack", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		ExcelFilePath:  "data/daily_tasks.xlsx",
		EmployeesPath:  "data/employees.json",
		AttendancePath: "data/attendance.csv",
		ReminderTime:   "18:00",
		ReminderDays:   []int{0, 1, 2, 3, 4},
		LateCheckIn:    "10:30",
		Embedder:       EmbedderConfig{Type: "sparse"},
		VectorStore:    VectorStoreConfig{Type: "memory"},
		Index:          IndexConfig{TTLSecs: 30},
		Conversation:   ConversationConfig{Type: "json", Path: "data/conversation.json"},
		Log:            LogConfig{Level: "info"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.ExcelFilePath == "" {
		cfg.ExcelFilePath = def.ExcelFilePath
	}
	if cfg.EmployeesPath == "" {
		cfg.EmployeesPath = def.EmployeesPath
	}
	if cfg.AttendancePath == "" {
		cfg.AttendancePath = def.AttendancePath
	}
	if cfg.ReminderTime == "" {
		cfg.ReminderTime = def.ReminderTime
	}
	if len(cfg.ReminderDays) == 0 {
		cfg.ReminderDays = def.ReminderDays
	}
	if cfg.LateCheckIn == "" {
		cfg.LateCheckIn = def.LateCheckIn
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = def.Embedder.Type
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = def.VectorStore.Type
	}
	if cfg.Index.TTLSecs <= 0 {
		cfg.Index.TTLSecs = def.Index.TTLSecs
	}
	if cfg.Conversation.Type == "" {
		cfg.Conversation.Type = def.Conversation.Type
	}
	if cfg.Conversation.Path == "" {
		cfg.Conversation.Path = def.Conversation.Path
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI == nil {
		cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
	}
	if o := cfg.Embedder.OpenAI; o != nil {
		if o.BaseURL == "" {
			o.BaseURL = "https://api.openai.com/v1"
		}
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.Model == "" {
			o.Model = "text-embedding-3-small"
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = 30
		}
		if o.BatchSize == 0 {
			o.BatchSize = 32
		}
	}
	if cfg.VectorStore.Type == "qdrant" && cfg.VectorStore.Qdrant == nil {
		cfg.VectorStore.Qdrant = &QdrantConfig{}
	}
	if q := cfg.VectorStore.Qdrant; q != nil {
		if q.URL == "" {
			q.URL = "http://localhost:6333"
		}
		if q.Collection == "" {
			q.Collection = "employees"
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 10
		}
	}
}

// applyEnv lets the environment override file paths and secrets.
func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("EMPTRACK_EXCEL_FILE_PATH"); v != "" {
		cfg.ExcelFilePath = v
	}
	if v := os.Getenv("EMPTRACK_EMPLOYEES_PATH"); v != "" {
		cfg.EmployeesPath = v
	}
	if v := os.Getenv("EMPTRACK_ATTENDANCE_PATH"); v != "" {
		cfg.AttendancePath = v
	}
	if v := os.Getenv("QDRANT_API_KEY"); v != "" && cfg.VectorStore.Qdrant != nil {
		cfg.VectorStore.Qdrant.APIKey = v
	}
}
