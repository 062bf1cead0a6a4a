package main

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"emptrack/internal/assistant"
	"emptrack/internal/config"
	"emptrack/internal/convlog"
	"emptrack/internal/embedding"
	"emptrack/internal/embedding/openai"
	"emptrack/internal/embedding/sparse"
	"emptrack/internal/index"
	"emptrack/internal/logging"
	"emptrack/internal/source"
	"emptrack/internal/vectorstore"
	"emptrack/internal/vectorstore/memory"
	"emptrack/internal/vectorstore/qdrant"
)

// app holds the assembled components shared by the subcommands.
type app struct {
	cfg       *config.AppConfig
	logger    *zap.Logger
	loader    *source.Loader
	index     *index.Index
	router    *assistant.Router
	lateAfter time.Duration
	closers   []io.Closer
}

func loadConfig(path string) (*config.AppConfig, error) {
	if path == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(path)
}

func newApp(cfg *config.AppConfig) (*app, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)

	lateAfter, err := cfg.LateAfter()
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:       cfg,
		logger:    logger,
		loader:    source.NewLoader(cfg.EmployeesPath, cfg.AttendancePath, cfg.ExcelFilePath, logger),
		lateAfter: lateAfter,
	}

	emb, err := buildEmbedder(cfg.Embedder, logger)
	if err != nil {
		return nil, err
	}
	newStore, err := storeFactory(cfg.VectorStore)
	if err != nil {
		return nil, err
	}
	a.index = index.New(a.loader, emb, newStore,
		index.WithTTL(cfg.TTL()),
		index.WithLateAfter(lateAfter),
		index.WithPersistDir(cfg.Index.PersistDir),
		index.WithLogger(logger),
	)

	log, err := a.conversationLog(cfg.Conversation)
	if err != nil {
		return nil, err
	}
	a.router = assistant.New(a.index, log, logger)
	return a, nil
}

func buildEmbedder(cfg config.EmbedderConfig, logger *zap.Logger) (embedding.Embedder, error) {
	switch cfg.Type {
	case "sparse", "tfidf", "":
		return sparse.NewEmbedder(), nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Model:     cfg.OpenAI.Model,
			Timeout:   time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
			BatchSize: cfg.OpenAI.BatchSize,
		})
		if err != nil {
			logger.Warn("dense embedder unavailable, using sparse", zap.Error(err))
			return sparse.NewEmbedder(), nil
		}
		return embedding.NewFallback(client, sparse.NewEmbedder(), logger), nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}

func storeFactory(cfg config.VectorStoreConfig) (func() vectorstore.Storage, error) {
	switch cfg.Type {
	case "memory", "":
		return func() vectorstore.Storage { return memory.NewStorage() }, nil
	case "qdrant":
		if cfg.Qdrant == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		qcfg := qdrant.Config{
			URL:        cfg.Qdrant.URL,
			APIKey:     cfg.Qdrant.APIKey,
			Collection: cfg.Qdrant.Collection,
			Timeout:    time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
		}
		return func() vectorstore.Storage { return qdrant.NewStorage(qcfg) }, nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.Type)
	}
}

func (a *app) conversationLog(cfg config.ConversationConfig) (convlog.Log, error) {
	switch cfg.Type {
	case "json", "":
		return convlog.NewJSONFile(cfg.Path, a.logger), nil
	case "sqlite":
		s, err := convlog.OpenSQLite(cfg.Path, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		return s, nil
	case "none":
		return convlog.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown conversation store: %s", cfg.Type)
	}
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
