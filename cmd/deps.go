package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/studyhall/internal/config"
	"github.com/abhisek/studyhall/internal/logger"
	"github.com/abhisek/studyhall/internal/quiz"
	"github.com/abhisek/studyhall/internal/store"
	"github.com/abhisek/studyhall/internal/textgen"
	"github.com/abhisek/studyhall/internal/tutor"
)

// deps is everything a command needs, built from configuration.
type deps struct {
	cfg     *config.Config
	log     *zap.Logger
	store   store.Backend
	creds   *textgen.StoreCredentials
	gen     *textgen.Client
	reports *quiz.ReportLog
	quiz    *quiz.Engine
	tutor   *tutor.Engine
}

// loadDeps loads configuration, opens the store and builds the engines.
// When logToFile is set, logs go to a file so they do not corrupt the TUI.
func loadDeps(cmd *cobra.Command, logToFile bool) (*deps, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logFile := cfg.Log.File
	if logToFile && logFile == "" {
		dir, err := config.StateDir()
		if err != nil {
			return nil, err
		}
		logFile = filepath.Join(dir, "studyhall.log")
	}
	log, err := logger.New(cfg.Env, cfg.Log.Level, logFile)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	dbOverride, _ := cmd.Flags().GetString("db")
	opts := cfg.StoreOptions(dbOverride)
	if dbOverride != "" && (opts.Driver == "" || opts.Driver == store.DriverSQLite) {
		if err := store.EnsureDir(dbOverride); err != nil {
			return nil, fmt.Errorf("prepare database directory: %w", err)
		}
	}

	st, err := store.Open(cmd.Context(), opts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	llmCfg := cfg.LLMConfig()
	creds := textgen.NewStoreCredentials(st, llmCfg.APIKey())
	gen := textgen.NewFromConfig(llmCfg, creds, st, log)
	reports := quiz.NewReportLog(st)

	var source quiz.QuestionSource = quiz.NewBank()
	if cfg.Quiz.Source == config.QuizSourceLLM {
		gcfg := quiz.DefaultGeneratorConfig()
		gcfg.QuestionCount = cfg.Quiz.QuestionCount
		gcfg.Retry = llmCfg.Retry
		gcfg.Timeout = llmCfg.Timeout
		source = quiz.NewGenerator(gen, gcfg, log)
	}

	log.Debug("dependencies ready",
		zap.String("store", opts.Driver),
		zap.String("provider", llmCfg.Provider),
		zap.String("quiz_source", cfg.Quiz.Source))

	return &deps{
		cfg:     cfg,
		log:     log,
		store:   st,
		creds:   creds,
		gen:     gen,
		reports: reports,
		quiz:    quiz.NewEngine(source, reports, log),
		tutor:   tutor.NewEngine(st, gen, log),
	}, nil
}

// Close releases the store and flushes the logger.
func (d *deps) Close() {
	if err := d.store.Close(); err != nil {
		d.log.Warn("close store", zap.Error(err))
	}
	_ = d.log.Sync()
}
