package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/godilite/role-report/internal/analysis"
	"github.com/godilite/role-report/internal/config"
	"github.com/godilite/role-report/internal/llm"
	"github.com/godilite/role-report/internal/mentor"
	"github.com/godilite/role-report/internal/models"
	"github.com/godilite/role-report/internal/report"
	"github.com/godilite/role-report/internal/repository"
	"github.com/godilite/role-report/internal/source"
	"github.com/godilite/role-report/pkg/cache"
	dbbuilder "github.com/godilite/role-report/pkg/database"
)

// ResponseSource abstracts where quiz responses come from (sheet or file).
type ResponseSource interface {
	Load(ctx context.Context) ([]models.QuizResponse, error)
}

type App struct {
	cfg    *config.Config
	logger *zap.Logger
	runID  string

	src     ResponseSource
	client  *llm.Client
	service *analysis.Service

	dbPool *sql.DB
	redis  *cache.Cache
}

// NewApp wires the pipeline from configuration. With no model configured the
// app runs in data-only mode: it fetches responses and exports them as JSON.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: logger,
		runID:  uuid.NewString(),
	}

	src, err := newSource(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.src = src

	if cfg.LLMModel == "" {
		logger.Info("no model configured, running in data-only mode")
		return a, nil
	}

	client, err := llm.NewClient(
		llm.WithBaseURL(cfg.LLMBaseURL),
		llm.WithAPIKey(cfg.LLMAPIKey),
		llm.WithModel(cfg.LLMModel),
		llm.WithTimeout(cfg.LLMTimeout),
		llm.WithRetry(cfg.LLMRetryAttempts, time.Second),
		llm.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("inference client init failed: %w", err)
	}
	a.client = client

	assessmentCache, err := a.newAssessmentCache(ctx)
	if err != nil {
		return nil, err
	}

	a.service = analysis.NewService(client, assessmentCache, cfg.LLMMaxConcurrent, logger)

	logger.Info("application initialized",
		zap.String("run_id", a.runID),
		zap.String("model", cfg.LLMModel),
		zap.String("cache_backend", cfg.CacheBackend))

	return a, nil
}

func newSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ResponseSource, error) {
	if cfg.SheetID != "" {
		src, err := source.NewSheetSource(ctx, cfg.ServiceAccountFile, cfg.SheetID, cfg.WorksheetName, logger)
		if err != nil {
			return nil, fmt.Errorf("sheet source init failed: %w", err)
		}
		return src, nil
	}
	logger.Info("GOOGLE_SHEET_ID not set, reading local responses",
		zap.String("path", cfg.RawResponsesFile))
	return source.NewFileSource(cfg.RawResponsesFile, logger), nil
}

func (a *App) newAssessmentCache(ctx context.Context) (analysis.AssessmentCache, error) {
	switch a.cfg.CacheBackend {
	case config.CacheBackendNone:
		return nil, nil

	case config.CacheBackendRedis:
		redisCache, err := cache.New(ctx, cache.WithAddress(a.cfg.RedisAddr))
		if err != nil {
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		a.redis = redisCache
		a.logger.Info("redis assessment cache initialized", zap.String("addr", a.cfg.RedisAddr))
		return repository.NewRedisAssessmentCache(redisCache), nil

	case config.CacheBackendSQLite:
		if dir := filepath.Dir(a.cfg.CacheDBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create cache dir: %w", err)
			}
		}
		dbPool, err := dbbuilder.New(
			dbbuilder.WithDriver("sqlite3"),
			dbbuilder.WithDataSource(a.cfg.CacheDBPath),
		)
		if err != nil {
			return nil, fmt.Errorf("cache database init failed: %w", err)
		}
		a.dbPool = dbPool

		repo := repository.NewAssessmentCacheRepository(dbPool, a.runID)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		a.logger.Info("sqlite assessment cache initialized", zap.String("path", a.cfg.CacheDBPath))
		return repo, nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", a.cfg.CacheBackend)
	}
}

// Run executes one pipeline pass. Source and report-write failures are
// fatal; individual inference failures are recorded in the report instead.
func (a *App) Run(ctx context.Context) error {
	responses, err := a.src.Load(ctx)
	if err != nil {
		return fmt.Errorf("load responses: %w", err)
	}
	if len(responses) == 0 {
		a.logger.Info("no valid participant responses found")
		fmt.Println("No valid participant responses found.")
		return nil
	}

	if a.service == nil {
		if err := source.SaveRaw(a.cfg.RawResponsesFile, responses); err != nil {
			return err
		}
		fmt.Printf("No model configured. Saved %d responses to %s.\n", len(responses), a.cfg.RawResponsesFile)
		return nil
	}

	assessments := a.service.AssessAll(ctx, responses)

	summary, err := a.service.Summarize(ctx, assessments)
	if err != nil {
		switch {
		case errors.Is(err, analysis.ErrNoAssessments):
			a.logger.Warn("every individual assessment failed, team narrative skipped")
		default:
			a.logger.Warn("team narrative unavailable", zap.Error(err))
		}
	}

	suggestions := a.mentorSuggestions(ctx, assessments)

	markdown := report.Render(assessments, summary, suggestions, time.Now())
	if err := report.Write(a.cfg.OutputPath, markdown); err != nil {
		return err
	}

	report.ConsoleSummary(os.Stdout, assessments, summary, a.cfg.OutputPath)

	succeeded, failed := analysis.Outcomes(assessments)
	a.logger.Info("run complete",
		zap.String("run_id", a.runID),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
		zap.String("report", a.cfg.OutputPath))

	return nil
}

func (a *App) mentorSuggestions(ctx context.Context, assessments []models.RoleAssessment) []report.MentorSuggestion {
	if a.cfg.MentorsFile == "" {
		return nil
	}

	mentors, err := mentor.LoadMentors(a.cfg.MentorsFile)
	if err != nil {
		a.logger.Warn("mentor pool unavailable, skipping suggestions", zap.Error(err))
		return nil
	}

	matcher := mentor.NewMatcher(a.client, a.logger)
	loads := make(map[string]int)

	var suggestions []report.MentorSuggestion
	for _, assessment := range assessments {
		s, ok := matcher.Suggest(ctx, assessment, mentors, loads)
		if !ok {
			continue
		}
		loads[s.MentorName]++
		suggestions = append(suggestions, report.MentorSuggestion{
			Participant: assessment.Name,
			Mentor:      s.MentorName,
			Reason:      s.Reason,
		})
	}
	return suggestions
}

// Close releases cache resources.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if a.dbPool != nil {
		if err := a.dbPool.Close(); err != nil {
			a.logger.Error("database shutdown error", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
