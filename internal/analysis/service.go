// Package analysis orchestrates the assessment pipeline: one inference per
// participant, a local role tally, and a single team-level rollup call.
package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/godilite/role-report/internal/llm"
	"github.com/godilite/role-report/internal/models"
	"github.com/godilite/role-report/internal/prompt"
)

var (
	// ErrNoAssessments means every individual assessment failed, so no
	// team narrative could be requested.
	ErrNoAssessments = errors.New("no successful assessments")
	// ErrTeamNarrative wraps a failed team-level inference call. The run
	// still produces a report; the narrative fields carry the fallback marker.
	ErrTeamNarrative = errors.New("team narrative inference failed")
)

// Service runs the analysis pipeline.
type Service struct {
	client        InferenceClient
	cache         AssessmentCache
	maxConcurrent int
	logger        *zap.Logger
}

// NewService creates the pipeline service. The cache may be nil.
func NewService(client InferenceClient, cache AssessmentCache, maxConcurrent int, logger *zap.Logger) *Service {
	if client == nil {
		panic("client must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Service{
		client:        client,
		cache:         cache,
		maxConcurrent: maxConcurrent,
		logger:        logger,
	}
}

// Signature is a stable digest of a participant's name and answers, used as
// the cache key. Map keys are serialized sorted, so the digest does not
// depend on load order.
func Signature(resp models.QuizResponse) string {
	answers, _ := json.Marshal(resp.Answers)
	sum := sha256.Sum256([]byte(resp.Name + "|" + string(answers)))
	return hex.EncodeToString(sum[:])
}

// AssessAll classifies every participant, preserving load order. A failed
// inference is recorded as a failed assessment for that participant and does
// not stop the others. Calls fan out up to maxConcurrent at a time.
func (s *Service) AssessAll(ctx context.Context, responses []models.QuizResponse) []models.RoleAssessment {
	results := make([]models.RoleAssessment, len(responses))

	g := new(errgroup.Group)
	g.SetLimit(s.maxConcurrent)

	for i, resp := range responses {
		i, resp := i, resp
		g.Go(func() error {
			results[i] = s.assessOne(ctx, resp)
			return nil
		})
	}
	// Workers never return errors; failures live in the result slots.
	_ = g.Wait()

	return results
}

func (s *Service) assessOne(ctx context.Context, resp models.QuizResponse) models.RoleAssessment {
	sig := Signature(resp)

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, sig)
		if err != nil {
			s.logger.Warn("cache lookup failed", zap.String("name", resp.Name), zap.Error(err))
		} else if ok {
			s.logger.Info("reusing cached assessment", zap.String("name", resp.Name))
			return cached
		}
	}

	s.logger.Info("assessing participant", zap.String("name", resp.Name))

	raw, err := s.client.Complete(ctx, prompt.Individual(resp))
	if err != nil {
		s.logger.Error("assessment failed", zap.String("name", resp.Name), zap.Error(err))
		return models.RoleAssessment{
			Name:          resp.Name,
			Failed:        true,
			FailureReason: err.Error(),
		}
	}

	assessment, fallbacks := llm.ParseAssessment(resp.Name, raw)
	if len(fallbacks) > 0 {
		s.logger.Warn("fields missing from model output",
			zap.String("name", resp.Name),
			zap.Strings("fields", fallbacks))
	}

	if !assessment.Failed && s.cache != nil {
		if err := s.cache.Put(ctx, sig, assessment); err != nil {
			s.logger.Warn("cache store failed", zap.String("name", resp.Name), zap.Error(err))
		}
	}
	return assessment
}

// Tally counts primary roles across successful assessments. Every known role
// is present, zero or not; novel labels the model emitted are counted too.
func Tally(assessments []models.RoleAssessment) map[string]int {
	counts := make(map[string]int, len(models.KnownRoles))
	for _, role := range models.KnownRoles {
		counts[role] = 0
	}
	for _, a := range assessments {
		if a.Failed {
			continue
		}
		counts[a.PrimaryRole]++
	}
	return counts
}

// Outcomes reports how many assessments succeeded and failed.
func Outcomes(assessments []models.RoleAssessment) (succeeded, failed int) {
	for _, a := range assessments {
		if a.Failed {
			failed++
		} else {
			succeeded++
		}
	}
	return succeeded, failed
}

// Summarize builds the team summary: counts from the local tally, narratives
// from one team-level inference call over the successful assessments. It must
// only be called after AssessAll has returned. On narrative failure the
// summary still carries the tally, with markers in place of narratives, and
// the wrapped error is returned for the caller to log.
func (s *Service) Summarize(ctx context.Context, assessments []models.RoleAssessment) (models.TeamSummary, error) {
	summary := models.TeamSummary{
		RoleCounts:            Tally(assessments),
		TeamStrengthsAndRisks: llm.FallbackMarker,
		RoleGapsOrOverlaps:    llm.FallbackMarker,
	}

	successful := make([]models.RoleAssessment, 0, len(assessments))
	for _, a := range assessments {
		if !a.Failed {
			successful = append(successful, a)
		}
	}
	if len(successful) == 0 {
		return summary, ErrNoAssessments
	}

	s.logger.Info("summarizing team", zap.Int("participants", len(successful)))

	raw, err := s.client.Complete(ctx, prompt.Team(successful))
	if err != nil {
		return summary, fmt.Errorf("%w: %v", ErrTeamNarrative, err)
	}

	parsed, fallbacks := llm.ParseTeamNarratives(raw)
	if len(fallbacks) > 0 {
		s.logger.Warn("team fields missing from model output", zap.Strings("fields", fallbacks))
	}

	summary.TeamStrengthsAndRisks = parsed.TeamStrengthsAndRisks
	summary.RoleGapsOrOverlaps = parsed.RoleGapsOrOverlaps
	summary.MentorshipRecommendations = parsed.MentorshipRecommendations
	summary.CollaborationTips = parsed.CollaborationTips
	return summary, nil
}
