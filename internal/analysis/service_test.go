package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/godilite/role-report/internal/analysis/mocks"
	"github.com/godilite/role-report/internal/llm"
	"github.com/godilite/role-report/internal/models"
)

func testResponses(names ...string) []models.QuizResponse {
	responses := make([]models.QuizResponse, 0, len(names))
	for _, name := range names {
		responses = append(responses, models.QuizResponse{
			Name:    name,
			Answers: map[string]string{"Your Ideal Tech Stack": "Python, PyTorch"},
		})
	}
	return responses
}

func assessmentJSON(name, role string) string {
	return fmt.Sprintf(`{"name": %q, "primary_role": %q, "secondary_role": "",
		"role_fit_explanation": "fits", "unique_strengths": "s",
		"ideal_team_position": "p", "surprise_insight": "i"}`, name, role)
}

func TestNewService(t *testing.T) {
	t.Run("panics without a client", func(t *testing.T) {
		assert.Panics(t, func() {
			NewService(nil, nil, 1, zap.NewNop())
		})
	})

	t.Run("clamps concurrency to at least one", func(t *testing.T) {
		s := NewService(&mocks.MockInferenceClient{}, nil, 0, zap.NewNop())
		assert.Equal(t, 1, s.maxConcurrent)
	})
}

func TestSignature(t *testing.T) {
	resp := testResponses("Ada")[0]

	t.Run("stable across calls", func(t *testing.T) {
		assert.Equal(t, Signature(resp), Signature(resp))
	})

	t.Run("changes with the answers", func(t *testing.T) {
		other := models.QuizResponse{Name: "Ada", Answers: map[string]string{"Your Ideal Tech Stack": "Go, Kubernetes"}}
		assert.NotEqual(t, Signature(resp), Signature(other))
	})

	t.Run("changes with the name", func(t *testing.T) {
		other := resp
		other.Name = "Grace"
		assert.NotEqual(t, Signature(resp), Signature(other))
	})
}

func TestAssessAll(t *testing.T) {
	t.Run("preserves input order", func(t *testing.T) {
		client := &mocks.MockInferenceClient{
			CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
				for _, name := range []string{"Ada", "Grace", "Lin"} {
					if strings.Contains(prompt, name) {
						return assessmentJSON(name, "ML Engineer"), nil
					}
				}
				return "", errors.New("unknown participant")
			},
		}
		s := NewService(client, nil, 3, zap.NewNop())

		results := s.AssessAll(context.Background(), testResponses("Ada", "Grace", "Lin"))

		require.Len(t, results, 3)
		assert.Equal(t, "Ada", results[0].Name)
		assert.Equal(t, "Grace", results[1].Name)
		assert.Equal(t, "Lin", results[2].Name)
	})

	t.Run("one failure does not stop the others", func(t *testing.T) {
		client := &mocks.MockInferenceClient{
			CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
				if strings.Contains(prompt, "Grace") {
					return "", errors.New("connection refused")
				}
				if strings.Contains(prompt, "Ada") {
					return assessmentJSON("Ada", "ML Engineer"), nil
				}
				return assessmentJSON("Lin", "Data Scientist"), nil
			},
		}
		s := NewService(client, nil, 1, zap.NewNop())

		results := s.AssessAll(context.Background(), testResponses("Ada", "Grace", "Lin"))

		require.Len(t, results, 3)
		assert.False(t, results[0].Failed)
		assert.True(t, results[1].Failed)
		assert.Contains(t, results[1].FailureReason, "connection refused")
		assert.False(t, results[2].Failed)

		succeeded, failed := Outcomes(results)
		assert.Equal(t, 2, succeeded)
		assert.Equal(t, 1, failed)
	})

	t.Run("unparsable output becomes a failed assessment", func(t *testing.T) {
		client := &mocks.MockInferenceClient{
			CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
				return "I cannot decide.", nil
			},
		}
		s := NewService(client, nil, 1, zap.NewNop())

		results := s.AssessAll(context.Background(), testResponses("Ada"))

		require.Len(t, results, 1)
		assert.True(t, results[0].Failed)
		assert.Equal(t, "Ada", results[0].Name)
	})

	t.Run("cache hit skips inference", func(t *testing.T) {
		var calls atomic.Int32
		client := &mocks.MockInferenceClient{
			CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
				calls.Add(1)
				return assessmentJSON("Ada", "ML Engineer"), nil
			},
		}
		cache := &mocks.MockAssessmentCache{}
		s := NewService(client, cache, 1, zap.NewNop())

		first := s.AssessAll(context.Background(), testResponses("Ada"))
		second := s.AssessAll(context.Background(), testResponses("Ada"))

		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, first, second)
	})

	t.Run("failed assessments are not cached", func(t *testing.T) {
		client := &mocks.MockInferenceClient{
			CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
				return "", errors.New("boom")
			},
		}
		cache := &mocks.MockAssessmentCache{}
		s := NewService(client, cache, 1, zap.NewNop())

		s.AssessAll(context.Background(), testResponses("Ada"))

		assert.Empty(t, cache.Entries)
	})

	t.Run("cache errors degrade to inference", func(t *testing.T) {
		client := &mocks.MockInferenceClient{
			CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
				return assessmentJSON("Ada", "ML Engineer"), nil
			},
		}
		cache := &mocks.MockAssessmentCache{
			GetFunc: func(ctx context.Context, signature string) (models.RoleAssessment, bool, error) {
				return models.RoleAssessment{}, false, errors.New("cache down")
			},
			PutFunc: func(ctx context.Context, signature string, assessment models.RoleAssessment) error {
				return errors.New("cache down")
			},
		}
		s := NewService(client, cache, 1, zap.NewNop())

		results := s.AssessAll(context.Background(), testResponses("Ada"))

		require.Len(t, results, 1)
		assert.False(t, results[0].Failed)
		assert.Equal(t, "ML Engineer", results[0].PrimaryRole)
	})
}

func TestTally(t *testing.T) {
	t.Run("known roles present at zero", func(t *testing.T) {
		counts := Tally(nil)

		require.Len(t, counts, len(models.KnownRoles))
		for _, role := range models.KnownRoles {
			assert.Equal(t, 0, counts[role])
		}
	})

	t.Run("counts primaries, skips failures, keeps novel labels", func(t *testing.T) {
		assessments := []models.RoleAssessment{
			{Name: "Ada", PrimaryRole: "ML Engineer"},
			{Name: "Grace", PrimaryRole: "ML Engineer"},
			{Name: "Lin", PrimaryRole: "Prompt Engineer"},
			{Name: "Mo", Failed: true},
		}

		counts := Tally(assessments)

		assert.Equal(t, 2, counts["ML Engineer"])
		assert.Equal(t, 1, counts["Prompt Engineer"])
		assert.Equal(t, 0, counts["Data Scientist"])

		total := 0
		for _, n := range counts {
			total += n
		}
		assert.Equal(t, 3, total)
	})
}

func TestSummarize(t *testing.T) {
	teamJSON := `{"team_strengths_and_risks": "Deep ML bench.",
		"role_gaps_or_overlaps": "No platform coverage.",
		"mentorship_recommendations": ["Pair Ada with Lin"],
		"collaboration_tips": ["Rotate reviews"]}`

	t.Run("happy path", func(t *testing.T) {
		client := &mocks.MockInferenceClient{
			CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
				return teamJSON, nil
			},
		}
		s := NewService(client, nil, 1, zap.NewNop())

		assessments := []models.RoleAssessment{
			{Name: "Ada", PrimaryRole: "ML Engineer"},
			{Name: "Lin", PrimaryRole: "Data Scientist"},
		}

		summary, err := s.Summarize(context.Background(), assessments)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.RoleCounts["ML Engineer"])
		assert.Equal(t, "Deep ML bench.", summary.TeamStrengthsAndRisks)
		assert.Equal(t, []string{"Pair Ada with Lin"}, summary.MentorshipRecommendations)
	})

	t.Run("failed participants are excluded from the prompt", func(t *testing.T) {
		var captured string
		client := &mocks.MockInferenceClient{
			CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
				captured = prompt
				return teamJSON, nil
			},
		}
		s := NewService(client, nil, 1, zap.NewNop())

		assessments := []models.RoleAssessment{
			{Name: "Ada", PrimaryRole: "ML Engineer"},
			{Name: "Grace", Failed: true},
		}

		_, err := s.Summarize(context.Background(), assessments)

		require.NoError(t, err)
		assert.Contains(t, captured, "Ada")
		assert.NotContains(t, captured, "Grace")
	})

	t.Run("all failed means no team call", func(t *testing.T) {
		client := &mocks.MockInferenceClient{
			CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
				t.Fatal("team inference must not run when every assessment failed")
				return "", nil
			},
		}
		s := NewService(client, nil, 1, zap.NewNop())

		summary, err := s.Summarize(context.Background(), []models.RoleAssessment{
			{Name: "Ada", Failed: true},
		})

		assert.ErrorIs(t, err, ErrNoAssessments)
		assert.Equal(t, llm.FallbackMarker, summary.TeamStrengthsAndRisks)
		assert.Equal(t, 0, summary.RoleCounts["ML Engineer"])
	})

	t.Run("narrative failure keeps the tally", func(t *testing.T) {
		client := &mocks.MockInferenceClient{
			CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
				return "", errors.New("timeout")
			},
		}
		s := NewService(client, nil, 1, zap.NewNop())

		summary, err := s.Summarize(context.Background(), []models.RoleAssessment{
			{Name: "Ada", PrimaryRole: "ML Engineer"},
		})

		assert.ErrorIs(t, err, ErrTeamNarrative)
		assert.Equal(t, 1, summary.RoleCounts["ML Engineer"])
		assert.Equal(t, llm.FallbackMarker, summary.TeamStrengthsAndRisks)
		assert.Equal(t, llm.FallbackMarker, summary.RoleGapsOrOverlaps)
	})
}
