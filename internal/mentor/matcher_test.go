package mentor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/role-report/internal/analysis/mocks"
	"github.com/godilite/role-report/internal/models"
)

func testMentors() []Mentor {
	return []Mentor{
		{Name: "Sara", Role: "Staff ML Engineer", Expertise: []string{"MLOps", "deployment"}, ExperienceYears: 12},
		{Name: "Tunde", Role: "Senior ML Engineer", Expertise: []string{"machine learning"}, ExperienceYears: 7},
		{Name: "Priya", Role: "Platform Lead", Expertise: []string{"ServiceNow", "workflow"}, ExperienceYears: 9},
	}
}

func mlAssessment() models.RoleAssessment {
	return models.RoleAssessment{Name: "Ada", PrimaryRole: "ML Engineer"}
}

func TestLoadMentors(t *testing.T) {
	t.Run("reads the pool", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mentors.json")
		require.NoError(t, os.WriteFile(path, []byte(`[
			{"name": "Sara", "role": "Staff ML Engineer", "expertise": ["MLOps"], "experience_years": 12}
		]`), 0o644))

		mentors, err := LoadMentors(path)

		require.NoError(t, err)
		require.Len(t, mentors, 1)
		assert.Equal(t, "Sara", mentors[0].Name)
		assert.Equal(t, 12, mentors[0].ExperienceYears)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadMentors(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})
}

func TestSuggest(t *testing.T) {
	t.Run("failed assessment gets no suggestion", func(t *testing.T) {
		m := NewMatcher(nil, nil)

		_, ok := m.Suggest(context.Background(), models.RoleAssessment{Name: "Ada", Failed: true}, testMentors(), map[string]int{})

		assert.False(t, ok)
	})

	t.Run("empty pool gets no suggestion", func(t *testing.T) {
		m := NewMatcher(nil, nil)

		_, ok := m.Suggest(context.Background(), mlAssessment(), nil, map[string]int{})

		assert.False(t, ok)
	})

	t.Run("model pick is honored when it names a real mentor", func(t *testing.T) {
		client := &mocks.MockInferenceClient{
			CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
				return `{"mentor_name": "tunde", "reason": "Hands-on ML depth", "match_score": 92}`, nil
			},
		}
		m := NewMatcher(client, nil)

		s, ok := m.Suggest(context.Background(), mlAssessment(), testMentors(), map[string]int{})

		require.True(t, ok)
		assert.Equal(t, "Tunde", s.MentorName)
		assert.Equal(t, 92, s.MatchScore)
	})

	t.Run("invented mentor falls back deterministically", func(t *testing.T) {
		client := &mocks.MockInferenceClient{
			CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
				return `{"mentor_name": "Nobody Real", "reason": "x", "match_score": 99}`, nil
			},
		}
		m := NewMatcher(client, nil)

		s, ok := m.Suggest(context.Background(), mlAssessment(), testMentors(), map[string]int{})

		require.True(t, ok)
		assert.Equal(t, "Sara", s.MentorName)
	})

	t.Run("model failure falls back deterministically", func(t *testing.T) {
		client := &mocks.MockInferenceClient{
			CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
				return "", errors.New("connection refused")
			},
		}
		m := NewMatcher(client, nil)

		s, ok := m.Suggest(context.Background(), mlAssessment(), testMentors(), map[string]int{})

		require.True(t, ok)
		assert.Equal(t, "Sara", s.MentorName)
		assert.Equal(t, 70, s.MatchScore)
	})
}

func TestFallback(t *testing.T) {
	m := NewMatcher(nil, nil)

	t.Run("prefers relevant then most experienced", func(t *testing.T) {
		s := m.fallback("ML Engineer", testMentors(), map[string]int{}, "r")

		// Sara and Tunde both match the ml keywords; Sara has more years.
		assert.Equal(t, "Sara", s.MentorName)
	})

	t.Run("load wins over experience", func(t *testing.T) {
		loads := map[string]int{"Sara": 2}

		s := m.fallback("ML Engineer", testMentors(), loads, "r")

		assert.Equal(t, "Tunde", s.MentorName)
	})

	t.Run("unknown role uses the whole pool", func(t *testing.T) {
		s := m.fallback("Prompt Engineer", testMentors(), map[string]int{}, "r")

		assert.Equal(t, "Sara", s.MentorName)
	})
}
