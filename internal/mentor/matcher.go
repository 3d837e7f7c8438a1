// Package mentor suggests a mentor per participant from a configured pool.
// The model proposes a match when available; a deterministic fallback picks
// the least-loaded relevant mentor otherwise.
package mentor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/godilite/role-report/internal/models"
)

// Mentor describes one entry in the mentors file.
type Mentor struct {
	Name            string   `json:"name"`
	Role            string   `json:"role"`
	Expertise       []string `json:"expertise"`
	ExperienceYears int      `json:"experience_years"`
	Specialization  string   `json:"specialization"`
}

// Suggestion is a proposed mentor pairing for one participant.
type Suggestion struct {
	MentorName string `json:"mentor_name"`
	Reason     string `json:"reason"`
	MatchScore int    `json:"match_score"`
}

// InferenceClient is the model call used for LLM-assisted matching.
type InferenceClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Expertise keywords that make a mentor relevant to a role.
var roleKeywords = map[string][]string{
	"Data Scientist":               {"data", "analytics", "statistics", "ml"},
	"ML Engineer":                  {"ml", "machine learning", "mlops", "deployment"},
	"AI Engineer":                  {"ai", "llm", "agent", "rag"},
	"Dev Ops Engineer":             {"devops", "infrastructure", "kubernetes", "ci/cd"},
	"Software Engineer":            {"software", "development", "architecture", "backend"},
	"Servicenow Platform Engineer": {"servicenow", "itsm", "workflow", "platform"},
}

// LoadMentors reads the mentor pool from a JSON file.
func LoadMentors(path string) ([]Mentor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mentors file %s: %w", path, err)
	}
	var mentors []Mentor
	if err := json.Unmarshal(data, &mentors); err != nil {
		return nil, fmt.Errorf("decode mentors file %s: %w", path, err)
	}
	return mentors, nil
}

// Matcher pairs participants with mentors. A nil client means fallback-only.
type Matcher struct {
	client InferenceClient
	logger *zap.Logger
}

func NewMatcher(client InferenceClient, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{client: client, logger: logger}
}

// Suggest proposes a mentor for one assessed participant. loads tracks how
// many mentees each mentor already has this run, so suggestions spread out.
// Any model failure degrades to the deterministic fallback rather than
// dropping the suggestion.
func (m *Matcher) Suggest(ctx context.Context, assessment models.RoleAssessment, mentors []Mentor, loads map[string]int) (Suggestion, bool) {
	if assessment.Failed || len(mentors) == 0 {
		return Suggestion{}, false
	}

	if m.client == nil {
		return m.fallback(assessment.PrimaryRole, mentors, loads, "Selected without model assistance"), true
	}

	raw, err := m.client.Complete(ctx, buildPrompt(assessment, mentors, loads))
	if err != nil {
		m.logger.Warn("mentor matching inference failed, using fallback",
			zap.String("participant", assessment.Name),
			zap.Error(err))
		return m.fallback(assessment.PrimaryRole, mentors, loads, "Fallback after model failure"), true
	}

	s, ok := parseSuggestion(raw, mentors)
	if !ok {
		m.logger.Warn("mentor suggestion unparsable, using fallback",
			zap.String("participant", assessment.Name))
		return m.fallback(assessment.PrimaryRole, mentors, loads, "Fallback after unparsable suggestion"), true
	}
	return s, true
}

// fallback filters mentors whose expertise matches the role's keywords and
// prefers the least-loaded, then most-experienced candidate.
func (m *Matcher) fallback(role string, mentors []Mentor, loads map[string]int, reason string) Suggestion {
	candidates := relevantMentors(role, mentors)
	if len(candidates) == 0 {
		candidates = mentors
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if loads[c.Name] < loads[best.Name] {
			best = c
			continue
		}
		if loads[c.Name] == loads[best.Name] && c.ExperienceYears > best.ExperienceYears {
			best = c
		}
	}

	return Suggestion{
		MentorName: best.Name,
		Reason:     fmt.Sprintf("%s (%s, %d years)", reason, best.Role, best.ExperienceYears),
		MatchScore: 70,
	}
}

func relevantMentors(role string, mentors []Mentor) []Mentor {
	keywords := roleKeywords[strings.TrimSpace(role)]
	if len(keywords) == 0 {
		return nil
	}

	var relevant []Mentor
	for _, m := range mentors {
		expertise := strings.ToLower(strings.Join(m.Expertise, " "))
		for _, kw := range keywords {
			if strings.Contains(expertise, kw) {
				relevant = append(relevant, m)
				break
			}
		}
	}
	return relevant
}

func buildPrompt(assessment models.RoleAssessment, mentors []Mentor, loads map[string]int) string {
	mentorsJSON, _ := json.MarshalIndent(mentors, "", "  ")
	loadsJSON, _ := json.Marshal(loads)

	var b strings.Builder
	fmt.Fprintf(&b, "Match a mentee with the best mentor from the pool below.\n\n")
	fmt.Fprintf(&b, "Mentee: %s\nPrimary role: %s\nSecondary role: %s\nSkills: %s\nTraits: %s\n\n",
		assessment.Name,
		assessment.PrimaryRole,
		assessment.SecondaryRole,
		strings.Join(assessment.Hints.Skills, ", "),
		strings.Join(assessment.Hints.XFactors, ", "))
	fmt.Fprintf(&b, "Mentors (JSON):\n%s\n\n", mentorsJSON)
	fmt.Fprintf(&b, "Current mentee counts per mentor (prefer lower):\n%s\n\n", loadsJSON)
	b.WriteString("Prefer complementary matches: the mentor's strength should cover the mentee's growth area. ")
	b.WriteString("Only pick a heavily assigned mentor if the fit is meaningfully better.\n\n")
	b.WriteString("Return ONLY valid JSON, no markdown:\n")
	b.WriteString(`{"mentor_name": "<name from the pool>", "reason": "<1-2 sentences>", "match_score": <0-100>}`)
	b.WriteString("\n")
	return b.String()
}

func parseSuggestion(raw string, mentors []Mentor) (Suggestion, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return Suggestion{}, false
	}

	var s Suggestion
	if err := json.Unmarshal([]byte(raw[start:end+1]), &s); err != nil {
		return Suggestion{}, false
	}

	// The model must pick a real mentor, not invent one.
	for _, m := range mentors {
		if strings.EqualFold(m.Name, s.MentorName) {
			s.MentorName = m.Name
			return s, true
		}
	}
	return Suggestion{}, false
}
