package llm

import (
	"encoding/json"
	"strings"

	"github.com/godilite/role-report/internal/models"
)

// FallbackMarker is rendered for any field that could not be located in the
// model output. It is never replaced with invented content.
const FallbackMarker = "(unparsed)"

// Recognized section labels, matched case-insensitively at line starts.
// JSON output is tried first (the prompt's contract); labeled sections are
// the fallback for models that answer in prose or markdown.
type sectionSpec struct {
	key    string
	labels []string
	// single marks fields that hold one value, not a narrative block.
	single bool
}

var assessmentSections = []sectionSpec{
	{key: "primary_role", labels: []string{"primary role"}, single: true},
	{key: "secondary_role", labels: []string{"secondary role"}, single: true},
	{key: "role_fit", labels: []string{"why this role", "role fit explanation", "role fit", "rationale"}},
	{key: "unique_strengths", labels: []string{"unique strengths"}},
	{key: "ideal_position", labels: []string{"ideal team position", "ideal team role"}},
	{key: "surprise", labels: []string{"surprise insight"}},
}

var teamSections = []sectionSpec{
	{key: "strengths", labels: []string{"team strengths and risks", "team strengths & risks", "strengths and risks"}},
	{key: "gaps", labels: []string{"role gaps or overlaps", "role gaps / overlaps", "role gaps"}},
	{key: "mentorship", labels: []string{"mentorship recommendations"}},
	{key: "tips", labels: []string{"collaboration tips"}},
}

// ParseAssessment extracts a RoleAssessment from raw model output. The
// returned slice names fields that received the fallback marker. A missing
// primary role marks the whole assessment as failed: a report must never
// carry a role the model did not actually assign.
func ParseAssessment(name, raw string) (models.RoleAssessment, []string) {
	a, fallbacks, ok := assessmentFromJSON(raw)
	if !ok {
		a, fallbacks = assessmentFromSections(raw)
	}

	if strings.TrimSpace(a.Name) == "" {
		a.Name = name
	}

	if a.PrimaryRole == "" || a.PrimaryRole == FallbackMarker {
		return models.RoleAssessment{
			Name:          name,
			Failed:        true,
			FailureReason: "primary role not found in model output",
		}, fallbacks
	}
	return a, fallbacks
}

// ParseTeamNarratives extracts the team narrative fields. Counts are tallied
// locally and are ignored even when the model volunteers them.
func ParseTeamNarratives(raw string) (models.TeamSummary, []string) {
	if s, fallbacks, ok := teamFromJSON(raw); ok {
		return s, fallbacks
	}
	return teamFromSections(raw)
}

type assessmentWire struct {
	Name              *string                  `json:"name"`
	PrimaryRole       *string                  `json:"primary_role"`
	SecondaryRole     *string                  `json:"secondary_role"`
	RoleFit           *string                  `json:"role_fit_explanation"`
	UniqueStrengths   *string                  `json:"unique_strengths"`
	IdealTeamPosition *string                  `json:"ideal_team_position"`
	SurpriseInsight   *string                  `json:"surprise_insight"`
	Hints             *models.MentorMatchHints `json:"mentor_match_hints"`

	// Older prompt schema emitted these keys instead.
	Insights      *string `json:"insights"`
	IdealTeamRole *string `json:"ideal_team_role"`
}

func assessmentFromJSON(raw string) (models.RoleAssessment, []string, bool) {
	payload := extractJSON(raw)
	if payload == "" {
		return models.RoleAssessment{}, nil, false
	}

	var w assessmentWire
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return models.RoleAssessment{}, nil, false
	}
	if w.PrimaryRole == nil && w.Name == nil && w.RoleFit == nil {
		// Some other JSON object embedded in prose, not an assessment.
		return models.RoleAssessment{}, nil, false
	}

	if w.RoleFit == nil {
		w.RoleFit = w.Insights
	}
	if w.IdealTeamPosition == nil {
		w.IdealTeamPosition = w.IdealTeamRole
	}

	var fallbacks []string
	take := func(p *string, field string) string {
		if p == nil {
			fallbacks = append(fallbacks, field)
			return FallbackMarker
		}
		return strings.TrimSpace(*p)
	}

	a := models.RoleAssessment{
		PrimaryRole:        take(w.PrimaryRole, "primary_role"),
		SecondaryRole:      take(w.SecondaryRole, "secondary_role"),
		RoleFitExplanation: take(w.RoleFit, "role_fit_explanation"),
		UniqueStrengths:    take(w.UniqueStrengths, "unique_strengths"),
		IdealTeamPosition:  take(w.IdealTeamPosition, "ideal_team_position"),
		SurpriseInsight:    take(w.SurpriseInsight, "surprise_insight"),
	}
	if w.Name != nil {
		a.Name = strings.TrimSpace(*w.Name)
	}
	if w.Hints != nil {
		a.Hints = *w.Hints
	}
	return a, fallbacks, true
}

func assessmentFromSections(raw string) (models.RoleAssessment, []string) {
	found := scanSections(raw, assessmentSections)

	var fallbacks []string
	take := func(key string) string {
		v, ok := found[key]
		if !ok {
			fallbacks = append(fallbacks, key)
			return FallbackMarker
		}
		return v
	}

	return models.RoleAssessment{
		PrimaryRole:        take("primary_role"),
		SecondaryRole:      take("secondary_role"),
		RoleFitExplanation: take("role_fit"),
		UniqueStrengths:    take("unique_strengths"),
		IdealTeamPosition:  take("ideal_position"),
		SurpriseInsight:    take("surprise"),
	}, fallbacks
}

type teamWire struct {
	TeamStrengthsAndRisks     *string        `json:"team_strengths_and_risks"`
	RoleGapsOrOverlaps        *string        `json:"role_gaps_or_overlaps"`
	MentorshipRecommendations []string       `json:"mentorship_recommendations"`
	CollaborationTips         []string       `json:"collaboration_tips"`
	RoleCounts                map[string]int `json:"role_counts"`
}

func teamFromJSON(raw string) (models.TeamSummary, []string, bool) {
	payload := extractJSON(raw)
	if payload == "" {
		return models.TeamSummary{}, nil, false
	}

	var w teamWire
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return models.TeamSummary{}, nil, false
	}
	if w.TeamStrengthsAndRisks == nil && w.RoleGapsOrOverlaps == nil && w.RoleCounts == nil {
		return models.TeamSummary{}, nil, false
	}

	var fallbacks []string
	take := func(p *string, field string) string {
		if p == nil {
			fallbacks = append(fallbacks, field)
			return FallbackMarker
		}
		return strings.TrimSpace(*p)
	}

	return models.TeamSummary{
		TeamStrengthsAndRisks:     take(w.TeamStrengthsAndRisks, "team_strengths_and_risks"),
		RoleGapsOrOverlaps:        take(w.RoleGapsOrOverlaps, "role_gaps_or_overlaps"),
		MentorshipRecommendations: w.MentorshipRecommendations,
		CollaborationTips:         w.CollaborationTips,
	}, fallbacks, true
}

func teamFromSections(raw string) (models.TeamSummary, []string) {
	found := scanSections(raw, teamSections)

	var fallbacks []string
	take := func(key, field string) string {
		v, ok := found[key]
		if !ok {
			fallbacks = append(fallbacks, field)
			return FallbackMarker
		}
		return v
	}

	return models.TeamSummary{
		TeamStrengthsAndRisks:     take("strengths", "team_strengths_and_risks"),
		RoleGapsOrOverlaps:        take("gaps", "role_gaps_or_overlaps"),
		MentorshipRecommendations: splitBullets(found["mentorship"]),
		CollaborationTips:         splitBullets(found["tips"]),
	}, fallbacks
}

// scanSections walks the output line by line. A line starting with a
// recognized label opens that section; the label's inline remainder and any
// following lines up to the next label become its value.
func scanSections(raw string, specs []sectionSpec) map[string]string {
	found := make(map[string]string)
	current := ""
	single := false
	var buf []string

	flush := func() {
		if current == "" {
			return
		}
		text := strings.TrimSpace(strings.Join(buf, "\n"))
		text = strings.Trim(text, "*_")
		if existing, ok := found[current]; !ok || existing == "" {
			found[current] = strings.TrimSpace(text)
		}
		current = ""
		single = false
		buf = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		stripped := strings.TrimLeft(strings.TrimSpace(line), "#>•-* \t")
		stripped = strings.TrimLeft(stripped, "_")

		matched := false
		for _, spec := range specs {
			for _, label := range spec.labels {
				value, ok := matchLabel(stripped, label)
				if !ok {
					continue
				}
				flush()
				current = spec.key
				single = spec.single
				if value != "" {
					buf = append(buf, value)
				}
				matched = true
				break
			}
			if matched {
				break
			}
		}
		if matched {
			// Single-value fields take only the inline value; trailing
			// prose must not leak into a role name.
			if single && len(buf) > 0 {
				flush()
			}
			continue
		}
		if current != "" {
			buf = append(buf, line)
			if single && strings.TrimSpace(line) != "" {
				flush()
			}
		}
	}
	flush()

	return found
}

// matchLabel reports whether the line starts with the label, either as a
// bare heading or followed by a colon and an inline value.
func matchLabel(line, label string) (string, bool) {
	if len(line) < len(label) || !strings.EqualFold(line[:len(label)], label) {
		return "", false
	}
	rest := strings.TrimLeft(line[len(label):], "*_ \t")
	if rest == "" {
		return "", true
	}
	if strings.HasPrefix(rest, ":") {
		value := strings.TrimLeft(rest[1:], "*_ \t")
		return strings.TrimRight(strings.TrimSpace(value), "*_"), true
	}
	return "", false
}

func splitBullets(block string) []string {
	if strings.TrimSpace(block) == "" {
		return nil
	}
	var items []string
	for _, line := range strings.Split(block, "\n") {
		item := strings.TrimSpace(line)
		if item == "" {
			continue
		}
		if trimmed := strings.TrimLeft(item, "-•* \t"); trimmed != item {
			items = append(items, strings.TrimSpace(trimmed))
		} else if len(items) > 0 {
			// continuation of the previous bullet
			items[len(items)-1] += " " + item
		} else {
			items = append(items, item)
		}
	}
	return items
}

// extractJSON returns the first balanced JSON object in the text, or "".
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	if start == -1 {
		return ""
	}
	end := matchingBrace(raw, start)
	if end == -1 {
		return ""
	}
	return raw[start : end+1]
}

func matchingBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
