// Package prompt builds the natural-language prompts sent to the model.
// The templates embed the fixed role taxonomy and require strict JSON
// output; the parser still tolerates free-form replies.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/godilite/role-report/internal/models"
)

// Individual renders the per-participant classification prompt. Answers are
// embedded verbatim, never truncated, as sorted-key JSON so the same
// response always yields the same prompt.
func Individual(resp models.QuizResponse) string {
	answers, _ := json.MarshalIndent(resp.Answers, "", "  ")

	var b strings.Builder
	b.WriteString("You are assessing which technical role best fits a workshop participant, ")
	b.WriteString("based on their answers to an eight-question quiz.\n\n")

	b.WriteString("The candidate roles are:\n")
	for _, role := range models.KnownRoles {
		fmt.Fprintf(&b, "- %s\n", role)
	}

	b.WriteString("\nQuestions 1-4 cover explicit technical preferences and carry the most weight. ")
	b.WriteString("Questions 5-8 are everyday scenarios that reveal working style; use them to confirm ")
	b.WriteString("or challenge the technical signal. Contradictions between the two groups are ")
	b.WriteString("informative, not noise: a data-oriented technical profile with automation-first ")
	b.WriteString("scenario answers often indicates ML Engineer rather than Data Scientist.\n\n")

	b.WriteString("Requirements:\n")
	b.WriteString("- Cite at least three question topics by name (e.g. \"Group Project Chaos\") and quote the chosen answer text.\n")
	b.WriteString("- Pick exactly one primary role from the list; the secondary role may be empty.\n")
	b.WriteString("- Do not invent answers the participant did not give.\n\n")

	b.WriteString("Return ONLY valid JSON with this exact structure, no markdown and no preamble:\n\n")
	fmt.Fprintf(&b, `{
  "name": %q,
  "primary_role": "<one role from the list>",
  "secondary_role": "<one role or empty string>",
  "role_fit_explanation": "<2-5 sentences citing question topics and quoting answers>",
  "unique_strengths": "<about 50 words, specific to this answer combination>",
  "ideal_team_position": "<2-4 sentences referencing the scenario answers>",
  "surprise_insight": "<1-2 sentences on an unexpected pattern>",
  "mentor_match_hints": {
    "skills": ["<3-8 technical skill keywords>"],
    "x_factors": ["<2-6 personality trait keywords>"]
  }
}`, resp.Name)

	fmt.Fprintf(&b, "\n\n%s's answers (question: answer):\n\n%s\n", resp.Name, answers)
	b.WriteString("\nNow produce the JSON only.\n")

	return b.String()
}

// Team renders the team-level rollup prompt from the successful assessments.
// Role counts are computed locally and are deliberately not requested here.
func Team(assessments []models.RoleAssessment) string {
	type member struct {
		Name          string   `json:"name"`
		PrimaryRole   string   `json:"primary_role"`
		SecondaryRole string   `json:"secondary_role"`
		Skills        []string `json:"skills"`
		XFactors      []string `json:"x_factors"`
	}

	team := make([]member, 0, len(assessments))
	for _, a := range assessments {
		team = append(team, member{
			Name:          a.Name,
			PrimaryRole:   a.PrimaryRole,
			SecondaryRole: a.SecondaryRole,
			Skills:        a.Hints.Skills,
			XFactors:      a.Hints.XFactors,
		})
	}
	summary, _ := json.MarshalIndent(team, "", "  ")

	var b strings.Builder
	b.WriteString("You are reviewing the composition of a technical team. Each member has been ")
	b.WriteString("assigned one of these roles:\n")
	for _, role := range models.KnownRoles {
		fmt.Fprintf(&b, "- %s\n", role)
	}

	fmt.Fprintf(&b, "\nThe team:\n\n%s\n\n", summary)

	b.WriteString("Assess what this specific team can build well together, where it is exposed, ")
	b.WriteString("and which roles are missing or duplicated. Use real names from the data and ")
	b.WriteString("reference the listed skills when pairing people.\n\n")

	b.WriteString("Return ONLY valid JSON with this exact structure, no markdown and no preamble:\n\n")
	b.WriteString(`{
  "team_strengths_and_risks": "<2-4 sentences on strengths and challenges of this role distribution>",
  "role_gaps_or_overlaps": "<2-4 sentences on missing or over-represented roles>",
  "mentorship_recommendations": [
    "<3-6 pairings, each naming both people, their complementary skills, and why the pairing works>"
  ],
  "collaboration_tips": [
    "<5-8 actionable tips addressing this team's specific composition>"
  ]
}`)
	b.WriteString("\n\nNow produce the JSON only.\n")

	return b.String()
}
