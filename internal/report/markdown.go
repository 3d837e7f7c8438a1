// Package report renders the markdown report and the console summary.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/godilite/role-report/internal/models"
)

// MentorSuggestion is one mentor pairing line for the report appendix.
type MentorSuggestion struct {
	Participant string
	Mentor      string
	Reason      string
}

// Render produces the full markdown report. Participants appear in load
// order; failed assessments are marked, never omitted or filled in. The
// timestamp is injected so rendering the same inputs is byte-identical.
func Render(assessments []models.RoleAssessment, summary models.TeamSummary, suggestions []MentorSuggestion, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("# Team Role Discovery Report\n\n")
	fmt.Fprintf(&b, "_Generated on %s_\n\n", generatedAt.UTC().Format("2006-01-02 15:04 UTC"))
	b.WriteString("---\n\n")

	b.WriteString("## Individual Results\n\n")
	for _, a := range assessments {
		renderParticipant(&b, a)
	}

	b.WriteString("## Team Composition\n\n")
	renderComposition(&b, summary.RoleCounts)

	b.WriteString("## Overall Team Insights\n\n")
	renderNarrative(&b, "Team strengths and risks", summary.TeamStrengthsAndRisks)
	renderNarrative(&b, "Role gaps or overlaps", summary.RoleGapsOrOverlaps)

	if len(suggestions) > 0 {
		b.WriteString("## Mentor Suggestions\n\n")
		for _, s := range suggestions {
			fmt.Fprintf(&b, "- **%s** → %s — %s\n", s.Participant, s.Mentor, s.Reason)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func renderParticipant(b *strings.Builder, a models.RoleAssessment) {
	fmt.Fprintf(b, "### %s\n\n", a.Name)

	if a.Failed {
		fmt.Fprintf(b, "_Assessment failed: %s_\n\n", a.FailureReason)
		b.WriteString("---\n\n")
		return
	}

	fmt.Fprintf(b, "- **Primary role:** %s\n", a.PrimaryRole)
	if a.SecondaryRole != "" {
		fmt.Fprintf(b, "- **Secondary role:** %s\n", a.SecondaryRole)
	}
	b.WriteString("\n")

	renderNarrative(b, "Why this role", a.RoleFitExplanation)
	renderNarrative(b, "Unique strengths", a.UniqueStrengths)
	renderNarrative(b, "Ideal team position", a.IdealTeamPosition)
	renderNarrative(b, "Surprise insight", a.SurpriseInsight)

	b.WriteString("---\n\n")
}

func renderNarrative(b *strings.Builder, heading, text string) {
	if text == "" {
		return
	}
	fmt.Fprintf(b, "**%s**\n\n%s\n\n", heading, text)
}

// renderComposition writes the role table: known roles first in taxonomy
// order, zero or not, then any novel labels the model emitted, sorted.
func renderComposition(b *strings.Builder, counts map[string]int) {
	if len(counts) == 0 {
		b.WriteString("_No team composition data available._\n\n")
		return
	}

	known := make(map[string]struct{}, len(models.KnownRoles))
	for _, role := range models.KnownRoles {
		known[role] = struct{}{}
	}

	var novel []string
	for role := range counts {
		if _, ok := known[role]; !ok {
			novel = append(novel, role)
		}
	}
	sort.Strings(novel)

	b.WriteString("| Role | Count |\n")
	b.WriteString("|------|-------|\n")
	for _, role := range models.KnownRoles {
		fmt.Fprintf(b, "| %s | %d |\n", role, counts[role])
	}
	for _, role := range novel {
		fmt.Fprintf(b, "| %s | %d |\n", role, counts[role])
	}
	b.WriteString("\n")
}
