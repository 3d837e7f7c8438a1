package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/godilite/role-report/internal/analysis"
	"github.com/godilite/role-report/internal/models"
)

// Write persists the rendered report. A write failure is fatal to the run;
// the caller must not present a partial report as complete.
func Write(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write report to %s: %w", path, err)
	}
	return nil
}

// ConsoleSummary prints the condensed end-of-run summary.
func ConsoleSummary(w io.Writer, assessments []models.RoleAssessment, summary models.TeamSummary, outputPath string) {
	line := strings.Repeat("=", 70)

	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "TEAM ROLE DISCOVERY - SUMMARY")
	fmt.Fprintln(w, line)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Individual primary roles:")
	for _, a := range assessments {
		if a.Failed {
			fmt.Fprintf(w, "- %s: assessment failed (%s)\n", a.Name, a.FailureReason)
			continue
		}
		fmt.Fprintf(w, "- %s: %s\n", a.Name, a.PrimaryRole)
	}
	fmt.Fprintln(w)

	succeeded, failed := analysis.Outcomes(assessments)
	fmt.Fprintf(w, "Assessments: %d succeeded, %d failed\n\n", succeeded, failed)

	fmt.Fprintln(w, "Team role counts:")
	printCounts(w, summary.RoleCounts)
	fmt.Fprintln(w)

	if summary.TeamStrengthsAndRisks != "" {
		fmt.Fprintln(w, "Team strengths & risks:")
		fmt.Fprintln(w, summary.TeamStrengthsAndRisks)
		fmt.Fprintln(w)
	}
	if summary.RoleGapsOrOverlaps != "" {
		fmt.Fprintln(w, "Role gaps / overlaps:")
		fmt.Fprintln(w, summary.RoleGapsOrOverlaps)
		fmt.Fprintln(w)
	}

	if len(summary.MentorshipRecommendations) > 0 {
		fmt.Fprintln(w, "Mentorship recommendations:")
		for _, m := range summary.MentorshipRecommendations {
			fmt.Fprintf(w, "- %s\n", m)
		}
		fmt.Fprintln(w)
	}
	if len(summary.CollaborationTips) > 0 {
		fmt.Fprintln(w, "Collaboration tips:")
		for _, tip := range summary.CollaborationTips {
			fmt.Fprintf(w, "- %s\n", tip)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "Full markdown report written to: %s\n", outputPath)
	fmt.Fprintln(w, line)
}

func printCounts(w io.Writer, counts map[string]int) {
	if len(counts) == 0 {
		fmt.Fprintln(w, "No role count data.")
		return
	}
	for _, role := range models.KnownRoles {
		fmt.Fprintf(w, "- %s: %d\n", role, counts[role])
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
	for _, role := range novel {
		fmt.Fprintf(w, "- %s: %d\n", role, counts[role])
	}
}
