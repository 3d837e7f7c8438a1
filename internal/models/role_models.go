package models

// KnownRoles is the fixed taxonomy the team tally reports explicitly.
// The model may emit labels outside this list; those are tallied as-is
// but only the known roles are guaranteed a row in the report.
var KnownRoles = []string{
	"Data Scientist",
	"ML Engineer",
	"AI Engineer",
	"Dev Ops Engineer",
	"Software Engineer",
	"Servicenow Platform Engineer",
}

// Questions lists the eight quiz columns the loader requires, in form order.
var Questions = []string{
	"Your Ideal Tech Stack",
	"Problem You'd Love to Solve",
	"Your Learning Queue",
	"Daily Work Preference",
	"Restaurant Scenario",
	"IKEA Furniture Test",
	"Lost in City Scenario",
	"Group Project Chaos",
}

// QuizResponse is one participant's submission, immutable once loaded.
type QuizResponse struct {
	Name    string            `json:"name"`
	Answers map[string]string `json:"answers"`
}

// MentorMatchHints carries the skill/trait keywords the model infers,
// used later for mentor pairing.
type MentorMatchHints struct {
	Skills   []string `json:"skills"`
	XFactors []string `json:"x_factors"`
}

// RoleAssessment is the classification result for one participant.
// A failed inference still produces an assessment, with Failed set and
// every content field left empty, so the report never drops a participant.
type RoleAssessment struct {
	Name               string           `json:"name"`
	PrimaryRole        string           `json:"primary_role"`
	SecondaryRole      string           `json:"secondary_role"`
	RoleFitExplanation string           `json:"role_fit_explanation"`
	UniqueStrengths    string           `json:"unique_strengths"`
	IdealTeamPosition  string           `json:"ideal_team_position"`
	SurpriseInsight    string           `json:"surprise_insight"`
	Hints              MentorMatchHints `json:"mentor_match_hints"`

	Failed        bool   `json:"-"`
	FailureReason string `json:"-"`
}

// TeamSummary aggregates all assessments of a run.
type TeamSummary struct {
	RoleCounts                map[string]int `json:"role_counts"`
	TeamStrengthsAndRisks     string         `json:"team_strengths_and_risks"`
	RoleGapsOrOverlaps        string         `json:"role_gaps_or_overlaps"`
	MentorshipRecommendations []string       `json:"mentorship_recommendations"`
	CollaborationTips         []string       `json:"collaboration_tips"`
}
