// Package portfolio defines the research section catalog, the assembled
// portfolio state, prompt construction, and markdown rendering.
package portfolio

// Kind determines how a section's producer runs.
type Kind string

const (
	// KindSimple sections are produced by exactly one retrying call.
	KindSimple Kind = "simple"
	// KindComplex sections chain 2+ calls, later prompts embedding earlier
	// output.
	KindComplex Kind = "complex"
	// KindValidation embeds all completed sections and must not search.
	KindValidation Kind = "validation"
	// KindSynthesis embeds all completed sections and extracts rather than
	// searches.
	KindSynthesis Kind = "synthesis"
	// KindSpecial is a terminal section built from completed sections.
	KindSpecial Kind = "special"
)

// Section is one named unit of generated content.
type Section struct {
	ID    string
	Label string
	Kind  Kind
}

// Section ids, stable keys used in prompts, the API, and regeneration.
const (
	SecFoundersStory        = "foundersStory"
	SecFundingHistory       = "fundingHistory"
	SecExecutiveSummary     = "executiveSummary"
	SecTopPriorities        = "topPriorities"
	SecLeadershipTeam       = "leadershipTeam"
	SecBoardMembers         = "boardMembers"
	SecCompanyMetrics       = "companyMetrics"
	SecSearchRequirements   = "searchRequirements"
	SecCompetitiveLandscape = "competitiveLandscape"
	SecNewsMedia            = "newsMedia"
	SecContradictions       = "contradictions"
	SecPitchToCandidates    = "pitchToCandidates"
	SecConsistencyCheck     = "consistencyCheck"
	SecQuickDigest          = "quickDigest"
	SecSources              = "sources"
)

// Catalog lists all sections in declaration order. Generation order is
// derived from it: simple first, then complex, then validation, synthesis,
// and special.
var Catalog = []Section{
	{ID: SecFoundersStory, Label: "Founders Story & Origin", Kind: KindSimple},
	{ID: SecFundingHistory, Label: "Funding History", Kind: KindComplex},
	{ID: SecExecutiveSummary, Label: "Executive Summary & The Moment", Kind: KindSimple},
	{ID: SecTopPriorities, Label: "Top 3 Role Priorities", Kind: KindSimple},
	{ID: SecLeadershipTeam, Label: "Leadership Team", Kind: KindComplex},
	{ID: SecBoardMembers, Label: "Board of Directors", Kind: KindComplex},
	{ID: SecCompanyMetrics, Label: "Company Metrics", Kind: KindComplex},
	{ID: SecSearchRequirements, Label: "Search Requirements", Kind: KindSimple},
	{ID: SecCompetitiveLandscape, Label: "Competitive Landscape", Kind: KindComplex},
	{ID: SecNewsMedia, Label: "News & Media", Kind: KindComplex},
	{ID: SecContradictions, Label: "Contradictions & Alignment", Kind: KindSimple},
	{ID: SecPitchToCandidates, Label: "The Pitch to Candidates", Kind: KindSimple},
	{ID: SecConsistencyCheck, Label: "Consistency Check", Kind: KindValidation},
	{ID: SecQuickDigest, Label: "Quick Digest (Summary)", Kind: KindSynthesis},
	{ID: SecSources, Label: "Sources", Kind: KindSpecial},
}

// ReadingOrder is the documented markdown assembly order: Quick Digest first,
// regardless of generation order.
var ReadingOrder = []string{
	SecQuickDigest,
	SecFoundersStory,
	SecFundingHistory,
	SecExecutiveSummary,
	SecTopPriorities,
	SecLeadershipTeam,
	SecBoardMembers,
	SecCompanyMetrics,
	SecSearchRequirements,
	SecCompetitiveLandscape,
	SecNewsMedia,
	SecContradictions,
	SecPitchToCandidates,
	SecConsistencyCheck,
	SecSources,
}

// ByID returns the catalog entry for id, or false when unknown.
func ByID(id string) (Section, bool) {
	for _, s := range Catalog {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// GenerationOrder returns section ids grouped by kind in run order.
func GenerationOrder() []string {
	order := make([]string, 0, len(Catalog))
	for _, kind := range []Kind{KindSimple, KindComplex, KindValidation, KindSynthesis, KindSpecial} {
		for _, s := range Catalog {
			if s.Kind == kind {
				order = append(order, s.ID)
			}
		}
	}
	return order
}
