package portfolio

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func testInputs() Inputs {
	return Inputs{
		CompanyName: "Acme Robotics",
		CompanyURL:  "https://acme.example.com",
		RoleTitle:   "VP of Sales",
	}
}

func TestCatalogAndReadingOrderAgree(t *testing.T) {
	if len(ReadingOrder) != len(Catalog) {
		t.Fatalf("reading order has %d entries, catalog %d", len(ReadingOrder), len(Catalog))
	}
	if ReadingOrder[0] != SecQuickDigest {
		t.Fatalf("reading order starts with %q, want quick digest", ReadingOrder[0])
	}
	seen := map[string]bool{}
	for _, id := range ReadingOrder {
		if _, ok := ByID(id); !ok {
			t.Fatalf("reading order entry %q not in catalog", id)
		}
		if seen[id] {
			t.Fatalf("duplicate reading order entry %q", id)
		}
		seen[id] = true
	}
}

func TestGenerationOrderGroupsByKind(t *testing.T) {
	order := GenerationOrder()
	if len(order) != len(Catalog) {
		t.Fatalf("generation order has %d entries, want %d", len(order), len(Catalog))
	}
	rank := map[Kind]int{KindSimple: 0, KindComplex: 1, KindValidation: 2, KindSynthesis: 3, KindSpecial: 4}
	prev := -1
	for _, id := range order {
		sec, _ := ByID(id)
		r := rank[sec.Kind]
		if r < prev {
			t.Fatalf("section %q (kind %s) out of phase order", id, sec.Kind)
		}
		prev = r
	}
	if order[0] != SecFoundersStory {
		t.Fatalf("first generated section = %q, want foundersStory", order[0])
	}
	if order[len(order)-1] != SecSources {
		t.Fatalf("last generated section = %q, want sources", order[len(order)-1])
	}
}

func TestProgressSkipsErrorsAndEmpty(t *testing.T) {
	p := New(testInputs())
	p.Set(SecFoundersStory, "Founded in a garage.")
	p.Set(SecFundingHistory, ErrorText(errors.New("boom")))
	p.Set(SecNewsMedia, "")
	if got := p.Progress(); got != 1 {
		t.Fatalf("Progress() = %d, want 1", got)
	}
}

func TestGetOrFallsBackOnErrorMarker(t *testing.T) {
	p := New(testInputs())
	p.Set(SecCompanyMetrics, ErrorText(errors.New("timeout")))
	if got := p.GetOr(SecCompanyMetrics, NotAvailable); got != NotAvailable {
		t.Fatalf("GetOr = %q, want fallback", got)
	}
	p.Set(SecCompanyMetrics, "| Founded | 2020 |")
	if got := p.GetOr(SecCompanyMetrics, NotAvailable); got != "| Founded | 2020 |" {
		t.Fatalf("GetOr = %q, want stored text", got)
	}
}

func TestExcerpt(t *testing.T) {
	if got := Excerpt("short", 100); got != "short" {
		t.Fatalf("Excerpt = %q", got)
	}
	long := strings.Repeat("x", 50)
	if got := Excerpt(long, 10); got != strings.Repeat("x", 10) {
		t.Fatalf("Excerpt len = %d, want 10", len(got))
	}
	if got := Excerpt(long, 0); got != long {
		t.Fatalf("Excerpt with n=0 should pass text through")
	}

	accented := strings.Repeat("é", 6) // 2 bytes per rune
	got := Excerpt(accented, 5)
	if got != strings.Repeat("é", 2) {
		t.Fatalf("Excerpt must back up to a rune boundary, got %q", got)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("Excerpt produced invalid UTF-8: %q", got)
	}
}

func TestMarkdownAssembly(t *testing.T) {
	p := New(testInputs())
	p.Set(SecQuickDigest, "digest body")
	p.Set(SecFoundersStory, "story body")
	p.Set(SecFundingHistory, ErrorText(errors.New("provider down")))

	md := p.Markdown()

	if !strings.HasPrefix(md, "# Pitch Research & Portfolio: Acme Robotics - VP of Sales\n") {
		t.Fatalf("missing or wrong title, got %q", md[:60])
	}
	digestAt := strings.Index(md, "## Quick Digest (Summary)")
	storyAt := strings.Index(md, "## Founders Story & Origin")
	if digestAt < 0 || storyAt < 0 {
		t.Fatalf("missing section headings:\n%s", md)
	}
	if digestAt > storyAt {
		t.Fatalf("quick digest should come before founders story")
	}
	if strings.Contains(md, "Funding History") {
		t.Fatalf("failed section must not be rendered:\n%s", md)
	}
}

func TestRenderHTMLTables(t *testing.T) {
	html, err := RenderHTML("| a | b |\n|---|---|\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if !strings.Contains(html, "<table>") {
		t.Fatalf("GFM tables not rendered: %s", html)
	}
}

func TestSimplePromptCoverage(t *testing.T) {
	in := testInputs()
	simple := []string{
		SecFoundersStory, SecExecutiveSummary, SecTopPriorities,
		SecSearchRequirements, SecContradictions, SecPitchToCandidates,
	}
	for _, id := range simple {
		prompt, ok := SimplePrompt(id, in)
		if !ok {
			t.Fatalf("SimplePrompt(%q) not covered", id)
		}
		if !strings.Contains(prompt, in.CompanyName) {
			t.Fatalf("prompt for %q does not mention the company", id)
		}
	}
	if _, ok := SimplePrompt(SecFundingHistory, in); ok {
		t.Fatalf("fundingHistory must not be a simple section")
	}
}

func TestConsistencyPromptEmbedsAndExcludes(t *testing.T) {
	in := testInputs()
	p := New(in)
	p.Set(SecFoundersStory, "Founded by two engineers in 2019.")
	p.Set(SecFundingHistory, strings.Repeat("r", 5000))
	p.Set(SecQuickDigest, "should never appear in the check")
	p.Set(SecNewsMedia, ErrorText(errors.New("down")))

	prompt := ConsistencyPrompt(in, p)

	if !strings.Contains(prompt, "Founded by two engineers") {
		t.Fatalf("founders story not embedded")
	}
	if strings.Contains(prompt, "should never appear") {
		t.Fatalf("terminal sections must not be embedded")
	}
	if strings.Contains(prompt, "provider down") || strings.Contains(prompt, "[Error:") {
		t.Fatalf("error markers must not be embedded")
	}
	if strings.Contains(prompt, strings.Repeat("r", consistencyEmbedBudget+1)) {
		t.Fatalf("embedded section exceeds the excerpt budget")
	}
	if !strings.Contains(prompt, "Do NOT search the web") {
		t.Fatalf("prompt must forbid search")
	}
}

func TestQuickDigestPromptUsesFallbacks(t *testing.T) {
	in := testInputs()
	p := New(in)
	p.Set(SecFundingHistory, "Seed round of $2M in 2020.")
	p.Set(SecCompetitiveLandscape, strings.Repeat("c", 2000))

	prompt := QuickDigestPrompt(in, p)

	if !strings.Contains(prompt, "Seed round of $2M") {
		t.Fatalf("funding history not embedded")
	}
	if !strings.Contains(prompt, NotAvailable) {
		t.Fatalf("missing sections should fall back to the placeholder")
	}
	if strings.Contains(prompt, strings.Repeat("c", 801)) {
		t.Fatalf("competitive landscape excerpt exceeds 800 bytes")
	}
}

func TestChainPromptsEmbedPriorCall(t *testing.T) {
	in := testInputs()
	roster := "| Jane Doe | CEO | linkedin.com/in/janedoe |"
	if got := LeadershipBackgroundsPrompt(in, roster); !strings.Contains(got, roster) {
		t.Fatalf("backgrounds prompt must embed the roster")
	}
	list := "1. Initech - legacy workflow vendor"
	if got := CompetitorDetailsPrompt(in, list); !strings.Contains(got, list) {
		t.Fatalf("details prompt must embed the competitor list")
	}
}
