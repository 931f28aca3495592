package metrics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aperturesearch/portfolio/internal/portfolio"
	"github.com/aperturesearch/portfolio/internal/quality"
)

type stubGen struct {
	response string
	err      error
	calls    int
}

func (s *stubGen) Invoke(_ context.Context, _, _ string, _ quality.Config) (string, error) {
	s.calls++
	return s.response, s.err
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func buildPortfolio(metricsText, fundingText string) *portfolio.Portfolio {
	p := portfolio.New(portfolio.Inputs{CompanyName: "Acme", CompanyURL: "https://acme.test", RoleTitle: "VP Sales"})
	if metricsText != "" {
		p.Set(portfolio.SecCompanyMetrics, metricsText)
	}
	if fundingText != "" {
		p.Set(portfolio.SecFundingHistory, fundingText)
	}
	return p
}

func TestExtractFromProviderJSON(t *testing.T) {
	gen := &stubGen{response: `{
		"employee_count": 120,
		"founded_year": 2019,
		"headquarters": "Austin, Texas",
		"total_funding_millions": 43,
		"valuation_millions": null,
		"funding_stage": "Series B",
		"top_competitors": ["Acme", "Globex"]
	}`}
	p := buildPortfolio("total 43 million... headquarters: Austin, Texas", "")

	m := Extract(context.Background(), gen, discard(), p)

	if gen.calls != 1 {
		t.Fatalf("extraction made %d calls, want 1", gen.calls)
	}
	if m.EmployeeCount == nil || *m.EmployeeCount != 120 {
		t.Fatalf("employee count = %v", m.EmployeeCount)
	}
	if m.FoundedYear == nil || *m.FoundedYear != 2019 {
		t.Fatalf("founded year = %v", m.FoundedYear)
	}
	if m.Headquarters == nil || *m.Headquarters != "Austin, Texas" {
		t.Fatalf("headquarters = %v", m.Headquarters)
	}
	if m.TotalFundingMillions == nil || *m.TotalFundingMillions != 43 {
		t.Fatalf("total funding = %v", m.TotalFundingMillions)
	}
	if got := FormatFunding(*m.TotalFundingMillions); got != "43M" {
		t.Fatalf("FormatFunding = %q, want 43M", got)
	}
	if m.ValuationMillions != nil {
		t.Fatalf("null valuation must stay absent, got %v", *m.ValuationMillions)
	}
	if m.FundingStage == nil || *m.FundingStage != "Series B" {
		t.Fatalf("funding stage = %v", m.FundingStage)
	}
	if len(m.TopCompetitors) != 2 || m.TopCompetitors[0] != "Acme" || m.TopCompetitors[1] != "Globex" {
		t.Fatalf("competitors = %v", m.TopCompetitors)
	}
	for _, f := range []string{FieldEmployeeCount, FieldFoundedYear, FieldHeadquarters, FieldTotalFundingMillions, FieldFundingStage} {
		if m.Provenance[f] != TierJSON {
			t.Fatalf("provenance[%s] = %q, want json", f, m.Provenance[f])
		}
	}
}

func TestExtractFallsBackToRegexOnCallFailure(t *testing.T) {
	gen := &stubGen{err: errors.New("provider down")}
	p := buildPortfolio(
		"Founded in 2019. Headquarters: Austin, Texas\n| Employee Count | 1,200 |\n1,200 employees",
		"Seed round, then a Series A, then Series B.\nTotal raised: $43 million",
	)

	m := Extract(context.Background(), gen, discard(), p)

	if m.EmployeeCount == nil || *m.EmployeeCount != 1200 {
		t.Fatalf("employee count = %v", m.EmployeeCount)
	}
	if m.FoundedYear == nil || *m.FoundedYear != 2019 {
		t.Fatalf("founded year = %v", m.FoundedYear)
	}
	if m.Headquarters == nil || *m.Headquarters != "Austin, Texas" {
		t.Fatalf("headquarters = %v", m.Headquarters)
	}
	if m.TotalFundingMillions == nil || *m.TotalFundingMillions != 43 {
		t.Fatalf("total funding = %v", m.TotalFundingMillions)
	}
	if m.FundingStage == nil || *m.FundingStage != "Series B" {
		t.Fatalf("stage scan should resolve to the latest stage, got %v", m.FundingStage)
	}
	if m.Provenance[FieldFoundedYear] != TierRegex {
		t.Fatalf("provenance should be regex, got %q", m.Provenance[FieldFoundedYear])
	}
}

func TestExtractSkipsCallWhenNoSourceSections(t *testing.T) {
	gen := &stubGen{response: "{}"}
	p := buildPortfolio("", "")
	Extract(context.Background(), gen, discard(), p)
	if gen.calls != 0 {
		t.Fatalf("no source text should mean no provider call, got %d", gen.calls)
	}
}

func TestRecoverJSONTiers(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"bare", `{"founded_year": 2019}`},
		{"fenced", "Here you go:\n```json\n{\"founded_year\": 2019}\n```\nDone."},
		{"bracketed", "Sure! The data is {\"founded_year\": 2019} as requested."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, ok := recoverJSON(tc.text)
			if !ok {
				t.Fatalf("recoverJSON failed")
			}
			if p.FoundedYear == nil || *p.FoundedYear != 2019 {
				t.Fatalf("founded year = %v", p.FoundedYear)
			}
		})
	}
	if _, ok := recoverJSON("no json here at all"); ok {
		t.Fatalf("garbage text must not parse")
	}
}

func TestFundingUnitNormalization(t *testing.T) {
	cases := []struct {
		text string
		want float64
	}{
		{"Total raised: $1.2 billion", 1200},
		{"Total funding: $43M", 43},
		{"total: $500k", 0.5},
	}
	for _, tc := range cases {
		m := Metrics{Provenance: map[string]Tier{}}
		m.fillFromSections(buildPortfolio("", tc.text))
		if m.TotalFundingMillions == nil || *m.TotalFundingMillions != tc.want {
			t.Fatalf("%q: total = %v, want %v", tc.text, m.TotalFundingMillions, tc.want)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"Austin, Texas", true},
		{"Series B", true},
		{"I cannot access this information", false},
		{"[City, State]", false},
		{"Not found after searching Crunchbase", false},
		{"Not publicly disclosed", false},
		{"TBD", false},
		{"", false},
		{"   ", false},
	}
	for _, tc := range cases {
		if _, ok := SanitizeString(tc.in); ok != tc.ok {
			t.Fatalf("SanitizeString(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
	}
	long := make([]byte, maxStringLen+1)
	for i := range long {
		long[i] = 'x'
	}
	if _, ok := SanitizeString(string(long)); ok {
		t.Fatalf("over-length value must be rejected")
	}
}

func TestNumericBounds(t *testing.T) {
	m := Metrics{Provenance: map[string]Tier{}}
	m.applyJSON(`{"founded_year": 1850, "employee_count": 20000000, "total_funding_millions": -5}`)
	if m.FoundedYear != nil {
		t.Fatalf("year before 1900 must be rejected")
	}
	if m.EmployeeCount != nil {
		t.Fatalf("implausible employee count must be rejected")
	}
	if m.TotalFundingMillions != nil {
		t.Fatalf("negative money must be rejected")
	}
}

func TestCompetitorSniffFromNumberedList(t *testing.T) {
	text := `**Direct Competitors** (same core product/market):
1. **Globex** - workflow automation
2. **Initech** - legacy suite
3. **Umbrella Corp** - adjacent platform`
	m := Metrics{Provenance: map[string]Tier{}}
	p := portfolio.New(portfolio.Inputs{})
	p.Set(portfolio.SecCompetitiveLandscape, text)
	m.fillFromSections(p)
	if len(m.TopCompetitors) != 3 {
		t.Fatalf("competitors = %v", m.TopCompetitors)
	}
	if m.TopCompetitors[0] != "Globex" {
		t.Fatalf("first competitor = %q", m.TopCompetitors[0])
	}
}

func TestFormatFunding(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{43, "43M"},
		{1200, "1200M"},
		{0.5, "0.5M"},
	}
	for _, tc := range cases {
		if got := FormatFunding(tc.in); got != tc.want {
			t.Fatalf("FormatFunding(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
