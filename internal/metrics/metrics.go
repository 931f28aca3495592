// Package metrics pulls structured company facts out of generated research
// text. Extraction is best effort and never authoritative: every field is
// either a validated value or absent, and a failed parse is not an error.
package metrics

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aperturesearch/portfolio/internal/portfolio"
	"github.com/aperturesearch/portfolio/internal/quality"
)

// Tier records which extraction phase produced a field.
type Tier string

const (
	// TierJSON means the value came from the model's JSON response.
	TierJSON Tier = "json"
	// TierRegex means the value was recovered from raw section text.
	TierRegex Tier = "regex"
)

// Field names used as provenance keys and JSON keys.
const (
	FieldEmployeeCount        = "employee_count"
	FieldFoundedYear          = "founded_year"
	FieldHeadquarters         = "headquarters"
	FieldTotalFundingMillions = "total_funding_millions"
	FieldValuationMillions    = "valuation_millions"
	FieldFundingStage         = "funding_stage"
	FieldMarketSizeBillions   = "market_size_billions"
	FieldTopCompetitors       = "top_competitors"
)

// Metrics is the partial record handed to the CRM publisher. Nil pointer or
// empty slice means the field was not found; sentinel strings are never
// stored.
type Metrics struct {
	EmployeeCount        *int
	FoundedYear          *int
	Headquarters         *string
	TotalFundingMillions *float64
	ValuationMillions    *float64
	FundingStage         *string
	MarketSizeBillions   *float64
	TopCompetitors       []string

	Provenance map[string]Tier
}

// Generator is the one invoker method the extractor needs.
type Generator interface {
	Invoke(ctx context.Context, prompt, systemPrompt string, cfg quality.Config) (string, error)
}

// ExtractionSystemPrompt pins the dedicated call to JSON-only output.
const ExtractionSystemPrompt = `You are a data extraction engine. Output ONLY a single JSON object. No prose, no markdown, no explanation. Never search the web.`

func extractionPrompt(p *portfolio.Portfolio) string {
	metricsText, _ := p.Get(portfolio.SecCompanyMetrics)
	fundingText, _ := p.Get(portfolio.SecFundingHistory)
	if portfolio.IsErrorText(metricsText) {
		metricsText = ""
	}
	if portfolio.IsErrorText(fundingText) {
		fundingText = ""
	}
	if metricsText == "" && fundingText == "" {
		return ""
	}
	return fmt.Sprintf(`Extract structured metrics from the research below.

Output ONLY this JSON object, with values filled in from the text (use null for anything not stated):

{
  "employee_count": <integer or null>,
  "founded_year": <integer or null>,
  "headquarters": <string or null>,
  "total_funding_millions": <number in millions of dollars, or null>,
  "valuation_millions": <number in millions of dollars, or null>,
  "funding_stage": <string like "Series B", or null>,
  "market_size_billions": <number in billions of dollars, or null>,
  "top_competitors": <array of up to 5 company name strings, or null>
}

Money must be normalized: $1.2B total funding is 1200. Market size is in billions.

---
COMPANY METRICS:
%s

---
FUNDING HISTORY:
%s`, metricsText, fundingText)
}

// FeedsExtraction reports whether a section's text is an extraction input,
// so callers know when an updated section invalidates stored metrics.
func FeedsExtraction(id string) bool {
	switch id {
	case portfolio.SecCompanyMetrics, portfolio.SecFundingHistory, portfolio.SecCompetitiveLandscape:
		return true
	}
	return false
}

// Extract runs the two extraction phases over a completed portfolio. Phase 1
// asks the model for a JSON object over the metrics and funding sections;
// phase 2 fills any still-missing fields with fixed regexes against raw
// section text. Every accepted value passes the sanitizer. A nil Generator
// skips the provider call and runs the regex tier alone, which is how
// metrics are recomputed after a manual section edit.
func Extract(ctx context.Context, gen Generator, log *slog.Logger, p *portfolio.Portfolio) Metrics {
	m := Metrics{Provenance: make(map[string]Tier)}

	if gen != nil {
		if prompt := extractionPrompt(p); prompt != "" {
			resp, err := gen.Invoke(ctx, prompt, ExtractionSystemPrompt, quality.NoRetries())
			if err != nil {
				log.Warn("metrics extraction call failed, regex tier only", "error", err)
			} else if !m.applyJSON(resp) {
				log.Warn("metrics response not parseable as JSON, regex tier only")
			}
		}
	}

	m.fillFromSections(p)
	return m
}

func (m *Metrics) setInt(field string, v int, tier Tier, min, max int) {
	if v <= min || v >= max {
		return
	}
	val := v
	switch field {
	case FieldEmployeeCount:
		m.EmployeeCount = &val
	case FieldFoundedYear:
		m.FoundedYear = &val
	}
	m.Provenance[field] = tier
}

func (m *Metrics) setFloat(field string, v float64, tier Tier) {
	if v < 0 {
		return
	}
	val := v
	switch field {
	case FieldTotalFundingMillions:
		m.TotalFundingMillions = &val
	case FieldValuationMillions:
		m.ValuationMillions = &val
	case FieldMarketSizeBillions:
		m.MarketSizeBillions = &val
	}
	m.Provenance[field] = tier
}

func (m *Metrics) setString(field, v string, tier Tier) {
	clean, ok := SanitizeString(v)
	if !ok {
		return
	}
	switch field {
	case FieldHeadquarters:
		m.Headquarters = &clean
	case FieldFundingStage:
		m.FundingStage = &clean
	}
	m.Provenance[field] = tier
}

func (m *Metrics) setCompetitors(names []string, tier Tier) {
	var out []string
	for _, n := range names {
		if clean, ok := SanitizeString(n); ok {
			out = append(out, clean)
		}
		if len(out) == 5 {
			break
		}
	}
	if len(out) == 0 {
		return
	}
	m.TopCompetitors = out
	m.Provenance[FieldTopCompetitors] = tier
}
