package metrics

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aperturesearch/portfolio/internal/portfolio"
)

// jsonPayload mirrors the documented key set. Pointers so that null and
// absent both come through as nil.
type jsonPayload struct {
	EmployeeCount        *int     `json:"employee_count"`
	FoundedYear          *int     `json:"founded_year"`
	Headquarters         *string  `json:"headquarters"`
	TotalFundingMillions *float64 `json:"total_funding_millions"`
	ValuationMillions    *float64 `json:"valuation_millions"`
	FundingStage         *string  `json:"funding_stage"`
	MarketSizeBillions   *float64 `json:"market_size_billions"`
	TopCompetitors       []string `json:"top_competitors"`
}

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// recoverJSON parses increasingly leniently: the whole text, then the first
// fenced block, then whatever sits between the first { and the last }.
func recoverJSON(text string) (jsonPayload, bool) {
	candidates := []string{strings.TrimSpace(text)}
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, m[1])
	}
	if open := strings.Index(text, "{"); open >= 0 {
		if close := strings.LastIndex(text, "}"); close > open {
			candidates = append(candidates, text[open:close+1])
		}
	}
	for _, c := range candidates {
		var p jsonPayload
		if err := json.Unmarshal([]byte(c), &p); err == nil {
			return p, true
		}
	}
	return jsonPayload{}, false
}

// applyJSON merges a model JSON response into m. Returns false when no
// candidate parsed at all.
func (m *Metrics) applyJSON(text string) bool {
	p, ok := recoverJSON(text)
	if !ok {
		return false
	}
	thisYear := time.Now().Year()
	if p.EmployeeCount != nil {
		m.setInt(FieldEmployeeCount, *p.EmployeeCount, TierJSON, 0, 10_000_000)
	}
	if p.FoundedYear != nil {
		m.setInt(FieldFoundedYear, *p.FoundedYear, TierJSON, 1899, thisYear+1)
	}
	if p.Headquarters != nil {
		m.setString(FieldHeadquarters, *p.Headquarters, TierJSON)
	}
	if p.TotalFundingMillions != nil {
		m.setFloat(FieldTotalFundingMillions, *p.TotalFundingMillions, TierJSON)
	}
	if p.ValuationMillions != nil {
		m.setFloat(FieldValuationMillions, *p.ValuationMillions, TierJSON)
	}
	if p.FundingStage != nil {
		m.setString(FieldFundingStage, *p.FundingStage, TierJSON)
	}
	if p.MarketSizeBillions != nil {
		m.setFloat(FieldMarketSizeBillions, *p.MarketSizeBillions, TierJSON)
	}
	if len(p.TopCompetitors) > 0 {
		m.setCompetitors(p.TopCompetitors, TierJSON)
	}
	return true
}

var (
	employeesRe    = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})*)\s*employees`)
	foundedRe      = regexp.MustCompile(`(?i)founded\s*(?:in\s*)?(\d{4})`)
	headquartersRe = regexp.MustCompile(`(?i)(?:headquarters?|hq)[:\s]+([^|\n]+)`)
	totalFundingRe = regexp.MustCompile(`(?i)total\s*(?:raised|funding)?[:\s]*\$?([\d.]+)\s*(million|billion|thousand|[kmb])`)
	stageRe        = regexp.MustCompile(`(?i)pre-seed|seed|series\s*[a-f]|growth|late[- ]stage`)
	directBlockRe  = regexp.MustCompile(`(?i)direct\s*competitors?[^:]*:?\s*([^\n]*(?:\n[^*\n][^\n]*)*)`)
	listedNameRe   = regexp.MustCompile(`\d+\.\s*\*?\*?([A-Z][A-Za-z0-9\s&.-]+)`)
)

// stageOrder ranks funding stages so a scan resolves to the latest one
// mentioned, not the first.
var stageOrder = []string{
	"pre-seed", "seed", "series a", "series b", "series c",
	"series d", "series e", "series f", "growth", "late stage",
}

func stageRank(stage string) int {
	s := strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(stage, "-", " ")), " "))
	if s == "pre seed" {
		s = "pre-seed"
	}
	for i, o := range stageOrder {
		if strings.Contains(s, o) {
			return i
		}
	}
	return -1
}

// fillFromSections is the regex tier: each still-unset field gets one fixed
// pattern against the section that usually states it.
func (m *Metrics) fillFromSections(p *portfolio.Portfolio) {
	metricsText := p.GetOr(portfolio.SecCompanyMetrics, "")
	fundingText := p.GetOr(portfolio.SecFundingHistory, "")
	competitorsText := p.GetOr(portfolio.SecCompetitiveLandscape, "")
	thisYear := time.Now().Year()

	if m.EmployeeCount == nil && metricsText != "" {
		if g := employeesRe.FindStringSubmatch(metricsText); g != nil {
			if n, err := strconv.Atoi(strings.ReplaceAll(g[1], ",", "")); err == nil {
				m.setInt(FieldEmployeeCount, n, TierRegex, 0, 10_000_000)
			}
		}
	}
	if m.FoundedYear == nil && metricsText != "" {
		if g := foundedRe.FindStringSubmatch(metricsText); g != nil {
			if y, err := strconv.Atoi(g[1]); err == nil {
				m.setInt(FieldFoundedYear, y, TierRegex, 1899, thisYear+1)
			}
		}
	}
	if m.Headquarters == nil && metricsText != "" {
		if g := headquartersRe.FindStringSubmatch(metricsText); g != nil {
			m.setString(FieldHeadquarters, strings.TrimSpace(g[1]), TierRegex)
		}
	}
	if m.TotalFundingMillions == nil && fundingText != "" {
		if g := totalFundingRe.FindStringSubmatch(fundingText); g != nil {
			if amount, err := strconv.ParseFloat(g[1], 64); err == nil {
				switch strings.ToLower(g[2]) {
				case "billion", "b":
					amount *= 1000
				case "thousand", "k":
					amount /= 1000
				}
				m.setFloat(FieldTotalFundingMillions, amount, TierRegex)
			}
		}
	}
	if m.FundingStage == nil && fundingText != "" {
		best, bestRank := "", -1
		for _, hit := range stageRe.FindAllString(fundingText, -1) {
			if r := stageRank(hit); r > bestRank {
				bestRank, best = r, hit
			}
		}
		if best != "" {
			m.setString(FieldFundingStage, best, TierRegex)
		}
	}
	if len(m.TopCompetitors) == 0 && competitorsText != "" {
		if g := directBlockRe.FindStringSubmatch(competitorsText); g != nil {
			var names []string
			for _, item := range listedNameRe.FindAllStringSubmatch(g[1], -1) {
				names = append(names, strings.TrimSpace(item[1]))
			}
			m.setCompetitors(names, TierRegex)
		}
	}
}
