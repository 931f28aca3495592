package crm

import (
	"regexp"
	"strconv"
	"strings"
)

// fundingStageOptions maps free-form stage text to the exact select option
// titles configured in Attio. Unknown stages pass through unchanged.
var fundingStageOptions = map[string]string{
	"pre-seed":          "Pre-Seed",
	"preseed":           "Pre-Seed",
	"seed":              "Seed",
	"series a":          "Series A",
	"a":                 "Series A",
	"series b":          "Series B",
	"b":                 "Series B",
	"series c":          "Series C",
	"c":                 "Series C",
	"series d":          "Series D+",
	"series d+":         "Series D+",
	"d":                 "Series D+",
	"growth":            "Growth/Late Stage",
	"late stage":        "Growth/Late Stage",
	"growth/late stage": "Growth/Late Stage",
	"public":            "Public",
	"ipo":               "Public",
	"bootstrapped":      "Bootstrapped",
	"bootstrap":         "Bootstrapped",
}

// MapFundingStage resolves a stage string to its Attio option title.
func MapFundingStage(stage string) string {
	if option, ok := fundingStageOptions[strings.ToLower(strings.TrimSpace(stage))]; ok {
		return option
	}
	return stage
}

var currencyRe = regexp.MustCompile(`(?i)^([\d.]+)\s*([kmb])?$`)

// ParseCurrency converts strings like "$43M", "1.2b", or "500,000" to a
// dollar amount. Returns false when the string holds no parseable number.
func ParseCurrency(value string) (float64, bool) {
	cleaned := strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(value))
	if cleaned == "" {
		return 0, false
	}
	if m := currencyRe.FindStringSubmatch(cleaned); m != nil {
		num, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		switch strings.ToLower(m[2]) {
		case "k":
			num *= 1_000
		case "m":
			num *= 1_000_000
		case "b":
			num *= 1_000_000_000
		}
		return num, true
	}
	num, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return num, true
}
