// Package quality classifies generation responses as refusals or low-quality
// output. Both classifiers are pure functions over fixed pattern tables; the
// tables are data so tests can substitute smaller ones.
package quality

import (
	"regexp"
	"strings"
)

// RefusalPhrases are checked case-insensitively anywhere in a response. The
// set covers hedging language, not just explicit refusals: a search-capable
// model disclaiming real-time access or citing a training cutoff has refused
// to do its job.
var RefusalPhrases = []string{
	"I cannot access",
	"I don't have access",
	"I cannot browse",
	"I'm unable to access",
	"I cannot search",
	"real-time web content",
	"I cannot verify",
	"I don't have the ability",
	"I'm not able to browse",
	"cannot access LinkedIn",
	"cannot access real-time",
	"my training data",
	"my knowledge cutoff",
	"I cannot directly access",
	"I cannot look up",
	"I'm unable to search",
	"beyond my capabilities",
	"I cannot retrieve",
	"I appreciate the detailed request",
	"I need to be transparent",
}

// LowQualityPatterns are placeholder markers counted across the whole
// response. A response with more markers than the configured threshold failed
// to find real data.
var LowQualityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)TBD`),
	regexp.MustCompile(`(?i)\[TBD\]`),
	regexp.MustCompile(`(?i)Not Found`),
	regexp.MustCompile(`(?i)Not Disclosed`),
	regexp.MustCompile(`(?i)Unable to find`),
	regexp.MustCompile(`(?i)Could not locate`),
	regexp.MustCompile(`(?i)No information available`),
}

// Config is the per-call retry/quality policy.
type Config struct {
	MaxRetries        int
	RetryOnRefusal    bool
	RetryOnLowQuality bool
	QualityThreshold  int // marker occurrences tolerated before a retry
}

// DefaultConfig matches the standard research-section policy.
func DefaultConfig() Config {
	return Config{
		MaxRetries:        2,
		RetryOnRefusal:    true,
		RetryOnLowQuality: true,
		QualityThreshold:  3,
	}
}

// NoRetries disables both soft-failure retries. Used for validation and
// synthesis calls, where markers may legitimately appear when summarizing
// prior "Not Found" entries.
func NoRetries() Config {
	return Config{
		MaxRetries:        1,
		RetryOnRefusal:    false,
		RetryOnLowQuality: false,
	}
}

// Classification is the outcome of running both classifiers on one response.
type Classification struct {
	Refused     bool
	LowQuality  bool
	MarkerCount int
}

// Classify runs both classifiers with the default tables.
func Classify(text string, threshold int) Classification {
	return ClassifyWith(text, RefusalPhrases, LowQualityPatterns, threshold)
}

// ClassifyWith runs both classifiers against explicit tables.
func ClassifyWith(text string, phrases []string, patterns []*regexp.Regexp, threshold int) Classification {
	count := MarkerCount(text, patterns)
	return Classification{
		Refused:     IsRefusal(text, phrases),
		LowQuality:  count > threshold,
		MarkerCount: count,
	}
}

// IsRefusal reports whether text contains any phrase from the table,
// case-insensitively.
func IsRefusal(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range phrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// MarkerCount sums non-overlapping matches of each pattern across text.
func MarkerCount(text string, patterns []*regexp.Regexp) int {
	total := 0
	for _, pattern := range patterns {
		total += len(pattern.FindAllStringIndex(text, -1))
	}
	return total
}
