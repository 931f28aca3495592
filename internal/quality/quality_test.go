package quality

import (
	"regexp"
	"testing"
)

func TestIsRefusalMatchesAnyCasing(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"exact phrase", "Unfortunately, I cannot access external websites.", true},
		{"upper casing", "I CANNOT BROWSE the internet for you.", true},
		{"mixed casing", "this is beyond My Knowledge Cutoff of April.", true},
		{"training data hedge", "Based on my training data, the company was founded in 2019.", true},
		{"clean answer", "Acme raised a $30M Series B led by Example Ventures in 2023.", false},
		{"empty", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRefusal(tc.text, RefusalPhrases); got != tc.want {
				t.Errorf("IsRefusal(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestIsRefusalAllDefaultPhrases(t *testing.T) {
	for _, phrase := range RefusalPhrases {
		if !IsRefusal("prefix "+phrase+" suffix", RefusalPhrases) {
			t.Errorf("phrase %q not detected", phrase)
		}
	}
}

func TestMarkerCountSumsAcrossPatterns(t *testing.T) {
	text := "Revenue: TBD. Valuation: Not Disclosed. CFO: not found. CTO: NOT FOUND."
	// "TBD" x1, "Not Found" x2, "Not Disclosed" x1.
	if got := MarkerCount(text, LowQualityPatterns); got != 4 {
		t.Errorf("MarkerCount = %d, want 4", got)
	}
}

func TestMarkerCountEmptyText(t *testing.T) {
	if got := MarkerCount("", LowQualityPatterns); got != 0 {
		t.Errorf("MarkerCount = %d, want 0", got)
	}
}

func TestClassifyThresholdBoundary(t *testing.T) {
	text := "A: TBD. B: TBD. C: TBD."
	tests := []struct {
		threshold int
		lowQual   bool
	}{
		{2, true},  // 3 > 2
		{3, false}, // 3 is tolerated at threshold 3
		{4, false},
	}
	for _, tc := range tests {
		c := Classify(text, tc.threshold)
		if c.MarkerCount != 3 {
			t.Fatalf("threshold %d: MarkerCount = %d, want 3", tc.threshold, c.MarkerCount)
		}
		if c.LowQuality != tc.lowQual {
			t.Errorf("threshold %d: LowQuality = %v, want %v", tc.threshold, c.LowQuality, tc.lowQual)
		}
	}
}

func TestClassifyWithSubstituteTables(t *testing.T) {
	phrases := []string{"no can do"}
	patterns := []*regexp.Regexp{regexp.MustCompile(`(?i)placeholder`)}

	c := ClassifyWith("NO CAN DO: placeholder placeholder", phrases, patterns, 1)
	if !c.Refused {
		t.Error("expected refusal with substitute table")
	}
	if c.MarkerCount != 2 {
		t.Errorf("MarkerCount = %d, want 2", c.MarkerCount)
	}
	if !c.LowQuality {
		t.Error("expected low quality: 2 > 1")
	}

	// Default tables must not fire on these strings.
	d := Classify("NO CAN DO: placeholder placeholder", 1)
	if d.Refused || d.LowQuality {
		t.Error("default tables should not match substitute-table fixtures")
	}
}

func TestNoRetriesConfig(t *testing.T) {
	cfg := NoRetries()
	if cfg.RetryOnRefusal || cfg.RetryOnLowQuality {
		t.Error("NoRetries must disable both soft-failure retries")
	}
}
