package portfolio

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown assembles the full document in reading order. Sections that were
// never generated or that failed are skipped rather than rendered as noise.
func (p *Portfolio) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Pitch Research & Portfolio: %s - %s\n\n", p.Inputs.CompanyName, p.Inputs.RoleTitle)
	for _, id := range ReadingOrder {
		text, ok := p.Get(id)
		if !ok || text == "" || IsErrorText(text) {
			continue
		}
		sec, _ := ByID(id)
		fmt.Fprintf(&sb, "## %s\n\n%s\n\n", sec.Label, strings.TrimSpace(text))
	}
	return sb.String()
}

var htmlRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// RenderHTML converts assembled markdown to HTML. The sections lean heavily
// on GFM tables, so the GFM extension is required for a usable preview.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := htmlRenderer.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}
