package portfolio

import (
	"strings"
	"unicode/utf8"
)

// Inputs are the top-level entity fields interpolated into every prompt.
type Inputs struct {
	CompanyName string `json:"company_name"`
	CompanyURL  string `json:"company_url"`
	RoleTitle   string `json:"role_title"`
}

// NotAvailable is substituted when a producer embeds a section that has not
// been generated yet.
const NotAvailable = "Section not available"

const errorPrefix = "[Error: "

// ErrorText renders a hard failure into a section slot.
func ErrorText(err error) string {
	return errorPrefix + err.Error() + "]"
}

// IsErrorText reports whether a section slot holds an error marker rather
// than generated content.
func IsErrorText(s string) bool {
	return strings.HasPrefix(s, errorPrefix)
}

// Portfolio maps section ids to their current text. Single writer per run;
// last write wins per key.
type Portfolio struct {
	Inputs   Inputs
	sections map[string]string
}

func New(in Inputs) *Portfolio {
	return &Portfolio{
		Inputs:   in,
		sections: make(map[string]string, len(Catalog)),
	}
}

// Get returns the section's current text and whether it is set.
func (p *Portfolio) Get(id string) (string, bool) {
	text, ok := p.sections[id]
	return text, ok
}

// Set replaces the section's text (full replace).
func (p *Portfolio) Set(id, text string) {
	p.sections[id] = text
}

// GetOr returns the section text, or fallback when the section is unset or
// holds an error marker.
func (p *Portfolio) GetOr(id, fallback string) string {
	text, ok := p.sections[id]
	if !ok || text == "" || IsErrorText(text) {
		return fallback
	}
	return text
}

// Sections returns a copy of the section map.
func (p *Portfolio) Sections() map[string]string {
	out := make(map[string]string, len(p.sections))
	for k, v := range p.sections {
		out[k] = v
	}
	return out
}

// Progress counts sections holding non-empty, non-error text.
func (p *Portfolio) Progress() int {
	n := 0
	for _, text := range p.sections {
		if text != "" && !IsErrorText(text) {
			n++
		}
	}
	return n
}

// Excerpt truncates text to at most n bytes, for embedding prior sections in
// prompts without exceeding practical prompt sizes. The cut backs up to a
// rune boundary so the excerpt is always valid UTF-8.
func Excerpt(text string, n int) string {
	if n <= 0 || len(text) <= n {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n]
}
