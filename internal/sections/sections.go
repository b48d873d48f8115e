// Package sections finds named policy sections in raw document text. It is a
// display-only heuristic: its output never affects compliance scoring.
package sections

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxExcerptLength caps an excerpt, in characters.
const MaxExcerptLength = 500

// KeywordsOnly is the excerpt recorded when a section's words occur in the
// text but no header for it was found.
const KeywordsOnly = "Keywords found but no dedicated section"

// Names are the sections looked for, in report order.
var Names = []string{
	"Access Control",
	"Data Protection",
	"Incident Response",
	"Authentication",
	"Audit and Logging",
	"Encryption",
	"Backup and Recovery",
	"Compliance",
}

// Section is one named section and what was extracted for it.
type Section struct {
	Name    string `json:"name" yaml:"name"`
	Excerpt string `json:"excerpt" yaml:"excerpt"`
}

// Sections is the extraction result, ordered like Names.
type Sections []Section

// Found returns the names of sections with a non-empty excerpt.
func (s Sections) Found() []string {
	found := make([]string, 0, len(s))
	for _, sec := range s {
		if sec.Excerpt != "" {
			found = append(found, sec.Name)
		}
	}
	return found
}

// Get returns the excerpt for name.
func (s Sections) Get(name string) (string, bool) {
	for _, sec := range s {
		if sec.Name == name {
			return sec.Excerpt, true
		}
	}
	return "", false
}

type matcher struct {
	name   string
	header *regexp.Regexp
	words  []string
}

var matchers = buildMatchers(Names)

func buildMatchers(names []string) []matcher {
	title := cases.Title(language.English)
	out := make([]matcher, 0, len(names))
	for _, name := range names {
		variants := []string{
			regexp.QuoteMeta(title.String(name)),
			regexp.QuoteMeta(strings.ToLower(name)),
			regexp.QuoteMeta(strings.ToUpper(name)),
		}
		header := regexp.MustCompile(`(?i)(?:` + strings.Join(variants, "|") + `)[:\s]*`)
		out = append(out, matcher{
			name:   name,
			header: header,
			words:  strings.Fields(strings.ToLower(name)),
		})
	}
	return out
}

// Extract scans text for every section in Names. A header match captures the
// text after the header up to the next blank line or the end of the text.
// Without a header, the KeywordsOnly sentinel is recorded when any word of the
// section name appears anywhere in the text.
func Extract(text string) Sections {
	lower := strings.ToLower(text)
	result := make(Sections, 0, len(matchers))

	for _, m := range matchers {
		sec := Section{Name: m.name}

		if loc := m.header.FindStringIndex(text); loc != nil {
			sec.Excerpt = truncate(untilBlankLine(text[loc[1]:]), MaxExcerptLength)
		} else {
			for _, w := range m.words {
				if strings.Contains(lower, w) {
					sec.Excerpt = KeywordsOnly
					break
				}
			}
		}

		result = append(result, sec)
	}
	return result
}

func untilBlankLine(s string) string {
	if i := strings.Index(s, "\n\n"); i >= 0 {
		return s[:i]
	}
	return s
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
