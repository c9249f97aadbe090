package domain

import (
	"regexp"
	"strings"
)

// KeywordSet pairs a tag with the keywords that vote for it. Sets are
// evaluated in slice order, so position encodes priority.
type KeywordSet struct {
	Tag   string
	Words []string
}

// AreaAlias maps an alternative spelling or abbreviation to its canonical
// area name.
type AreaAlias struct {
	Area  string
	Alias string
}

// AreaTable holds the known area names and their aliases. Names are checked
// before aliases, and both in slice order, so the first literal found in the
// text wins.
type AreaTable struct {
	Names   []string
	Aliases []AreaAlias
}

// locationPatterns catch area mentions that keyword tables miss:
// "in ikeja", "yaba area", "agege road". The captured token is verified
// against the known area list before it is trusted.
var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:in|at|from|near|around)\s+([a-z][a-z-]*)`),
	regexp.MustCompile(`\b([a-z][a-z-]*)\s+(?:area|region|district)`),
	regexp.MustCompile(`\b([a-z][a-z-]*)\s+(?:road|street|avenue)`),
}

// Classifier extracts area, category, language, and security relevance from
// raw text by keyword and alias matching. All methods are pure: the same
// text always yields the same result.
type Classifier struct {
	areas      AreaTable
	categories []KeywordSet
	dialects   []KeywordSet
	primary    string
	relevance  []KeywordSet
}

// NewClassifier builds a classifier from configuration tables. Category sets
// are evaluated first-match-wins in the given order; dialects compete by hit
// count with ties falling back to the primary language.
func NewClassifier(areas AreaTable, categories, dialects, relevance []KeywordSet, primaryLanguage string) *Classifier {
	return &Classifier{
		areas:      areas,
		categories: categories,
		dialects:   dialects,
		primary:    primaryLanguage,
		relevance:  relevance,
	}
}

// ResolveArea extracts a known area name from text. Exact area names take
// precedence over aliases, which take precedence over preposition and
// suffix patterns. Returns AreaUnknown when nothing matches.
func (c *Classifier) ResolveArea(text string) string {
	lower := strings.ToLower(text)

	for _, area := range c.areas.Names {
		if strings.Contains(lower, strings.ToLower(area)) {
			return area
		}
	}

	for _, alias := range c.areas.Aliases {
		if strings.Contains(lower, strings.ToLower(alias.Alias)) {
			return alias.Area
		}
	}

	for _, pattern := range locationPatterns {
		for _, match := range pattern.FindAllStringSubmatch(lower, -1) {
			token := match[1]
			for _, area := range c.areas.Names {
				areaLower := strings.ToLower(area)
				if strings.Contains(areaLower, token) || strings.HasPrefix(areaLower, token) {
					return area
				}
			}
		}
	}

	return AreaUnknown
}

// ClassifyCategory assigns the first category whose keyword set has at least
// one hit, falling back to CategoryGeneral.
func (c *Classifier) ClassifyCategory(text string) string {
	lower := strings.ToLower(text)

	for _, set := range c.categories {
		for _, word := range set.Words {
			if strings.Contains(lower, word) {
				return set.Tag
			}
		}
	}

	return CategoryGeneral
}

// DetectLanguage counts dialect keyword hits and returns the dialect with
// the strictly highest count. Ties and zero hits resolve to the primary
// language.
func (c *Classifier) DetectLanguage(text string) string {
	lower := strings.ToLower(text)

	best := c.primary
	bestCount := 0
	tied := false
	for _, set := range c.dialects {
		count := 0
		for _, word := range set.Words {
			if strings.Contains(lower, word) {
				count++
			}
		}
		if count > bestCount {
			best = set.Tag
			bestCount = count
			tied = false
		} else if count == bestCount && count > 0 {
			tied = true
		}
	}

	if bestCount == 0 || tied {
		return c.primary
	}
	return best
}

// SecurityRelevant reports whether text is about security conditions.
// The bar is deliberately low: two keyword hits across the whole relevance
// table, trading precision for recall.
func (c *Classifier) SecurityRelevant(text string) bool {
	lower := strings.ToLower(text)

	total := 0
	for _, set := range c.relevance {
		for _, word := range set.Words {
			if strings.Contains(lower, word) {
				total++
				if total >= 2 {
					return true
				}
			}
		}
	}

	return false
}
