// Package extract pulls normalized product fields out of parsed listing
// pages using per-source declarative rule tables.
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StrategyKind names one extraction technique.
type StrategyKind string

const (
	// KindText takes the trimmed text of the first matching element.
	KindText StrategyKind = "text"
	// KindAttr takes an attribute value of the first matching element.
	KindAttr StrategyKind = "attr"
	// KindLongText takes the first matching element whose text is at least
	// MinLength characters, skipping navigation and footer noise.
	KindLongText StrategyKind = "long_text"
	// KindPattern applies a regexp to each matching element's text and takes
	// the first capture group of the first match.
	KindPattern StrategyKind = "pattern"
)

// Strategy is one ordered step for resolving a field. Strategies run in
// order; the first non-empty result wins.
type Strategy struct {
	Kind        StrategyKind `yaml:"kind"`
	Selector    string       `yaml:"selector"`
	Attr        string       `yaml:"attr,omitempty"`
	Contains    string       `yaml:"contains,omitempty"`     // element text must contain this
	Pattern     string       `yaml:"pattern,omitempty"`      // regexp for KindPattern
	MinLength   int          `yaml:"min_length,omitempty"`   // for KindLongText
	StripPrefix string       `yaml:"strip_prefix,omitempty"` // removed from the result
}

// TopicRules accumulates topic strings from every matching element,
// deduplicated by exact text, insertion order preserved.
type TopicRules struct {
	Selector string `yaml:"selector"`
}

// ScreenshotRules collects image URLs whose attribute value contains any of
// the given substrings.
type ScreenshotRules struct {
	Selector string   `yaml:"selector"`
	Attr     string   `yaml:"attr"`
	Contains []string `yaml:"contains,omitempty"`
}

// RuleSet is the full declarative extraction table for one origin's
// product detail pages.
type RuleSet struct {
	BaseURL      string          `yaml:"base_url"`
	Name         []Strategy      `yaml:"name"`
	Tagline      []Strategy      `yaml:"tagline,omitempty"`
	Description  []Strategy      `yaml:"description,omitempty"`
	CanonicalURL []Strategy      `yaml:"canonical_url,omitempty"`
	FeaturedDate []Strategy      `yaml:"featured_date,omitempty"`
	Topics       TopicRules      `yaml:"topics,omitempty"`
	Screenshots  ScreenshotRules `yaml:"screenshots,omitempty"`
}

// apply runs a single strategy against the document. Malformed selectors or
// missing nodes yield "" rather than an error.
func (s Strategy) apply(doc *goquery.Document) string {
	sel := doc.Find(s.Selector)
	if s.Contains != "" {
		sel = sel.FilterFunction(func(_ int, node *goquery.Selection) bool {
			return strings.Contains(node.Text(), s.Contains)
		})
	}

	var out string
	switch s.Kind {
	case KindText:
		out = strings.TrimSpace(sel.First().Text())
	case KindAttr:
		out, _ = sel.First().Attr(s.Attr)
		out = strings.TrimSpace(out)
	case KindLongText:
		min := s.MinLength
		if min <= 0 {
			min = 100
		}
		sel.EachWithBreak(func(_ int, node *goquery.Selection) bool {
			text := strings.TrimSpace(node.Text())
			if len(text) >= min {
				out = text
				return false
			}
			return true
		})
	case KindPattern:
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return ""
		}
		sel.EachWithBreak(func(_ int, node *goquery.Selection) bool {
			m := re.FindStringSubmatch(node.Text())
			if len(m) > 1 {
				out = strings.TrimSpace(m[1])
				return false
			}
			if len(m) == 1 {
				out = strings.TrimSpace(m[0])
				return false
			}
			return true
		})
	}

	if s.StripPrefix != "" {
		out = strings.TrimSpace(strings.TrimPrefix(out, s.StripPrefix))
	}
	return out
}

// resolveFirst applies strategies in order and keeps the first non-empty hit.
func resolveFirst(doc *goquery.Document, strategies []Strategy) string {
	for _, s := range strategies {
		if v := s.apply(doc); v != "" {
			return v
		}
	}
	return ""
}
