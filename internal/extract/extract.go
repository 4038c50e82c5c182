package extract

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/launchradar/launchradar/internal/model"
)

// Extract resolves a ProductRecord from a parsed product page using the
// given rule set. Returns nil if no strategy can produce a name; every
// other field degrades to its zero value. No error ever crosses this
// boundary: broken markup simply yields empty fields.
func Extract(doc *goquery.Document, rules RuleSet, sourceURL string) *model.ProductRecord {
	if doc == nil {
		return nil
	}

	name := resolveFirst(doc, rules.Name)
	if name == "" {
		return nil
	}

	rec := &model.ProductRecord{
		Name:         name,
		Tagline:      resolveFirst(doc, rules.Tagline),
		Description:  resolveFirst(doc, rules.Description),
		CanonicalURL: absoluteURL(resolveFirst(doc, rules.CanonicalURL), rules.BaseURL),
		FeaturedDate: resolveFirst(doc, rules.FeaturedDate),
		SourceURL:    sourceURL,
		ScrapedAt:    time.Now().UTC(),
	}

	rec.Topics = collectTopics(doc, rules.Topics)
	rec.ScreenshotURLs = collectScreenshots(doc, rules.Screenshots, rules.BaseURL)

	return rec
}

// collectTopics gathers topic text from every matching element, exact-match
// deduplicated with insertion order preserved.
func collectTopics(doc *goquery.Document, rules TopicRules) []string {
	if rules.Selector == "" {
		return nil
	}

	var topics []string
	seen := map[string]struct{}{}
	doc.Find(rules.Selector).Each(func(_ int, node *goquery.Selection) {
		topic := strings.TrimSpace(node.Text())
		if topic == "" {
			return
		}
		if _, ok := seen[topic]; ok {
			return
		}
		seen[topic] = struct{}{}
		topics = append(topics, topic)
	})
	return topics
}

// collectScreenshots gathers image URLs matching any of the configured
// substrings, in document order.
func collectScreenshots(doc *goquery.Document, rules ScreenshotRules, baseURL string) []string {
	if rules.Selector == "" {
		return nil
	}

	attr := rules.Attr
	if attr == "" {
		attr = "src"
	}

	var urls []string
	doc.Find(rules.Selector).Each(func(_ int, node *goquery.Selection) {
		src, ok := node.Attr(attr)
		if !ok || src == "" {
			return
		}
		if len(rules.Contains) > 0 && !containsAny(src, rules.Contains) {
			return
		}
		urls = append(urls, absoluteURL(src, baseURL))
	})
	return urls
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// absoluteURL prefixes site-relative paths with the rule set's base URL.
func absoluteURL(href, baseURL string) string {
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if baseURL == "" {
		return href
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(href, "/")
}
