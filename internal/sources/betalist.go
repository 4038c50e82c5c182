package sources

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/launchradar/launchradar/internal/extract"
	"github.com/launchradar/launchradar/internal/model"
)

const betalistBaseURL = "https://betalist.com"

// Betalist discovers startups featured on betalist.com and can scrape a
// single startup's detail page into a full ProductRecord.
type Betalist struct {
	settings settings
	rules    extract.RuleSet
}

// NewBetalist builds a Betalist adapter with the embedded extraction rules.
func NewBetalist(opts ...Option) *Betalist {
	s := newSettings(betalistBaseURL, opts)
	rules := extract.MustLoadRules()[model.SourceBetalist]
	rules.BaseURL = s.baseURL
	return &Betalist{settings: s, rules: rules}
}

func (b *Betalist) Source() model.Source { return model.SourceBetalist }

// Discover scrapes the front page for featured startup links. Each card
// links its startup at /startups/<slug>; navigation and visit redirects are
// skipped. Deduplicated by slug within the pass.
func (b *Betalist) Discover(ctx context.Context, limit int) ([]model.UnifiedProduct, error) {
	doc, err := b.settings.fetchDocument(ctx, b.settings.baseURL)
	if err != nil {
		return nil, eris.Wrap(err, "betalist: discover")
	}

	var (
		products []model.UnifiedProduct
		seen     = map[string]struct{}{}
	)
	doc.Find(`a[href*="/startups/"]`).EachWithBreak(func(_ int, node *goquery.Selection) bool {
		href, _ := node.Attr("href")
		slug := betalistSlug(href)
		if slug == "" || strings.HasSuffix(href, "/visit") {
			return true
		}
		if _, ok := seen[slug]; ok {
			return true
		}
		name := strings.TrimSpace(node.Text())
		if name == "" {
			return true
		}
		seen[slug] = struct{}{}
		pageURL := b.settings.absoluteURL(href)
		products = append(products, model.UnifiedProduct{
			Name:      name,
			URL:       pageURL,
			SourceURL: pageURL,
			Source:    model.SourceBetalist,
		})
		return limit <= 0 || len(products) < limit
	})
	return products, nil
}

// FetchProduct scrapes one startup detail page.
func (b *Betalist) FetchProduct(ctx context.Context, pageURL string) (*model.ProductRecord, error) {
	doc, err := b.settings.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, eris.Wrap(err, "betalist: fetch product")
	}
	rec := extract.Extract(doc, b.rules, pageURL)
	if rec == nil {
		return nil, eris.Errorf("betalist: no product found at %s", pageURL)
	}
	return rec, nil
}

// betalistSlug pulls the startup identifier out of an /startups/ href.
func betalistSlug(href string) string {
	const marker = "/startups/"
	i := strings.Index(href, marker)
	if i < 0 {
		return ""
	}
	slug := href[i+len(marker):]
	if j := strings.IndexAny(slug, "/?#"); j >= 0 {
		slug = slug[:j]
	}
	return slug
}
