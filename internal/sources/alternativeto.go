package sources

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/launchradar/launchradar/internal/model"
)

const alternativeToBaseURL = "https://alternativeto.net"

// AlternativeTo discovers recently added software from the new-apps listing.
// Disabled by default in config; the site is aggressive about bot traffic.
type AlternativeTo struct {
	settings settings
}

func NewAlternativeTo(opts ...Option) *AlternativeTo {
	return &AlternativeTo{settings: newSettings(alternativeToBaseURL, opts)}
}

func (a *AlternativeTo) Source() model.Source { return model.SourceAlternativeTo }

// Discover walks the app cards on /software/new/. Card markup has shifted
// between site versions, so both item classes and both name selectors are
// tried.
func (a *AlternativeTo) Discover(ctx context.Context, limit int) ([]model.UnifiedProduct, error) {
	doc, err := a.settings.fetchDocument(ctx, a.settings.baseURL+"/software/new/")
	if err != nil {
		return nil, eris.Wrap(err, "alternativeto: discover")
	}

	var (
		products []model.UnifiedProduct
		seen     = map[string]struct{}{}
	)
	doc.Find(".app-item, .application-item").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		link := item.Find(".app-name a, h3 a").First()
		name := strings.TrimSpace(link.Text())
		if name == "" {
			return true
		}
		href, _ := link.Attr("href")
		if href == "" {
			return true
		}
		if _, ok := seen[href]; ok {
			return true
		}
		seen[href] = struct{}{}

		pageURL := a.settings.absoluteURL(href)
		products = append(products, model.UnifiedProduct{
			Name:      name,
			Tagline:   strings.TrimSpace(item.Find(".app-description, p").First().Text()),
			URL:       pageURL,
			SourceURL: pageURL,
			Source:    model.SourceAlternativeTo,
		})
		return limit <= 0 || len(products) < limit
	})
	return products, nil
}
