package sources

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/launchradar/launchradar/internal/model"
)

const indieHackersBaseURL = "https://www.indiehackers.com"

// Posts announcing a launch rather than asking a question or sharing a
// milestone. Kept loose on purpose; the analysis stage filters further.
var launchPostRe = regexp.MustCompile(`(?i)launched|building|made|created|released|introducing`)

// IndieHackers discovers launch announcements from the community feed.
type IndieHackers struct {
	settings settings
}

func NewIndieHackers(opts ...Option) *IndieHackers {
	return &IndieHackers{settings: newSettings(indieHackersBaseURL, opts)}
}

func (i *IndieHackers) Source() model.Source { return model.SourceIndieHackers }

// Discover collects /post/ links whose title reads like a launch
// announcement, deduplicated by href within the pass.
func (i *IndieHackers) Discover(ctx context.Context, limit int) ([]model.UnifiedProduct, error) {
	doc, err := i.settings.fetchDocument(ctx, i.settings.baseURL)
	if err != nil {
		return nil, eris.Wrap(err, "indiehackers: discover")
	}

	var (
		products []model.UnifiedProduct
		seen     = map[string]struct{}{}
	)
	doc.Find(`a[href*="/post/"]`).EachWithBreak(func(_ int, node *goquery.Selection) bool {
		title := strings.TrimSpace(node.Text())
		if title == "" || !launchPostRe.MatchString(title) {
			return true
		}
		href, _ := node.Attr("href")
		if href == "" {
			return true
		}
		if _, ok := seen[href]; ok {
			return true
		}
		seen[href] = struct{}{}

		pageURL := i.settings.absoluteURL(href)
		products = append(products, model.UnifiedProduct{
			Name:      title,
			URL:       pageURL,
			SourceURL: pageURL,
			Source:    model.SourceIndieHackers,
		})
		return limit <= 0 || len(products) < limit
	})
	return products, nil
}
