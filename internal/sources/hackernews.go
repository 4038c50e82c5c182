package sources

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/launchradar/launchradar/internal/model"
)

const hackerNewsBaseURL = "https://news.ycombinator.com"

var commentCountRe = regexp.MustCompile(`(\d+)\s+comment`)

// HackerNews discovers Show HN launches from the /show listing.
type HackerNews struct {
	settings settings
}

func NewHackerNews(opts ...Option) *HackerNews {
	return &HackerNews{settings: newSettings(hackerNewsBaseURL, opts)}
}

func (h *HackerNews) Source() model.Source { return model.SourceHackerNews }

// Discover walks the .athing rows on the Show page. Only "Show HN:" titles
// count as launches; the prefix is stripped from the product name. Author,
// age and comment count come from the subtext row that follows each story.
func (h *HackerNews) Discover(ctx context.Context, limit int) ([]model.UnifiedProduct, error) {
	doc, err := h.settings.fetchDocument(ctx, h.settings.baseURL+"/show")
	if err != nil {
		return nil, eris.Wrap(err, "hackernews: discover")
	}

	var (
		products []model.UnifiedProduct
		seen     = map[string]struct{}{}
	)
	doc.Find("tr.athing").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		link := row.Find(".titleline > a").First()
		title := strings.TrimSpace(link.Text())
		if !strings.HasPrefix(title, "Show HN:") {
			return true
		}
		name := strings.TrimSpace(strings.TrimPrefix(title, "Show HN:"))
		if name == "" {
			return true
		}

		itemID, _ := row.Attr("id")
		if itemID == "" {
			return true
		}
		if _, ok := seen[itemID]; ok {
			return true
		}
		seen[itemID] = struct{}{}

		href, _ := link.Attr("href")
		subtext := row.Next()
		meta := &model.PreviewMetadata{
			Author:  strings.TrimSpace(subtext.Find(".hnuser").First().Text()),
			TimeAgo: strings.TrimSpace(subtext.Find(".age").First().Text()),
		}
		subtext.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if m := commentCountRe.FindStringSubmatch(a.Text()); len(m) > 1 {
				meta.Comments, _ = strconv.Atoi(m[1])
				return false
			}
			return true
		})

		products = append(products, model.UnifiedProduct{
			Name:      name,
			URL:       h.settings.absoluteURL(href),
			SourceURL: h.settings.baseURL + "/item?id=" + itemID,
			Source:    model.SourceHackerNews,
			Metadata:  meta,
		})
		return limit <= 0 || len(products) < limit
	})
	return products, nil
}
