package model

import "time"

// Source identifies one of the supported listing platforms.
type Source string

const (
	SourceBetalist      Source = "betalist"
	SourceHackerNews    Source = "hackernews"
	SourceIndieHackers  Source = "indiehackers"
	SourceAlternativeTo Source = "alternativeto"
)

// KnownSources lists every supported origin in a stable order.
var KnownSources = []Source{
	SourceBetalist,
	SourceHackerNews,
	SourceIndieHackers,
	SourceAlternativeTo,
}

// Valid reports whether s is one of the known origins.
func (s Source) Valid() bool {
	switch s {
	case SourceBetalist, SourceHackerNews, SourceIndieHackers, SourceAlternativeTo:
		return true
	}
	return false
}

// ProductRecord is one discovered product, scraped from a listing page.
// Name is the only mandatory field; everything else degrades to its zero
// value rather than invalidating the record.
type ProductRecord struct {
	Name           string    `json:"name"`
	Tagline        string    `json:"tagline"`
	Description    string    `json:"description"`
	Topics         []string  `json:"topics"`
	CanonicalURL   string    `json:"website"`
	SourceURL      string    `json:"sourceUrl"`
	FeaturedDate   string    `json:"featuredDate"`
	ScreenshotURLs []string  `json:"screenshotUrls"`
	ScrapedAt      time.Time `json:"scrapedAt"`
}

// PreviewMetadata is the open bag of source-specific optional fields carried
// on gallery previews.
type PreviewMetadata struct {
	Author   string `json:"author,omitempty"`
	Comments int    `json:"comments,omitempty"`
	TimeAgo  string `json:"timeAgo,omitempty"`
	Revenue  string `json:"revenue,omitempty"`
	Likes    int    `json:"likes,omitempty"`
	Category string `json:"category,omitempty"`
}

// UnifiedProduct is the reduced cross-source record used for gallery display.
type UnifiedProduct struct {
	Name      string           `json:"name"`
	Tagline   string           `json:"tagline"`
	URL       string           `json:"url"`
	SourceURL string           `json:"sourceUrl"`
	Source    Source           `json:"source"`
	Metadata  *PreviewMetadata `json:"metadata,omitempty"`
}
