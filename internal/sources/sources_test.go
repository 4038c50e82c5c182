package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchradar/launchradar/internal/model"
	"github.com/launchradar/launchradar/internal/resilience"
)

func htmlServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// pad keeps fixture pages above the short-body threshold.
const pad = `<!-- ---------------------------------------------------------------------------- -->`

func TestBetalist_Discover(t *testing.T) {
	srv := htmlServer(t, map[string]string{
		"/": `<html><body>` + pad + `
<a href="/startups/flowbase">FlowBase</a>
<a href="/startups/flowbase/visit">Visit Site</a>
<a href="/startups/flowbase">FlowBase again</a>
<a href="/startups/acme">Acme Notes</a>
<a href="/startups/"> </a>
<a href="/startups/zeta">Zeta</a>
</body></html>`,
	})

	b := NewBetalist(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	products, err := b.Discover(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "FlowBase", products[0].Name)
	assert.Equal(t, srv.URL+"/startups/flowbase", products[0].SourceURL)
	assert.Equal(t, model.SourceBetalist, products[0].Source)
	assert.Equal(t, "Acme Notes", products[1].Name)
}

func TestBetalist_FetchProduct(t *testing.T) {
	srv := htmlServer(t, map[string]string{
		"/startups/flowbase": `<html><body>` + pad + `
<h1>FlowBase</h1>
<h2>CRM for freelancers</h2>
<p>FlowBase is a lightweight, intuitive SaaS platform designed to help freelancers and small teams organize their client work, projects, and tasks all in one place.</p>
<a href="/topics/saas">SaaS</a>
</body></html>`,
	})

	b := NewBetalist(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	rec, err := b.FetchProduct(context.Background(), srv.URL+"/startups/flowbase")
	require.NoError(t, err)

	assert.Equal(t, "FlowBase", rec.Name)
	assert.Equal(t, "CRM for freelancers", rec.Tagline)
	assert.Equal(t, []string{"SaaS"}, rec.Topics)
	assert.Equal(t, srv.URL+"/startups/flowbase", rec.SourceURL)
}

func TestBetalist_FetchProduct_NoName(t *testing.T) {
	srv := htmlServer(t, map[string]string{
		"/startups/ghost": `<html><body>` + pad + `<p>nothing here</p></body></html>`,
	})

	b := NewBetalist(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	_, err := b.FetchProduct(context.Background(), srv.URL+"/startups/ghost")
	assert.Error(t, err)
}

func TestHackerNews_Discover(t *testing.T) {
	srv := htmlServer(t, map[string]string{
		"/show": `<html><body><table>` + pad + `
<tr class="athing" id="41001">
  <td><span class="titleline"><a href="https://flowbase.app">Show HN: FlowBase – CRM for freelancers</a></span></td>
</tr>
<tr><td class="subtext"><a class="hnuser">alice</a> <span class="age">3 hours ago</span> | <a href="item?id=41001">42 comments</a></td></tr>
<tr class="athing" id="41002">
  <td><span class="titleline"><a href="https://example.com/blog">Why we rewrote our backend</a></span></td>
</tr>
<tr><td class="subtext"><a class="hnuser">bob</a></td></tr>
<tr class="athing" id="41003">
  <td><span class="titleline"><a href="item?id=41003">Show HN: Acme Notes</a></span></td>
</tr>
<tr><td class="subtext"><span class="age">1 day ago</span> | <a href="item?id=41003">discuss</a></td></tr>
</table></body></html>`,
	})

	h := NewHackerNews(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	products, err := h.Discover(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, products, 2)

	first := products[0]
	assert.Equal(t, "FlowBase – CRM for freelancers", first.Name)
	assert.Equal(t, "https://flowbase.app", first.URL)
	assert.Equal(t, srv.URL+"/item?id=41001", first.SourceURL)
	assert.Equal(t, model.SourceHackerNews, first.Source)
	require.NotNil(t, first.Metadata)
	assert.Equal(t, "alice", first.Metadata.Author)
	assert.Equal(t, "3 hours ago", first.Metadata.TimeAgo)
	assert.Equal(t, 42, first.Metadata.Comments)

	second := products[1]
	assert.Equal(t, "Acme Notes", second.Name)
	assert.Equal(t, srv.URL+"/item?id=41003", second.SourceURL)
	assert.Equal(t, 0, second.Metadata.Comments)
}

func TestHackerNews_Limit(t *testing.T) {
	srv := htmlServer(t, map[string]string{
		"/show": `<html><body><table>` + pad + `
<tr class="athing" id="1"><td><span class="titleline"><a href="https://a.example">Show HN: A</a></span></td></tr>
<tr><td class="subtext"></td></tr>
<tr class="athing" id="2"><td><span class="titleline"><a href="https://b.example">Show HN: B</a></span></td></tr>
<tr><td class="subtext"></td></tr>
</table></body></html>`,
	})

	h := NewHackerNews(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	products, err := h.Discover(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestIndieHackers_Discover(t *testing.T) {
	srv := htmlServer(t, map[string]string{
		"/": `<html><body>` + pad + `
<a href="/post/launched-my-crm-abc123">I launched my CRM for freelancers</a>
<a href="/post/how-do-you-price">How do you price your SaaS?</a>
<a href="/post/released-v2-def456">Released v2 of Acme Notes</a>
<a href="/post/launched-my-crm-abc123">I launched my CRM for freelancers</a>
</body></html>`,
	})

	i := NewIndieHackers(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	products, err := i.Discover(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "I launched my CRM for freelancers", products[0].Name)
	assert.Equal(t, srv.URL+"/post/launched-my-crm-abc123", products[0].SourceURL)
	assert.Equal(t, model.SourceIndieHackers, products[0].Source)
	assert.Equal(t, "Released v2 of Acme Notes", products[1].Name)
}

func TestAlternativeTo_Discover(t *testing.T) {
	srv := htmlServer(t, map[string]string{
		"/software/new/": `<html><body>` + pad + `
<div class="app-item">
  <div class="app-name"><a href="/software/flowbase/">FlowBase</a></div>
  <p class="app-description">CRM for freelancers</p>
</div>
<div class="application-item">
  <h3><a href="/software/acme-notes/">Acme Notes</a></h3>
  <p>Markdown notes that sync</p>
</div>
<div class="app-item"><div class="app-name"></div></div>
</body></html>`,
	})

	a := NewAlternativeTo(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	products, err := a.Discover(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "FlowBase", products[0].Name)
	assert.Equal(t, "CRM for freelancers", products[0].Tagline)
	assert.Equal(t, srv.URL+"/software/flowbase/", products[0].URL)
	assert.Equal(t, model.SourceAlternativeTo, products[0].Source)
}

func TestDiscover_FailsClosedOnServerError(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	b := NewBetalist(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()),
		WithRetry(resilience.RetryConfig{MaxAttempts: 2, InitialBackoff: time.Millisecond}))
	products, err := b.Discover(context.Background(), 5)
	assert.Error(t, err)
	assert.Empty(t, products)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "a 503 is transient and retried")
}

func TestDiscover_NoRetryOnNotFound(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	b := NewBetalist(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()),
		WithRetry(resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond}))
	_, err := b.Discover(context.Background(), 5)
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

type stubAdapter struct {
	source model.Source
	items  []model.UnifiedProduct
	err    error
	calls  int32
}

func (s *stubAdapter) Source() model.Source { return s.source }

func (s *stubAdapter) Discover(_ context.Context, _ int) ([]model.UnifiedProduct, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.items, s.err
}

func TestAggregator_IgnoresFailedSources(t *testing.T) {
	ok := &stubAdapter{
		source: model.SourceBetalist,
		items: []model.UnifiedProduct{
			{Name: "FlowBase", SourceURL: "https://betalist.com/startups/flowbase", Source: model.SourceBetalist},
			{Name: "Acme", SourceURL: "https://betalist.com/startups/acme", Source: model.SourceBetalist},
		},
	}
	dup := &stubAdapter{
		source: model.SourceHackerNews,
		items: []model.UnifiedProduct{
			{Name: "FlowBase", SourceURL: "https://betalist.com/startups/flowbase", Source: model.SourceHackerNews},
		},
	}
	broken := &stubAdapter{source: model.SourceIndieHackers, err: eris.New("boom")}

	agg := NewAggregator(10, ok, dup, broken)
	products := agg.ScrapeMultiSource(context.Background())

	require.Len(t, products, 2)
	names := []string{products[0].Name, products[1].Name}
	sort.Strings(names)
	assert.Equal(t, []string{"Acme", "FlowBase"}, names)
}

func TestAggregator_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	broken := &stubAdapter{source: model.SourceBetalist, err: eris.New("down")}
	agg := NewAggregator(10, broken)

	threshold := resilience.DefaultCircuitBreakerConfig().FailureThreshold
	for range threshold {
		agg.ScrapeMultiSource(context.Background())
	}
	require.Equal(t, int32(threshold), atomic.LoadInt32(&broken.calls))

	// The next pass skips the adapter entirely.
	agg.ScrapeMultiSource(context.Background())
	assert.Equal(t, int32(threshold), atomic.LoadInt32(&broken.calls))
}

func TestAggregator_AllSourcesDown(t *testing.T) {
	agg := NewAggregator(10,
		&stubAdapter{source: model.SourceBetalist, err: eris.New("down")},
		&stubAdapter{source: model.SourceHackerNews, err: eris.New("down")},
	)
	assert.Empty(t, agg.ScrapeMultiSource(context.Background()))
}

func TestShuffle_IsPermutation(t *testing.T) {
	input := make([]model.UnifiedProduct, 50)
	for i := range input {
		input[i] = model.UnifiedProduct{SourceURL: string(rune('a' + i))}
	}
	original := make([]model.UnifiedProduct, len(input))
	copy(original, input)

	Shuffle(input)

	require.Len(t, input, len(original))
	counts := map[string]int{}
	for _, p := range input {
		counts[p.SourceURL]++
	}
	for _, p := range original {
		counts[p.SourceURL]--
	}
	for url, n := range counts {
		assert.Zero(t, n, url)
	}
}

func TestShuffle_SmallInputs(t *testing.T) {
	Shuffle(nil)
	one := []model.UnifiedProduct{{Name: "solo"}}
	Shuffle(one)
	assert.Equal(t, "solo", one[0].Name)
}
