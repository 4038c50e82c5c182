package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/launchradar/launchradar/internal/model"
	"github.com/launchradar/launchradar/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the discovery and analysis HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if cfg.Scout.RefreshHours > 0 {
			c := cron.New()
			spec := fmt.Sprintf("@every %dh", cfg.Scout.RefreshHours)
			if _, err := c.AddFunc(spec, func() { refreshDiscovery(ctx, env) }); err != nil {
				return eris.Wrap(err, "schedule discovery refresh")
			}
			c.Start()
			defer c.Stop()
			zap.L().Info("discovery refresh scheduled", zap.String("every", spec))
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter wires the API routes. Split out so tests can drive it with
// httptest without binding a port.
func newRouter(env *appEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/api/analyze", handleAnalyze(env))
	r.Get("/api/products", handleProducts(env))
	r.Get("/api/analyses", handleListAnalyses(env))
	// chi requires one param name per segment across methods; DELETE
	// interprets it as the product slug, GET as the record id.
	r.Get("/api/analyses/{id}", handleGetAnalysis(env))
	r.Delete("/api/analyses/{id}", handleInvalidate(env))

	return r
}

func handleAnalyze(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.URL == "" {
			writeError(w, http.StatusBadRequest, "url is required")
			return
		}

		rec, err := env.analyzer.Analyze(req.Context(), body.URL)
		if err != nil && rec == nil {
			zap.L().Error("analysis failed", zap.String("url", body.URL), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "analysis failed")
			return
		}
		if err != nil {
			zap.L().Warn("analysis not persisted", zap.String("slug", rec.ProductSlug), zap.Error(err))
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func handleProducts(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		products := env.aggregator.ScrapeMultiSource(req.Context())

		if src := req.URL.Query().Get("source"); src != "" {
			filtered := products[:0]
			for _, p := range products {
				if string(p.Source) == src {
					filtered = append(filtered, p)
				}
			}
			products = filtered
		}
		if raw := req.URL.Query().Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 0 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			if limit < len(products) {
				products = products[:limit]
			}
		}
		if products == nil {
			products = []model.UnifiedProduct{}
		}
		writeJSON(w, http.StatusOK, products)
	}
}

func handleListAnalyses(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		f := store.Filter{
			Source:  q.Get("source"),
			Verdict: q.Get("verdict"),
		}

		intParam := func(name string) (*int, bool) {
			raw := q.Get(name)
			if raw == "" {
				return nil, true
			}
			v, err := strconv.Atoi(raw)
			if err != nil {
				return nil, false
			}
			return &v, true
		}

		minScore, ok := intParam("minScore")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid minScore")
			return
		}
		maxScore, ok := intParam("maxScore")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid maxScore")
			return
		}
		f.MinScore = minScore
		f.MaxScore = maxScore

		if limit, ok := intParam("limit"); !ok {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		} else if limit != nil {
			f.Limit = *limit
		}
		if offset, ok := intParam("offset"); !ok {
			writeError(w, http.StatusBadRequest, "invalid offset")
			return
		} else if offset != nil {
			f.Offset = *offset
		}

		recs, err := env.store.ListAnalyses(req.Context(), f)
		if err != nil {
			zap.L().Error("list analyses failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list failed")
			return
		}
		if recs == nil {
			recs = []*model.AnalysisRecord{}
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

func handleGetAnalysis(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		rec, err := env.store.GetAnalysisByID(req.Context(), id)
		if err != nil {
			zap.L().Error("get analysis failed", zap.String("id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "lookup failed")
			return
		}
		if rec == nil {
			writeError(w, http.StatusNotFound, "analysis not found")
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func handleInvalidate(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		slug := chi.URLParam(req, "id")
		if err := env.store.InvalidateSlug(req.Context(), slug); err != nil {
			zap.L().Error("invalidate failed", zap.String("slug", slug), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "invalidate failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated", "slug": slug})
	}
}

// refreshDiscovery re-runs multi-source discovery and analyzes anything
// new. Fresh cached analyses short-circuit, so reruns only pay for
// products not seen within the TTL.
func refreshDiscovery(ctx context.Context, env *appEnv) {
	products := env.aggregator.ScrapeMultiSource(ctx)
	zap.L().Info("discovery refresh", zap.Int("products", len(products)))
	for _, p := range products {
		product := model.ProductRecord{
			Name:         p.Name,
			Tagline:      p.Tagline,
			CanonicalURL: p.URL,
			SourceURL:    p.SourceURL,
			ScrapedAt:    time.Now().UTC(),
		}
		if _, err := env.analyzer.AnalyzeProduct(ctx, &product); err != nil {
			zap.L().Warn("refresh analysis failed",
				zap.String("name", p.Name), zap.String("url", p.SourceURL), zap.Error(err))
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
