package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/ppiankov/umactually/internal/analysis"
	"github.com/ppiankov/umactually/internal/authority"
	"github.com/ppiankov/umactually/internal/backend"
	"github.com/ppiankov/umactually/internal/cache"
	"github.com/ppiankov/umactually/internal/history"
	"github.com/ppiankov/umactually/internal/model"
	"github.com/ppiankov/umactually/internal/render"
	"github.com/ppiankov/umactually/internal/worker"
)

// app holds the components a command works with
type app struct {
	cfg      *model.Config
	store    *history.Store
	client   *backend.Client
	analyzer *analysis.Analyzer
	printer  *render.Printer
	tiers    *authority.Classifier

	transcripts cache.Cache
}

func newApp(cfg *model.Config, out io.Writer) (*app, error) {
	mode, err := render.ParseColorMode(cfg.Output.Color)
	if err != nil {
		return nil, err
	}

	store := history.Open(cfg.History.Path,
		history.WithMaxEntries(cfg.History.MaxEntries),
		history.WithLogger(logger),
	)

	transcripts := newTranscriptCache(cfg.Cache)

	client := backend.New(cfg.Backend,
		backend.WithLimiter(worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)),
		backend.WithCache(transcripts, cfg.Cache.DiskTTL),
		backend.WithLogger(logger),
	)

	tiers := authority.NewClassifier(&cfg.Authority)

	return &app{
		cfg:      cfg,
		store:    store,
		client:   client,
		analyzer: analysis.NewAnalyzer(client, store, analysis.WithLogger(logger)),
		printer:  render.NewPrinter(out, render.ResolveColors(mode)).WithTiers(tiers),
		tiers:    tiers,

		transcripts: transcripts,
	}, nil
}

// Close releases connections held by the transcript cache
func (a *app) Close() {
	closeCache(a.transcripts)
}

func closeCache(c cache.Cache) {
	closer, ok := c.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Debug("close transcript cache", "error", err)
	}
}

// newTranscriptCache layers memory over Redis when configured and reachable, else over disk
func newTranscriptCache(cfg model.CacheConfig) cache.Cache {
	if !cfg.Enabled {
		return cache.Nop{}
	}
	if cfg.RedisAddr != "" {
		shared, err := cache.NewRedisCache(context.Background(), cfg.RedisAddr)
		if err == nil {
			logger.Debug("using redis transcript cache", "addr", cfg.RedisAddr)
			return cache.NewLayered(cache.NewMemoryCache(cfg.MemoryTTL, 10*time.Minute), shared)
		}
		logger.Warn("redis unavailable, caching on disk", "error", err)
	}
	return cache.NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}

// loadApp loads configuration and builds the app for cmd output
func loadApp(out io.Writer) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = os.Stdout
	}
	return newApp(cfg, out)
}

// renderer creates a report renderer that shows source tiers
func (a *app) renderer(footer bool) *render.Renderer {
	return render.NewRenderer(footer).WithTiers(a.tiers)
}

func resolvedBackendURL(cfg *model.Config) string {
	return backend.ResolveBaseURL(cfg.Backend.BaseURL)
}
