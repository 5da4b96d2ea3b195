package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/trackfinder/internal/adapters/ollama"
	openaiAdapter "github.com/ewilliams-labs/trackfinder/internal/adapters/openai"
	"github.com/ewilliams-labs/trackfinder/internal/adapters/postgres"
	"github.com/ewilliams-labs/trackfinder/internal/adapters/sonoscli"
	"github.com/ewilliams-labs/trackfinder/internal/adapters/spotify"
	"github.com/ewilliams-labs/trackfinder/internal/adapters/sqlite"
	"github.com/ewilliams-labs/trackfinder/internal/config"
	"github.com/ewilliams-labs/trackfinder/internal/core/matching"
	"github.com/ewilliams-labs/trackfinder/internal/core/parsing"
	"github.com/ewilliams-labs/trackfinder/internal/core/ports"
	"github.com/ewilliams-labs/trackfinder/internal/core/query"
	"github.com/ewilliams-labs/trackfinder/internal/core/services"
	"github.com/ewilliams-labs/trackfinder/internal/logger"
	"github.com/ewilliams-labs/trackfinder/internal/worker"
)

// app owns the configured adapters for one command invocation.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	closers []func()

	// journalStore is the synchronous store; journal may wrap it in a worker pool.
	journalStore ports.JournalReader
	journal      ports.ResolutionJournal
}

func newApp(opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Options{Env: cfg.Env, Level: cfg.Logging.Level})
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	return &app{cfg: cfg, logger: log}, nil
}

// close releases adapters in reverse order of creation.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.logger.Sync()
}

func (a *app) catalog(ctx context.Context) ports.CatalogSearcher {
	switch a.cfg.Catalog.Driver {
	case "spotify":
		sc := a.cfg.Catalog.Spotify
		httpClient := spotify.NewCredentialsHTTPClient(ctx, sc.ClientID, sc.ClientSecret, sc.TokenURL)
		return spotify.NewClient(httpClient, sc.BaseURL,
			spotify.WithMarket(sc.Market),
			spotify.WithLimit(sc.Limit),
			spotify.WithRateLimit(sc.RateLimit),
			spotify.WithRetry(sc.MaxRetries, time.Duration(sc.RetryBackoffMs)*time.Millisecond),
			spotify.WithLogger(a.logger.Named("spotify")),
		)
	default:
		sc := a.cfg.Catalog.Sonos
		return sonoscli.NewClient(sc.Command, time.Duration(sc.TimeoutSec)*time.Second)
	}
}

func (a *app) ollamaClient() *ollama.Client {
	oc := a.cfg.Ollama
	return ollama.NewClient(oc.BaseURL,
		ollama.WithModel(oc.Model),
		ollama.WithTimeout(time.Duration(oc.TimeoutSec)*time.Second),
		ollama.WithLogger(a.logger.Named("ollama")),
	)
}

// parser puts the LLM parser, when configured, in front of the rule parser.
func (a *app) parser() ports.RequestParser {
	rules := parsing.NewRuleParser()
	if a.cfg.Parser.Driver != "ollama" {
		return rules
	}
	return parsing.NewChain(a.logger.Named("parser"), ollama.NewRequestParser(a.ollamaClient()), rules)
}

func (a *app) disambiguator() ports.Disambiguator {
	switch a.cfg.Disambiguator.Driver {
	case "ollama":
		return ollama.NewDisambiguator(a.ollamaClient())
	case "openai":
		oc := a.cfg.OpenAI
		return openaiAdapter.NewDisambiguator(&openaiAdapter.Config{
			APIKey:  oc.APIKey,
			BaseURL: oc.BaseURL,
			Model:   oc.Model,
			Logger:  a.logger.Named("openai"),
		})
	default:
		return nil
	}
}

// openJournal connects the configured store. With async set, writes go
// through a worker pool so a slow store never delays a response.
func (a *app) openJournal(ctx context.Context, async bool) error {
	jc := a.cfg.Journal

	var store interface {
		ports.ResolutionJournal
		ports.JournalReader
	}
	switch jc.Driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(jc.SQLitePath), 0o750); err != nil {
			return fmt.Errorf("failed to create journal dir: %w", err)
		}
		s, err := sqlite.NewAdapter(jc.SQLitePath)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = s.Close() })
		store = s
	case "postgres":
		p, err := postgres.Connect(ctx, jc.PostgresURL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, p.Close)
		store = p
	default:
		return nil
	}

	a.journalStore = store
	a.journal = store
	if async {
		pool := worker.NewPool(store, jc.Workers, jc.QueueSize, a.logger.Named("journal"))
		pool.Start()
		a.closers = append(a.closers, pool.Stop)
		a.journal = pool
	}
	return nil
}

func (a *app) resolver(ctx context.Context) *services.Resolver {
	sc := a.cfg.Search
	searcher := services.NewSearcher(a.catalog(ctx),
		services.WithLogger(a.logger.Named("search")),
		services.WithMaxAttempts(sc.MaxAttempts),
		services.WithBackoff(time.Duration(sc.BackoffMs)*time.Millisecond),
	)

	selectorOpts := []matching.SelectorOption{matching.WithSelectorLogger(a.logger.Named("select"))}
	if d := a.disambiguator(); d != nil {
		selectorOpts = append(selectorOpts, matching.WithDisambiguator(d))
	}

	resolverOpts := []services.ResolverOption{
		services.WithParser(a.parser()),
		services.WithGenerator(query.NewGenerator(a.cfg.Query.AlbumFallbacks)),
		services.WithResolverLogger(a.logger.Named("resolve")),
	}
	if a.journal != nil {
		resolverOpts = append(resolverOpts, services.WithJournal(a.journal))
	}

	return services.NewResolver(searcher, matching.NewSelector(selectorOpts...), resolverOpts...)
}

func (a *app) resolveTimeout() time.Duration {
	return time.Duration(a.cfg.Resolve.TimeoutSec) * time.Second
}
