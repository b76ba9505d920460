// Package app wires configuration into the store, model clients and match
// service shared by the HTTP server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/agenthands/forcematch/internal/config"
	"github.com/agenthands/forcematch/internal/core/constraint"
	"github.com/agenthands/forcematch/internal/driver"
	"github.com/agenthands/forcematch/internal/gifts"
	"github.com/agenthands/forcematch/internal/llm"
	"github.com/agenthands/forcematch/internal/service"
	"github.com/agenthands/forcematch/internal/store"
)

type App struct {
	Config      *config.Config
	Logger      *log.Logger
	Store       store.Store
	Matcher     *service.Matcher
	Recommender *gifts.Recommender
	Chat        llm.LLMClient
	Embedder    llm.EmbedderClient

	jsonStore *store.JSONStore
	closers   []func(context.Context) error
}

func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	if err := a.openStore(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	chat, embedder, err := llm.NewClient(ctx, cfg.LLM, logger)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.Chat, a.Embedder = chat, embedder
	if c, ok := chat.(io.Closer); ok {
		a.closers = append(a.closers, func(context.Context) error { return c.Close() })
	}

	a.Recommender = gifts.NewRecommender(a.Store, chat,
		gifts.WithCache(a.giftCache(ctx)),
		gifts.WithLogger(logger),
		gifts.WithTemperature(cfg.LLM.Temperature),
		gifts.WithMaxTokens(cfg.LLM.MaxTokens),
		gifts.WithTimeout(time.Duration(cfg.LLM.TimeoutSecs)*time.Second),
		gifts.WithConcurrency(cfg.Concurrency.GiftRequests),
	)

	a.Matcher = service.NewMatcher(a.Store, constraint.NewBuiltinRegistry(),
		service.WithIterations(cfg.Matching.Iterations),
		service.WithSeed(cfg.Matching.Seed),
		service.WithDefaultConstraints(cfg.Matching.DefaultConstraints),
		service.WithRecommender(a.Recommender),
		service.WithLogger(logger),
	)
	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	switch a.Config.Data.Backend {
	case "", "json":
		s := store.NewJSONStore(a.Config.Data.Path, a.Logger)
		if _, err := s.Load(); err != nil {
			return err
		}
		a.Store, a.jsonStore = s, s
		return nil

	case "memgraph", "neo4j":
		mc := a.Config.Memgraph
		d, err := driver.NewMemgraphDriver(ctx, mc.URI, mc.User, mc.Password, a.Logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, d.Close)
		if err := d.BuildIndices(ctx); err != nil {
			return err
		}
		s := store.NewGraphStore(d, a.Logger)
		if err := s.Reload(ctx); err != nil {
			return err
		}
		if len(s.GetAllCharacters()) == 0 {
			a.Logger.Warn("graph holds no characters; run `forcematch load --in <file>` first", "uri", mc.URI)
		}
		a.Store = s
		return nil

	default:
		return fmt.Errorf("unsupported data backend: %s", a.Config.Data.Backend)
	}
}

// giftCache prefers redis when configured and reachable.
func (a *App) giftCache(ctx context.Context) gifts.Cache {
	rc := a.Config.Redis
	if rc.Addr == "" {
		return gifts.NewMemoryCache()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		a.Logger.Warn("redis unavailable, caching gift ideas in memory", "addr", rc.Addr, "err", err)
		_ = client.Close()
		return gifts.NewMemoryCache()
	}

	a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	a.Logger.Info("caching gift ideas in redis", "addr", rc.Addr)
	return gifts.NewRedisCache(client, time.Duration(rc.TTLHours)*time.Hour, a.Logger)
}

// WatchData reloads the JSON data file on change until ctx ends. It is a
// no-op for other backends or when watching is disabled.
func (a *App) WatchData(ctx context.Context) {
	if a.jsonStore == nil || !a.Config.Data.Watch {
		return
	}
	go func() {
		if err := a.jsonStore.Watch(ctx); err != nil {
			a.Logger.Error("data watcher stopped", "err", err)
		}
	}()
}

// CheckLLM reports whether the configured model endpoints answer.
func (a *App) CheckLLM(ctx context.Context) error {
	return llm.CheckHealth(ctx, a.Chat, a.Embedder)
}

func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}
