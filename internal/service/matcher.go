// Package service runs one Secret Santa match end to end: data check,
// assignment search, evaluation and optional gift ideas.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agenthands/forcematch/internal/core/constraint"
	"github.com/agenthands/forcematch/internal/core/evaluation"
	"github.com/agenthands/forcematch/internal/core/matching"
	"github.com/agenthands/forcematch/internal/gifts"
	"github.com/agenthands/forcematch/internal/store"
)

var (
	ErrNoData         = errors.New("character data not available")
	ErrNoParticipants = errors.New("not enough participants for an assignment")
	ErrSearchFailed   = errors.New("assignment search failed")
)

var (
	matchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forcematch_match_total",
		Help: "Match runs by outcome",
	}, []string{"outcome"})

	matchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "forcematch_match_duration_seconds",
		Help:    "Assignment search and evaluation time",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	matchSatisfaction = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "forcematch_match_satisfaction",
		Help:    "Satisfaction score of returned assignments",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})
)

// Request tunes a single run. Zero values fall back to the matcher's
// configuration.
type Request struct {
	Constraints []string
	Iterations  int
	Seed        *uint64
	Gifts       bool
}

type Matcher struct {
	store       store.Store
	registry    *constraint.Registry
	recommender *gifts.Recommender
	iterations  int
	seed        uint64
	defaults    []string
	logger      *log.Logger
}

type Option func(*Matcher)

func WithIterations(n int) Option {
	return func(m *Matcher) { m.iterations = n }
}

// WithSeed makes every run without its own seed reproducible. Zero keeps
// runs random.
func WithSeed(seed uint64) Option {
	return func(m *Matcher) { m.seed = seed }
}

// WithDefaultConstraints sets the constraints used when a request names none.
func WithDefaultConstraints(names []string) Option {
	return func(m *Matcher) { m.defaults = names }
}

func WithRecommender(r *gifts.Recommender) Option {
	return func(m *Matcher) { m.recommender = r }
}

func WithLogger(l *log.Logger) Option {
	return func(m *Matcher) { m.logger = l }
}

func NewMatcher(s store.Store, registry *constraint.Registry, opts ...Option) *Matcher {
	m := &Matcher{
		store:      s,
		registry:   registry,
		iterations: matching.DefaultIterations,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Matcher) Registry() *constraint.Registry {
	return m.registry
}

// Match runs the search with the named constraints.
func (m *Matcher) Match(ctx context.Context, names []string) (*evaluation.Metrics, error) {
	return m.Run(ctx, Request{Constraints: names})
}

func (m *Matcher) Run(ctx context.Context, req Request) (*evaluation.Metrics, error) {
	start := time.Now()
	metrics, err := m.run(ctx, req)
	matchDuration.Observe(time.Since(start).Seconds())
	matchTotal.WithLabelValues(outcome(err)).Inc()
	return metrics, err
}

func (m *Matcher) run(ctx context.Context, req Request) (*evaluation.Metrics, error) {
	data := m.store.GetAllCharacters()
	if len(data) == 0 {
		if r, ok := m.store.(store.Reloader); ok {
			if err := r.Reload(ctx); err != nil {
				m.logger.Error("reloading character data", "err", err)
			}
			data = m.store.GetAllCharacters()
		}
	}
	if len(data) == 0 {
		return nil, ErrNoData
	}
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: have %d", ErrNoParticipants, len(data))
	}

	names := req.Constraints
	if len(names) == 0 {
		names = m.defaults
	}
	iterations := req.Iterations
	if iterations <= 0 {
		iterations = m.iterations
	}

	opts := []matching.Option{matching.WithLogger(m.logger)}
	seed := m.seed
	if req.Seed != nil {
		seed = *req.Seed
	}
	if seed != 0 {
		opts = append(opts, matching.WithRand(matching.NewSeededRand(seed)))
	}

	engine := matching.NewEngine(snapshot(data), m.registry, names, opts...)
	result := engine.FindBestMatch(iterations)
	if math.IsInf(result.TotalScore, 1) || len(result.Pairings) == 0 {
		return nil, ErrSearchFailed
	}

	metrics := evaluation.Evaluate(result)
	metrics.MatchID = uuid.NewString()
	matchSatisfaction.Observe(metrics.SatisfactionScore)

	m.logger.Info("match complete",
		"match_id", metrics.MatchID,
		"constraints", len(engine.Constraints()),
		"participants", len(result.Pairings),
		"score", result.TotalScore,
		"iterations", result.IterationCount,
		"satisfaction", metrics.SatisfactionScore,
	)

	if req.Gifts && m.recommender != nil {
		ideas, err := m.recommender.RecommendAll(ctx, result.Pairings)
		if err != nil {
			return nil, err
		}
		metrics.Gifts = ideas
	}
	return &metrics, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNoData):
		return "no_data"
	case errors.Is(err, ErrNoParticipants):
		return "no_participants"
	case errors.Is(err, ErrSearchFailed):
		return "search_failed"
	default:
		return "error"
	}
}
