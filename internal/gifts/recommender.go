// Package gifts produces humorous in-universe gift ideas for an assigned
// giver/receiver pair.
package gifts

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/forcematch/internal/core/model"
	"github.com/agenthands/forcematch/internal/llm"
	"github.com/agenthands/forcematch/internal/store"
)

// MaxIdeas is the number of ideas returned per pair.
const MaxIdeas = 3

// FallbackGifts are served when a character is unknown or the model fails.
var FallbackGifts = []string{
	"A gallon of Blue Milk",
	"Death Star plans (slightly used)",
	"A ticket to the Podrace",
	"Wookiee-sized hairbrush",
	"Droid maintenance kit",
	"Jar Jar Binks voice modulator",
}

const systemPrompt = "You are a helpful assistant in the Star Wars universe. You provide humorous and in-universe gift recommendations."

var giftRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "forcematch_gift_requests_total",
	Help: "Gift idea requests by source",
}, []string{"source"})

var (
	thinkBlock  = regexp.MustCompile(`(?s)<think>.*?</think>`)
	listMarkers = "0123456789.-*"
)

type Recommender struct {
	store       store.Store
	client      llm.LLMClient
	cache       Cache
	logger      *log.Logger
	temperature float32
	maxTokens   int
	timeout     time.Duration
	concurrency int
}

type Option func(*Recommender)

func WithCache(c Cache) Option {
	return func(r *Recommender) { r.cache = c }
}

func WithLogger(l *log.Logger) Option {
	return func(r *Recommender) { r.logger = l }
}

func WithTemperature(t float32) Option {
	return func(r *Recommender) { r.temperature = t }
}

func WithMaxTokens(n int) Option {
	return func(r *Recommender) { r.maxTokens = n }
}

// WithTimeout bounds each model call. Zero means no extra bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Recommender) { r.timeout = d }
}

// WithConcurrency limits parallel model calls in RecommendAll.
func WithConcurrency(n int) Option {
	return func(r *Recommender) { r.concurrency = n }
}

// NewRecommender builds a recommender over s. A nil client serves the
// fallback list for every pair.
func NewRecommender(s store.Store, client llm.LLMClient, opts ...Option) *Recommender {
	r := &Recommender{
		store:       s,
		client:      client,
		cache:       NewMemoryCache(),
		logger:      log.Default(),
		temperature: 0.8,
		maxTokens:   500,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recommend returns up to MaxIdeas gift ideas from giverID to receiverID.
// It never fails: unknown characters and model errors yield the fallback
// list. Only model answers are cached.
func (r *Recommender) Recommend(ctx context.Context, giverID, receiverID string) []string {
	if ideas, ok := r.cache.Get(ctx, giverID, receiverID); ok {
		r.logger.Debug("returning cached gift ideas", "giver", giverID, "receiver", receiverID)
		giftRequests.WithLabelValues("cache").Inc()
		return ideas
	}

	giver, ok := r.store.GetCharacter(giverID)
	if !ok {
		r.logger.Warn("giver not found", "giver", giverID)
		return fallback()
	}
	receiver, ok := r.store.GetCharacter(receiverID)
	if !ok {
		r.logger.Warn("receiver not found", "receiver", receiverID)
		return fallback()
	}
	if r.client == nil {
		return fallback()
	}

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	r.logger.Info("requesting gift ideas", "giver", giver.DisplayName(), "receiver", receiver.DisplayName())
	text, err := r.client.Generate(callCtx, llm.Request{
		System:      systemPrompt,
		Prompt:      BuildPrompt(giver, receiver),
		Temperature: r.temperature,
		MaxTokens:   r.maxTokens,
	})
	if err != nil {
		r.logger.Error("gift idea request failed", "err", err)
		return fallback()
	}

	ideas := ParseGiftList(text)
	if len(ideas) == 0 {
		r.logger.Warn("model returned no gift ideas")
		return fallback()
	}

	giftRequests.WithLabelValues("llm").Inc()
	r.cache.Set(ctx, giverID, receiverID, ideas)
	return ideas
}

// RecommendAll fetches ideas for every giver in pairings. The result is
// keyed by giver id.
func (r *Recommender) RecommendAll(ctx context.Context, pairings map[string]string) (map[string][]string, error) {
	g, ctx := errgroup.WithContext(ctx)
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}

	var mu sync.Mutex
	out := make(map[string][]string, len(pairings))
	for giver, receiver := range pairings {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ideas := r.Recommend(ctx, giver, receiver)
			mu.Lock()
			out[giver] = ideas
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("gift recommendations interrupted: %w", err)
	}
	return out, nil
}

// BuildPrompt renders the user prompt for one pair.
func BuildPrompt(giver, receiver model.Character) string {
	return fmt.Sprintf("Suggest %d humorous and in-universe gift ideas for %s (%s) to give to %s (%s).\n\n"+
		"Giver Traits: %s\n"+
		"Receiver Traits: %s\n\n"+
		"The gifts should be funny, ironic, or oddly specific to their lore. "+
		"For example, Vader giving Luke a 'Hand Replacement Coupon'.\n"+
		"Return ONLY the list of %d gifts, one per line, without numbering or extra text.",
		MaxIdeas,
		promptName(giver), promptSpecies(giver),
		promptName(receiver), promptSpecies(receiver),
		promptTraits(giver), promptTraits(receiver),
		MaxIdeas,
	)
}

// ParseGiftList splits a model answer into at most MaxIdeas ideas, dropping
// reasoning blocks, list numbering and bullets.
func ParseGiftList(text string) []string {
	text = thinkBlock.ReplaceAllString(text, "")

	var ideas []string
	for line := range strings.SplitSeq(strings.TrimSpace(text), "\n") {
		cleaned := strings.TrimSpace(line)
		if cleaned != "" && strings.ContainsRune(listMarkers, rune(cleaned[0])) {
			cleaned = strings.TrimLeft(cleaned, listMarkers+" ")
		}
		if cleaned == "" {
			continue
		}
		ideas = append(ideas, cleaned)
		if len(ideas) == MaxIdeas {
			break
		}
	}
	return ideas
}

func fallback() []string {
	giftRequests.WithLabelValues("fallback").Inc()
	out := make([]string, MaxIdeas)
	copy(out, FallbackGifts)
	return out
}

func promptName(c model.Character) string {
	if n := c.DisplayName(); n != "" {
		return n
	}
	return "Unknown"
}

func promptSpecies(c model.Character) string {
	if c.Species != "" {
		return c.Species
	}
	return "Unknown Species"
}

func promptTraits(c model.Character) string {
	if c.Semantics == nil || len(c.Semantics.Traits) == 0 {
		return "None"
	}
	return strings.Join(c.Semantics.Traits, ", ")
}
