package matching

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/agenthands/forcematch/internal/core/constraint"
	"github.com/agenthands/forcematch/internal/core/model"
)

const DefaultIterations = 20

// DefaultWeights keeps a single blocking violation heavier than any realistic
// number of warnings and infos.
var DefaultWeights = map[constraint.Severity]float64{
	constraint.SeverityBlocking: 1_000_000,
	constraint.SeverityWarning:  100,
	constraint.SeverityInfo:     10,
}

// Source supplies the participant universe, which doubles as the context
// every constraint is evaluated against.
type Source interface {
	GetAllCharacters() model.Dataset
}

type PairViolation struct {
	Giver        string              `json:"giver"`
	Receiver     string              `json:"receiver"`
	Constraint   string              `json:"constraint"`
	Description  string              `json:"description"`
	Severity     constraint.Severity `json:"severity"`
	ScorePenalty float64             `json:"score_penalty"`
}

// Result is the best assignment found by one search.
type Result struct {
	Pairings       map[string]string `json:"pairings"`
	TotalScore     float64           `json:"total_score"`
	Violations     []PairViolation   `json:"violations"`
	IterationCount int               `json:"iteration_count"`
}

type Engine struct {
	source      Source
	constraints []constraint.Constraint
	weights     map[constraint.Severity]float64
	generator   *Generator
	logger      *log.Logger
}

type Option func(*Engine)

func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.generator = NewGenerator(rng) }
}

func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithWeights(weights map[constraint.Severity]float64) Option {
	return func(e *Engine) { e.weights = weights }
}

// NewEngine builds an engine scoring against the named constraints from
// registry. Unknown names are ignored.
func NewEngine(source Source, registry *constraint.Registry, names []string, opts ...Option) *Engine {
	e := &Engine{
		source:      source,
		constraints: registry.InstantiateByNames(names),
		weights:     DefaultWeights,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.generator == nil {
		e.generator = NewGenerator(nil)
	}
	return e
}

func (e *Engine) Constraints() []constraint.Constraint {
	return e.constraints
}

// FindBestMatch draws up to iterations random derangements and keeps the one
// with the lowest score. Ties keep the earlier candidate, and a zero score
// ends the search early.
func (e *Engine) FindBestMatch(iterations int) Result {
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	data := e.source.GetAllCharacters()
	participants := data.IDs()
	if len(participants) == 0 {
		e.logger.Warn("no participants found")
		return Result{Pairings: map[string]string{}}
	}

	var best *Result
	for i := 1; i <= iterations; i++ {
		pairings, err := e.generator.Derangement(participants)
		if err != nil {
			e.logger.Error("generating assignment", "err", err, "participants", len(participants))
			break
		}

		score, violations := e.score(pairings, data)
		if best == nil || score < best.TotalScore {
			best = &Result{
				Pairings:       pairings,
				TotalScore:     score,
				Violations:     violations,
				IterationCount: i,
			}
		}

		if score == 0 {
			e.logger.Info("found perfect assignment", "iteration", i)
			break
		}
	}

	if best == nil {
		return Result{Pairings: map[string]string{}, TotalScore: math.Inf(1)}
	}
	return *best
}

// Score evaluates pairings against the active constraints using the current
// dataset.
func (e *Engine) Score(pairings map[string]string) (float64, []PairViolation) {
	return e.score(pairings, e.source.GetAllCharacters())
}

func (e *Engine) score(pairings map[string]string, data model.Dataset) (float64, []PairViolation) {
	var total float64
	var all []PairViolation

	givers := make([]string, 0, len(pairings))
	for g := range pairings {
		givers = append(givers, g)
	}
	slices.Sort(givers)

	for _, giverID := range givers {
		receiverID := pairings[giverID]
		giver, okGiver := data[giverID]
		receiver, okReceiver := data[receiverID]
		if !okGiver || !okReceiver {
			e.logger.Warn("missing character data", "giver", giverID, "receiver", receiverID)
			continue
		}

		for _, c := range e.constraints {
			for _, v := range c.Validate(giver, receiver, data) {
				penalty := e.weights[v.Severity]
				total += penalty
				all = append(all, PairViolation{
					Giver:        giverID,
					Receiver:     receiverID,
					Constraint:   v.ConstraintName,
					Description:  v.Description,
					Severity:     v.Severity,
					ScorePenalty: penalty,
				})
			}
		}
	}
	return total, all
}
