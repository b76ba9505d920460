package evaluation

import (
	"fmt"
	"math"

	"github.com/agenthands/forcematch/internal/core/constraint"
	"github.com/agenthands/forcematch/internal/core/matching"
)

// warningDeduction is the satisfaction penalty, in percentage points, for
// each WARNING violation.
const warningDeduction = 5.0

type PairReport struct {
	Giver      string   `json:"giver"`
	Receiver   string   `json:"receiver"`
	Violations []string `json:"violations"`
}

// Metrics summarises a matching result for API and UI consumers.
type Metrics struct {
	MatchID            string              `json:"match_id,omitempty"`
	TotalViolations    int                 `json:"total_violations"`
	ViolationsByType   map[string]int      `json:"violations_by_type"`
	PerfectPairingsPct float64             `json:"perfect_pairings_pct"`
	SatisfactionScore  float64             `json:"satisfaction_score"`
	DetailedViolations []PairReport        `json:"detailed_violations"`
	Pairings           map[string]string   `json:"pairings"`
	TotalScore         float64             `json:"total_score"`
	IterationCount     int                 `json:"iteration_count"`
	Gifts              map[string][]string `json:"gifts,omitempty"`
}

// Evaluate computes violation counts, the share of violation-free pairs and
// an overall satisfaction score. Any BLOCKING violation zeroes satisfaction.
func Evaluate(result matching.Result) Metrics {
	m := Metrics{
		TotalViolations:    len(result.Violations),
		ViolationsByType:   make(map[string]int),
		DetailedViolations: []PairReport{},
		Pairings:           result.Pairings,
		TotalScore:         result.TotalScore,
		IterationCount:     result.IterationCount,
	}

	perGiver := make(map[string]int, len(result.Pairings))
	byPair := make(map[[2]string]int)
	hasBlocking := false
	warnings := 0

	for _, v := range result.Violations {
		m.ViolationsByType[v.Constraint]++
		perGiver[v.Giver]++

		switch v.Severity {
		case constraint.SeverityBlocking:
			hasBlocking = true
		case constraint.SeverityWarning:
			warnings++
		}

		key := [2]string{v.Giver, v.Receiver}
		idx, ok := byPair[key]
		if !ok {
			idx = len(m.DetailedViolations)
			byPair[key] = idx
			m.DetailedViolations = append(m.DetailedViolations, PairReport{Giver: v.Giver, Receiver: v.Receiver})
		}
		m.DetailedViolations[idx].Violations = append(m.DetailedViolations[idx].Violations,
			fmt.Sprintf("%s: %s", v.Constraint, v.Description))
	}

	var pct float64
	if total := len(result.Pairings); total > 0 {
		perfect := 0
		for giver := range result.Pairings {
			if perGiver[giver] == 0 {
				perfect++
			}
		}
		pct = float64(perfect) / float64(total) * 100
	}

	var satisfaction float64
	if !hasBlocking {
		satisfaction = math.Max(0, pct-warningDeduction*float64(warnings))
	}

	m.PerfectPairingsPct = round2(pct)
	m.SatisfactionScore = round2(satisfaction)
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
