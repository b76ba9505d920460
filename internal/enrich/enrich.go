package enrich

import (
	"github.com/charmbracelet/log"

	"github.com/agenthands/forcematch/internal/core/model"
)

type Enricher struct {
	classifier *Classifier
	logger     *log.Logger
}

func NewEnricher(logger *log.Logger) *Enricher {
	return &Enricher{classifier: NewClassifier(), logger: logger}
}

// Enrich returns a copy of data where every description has been mined for
// relationships and a semantic profile. Extracted relationships are added
// after the existing ones unless the same target and type is already
// present; an existing profile is kept.
func (e *Enricher) Enrich(data model.Dataset) model.Dataset {
	out := make(model.Dataset, len(data))
	added := 0
	for _, id := range data.IDs() {
		c := data[id]
		c.ID = id

		rels := append([]model.Relationship(nil), c.Relationships...)
		for _, r := range e.classifier.Classify(c.Description) {
			if r.Target == "" || hasRelationship(rels, r) {
				continue
			}
			rels = append(rels, r)
			added++
		}
		c.Relationships = rels

		if c.Semantics == nil && c.Description != "" {
			p := Analyze(c.Description)
			c.Semantics = &p
		}
		out[id] = c
	}
	out.Normalize()

	e.logger.Info("enriched characters", "count", len(out), "relationships_added", added)
	return out
}

func hasRelationship(rels []model.Relationship, r model.Relationship) bool {
	for _, existing := range rels {
		if existing.Target == r.Target && existing.Type == r.Type {
			return true
		}
	}
	return false
}
