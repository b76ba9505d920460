// Package enrich turns free-text character descriptions into typed
// relationships and a semantic profile.
package enrich

import (
	"regexp"
	"strings"

	"github.com/agenthands/forcematch/internal/core/model"
)

type rulePattern struct {
	phrase string
	re     *regexp.Regexp
}

type rule struct {
	typ      model.RelationshipType
	patterns []rulePattern
}

// Phrases are tried in this order; the first hit in a sentence wins.
var relationshipPhrases = []struct {
	typ     model.RelationshipType
	phrases []string
}{
	{model.RelationFamily, []string{
		"son of", "daughter of", "father of", "mother of", "brother of", "sister of",
		"parent of", "child of", "sibling of", "cousin of", "uncle of", "aunt of",
		"nephew of", "niece of", "grandfather of", "grandmother of", "grandson of",
		"granddaughter of", "wife of", "husband of", "spouse of",
	}},
	{model.RelationMasterApprentice, []string{
		"master of", "apprentice of", "padawan of", "mentor of", "student of",
		"teacher of", "trained by", "trained",
	}},
	{model.RelationRival, []string{
		"rival of", "enemy of", "opponent of", "fought against", "killed by", "killed",
	}},
	{model.RelationAlly, []string{
		"ally of", "friend of", "partner of", "colleague of", "fought with", "helped",
	}},
	{model.RelationFactionMember, []string{
		"member of", "leader of", "served in", "belongs to",
	}},
}

var (
	sentenceSplit = regexp.MustCompile(`[.!?]`)
	stopWords     = []string{
		" and ", " but ", " who ", " which ", " when ", " where ",
		" with ", " for ", " to ", " in ", " on ", " at ",
	}
)

// Classifier extracts relationships of the form "<phrase> <Target>" from
// each sentence of a description.
type Classifier struct {
	rules []rule
}

func NewClassifier() *Classifier {
	c := &Classifier{}
	for _, group := range relationshipPhrases {
		r := rule{typ: group.typ}
		for _, phrase := range group.phrases {
			r.patterns = append(r.patterns, rulePattern{
				phrase: phrase,
				re:     regexp.MustCompile(`(?i)` + regexp.QuoteMeta(phrase) + `\s+([A-Z][a-zA-Z\s]+)`),
			})
		}
		c.rules = append(c.rules, r)
	}
	return c
}

// Classify returns at most one relationship per sentence.
func (c *Classifier) Classify(text string) []model.Relationship {
	var out []model.Relationship
	for _, sentence := range sentenceSplit.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if rel, ok := c.classifySentence(sentence); ok {
			out = append(out, rel)
		}
	}
	return out
}

func (c *Classifier) classifySentence(sentence string) (model.Relationship, bool) {
	for _, r := range c.rules {
		for _, p := range r.patterns {
			m := p.re.FindStringSubmatch(sentence)
			if m == nil {
				continue
			}
			return model.Relationship{
				Target:  cleanTarget(m[1]),
				Type:    r.typ,
				Details: p.phrase,
			}, true
		}
	}
	return model.Relationship{}, false
}

func cleanTarget(target string) string {
	target = strings.TrimSpace(target)
	for _, w := range stopWords {
		if before, _, found := strings.Cut(target, w); found {
			target = before
		}
	}
	return strings.TrimSpace(target)
}
