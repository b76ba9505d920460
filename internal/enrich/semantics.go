package enrich

import (
	"strings"

	"github.com/agenthands/forcematch/internal/core/model"
)

var knownTraits = []string{
	"brave", "loyal", "wise", "evil", "good", "cunning", "strong", "weak",
	"fearful", "heroic", "villainous", "ambitious", "reckless", "calm", "angry",
}

var motivationKeywords = []struct {
	motivation string
	keywords   []string
}{
	{"protection", []string{"save", "protect"}},
	{"power", []string{"power", "rule"}},
	{"justice", []string{"justice"}},
	{"peace", []string{"peace"}},
	{"revenge", []string{"revenge"}},
	{"freedom", []string{"freedom"}},
}

// Checked in order, first hit wins.
var roleKeywords = []struct {
	keyword string
	role    string
}{
	{"jedi", "Jedi"},
	{"sith", "Sith"},
	{"senator", "Senator"},
	{"pilot", "Pilot"},
	{"bounty hunter", "Bounty Hunter"},
	{"princess", "Princess"},
	{"emperor", "Emperor"},
	{"general", "General"},
}

const unknownRole = "Unknown"

// Analyze derives a keyword-based profile from text. Empty text yields an
// empty profile with no role.
func Analyze(text string) model.SemanticProfile {
	p := model.SemanticProfile{Traits: []string{}, Motivations: []string{}}
	if text == "" {
		return p
	}
	lower := strings.ToLower(text)

	for _, t := range knownTraits {
		if strings.Contains(lower, t) {
			p.Traits = append(p.Traits, t)
		}
	}

	for _, m := range motivationKeywords {
		for _, kw := range m.keywords {
			if strings.Contains(lower, kw) {
				p.Motivations = append(p.Motivations, m.motivation)
				break
			}
		}
	}

	p.Role = unknownRole
	for _, r := range roleKeywords {
		if strings.Contains(lower, r.keyword) {
			p.Role = r.role
			break
		}
	}
	return p
}
