package constraint

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agenthands/forcematch/internal/core/graph"
	"github.com/agenthands/forcematch/internal/core/model"
)

// minSeparation is the smallest graph distance between giver and receiver
// that does not count as too close.
const minSeparation = 2

var avoidedRelations = []model.RelationshipType{
	model.RelationFamily,
	model.RelationMasterApprentice,
	model.RelationRival,
}

// RelationshipAvoidance blocks pairs where the giver is family, master or
// apprentice, or rival of the receiver.
type RelationshipAvoidance struct{}

func (RelationshipAvoidance) Name() string { return NameRelationshipAvoidance }

func (c RelationshipAvoidance) Validate(giver, receiver model.Character, _ model.Dataset) []Violation {
	for _, rel := range giver.Relationships {
		if !refersTo(rel.Target, receiver) || !slices.Contains(avoidedRelations, rel.Type) {
			continue
		}
		return []Violation{{
			ConstraintName: c.Name(),
			Description:    fmt.Sprintf("%s has a %s relationship with %s", giver.DisplayName(), rel.Type, receiver.DisplayName()),
			Severity:       SeverityBlocking,
		}}
	}
	return nil
}

// FactionBalance warns when giver and receiver share a faction.
type FactionBalance struct{}

func (FactionBalance) Name() string { return NameFactionBalance }

func (c FactionBalance) Validate(giver, receiver model.Character, _ model.Dataset) []Violation {
	theirs := factions(receiver)
	var shared []string
	for _, f := range factions(giver) {
		if slices.Contains(theirs, f) {
			shared = append(shared, f)
		}
	}
	if len(shared) == 0 {
		return nil
	}
	return []Violation{{
		ConstraintName: c.Name(),
		Description:    fmt.Sprintf("Both characters belong to %s", strings.Join(shared, ", ")),
		Severity:       SeverityWarning,
	}}
}

// factions returns the sorted, de-duplicated faction names of c.
func factions(c model.Character) []string {
	var out []string
	for _, rel := range c.Relationships {
		if rel.Type == model.RelationFactionMember && rel.Target != "" {
			out = append(out, rel.Target)
		}
	}
	out = append(out, c.Affiliations...)
	slices.Sort(out)
	return slices.Compact(out)
}

// DegreeOfSeparation warns when giver and receiver are directly connected in
// the relationship graph.
type DegreeOfSeparation struct{}

func (DegreeOfSeparation) Name() string { return NameDegreeOfSeparation }

func (c DegreeOfSeparation) Validate(giver, receiver model.Character, data model.Dataset) []Violation {
	g := graph.Build(data)
	degree := g.Degree(giver.DisplayName(), receiver.DisplayName())
	if degree >= minSeparation {
		return nil
	}
	return []Violation{{
		ConstraintName: c.Name(),
		Description:    fmt.Sprintf("%s and %s are too closely connected (degree %g)", giver.DisplayName(), receiver.DisplayName(), degree),
		Severity:       SeverityWarning,
	}}
}

// AllegianceChain is reserved for chained-allegiance checks and never fires.
type AllegianceChain struct{}

func (AllegianceChain) Name() string { return NameAllegianceChain }

func (AllegianceChain) Validate(_, _ model.Character, _ model.Dataset) []Violation {
	return nil
}

func refersTo(target string, c model.Character) bool {
	if target == "" {
		return false
	}
	for _, ref := range []string{c.Label, c.Name, c.ID} {
		if ref != "" && strings.EqualFold(target, ref) {
			return true
		}
	}
	return false
}
