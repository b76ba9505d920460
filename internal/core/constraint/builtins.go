package constraint

const (
	NameRelationshipAvoidance  = "relationship_avoidance"
	NameFactionBalance         = "faction_balance"
	NameHomeworldDiversity     = "homeworld_diversity"
	NameDegreeOfSeparation     = "degree_of_separation"
	NameDirectContactAvoidance = "direct_contact_avoidance"
	NameTimelineEra            = "timeline_era"
	NameAllegianceChain        = "allegiance_chain"
)

// RegisterBuiltins registers every built-in constraint with r.
func RegisterBuiltins(r *Registry) {
	r.Register(NameRelationshipAvoidance, func() Constraint { return RelationshipAvoidance{} })
	r.Register(NameFactionBalance, func() Constraint { return FactionBalance{} })
	r.Register(NameHomeworldDiversity, func() Constraint { return HomeworldDiversity{} })
	r.Register(NameDegreeOfSeparation, func() Constraint { return DegreeOfSeparation{} })
	r.Register(NameDirectContactAvoidance, func() Constraint { return DirectContactAvoidance{} })
	r.Register(NameTimelineEra, func() Constraint { return TimelineEra{} })
	r.Register(NameAllegianceChain, func() Constraint { return AllegianceChain{} })
}

// NewBuiltinRegistry returns a registry holding only the built-in constraints.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}
