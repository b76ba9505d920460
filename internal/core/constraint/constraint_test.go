package constraint

import (
	"testing"

	"github.com/agenthands/forcematch/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	lukeURI  = "http://swapi.co/resource/human/1"
	vaderURI = "http://swapi.co/resource/human/2"
	hanURI   = "http://swapi.co/resource/human/3"
)

func testDataset() model.Dataset {
	return model.Dataset{
		lukeURI: {
			ID:        lukeURI,
			Label:     "Luke Skywalker",
			Homeworld: "Tatooine",
			BirthYear: "19BBY",
			Relationships: []model.Relationship{
				{Target: "Darth Vader", Type: model.RelationFamily},
				{Target: "Leia Organa", Type: model.RelationFamily},
				{Target: "Obi-Wan Kenobi", Type: model.RelationMasterApprentice},
				{Target: "Rebel Alliance", Type: model.RelationFactionMember},
			},
			Semantics: &model.SemanticProfile{
				Traits:      []string{"Heroic", "Pilot"},
				Motivations: []string{"Defeat the Empire", "Save his father"},
			},
		},
		vaderURI: {
			ID:        vaderURI,
			Label:     "Darth Vader",
			Homeworld: "Tatooine",
			BirthYear: "41.9BBY",
			Relationships: []model.Relationship{
				{Target: "Luke Skywalker", Type: model.RelationFamily},
				{Target: "Galactic Empire", Type: model.RelationFactionMember},
			},
			Semantics: &model.SemanticProfile{
				Traits:      []string{"Ruthless", "Powerful"},
				Motivations: []string{"Crush the Rebellion", "Find Luke Skywalker"},
			},
		},
		hanURI: {
			ID:        hanURI,
			Label:     "Han Solo",
			Homeworld: "Corellia",
			BirthYear: "29BBY",
			Relationships: []model.Relationship{
				{Target: "Rebel Alliance", Type: model.RelationFactionMember},
			},
			Semantics: &model.SemanticProfile{
				Traits:      []string{"Smuggler", "Charming"},
				Motivations: []string{"Money", "Love"},
			},
		},
	}
}

func TestRegistry(t *testing.T) {
	r := NewBuiltinRegistry()

	names := r.Names()
	assert.Contains(t, names, NameRelationshipAvoidance)
	assert.Contains(t, names, NameFactionBalance)
	assert.Contains(t, names, NameHomeworldDiversity)
	assert.Len(t, names, 7)

	instantiated := r.InstantiateByNames([]string{NameFactionBalance, "no_such_rule", NameRelationshipAvoidance})
	require.Len(t, instantiated, 2)
	assert.IsType(t, FactionBalance{}, instantiated[0])
	assert.IsType(t, RelationshipAvoidance{}, instantiated[1])

	assert.Empty(t, r.InstantiateByNames(nil))
}

func TestRegistry_ReplaceKeepsOrder(t *testing.T) {
	r := NewRegistry()
	r.Register("a", func() Constraint { return AllegianceChain{} })
	r.Register("b", func() Constraint { return HomeworldDiversity{} })
	r.Register("a", func() Constraint { return TimelineEra{} })

	assert.Equal(t, []string{"a", "b"}, r.Names())
	f, ok := r.Lookup("a")
	require.True(t, ok)
	assert.IsType(t, TimelineEra{}, f())
}

func TestRelationshipAvoidance(t *testing.T) {
	data := testDataset()
	c := RelationshipAvoidance{}

	violations := c.Validate(data[lukeURI], data[vaderURI], data)
	require.Len(t, violations, 1)
	assert.Equal(t, SeverityBlocking, violations[0].Severity)
	assert.Contains(t, violations[0].Description, "FAMILY")
	assert.Equal(t, NameRelationshipAvoidance, violations[0].ConstraintName)

	assert.Empty(t, c.Validate(data[lukeURI], data[hanURI], data))
}

func TestRelationshipAvoidance_MatchesByID(t *testing.T) {
	giver := model.Character{Label: "Obi-Wan", Relationships: []model.Relationship{
		{Target: vaderURI, Type: model.RelationRival},
		{Target: "", Type: model.RelationRival},
	}}
	receiver := model.Character{ID: vaderURI, Label: "Darth Vader"}

	violations := RelationshipAvoidance{}.Validate(giver, receiver, nil)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Description, "RIVAL")
}

func TestRelationshipAvoidance_AllyIsFine(t *testing.T) {
	giver := model.Character{Label: "Han Solo", Relationships: []model.Relationship{
		{Target: "Chewbacca", Type: model.RelationAlly},
	}}
	receiver := model.Character{Label: "Chewbacca"}

	assert.Empty(t, RelationshipAvoidance{}.Validate(giver, receiver, nil))
}

func TestFactionBalance(t *testing.T) {
	data := testDataset()
	c := FactionBalance{}

	violations := c.Validate(data[lukeURI], data[hanURI], data)
	require.Len(t, violations, 1)
	assert.Equal(t, SeverityWarning, violations[0].Severity)
	assert.Contains(t, violations[0].Description, "Rebel Alliance")

	assert.Empty(t, c.Validate(data[lukeURI], data[vaderURI], data))
}

func TestFactionBalance_Affiliations(t *testing.T) {
	giver := model.Character{Affiliations: []string{"Jedi Order", "Galactic Republic"}}
	receiver := model.Character{
		Affiliations:  []string{"Galactic Republic"},
		Relationships: []model.Relationship{{Target: "Jedi Order", Type: model.RelationFactionMember}},
	}

	violations := FactionBalance{}.Validate(giver, receiver, nil)
	require.Len(t, violations, 1)
	assert.Equal(t, "Both characters belong to Galactic Republic, Jedi Order", violations[0].Description)
}

func TestHomeworldDiversity(t *testing.T) {
	data := testDataset()
	c := HomeworldDiversity{}

	violations := c.Validate(data[lukeURI], data[vaderURI], data)
	require.Len(t, violations, 1)
	assert.Equal(t, SeverityInfo, violations[0].Severity)
	assert.Equal(t, "Both characters are from Tatooine", violations[0].Description)

	assert.Empty(t, c.Validate(data[lukeURI], data[hanURI], data))
	assert.Empty(t, c.Validate(model.Character{}, model.Character{}, data))
}

func TestHomeworldDiversity_Example(t *testing.T) {
	data := model.Dataset{
		"A": {ID: "A", Homeworld: "X"},
		"B": {ID: "B", Homeworld: "X"},
		"C": {ID: "C", Homeworld: "Y"},
	}
	c := HomeworldDiversity{}

	violations := c.Validate(data["A"], data["B"], data)
	require.Len(t, violations, 1)
	assert.Equal(t, "Both characters are from X", violations[0].Description)
	assert.Empty(t, c.Validate(data["A"], data["C"], data))
	assert.Empty(t, c.Validate(data["B"], data["C"], data))
}

func TestDegreeOfSeparation(t *testing.T) {
	data := testDataset()
	c := DegreeOfSeparation{}

	violations := c.Validate(data[lukeURI], data[vaderURI], data)
	require.Len(t, violations, 1)
	assert.Equal(t, SeverityWarning, violations[0].Severity)
	assert.Contains(t, violations[0].Description, "degree 1")

	// Luke and Han only share the Rebel Alliance node: degree 2.
	assert.Empty(t, c.Validate(data[lukeURI], data[hanURI], data))

	// Unknown characters are unrelated.
	assert.Empty(t, c.Validate(model.Character{Label: "Jabba"}, data[hanURI], data))
}

func TestDirectContactAvoidance(t *testing.T) {
	data := testDataset()
	c := DirectContactAvoidance{}

	violations := c.Validate(data[vaderURI], data[lukeURI], data)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Description, "mentions receiver")
	assert.Contains(t, violations[0].Description, "Find Luke Skywalker")

	assert.Empty(t, c.Validate(data[lukeURI], data[vaderURI], data))
	assert.Empty(t, c.Validate(model.Character{}, data[lukeURI], data))
}

func TestDirectContactAvoidance_OnePerFragment(t *testing.T) {
	giver := model.Character{Semantics: &model.SemanticProfile{
		Traits:      []string{"obsessed with LEIA"},
		Motivations: []string{"rescue Leia", "fly"},
	}}
	receiver := model.Character{Label: "Leia"}

	assert.Len(t, DirectContactAvoidance{}.Validate(giver, receiver, nil), 2)
}

func TestTimelineEra(t *testing.T) {
	data := testDataset()
	c := TimelineEra{}

	assert.Empty(t, c.Validate(data[lukeURI], data[vaderURI], data))

	yoda := model.Character{Label: "Yoda", BirthYear: "896BBY"}
	violations := c.Validate(yoda, data[lukeURI], data)
	require.Len(t, violations, 1)
	assert.Equal(t, SeverityInfo, violations[0].Severity)

	unknown := model.Character{Label: "Boba", BirthYear: "unknown"}
	assert.Empty(t, c.Validate(yoda, unknown, data))
}

func TestTimelineEra_GapBoundary(t *testing.T) {
	c := TimelineEra{}
	late := model.Character{Label: "Rey", BirthYear: "20ABY"}

	sixty := model.Character{Label: "Dooku", BirthYear: "40BBY"}
	assert.Empty(t, c.Validate(sixty, late, nil), "a gap of exactly 60 years is allowed")

	justOver := model.Character{Label: "Plagueis", BirthYear: "40.1BBY"}
	violations := c.Validate(justOver, late, nil)
	require.Len(t, violations, 1)
	assert.Equal(t, NameTimelineEra, violations[0].ConstraintName)
}

func TestParseBirthYear(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"19BBY", -19, true},
		{"5ABY", 5, true},
		{"41.9BBY", -41.9, true},
		{" 12 ", 12, true},
		{"-3", -3, true},
		{"unknown", 0, false},
		{"", 0, false},
		{"BBY", 0, false},
		{"-19BBY", 0, false},
		{"+5ABY", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseBirthYear(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}
}

func TestAllegianceChain(t *testing.T) {
	data := testDataset()
	assert.Empty(t, AllegianceChain{}.Validate(data[lukeURI], data[vaderURI], data))
}
