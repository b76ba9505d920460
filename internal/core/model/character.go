package model

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

type RelationshipType string

const (
	RelationFamily           RelationshipType = "FAMILY"
	RelationMasterApprentice RelationshipType = "MASTER_APPRENTICE"
	RelationRival            RelationshipType = "RIVAL"
	RelationAlly             RelationshipType = "ALLY"
	RelationFactionMember    RelationshipType = "FACTION_MEMBER"
	RelationUnknown          RelationshipType = "UNKNOWN"
)

// ParseRelationshipType maps a stored type name onto a known type.
// Anything unrecognised becomes RelationUnknown.
func ParseRelationshipType(s string) RelationshipType {
	switch t := RelationshipType(strings.ToUpper(strings.TrimSpace(s))); t {
	case RelationFamily, RelationMasterApprentice, RelationRival, RelationAlly, RelationFactionMember:
		return t
	default:
		return RelationUnknown
	}
}

func (t *RelationshipType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// null or a non-string value
		*t = RelationUnknown
		return nil
	}
	*t = ParseRelationshipType(s)
	return nil
}

type Relationship struct {
	Target  string           `json:"target"`
	Type    RelationshipType `json:"type"`
	Details string           `json:"details"`
}

func (r *Relationship) UnmarshalJSON(data []byte) error {
	var raw struct {
		Target  *string          `json:"target"`
		Type    RelationshipType `json:"type"`
		Details *string          `json:"details"`
	}
	raw.Type = RelationUnknown
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Relationship{Type: raw.Type}
	if raw.Target != nil {
		r.Target = *raw.Target
	}
	if raw.Details != nil {
		r.Details = *raw.Details
	}
	return nil
}

type SemanticProfile struct {
	Traits      []string `json:"traits"`
	Motivations []string `json:"motivations"`
	Role        string   `json:"role"`
}

// Character is a participant record as held by the character store.
type Character struct {
	ID            string           `json:"uri,omitempty"`
	Label         string           `json:"label,omitempty"`
	Name          string           `json:"name,omitempty"`
	Species       string           `json:"species,omitempty"`
	Description   string           `json:"description,omitempty"`
	Homeworld     string           `json:"homeworld,omitempty"`
	BirthYear     string           `json:"birth_year,omitempty"`
	Relationships []Relationship   `json:"relationships"`
	Semantics     *SemanticProfile `json:"semantics"`
	Affiliations  []string         `json:"affiliations,omitempty"`
}

// DisplayName is the label used for the character in the relationship graph
// and in descriptions.
func (c Character) DisplayName() string {
	switch {
	case c.Label != "":
		return c.Label
	case c.Name != "":
		return c.Name
	default:
		return c.ID
	}
}

// Dataset maps character id to record.
type Dataset map[string]Character

// IDs returns the dataset keys in sorted order.
func (d Dataset) IDs() []string {
	return slices.Sorted(maps.Keys(d))
}

// Normalize fills every record's ID from its key and replaces nil
// relationship slices so the persisted form always carries an array.
func (d Dataset) Normalize() {
	for id, c := range d {
		c.ID = id
		if c.Relationships == nil {
			c.Relationships = []Relationship{}
		}
		d[id] = c
	}
}
