package store

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/forcematch/internal/core/model"
	"github.com/agenthands/forcematch/internal/driver"
	"github.com/agenthands/forcematch/internal/logging"
)

var recordKeys = []string{
	"uri", "label", "name", "species", "description", "homeworld",
	"birth_year", "affiliations", "semantics", "relationships",
}

func characterRecord(uri, label, homeworld string, affiliations []any, semantics any, rels []any) *neo4j.Record {
	return &neo4j.Record{
		Keys: recordKeys,
		Values: []any{
			uri, label, nil, "Human", nil, homeworld,
			"19BBY", affiliations, semantics, rels,
		},
	}
}

func TestGraphStore_Reload(t *testing.T) {
	mock := &MockDriver{
		MockResult: neo4j.EagerResult{
			Records: []*neo4j.Record{
				characterRecord("uri:luke", "Luke Skywalker", "Tatooine",
					[]any{"Jedi Order"},
					`{"traits":["brave"],"motivations":[],"role":"Hero"}`,
					[]any{
						map[string]any{"target": "Darth Vader", "type": "FAMILY", "details": "son of"},
						map[string]any{"target": "Obi-Wan Kenobi", "type": "mentor", "details": nil},
					}),
				characterRecord("uri:han", "Han Solo", "Corellia", nil, nil,
					[]any{map[string]any{"target": nil, "type": nil, "details": nil}}),
				characterRecord("", "Ghost", "", nil, nil, nil),
			},
		},
	}
	s := NewGraphStore(mock, logging.Discard())

	require.NoError(t, s.Reload(context.Background()))
	require.Len(t, mock.Executed, 1)
	assert.Equal(t, driver.GetAllCharactersQuery, mock.Executed[0].Query)

	all := s.GetAllCharacters()
	require.Len(t, all, 2, "records without uri are skipped")

	luke, ok := s.GetCharacter("uri:luke")
	require.True(t, ok)
	assert.Equal(t, "Luke Skywalker", luke.Label)
	assert.Equal(t, []string{"Jedi Order"}, luke.Affiliations)
	require.NotNil(t, luke.Semantics)
	assert.Equal(t, []string{"brave"}, luke.Semantics.Traits)
	assert.Equal(t, []model.Relationship{
		{Target: "Darth Vader", Type: model.RelationFamily, Details: "son of"},
		{Target: "Obi-Wan Kenobi", Type: model.RelationUnknown},
	}, luke.Relationships)

	han, ok := s.GetCharacter("uri:han")
	require.True(t, ok)
	assert.Empty(t, han.Relationships)
	assert.NotNil(t, han.Relationships)
	assert.Nil(t, han.Semantics)
}

func TestGraphStore_ReloadError(t *testing.T) {
	mock := &MockDriver{Err: errors.New("connection refused")}
	s := NewGraphStore(mock, logging.Discard())

	err := s.Reload(context.Background())
	assert.ErrorContains(t, err, "connection refused")
	assert.Empty(t, s.GetAllCharacters())
}

func TestGraphStore_Save(t *testing.T) {
	mock := &MockDriver{}
	s := NewGraphStore(mock, logging.Discard())

	data := model.Dataset{
		"uri:leia": {
			Label:        "Leia Organa",
			Affiliations: []string{"Rebel Alliance"},
			Semantics:    &model.SemanticProfile{Role: "Leader"},
			Relationships: []model.Relationship{
				{Target: "Han Solo", Type: model.RelationAlly, Details: "married"},
				{Target: "", Type: model.RelationUnknown},
			},
		},
		"uri:yoda": {Label: "Yoda"},
	}
	require.NoError(t, s.Save(context.Background(), data))

	var queries []string
	for _, q := range mock.Executed {
		queries = append(queries, q.Query)
	}
	assert.Equal(t, []string{
		driver.SaveCharacterQuery,
		driver.ClearRelationshipsQuery,
		driver.SaveRelationshipsQuery,
		driver.SaveCharacterQuery,
		driver.ClearRelationshipsQuery,
		driver.GetAllCharactersQuery,
	}, queries)

	saveLeia := mock.Executed[0].Params
	assert.Equal(t, "uri:leia", saveLeia["uri"])
	assert.Equal(t, []any{"Rebel Alliance"}, saveLeia["affiliations"])
	assert.JSONEq(t, `{"traits":null,"motivations":null,"role":"Leader"}`, saveLeia["semantics"].(string))

	rels := mock.Executed[2].Params["relationships"].([]any)
	require.Len(t, rels, 1, "relationships without a target are not persisted")
	assert.Equal(t, map[string]any{"target": "Han Solo", "type": "ALLY", "details": "married"}, rels[0])
}

func TestGraphStore_Count(t *testing.T) {
	mock := &MockDriver{
		MockResult: neo4j.EagerResult{
			Records: []*neo4j.Record{{Keys: []string{"count"}, Values: []any{int64(87)}}},
		},
	}
	s := NewGraphStore(mock, logging.Discard())

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 87, n)
	require.Len(t, mock.Executed, 1)
	assert.Equal(t, driver.CountCharactersQuery, mock.Executed[0].Query)
}

func TestGraphStore_CountError(t *testing.T) {
	s := NewGraphStore(&MockDriver{Err: errors.New("timeout")}, logging.Discard())
	_, err := s.Count(context.Background())
	assert.ErrorContains(t, err, "failed to count characters")
}
