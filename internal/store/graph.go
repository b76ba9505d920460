package store

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/forcematch/internal/core/model"
	"github.com/agenthands/forcematch/internal/driver"
)

// GraphStore serves characters persisted as (:Character)-[:RELATES_TO]->(:Entity)
// in Memgraph or Neo4j. Reads come from the snapshot taken by the last Reload.
type GraphStore struct {
	driver driver.GraphDriver
	logger *log.Logger

	mu   sync.RWMutex
	data model.Dataset
}

func NewGraphStore(d driver.GraphDriver, logger *log.Logger) *GraphStore {
	return &GraphStore{
		driver: d,
		logger: logger,
		data:   model.Dataset{},
	}
}

func (s *GraphStore) Reload(ctx context.Context) error {
	res, err := s.driver.ExecuteQuery(ctx, driver.GetAllCharactersQuery, nil)
	if err != nil {
		return fmt.Errorf("failed to load characters: %w", err)
	}

	data := make(model.Dataset, len(res.Records))
	for _, rec := range res.Records {
		c, err := characterFromRecord(rec)
		if err != nil {
			return err
		}
		if c.ID == "" {
			continue
		}
		data[c.ID] = c
	}
	data.Normalize()

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()

	s.logger.Info("loaded characters from graph", "count", len(data))
	return nil
}

// Save writes every character and replaces its outgoing relationships.
func (s *GraphStore) Save(ctx context.Context, data model.Dataset) error {
	for _, id := range data.IDs() {
		c := data[id]
		c.ID = id

		semantics := ""
		if c.Semantics != nil {
			raw, err := json.Marshal(c.Semantics)
			if err != nil {
				return fmt.Errorf("failed to encode semantics for %s: %w", id, err)
			}
			semantics = string(raw)
		}

		params := map[string]any{
			"uri":          c.ID,
			"label":        c.Label,
			"name":         c.Name,
			"species":      c.Species,
			"description":  c.Description,
			"homeworld":    c.Homeworld,
			"birth_year":   c.BirthYear,
			"affiliations": stringsToAny(c.Affiliations),
			"semantics":    semantics,
		}
		if _, err := s.driver.ExecuteQuery(ctx, driver.SaveCharacterQuery, params); err != nil {
			return fmt.Errorf("failed to save character %s: %w", id, err)
		}
		if _, err := s.driver.ExecuteQuery(ctx, driver.ClearRelationshipsQuery, map[string]any{"uri": c.ID}); err != nil {
			return fmt.Errorf("failed to clear relationships of %s: %w", id, err)
		}

		rels := make([]any, 0, len(c.Relationships))
		for _, r := range c.Relationships {
			if r.Target == "" {
				continue
			}
			rels = append(rels, map[string]any{
				"target":  r.Target,
				"type":    string(r.Type),
				"details": r.Details,
			})
		}
		if len(rels) == 0 {
			continue
		}
		if _, err := s.driver.ExecuteQuery(ctx, driver.SaveRelationshipsQuery, map[string]any{
			"uri":           c.ID,
			"relationships": rels,
		}); err != nil {
			return fmt.Errorf("failed to save relationships of %s: %w", id, err)
		}
	}

	s.logger.Info("saved characters to graph", "count", len(data))
	return s.Reload(ctx)
}

// Count asks the database how many characters it holds, independent of the
// current snapshot.
func (s *GraphStore) Count(ctx context.Context) (int, error) {
	res, err := s.driver.ExecuteQuery(ctx, driver.CountCharactersQuery, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count characters: %w", err)
	}
	if len(res.Records) == 0 {
		return 0, nil
	}
	v, _ := res.Records[0].Get("count")
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected count value %T", v)
	}
}

func (s *GraphStore) GetCharacter(id string) (model.Character, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.data[id]
	return c, ok
}

func (s *GraphStore) GetAllCharacters() model.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.data)
}

func characterFromRecord(rec *neo4j.Record) (model.Character, error) {
	c := model.Character{
		ID:           recordString(rec, "uri"),
		Label:        recordString(rec, "label"),
		Name:         recordString(rec, "name"),
		Species:      recordString(rec, "species"),
		Description:  recordString(rec, "description"),
		Homeworld:    recordString(rec, "homeworld"),
		BirthYear:    recordString(rec, "birth_year"),
		Affiliations: recordStrings(rec, "affiliations"),
	}

	if raw := recordString(rec, "semantics"); raw != "" {
		var p model.SemanticProfile
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return c, fmt.Errorf("failed to decode semantics for %s: %w", c.ID, err)
		}
		c.Semantics = &p
	}

	if v, ok := rec.Get("relationships"); ok {
		items, _ := v.([]any)
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			target, _ := m["target"].(string)
			if target == "" {
				// OPTIONAL MATCH row without an edge
				continue
			}
			typ, _ := m["type"].(string)
			details, _ := m["details"].(string)
			c.Relationships = append(c.Relationships, model.Relationship{
				Target:  target,
				Type:    model.ParseRelationshipType(typ),
				Details: details,
			})
		}
	}
	return c, nil
}

func recordString(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func recordStrings(rec *neo4j.Record, key string) []string {
	v, ok := rec.Get(key)
	if !ok {
		return nil
	}
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
