// Package store holds the character records the matching core reads: a JSON
// file backend and a Memgraph/Neo4j backend behind one read interface.
package store

import (
	"context"

	"github.com/agenthands/forcematch/internal/core/model"
)

// Store is the read side every backend provides.
type Store interface {
	GetCharacter(id string) (model.Character, bool)
	GetAllCharacters() model.Dataset
}

// Reloader is implemented by stores that can refresh their snapshot from the
// underlying source.
type Reloader interface {
	Reload(ctx context.Context) error
}
