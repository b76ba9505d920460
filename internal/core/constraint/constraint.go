// Package constraint defines the pluggable rules a gift assignment is scored
// against, and the registry that turns rule names into rule instances.
package constraint

import (
	"github.com/agenthands/forcematch/internal/core/model"
)

type Severity string

const (
	SeverityBlocking Severity = "BLOCKING"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

type Violation struct {
	ConstraintName string   `json:"constraint_name"`
	Description    string   `json:"description"`
	Severity       Severity `json:"severity"`
}

// Constraint is a named rule evaluated for one ordered (giver, receiver) pair.
// Implementations must not keep mutable state between calls.
type Constraint interface {
	Name() string
	Validate(giver, receiver model.Character, data model.Dataset) []Violation
}

type Factory func() Constraint

// Registry maps constraint names to factories. It is populated once at
// startup and only read afterwards.
type Registry struct {
	factories map[string]Factory
	order     []string
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f Factory) {
	if _, exists := r.factories[name]; !exists {
		r.order = append(r.order, name)
	}
	r.factories[name] = f
}

func (r *Registry) Lookup(name string) (Factory, bool) {
	f, ok := r.factories[name]
	return f, ok
}

// Names lists registered constraint names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// InstantiateByNames builds one fresh constraint per requested name, in the
// order given. Names without a registered factory are skipped.
func (r *Registry) InstantiateByNames(names []string) []Constraint {
	constraints := make([]Constraint, 0, len(names))
	for _, name := range names {
		f, ok := r.factories[name]
		if !ok {
			continue
		}
		constraints = append(constraints, f())
	}
	return constraints
}
