package matching

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/agenthands/forcematch/internal/core/constraint"
	"github.com/agenthands/forcematch/internal/core/model"
)

type MockSource struct {
	Data model.Dataset
}

func (m *MockSource) GetAllCharacters() model.Dataset {
	return m.Data
}

// MockConstraint fires once when the giver is BadGiver and the receiver is
// BadReceiver, matched on character name.
type MockConstraint struct {
	NameValue   string
	BadGiver    string
	BadReceiver string
	Severity    constraint.Severity
}

func (m MockConstraint) Name() string { return m.NameValue }

func (m MockConstraint) Validate(giver, receiver model.Character, _ model.Dataset) []constraint.Violation {
	if giver.Name == m.BadGiver && receiver.Name == m.BadReceiver {
		return []constraint.Violation{{ConstraintName: m.NameValue, Description: "Bad pair!", Severity: m.Severity}}
	}
	return nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func registryWith(constraints ...MockConstraint) *constraint.Registry {
	r := constraint.NewRegistry()
	for _, c := range constraints {
		r.Register(c.NameValue, func() constraint.Constraint { return c })
	}
	return r
}

func letters(names ...string) model.Dataset {
	d := model.Dataset{}
	for _, n := range names {
		d["uri:"+n] = model.Character{ID: "uri:" + n, Name: n}
	}
	return d
}
