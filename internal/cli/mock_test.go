package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/forcematch/internal/config"
	"github.com/agenthands/forcematch/internal/driver"
)

type executedQuery struct {
	Query  string
	Params map[string]any
}

// MockDriver answers each query from Results, keyed by query text.
type MockDriver struct {
	Executed []executedQuery
	Results  map[string]neo4j.EagerResult
	Indexed  bool
	Closed   bool
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	m.Executed = append(m.Executed, executedQuery{Query: query, Params: params})
	return m.Results[query], nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	m.Indexed = true
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	m.Closed = true
	return nil
}

func (m *MockDriver) queries() []string {
	out := make([]string, 0, len(m.Executed))
	for _, q := range m.Executed {
		out = append(out, q.Query)
	}
	return out
}

func (m *MockDriver) opener() graphOpener {
	return func(context.Context, config.MemgraphConfig, *log.Logger) (driver.GraphDriver, error) {
		return m, nil
	}
}
