package gifts

import (
	"context"
	"sync"

	"github.com/agenthands/forcematch/internal/core/model"
	"github.com/agenthands/forcematch/internal/llm"
)

type MockLLM struct {
	mu            sync.Mutex
	Response      string
	ResponseQueue []string
	Err           error
	Requests      []llm.Request
}

func (m *MockLLM) Generate(ctx context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

func (m *MockLLM) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

type MockStore struct {
	Data model.Dataset
}

func (m *MockStore) GetCharacter(id string) (model.Character, bool) {
	c, ok := m.Data[id]
	return c, ok
}

func (m *MockStore) GetAllCharacters() model.Dataset {
	return m.Data
}
