package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/forcematch/internal/core/constraint"
	"github.com/agenthands/forcematch/internal/core/evaluation"
	"github.com/agenthands/forcematch/internal/core/model"
	"github.com/agenthands/forcematch/internal/gifts"
	"github.com/agenthands/forcematch/internal/logging"
	"github.com/agenthands/forcematch/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockStore struct {
	Data model.Dataset
}

func (m *MockStore) GetCharacter(id string) (model.Character, bool) {
	c, ok := m.Data[id]
	return c, ok
}

func (m *MockStore) GetAllCharacters() model.Dataset {
	return maps.Clone(m.Data)
}

func rebels() model.Dataset {
	return model.Dataset{
		"uri:luke":   {ID: "uri:luke", Label: "Luke Skywalker", Homeworld: "Tatooine", BirthYear: "19BBY"},
		"uri:leia":   {ID: "uri:leia", Label: "Leia Organa", Homeworld: "Alderaan", BirthYear: "19BBY"},
		"uri:han":    {ID: "uri:han", Label: "Han Solo", Homeworld: "Corellia", BirthYear: "29BBY"},
		"uri:chewie": {ID: "uri:chewie", Label: "Chewbacca", Homeworld: "Kashyyyk", BirthYear: "200BBY"},
	}
}

func newTestRouter(data model.Dataset, llmHealth func(context.Context) error) *gin.Engine {
	logger := logging.Discard()
	s := &MockStore{Data: data}
	rec := gifts.NewRecommender(s, nil, gifts.WithLogger(logger))
	m := service.NewMatcher(s, constraint.NewBuiltinRegistry(),
		service.WithRecommender(rec),
		service.WithLogger(logger),
		service.WithSeed(3),
	)
	return NewServer(m, rec, llmHealth, []string{"http://localhost:3000"}, logger).SetupRouter()
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := do(t, newTestRouter(rebels(), nil), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, Version, resp["version"])
}

func TestHealthLLM(t *testing.T) {
	w := do(t, newTestRouter(rebels(), func(context.Context) error { return nil }), http.MethodGet, "/health/llm", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, newTestRouter(rebels(), func(context.Context) error { return errors.New("refused") }), http.MethodGet, "/health/llm", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(t, newTestRouter(rebels(), nil), http.MethodGet, "/health/llm", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMatch(t *testing.T) {
	r := newTestRouter(rebels(), nil)
	w := do(t, r, http.MethodPost, "/api/match", MatchRequest{
		Constraints: []string{constraint.NameHomeworldDiversity, constraint.NameTimelineEra},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var metrics evaluation.Metrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &metrics))
	assert.NotEmpty(t, metrics.MatchID)
	assert.Len(t, metrics.Pairings, 4)
	assert.Nil(t, metrics.Gifts)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	for _, key := range []string{"total_violations", "violations_by_type", "perfect_pairings_pct", "satisfaction_score", "detailed_violations", "pairings", "total_score", "iteration_count"} {
		assert.Contains(t, raw, key)
	}
}

func TestMatch_WithGifts(t *testing.T) {
	w := do(t, newTestRouter(rebels(), nil), http.MethodPost, "/api/match", map[string]any{
		"constraints": []string{},
		"gifts":       true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var metrics evaluation.Metrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &metrics))
	assert.Len(t, metrics.Gifts, 4)
}

func TestMatch_Errors(t *testing.T) {
	cases := []struct {
		name   string
		data   model.Dataset
		body   any
		status int
	}{
		{"bad json", rebels(), "{nope", http.StatusBadRequest},
		{"negative iterations", rebels(), map[string]any{"iterations": -1}, http.StatusBadRequest},
		{"no data", model.Dataset{}, MatchRequest{}, http.StatusServiceUnavailable},
		{"one participant", model.Dataset{"uri:solo": {ID: "uri:solo"}}, MatchRequest{}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, newTestRouter(tc.data, nil), http.MethodPost, "/api/match", tc.body)
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestMatchErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, matchErrorStatus(service.ErrNoData))
	assert.Equal(t, http.StatusNotFound, matchErrorStatus(fmt.Errorf("%w: have 1", service.ErrNoParticipants)))
	assert.Equal(t, http.StatusInternalServerError, matchErrorStatus(service.ErrSearchFailed))
}

func TestRecommend(t *testing.T) {
	r := newTestRouter(rebels(), nil)

	w := do(t, r, http.MethodPost, "/api/recommend", RecommendRequest{GiverURI: "uri:han", ReceiverURI: "uri:leia"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Recommendations []string `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, gifts.FallbackGifts[:gifts.MaxIdeas], resp.Recommendations)

	w = do(t, r, http.MethodPost, "/api/recommend", map[string]string{"giver_uri": "uri:han"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConstraints(t *testing.T) {
	w := do(t, newTestRouter(rebels(), nil), http.MethodGet, "/api/constraints", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Constraints []string `json:"constraints"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, constraint.NewBuiltinRegistry().Names(), resp.Constraints)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(rebels(), nil)
	do(t, r, http.MethodPost, "/api/match", MatchRequest{})

	w := do(t, r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "forcematch_match_total")
}

func TestCORS(t *testing.T) {
	r := newTestRouter(rebels(), nil)

	req, _ := http.NewRequest(http.MethodOptions, "/api/match", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req, _ = http.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
