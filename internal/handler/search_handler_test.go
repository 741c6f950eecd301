package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-resume-analyst/internal/agent"
	"ai-resume-analyst/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchRouter(search *fakeSearchService, queryAgent *fakeAgent) *gin.Engine {
	r := gin.New()
	h := NewSearchHandler(search, queryAgent)
	r.POST("/api/v1/search/semantic", h.SemanticSearch)
	r.POST("/api/v1/search/rag-agent", h.RagAgent)
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSemanticSearch_ReturnsQueryMatchesAndCount(t *testing.T) {
	search := &fakeSearchService{results: []model.SearchResult{
		{ResumeID: 2, Score: 0.12, Employee: model.EmployeeRef{ID: 1, Name: "Alice", Role: "Backend"}, FilePath: "alice.pdf", ResumeText: "go"},
		{ResumeID: 5, Score: 0.31, Employee: model.EmployeeRef{ID: 3, Name: "Bob", Role: "Data"}, FilePath: "bob.md", ResumeText: "python"},
	}}

	w := postJSON(searchRouter(search, &fakeAgent{}), "/api/v1/search/semantic", `{"query":"go developer","top_k":2}`)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Query   string               `json:"query"`
		Matches []model.SearchResult `json:"matches"`
		Count   int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "go developer", body.Query)
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, uint(2), body.Matches[0].ResumeID)
	assert.Equal(t, "Alice", body.Matches[0].Employee.Name)
	assert.Equal(t, 2, search.lastTopK)
}

func TestSemanticSearch_DefaultsTopKToFive(t *testing.T) {
	search := &fakeSearchService{results: []model.SearchResult{}}

	w := postJSON(searchRouter(search, &fakeAgent{}), "/api/v1/search/semantic", `{"query":"designer"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, search.lastTopK)
	assert.JSONEq(t, `{"query":"designer","matches":[],"count":0}`, w.Body.String())
}

func TestSemanticSearch_RejectsMissingQuery(t *testing.T) {
	search := &fakeSearchService{}

	w := postJSON(searchRouter(search, &fakeAgent{}), "/api/v1/search/semantic", `{"top_k":3}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, search.lastQuery)
}

func TestSemanticSearch_HidesBackendErrors(t *testing.T) {
	search := &fakeSearchService{err: errBackend}

	w := postJSON(searchRouter(search, &fakeAgent{}), "/api/v1/search/semantic", `{"query":"go"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret-host")
}

func TestRagAgent_ReturnsOnlyAnswer(t *testing.T) {
	queryAgent := &fakeAgent{state: &agent.State{Intent: agent.IntentResumeSearch, Answer: "Alice is a strong match."}}

	w := postJSON(searchRouter(&fakeSearchService{}, queryAgent), "/api/v1/search/rag-agent", `{"query":"find go devs"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"answer":"Alice is a strong match."}`, w.Body.String())
}

func TestRagAgent_FailureIsGeneric(t *testing.T) {
	queryAgent := &fakeAgent{err: errBackend}

	w := postJSON(searchRouter(&fakeSearchService{}, queryAgent), "/api/v1/search/rag-agent", `{"query":"find go devs"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret-host")
}

func TestRagAgent_RejectsEmptyQuery(t *testing.T) {
	w := postJSON(searchRouter(&fakeSearchService{}, &fakeAgent{}), "/api/v1/search/rag-agent", `{"query":""}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
