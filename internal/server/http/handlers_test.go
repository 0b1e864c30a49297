package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/helixir/research-ideation-service/internal/domain"
	"github.com/helixir/research-ideation-service/internal/pipeline"
	"github.com/helixir/research-ideation-service/internal/quality"
	"github.com/helixir/research-ideation-service/internal/summary"
)

// ---------------------------------------------------------------------------
// Mock implementations
// ---------------------------------------------------------------------------

type mockSummary struct {
	generateFn func(ctx context.Context, question string, local bool, provider string) (*summary.Answer, error)
}

func (m *mockSummary) Generate(ctx context.Context, question string, local bool, provider string) (*summary.Answer, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, question, local, provider)
	}
	return &summary.Answer{OriginalQuestion: question, ProviderUsed: provider, Text: "answer"}, nil
}

type mockLiterature struct {
	fetchFn func(ctx context.Context, query string, limit int) []domain.Paper
}

func (m *mockLiterature) Fetch(ctx context.Context, query string, limit int) []domain.Paper {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, query, limit)
	}
	return nil
}

type mockIdeas struct {
	generateFn func(ctx context.Context, domainName string, venues []string, papers []domain.Paper) []string
}

func (m *mockIdeas) Generate(ctx context.Context, domainName string, venues []string, papers []domain.Paper) []string {
	if m.generateFn != nil {
		return m.generateFn(ctx, domainName, venues, papers)
	}
	return []string{"one", "two", "three", "four", "five"}
}

type mockPipeline struct {
	runFn func(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

func (m *mockPipeline) Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	if m.runFn != nil {
		return m.runFn(ctx, req)
	}
	return &pipeline.Result{}, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestServer(services Services) *Server {
	if services.Summary == nil {
		services.Summary = &mockSummary{}
	}
	if services.Literature == nil {
		services.Literature = &mockLiterature{}
	}
	if services.Quality == nil {
		services.Quality = quality.NewFilter(quality.Config{}, zerolog.Nop(), nil)
	}
	if services.Ideas == nil {
		services.Ideas = &mockIdeas{}
	}
	if services.Pipeline == nil {
		services.Pipeline = &mockPipeline{}
	}
	return NewServer(Config{Address: ":0"}, services, zerolog.Nop(), nil)
}

func doPost(t *testing.T, srv *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decodeBody(t, rr, &body)
	return body["error"]
}

// ---------------------------------------------------------------------------
// Health
// ---------------------------------------------------------------------------

func TestHealthAndReadiness(t *testing.T) {
	srv := newTestServer(Services{})

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rr.Code)
		}
	}
}

func TestReadiness_MissingServices(t *testing.T) {
	srv := NewServer(Config{}, Services{Summary: &mockSummary{}}, zerolog.Nop(), nil)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	var body struct {
		Status  string   `json:"status"`
		Missing []string `json:"missing"`
	}
	decodeBody(t, rr, &body)
	if body.Status != "not_ready" {
		t.Errorf("expected status not_ready, got %s", body.Status)
	}
	if len(body.Missing) != 4 {
		t.Errorf("expected 4 missing services, got %v", body.Missing)
	}
}

// ---------------------------------------------------------------------------
// POST /api/v1/generate
// ---------------------------------------------------------------------------

func TestGenerateContent_Success(t *testing.T) {
	var gotLocal bool
	var gotProvider string
	srv := newTestServer(Services{Summary: &mockSummary{
		generateFn: func(_ context.Context, question string, local bool, provider string) (*summary.Answer, error) {
			gotLocal, gotProvider = local, provider
			return &summary.Answer{
				OriginalQuestion: question,
				ProviderUsed:     "local",
				UsedLocalLLM:     true,
				Text:             "graph neural networks are popular",
			}, nil
		},
	}})

	rr := doPost(t, srv, "/api/v1/generate", map[string]any{
		"question":  "What is trending in GNN research?",
		"local_llm": true,
		"provider":  "openai",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !gotLocal || gotProvider != "openai" {
		t.Errorf("service got local=%v provider=%q", gotLocal, gotProvider)
	}
	var body map[string]any
	decodeBody(t, rr, &body)
	if body["originalQuestion"] != "What is trending in GNN research?" {
		t.Errorf("unexpected originalQuestion %v", body["originalQuestion"])
	}
	if body["providerUsed"] != "local" {
		t.Errorf("unexpected providerUsed %v", body["providerUsed"])
	}
	if body["usedLocalLLM"] != true {
		t.Errorf("expected usedLocalLLM true, got %v", body["usedLocalLLM"])
	}
	if body["answer"] != "graph neural networks are popular" {
		t.Errorf("unexpected answer %v", body["answer"])
	}
}

func TestGenerateContent_BlankQuestion(t *testing.T) {
	called := false
	srv := newTestServer(Services{Summary: &mockSummary{
		generateFn: func(context.Context, string, bool, string) (*summary.Answer, error) {
			called = true
			return nil, nil
		},
	}})

	for _, body := range []any{
		map[string]any{"question": "   "},
		map[string]any{},
	} {
		rr := doPost(t, srv, "/api/v1/generate", body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
		if msg := errorMessage(t, rr); msg != "question is required" {
			t.Errorf("unexpected error message %q", msg)
		}
	}
	if called {
		t.Error("service must not be called for invalid input")
	}
}

func TestGenerateContent_InvalidJSON(t *testing.T) {
	srv := newTestServer(Services{})

	rr := doPost(t, srv, "/api/v1/generate", "{not json")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "invalid JSON request body" {
		t.Errorf("unexpected error message %q", msg)
	}
}

func TestGenerateContent_ProviderError(t *testing.T) {
	srv := newTestServer(Services{Summary: &mockSummary{
		generateFn: func(context.Context, string, bool, string) (*summary.Answer, error) {
			return nil, domain.NewExternalAPIError("openai", 502, "error invoking LLM: boom", nil)
		},
	}})

	rr := doPost(t, srv, "/api/v1/generate", map[string]any{"question": "anything"})

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if msg := errorMessage(t, rr); !strings.HasPrefix(msg, "Error generating content: ") {
		t.Errorf("unexpected error message %q", msg)
	}
}

func TestGenerateContent_ServiceValidationError(t *testing.T) {
	srv := newTestServer(Services{Summary: &mockSummary{
		generateFn: func(context.Context, string, bool, string) (*summary.Answer, error) {
			return nil, domain.NewValidationError("question", "is required")
		},
	}})

	rr := doPost(t, srv, "/api/v1/generate", map[string]any{"question": "anything"})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGenerateContent_BodyTooLarge(t *testing.T) {
	srv := NewServer(Config{MaxBodyBytes: 64}, Services{Summary: &mockSummary{}}, zerolog.Nop(), nil)

	rr := doPost(t, srv, "/api/v1/generate", map[string]any{"question": strings.Repeat("x", 200)})

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rr.Code)
	}
}

// ---------------------------------------------------------------------------
// POST /api/v1/literature
// ---------------------------------------------------------------------------

func TestFetchLiterature_Success(t *testing.T) {
	var gotQuery string
	var gotLimit int
	srv := newTestServer(Services{Literature: &mockLiterature{
		fetchFn: func(_ context.Context, query string, limit int) []domain.Paper {
			gotQuery, gotLimit = query, limit
			return []domain.Paper{
				{Title: "A", Summary: "a", Year: 2021},
				{Title: "B", Summary: "b", Year: 2022},
				{Title: "C", Summary: "c", Year: 2023},
			}
		},
	}})

	rr := doPost(t, srv, "/api/v1/literature", map[string]any{"query": "  graph learning  ", "limit": 99})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotQuery != "graph learning" {
		t.Errorf("expected trimmed query, got %q", gotQuery)
	}
	if gotLimit != 99 {
		t.Errorf("expected raw limit passed through for clamping, got %d", gotLimit)
	}
	var body literatureResponse
	decodeBody(t, rr, &body)
	if len(body.Papers) != 3 {
		t.Fatalf("expected 3 papers, got %d", len(body.Papers))
	}
	if body.Papers[1].Title != "B" || body.Papers[1].Year != 2022 {
		t.Errorf("unexpected paper %+v", body.Papers[1])
	}
}

func TestFetchLiterature_QueryTooShort(t *testing.T) {
	srv := newTestServer(Services{})

	rr := doPost(t, srv, "/api/v1/literature", map[string]any{"query": "a", "limit": 3})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "query must be at least 2 characters" {
		t.Errorf("unexpected error message %q", msg)
	}
}

func TestFetchLiterature_PaddedQueryTooShort(t *testing.T) {
	srv := newTestServer(Services{})

	rr := doPost(t, srv, "/api/v1/literature", map[string]any{"query": "  a  ", "limit": 3})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "query must be at least 2 characters" {
		t.Errorf("unexpected error message %q", msg)
	}
}

// ---------------------------------------------------------------------------
// POST /api/v1/quality-filter
// ---------------------------------------------------------------------------

func TestQualityFilter_FiltersAndScores(t *testing.T) {
	srv := newTestServer(Services{})

	rr := doPost(t, srv, "/api/v1/quality-filter", map[string]any{
		"domain": "natural language processing",
		"venues": []map[string]any{
			{"name": "ACL", "description": "large language model research"},
			{"name": "Cooking Weekly", "description": "recipes"},
		},
		"papers": []map[string]any{
			{"title": "Cake", "summary": "baking tips", "year": 2020},
			{"title": "Neural nets", "abstract": "a transformer-based language model", "year": 2023},
		},
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var body qualityFilterResponse
	decodeBody(t, rr, &body)
	if len(body.FilteredVenues) != 1 || body.FilteredVenues[0].Name != "ACL" {
		t.Fatalf("unexpected venues %+v", body.FilteredVenues)
	}
	if body.FilteredVenues[0].RelevanceScore < quality.MinVenueScore {
		t.Errorf("expected venue score >= %d, got %d", quality.MinVenueScore, body.FilteredVenues[0].RelevanceScore)
	}
	if len(body.FilteredPapers) != 1 || body.FilteredPapers[0].Title != "Neural nets" {
		t.Fatalf("unexpected papers %+v", body.FilteredPapers)
	}
	if body.FilteredPapers[0].RelevanceScore < quality.MinPaperScore {
		t.Errorf("expected paper score >= %d, got %d", quality.MinPaperScore, body.FilteredPapers[0].RelevanceScore)
	}
}

func TestQualityFilter_EmptyInput(t *testing.T) {
	srv := newTestServer(Services{})

	rr := doPost(t, srv, "/api/v1/quality-filter", map[string]any{})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body qualityFilterResponse
	decodeBody(t, rr, &body)
	if len(body.FilteredVenues) != 0 || len(body.FilteredPapers) != 0 {
		t.Errorf("expected empty result, got %+v", body)
	}
}

func TestQualityFilter_VenueWithoutName(t *testing.T) {
	srv := newTestServer(Services{})

	rr := doPost(t, srv, "/api/v1/quality-filter", map[string]any{
		"venues": []map[string]any{{"description": "deep learning"}},
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "venues[0].name is required" {
		t.Errorf("unexpected error message %q", msg)
	}
}

// ---------------------------------------------------------------------------
// POST /api/v1/ideas
// ---------------------------------------------------------------------------

func TestGenerateIdeas_Success(t *testing.T) {
	var gotDomain string
	var gotVenues []string
	var gotPapers []domain.Paper
	srv := newTestServer(Services{Ideas: &mockIdeas{
		generateFn: func(_ context.Context, domainName string, venues []string, papers []domain.Paper) []string {
			gotDomain, gotVenues, gotPapers = domainName, venues, papers
			return []string{"i1", "i2", "i3", "i4", "i5"}
		},
	}})

	rr := doPost(t, srv, "/api/v1/ideas", map[string]any{
		"domain": " robotics ",
		"venues": []string{"ICRA", "IROS"},
		"papers": []map[string]any{{"title": "Grasping", "summary": "robot hands"}},
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotDomain != "robotics" {
		t.Errorf("expected trimmed domain, got %q", gotDomain)
	}
	if len(gotVenues) != 2 {
		t.Errorf("expected 2 venues, got %v", gotVenues)
	}
	if len(gotPapers) != 1 || gotPapers[0].Year != domain.FallbackYear {
		t.Errorf("expected missing year to default to %d, got %+v", domain.FallbackYear, gotPapers)
	}
	var body ideasResponse
	decodeBody(t, rr, &body)
	if len(body.Ideas) != domain.IdeaCount {
		t.Errorf("expected %d ideas, got %d", domain.IdeaCount, len(body.Ideas))
	}
}

func TestGenerateIdeas_MissingDomain(t *testing.T) {
	srv := newTestServer(Services{})

	rr := doPost(t, srv, "/api/v1/ideas", map[string]any{"venues": []string{}, "papers": []any{}})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "domain is required" {
		t.Errorf("unexpected error message %q", msg)
	}
}

// ---------------------------------------------------------------------------
// POST /api/v1/pipeline
// ---------------------------------------------------------------------------

func TestRunPipeline_Success(t *testing.T) {
	var gotReq pipeline.Request
	srv := newTestServer(Services{Pipeline: &mockPipeline{
		runFn: func(_ context.Context, req pipeline.Request) (*pipeline.Result, error) {
			gotReq = req
			return &pipeline.Result{
				Papers:      []domain.Paper{{Title: "P", Summary: "s", Year: 2024}},
				PaperSource: domain.SourceTypeArXiv,
				FilteredVenues: []domain.Venue{
					{Name: "ICML", RelevanceScore: 2},
				},
				Ideas: []string{"1", "2", "3", "4", "5"},
			}, nil
		},
	}})

	rr := doPost(t, srv, "/api/v1/pipeline", map[string]any{
		"question": "federated learning privacy",
		"domain":   "federated learning",
		"venues":   []map[string]any{{"name": "ICML", "description": "machine learning"}},
		"limit":    4,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotReq.Question != "federated learning privacy" || gotReq.Domain != "federated learning" || gotReq.Limit != 4 {
		t.Errorf("unexpected request %+v", gotReq)
	}
	if len(gotReq.Venues) != 1 || gotReq.Venues[0].Description != "machine learning" {
		t.Errorf("unexpected venues %+v", gotReq.Venues)
	}

	var body map[string]any
	decodeBody(t, rr, &body)
	if body["paper_source"] != "arxiv" {
		t.Errorf("expected paper_source arxiv, got %v", body["paper_source"])
	}
	for _, key := range []string{"papers", "filtered_venues", "filtered_papers", "ideas"} {
		if _, ok := body[key]; !ok {
			t.Errorf("response missing %q", key)
		}
	}
}

func TestRunPipeline_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.NewValidationError("question", "is required"), http.StatusBadRequest},
		{"unavailable", domain.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(Services{Pipeline: &mockPipeline{
				runFn: func(context.Context, pipeline.Request) (*pipeline.Result, error) {
					return nil, tt.err
				},
			}})

			rr := doPost(t, srv, "/api/v1/pipeline", map[string]any{"question": "q"})

			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
			if tt.want == http.StatusInternalServerError {
				if msg := errorMessage(t, rr); msg != "internal server error" {
					t.Errorf("internal error leaked: %q", msg)
				}
			}
		})
	}
}

func TestRunPipeline_BlankQuestion(t *testing.T) {
	srv := newTestServer(Services{})

	rr := doPost(t, srv, "/api/v1/pipeline", map[string]any{"question": ""})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(Services{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/generate", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
