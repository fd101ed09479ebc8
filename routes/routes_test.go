package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shoplens/assistant-proxy/app"
	"github.com/shoplens/assistant-proxy/config"
	"github.com/shoplens/assistant-proxy/services/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// upstreamStub fakes the generative-language endpoint and counts calls.
type upstreamStub struct {
	server *httptest.Server
	calls  int
	text   string
	status int
}

func newUpstreamStub(text string) *upstreamStub {
	stub := &upstreamStub{text: text, status: http.StatusOK}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.calls++
		if stub.status != http.StatusOK {
			w.WriteHeader(stub.status)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream detail"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(providers.GenerateResponse{
			Candidates: []providers.Candidate{
				{Content: providers.CandidateContent{Parts: []providers.Part{{Text: stub.text}}}},
			},
		})
	}))
	return stub
}

func testConfig(baseURL, apiKey string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "localhost",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Gemini: config.GeminiConfig{
			APIKey:  apiKey,
			BaseURL: baseURL,
			Model:   "gemini-2.0-flash",
			Timeout: 5 * time.Second,
		},
		Observability: config.ObservabilityConfig{LogLevel: "info", LogFormat: "json"},
		FrontEndURL:   "http://localhost:5173",
		Environment:   "test",
	}
}

func newTestRouter(t *testing.T, stub *upstreamStub, apiKey string) http.Handler {
	t.Helper()

	deps := app.NewDependencies(testConfig(stub.server.URL, apiKey), zap.NewNop())
	return SetupRoutes(deps)
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	stub := newUpstreamStub("")
	defer stub.server.Close()
	router := newTestRouter(t, stub, "test-key")

	rec := doRequest(router, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestAssist_NonPOSTMethods(t *testing.T) {
	stub := newUpstreamStub("")
	defer stub.server.Close()
	router := newTestRouter(t, stub, "test-key")

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			rec := doRequest(router, method, "/api/assist", "")

			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Contains(t, rec.Body.String(), "Only POST is supported")
		})
	}

	assert.Equal(t, 0, stub.calls, "non-POST requests must not reach the provider")
}

func TestAssist_MissingCredential(t *testing.T) {
	stub := newUpstreamStub("")
	defer stub.server.Close()
	router := newTestRouter(t, stub, "")

	rec := doRequest(router, http.MethodPost, "/api/assist",
		`{"action":"summarize","payload":{"product":{"name":"Desk"}}}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Server is misconfigured")
	assert.Equal(t, 0, stub.calls, "missing credential must short-circuit before the provider")
}

func TestAssist_UnknownAction(t *testing.T) {
	stub := newUpstreamStub("")
	defer stub.server.Close()
	router := newTestRouter(t, stub, "test-key")

	rec := doRequest(router, http.MethodPost, "/api/assist",
		`{"action":"translate","payload":{}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "translate")
	assert.Equal(t, 0, stub.calls)
}

func TestAssist_SummarizeFlow(t *testing.T) {
	stub := newUpstreamStub("A friendly one-sentence summary.")
	defer stub.server.Close()
	router := newTestRouter(t, stub, "test-key")

	rec := doRequest(router, http.MethodPost, "/api/assist",
		`{"action":"summarize","payload":{"product":{"name":"Standing Desk","description":"Adjustable","specs":"120x60cm"}}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, stub.calls)

	var resp struct {
		Summary string `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "A friendly one-sentence summary.", resp.Summary)
}

func TestAssist_FilterFlow(t *testing.T) {
	stub := newUpstreamStub(`{"category":"Design & Creativity","keywords":["sketching","tablet"]}`)
	defer stub.server.Close()
	router := newTestRouter(t, stub, "test-key")

	rec := doRequest(router, http.MethodPost, "/api/assist",
		`{"action":"filter","payload":{"chatHistory":[{"role":"user","text":"hi"}],"userMessage":"I need a sketching tablet"}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, stub.calls)

	var resp struct {
		AIResponseObject struct {
			Category string   `json:"category"`
			Keywords []string `json:"keywords"`
		} `json:"aiResponseObject"`
		ModelChatMessage string `json:"modelChatMessage"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Design & Creativity", resp.AIResponseObject.Category)
	assert.Equal(t, []string{"sketching", "tablet"}, resp.AIResponseObject.Keywords)
	assert.Contains(t, resp.ModelChatMessage, "Design & Creativity")
}

func TestAssist_SuggestFlow(t *testing.T) {
	stub := newUpstreamStub(`{"recommendedId":2}`)
	defer stub.server.Close()
	router := newTestRouter(t, stub, "test-key")

	rec := doRequest(router, http.MethodPost, "/api/assist",
		`{"action":"suggest","payload":{"userInput":"something for travel","products":[{"id":1,"name":"Desk"},{"id":2,"name":"Laptop Stand"}]}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, stub.calls)

	var resp struct {
		RecommendedProduct *struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"recommendedProduct"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.RecommendedProduct)
	assert.Equal(t, int64(2), resp.RecommendedProduct.ID)
	assert.Equal(t, "Laptop Stand", resp.RecommendedProduct.Name)
}

func TestAssist_UpstreamErrorStaysGeneric(t *testing.T) {
	stub := newUpstreamStub("")
	stub.status = http.StatusTooManyRequests
	defer stub.server.Close()
	router := newTestRouter(t, stub, "test-key")

	rec := doRequest(router, http.MethodPost, "/api/assist",
		`{"action":"summarize","payload":{"product":{"name":"Desk"}}}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, stub.calls, "exactly one outbound call, no retries")
	assert.Contains(t, rec.Body.String(), "Upstream request failed")
	assert.NotContains(t, rec.Body.String(), "upstream detail")
	assert.NotContains(t, rec.Body.String(), "429")
}

func TestAssist_RequestIDEchoed(t *testing.T) {
	stub := newUpstreamStub("ok")
	defer stub.server.Close()
	router := newTestRouter(t, stub, "test-key")

	req := httptest.NewRequest(http.MethodPost, "/api/assist",
		bytes.NewBufferString(`{"action":"summarize","payload":{"product":{"name":"Desk"}}}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "test-request-id")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "test-request-id", rec.Header().Get("X-Request-ID"))
}

func TestNotFound(t *testing.T) {
	stub := newUpstreamStub("")
	defer stub.server.Close()
	router := newTestRouter(t, stub, "test-key")

	rec := doRequest(router, http.MethodPost, "/api/unknown", `{}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestCORSPreflight(t *testing.T) {
	stub := newUpstreamStub("")
	defer stub.server.Close()
	router := newTestRouter(t, stub, "test-key")

	req := httptest.NewRequest(http.MethodOptions, "/api/assist", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
