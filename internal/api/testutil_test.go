package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/joestump/village-forge/internal/api"
	"github.com/joestump/village-forge/internal/llm"
	"github.com/joestump/village-forge/internal/store"
	"github.com/joestump/village-forge/internal/testutil"
	"github.com/joestump/village-forge/internal/village"
)

// fakeGenerator records the prompts it receives and answers with response,
// or fails with err when set.
type fakeGenerator struct {
	mu       sync.Mutex
	prompts  []string
	response string
	err      error
	version  string
	versions int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, _ llm.Sampling) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeGenerator) Version(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.versions++
	if f.version == "" {
		return "", errors.New("connection refused")
	}
	return f.version, nil
}

func (f *fakeGenerator) lastPrompt(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		t.Fatal("generator was not called")
	}
	return f.prompts[len(f.prompts)-1]
}

// testEnv holds the router and the stores behind it.
type testEnv struct {
	Router    http.Handler
	Store     *store.GenerationStore
	Generator *fakeGenerator
}

// newTestEnv creates an in-memory SQLite test database, runs migrations,
// and wires up the full API router with a fake model.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gs := store.NewGenerationStore(testutil.NewTestDB(t))
	gen := &fakeGenerator{response: "Smoke curls from the chimneys.", version: "0.5.7"}

	router := api.NewRouter(api.Deps{
		Generator:    gen,
		Store:        gs,
		Catalog:      village.DefaultCatalog(),
		Sampling:     llm.DefaultSampling(),
		NullSentinel: true,
	})
	return &testEnv{Router: router, Store: gs, Generator: gen}
}

// do sends a request with an optional JSON body through the router.
func (env *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v; body: %s", err, rec.Body.String())
	}
}

func wantError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, status, rec.Body.String())
	}
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	decode(t, rec, &body)
	if body.Code != code {
		t.Errorf("code = %q, want %q", body.Code, code)
	}
	if body.Error == "" {
		t.Error("error message is empty")
	}
}

func httptestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serve(env *testEnv, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	return rec
}
