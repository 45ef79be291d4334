package api_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/joestump/village-forge/internal/prompt"
	"github.com/joestump/village-forge/internal/store"
)

// -- POST /generate --

func TestGenerate_OK(t *testing.T) {
	env := newTestEnv(t)
	fields := prompt.Fields{
		Choice:       "Describe a village",
		Biome:        "Snowy",
		Features:     "Fishing",
		Constriction: "Gnomes",
		TextStyle:    "Poetic",
		Message:      "Keep it short",
	}

	rec := env.do(t, http.MethodPost, "/generate", fields)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		ID       string `json:"id"`
		Success  bool   `json:"success"`
		Response string `json:"response"`
	}
	decode(t, rec, &resp)
	if !resp.Success {
		t.Error("success = false, want true")
	}
	if resp.Response != "Smoke curls from the chimneys." {
		t.Errorf("response = %q", resp.Response)
	}
	if got := env.Generator.lastPrompt(t); got != prompt.Compose(fields) {
		t.Errorf("prompt sent = %q, want %q", got, prompt.Compose(fields))
	}

	g, err := env.Store.Get(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("Get stored generation: %v", err)
	}
	if g.Source != store.SourceFields {
		t.Errorf("source = %q, want %q", g.Source, store.SourceFields)
	}
	if g.Biome != "Snowy" || !g.Success {
		t.Errorf("stored generation = %+v", g)
	}
}

func TestGenerate_BlanksNullSentinel(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/generate", prompt.Fields{Choice: "- null", Biome: "Desert"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	got := prompt.Parse(env.Generator.lastPrompt(t))
	if got.Choice != "" {
		t.Errorf("choice = %q, want empty", got.Choice)
	}
	if got.Biome != "Desert" {
		t.Errorf("biome = %q, want Desert", got.Biome)
	}
}

func TestGenerate_BadBody(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/generate", "{not json")
	wantError(t, rec, http.StatusBadRequest, "BAD_REQUEST")
}

func TestGenerate_ModelFailure(t *testing.T) {
	env := newTestEnv(t)
	env.Generator.err = errors.New("model server returned 503")

	rec := env.do(t, http.MethodPost, "/generate", prompt.Fields{Biome: "Swamp"})
	wantError(t, rec, http.StatusBadGateway, "LLM_ERROR")

	stats, err := env.Store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Failed != 1 {
		t.Errorf("failed = %d, want 1", stats.Failed)
	}
}

// -- POST /chat/generate --

func TestChatGenerate_OK(t *testing.T) {
	env := newTestEnv(t)
	system := "Choice:\n- Describe a tavern\n\nBiome:\n- Volcanic\n\nText Style:\n- Grim"

	rec := env.do(t, http.MethodPost, "/chat/generate", map[string]string{
		"prompt":         "Who drinks here?",
		"system_message": system,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success        bool   `json:"success"`
		Response       string `json:"response"`
		GenerationTime string `json:"generation_time"`
		Logs           struct {
			GenerationTime float64 `json:"generation_time"`
			Timestamp      string  `json:"timestamp"`
		} `json:"logs"`
	}
	decode(t, rec, &resp)
	if !resp.Success {
		t.Error("success = false")
	}
	if !strings.HasSuffix(resp.GenerationTime, "s") {
		t.Errorf("generation_time = %q, want seconds suffix", resp.GenerationTime)
	}
	if resp.Logs.Timestamp == "" {
		t.Error("logs.timestamp is empty")
	}

	want := prompt.Fields{
		Choice:    "Describe a tavern",
		Biome:     "Volcanic",
		TextStyle: "Grim",
		Message:   "Who drinks here?",
	}
	if got := prompt.Parse(env.Generator.lastPrompt(t)); got != want {
		t.Errorf("parsed prompt = %+v, want %+v", got, want)
	}
}

func TestChatGenerate_NullSentinel(t *testing.T) {
	env := newTestEnv(t)
	system := "Choice:\n- null\n\nBiome:\n- Arctic\n\nFeatures:\n- null"

	rec := env.do(t, http.MethodPost, "/chat/generate", map[string]string{
		"prompt":         "hello",
		"system_message": system,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	got := prompt.Parse(env.Generator.lastPrompt(t))
	if got.Choice != "" || got.Features != "" {
		t.Errorf("null settings were not blanked: %+v", got)
	}
	if got.Biome != "Arctic" {
		t.Errorf("biome = %q, want Arctic", got.Biome)
	}
}

func TestChatGenerate_MalformedSystemMessage(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/chat/generate", map[string]string{
		"prompt":         "anything",
		"system_message": "no headers at all",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
}

func TestChatGenerate_BadBody(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/chat/generate", `{"prompt": 12}`)
	wantError(t, rec, http.StatusBadRequest, "BAD_REQUEST")
}

func TestChatGenerate_ModelFailure(t *testing.T) {
	env := newTestEnv(t)
	env.Generator.err = errors.New("timeout")
	rec := env.do(t, http.MethodPost, "/chat/generate", map[string]string{"prompt": "x"})
	wantError(t, rec, http.StatusBadGateway, "LLM_ERROR")
}
