package batch_test

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/joestump/village-forge/internal/batch"
	"github.com/joestump/village-forge/internal/llm"
	"github.com/joestump/village-forge/internal/prompt"
	"github.com/joestump/village-forge/internal/store"
	"github.com/joestump/village-forge/internal/testutil"
	"github.com/joestump/village-forge/internal/village"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeGenerator answers every prompt, failing the calls listed in failOn
// (1-based call order).
type fakeGenerator struct {
	calls   atomic.Int32
	failOn  map[int32]bool
	mu      sync.Mutex
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, p string, _ llm.Sampling) (string, error) {
	n := f.calls.Add(1)
	f.mu.Lock()
	f.prompts = append(f.prompts, p)
	f.mu.Unlock()
	if f.failOn[n] {
		return "", errors.New("model server returned 503")
	}
	return "A village of salt and smoke.", nil
}

// blockingGenerator waits for the context to end.
type blockingGenerator struct{}

func (blockingGenerator) Generate(ctx context.Context, _ string, _ llm.Sampling) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func newRunner(t *testing.T, gen llm.Generator, st store.GenerationStoreIface, opts batch.Options) *batch.Runner {
	t.Helper()
	c := village.DefaultCatalog()
	scenarios := village.NewGenerator(c, rand.New(rand.NewPCG(3, 4)))
	if opts.OutputDir == "" {
		opts.OutputDir = t.TempDir()
	}
	return batch.NewRunner(gen, st, c, scenarios, opts, nil)
}

func TestRun_CountsSuccessesAndFailures(t *testing.T) {
	gen := &fakeGenerator{failOn: map[int32]bool{2: true, 4: true}}
	dir := t.TempDir()
	r := newRunner(t, gen, nil, batch.Options{Count: 5, OutputDir: dir})

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.TotalAttempts != 5 {
		t.Errorf("total_attempts = %d, want 5", res.TotalAttempts)
	}
	if res.SuccessfulGenerations != 3 {
		t.Errorf("successful = %d, want 3", res.SuccessfulGenerations)
	}
	if res.FailedGenerations != 2 {
		t.Errorf("failed = %d, want 2", res.FailedGenerations)
	}
	if len(res.Generations) != 5 {
		t.Fatalf("generations = %d, want 5", len(res.Generations))
	}
	for i, g := range res.Generations {
		if g.GenerationNumber != i+1 {
			t.Errorf("generations[%d].generation_number = %d, want %d", i, g.GenerationNumber, i+1)
		}
		if !strings.HasSuffix(g.GenerationTime, "s") {
			t.Errorf("generation_time = %q, want seconds suffix", g.GenerationTime)
		}
		if g.Success == (g.Error != "") {
			t.Errorf("generation %d: success = %v with error %q", g.GenerationNumber, g.Success, g.Error)
		}
	}
}

func TestRun_PromptsCarryScenario(t *testing.T) {
	gen := &fakeGenerator{}
	r := newRunner(t, gen, nil, batch.Options{Count: 3})

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, g := range res.Generations {
		if g.SystemData == nil {
			t.Fatalf("generation %d has no system data", g.GenerationNumber)
		}
		f := prompt.Parse(g.FormattedPrompt)
		if f.Message != g.UserPrompt {
			t.Errorf("message = %q, want user prompt %q", f.Message, g.UserPrompt)
		}
		if f.TextStyle != g.SystemData.Style {
			t.Errorf("text style = %q, want %q", f.TextStyle, g.SystemData.Style)
		}
		if !strings.HasPrefix(f.Biome, g.SystemData.Biome) {
			t.Errorf("biome = %q, want prefix %q", f.Biome, g.SystemData.Biome)
		}
	}
}

func TestRun_WritesResultFiles(t *testing.T) {
	dir := t.TempDir()
	r := newRunner(t, &fakeGenerator{}, nil, batch.Options{Count: 2, OutputDir: dir})

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, status := range []string{"intermediate", "final"} {
		matches, err := filepath.Glob(filepath.Join(dir, "response-agent_*_"+status+".json"))
		if err != nil {
			t.Fatal(err)
		}
		if len(matches) != 1 {
			t.Fatalf("%s files = %v, want exactly one", status, matches)
		}
		data, err := os.ReadFile(matches[0])
		if err != nil {
			t.Fatal(err)
		}
		var doc struct {
			TotalAttempts         int               `json:"total_attempts"`
			SuccessfulGenerations int               `json:"successful_generations"`
			Generations           []json.RawMessage `json:"generations"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("decode %s: %v", matches[0], err)
		}
		if doc.TotalAttempts != 2 {
			t.Errorf("%s total_attempts = %d, want 2", status, doc.TotalAttempts)
		}
		if status == "final" && doc.SuccessfulGenerations != 2 {
			t.Errorf("final successful_generations = %d, want 2", doc.SuccessfulGenerations)
		}
	}
}

func TestRun_Concurrent(t *testing.T) {
	gen := &fakeGenerator{failOn: map[int32]bool{1: true}}
	r := newRunner(t, gen, nil, batch.Options{Count: 8, Concurrency: 4})

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := res.SuccessfulGenerations + res.FailedGenerations; got != 8 {
		t.Errorf("finished = %d, want 8", got)
	}
	if res.FailedGenerations != 1 {
		t.Errorf("failed = %d, want 1", res.FailedGenerations)
	}
	if n := gen.calls.Load(); n != 8 {
		t.Errorf("generator calls = %d, want 8", n)
	}
}

func TestRun_Paced(t *testing.T) {
	interval := 30 * time.Millisecond
	r := newRunner(t, &fakeGenerator{}, nil, batch.Options{Count: 3, Interval: interval})

	start := time.Now()
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// The first start is immediate, the next two wait one interval each.
	if elapsed := time.Since(start); elapsed < 2*interval {
		t.Errorf("elapsed = %v, want at least %v", elapsed, 2*interval)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	r := newRunner(t, blockingGenerator{}, nil, batch.Options{Count: 3, Interval: time.Hour})
	res, err := r.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
	if res.SuccessfulGenerations != 0 {
		t.Errorf("successful = %d, want 0", res.SuccessfulGenerations)
	}
	if res.FailedGenerations != 1 {
		t.Errorf("failed = %d, want 1", res.FailedGenerations)
	}
}

func TestRun_RecordsToStore(t *testing.T) {
	gs := store.NewGenerationStore(testutil.NewTestDB(t))
	gen := &fakeGenerator{failOn: map[int32]bool{3: true}}
	r := newRunner(t, gen, gs, batch.Options{Count: 3})

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	stats, err := gs.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 || stats.Succeeded != 2 || stats.Failed != 1 {
		t.Errorf("stats = %+v, want 3 total, 2 succeeded, 1 failed", stats)
	}
	if stats.BySource[store.SourceBatch] != 3 {
		t.Errorf("batch source count = %d, want 3", stats.BySource[store.SourceBatch])
	}

	for _, g := range res.Generations {
		if g.ID == "" {
			t.Fatalf("generation %d has no stored id", g.GenerationNumber)
		}
		stored, err := gs.Get(context.Background(), g.ID)
		if err != nil {
			t.Fatalf("Get(%s): %v", g.ID, err)
		}
		if stored.FormattedPrompt != g.FormattedPrompt {
			t.Errorf("stored prompt differs for generation %d", g.GenerationNumber)
		}
		if stored.SystemMessage != g.SystemData.SystemMessage {
			t.Errorf("stored system message differs for generation %d", g.GenerationNumber)
		}
	}
}

func TestScenarioFields(t *testing.T) {
	c := village.DefaultCatalog()
	biome := c.Biomes[0]
	culture := c.Cultures[0]
	sc := village.Scenario{
		Biome:         biome.Key,
		Features:      []string{"a", "b"},
		Cultures:      []string{culture.Key, "unknown-culture"},
		Style:         "Terse",
		SystemMessage: prompt.BuildSystemMessage(biome.Text, []string{"a", "b"}, []string{culture.Text}, "Terse"),
	}

	f := batch.ScenarioFields(c, sc, "Tell me about this society")
	want := prompt.Fields{
		Choice:       "Describe a village",
		Biome:        biome.Key + ": " + biome.Text,
		Features:     "a; b",
		Constriction: culture.Text + " unknown-culture",
		TextStyle:    "Terse",
		Message:      "Tell me about this society",
	}
	if f != want {
		t.Errorf("ScenarioFields = %+v, want %+v", f, want)
	}
}
