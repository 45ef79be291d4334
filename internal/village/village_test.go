package village_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joestump/village-forge/internal/prompt"
	"github.com/joestump/village-forge/internal/village"
)

func newTestGenerator(t *testing.T, c *village.Catalog) *village.Generator {
	t.Helper()
	return village.NewGenerator(c, rand.New(rand.NewPCG(1, 2)))
}

func TestValidateKey(t *testing.T) {
	valid := []string{"volcanic", "ancestor-worship", "a", "zone-51"}
	for _, k := range valid {
		if err := village.ValidateKey(k); err != nil {
			t.Errorf("ValidateKey(%q) = %v, want nil", k, err)
		}
	}

	tests := []struct {
		key  string
		want error
	}{
		{"", village.ErrKeyEmpty},
		{"Volcanic", village.ErrKeyFormat},
		{"-arctic", village.ErrKeyFormat},
		{"arctic-", village.ErrKeyFormat},
		{"tech rejecting", village.ErrKeyFormat},
	}
	for _, tc := range tests {
		if err := village.ValidateKey(tc.key); !errors.Is(err, tc.want) {
			t.Errorf("ValidateKey(%q) = %v, want %v", tc.key, err, tc.want)
		}
	}
}

func TestDefaultCatalog_Valid(t *testing.T) {
	if err := village.DefaultCatalog().Validate(); err != nil {
		t.Fatalf("default catalog invalid: %v", err)
	}
}

func TestRandomScenario(t *testing.T) {
	c := village.DefaultCatalog()
	g := newTestGenerator(t, c)

	for i := 0; i < 50; i++ {
		s, err := g.RandomScenario()
		if err != nil {
			t.Fatalf("RandomScenario: %v", err)
		}

		biome, ok := c.Biome(s.Biome)
		if !ok {
			t.Fatalf("unknown biome %q", s.Biome)
		}
		if n := len(s.Features); n < 1 || n > 2 {
			t.Errorf("features = %d, want 1 or 2", n)
		}
		if n := len(s.Cultures); n < 1 || n > 2 {
			t.Errorf("cultures = %d, want 1 or 2", n)
		}
		if len(s.Features) == 2 && s.Features[0] == s.Features[1] {
			t.Errorf("duplicate feature %q", s.Features[0])
		}

		constraints := make([]string, len(s.Cultures))
		for j, key := range s.Cultures {
			e, ok := c.Culture(key)
			if !ok {
				t.Fatalf("unknown culture %q", key)
			}
			constraints[j] = e.Text
		}
		want := prompt.BuildSystemMessage(biome.Text, s.Features, constraints, s.Style)
		if s.SystemMessage != want {
			t.Errorf("SystemMessage = %q, want %q", s.SystemMessage, want)
		}
	}
}

func TestRandomScenario_EmptyCatalog(t *testing.T) {
	g := newTestGenerator(t, &village.Catalog{})
	if _, err := g.RandomScenario(); err == nil {
		t.Fatal("expected error for empty catalog")
	}
	if p := g.RandomUserPrompt(); p != "" {
		t.Errorf("RandomUserPrompt = %q, want empty", p)
	}
}

func TestRandomScenario_Deterministic(t *testing.T) {
	a := village.NewGenerator(village.DefaultCatalog(), rand.New(rand.NewPCG(7, 7)))
	b := village.NewGenerator(village.DefaultCatalog(), rand.New(rand.NewPCG(7, 7)))
	sa, _ := a.RandomScenario()
	sb, _ := b.RandomScenario()
	if sa.SystemMessage != sb.SystemMessage {
		t.Errorf("same seed produced different scenarios:\n%q\n%q", sa.SystemMessage, sb.SystemMessage)
	}
}

func TestDatasetRecords(t *testing.T) {
	c := village.DefaultCatalog()
	g := newTestGenerator(t, c)

	records := g.DatasetRecords(100)
	if len(records) != 100 {
		t.Fatalf("len = %d, want 100", len(records))
	}
	for _, r := range records {
		if r.Input != "" {
			t.Errorf("Input = %q, want empty", r.Input)
		}
		name, env, ok := strings.Cut(r.Output, " ")
		if !ok || name == "" || env == "" {
			t.Errorf("Output = %q, want \"<name> <environment>\"", r.Output)
		}
	}

	var buf bytes.Buffer
	if err := village.WriteDataset(&buf, records[:2]); err != nil {
		t.Fatalf("WriteDataset: %v", err)
	}
	var decoded []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 2 || decoded[0]["instructions"] == "" {
		t.Errorf("decoded = %v", decoded)
	}
	if _, ok := decoded[0]["input"]; !ok {
		t.Error("input key missing from dataset record")
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `
biomes:
  - key: reef
    text: Coral terraces above a drowned city
styles:
  - Ship's log
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := village.LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(c.Biomes) != 1 || c.Biomes[0].Key != "reef" {
		t.Errorf("Biomes = %+v", c.Biomes)
	}
	if len(c.Styles) != 1 || c.Styles[0] != "Ship's log" {
		t.Errorf("Styles = %v", c.Styles)
	}
	if len(c.Cultures) != len(village.DefaultCatalog().Cultures) {
		t.Errorf("Cultures not defaulted: %d", len(c.Cultures))
	}
}

func TestLoadCatalog_InvalidKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := "cultures:\n  - key: Tech Rejecting\n    text: nope\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := village.LoadCatalog(path); !errors.Is(err, village.ErrKeyFormat) {
		t.Errorf("LoadCatalog = %v, want ErrKeyFormat", err)
	}
}

func TestLoadCatalog_DuplicateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := "biomes:\n  - key: reef\n    text: a\n  - key: reef\n    text: b\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := village.LoadCatalog(path); !errors.Is(err, village.ErrKeyDuplicate) {
		t.Errorf("LoadCatalog = %v, want ErrKeyDuplicate", err)
	}
}

func TestLoadCatalog_EmptyPath(t *testing.T) {
	c, err := village.LoadCatalog("")
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(c.Biomes) == 0 {
		t.Error("expected default biomes")
	}
}
