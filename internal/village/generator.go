package village

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/joestump/village-forge/internal/prompt"
)

// Scenario is one randomly drawn village setting.
type Scenario struct {
	Biome         string   `json:"biome"`
	Features      []string `json:"features"`
	Cultures      []string `json:"cultures"`
	Style         string   `json:"style"`
	SystemMessage string   `json:"full_message"`
}

// DatasetRecord is one instruction-tuning example.
type DatasetRecord struct {
	Instructions string `json:"instructions"`
	Input        string `json:"input"`
	Output       string `json:"output"`
}

// Generator draws scenarios from a Catalog. It is not safe for concurrent
// use because the underlying *rand.Rand is not.
type Generator struct {
	catalog *Catalog
	rng     *rand.Rand
}

// NewGenerator returns a Generator over c. A nil rng uses a randomly seeded
// source.
func NewGenerator(c *Catalog, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{catalog: c, rng: rng}
}

// RandomScenario picks a biome, one or two features, one or two cultures and
// a style, and builds the matching system message.
func (g *Generator) RandomScenario() (Scenario, error) {
	c := g.catalog
	if len(c.Biomes) == 0 || len(c.Styles) == 0 {
		return Scenario{}, fmt.Errorf("catalog needs at least one biome and one style")
	}

	biome := c.Biomes[g.rng.IntN(len(c.Biomes))]
	features := sample(g.rng, c.Features, 1+g.rng.IntN(2))
	cultures := sample(g.rng, c.Cultures, 1+g.rng.IntN(2))
	style := c.Styles[g.rng.IntN(len(c.Styles))]

	cultureKeys := make([]string, len(cultures))
	constraints := make([]string, len(cultures))
	for i, e := range cultures {
		cultureKeys[i] = e.Key
		constraints[i] = e.Text
	}

	return Scenario{
		Biome:         biome.Key,
		Features:      features,
		Cultures:      cultureKeys,
		Style:         style,
		SystemMessage: prompt.BuildSystemMessage(biome.Text, features, constraints, style),
	}, nil
}

// RandomUserPrompt picks one of the catalog's user prompts.
func (g *Generator) RandomUserPrompt() string {
	if len(g.catalog.UserPrompts) == 0 {
		return ""
	}
	return g.catalog.UserPrompts[g.rng.IntN(len(g.catalog.UserPrompts))]
}

// DatasetRecords draws n records pairing a random instruction with a random
// village name and environment.
func (g *Generator) DatasetRecords(n int) []DatasetRecord {
	c := g.catalog
	out := make([]DatasetRecord, 0, n)
	if len(c.Instructions) == 0 || len(c.Names) == 0 || len(c.Environments) == 0 {
		return out
	}
	for range n {
		out = append(out, DatasetRecord{
			Instructions: c.Instructions[g.rng.IntN(len(c.Instructions))],
			Output:       c.Names[g.rng.IntN(len(c.Names))] + " " + c.Environments[g.rng.IntN(len(c.Environments))].Text,
		})
	}
	return out
}

// WriteDataset writes records as an indented JSON array.
func WriteDataset(w io.Writer, records []DatasetRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	return nil
}

// sample returns up to k distinct elements of src in random order.
func sample[T any](rng *rand.Rand, src []T, k int) []T {
	if k > len(src) {
		k = len(src)
	}
	idx := rng.Perm(len(src))[:k]
	out := make([]T, k)
	for i, j := range idx {
		out[i] = src[j]
	}
	return out
}
