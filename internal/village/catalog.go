// Package village holds the tables fictional village scenarios are drawn from
// and the random generators built on them.
package village

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry is a keyed catalog line, e.g. a biome and its base instruction.
type Entry struct {
	Key  string `yaml:"key" json:"key"`
	Text string `yaml:"text" json:"text"`
}

// Option is one front-end dropdown choice.
type Option struct {
	Value       string `yaml:"value" json:"value"`
	Label       string `yaml:"label" json:"label"`
	Description string `yaml:"description" json:"description"`
}

// Options are the dropdown lists offered by the chat front end.
type Options struct {
	Choices       []Option `yaml:"choices" json:"choices"`
	Biomes        []Option `yaml:"biomes" json:"biomes"`
	Features      []Option `yaml:"features" json:"features"`
	Constrictions []Option `yaml:"constrictions" json:"constrictions"`
	TextStyles    []Option `yaml:"text_styles" json:"textStyles"`
}

// Catalog is the full set of scenario tables.
type Catalog struct {
	Biomes       []Entry  `yaml:"biomes"`
	Features     []string `yaml:"features"`
	Cultures     []Entry  `yaml:"cultures"`
	Styles       []string `yaml:"styles"`
	UserPrompts  []string `yaml:"user_prompts"`
	Environments []Entry  `yaml:"environments"`
	Names        []string `yaml:"village_names"`
	Instructions []string `yaml:"instructions"`
	Options      Options  `yaml:"options"`
}

// LoadCatalog reads a YAML catalog from path. Tables missing from the file
// keep their DefaultCatalog values. An empty path returns DefaultCatalog.
func LoadCatalog(path string) (*Catalog, error) {
	c := DefaultCatalog()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var file Catalog
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	c.merge(&file)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

func (c *Catalog) merge(o *Catalog) {
	if len(o.Biomes) > 0 {
		c.Biomes = o.Biomes
	}
	if len(o.Features) > 0 {
		c.Features = o.Features
	}
	if len(o.Cultures) > 0 {
		c.Cultures = o.Cultures
	}
	if len(o.Styles) > 0 {
		c.Styles = o.Styles
	}
	if len(o.UserPrompts) > 0 {
		c.UserPrompts = o.UserPrompts
	}
	if len(o.Environments) > 0 {
		c.Environments = o.Environments
	}
	if len(o.Names) > 0 {
		c.Names = o.Names
	}
	if len(o.Instructions) > 0 {
		c.Instructions = o.Instructions
	}
	if len(o.Options.Choices) > 0 {
		c.Options.Choices = o.Options.Choices
	}
	if len(o.Options.Biomes) > 0 {
		c.Options.Biomes = o.Options.Biomes
	}
	if len(o.Options.Features) > 0 {
		c.Options.Features = o.Options.Features
	}
	if len(o.Options.Constrictions) > 0 {
		c.Options.Constrictions = o.Options.Constrictions
	}
	if len(o.Options.TextStyles) > 0 {
		c.Options.TextStyles = o.Options.TextStyles
	}
}

// Validate checks keyed tables for well-formed, unique keys.
func (c *Catalog) Validate() error {
	for name, entries := range map[string][]Entry{
		"biomes":       c.Biomes,
		"cultures":     c.Cultures,
		"environments": c.Environments,
	} {
		seen := make(map[string]bool, len(entries))
		for _, e := range entries {
			if err := ValidateKey(e.Key); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if seen[e.Key] {
				return fmt.Errorf("%s: %w: %q", name, ErrKeyDuplicate, e.Key)
			}
			seen[e.Key] = true
		}
	}
	return nil
}

// Biome returns the biome entry for key.
func (c *Catalog) Biome(key string) (Entry, bool) {
	return lookup(c.Biomes, key)
}

// Culture returns the culture entry for key.
func (c *Catalog) Culture(key string) (Entry, bool) {
	return lookup(c.Cultures, key)
}

func lookup(entries []Entry, key string) (Entry, bool) {
	for _, e := range entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// DefaultCatalog returns the built-in tables.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Biomes: []Entry{
			{"volcanic", "Village built inside dormant lava tubes with obsidian agriculture"},
			{"arctic", "Settlement on glacial back of migrating ice worms"},
			{"aerial", "Cloud-condenser towers powering floating markets"},
			{"desert", "Oasis city with solar collectors and water recycling"},
			{"jungle", "City of pyramids with solar collectors and water recycling"},
			{"ocean", "City of pyramids with solar collectors and water recycling"},
			{"tropical", "City of pyramids with solar collectors and water recycling"},
			{"urban", "City of pyramids with solar collectors and water recycling"},
			{"subterranean", "City of pyramids with solar collectors and water recycling"},
		},
		Features: []string{
			"Village where all architecture is alive and growing",
			"Settlement built around a machine that slows time",
			"Community that communicates through scent instead of speech",
			"City of pyramids with solar collectors and water recycling",
			"City with gates and merchant guilds",
		},
		Cultures: []Entry{
			{"matriarchal", "Female-led society with moon-phase governance"},
			{"ancestor-worship", "Bodies preserved as interactive statues"},
			{"tech-rejecting", "Allergy to electromagnetic fields"},
			{"nomadic", "Nomadic society with seasonal migrations"},
			{"hierarchical", "Hierarchical society with a single leader"},
			{"egalitarian", "Egalitarian society with a council of elders"},
			{"utopian", "Utopian society with a single leader"},
			{"dystopian", "Dystopian society with a single leader"},
		},
		Styles: []string{
			"In the verbose, metaphor-rich style of China Miéville",
			"As a cynical merchant's trade report",
			"Like a children's fable with dark undertones",
			"Academic anthropology paper from 2147",
			"Haiku-like brevity with vivid nature imagery",
		},
		UserPrompts: []string{
			"Give me a description of coludy village",
			"Describe the most unique architectural feature village of the dead",
			"How do people here make their living in this great town?",
			"What are the most important cultural traditions here?",
			"Describe a typical festival or celebration in this society",
			"Storm willage with faries",
			"How do they handle resource distribution and trade?",
			"What are their relationships with neighboring societies like?",
			"Describe their technological innovations",
			"What are their spiritual or religious practices?",
			"How do they educate their young?",
			"Village sand stone",
			"Village water sho",
		},
		Environments: []Entry{
			{"harsh", "Harsh windy environment"},
			{"sunny", "Sunny and warm environment"},
			{"rainy", "Rainy and cool environment"},
			{"snowy", "Snowy and cold environment"},
			{"desert", "Desert and hot enviroment"},
			{"jungle", "Jungle and humid enviroment"},
			{"swamp", "Swamp and wet enviroment"},
			{"mountain", "Mountain and cold enviroment"},
		},
		Names: []string{
			"Amber", "Breeze", "Cascade", "Dawn", "Ember", "Fable", "Gale",
			"Harmony", "Ivy", "Jade", "Kestrel", "Lark", "Meadow", "Nest",
			"Orion", "Pine", "Quartz", "Ridge", "Serengeti", "Terra",
			"Utopia", "Vale", "Wisteria", "Xanadu", "Yggdrasil", "Zephyr",
		},
		Instructions: []string{
			"Create a village name that is a combination of the following words: ",
			"Create chaotic village",
			"Create peaceful village",
			"Create rich village",
			"Create poor village",
			"Create small village",
			"Create large village",
			"Create village with a lot of trees",
			"Create village with a lot of water",
			"Create village with a lot of animals",
			"Create village with a lot of plants",
			"Create village with a lot of minerals",
			"Create village with a lot of gold",
			"Create village with a lot of silver",
			"Create village with a lot of diamonds",
		},
		Options: Options{
			Choices: []Option{
				{"NPC", "NPC", "Generate a detailed non-player character"},
				{"Village", "Village", "Create a small settlement with its inhabitants"},
				{"Town", "Town", "Design a larger settlement with various districts"},
				{"Lore", "Lore", "Generate world-building lore and history"},
				{"Quest", "Quest", "Create an adventure quest with objectives"},
				{"Dungeon", "Dungeon", "Design a dungeon layout with encounters"},
				{"Shop", "Shop", "Generate a merchant establishment"},
				{"Tavern", "Tavern", "Create a social gathering place"},
			},
			Biomes: []Option{
				{"Forest", "Forest", "Wooded area with various trees"},
				{"Desert", "Desert", "Arid, sandy environment"},
				{"Mountain", "Mountain", "Rocky, elevated terrain"},
				{"Swamp", "Swamp", "Wet, marshy area"},
				{"Tundra", "Tundra", "Cold, frozen landscape"},
				{"Jungle", "Jungle", "Dense, tropical vegetation"},
				{"Plains", "Plains", "Open, grassy area"},
			},
			Features: []Option{
				{"Ancient", "Ancient", "Historical or aged elements"},
				{"Magical", "Magical", "Supernatural or enchanted aspects"},
				{"Dangerous", "Dangerous", "Hazardous or threatening elements"},
				{"Peaceful", "Peaceful", "Calm, tranquil atmosphere"},
				{"Secret", "Secret", "Hidden or concealed elements"},
				{"Sacred", "Sacred", "Religious or holy aspects"},
			},
			Constrictions: []Option{
				{"No Wind", "No Wind", "Environment without wind effects"},
				{"No Sand", "No Sand", "Location without sand or desert elements"},
				{"No People", "No People", "Area devoid of humanoid presence"},
				{"No Water", "No Water", "Setting without water sources"},
				{"No Magic", "No Magic", "Non-magical environment"},
				{"No Light", "No Light", "Dark or dimly lit area"},
				{"No Sound", "No Sound", "Silent or soundless environment"},
			},
			TextStyles: []Option{
				{"Descriptive", "Descriptive", "Detailed, vivid descriptions"},
				{"Concise", "Concise", "Brief, to-the-point writing"},
				{"Poetic", "Poetic", "Flowery, lyrical language"},
				{"Technical", "Technical", "Precise, mechanical details"},
				{"Mysterious", "Mysterious", "Enigmatic, cryptic tone"},
				{"Humorous", "Humorous", "Light-hearted, funny style"},
			},
		},
	}
}
