package notify

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"kesho/internal/cache"
)

//go:embed keywords.yaml
var embeddedKeywords []byte

// DefaultCategory is used when no keyword matches and the table names none.
const DefaultCategory = "Food & Groceries"

// payeeCacheSize bounds the memo of payee lookups. Previews run per
// keystroke and the same few merchants recur all month.
const payeeCacheSize = 512

// Rule maps a payee substring to a category name.
type Rule struct {
	Keyword  string `yaml:"keyword"`
	Category string `yaml:"category"`
}

// KeywordTable is the YAML document shape.
type KeywordTable struct {
	Default string `yaml:"default"`
	Rules   []Rule `yaml:"rules"`
}

// Categorizer infers a category from a payee. Rules are tried in file order
// and the first match wins, not the longest.
type Categorizer struct {
	fallback string
	rules    []Rule
	memo     *cache.LRU[string]
}

// NewCategorizer builds a categorizer from a YAML keyword table.
func NewCategorizer(data []byte) (*Categorizer, error) {
	var table KeywordTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse keyword table: %w", err)
	}
	rules := make([]Rule, 0, len(table.Rules))
	for i, r := range table.Rules {
		keyword := strings.ToUpper(strings.TrimSpace(r.Keyword))
		if keyword == "" {
			return nil, fmt.Errorf("rule %d: keyword cannot be empty", i)
		}
		category := strings.TrimSpace(r.Category)
		if category == "" {
			return nil, fmt.Errorf("rule %d (%s): category cannot be empty", i, keyword)
		}
		rules = append(rules, Rule{Keyword: keyword, Category: category})
	}
	fallback := strings.TrimSpace(table.Default)
	if fallback == "" {
		fallback = DefaultCategory
	}
	return &Categorizer{fallback: fallback, rules: rules, memo: cache.NewLRU[string](payeeCacheSize)}, nil
}

// LoadEmbedded returns the built-in Kenyan merchant table.
func LoadEmbedded() (*Categorizer, error) {
	c, err := NewCategorizer(embeddedKeywords)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded keywords: %w", err)
	}
	return c, nil
}

// LoadFromFile reads a keyword table from disk.
func LoadFromFile(path string) (*Categorizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keywords file: %w", err)
	}
	c, err := NewCategorizer(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load keywords from %q: %w", path, err)
	}
	return c, nil
}

// Load uses path when set, otherwise the embedded table.
func Load(path string) (*Categorizer, error) {
	if path == "" {
		return LoadEmbedded()
	}
	return LoadFromFile(path)
}

func (c *Categorizer) Categorize(payee string) string {
	upper := strings.ToUpper(payee)
	return c.memo.GetOrCompute(upper, func() string {
		for _, r := range c.rules {
			if strings.Contains(upper, r.Keyword) {
				return r.Category
			}
		}
		return c.fallback
	})
}

// CacheStats reports how often payee lookups were served from the memo.
func (c *Categorizer) CacheStats() cache.Stats {
	return c.memo.Stats()
}

// Rules returns a copy of the table in match order.
func (c *Categorizer) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

func (c *Categorizer) Default() string {
	return c.fallback
}
