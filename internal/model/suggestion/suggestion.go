package suggestion

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed suggestions.yaml
var defaultFile []byte

type file struct {
	Questions []string `yaml:"questions" toml:"questions"`
}

// Store exposes the suggested-question chips.
type Store interface {
	List() []string
}

// MemoryStore implements Store with a fixed slice.
type MemoryStore struct {
	items []string
}

// NewMemoryStore returns a MemoryStore preloaded with items.
func NewMemoryStore(items []string) *MemoryStore {
	return &MemoryStore{items: append([]string(nil), items...)}
}

// List returns a copy of the questions.
func (s *MemoryStore) List() []string {
	return append([]string(nil), s.items...)
}

// Default returns the built-in questions.
func Default() []string {
	items, err := Parse(defaultFile)
	if err != nil {
		panic(fmt.Sprintf("embedded suggestions are invalid: %v", err))
	}
	return items
}

// Load reads questions from path, or the built-in list when path is empty.
// A .toml extension selects TOML, anything else is read as YAML.
func Load(path string) ([]string, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suggestions file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseTOML(data)
	}
	return Parse(data)
}

// Parse decodes a YAML suggestions document, dropping blank entries.
func Parse(data []byte) ([]string, error) {
	var doc file
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse suggestions: %w", err)
	}
	return doc.questions()
}

// ParseTOML decodes a TOML suggestions document.
func ParseTOML(data []byte) ([]string, error) {
	var doc file
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse suggestions: %w", err)
	}
	return doc.questions()
}

func (doc file) questions() ([]string, error) {
	items := make([]string, 0, len(doc.Questions))
	for _, q := range doc.Questions {
		if q = strings.TrimSpace(q); q != "" {
			items = append(items, q)
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("suggestions file has no questions")
	}
	return items, nil
}
