package liturgy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/oracion-board/internal/core/domain"
)

//go:embed meditations.yaml
var embeddedMeditations []byte

// Table is an immutable category -> meditation lookup. neutro is always present.
type Table struct {
	entries map[domain.Category]domain.Meditation
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// DefaultTable returns the table compiled into the binary.
func DefaultTable() *Table {
	defaultOnce.Do(func() {
		t, err := LoadTable(embeddedMeditations)
		if err != nil {
			panic(fmt.Sprintf("liturgy: embedded meditations are invalid: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// LoadTableFile reads an operator-supplied meditation table.
func LoadTableFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read meditations file: %w", err)
	}
	return LoadTable(data)
}

func LoadTable(data []byte) (*Table, error) {
	var raw map[string]domain.Meditation
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse meditations yaml: %w", err)
	}

	entries := make(map[domain.Category]domain.Meditation, len(raw))
	for key, med := range raw {
		cat := domain.Category(strings.ToLower(strings.TrimSpace(key)))
		if !cat.Valid() {
			return nil, fmt.Errorf("unknown category %q", key)
		}
		if strings.TrimSpace(med.Message) == "" {
			return nil, fmt.Errorf("category %q: empty message", key)
		}
		if strings.TrimSpace(med.Display) == "" {
			med.Display = string(cat)
		}
		entries[cat] = med
	}
	if _, ok := entries[domain.CategoryNeutro]; !ok {
		return nil, errors.New("meditations table must define neutro")
	}
	return &Table{entries: entries}, nil
}

// Lookup never fails: unknown or missing categories resolve to neutro.
func (t *Table) Lookup(cat domain.Category) domain.Meditation {
	if med, ok := t.entries[cat]; ok {
		return med
	}
	return t.entries[domain.CategoryNeutro]
}

func (t *Table) Has(cat domain.Category) bool {
	_, ok := t.entries[cat]
	return ok
}
