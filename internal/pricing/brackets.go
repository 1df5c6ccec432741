package pricing

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed brackets.yaml
var defaultBrackets []byte

// Bracket es una línea de producto conocida con su precio base.
type Bracket struct {
	Name      string   `yaml:"name"`
	Category  string   `yaml:"category"`
	Patterns  []string `yaml:"patterns"`
	BasePrice int64    `yaml:"base_price"`
}

// Table es la lista ordenada de brackets más el bracket por defecto.
type Table struct {
	Brackets []Bracket `yaml:"brackets"`
	Default  Bracket   `yaml:"default"`
}

// DefaultTable devuelve la tabla embebida en el binario.
func DefaultTable() (*Table, error) {
	return ParseTable(defaultBrackets)
}

// LoadTable lee una tabla desde un fichero YAML. Con path vacío usa la embebida.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read brackets file %s: %w", path, err)
	}

	return ParseTable(data)
}

// ParseTable parsea y valida una tabla. Los patrones se pasan a minúsculas.
func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse brackets YAML: %w", err)
	}

	if t.Default.BasePrice <= 0 {
		return nil, fmt.Errorf("default bracket needs a positive base_price")
	}
	if t.Default.Category == "" {
		t.Default.Category = "Electronics"
	}

	for i := range t.Brackets {
		b := &t.Brackets[i]
		if b.BasePrice <= 0 {
			return nil, fmt.Errorf("bracket %q needs a positive base_price", b.Name)
		}
		if len(b.Patterns) == 0 {
			return nil, fmt.Errorf("bracket %q has no patterns", b.Name)
		}
		for j, p := range b.Patterns {
			p = strings.ToLower(strings.TrimSpace(p))
			if p == "" {
				return nil, fmt.Errorf("bracket %q has an empty pattern", b.Name)
			}
			b.Patterns[j] = p
		}
		if b.Category == "" {
			b.Category = t.Default.Category
		}
	}

	return &t, nil
}

// Classify devuelve el primer bracket cuyo patrón aparece en la consulta.
func (t *Table) Classify(query string) Bracket {
	q := strings.ToLower(query)
	for _, b := range t.Brackets {
		for _, p := range b.Patterns {
			if strings.Contains(q, p) {
				return b
			}
		}
	}
	return t.Default
}
