package pricing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)

	tests := []struct {
		query    string
		expected int64
	}{
		{"iPhone 14 Pro", 11599000},
		{"APPLE IPHONE 14 PRO MAX", 11599000},
		{"iphone 14", 6999000},
		{"iphone 14 plus", 6999000},
		{"iPhone 15 Pro", 12990000},
		{"iphone 15", 7999000},
		{"Samsung S23 Ultra", 10499900},
		{"samsung s23", 7499900},
		{"samsung s24 ultra", 12999900},
		{"samsung s24", 8499900},
		{"google pixel 8 pro", 9299900},
		{"google pixel 8", 6999900},
		{"PlayStation 5", 5499900},
		{"xbox series x", 5499900},
		{"macbook air m2", 9999000},
		{"MacBook Pro 14", 16999000},
		{"dell xps 13", 12999000},
		{"LG OLED C3", 13999000},
		{"sony bravia", 11999000},
		{"samsung qled", 9999000},
		{"smart tv 55", 5499900},
		{"Television", 5499900},
		{"airpods pro", 2499900},
		{"Sony WH-1000XM5", 2999900},
		{"noise cancelling headphones", 1499900},
		{"earbuds", 1499900},
		{"coffee maker", 4999900},
		{"", 4999900},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.expected, table.Classify(tt.query).BasePrice)
		})
	}
}

func TestClassify_IsPure(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)

	first := table.Classify("my new iphone 14 pro case")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, table.Classify("my new iphone 14 pro case"))
	}
	assert.Equal(t, "Smartphones", first.Category)
}

func TestClassify_OrderIsLoadBearing(t *testing.T) {
	table, err := ParseTable([]byte(`
brackets:
  - name: generic
    patterns: ["iphone 14"]
    base_price: 100
  - name: pro
    patterns: ["iphone 14 pro"]
    base_price: 200
default:
  name: other
  base_price: 50
`))
	require.NoError(t, err)

	// el genérico va primero y se come al "pro"
	assert.Equal(t, "generic", table.Classify("iphone 14 pro").Name)
	assert.Equal(t, "Electronics", table.Classify("nothing").Category)
}

func TestParseTable_Errors(t *testing.T) {
	tests := map[string]string{
		"invalid yaml":    "brackets: [",
		"missing default": "brackets: []",
		"zero base price": "brackets:\n  - name: a\n    patterns: [a]\n    base_price: 0\ndefault:\n  base_price: 1\n",
		"no patterns":     "brackets:\n  - name: a\n    base_price: 10\ndefault:\n  base_price: 1\n",
		"empty pattern":   "brackets:\n  - name: a\n    patterns: ['  ']\n    base_price: 10\ndefault:\n  base_price: 1\n",
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTable([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestParseTable_LowercasesPatterns(t *testing.T) {
	table, err := ParseTable([]byte("brackets:\n  - name: a\n    patterns: ['  PS5 ']\n    base_price: 10\ndefault:\n  base_price: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ps5"}, table.Brackets[0].Patterns)
	assert.Equal(t, int64(10), table.Classify("Sony PS5 Slim").BasePrice)
}

func TestLoadTable(t *testing.T) {
	embedded, err := LoadTable("")
	require.NoError(t, err)
	assert.NotEmpty(t, embedded.Brackets)

	path := filepath.Join(t.TempDir(), "brackets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("brackets: []\ndefault:\n  base_price: 42\n"), 0o600))

	custom, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, int64(42), custom.Classify("anything").BasePrice)

	_, err = LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
