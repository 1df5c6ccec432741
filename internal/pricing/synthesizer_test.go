package pricing

import (
	"math/rand/v2"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRand devuelve valores fijos en orden; agotados devuelve el último de cada tipo.
type scriptedRand struct {
	ints   []int
	floats []float64
}

func (r *scriptedRand) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	if len(r.ints) > 1 {
		r.ints = r.ints[1:]
	}
	return v % n
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	if len(r.floats) > 1 {
		r.floats = r.floats[1:]
	}
	return v
}

func newTestSynthesizer(t *testing.T, rng Rand) *Synthesizer {
	t.Helper()
	table, err := DefaultTable()
	require.NoError(t, err)
	return NewSynthesizer(table, rng)
}

func TestSynthesize_ExactPricesWithScriptedRandom(t *testing.T) {
	// por tienda: jitter=0, markup=8%, rating=50, reseñas=500
	rng := &scriptedRand{
		ints: []int{
			100000, 15, 0,
			100000, 15, 0,
			100000, 15, 0,
			100000, 15, 0,
		},
		floats: []float64{0},
	}
	s := newTestSynthesizer(t, rng)

	quote := s.Synthesize("iPhone 14 Pro")

	assert.Equal(t, "iPhone 14 Pro", quote.Bracket.Name)
	assert.Equal(t, int64(11599000), quote.Bracket.BasePrice)

	expected := []struct {
		store    string
		price    int64
		original int64
		delivery string
	}{
		{"Amazon", 11367020, 12276382, "1-2 days"},
		{"Flipkart", 11251030, 12151112, "2-3 days"},
		{"Croma", 11714990, 12652189, "3-5 days"},
		{"Reliance Digital", 11599000, 12526920, "3-4 days"},
	}

	require.Len(t, quote.Stores, len(expected))
	for i, want := range expected {
		got := quote.Stores[i]
		assert.Equal(t, want.store, got.StoreName)
		assert.Equal(t, want.price, got.Price, want.store)
		assert.Equal(t, want.original, got.OriginalPrice, want.store)
		assert.Equal(t, 7, got.Discount, want.store)
		assert.Equal(t, 50, got.Rating, want.store)
		assert.Equal(t, 500, got.ReviewCount, want.store)
		assert.Equal(t, want.delivery, got.DeliveryDays, want.store)
		assert.Len(t, got.Offers, 3, want.store)
	}
}

func TestSynthesize_JitterBounds(t *testing.T) {
	low := newTestSynthesizer(t, &scriptedRand{ints: []int{0}}).Synthesize("playstation 5")
	high := newTestSynthesizer(t, &scriptedRand{ints: []int{jitterSpan - 1}}).Synthesize("playstation 5")

	// Reliance no ajusta el precio base: el jitter queda a la vista
	assert.Equal(t, int64(5499900-100000), low.Stores[3].Price)
	assert.Equal(t, int64(5499900+99999), high.Stores[3].Price)
}

func TestSynthesize_Invariants(t *testing.T) {
	s := newTestSynthesizer(t, rand.New(rand.NewPCG(1, 2)))
	delivery := regexp.MustCompile(`^\d+-\d+ days$`)

	queries := []string{"iPhone 14 Pro", "random gadget", "Sony WH-1000XM5 headphones", "x", "LG OLED tv"}
	for _, q := range queries {
		for i := 0; i < 50; i++ {
			quote := s.Synthesize(q)
			require.Len(t, quote.Stores, 4, q)

			seen := map[string]bool{}
			for _, sq := range quote.Stores {
				assert.False(t, seen[sq.StoreName], "duplicate store %s", sq.StoreName)
				seen[sq.StoreName] = true
				assert.Contains(t, EligibleStores(), sq.StoreName)
				assert.NotEqual(t, "Myntra", sq.StoreName)

				assert.GreaterOrEqual(t, sq.OriginalPrice, sq.Price)
				assert.GreaterOrEqual(t, sq.Discount, 0)
				assert.LessOrEqual(t, sq.Discount, 100)
				assert.GreaterOrEqual(t, sq.Rating, 35)
				assert.LessOrEqual(t, sq.Rating, 50)
				assert.GreaterOrEqual(t, sq.ReviewCount, 500)
				assert.Less(t, sq.ReviewCount, 2500)
				assert.Regexp(t, delivery, sq.DeliveryDays)
			}
		}
	}
}

func TestSynthesize_StoreAdjustmentsAroundBase(t *testing.T) {
	s := newTestSynthesizer(t, rand.New(rand.NewPCG(7, 7)))
	const base = 11599000
	factors := map[string]float64{
		"Amazon":           0.98,
		"Flipkart":         0.97,
		"Croma":            1.01,
		"Reliance Digital": 1.00,
	}

	for i := 0; i < 20; i++ {
		quote := s.Synthesize("Apple iPhone 14 Pro 256GB")
		for _, sq := range quote.Stores {
			center := float64(base) * factors[sq.StoreName]
			assert.InDelta(t, center, float64(sq.Price), 100001, sq.StoreName)
		}
	}
}

func TestSynthesize_DoesNotAliasOffers(t *testing.T) {
	s := newTestSynthesizer(t, nil)
	first := s.Synthesize("tv")
	first.Stores[0].Offers[0] = "changed"

	second := s.Synthesize("tv")
	assert.Equal(t, "10% Instant Discount with HDFC Credit Cards", second.Stores[0].Offers[0])
}

func TestDiscountPercent(t *testing.T) {
	tests := []struct {
		price, original int64
		expected        int
	}{
		{100, 100, 0},
		{90, 100, 10},
		{85, 100, 15},
		{1, 100, 99},
		{100, 0, 0},
		{120, 100, 0},
		{11367020, 12276382, 7},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, DiscountPercent(tt.price, tt.original), "%d/%d", tt.price, tt.original)
	}
}
