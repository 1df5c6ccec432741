package sorter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-compare/internal/models"
)

type priceSpec struct {
	price   int64
	rating  int
	reviews int
}

func product(id int64, specs ...priceSpec) models.ProductWithPrices {
	p := models.ProductWithPrices{Product: models.Product{ID: id}}
	for _, s := range specs {
		p.Prices = append(p.Prices, models.PriceWithStore{
			PriceRecord: models.PriceRecord{Price: s.price, Rating: s.rating, ReviewCount: s.reviews},
		})
	}
	return p
}

func ids(products []models.ProductWithPrices) []int64 {
	out := make([]int64, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func fixtures() []models.ProductWithPrices {
	return []models.ProductWithPrices{
		product(1, priceSpec{500, 40, 100}, priceSpec{450, 42, 50}),
		product(2, priceSpec{300, 49, 10}),
		product(3, priceSpec{900, 35, 2000}, priceSpec{800, 38, 900}),
		product(4, priceSpec{100, 45, 600}),
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		criterion Criterion
		expected  []int64
	}{
		{BestMatch, []int64{1, 2, 3, 4}},
		{PriceLowHigh, []int64{4, 2, 1, 3}},
		{PriceHighLow, []int64{3, 1, 2, 4}},
		{RatingHighLow, []int64{2, 4, 1, 3}},
		{MostReviews, []int64{3, 4, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(string(tt.criterion), func(t *testing.T) {
			assert.Equal(t, tt.expected, ids(Sort(fixtures(), tt.criterion)))
		})
	}
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	in := fixtures()
	_ = Sort(in, PriceLowHigh)
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(in))
}

func TestSort_Antisymmetry(t *testing.T) {
	in := fixtures()
	asc := ids(Sort(in, PriceLowHigh))
	desc := ids(Sort(in, PriceHighLow))

	reversed := make([]int64, len(desc))
	for i, id := range desc {
		reversed[len(desc)-1-i] = id
	}
	assert.Equal(t, asc, reversed)
}

func TestSort_StableOnTies(t *testing.T) {
	in := []models.ProductWithPrices{
		product(1, priceSpec{100, 40, 10}),
		product(2, priceSpec{100, 40, 10}),
		product(3, priceSpec{50, 40, 10}),
	}
	assert.Equal(t, []int64{3, 1, 2}, ids(Sort(in, PriceLowHigh)))
	assert.Equal(t, []int64{1, 2, 3}, ids(Sort(in, RatingHighLow)))
}

func TestSort_EmptyPriceLists(t *testing.T) {
	in := []models.ProductWithPrices{
		product(1),
		product(2),
	}
	for _, c := range Criteria {
		assert.Equal(t, []int64{1, 2}, ids(Sort(in, c)), c)
	}
}

func TestParseCriterion(t *testing.T) {
	c, err := ParseCriterion("")
	require.NoError(t, err)
	assert.Equal(t, BestMatch, c)

	for _, want := range Criteria {
		got, err := ParseCriterion(string(want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = ParseCriterion("cheapest")
	assert.Error(t, err)
}
