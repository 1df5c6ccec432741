// Package sorter ordena resultados de búsqueda según el criterio del usuario.
package sorter

import (
	"fmt"
	"sort"

	"price-compare/internal/models"
)

// Criterion es un criterio de ordenación.
type Criterion string

const (
	BestMatch     Criterion = "best-match"
	PriceLowHigh  Criterion = "price-low-high"
	PriceHighLow  Criterion = "price-high-low"
	RatingHighLow Criterion = "rating-high-low"
	MostReviews   Criterion = "most-reviews"
)

// Criteria lista los criterios válidos.
var Criteria = []Criterion{BestMatch, PriceLowHigh, PriceHighLow, RatingHighLow, MostReviews}

// ParseCriterion valida un criterio. Vacío equivale a best-match.
func ParseCriterion(s string) (Criterion, error) {
	if s == "" {
		return BestMatch, nil
	}
	for _, c := range Criteria {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown sort option %q", s)
}

// Sort devuelve una copia ordenada de forma estable; no modifica la entrada.
// Un producto sin precios nunca se mueve respecto a otro.
func Sort(products []models.ProductWithPrices, c Criterion) []models.ProductWithPrices {
	out := make([]models.ProductWithPrices, len(products))
	copy(out, products)

	var less func(a, b models.ProductWithPrices) bool
	switch c {
	case PriceLowHigh:
		less = func(a, b models.ProductWithPrices) bool {
			pa, okA := a.MinPrice()
			pb, okB := b.MinPrice()
			return okA && okB && pa < pb
		}
	case PriceHighLow:
		less = func(a, b models.ProductWithPrices) bool {
			pa, okA := a.MinPrice()
			pb, okB := b.MinPrice()
			return okA && okB && pa > pb
		}
	case RatingHighLow:
		less = func(a, b models.ProductWithPrices) bool {
			ra, okA := a.MaxRating()
			rb, okB := b.MaxRating()
			return okA && okB && ra > rb
		}
	case MostReviews:
		less = func(a, b models.ProductWithPrices) bool {
			ra, okA := a.TotalReviews()
			rb, okB := b.TotalReviews()
			return okA && okB && ra > rb
		}
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}
