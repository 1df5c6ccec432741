// Package recommend elige la mejor oferta entre los precios de un producto.
package recommend

import (
	"regexp"
	"sort"
	"strconv"

	"price-compare/internal/models"
)

const (
	ReasonLowestPrice   = "lowest price"
	ReasonBetterRating  = "similar price, better rating"
	ReasonFasterDeliver = "near-identical price, faster delivery"
	ReasonBestValue     = "best overall value"

	similarPriceGap  = 0.01
	fasterDeliverGap = 0.02
	defaultDelivery  = 5
)

var leadingInt = regexp.MustCompile(`^\s*(\d+)`)

// Recommend devuelve la mejor oferta y su justificación. ok es false sin precios.
// Los empates se resuelven por orden de entrada.
func Recommend(prices []models.PriceWithStore) (models.Recommendation, bool) {
	if len(prices) == 0 {
		return models.Recommendation{}, false
	}

	sorted := make([]models.PriceWithStore, len(prices))
	copy(sorted, prices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price < sorted[j].Price
	})
	lowest := sorted[0]

	if len(sorted) > 1 && gap(lowest.Price, sorted[1].Price) < similarPriceGap {
		best := lowest
		for _, p := range sorted[1:] {
			if gap(lowest.Price, p.Price) <= similarPriceGap && p.Rating > best.Rating {
				best = p
			}
		}
		if best.StoreID != lowest.StoreID {
			return build(best, ReasonBetterRating), true
		}
	} else if fastest := fastestDelivery(prices); fastest.StoreID != lowest.StoreID &&
		gap(lowest.Price, fastest.Price) < fasterDeliverGap {
		return build(fastest, ReasonFasterDeliver), true
	}

	if highestRated(prices).StoreID == lowest.StoreID {
		return build(lowest, ReasonBestValue), true
	}

	return build(lowest, ReasonLowestPrice), true
}

// DeliveryDays extrae el primer entero de un rango tipo "2-3 days"; 5 si no hay.
func DeliveryDays(s string) int {
	m := leadingInt.FindStringSubmatch(s)
	if m == nil {
		return defaultDelivery
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return defaultDelivery
	}
	return n
}

// gap es la diferencia relativa de price respecto a lowest.
func gap(lowest, price int64) float64 {
	if lowest <= 0 {
		return 0
	}
	return float64(price-lowest) / float64(lowest)
}

func fastestDelivery(prices []models.PriceWithStore) models.PriceWithStore {
	fastest := prices[0]
	days := DeliveryDays(fastest.DeliveryDays)
	for _, p := range prices[1:] {
		if d := DeliveryDays(p.DeliveryDays); d < days {
			fastest, days = p, d
		}
	}
	return fastest
}

func highestRated(prices []models.PriceWithStore) models.PriceWithStore {
	best := prices[0]
	for _, p := range prices[1:] {
		if p.Rating > best.Rating {
			best = p
		}
	}
	return best
}

func build(p models.PriceWithStore, reason string) models.Recommendation {
	return models.Recommendation{
		PriceID:   p.ID,
		StoreID:   p.StoreID,
		StoreName: p.Store.Name,
		Price:     p.Price,
		Reason:    reason,
	}
}
