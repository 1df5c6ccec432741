package pricing

import "github.com/shopspring/decimal"

// StoreRule es la política de precios de una tienda participante.
type StoreRule struct {
	Name         string
	Adjustment   decimal.Decimal // fracción sobre el precio base, p.ej. -0.02
	DeliveryDays string
	Offers       []string
}

// Solo estas cuatro tiendas generan precios. Myntra está en el catálogo pero no participa.
var storeRules = []StoreRule{
	{
		Name:         "Amazon",
		Adjustment:   decimal.RequireFromString("-0.02"),
		DeliveryDays: "1-2 days",
		Offers: []string{
			"10% Instant Discount with HDFC Credit Cards",
			"No-Cost EMI on 6 months",
			"Prime delivery available",
		},
	},
	{
		Name:         "Flipkart",
		Adjustment:   decimal.RequireFromString("-0.03"),
		DeliveryDays: "2-3 days",
		Offers: []string{
			"Extra 5% off with Flipkart Axis Bank Card",
			"No-Cost EMI from ₹3,750/month",
			"SuperCoins Reward on purchase",
		},
	},
	{
		Name:         "Croma",
		Adjustment:   decimal.RequireFromString("0.01"),
		DeliveryDays: "3-5 days",
		Offers: []string{
			"Additional 1-year warranty",
			"Free home installation",
			"Exchange bonus up to ₹10,000",
		},
	},
	{
		Name:         "Reliance Digital",
		Adjustment:   decimal.Zero,
		DeliveryDays: "3-4 days",
		Offers: []string{
			"5% cashback with Reliance One membership",
			"Free extended warranty worth ₹2,999",
			"EMI starting at ₹2,999/month",
		},
	},
}

// StoreRules devuelve una copia de las reglas en orden fijo.
func StoreRules() []StoreRule {
	out := make([]StoreRule, len(storeRules))
	copy(out, storeRules)
	return out
}

// EligibleStores devuelve los nombres de las tiendas participantes.
func EligibleStores() []string {
	names := make([]string, len(storeRules))
	for i, r := range storeRules {
		names[i] = r.Name
	}
	return names
}

// adjust aplica la regla al precio base: base ± floor(base*|ajuste|).
func (r StoreRule) adjust(base int64) int64 {
	delta := decimal.NewFromInt(base).Mul(r.Adjustment.Abs()).Floor()
	if r.Adjustment.IsNegative() {
		delta = delta.Neg()
	}
	return base + delta.IntPart()
}
