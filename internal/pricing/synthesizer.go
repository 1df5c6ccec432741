package pricing

import (
	"math/rand/v2"

	"github.com/shopspring/decimal"
)

const (
	jitterSpan  = 200000 // jitter uniforme en [-100000, 99999]
	markupMin   = 0.08
	markupSpan  = 0.07
	ratingMin   = 35 // 3.5 estrellas
	ratingSpan  = 16 // hasta 5.0 inclusive
	reviewsMin  = 500
	reviewsSpan = 2000
)

// Rand es la fuente de aleatoriedad. *rand.Rand de math/rand/v2 la cumple.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// globalRand usa las funciones de paquete de math/rand/v2, seguras entre goroutines.
type globalRand struct{}

func (globalRand) IntN(n int) int   { return rand.IntN(n) }
func (globalRand) Float64() float64 { return rand.Float64() }

// StoreQuote es el precio sintético de una tienda.
type StoreQuote struct {
	StoreName     string
	Price         int64
	OriginalPrice int64
	Discount      int
	Rating        int
	ReviewCount   int
	Offers        []string
	DeliveryDays  string
}

// Quote agrupa el bracket elegido y un precio por tienda participante.
type Quote struct {
	Bracket Bracket
	Stores  []StoreQuote
}

// Synthesizer genera precios de demo para una consulta libre.
type Synthesizer struct {
	table *Table
	rules []StoreRule
	rng   Rand
}

// NewSynthesizer crea un sintetizador. Con rng nil usa math/rand/v2.
func NewSynthesizer(table *Table, rng Rand) *Synthesizer {
	if rng == nil {
		rng = globalRand{}
	}
	return &Synthesizer{
		table: table,
		rules: StoreRules(),
		rng:   rng,
	}
}

// Synthesize clasifica la consulta y genera un StoreQuote por tienda participante.
// Por tienda se consumen, en orden: jitter, markup, rating y reseñas.
func (s *Synthesizer) Synthesize(query string) Quote {
	bracket := s.table.Classify(query)

	quotes := make([]StoreQuote, 0, len(s.rules))
	for _, rule := range s.rules {
		quotes = append(quotes, s.quote(rule, bracket.BasePrice))
	}

	return Quote{Bracket: bracket, Stores: quotes}
}

func (s *Synthesizer) quote(rule StoreRule, base int64) StoreQuote {
	price := rule.adjust(base) + int64(s.rng.IntN(jitterSpan)-jitterSpan/2)
	if price < 1 {
		price = 1
	}

	markup := markupMin + s.rng.Float64()*markupSpan
	original := decimal.NewFromInt(price).
		Mul(decimal.NewFromFloat(1 + markup)).
		Round(0).
		IntPart()

	offers := make([]string, len(rule.Offers))
	copy(offers, rule.Offers)

	return StoreQuote{
		StoreName:     rule.Name,
		Price:         price,
		OriginalPrice: original,
		Discount:      DiscountPercent(price, original),
		Rating:        ratingMin + s.rng.IntN(ratingSpan),
		ReviewCount:   reviewsMin + s.rng.IntN(reviewsSpan),
		Offers:        offers,
		DeliveryDays:  rule.DeliveryDays,
	}
}

// DiscountPercent es floor((original-price)/original*100) acotado a [0, 100].
func DiscountPercent(price, original int64) int {
	if original <= 0 || original <= price {
		return 0
	}
	d := decimal.NewFromInt(original - price).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(original)).
		Floor().
		IntPart()
	if d > 100 {
		d = 100
	}
	return int(d)
}
