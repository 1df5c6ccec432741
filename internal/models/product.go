package models

import "time"

// Product representa un producto buscado. Name guarda la consulta original.
type Product struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	Category    string    `json:"category,omitempty" db:"category"`
	ImageURL    string    `json:"imageUrl,omitempty" db:"image_url"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Store es una tienda del catálogo. Se siembran al arrancar y no cambian.
type Store struct {
	ID      int64  `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	LogoURL string `json:"logoUrl,omitempty" db:"logo_url"`
	Website string `json:"website" db:"website"`
}

// PriceRecord es el precio de un producto en una tienda.
// Price y OriginalPrice van en la unidad menor de la moneda; Rating va x10 (0-50).
type PriceRecord struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"productId"`
	StoreID       int64     `json:"storeId"`
	Price         int64     `json:"price"`
	OriginalPrice *int64    `json:"originalPrice"`
	Discount      int       `json:"discount"`
	Rating        int       `json:"rating"`
	ReviewCount   int       `json:"reviewCount"`
	URL           string    `json:"url"`
	InStock       bool      `json:"inStock"`
	Offers        []string  `json:"offers"`
	DeliveryDays  string    `json:"deliveryDays"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PriceWithStore es un PriceRecord junto con su tienda.
type PriceWithStore struct {
	PriceRecord
	Store Store `json:"store"`
}

// Recommendation es la mejor oferta elegida para un producto.
type Recommendation struct {
	PriceID   int64  `json:"priceId"`
	StoreID   int64  `json:"storeId"`
	StoreName string `json:"storeName"`
	Price     int64  `json:"price"`
	Reason    string `json:"reason"`
}

// ProductWithPrices es lo que se devuelve al cliente por cada producto.
type ProductWithPrices struct {
	Product
	Prices         []PriceWithStore `json:"prices"`
	Recommendation *Recommendation  `json:"recommendation,omitempty"`
}

// MinPrice devuelve el precio más bajo; ok es false si no hay precios.
func (p ProductWithPrices) MinPrice() (lowest int64, ok bool) {
	for i, pr := range p.Prices {
		if i == 0 || pr.Price < lowest {
			lowest = pr.Price
		}
	}
	return lowest, len(p.Prices) > 0
}

// MaxRating devuelve la mejor valoración; ok es false si no hay precios.
func (p ProductWithPrices) MaxRating() (best int, ok bool) {
	for i, pr := range p.Prices {
		if i == 0 || pr.Rating > best {
			best = pr.Rating
		}
	}
	return best, len(p.Prices) > 0
}

// TotalReviews suma las reseñas de todas las tiendas.
func (p ProductWithPrices) TotalReviews() (total int, ok bool) {
	for _, pr := range p.Prices {
		total += pr.ReviewCount
	}
	return total, len(p.Prices) > 0
}
