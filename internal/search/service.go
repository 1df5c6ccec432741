// Package search orquesta una búsqueda: catálogo, síntesis de precios, recomendación y orden.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"price-compare/internal/models"
	"price-compare/internal/pricing"
	"price-compare/internal/recommend"
	"price-compare/internal/repository"
	"price-compare/internal/sorter"
)

// RepeatPolicy decide qué pasa cuando se repite una consulta.
type RepeatPolicy string

const (
	// Reuse devuelve los productos ya guardados cuyo nombre contiene la consulta.
	// Una consulta más corta puede encontrar productos sintetizados para otra más larga.
	Reuse RepeatPolicy = "reuse"
	// Resynthesize genera siempre un producto nuevo.
	Resynthesize RepeatPolicy = "resynthesize"

	DefaultRecentLimit = 5
)

// ParseRepeatPolicy valida la política; vacío equivale a Reuse.
func ParseRepeatPolicy(s string) (RepeatPolicy, error) {
	switch RepeatPolicy(s) {
	case "", Reuse:
		return Reuse, nil
	case Resynthesize:
		return Resynthesize, nil
	}
	return "", fmt.Errorf("unknown repeat query policy %q", s)
}

// Options son los parámetros opcionales de Search.
type Options struct {
	UserID *int64
	Sort   sorter.Criterion
}

// Result es la respuesta de una búsqueda.
type Result struct {
	Query    string                     `json:"query"`
	Count    int                        `json:"count"`
	Products []models.ProductWithPrices `json:"products"`
}

// Service ejecuta las búsquedas de una en una: la siguiente empieza cuando termina la
// anterior, así dos búsquedas iguales no sintetizan dos productos.
type Service struct {
	mu sync.Mutex

	catalog repository.Catalog
	synth   *pricing.Synthesizer
	policy  RepeatPolicy
	log     *zap.Logger
}

func NewService(catalog repository.Catalog, synth *pricing.Synthesizer, policy RepeatPolicy, log *zap.Logger) *Service {
	if policy == "" {
		policy = Reuse
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{catalog: catalog, synth: synth, policy: policy, log: log}
}

// Search registra la consulta en el historial y devuelve los productos con precios,
// recomendación y el orden pedido.
func (s *Service) Search(ctx context.Context, query string, opts Options) (*Result, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, models.ErrInvalidQuery
	}

	if opts.UserID != nil {
		if _, err := s.User(ctx, *opts.UserID); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// se registra antes de buscar, aunque luego falle la búsqueda
	if err := s.catalog.AddSearch(ctx, &models.SearchHistoryEntry{UserID: opts.UserID, Query: query}); err != nil {
		return nil, fmt.Errorf("record search: %w", err)
	}

	products, err := s.products(ctx, query, q)
	if err != nil {
		return nil, err
	}

	results := make([]models.ProductWithPrices, 0, len(products))
	for _, p := range products {
		withPrices, err := s.withPrices(ctx, p)
		if err != nil {
			return nil, err
		}
		results = append(results, withPrices)
	}

	results = sorter.Sort(results, opts.Sort)
	return &Result{Query: q, Count: len(results), Products: results}, nil
}

// products busca con la consulta recortada; un producto nuevo guarda la consulta tal cual.
func (s *Service) products(ctx context.Context, query, q string) ([]models.Product, error) {
	if s.policy == Reuse {
		found, err := s.catalog.FindProductsByName(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("find products: %w", err)
		}
		if len(found) > 0 {
			return found, nil
		}
	}

	p, err := s.synthesize(ctx, query)
	if err != nil {
		return nil, err
	}
	return []models.Product{*p}, nil
}

// synthesize crea un producto de demo con un precio por tienda participante.
// Producto y precios se guardan juntos; si algo falla no queda nada en el catálogo.
func (s *Service) synthesize(ctx context.Context, query string) (*models.Product, error) {
	quote := s.synth.Synthesize(query)

	stores := make([]models.Store, len(quote.Stores))
	for i, sq := range quote.Stores {
		store, err := s.catalog.GetStoreByName(ctx, sq.StoreName)
		if err != nil {
			return nil, fmt.Errorf("load store %s: %w", sq.StoreName, err)
		}
		if store == nil {
			return nil, fmt.Errorf("store %s: %w", sq.StoreName, models.ErrStoreNotFound)
		}
		stores[i] = *store
	}

	product := &models.Product{
		Name:        query,
		Description: "Demo product for " + query,
		Category:    quote.Bracket.Category,
	}
	_, err := s.catalog.CreateProductWithPrices(ctx, product, func(productID int64) []models.PriceRecord {
		prices := make([]models.PriceRecord, 0, len(quote.Stores))
		for i, sq := range quote.Stores {
			original := sq.OriginalPrice
			prices = append(prices, models.PriceRecord{
				ProductID:     productID,
				StoreID:       stores[i].ID,
				Price:         sq.Price,
				OriginalPrice: &original,
				Discount:      sq.Discount,
				Rating:        sq.Rating,
				ReviewCount:   sq.ReviewCount,
				URL:           fmt.Sprintf("%s/product/%d", stores[i].Website, productID),
				InStock:       true,
				Offers:        sq.Offers,
				DeliveryDays:  sq.DeliveryDays,
			})
		}
		return prices
	})
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.log.Info("Synthesized demo product",
		zap.String("query", query),
		zap.String("bracket", quote.Bracket.Name),
		zap.Int64("product_id", product.ID),
		zap.Int("stores", len(quote.Stores)),
	)
	return product, nil
}

func (s *Service) withPrices(ctx context.Context, p models.Product) (models.ProductWithPrices, error) {
	prices, err := s.catalog.PricesByProduct(ctx, p.ID)
	if err != nil {
		return models.ProductWithPrices{}, fmt.Errorf("prices of product %d: %w", p.ID, err)
	}

	out := models.ProductWithPrices{Product: p, Prices: prices}
	if rec, ok := recommend.Recommend(prices); ok {
		out.Recommendation = &rec
	}
	return out, nil
}

// RecentSearches devuelve el historial más reciente. limit <= 0 usa DefaultRecentLimit.
func (s *Service) RecentSearches(ctx context.Context, userID *int64, limit int) ([]models.SearchHistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.catalog.RecentSearches(ctx, userID, limit)
}

func (s *Service) Product(ctx context.Context, id int64) (*models.ProductWithPrices, error) {
	p, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, models.ErrProductNotFound
	}

	out, err := s.withPrices(ctx, *p)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Stores(ctx context.Context) ([]models.Store, error) {
	return s.catalog.ListStores(ctx)
}

func (s *Service) RegisterUser(ctx context.Context, username, email string) (*models.User, error) {
	user := &models.User{Username: strings.TrimSpace(username), Email: strings.TrimSpace(email)}
	if err := s.catalog.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("Registered user", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

func (s *Service) User(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.catalog.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, models.ErrUserNotFound
	}
	return u, nil
}
