package repository

import (
	"context"
	"fmt"
	"sync/atomic"

	"price-compare/internal/models"
)

// Catalog es el almacén del catálogo: usuarios, productos, tiendas, precios e historial.
type Catalog interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	CreateProduct(ctx context.Context, product *models.Product) error
	// CreateProductWithPrices guarda el producto y sus precios de una vez: otro lector
	// ve los dos o ninguno. build recibe el id asignado y no debe usar el catálogo.
	CreateProductWithPrices(ctx context.Context, product *models.Product, build PriceBuilder) ([]models.PriceRecord, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	// FindProductsByName busca por subcadena, sin distinguir mayúsculas.
	FindProductsByName(ctx context.Context, name string) ([]models.Product, error)

	CreateStore(ctx context.Context, store *models.Store) error
	GetStore(ctx context.Context, id int64) (*models.Store, error)
	GetStoreByName(ctx context.Context, name string) (*models.Store, error)
	ListStores(ctx context.Context) ([]models.Store, error)

	CreatePrice(ctx context.Context, price *models.PriceRecord) error
	GetPrice(ctx context.Context, id int64) (*models.PriceRecord, error)
	PricesByProduct(ctx context.Context, productID int64) ([]models.PriceWithStore, error)

	AddSearch(ctx context.Context, entry *models.SearchHistoryEntry) error
	RecentSearches(ctx context.Context, userID *int64, limit int) ([]models.SearchHistoryEntry, error)

	Close() error
}

// PriceBuilder arma los precios de un producto recién numerado.
type PriceBuilder func(productID int64) []models.PriceRecord

// Sequence genera ids positivos y crecientes.
type Sequence interface {
	Next() int64
}

// AtomicSequence es un contador seguro entre goroutines que empieza en 1.
type AtomicSequence struct {
	n atomic.Int64
}

func (s *AtomicSequence) Next() int64 {
	return s.n.Add(1)
}

// SequenceFactory crea una secuencia por tipo de entidad.
type SequenceFactory func(entity string) Sequence

// NewAtomicSequence es la SequenceFactory por defecto.
func NewAtomicSequence(string) Sequence {
	return &AtomicSequence{}
}

// sequences agrupa un contador por tabla.
type sequences struct {
	users, products, stores, prices, searches Sequence
}

func newSequences(factory SequenceFactory) sequences {
	if factory == nil {
		factory = NewAtomicSequence
	}
	return sequences{
		users:    factory("users"),
		products: factory("products"),
		stores:   factory("stores"),
		prices:   factory("product_prices"),
		searches: factory("search_history"),
	}
}

// DefaultStores son las tiendas que se siembran al arrancar, en este orden.
var DefaultStores = []models.Store{
	{Name: "Amazon", Website: "https://amazon.com"},
	{Name: "Flipkart", Website: "https://flipkart.com"},
	{Name: "Myntra", Website: "https://myntra.com"},
	{Name: "Croma", Website: "https://croma.com"},
	{Name: "Reliance Digital", Website: "https://reliancedigital.in"},
}

// SeedStores crea las tiendas por defecto que aún no existan.
func SeedStores(ctx context.Context, c Catalog) error {
	for _, s := range DefaultStores {
		existing, err := c.GetStoreByName(ctx, s.Name)
		if err != nil {
			return fmt.Errorf("seed store %s: %w", s.Name, err)
		}
		if existing != nil {
			continue
		}
		store := s
		if err := c.CreateStore(ctx, &store); err != nil {
			return fmt.Errorf("seed store %s: %w", s.Name, err)
		}
	}
	return nil
}
