package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"price-compare/internal/models"
)

// MemoryCatalog guarda todo en memoria durante la vida del proceso.
// Los Get* devuelven nil, nil cuando no existe el registro.
type MemoryCatalog struct {
	mu  sync.RWMutex
	seq sequences
	now func() time.Time

	users    map[int64]models.User
	products map[int64]models.Product
	stores   map[int64]models.Store
	prices   map[int64]models.PriceRecord
	searches []models.SearchHistoryEntry

	// orden de inserción
	productIDs []int64
	storeIDs   []int64
	priceIDs   []int64
}

// NewMemoryCatalog crea un catálogo vacío. factory y now pueden ser nil.
func NewMemoryCatalog(factory SequenceFactory, now func() time.Time) *MemoryCatalog {
	if now == nil {
		now = time.Now
	}
	return &MemoryCatalog{
		seq:      newSequences(factory),
		now:      now,
		users:    make(map[int64]models.User),
		products: make(map[int64]models.Product),
		stores:   make(map[int64]models.Store),
		prices:   make(map[int64]models.PriceRecord),
	}
}

func (m *MemoryCatalog) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username {
			return models.ErrUsernameTaken
		}
	}

	user.ID = m.seq.users.Next()
	user.CreatedAt = m.now()
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryCatalog) GetUser(_ context.Context, id int64) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *MemoryCatalog) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *MemoryCatalog) CreateProduct(_ context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	product.ID = m.seq.products.Next()
	product.CreatedAt = m.now()
	m.products[product.ID] = *product
	m.productIDs = append(m.productIDs, product.ID)
	return nil
}

func (m *MemoryCatalog) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *MemoryCatalog) FindProductsByName(_ context.Context, name string) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(name)
	products := make([]models.Product, 0)
	for _, id := range m.productIDs {
		p := m.products[id]
		if strings.Contains(strings.ToLower(p.Name), needle) {
			products = append(products, p)
		}
	}
	return products, nil
}

func (m *MemoryCatalog) CreateStore(_ context.Context, store *models.Store) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	store.ID = m.seq.stores.Next()
	m.stores[store.ID] = *store
	m.storeIDs = append(m.storeIDs, store.ID)
	return nil
}

func (m *MemoryCatalog) GetStore(_ context.Context, id int64) (*models.Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.stores[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *MemoryCatalog) GetStoreByName(_ context.Context, name string) (*models.Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.storeIDs {
		if s := m.stores[id]; s.Name == name {
			return &s, nil
		}
	}
	return nil, nil
}

func (m *MemoryCatalog) ListStores(_ context.Context) ([]models.Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stores := make([]models.Store, 0, len(m.storeIDs))
	for _, id := range m.storeIDs {
		stores = append(stores, m.stores[id])
	}
	return stores, nil
}

func (m *MemoryCatalog) CreatePrice(_ context.Context, price *models.PriceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[price.ProductID]; !ok {
		return fmt.Errorf("price for product %d: %w", price.ProductID, models.ErrProductNotFound)
	}
	if _, ok := m.stores[price.StoreID]; !ok {
		return fmt.Errorf("price for store %d: %w", price.StoreID, models.ErrStoreNotFound)
	}

	m.insertPrice(price)
	return nil
}

// insertPrice asume el lock tomado y las referencias ya validadas.
func (m *MemoryCatalog) insertPrice(price *models.PriceRecord) {
	price.ID = m.seq.prices.Next()
	price.UpdatedAt = m.now()
	stored := *price
	stored.Offers = cloneOffers(price.Offers)
	m.prices[price.ID] = stored
	m.priceIDs = append(m.priceIDs, price.ID)
}

func (m *MemoryCatalog) CreateProductWithPrices(_ context.Context, product *models.Product, build PriceBuilder) ([]models.PriceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.seq.products.Next()
	prices := build(id)
	if len(prices) == 0 {
		return nil, fmt.Errorf("product %q: %w", product.Name, models.ErrNoPrices)
	}
	for _, p := range prices {
		if _, ok := m.stores[p.StoreID]; !ok {
			return nil, fmt.Errorf("price for store %d: %w", p.StoreID, models.ErrStoreNotFound)
		}
	}

	product.ID = id
	product.CreatedAt = m.now()
	m.products[id] = *product
	m.productIDs = append(m.productIDs, id)

	for i := range prices {
		prices[i].ProductID = id
		m.insertPrice(&prices[i])
	}
	return prices, nil
}

func (m *MemoryCatalog) GetPrice(_ context.Context, id int64) (*models.PriceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.prices[id]
	if !ok {
		return nil, nil
	}
	p.Offers = cloneOffers(p.Offers)
	return &p, nil
}

func (m *MemoryCatalog) PricesByProduct(_ context.Context, productID int64) ([]models.PriceWithStore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prices := make([]models.PriceWithStore, 0)
	for _, id := range m.priceIDs {
		p := m.prices[id]
		if p.ProductID != productID {
			continue
		}
		store, ok := m.stores[p.StoreID]
		if !ok {
			return nil, fmt.Errorf("price %d references store %d: %w", p.ID, p.StoreID, models.ErrStoreNotFound)
		}
		p.Offers = cloneOffers(p.Offers)
		prices = append(prices, models.PriceWithStore{PriceRecord: p, Store: store})
	}
	return prices, nil
}

func (m *MemoryCatalog) AddSearch(_ context.Context, entry *models.SearchHistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.ID = m.seq.searches.Next()
	entry.Timestamp = m.now()
	m.searches = append(m.searches, *entry)
	return nil
}

func (m *MemoryCatalog) RecentSearches(_ context.Context, userID *int64, limit int) ([]models.SearchHistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]models.SearchHistoryEntry, 0)
	if limit <= 0 {
		return entries, nil
	}
	for _, e := range m.searches {
		if userID != nil && (e.UserID == nil || *e.UserID != *userID) {
			continue
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Timestamp.After(entries[j].Timestamp)
		}
		return entries[i].ID > entries[j].ID
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *MemoryCatalog) Close() error {
	return nil
}

func cloneOffers(offers []string) []string {
	if offers == nil {
		return []string{}
	}
	out := make([]string, len(offers))
	copy(out, offers)
	return out
}
