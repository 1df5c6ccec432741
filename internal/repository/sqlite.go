package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"price-compare/internal/models"
)

// DefaultSQLiteDSN es una base en memoria: vive lo mismo que el proceso.
const DefaultSQLiteDSN = ":memory:"

// Formato fijo en UTC para que el orden de texto coincida con el orden temporal.
const timeLayout = "2006-01-02 15:04:05.000000000"

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS products (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	name_lower TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS stores (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	logo_url TEXT NOT NULL DEFAULT '',
	website TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS product_prices (
	id INTEGER PRIMARY KEY,
	product_id INTEGER NOT NULL,
	store_id INTEGER NOT NULL,
	price INTEGER NOT NULL,
	original_price INTEGER,
	discount INTEGER NOT NULL,
	rating INTEGER NOT NULL,
	review_count INTEGER NOT NULL,
	url TEXT NOT NULL,
	in_stock INTEGER NOT NULL,
	offers TEXT NOT NULL,
	delivery_days TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_product_prices_product ON product_prices (product_id);
CREATE TABLE IF NOT EXISTS search_history (
	id INTEGER PRIMARY KEY,
	user_id INTEGER,
	query TEXT NOT NULL,
	timestamp TEXT NOT NULL
);
`

const insertProductQuery = `
	INSERT INTO products (id, name, name_lower, description, category, image_url, created_at)
	VALUES (:id, :name, :name_lower, :description, :category, :image_url, :created_at)
`

const insertPriceQuery = `
	INSERT INTO product_prices (id, product_id, store_id, price, original_price, discount, rating,
		review_count, url, in_stock, offers, delivery_days, updated_at)
	VALUES (:id, :product_id, :store_id, :price, :original_price, :discount, :rating,
		:review_count, :url, :in_stock, :offers, :delivery_days, :updated_at)
`

// SQLCatalog implementa Catalog sobre SQLite con sqlx.
// Los ids los da la Sequence, no la base.
type SQLCatalog struct {
	DB  *sqlx.DB
	seq sequences
	now func() time.Time
}

// NewSQLCatalog abre la base y crea el esquema. dsn vacío usa DefaultSQLiteDSN.
func NewSQLCatalog(ctx context.Context, dsn string, factory SequenceFactory, now func() time.Time) (*SQLCatalog, error) {
	if dsn == "" {
		dsn = DefaultSQLiteDSN
	}
	if now == nil {
		now = time.Now
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// una sola conexión: con :memory: cada conexión sería otra base
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLCatalog{DB: db, seq: newSequences(factory), now: now}, nil
}

type userRow struct {
	ID        int64  `db:"id"`
	Username  string `db:"username"`
	Email     string `db:"email"`
	CreatedAt string `db:"created_at"`
}

func (r userRow) model() (*models.User, error) {
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &models.User{ID: r.ID, Username: r.Username, Email: r.Email, CreatedAt: created}, nil
}

// productRow guarda además el nombre en minúsculas calculado en Go:
// lower() de SQLite solo pliega ASCII.
type productRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	NameLower   string `db:"name_lower"`
	Description string `db:"description"`
	Category    string `db:"category"`
	ImageURL    string `db:"image_url"`
	CreatedAt   string `db:"created_at"`
}

func newProductRow(p *models.Product) productRow {
	return productRow{
		ID:          p.ID,
		Name:        p.Name,
		NameLower:   strings.ToLower(p.Name),
		Description: p.Description,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		CreatedAt:   formatTime(p.CreatedAt),
	}
}

func (r productRow) model() (models.Product, error) {
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return models.Product{}, err
	}
	return models.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		CreatedAt:   created,
	}, nil
}

type priceRow struct {
	ID            int64         `db:"id"`
	ProductID     int64         `db:"product_id"`
	StoreID       int64         `db:"store_id"`
	Price         int64         `db:"price"`
	OriginalPrice sql.NullInt64 `db:"original_price"`
	Discount      int           `db:"discount"`
	Rating        int           `db:"rating"`
	ReviewCount   int           `db:"review_count"`
	URL           string        `db:"url"`
	InStock       bool          `db:"in_stock"`
	Offers        string        `db:"offers"`
	DeliveryDays  string        `db:"delivery_days"`
	UpdatedAt     string        `db:"updated_at"`
}

func newPriceRow(p *models.PriceRecord) (priceRow, error) {
	offers := p.Offers
	if offers == nil {
		offers = []string{}
	}
	data, err := json.Marshal(offers)
	if err != nil {
		return priceRow{}, fmt.Errorf("encode offers: %w", err)
	}
	row := priceRow{
		ID:           p.ID,
		ProductID:    p.ProductID,
		StoreID:      p.StoreID,
		Price:        p.Price,
		Discount:     p.Discount,
		Rating:       p.Rating,
		ReviewCount:  p.ReviewCount,
		URL:          p.URL,
		InStock:      p.InStock,
		Offers:       string(data),
		DeliveryDays: p.DeliveryDays,
		UpdatedAt:    formatTime(p.UpdatedAt),
	}
	if p.OriginalPrice != nil {
		row.OriginalPrice = sql.NullInt64{Int64: *p.OriginalPrice, Valid: true}
	}
	return row, nil
}

func (r priceRow) model() (models.PriceRecord, error) {
	updated, err := parseTime(r.UpdatedAt)
	if err != nil {
		return models.PriceRecord{}, err
	}
	offers := []string{}
	if err := json.Unmarshal([]byte(r.Offers), &offers); err != nil {
		return models.PriceRecord{}, fmt.Errorf("decode offers of price %d: %w", r.ID, err)
	}
	p := models.PriceRecord{
		ID:           r.ID,
		ProductID:    r.ProductID,
		StoreID:      r.StoreID,
		Price:        r.Price,
		Discount:     r.Discount,
		Rating:       r.Rating,
		ReviewCount:  r.ReviewCount,
		URL:          r.URL,
		InStock:      r.InStock,
		Offers:       offers,
		DeliveryDays: r.DeliveryDays,
		UpdatedAt:    updated,
	}
	if r.OriginalPrice.Valid {
		original := r.OriginalPrice.Int64
		p.OriginalPrice = &original
	}
	return p, nil
}

// priceStoreRow es una fila de product_prices con su tienda (LEFT JOIN).
type priceStoreRow struct {
	priceRow
	StoreRowID   sql.NullInt64  `db:"s_id"`
	StoreName    sql.NullString `db:"s_name"`
	StoreLogoURL sql.NullString `db:"s_logo_url"`
	StoreWebsite sql.NullString `db:"s_website"`
}

type searchRow struct {
	ID        int64         `db:"id"`
	UserID    sql.NullInt64 `db:"user_id"`
	Query     string        `db:"query"`
	Timestamp string        `db:"timestamp"`
}

func (s *SQLCatalog) CreateUser(ctx context.Context, user *models.User) error {
	row := userRow{
		ID:        s.seq.users.Next(),
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: formatTime(s.now()),
	}
	query := `INSERT INTO users (id, username, email, created_at) VALUES (:id, :username, :email, :created_at)`
	if _, err := s.DB.NamedExecContext(ctx, query, row); err != nil {
		if isUniqueViolation(err) {
			return models.ErrUsernameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}

	created, err := row.model()
	if err != nil {
		return err
	}
	*user = *created
	return nil
}

func (s *SQLCatalog) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, `SELECT * FROM users WHERE id = ? LIMIT 1`, id)
}

func (s *SQLCatalog) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, `SELECT * FROM users WHERE username = ? LIMIT 1`, username)
}

func (s *SQLCatalog) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var row userRow
	if err := s.DB.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.model()
}

func (s *SQLCatalog) CreateProduct(ctx context.Context, product *models.Product) error {
	product.ID = s.seq.products.Next()
	product.CreatedAt = s.now().UTC()
	if _, err := s.DB.NamedExecContext(ctx, insertProductQuery, newProductRow(product)); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// CreateProductWithPrices inserta producto y precios en una transacción.
func (s *SQLCatalog) CreateProductWithPrices(ctx context.Context, product *models.Product, build PriceBuilder) ([]models.PriceRecord, error) {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	created := *product
	created.ID = s.seq.products.Next()
	created.CreatedAt = s.now().UTC()

	prices := build(created.ID)
	if len(prices) == 0 {
		return nil, fmt.Errorf("product %q: %w", product.Name, models.ErrNoPrices)
	}

	if _, err := tx.NamedExecContext(ctx, insertProductQuery, newProductRow(&created)); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}

	for i := range prices {
		var stores int
		if err := tx.GetContext(ctx, &stores, `SELECT COUNT(*) FROM stores WHERE id = ?`, prices[i].StoreID); err != nil {
			return nil, err
		}
		if stores == 0 {
			return nil, fmt.Errorf("price for store %d: %w", prices[i].StoreID, models.ErrStoreNotFound)
		}

		prices[i].ID = s.seq.prices.Next()
		prices[i].ProductID = created.ID
		prices[i].UpdatedAt = s.now().UTC()
		row, err := newPriceRow(&prices[i])
		if err != nil {
			return nil, err
		}
		if _, err := tx.NamedExecContext(ctx, insertPriceQuery, row); err != nil {
			return nil, fmt.Errorf("insert price: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit product: %w", err)
	}
	*product = created
	return prices, nil
}

func (s *SQLCatalog) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var row productRow
	if err := s.DB.GetContext(ctx, &row, `SELECT * FROM products WHERE id = ? LIMIT 1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p, err := row.model()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLCatalog) FindProductsByName(ctx context.Context, name string) ([]models.Product, error) {
	var rows []productRow
	query := `SELECT * FROM products WHERE instr(name_lower, ?) > 0 ORDER BY id`
	if err := s.DB.SelectContext(ctx, &rows, query, strings.ToLower(name)); err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(rows))
	for _, r := range rows {
		p, err := r.model()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *SQLCatalog) CreateStore(ctx context.Context, store *models.Store) error {
	store.ID = s.seq.stores.Next()
	query := `INSERT INTO stores (id, name, logo_url, website) VALUES (:id, :name, :logo_url, :website)`
	if _, err := s.DB.NamedExecContext(ctx, query, store); err != nil {
		return fmt.Errorf("insert store: %w", err)
	}
	return nil
}

func (s *SQLCatalog) GetStore(ctx context.Context, id int64) (*models.Store, error) {
	return s.getStore(ctx, `SELECT * FROM stores WHERE id = ? LIMIT 1`, id)
}

func (s *SQLCatalog) GetStoreByName(ctx context.Context, name string) (*models.Store, error) {
	return s.getStore(ctx, `SELECT * FROM stores WHERE name = ? LIMIT 1`, name)
}

func (s *SQLCatalog) getStore(ctx context.Context, query string, arg any) (*models.Store, error) {
	var store models.Store
	if err := s.DB.GetContext(ctx, &store, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

func (s *SQLCatalog) ListStores(ctx context.Context) ([]models.Store, error) {
	stores := []models.Store{}
	if err := s.DB.SelectContext(ctx, &stores, `SELECT * FROM stores ORDER BY id`); err != nil {
		return nil, err
	}
	return stores, nil
}

func (s *SQLCatalog) CreatePrice(ctx context.Context, price *models.PriceRecord) error {
	product, err := s.GetProduct(ctx, price.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("price for product %d: %w", price.ProductID, models.ErrProductNotFound)
	}
	store, err := s.GetStore(ctx, price.StoreID)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("price for store %d: %w", price.StoreID, models.ErrStoreNotFound)
	}

	price.ID = s.seq.prices.Next()
	price.UpdatedAt = s.now().UTC()
	row, err := newPriceRow(price)
	if err != nil {
		return err
	}
	if _, err := s.DB.NamedExecContext(ctx, insertPriceQuery, row); err != nil {
		return fmt.Errorf("insert price: %w", err)
	}
	return nil
}

func (s *SQLCatalog) GetPrice(ctx context.Context, id int64) (*models.PriceRecord, error) {
	var row priceRow
	if err := s.DB.GetContext(ctx, &row, `SELECT * FROM product_prices WHERE id = ? LIMIT 1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p, err := row.model()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLCatalog) PricesByProduct(ctx context.Context, productID int64) ([]models.PriceWithStore, error) {
	var rows []priceStoreRow
	query := `
		SELECT p.*, s.id AS s_id, s.name AS s_name, s.logo_url AS s_logo_url, s.website AS s_website
		FROM product_prices p
		LEFT JOIN stores s ON s.id = p.store_id
		WHERE p.product_id = ?
		ORDER BY p.id
	`
	if err := s.DB.SelectContext(ctx, &rows, query, productID); err != nil {
		return nil, err
	}

	prices := make([]models.PriceWithStore, 0, len(rows))
	for _, r := range rows {
		if !r.StoreRowID.Valid {
			return nil, fmt.Errorf("price %d references store %d: %w", r.ID, r.StoreID, models.ErrStoreNotFound)
		}
		p, err := r.model()
		if err != nil {
			return nil, err
		}
		prices = append(prices, models.PriceWithStore{
			PriceRecord: p,
			Store: models.Store{
				ID:      r.StoreRowID.Int64,
				Name:    r.StoreName.String,
				LogoURL: r.StoreLogoURL.String,
				Website: r.StoreWebsite.String,
			},
		})
	}
	return prices, nil
}

func (s *SQLCatalog) AddSearch(ctx context.Context, entry *models.SearchHistoryEntry) error {
	entry.ID = s.seq.searches.Next()
	entry.Timestamp = s.now().UTC()
	row := searchRow{ID: entry.ID, Query: entry.Query, Timestamp: formatTime(entry.Timestamp)}
	if entry.UserID != nil {
		row.UserID = sql.NullInt64{Int64: *entry.UserID, Valid: true}
	}
	query := `INSERT INTO search_history (id, user_id, query, timestamp) VALUES (:id, :user_id, :query, :timestamp)`
	if _, err := s.DB.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("insert search: %w", err)
	}
	return nil
}

func (s *SQLCatalog) RecentSearches(ctx context.Context, userID *int64, limit int) ([]models.SearchHistoryEntry, error) {
	entries := make([]models.SearchHistoryEntry, 0)
	if limit <= 0 {
		return entries, nil
	}

	var rows []searchRow
	var err error
	if userID != nil {
		err = s.DB.SelectContext(ctx, &rows,
			`SELECT * FROM search_history WHERE user_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?`, *userID, limit)
	} else {
		err = s.DB.SelectContext(ctx, &rows,
			`SELECT * FROM search_history ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	}
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		ts, err := parseTime(r.Timestamp)
		if err != nil {
			return nil, err
		}
		e := models.SearchHistoryEntry{ID: r.ID, Query: r.Query, Timestamp: ts}
		if r.UserID.Valid {
			uid := r.UserID.Int64
			e.UserID = &uid
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *SQLCatalog) Close() error {
	return s.DB.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
