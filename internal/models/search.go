package models

import (
	"errors"
	"time"
)

var (
	ErrInvalidQuery    = errors.New("search query is required")
	ErrProductNotFound = errors.New("product not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username already exists")

	// ErrStoreNotFound indica un precio que apunta a una tienda no sembrada.
	// No debería ocurrir nunca: es un error interno de consistencia.
	ErrStoreNotFound = errors.New("store not found")

	// ErrNoPrices: un producto sintetizado siempre lleva al menos un precio.
	ErrNoPrices = errors.New("product has no prices")
)

// SearchHistoryEntry es una búsqueda registrada. UserID es nil para anónimos.
type SearchHistoryEntry struct {
	ID        int64     `json:"id" db:"id"`
	UserID    *int64    `json:"userId" db:"user_id"`
	Query     string    `json:"query" db:"query"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// User es un usuario registrado (sin credenciales, no hay autenticación).
type User struct {
	ID        int64     `json:"id" db:"id"`
	Username  string    `json:"username" db:"username" binding:"required"`
	Email     string    `json:"email" db:"email" binding:"required,email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
