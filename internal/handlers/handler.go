package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"price-compare/internal/cache"
	"price-compare/internal/middleware"
	"price-compare/internal/models"
	"price-compare/internal/search"
)

const (
	defaultTimeout = 5 * time.Second
	searchTimeout  = 10 * time.Second

	defaultRecentLimit = search.DefaultRecentLimit
	maxRecentLimit     = 100
)

// Service es lo que los handlers necesitan de la capa de búsqueda.
type Service interface {
	Search(ctx context.Context, query string, opts search.Options) (*search.Result, error)
	RecentSearches(ctx context.Context, userID *int64, limit int) ([]models.SearchHistoryEntry, error)
	Product(ctx context.Context, id int64) (*models.ProductWithPrices, error)
	Stores(ctx context.Context) ([]models.Store, error)
	RegisterUser(ctx context.Context, username, email string) (*models.User, error)
	User(ctx context.Context, id int64) (*models.User, error)
}

type Handler struct {
	svc         Service
	cache       *cache.Cache
	log         *zap.Logger
	docsSpecDir string
}

func NewHandler(svc Service, c *cache.Cache, log *zap.Logger, docsSpecDir string) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, cache: c, log: log, docsSpecDir: docsSpecDir}
}

// Estructuras para respuestas
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationError representa un error de validación de entrada
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// respondError traduce errores del dominio a códigos HTTP. fallback es el mensaje del 500.
func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: verr.Message})
	case errors.Is(err, models.ErrInvalidQuery):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Search query is required"})
	case errors.Is(err, models.ErrProductNotFound), errors.Is(err, models.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrUsernameTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrStoreNotFound):
		// inconsistencia interna: en desarrollo hace panic
		h.log.DPanic("price references a missing store",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
	default:
		h.log.Error(fallback,
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
	}
}

// parseID convierte un id de ruta o query a int64 positivo
func parseID(raw, field string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, &ValidationError{Field: field, Message: "invalid " + field}
	}
	return id, nil
}

// optionalUserID lee ?userId=; ausente devuelve nil.
func optionalUserID(c *gin.Context) (*int64, error) {
	raw := c.Query("userId")
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(raw, "user ID")
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// GET /healthz
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
