package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"price-compare/internal/models"
)

const storesCacheKey = "stores"

// GetProduct obtiene un producto con sus precios (con caché).
// Los productos no cambian una vez sintetizados.
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"), "product ID")
	if err != nil {
		h.respondError(c, err, "failed to get product")
		return
	}
	cacheKey := fmt.Sprintf("product:%d", id)

	// Intentar obtener del caché
	if cached, found := h.cache.GetValue(cacheKey); found {
		c.JSON(http.StatusOK, cached)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultTimeout)
	defer cancel()

	product, err := h.svc.Product(ctx, id)
	if err != nil {
		h.respondError(c, err, "failed to get product")
		return
	}

	h.cache.Set(cacheKey, product)
	c.JSON(http.StatusOK, product)
}

// ListStores lista las tiendas (con caché serializado).
func (h *Handler) ListStores(c *gin.Context) {
	var stores []models.Store
	found, err := h.cache.Unmarshal(storesCacheKey, &stores)
	if err != nil {
		h.log.Warn("Discarding corrupt stores cache entry", zap.Error(err))
		h.cache.Delete(storesCacheKey)
	}
	if found {
		c.JSON(http.StatusOK, stores)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultTimeout)
	defer cancel()

	stores, err = h.svc.Stores(ctx)
	if err != nil {
		h.respondError(c, err, "failed to fetch stores")
		return
	}

	if err := h.cache.Marshal(storesCacheKey, stores); err != nil {
		h.log.Warn("Could not cache stores", zap.Error(err))
	}
	c.JSON(http.StatusOK, stores)
}
