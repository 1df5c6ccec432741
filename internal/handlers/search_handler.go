package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"price-compare/internal/search"
	"price-compare/internal/sorter"
)

// GET /api/search?q=&sort=&userId=
func (h *Handler) Search(c *gin.Context) {
	q := c.Query("q")
	if strings.TrimSpace(q) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Search query is required"})
		return
	}

	criterion, err := sorter.ParseCriterion(c.Query("sort"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	userID, err := optionalUserID(c)
	if err != nil {
		h.respondError(c, err, "search failed")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), searchTimeout)
	defer cancel()

	result, err := h.svc.Search(ctx, q, search.Options{UserID: userID, Sort: criterion})
	if err != nil {
		h.respondError(c, err, "search failed")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GET /api/recent-searches?userId=&limit=
func (h *Handler) RecentSearches(c *gin.Context) {
	userID, err := optionalUserID(c)
	if err != nil {
		h.respondError(c, err, "failed to fetch recent searches")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultRecentLimit)))
	if err != nil || limit < 1 || limit > maxRecentLimit {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be between 1 and 100"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultTimeout)
	defer cancel()

	searches, err := h.svc.RecentSearches(ctx, userID, limit)
	if err != nil {
		h.respondError(c, err, "failed to fetch recent searches")
		return
	}

	c.JSON(http.StatusOK, searches)
}
