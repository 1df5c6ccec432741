package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"price-compare/internal/models"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 32
)

// POST /api/users
func (h *Handler) CreateUser(c *gin.Context) {
	var user models.User
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := validateUser(&user); err != nil {
		h.respondError(c, err, "could not create user")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultTimeout)
	defer cancel()

	created, err := h.svc.RegisterUser(ctx, user.Username, user.Email)
	if err != nil {
		h.respondError(c, err, "could not create user")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GET /api/users/:id
func (h *Handler) GetUser(c *gin.Context) {
	id, err := parseID(c.Param("id"), "user ID")
	if err != nil {
		h.respondError(c, err, "error fetching user")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultTimeout)
	defer cancel()

	user, err := h.svc.User(ctx, id)
	if err != nil {
		h.respondError(c, err, "error fetching user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// validateUser valida lo que el binding no cubre
func validateUser(u *models.User) error {
	name := strings.TrimSpace(u.Username)
	if len(name) < minUsernameLen || len(name) > maxUsernameLen {
		return &ValidationError{Field: "username", Message: "username must be between 3 and 32 characters"}
	}
	if strings.ContainsAny(name, " \t\n") {
		return &ValidationError{Field: "username", Message: "username cannot contain spaces"}
	}
	return nil
}
