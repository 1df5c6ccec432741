package handlers

import (
	"fmt"
	"net/http"

	scalargo "github.com/bdpiprava/scalar-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GET /docs renderiza la referencia de la API a partir de api.yaml.
func (h *Handler) Docs(c *gin.Context) {
	html, err := scalargo.NewV2(
		scalargo.WithSpecDir(h.docsSpecDir),
		scalargo.WithMetaDataOpts(
			scalargo.WithTitle("Price Compare API"),
		),
	)
	if err != nil {
		h.log.Error("could not render API docs", zap.String("spec_dir", h.docsSpecDir), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "could not render API docs"})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	fmt.Fprint(c.Writer, html)
}
