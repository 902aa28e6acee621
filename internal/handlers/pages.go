package handlers

import (
	"net/http"

	"arogyam-go/internal/models"
	"arogyam-go/internal/performance"
	"arogyam-go/internal/views"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PagesHandler renders the server-side pages.
type PagesHandler struct {
	log     *zap.Logger
	prober  *performance.Prober
	catalog CatalogSource
}

func NewPagesHandler(log *zap.Logger, prober *performance.Prober, catalog CatalogSource) *PagesHandler {
	return &PagesHandler{log: log, prober: prober, catalog: catalog}
}

// Home renders the landing page with the flag set derived from the
// request's client hints on <body>.
func (h *PagesHandler) Home(c *gin.Context) {
	profile := h.prober.ProfileOf(c.Request.Context(), performance.NewHintsEnvironment(c.Request.Header, nil))

	var types []models.ConsultationType
	if catalog, err := h.catalog.Load(c.Request.Context()); err != nil {
		h.log.Warn("Rendering home page without consultation types", zap.Error(err))
	} else {
		types = catalog.Types
	}

	page := views.Page{
		Title:     "Arogyam Homeopathy",
		BodyClass: profile.BodyClass,
		CSRFToken: c.GetString("csrf_token"),
		Nonce:     c.GetString("csp_nonce"),
	}

	c.Header("Accept-CH", performance.AcceptCH)
	c.Header("Vary", performance.AcceptCH)
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	err := views.Layout(page).Render(templ.WithChildren(c.Request.Context(), views.Home(types)), c.Writer)
	if err != nil {
		h.log.Error("Error rendering home page", zap.Error(err))
	}
}
