package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ktecheletronicos/loja/internal/catalog"
	"github.com/ktecheletronicos/loja/internal/domain"
	"github.com/ktecheletronicos/loja/internal/search"
	"github.com/ktecheletronicos/loja/pkg/httputil"
	"github.com/ktecheletronicos/loja/pkg/pagination"
)

// CatalogHandler serves product listing, search and suggestions.
type CatalogHandler struct {
	catalog *catalog.Service
	engine  *search.Engine
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *catalog.Service, engine *search.Engine, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: svc,
		engine:  engine,
		logger:  logger,
	}
}

// ListProducts handles GET /api/v1/products. With a q parameter the catalog
// is filtered and ranked by relevance; without one it pages through the
// catalog in feed order.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	query := r.URL.Query().Get("q")

	if query == "" {
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.catalog.List(params)})
		return
	}

	ranked := h.engine.Search(query, h.catalog.All())
	start, end := params.Slice(len(ranked))
	page := make([]domain.ScoredProduct, end-start)
	copy(page, ranked[start:end])

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: pagination.NewResult(page, len(ranked), params),
	})
}

// GetProduct handles GET /api/v1/products/{slug}.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Get(chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// Suggest handles GET /api/v1/products/suggestions. It backs the
// search-as-you-type dropdown with fuzzy name matches.
func (h *CatalogHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 50 {
			limit = v
		}
	}

	suggestions := h.engine.Suggest(query, h.catalog.All(), limit)
	if suggestions == nil {
		suggestions = []string{}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: suggestions})
}
