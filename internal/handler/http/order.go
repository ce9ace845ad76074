package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ktecheletronicos/loja/internal/order"
	"github.com/ktecheletronicos/loja/pkg/httputil"
)

// OrderHandler handles checkout submissions.
type OrderHandler struct {
	service *order.Service
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *order.Service, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// SubmitOrder handles POST /api/v1/orders. The response carries the
// assembled order, whether the webhook accepted it and the WhatsApp
// handoff URL the storefront redirects the customer to.
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	var input order.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	result, err := h.service.Submit(r.Context(), sessionID, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: result})
}
