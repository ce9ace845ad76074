package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ktecheletronicos/loja/internal/domain"
	"github.com/ktecheletronicos/loja/internal/location"
	"github.com/ktecheletronicos/loja/pkg/httputil"
	"github.com/ktecheletronicos/loja/pkg/validator"
)

// LocationHandler serves the delivery location and distance endpoints.
type LocationHandler struct {
	resolver *location.Resolver
	fee      location.FeeConfig
	logger   *slog.Logger
}

// NewLocationHandler creates a new location HTTP handler.
func NewLocationHandler(resolver *location.Resolver, fee location.FeeConfig, logger *slog.Logger) *LocationHandler {
	return &LocationHandler{
		resolver: resolver,
		fee:      fee,
		logger:   logger,
	}
}

// CoordinateRequest is the JSON body carrying a map pin position. Pointers
// distinguish a missing field from latitude or longitude zero.
type CoordinateRequest struct {
	Latitude  *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}

func (req CoordinateRequest) coordinate() domain.Coordinate {
	return domain.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}
}

// distanceResponse is the distance result annotated with the delivery fee.
type distanceResponse struct {
	domain.DistanceResult
	DeliveryFee float64 `json:"delivery_fee"`
	Serviceable bool    `json:"serviceable"`
}

func (h *LocationHandler) decodeCoordinate(w http.ResponseWriter, r *http.Request) (domain.Coordinate, bool) {
	var req CoordinateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return domain.Coordinate{}, false
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return domain.Coordinate{}, false
	}
	return req.coordinate(), true
}

// UpdateLocation handles POST /api/v1/location. It records the pin
// position and answers with the distance to the store and the fee.
func (h *LocationHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	coord, ok := h.decodeCoordinate(w, r)
	if !ok {
		return
	}

	result, err := h.resolver.UpdateSelected(r.Context(), sessionID, coord)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.withFee(result)})
}

// GetDistance handles GET /api/v1/location/distance.
func (h *LocationHandler) GetDistance(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	result, ok := h.resolver.LastDistance(sessionID)
	if !ok {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "NOT_FOUND", Message: "no location selected yet"},
		})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.withFee(result)})
}

// GetAddress handles GET /api/v1/location/address.
func (h *LocationHandler) GetAddress(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	addr, err := h.resolver.Address(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNoSelection) {
			httputil.WriteJSON(w, http.StatusNotFound, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "NOT_FOUND", Message: "no location selected yet"},
			})
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: addr})
}

// SetReference handles PUT /api/v1/location/reference. It moves the store
// reference point and, when a pin is already placed, returns the
// recalculated distance.
func (h *LocationHandler) SetReference(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIDFromContext(r.Context())

	coord, ok := h.decodeCoordinate(w, r)
	if !ok {
		return
	}

	result, err := h.resolver.SetReference(r.Context(), sessionID, coord)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if result == nil {
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "reference updated"}})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.withFee(*result)})
}

func (h *LocationHandler) withFee(result domain.DistanceResult) distanceResponse {
	fee, serviceable := location.FeeForDistance(h.fee, result.DistanceKm)
	return distanceResponse{
		DistanceResult: result,
		DeliveryFee:    fee,
		Serviceable:    serviceable,
	}
}
