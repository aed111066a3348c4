package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/chainscan/explorer/internal/application/services"
)

// FaucetHandler handles HTTP requests for the token faucet
type FaucetHandler struct {
	service *services.FaucetService
	logger  *zap.Logger
}

// NewFaucetHandler creates a new faucet handler
func NewFaucetHandler(service *services.FaucetService, logger *zap.Logger) *FaucetHandler {
	return &FaucetHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the faucet routes
func (h *FaucetHandler) RegisterRoutes(r chi.Router) {
	r.Post("/request", h.RequestDrip)
	r.Get("/info", h.GetInfo)
}

type dripRequest struct {
	Address string `json:"address"`
}

// RequestDrip handles POST /api/faucet/request
func (h *FaucetHandler) RequestDrip(w http.ResponseWriter, r *http.Request) {
	var req dripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Address == "" {
		respondError(w, http.StatusBadRequest, "Address is required")
		return
	}

	result, err := h.service.Request(r.Context(), req.Address, clientIP(r))
	if err != nil {
		var cooldownErr *services.CooldownActiveError
		switch {
		case errors.Is(err, services.ErrInvalidAddress):
			respondError(w, http.StatusBadRequest, "Invalid address format")
		case errors.As(err, &cooldownErr):
			respondJSON(w, http.StatusTooManyRequests, map[string]interface{}{
				"error":         "Cooldown active",
				"remainingTime": int64(cooldownErr.Remaining.Seconds()),
			})
		default:
			h.logger.Error("Failed to process drip request",
				zap.Error(err),
				zap.String("address", req.Address),
			)
			respondError(w, http.StatusInternalServerError, "Failed to send tokens")
		}
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetInfo handles GET /api/faucet/info
func (h *FaucetHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Info(r.Context())
	if err != nil {
		h.logger.Error("Failed to get faucet info", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Faucet unavailable")
		return
	}

	respondJSON(w, http.StatusOK, info)
}

// clientIP returns the caller address with the port stripped. The RealIP
// middleware has already rewritten RemoteAddr from proxy headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
