package handlers

import (
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/chainscan/explorer/internal/application/services"
)

// ExplorerHandler handles HTTP requests for chain data
type ExplorerHandler struct {
	service *services.ExplorerService
	logger  *zap.Logger
}

// NewExplorerHandler creates a new explorer handler
func NewExplorerHandler(service *services.ExplorerService, logger *zap.Logger) *ExplorerHandler {
	return &ExplorerHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the explorer routes
func (h *ExplorerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/status", h.GetStatus)
	r.Get("/blocks", h.GetBlocks)
	r.Get("/transactions", h.GetTransactions)
	r.Get("/validators", h.GetValidators)
	r.Get("/address/{address}", h.GetAddress)
}

// GetStatus handles GET /api/v1/status
func (h *ExplorerHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.Status(r.Context())
	if err != nil {
		h.logger.Error("Failed to get chain status", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Chain node unavailable")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetBlocks handles GET /api/v1/blocks
func (h *ExplorerHandler) GetBlocks(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	response, err := h.service.Blocks(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to get blocks", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to get blocks")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetTransactions handles GET /api/v1/transactions
func (h *ExplorerHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	response, err := h.service.Transactions(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to get transactions", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to get transactions")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetValidators handles GET /api/v1/validators
func (h *ExplorerHandler) GetValidators(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.Validators(r.Context())
	if err != nil {
		h.logger.Error("Failed to get validators", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to get validators")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetAddress handles GET /api/v1/address/{address}
func (h *ExplorerHandler) GetAddress(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	if !common.IsHexAddress(address) {
		respondError(w, http.StatusBadRequest, "Invalid address format")
		return
	}

	address = strings.ToLower(address)

	response, err := h.service.Address(r.Context(), address)
	if err != nil {
		h.logger.Error("Failed to get address", zap.Error(err), zap.String("address", address))
		respondError(w, http.StatusInternalServerError, "Failed to get address")
		return
	}

	respondJSON(w, http.StatusOK, response)
}
