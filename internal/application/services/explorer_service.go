package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chainscan/explorer/internal/domain/entities"
	"github.com/chainscan/explorer/internal/domain/repositories"
)

// ExplorerService serves the read side: status from the live chain client,
// lists from the store, address snapshots through the cache.
type ExplorerService struct {
	chain         ChainClient
	blockRepo     repositories.BlockRepository
	txRepo        repositories.TransactionRepository
	validatorRepo repositories.ValidatorRepository
	cache         Cache
	logger        *zap.Logger
}

// NewExplorerService creates a new explorer query service
func NewExplorerService(
	chain ChainClient,
	blockRepo repositories.BlockRepository,
	txRepo repositories.TransactionRepository,
	validatorRepo repositories.ValidatorRepository,
	cache Cache,
	logger *zap.Logger,
) *ExplorerService {
	return &ExplorerService{
		chain:         chain,
		blockRepo:     blockRepo,
		txRepo:        txRepo,
		validatorRepo: validatorRepo,
		cache:         cache,
		logger:        logger,
	}
}

// StatusResponse is the API response for the chain status
type StatusResponse struct {
	ChainID   int64  `json:"chainId"`
	Height    int64  `json:"height"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// BlocksResponse is the API response for block listings
type BlocksResponse struct {
	Blocks []entities.Block `json:"blocks"`
	Total  int64            `json:"total"`
}

// TransactionsResponse is the API response for transaction listings
type TransactionsResponse struct {
	Transactions []entities.Transaction `json:"transactions"`
	Total        int64                  `json:"total"`
}

// ValidatorsResponse is the API response for the validator set
type ValidatorsResponse struct {
	Validators []entities.Validator `json:"validators"`
	Total      int64                `json:"total"`
}

// AddressResponse is the API response for an address lookup
type AddressResponse struct {
	Address   string           `json:"address"`
	Account   entities.Account `json:"account"`
	Balance   string           `json:"balance"`
	Timestamp string           `json:"timestamp"`
}

// Status reports the live chain state. It depends on the chain client, not
// the store, and fails while the node connection is down.
func (s *ExplorerService) Status(ctx context.Context) (*StatusResponse, error) {
	height, err := s.chain.Height(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain status: %w", err)
	}

	return &StatusResponse{
		ChainID:   s.chain.ChainID(),
		Height:    height,
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// Blocks returns indexed blocks, most recent first
func (s *ExplorerService) Blocks(ctx context.Context, limit, offset int) (*BlocksResponse, error) {
	blocks, err := s.blockRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}

	total, err := s.blockRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count blocks: %w", err)
	}

	return &BlocksResponse{Blocks: blocks, Total: total}, nil
}

// Transactions returns indexed transactions, most recent first
func (s *ExplorerService) Transactions(ctx context.Context, limit, offset int) (*TransactionsResponse, error) {
	txs, err := s.txRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	total, err := s.txRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	return &TransactionsResponse{Transactions: txs, Total: total}, nil
}

// Validators returns the active validator set ordered by voting power
func (s *ExplorerService) Validators(ctx context.Context) (*ValidatorsResponse, error) {
	validators, err := s.validatorRepo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list validators: %w", err)
	}

	return &ValidatorsResponse{
		Validators: validators,
		Total:      int64(len(validators)),
	}, nil
}

// Address returns an account snapshot, served from cache when fresh. A miss
// queries the chain synchronously and writes the snapshot through; an
// upstream failure surfaces as an error with no stale fallback.
func (s *ExplorerService) Address(ctx context.Context, address string) (*AddressResponse, error) {
	cacheKey := "address:" + strings.ToLower(address)

	if s.cache != nil {
		var cached AddressResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Address cache hit", zap.String("address", address))
			return &cached, nil
		}
	}

	account, err := s.chain.AccountInfo(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to look up address %s: %w", address, err)
	}

	response := &AddressResponse{
		Address:   address,
		Account:   *account,
		Balance:   account.Balance,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response); err != nil {
			s.logger.Warn("Failed to cache address snapshot", zap.Error(err))
		}
	}

	return response, nil
}
