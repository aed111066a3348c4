package services

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainscan/explorer/internal/config"
)

// FaucetService validates drip requests, enforces per-address and per-IP
// cooldowns, and submits signed transfers from the faucet account.
//
// Cooldowns are recorded only after a successful dispatch and there is no
// lock between the cooldown check and the send, so two concurrent requests
// for the same address can both pass the check. That window is accepted:
// the exposure is one extra drip, bounded by the faucet balance.
type FaucetService struct {
	wallet    Wallet
	cooldowns CooldownStore
	chain     ChainClient
	cfg       config.FaucetConfig
	dripWei   *big.Int
	logger    *zap.Logger
}

// DripResult is the API response for a successful drip
type DripResult struct {
	Success         bool   `json:"success"`
	TransactionHash string `json:"transactionHash"`
	Amount          string `json:"amount"`
	Recipient       string `json:"recipient"`
}

// FaucetInfo is the API response for GET /api/faucet/info
type FaucetInfo struct {
	FaucetAddress string `json:"faucetAddress"`
	Balance       string `json:"balance"`
	ChainID       int64  `json:"chainId"`
	Height        int64  `json:"height"`
	DripAmount    string `json:"dripAmount"`
	CooldownTime  int64  `json:"cooldownTime"`
}

// NewFaucetService creates a new faucet service. The configured drip amount
// is parsed eagerly so a bad value fails at startup, not per request.
func NewFaucetService(
	wallet Wallet,
	cooldowns CooldownStore,
	chain ChainClient,
	cfg config.FaucetConfig,
	logger *zap.Logger,
) (*FaucetService, error) {
	dripWei, err := ParseDripAmount(cfg.DripAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid drip amount %q: %w", cfg.DripAmount, err)
	}

	return &FaucetService{
		wallet:    wallet,
		cooldowns: cooldowns,
		chain:     chain,
		cfg:       cfg,
		dripWei:   dripWei,
		logger:    logger,
	}, nil
}

// Request processes one drip request from the given address and caller IP
func (s *FaucetService) Request(ctx context.Context, address, callerIP string) (*DripResult, error) {
	if !s.validAddress(address) {
		return nil, ErrInvalidAddress
	}

	addressKey := strings.ToLower(address)
	ipKey := "ip:" + callerIP

	remaining, err := s.cooldownRemaining(ctx, addressKey, ipKey)
	if err != nil {
		return nil, err
	}
	if remaining > 0 {
		return nil, &CooldownActiveError{Remaining: remaining}
	}

	txHash, err := s.wallet.Send(ctx, address, s.dripWei)
	if err != nil {
		// No cooldown is recorded on failure so the caller may retry.
		s.logger.Error("Drip dispatch failed",
			zap.String("recipient", address),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	for _, key := range []string{addressKey, ipKey} {
		if err := s.cooldowns.Mark(ctx, key, s.cfg.CooldownTime); err != nil {
			s.logger.Warn("Failed to record cooldown",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Dispensed drip",
		zap.String("recipient", address),
		zap.String("tx_hash", txHash),
	)

	return &DripResult{
		Success:         true,
		TransactionHash: txHash,
		Amount:          s.cfg.DripAmount,
		Recipient:       address,
	}, nil
}

// Info reports the faucet account state and configuration
func (s *FaucetService) Info(ctx context.Context) (*FaucetInfo, error) {
	balance, err := s.wallet.Balance(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get faucet balance: %w", err)
	}

	height, err := s.chain.Height(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain height: %w", err)
	}

	return &FaucetInfo{
		FaucetAddress: s.wallet.Address(),
		Balance:       balance.String(),
		ChainID:       s.chain.ChainID(),
		Height:        height,
		DripAmount:    s.cfg.DripAmount,
		CooldownTime:  int64(s.cfg.CooldownTime.Seconds()),
	}, nil
}

func (s *FaucetService) validAddress(address string) bool {
	if !strings.HasPrefix(address, s.cfg.AddressPrefix) {
		return false
	}
	return common.IsHexAddress(address)
}

// cooldownRemaining returns the longest active cooldown across the keys
func (s *FaucetService) cooldownRemaining(ctx context.Context, keys ...string) (time.Duration, error) {
	var max time.Duration
	for _, key := range keys {
		remaining, err := s.cooldowns.Remaining(ctx, key)
		if err != nil {
			return 0, fmt.Errorf("failed to check cooldown: %w", err)
		}
		if remaining > max {
			max = remaining
		}
	}
	return max, nil
}
