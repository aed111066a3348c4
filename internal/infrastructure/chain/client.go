package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/chainscan/explorer/internal/config"
	"github.com/chainscan/explorer/internal/domain/entities"
)

// ErrNotConnected is returned by all calls made before the connection loop
// has reached the chain node.
var ErrNotConnected = errors.New("chain node not connected")

// Client wraps the chain RPC connection. The connection is process-wide
// state: Run dials at startup and retries forever on failure, so callers
// never see a connect error, only ErrNotConnected until the node is up.
type Client struct {
	cfg    config.ChainConfig
	logger *zap.Logger

	mu  sync.RWMutex
	eth *ethclient.Client
}

// NewClient creates an unconnected chain client. Run must be started for
// calls to succeed.
func NewClient(cfg config.ChainConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		logger: logger,
	}
}

// Run maintains the node connection until ctx is cancelled. Connection
// attempts repeat on a fixed interval; a connected client that stops
// answering is dropped and re-dialed the same way.
func (c *Client) Run(ctx context.Context) error {
	c.tryConnect(ctx)

	ticker := time.NewTicker(c.cfg.ConnectRetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.disconnect()
			return nil
		case <-ticker.C:
			if c.Connected() {
				c.checkConnection(ctx)
			} else {
				c.tryConnect(ctx)
			}
		}
	}
}

func (c *Client) tryConnect(ctx context.Context) {
	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	eth, err := ethclient.DialContext(dialCtx, c.cfg.RPCURL)
	if err != nil {
		c.logger.Warn("Failed to connect to chain node, will retry",
			zap.String("rpc_url", c.cfg.RPCURL),
			zap.Duration("retry_in", c.cfg.ConnectRetryInterval),
			zap.Error(err),
		)
		return
	}

	chainID, err := eth.ChainID(dialCtx)
	if err != nil {
		eth.Close()
		c.logger.Warn("Chain node not answering, will retry", zap.Error(err))
		return
	}

	if chainID.Int64() != c.cfg.ChainID {
		c.logger.Warn("Chain ID mismatch",
			zap.Int64("expected", c.cfg.ChainID),
			zap.Int64("got", chainID.Int64()),
		)
	}

	c.mu.Lock()
	c.eth = eth
	c.mu.Unlock()

	c.logger.Info("Connected to chain node",
		zap.String("rpc_url", c.cfg.RPCURL),
		zap.Int64("chain_id", chainID.Int64()),
	)
}

func (c *Client) checkConnection(ctx context.Context) {
	eth := c.conn()
	if eth == nil {
		return
	}

	pingCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	if _, err := eth.BlockNumber(pingCtx); err != nil {
		c.logger.Warn("Lost connection to chain node, reconnecting", zap.Error(err))
		c.disconnect()
	}
}

func (c *Client) disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.eth != nil {
		c.eth.Close()
		c.eth = nil
	}
}

func (c *Client) conn() *ethclient.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.eth
}

// Connected reports whether the node connection is established
func (c *Client) Connected() bool {
	return c.conn() != nil
}

// ChainID returns the configured chain ID
func (c *Client) ChainID() int64 {
	return c.cfg.ChainID
}

// Height returns the current chain height
func (c *Client) Height(ctx context.Context) (int64, error) {
	eth := c.conn()
	if eth == nil {
		return 0, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	height, err := eth.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get chain height: %w", err)
	}
	return int64(height), nil
}

// BlockAt fetches the block at the given height along with its transactions,
// already converted to domain entities.
func (c *Client) BlockAt(ctx context.Context, height int64) (*entities.Block, []entities.Transaction, error) {
	eth := c.conn()
	if eth == nil {
		return nil, nil, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	block, err := eth.BlockByNumber(ctx, big.NewInt(height))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get block %d: %w", height, err)
	}

	return convertBlock(block, c.cfg.ChainID)
}

// AccountInfo returns the current state of an on-chain account
func (c *Client) AccountInfo(ctx context.Context, address string) (*entities.Account, error) {
	eth := c.conn()
	if eth == nil {
		return nil, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	addr := common.HexToAddress(address)

	balance, err := eth.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance for %s: %w", address, err)
	}

	nonce, err := eth.NonceAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce for %s: %w", address, err)
	}

	code, err := eth.CodeAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get code for %s: %w", address, err)
	}

	return &entities.Account{
		Address:    address,
		Balance:    balance.String(),
		Nonce:      nonce,
		IsContract: len(code) > 0,
	}, nil
}

// Balance returns the current balance of an address
func (c *Client) Balance(ctx context.Context, address string) (*big.Int, error) {
	eth := c.conn()
	if eth == nil {
		return nil, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	balance, err := eth.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance for %s: %w", address, err)
	}
	return balance, nil
}

// PendingNonce returns the next nonce for an address, including pending txs
func (c *Client) PendingNonce(ctx context.Context, address string) (uint64, error) {
	eth := c.conn()
	if eth == nil {
		return 0, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	nonce, err := eth.PendingNonceAt(ctx, common.HexToAddress(address))
	if err != nil {
		return 0, fmt.Errorf("failed to get pending nonce for %s: %w", address, err)
	}
	return nonce, nil
}

// SendTransaction broadcasts a signed transaction
func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	eth := c.conn()
	if eth == nil {
		return ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	if err := eth.SendTransaction(ctx, tx); err != nil {
		return fmt.Errorf("failed to send transaction: %w", err)
	}
	return nil
}
