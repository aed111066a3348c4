package services

import (
	"context"
	"math/big"
	"time"

	"github.com/chainscan/explorer/internal/domain/entities"
)

// Fanout channel and event names
const (
	ChannelBlocks = "blocks"
	EventNewBlock = "new_block"
)

// ChainClient is the view of the chain node connection the services consume.
// Implemented by chain.Client; substituted with a fake in tests.
type ChainClient interface {
	Connected() bool
	ChainID() int64
	Height(ctx context.Context) (int64, error)
	BlockAt(ctx context.Context, height int64) (*entities.Block, []entities.Transaction, error)
	AccountInfo(ctx context.Context, address string) (*entities.Account, error)
}

// ValidatorSource supplies the current validator set for refresh cycles
type ValidatorSource interface {
	FetchValidators(ctx context.Context) ([]entities.Validator, error)
}

// Publisher pushes events to live subscribers. Implemented by ws.Broker.
type Publisher interface {
	Publish(channel, eventType string, data interface{})
}

// Cache is a short-TTL key/value cache. Implemented by cache.RedisCache.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
}

// Wallet holds the faucet's funded account
type Wallet interface {
	Address() string
	Balance(ctx context.Context) (*big.Int, error)
	Send(ctx context.Context, to string, amount *big.Int) (string, error)
}

// CooldownStore tracks dispense cooldown windows
type CooldownStore interface {
	Remaining(ctx context.Context, key string) (time.Duration, error)
	Mark(ctx context.Context, key string, window time.Duration) error
}
