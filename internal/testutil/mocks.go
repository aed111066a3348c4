package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/chainscan/explorer/internal/domain/entities"
)

type MockCall struct {
	Method string
	Args   []interface{}
}

// MockBlockRepository is a mock implementation of BlockRepository
type MockBlockRepository struct {
	mu     sync.RWMutex
	blocks map[int64]entities.Block

	// Function hooks for custom behavior
	UpsertFunc func(ctx context.Context, block *entities.Block) error

	Calls []MockCall
}

func NewMockBlockRepository() *MockBlockRepository {
	return &MockBlockRepository{
		blocks: make(map[int64]entities.Block),
		Calls:  make([]MockCall, 0),
	}
}

func (m *MockBlockRepository) Upsert(ctx context.Context, block *entities.Block) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Upsert", Args: []interface{}{block.Height}})
	m.mu.Unlock()

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, block)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// First write wins, matching the unique-height constraint
	if _, exists := m.blocks[block.Height]; !exists {
		m.blocks[block.Height] = *block
	}
	return nil
}

func (m *MockBlockRepository) List(ctx context.Context, limit, offset int) ([]entities.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]entities.Block, 0, len(m.blocks))
	for _, b := range m.blocks {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Height > all[j].Height })

	if offset > len(all) {
		return []entities.Block{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *MockBlockRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.blocks)), nil
}

func (m *MockBlockRepository) GetByHeight(ctx context.Context, height int64) (*entities.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if b, ok := m.blocks[height]; ok {
		return &b, nil
	}
	return nil, nil
}

func (m *MockBlockRepository) MaxHeight(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var max int64
	for h := range m.blocks {
		if h > max {
			max = h
		}
	}
	return max, nil
}

// Stored returns the block persisted at the given height, if any
func (m *MockBlockRepository) Stored(height int64) (entities.Block, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blocks[height]
	return b, ok
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mu  sync.RWMutex
	txs map[string]entities.Transaction

	BatchInsertFunc func(ctx context.Context, txs []entities.Transaction) error

	Calls []MockCall
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		txs:   make(map[string]entities.Transaction),
		Calls: make([]MockCall, 0),
	}
}

func (m *MockTransactionRepository) BatchInsert(ctx context.Context, txs []entities.Transaction) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "BatchInsert", Args: []interface{}{len(txs)}})
	m.mu.Unlock()

	if m.BatchInsertFunc != nil {
		return m.BatchInsertFunc(ctx, txs)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tx := range txs {
		if _, exists := m.txs[tx.Hash]; !exists {
			m.txs[tx.Hash] = tx
		}
	}
	return nil
}

func (m *MockTransactionRepository) List(ctx context.Context, limit, offset int) ([]entities.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]entities.Transaction, 0, len(m.txs))
	for _, tx := range m.txs {
		all = append(all, tx)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Height > all[j].Height })

	if offset > len(all) {
		return []entities.Transaction{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *MockTransactionRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.txs)), nil
}

// MockValidatorRepository is a mock implementation of ValidatorRepository
type MockValidatorRepository struct {
	mu         sync.RWMutex
	validators map[string]entities.Validator

	UpsertAllFunc func(ctx context.Context, validators []entities.Validator) error

	Calls []MockCall
}

func NewMockValidatorRepository() *MockValidatorRepository {
	return &MockValidatorRepository{
		validators: make(map[string]entities.Validator),
		Calls:      make([]MockCall, 0),
	}
}

func (m *MockValidatorRepository) UpsertAll(ctx context.Context, validators []entities.Validator) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "UpsertAll", Args: []interface{}{len(validators)}})
	m.mu.Unlock()

	if m.UpsertAllFunc != nil {
		return m.UpsertAllFunc(ctx, validators)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool, len(validators))
	for _, v := range validators {
		m.validators[v.Address] = v
		seen[v.Address] = true
	}
	for addr, v := range m.validators {
		if !seen[addr] {
			v.Active = false
			m.validators[addr] = v
		}
	}
	return nil
}

func (m *MockValidatorRepository) List(ctx context.Context, activeOnly bool) ([]entities.Validator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]entities.Validator, 0, len(m.validators))
	for _, v := range m.validators {
		if activeOnly && !v.Active {
			continue
		}
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].VotingPower > result[j].VotingPower })
	return result, nil
}

func (m *MockValidatorRepository) Count(ctx context.Context, activeOnly bool) (int64, error) {
	vals, _ := m.List(ctx, activeOnly)
	return int64(len(vals)), nil
}

// MockWatermarkRepository is a mock implementation of WatermarkRepository
type MockWatermarkRepository struct {
	mu     sync.RWMutex
	height int64

	SetFunc func(ctx context.Context, height int64) error

	Calls []MockCall
}

func NewMockWatermarkRepository() *MockWatermarkRepository {
	return &MockWatermarkRepository{Calls: make([]MockCall, 0)}
}

func (m *MockWatermarkRepository) Get(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.height, nil
}

func (m *MockWatermarkRepository) Set(ctx context.Context, height int64) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Set", Args: []interface{}{height}})
	m.mu.Unlock()

	if m.SetFunc != nil {
		return m.SetFunc(ctx, height)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if height > m.height {
		m.height = height
	}
	return nil
}

// Height returns the current watermark without going through the interface
func (m *MockWatermarkRepository) Height() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.height
}

// MockChainClient is a mock implementation of the chain node client
type MockChainClient struct {
	mu sync.RWMutex

	ConnectedValue bool
	ChainIDValue   int64

	HeightFunc      func(ctx context.Context) (int64, error)
	BlockAtFunc     func(ctx context.Context, height int64) (*entities.Block, []entities.Transaction, error)
	AccountInfoFunc func(ctx context.Context, address string) (*entities.Account, error)

	Calls []MockCall
}

func NewMockChainClient() *MockChainClient {
	return &MockChainClient{
		ConnectedValue: true,
		ChainIDValue:   1776,
		Calls:          make([]MockCall, 0),
	}
}

func (m *MockChainClient) Connected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ConnectedValue
}

func (m *MockChainClient) ChainID() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ChainIDValue
}

func (m *MockChainClient) Height(ctx context.Context) (int64, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Height", Args: nil})
	m.mu.Unlock()

	if m.HeightFunc != nil {
		return m.HeightFunc(ctx)
	}
	return 0, errors.New("no height configured")
}

func (m *MockChainClient) BlockAt(ctx context.Context, height int64) (*entities.Block, []entities.Transaction, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "BlockAt", Args: []interface{}{height}})
	m.mu.Unlock()

	if m.BlockAtFunc != nil {
		return m.BlockAtFunc(ctx, height)
	}
	return nil, nil, errors.New("no block configured")
}

func (m *MockChainClient) AccountInfo(ctx context.Context, address string) (*entities.Account, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "AccountInfo", Args: []interface{}{address}})
	m.mu.Unlock()

	if m.AccountInfoFunc != nil {
		return m.AccountInfoFunc(ctx, address)
	}
	return nil, errors.New("no account configured")
}

// CallCount returns how many times the named method was invoked
func (m *MockChainClient) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, c := range m.Calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// MockValidatorSource is a mock implementation of ValidatorSource
type MockValidatorSource struct {
	mu sync.RWMutex

	Validators []entities.Validator
	Err        error

	Calls []MockCall
}

func NewMockValidatorSource(validators ...entities.Validator) *MockValidatorSource {
	return &MockValidatorSource{
		Validators: validators,
		Calls:      make([]MockCall, 0),
	}
}

func (m *MockValidatorSource) FetchValidators(ctx context.Context) ([]entities.Validator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "FetchValidators", Args: nil})
	return m.Validators, m.Err
}

// PublishedEvent records one fanout publish
type PublishedEvent struct {
	Channel string
	Type    string
	Data    interface{}
}

// MockPublisher records published events in order
type MockPublisher struct {
	mu     sync.RWMutex
	Events []PublishedEvent
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Events: make([]PublishedEvent, 0)}
}

func (m *MockPublisher) Publish(channel, eventType string, data interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{Channel: channel, Type: eventType, Data: data})
}

// Published returns a snapshot of the events published so far
func (m *MockPublisher) Published() []PublishedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]PublishedEvent, len(m.Events))
	copy(out, m.Events)
	return out
}

// MockCache is an in-memory cache with TTL and an injectable clock
type MockCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration

	Now func() time.Time

	Calls []MockCall
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

var ErrCacheMiss = errors.New("cache miss")

func NewMockCache(ttl time.Duration) *MockCache {
	return &MockCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		Now:     time.Now,
		Calls:   make([]MockCall, 0),
	}
}

func (m *MockCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "Get", Args: []interface{}{key}})

	entry, ok := m.entries[key]
	if !ok || m.Now().After(entry.expiresAt) {
		return ErrCacheMiss
	}

	return json.Unmarshal(entry.value, dest)
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "Set", Args: []interface{}{key}})

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = cacheEntry{value: data, expiresAt: m.Now().Add(m.ttl)}
	return nil
}

// MockCooldownStore is an in-memory cooldown store with a fake clock
type MockCooldownStore struct {
	mu      sync.RWMutex
	expires map[string]time.Time

	Now func() time.Time

	RemainingErr error
	MarkErr      error

	Calls []MockCall
}

func NewMockCooldownStore() *MockCooldownStore {
	return &MockCooldownStore{
		expires: make(map[string]time.Time),
		Now:     time.Now,
		Calls:   make([]MockCall, 0),
	}
}

func (m *MockCooldownStore) Remaining(ctx context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "Remaining", Args: []interface{}{key}})

	if m.RemainingErr != nil {
		return 0, m.RemainingErr
	}

	expiry, ok := m.expires[key]
	if !ok {
		return 0, nil
	}
	remaining := expiry.Sub(m.Now())
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

func (m *MockCooldownStore) Mark(ctx context.Context, key string, window time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "Mark", Args: []interface{}{key, window}})

	if m.MarkErr != nil {
		return m.MarkErr
	}
	m.expires[key] = m.Now().Add(window)
	return nil
}

// Marked reports whether a cooldown entry exists for the key
func (m *MockCooldownStore) Marked(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.expires[key]
	return ok
}

// MockWallet is a mock implementation of the faucet wallet
type MockWallet struct {
	mu sync.RWMutex

	AddressValue string
	BalanceValue *big.Int

	SendFunc func(ctx context.Context, to string, amount *big.Int) (string, error)

	Calls []MockCall
}

func NewMockWallet() *MockWallet {
	return &MockWallet{
		AddressValue: "0xfacefacefacefacefacefacefacefacefaceface",
		BalanceValue: big.NewInt(1_000_000_000_000_000_000),
		Calls:        make([]MockCall, 0),
	}
}

func (m *MockWallet) Address() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.AddressValue
}

func (m *MockWallet) Balance(ctx context.Context) (*big.Int, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Balance", Args: nil})
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()
	return new(big.Int).Set(m.BalanceValue), nil
}

func (m *MockWallet) Send(ctx context.Context, to string, amount *big.Int) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Send", Args: []interface{}{to, amount.String()}})
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, amount)
	}
	return "0xdddddddddddddddddddddddddddddddddddddddddddddddddddddddddddddddd", nil
}

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	mu sync.RWMutex

	Error error
	Calls []MockCall
}

func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	var err error
	if !healthy {
		err = errors.New("health check failed")
	}
	return &MockHealthChecker{Error: err, Calls: make([]MockCall, 0)}
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "HealthCheck", Args: nil})
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Error
}
