package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chainscan/explorer/internal/domain/entities"
	"github.com/chainscan/explorer/internal/testutil"
)

func TestExplorerService_Status(t *testing.T) {
	chain := testutil.NewMockChainClient()
	chain.HeightFunc = func(ctx context.Context) (int64, error) { return 12345, nil }

	svc := NewExplorerService(chain, testutil.NewMockBlockRepository(), testutil.NewMockTransactionRepository(), testutil.NewMockValidatorRepository(), nil, zap.NewNop())

	status, err := svc.Status(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Height != 12345 {
		t.Errorf("expected height 12345, got %d", status.Height)
	}
	if status.ChainID != 1776 {
		t.Errorf("expected chain ID 1776, got %d", status.ChainID)
	}
	if status.Status != "ok" {
		t.Errorf("expected status ok, got %s", status.Status)
	}
}

func TestExplorerService_Status_NodeDown(t *testing.T) {
	chain := testutil.NewMockChainClient()
	chain.HeightFunc = func(ctx context.Context) (int64, error) {
		return 0, errors.New("not connected")
	}

	svc := NewExplorerService(chain, testutil.NewMockBlockRepository(), testutil.NewMockTransactionRepository(), testutil.NewMockValidatorRepository(), nil, zap.NewNop())

	if _, err := svc.Status(context.Background()); err == nil {
		t.Error("expected error while node is down")
	}
}

func TestExplorerService_Blocks_Pagination(t *testing.T) {
	blockRepo := testutil.NewMockBlockRepository()
	for h := int64(1); h <= 5; h++ {
		block := testutil.CreateTestBlock(testutil.WithHeight(h))
		blockRepo.Upsert(context.Background(), &block)
	}

	svc := NewExplorerService(testutil.NewMockChainClient(), blockRepo, testutil.NewMockTransactionRepository(), testutil.NewMockValidatorRepository(), nil, zap.NewNop())

	first, err := svc.Blocks(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Blocks(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Total != 5 || second.Total != 5 {
		t.Errorf("expected total 5, got %d and %d", first.Total, second.Total)
	}
	if len(first.Blocks) != 2 || len(second.Blocks) != 2 {
		t.Fatalf("expected 2 blocks per page, got %d and %d", len(first.Blocks), len(second.Blocks))
	}

	// Most recent first, pages disjoint
	if first.Blocks[0].Height != 5 || first.Blocks[1].Height != 4 {
		t.Errorf("unexpected first page heights: %d, %d", first.Blocks[0].Height, first.Blocks[1].Height)
	}
	if second.Blocks[0].Height != 3 || second.Blocks[1].Height != 2 {
		t.Errorf("unexpected second page heights: %d, %d", second.Blocks[0].Height, second.Blocks[1].Height)
	}
}

func TestExplorerService_Validators_ActiveOnly(t *testing.T) {
	validatorRepo := testutil.NewMockValidatorRepository()
	validatorRepo.UpsertAll(context.Background(), []entities.Validator{
		testutil.CreateTestValidator(),
		testutil.CreateTestValidator(
			testutil.WithValidatorAddress(testutil.ValidatorTwoAddr),
			testutil.WithActive(false),
		),
	})

	svc := NewExplorerService(testutil.NewMockChainClient(), testutil.NewMockBlockRepository(), testutil.NewMockTransactionRepository(), validatorRepo, nil, zap.NewNop())

	response, err := svc.Validators(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.Total != 1 {
		t.Fatalf("expected 1 active validator, got %d", response.Total)
	}
	if response.Validators[0].Address != testutil.ValidatorOneAddr {
		t.Errorf("unexpected validator %s", response.Validators[0].Address)
	}
}

func TestExplorerService_Address_CachesSnapshot(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cache := testutil.NewMockCache(30 * time.Second)
	cache.Now = func() time.Time { return now }

	chain := testutil.NewMockChainClient()
	chain.AccountInfoFunc = func(ctx context.Context, address string) (*entities.Account, error) {
		return &entities.Account{
			Address: address,
			Balance: "42000000000000000000",
			Nonce:   7,
		}, nil
	}

	svc := NewExplorerService(chain, testutil.NewMockBlockRepository(), testutil.NewMockTransactionRepository(), testutil.NewMockValidatorRepository(), cache, zap.NewNop())

	first, err := svc.Address(context.Background(), testutil.AliceAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Balance != "42000000000000000000" {
		t.Errorf("unexpected balance %s", first.Balance)
	}
	if chain.CallCount("AccountInfo") != 1 {
		t.Fatalf("expected 1 chain lookup, got %d", chain.CallCount("AccountInfo"))
	}

	// Second lookup within the TTL is served from cache
	second, err := svc.Address(context.Background(), testutil.AliceAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Balance != first.Balance {
		t.Errorf("cached balance mismatch: %s vs %s", second.Balance, first.Balance)
	}
	if chain.CallCount("AccountInfo") != 1 {
		t.Errorf("expected cache hit, got %d chain lookups", chain.CallCount("AccountInfo"))
	}

	// Expired entry falls through to the chain again
	now = now.Add(31 * time.Second)
	if _, err := svc.Address(context.Background(), testutil.AliceAddress); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chain.CallCount("AccountInfo") != 2 {
		t.Errorf("expected refetch after TTL, got %d chain lookups", chain.CallCount("AccountInfo"))
	}
}

func TestExplorerService_Address_UpstreamFailure(t *testing.T) {
	chain := testutil.NewMockChainClient()
	chain.AccountInfoFunc = func(ctx context.Context, address string) (*entities.Account, error) {
		return nil, errors.New("not connected")
	}

	svc := NewExplorerService(chain, testutil.NewMockBlockRepository(), testutil.NewMockTransactionRepository(), testutil.NewMockValidatorRepository(), testutil.NewMockCache(time.Minute), zap.NewNop())

	if _, err := svc.Address(context.Background(), testutil.AliceAddress); err == nil {
		t.Error("expected error on upstream failure")
	}
}
