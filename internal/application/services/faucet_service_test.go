package services

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chainscan/explorer/internal/config"
	"github.com/chainscan/explorer/internal/testutil"
)

func testFaucetConfig() config.FaucetConfig {
	return config.FaucetConfig{
		DripAmount:    "1ether",
		CooldownTime:  time.Hour,
		AddressPrefix: "0x",
	}
}

func newTestFaucet(t *testing.T, wallet *testutil.MockWallet, cooldowns *testutil.MockCooldownStore) *FaucetService {
	t.Helper()

	chain := testutil.NewMockChainClient()
	chain.HeightFunc = func(ctx context.Context) (int64, error) { return 500, nil }

	svc, err := NewFaucetService(wallet, cooldowns, chain, testFaucetConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create faucet service: %v", err)
	}
	return svc
}

func TestFaucetService_Request_Success(t *testing.T) {
	wallet := testutil.NewMockWallet()
	cooldowns := testutil.NewMockCooldownStore()
	svc := newTestFaucet(t, wallet, cooldowns)

	result, err := svc.Request(context.Background(), testutil.AliceAddress, "203.0.113.7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Success {
		t.Error("expected success")
	}
	if result.TransactionHash == "" {
		t.Error("expected transaction hash")
	}
	if result.Amount != "1ether" {
		t.Errorf("expected amount 1ether, got %s", result.Amount)
	}
	if result.Recipient != testutil.AliceAddress {
		t.Errorf("expected recipient %s, got %s", testutil.AliceAddress, result.Recipient)
	}

	// Both the address and the caller IP enter cooldown
	if !cooldowns.Marked(testutil.AliceAddress) {
		t.Error("expected address cooldown entry")
	}
	if !cooldowns.Marked("ip:203.0.113.7") {
		t.Error("expected IP cooldown entry")
	}
}

func TestFaucetService_Request_SendsDripAmountInWei(t *testing.T) {
	wallet := testutil.NewMockWallet()

	var sent *big.Int
	wallet.SendFunc = func(ctx context.Context, to string, amount *big.Int) (string, error) {
		sent = new(big.Int).Set(amount)
		return "0xabc", nil
	}

	svc := newTestFaucet(t, wallet, testutil.NewMockCooldownStore())

	if _, err := svc.Request(context.Background(), testutil.AliceAddress, "203.0.113.7"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	if sent == nil || sent.Cmp(want) != 0 {
		t.Errorf("expected %s wei sent, got %v", want, sent)
	}
}

func TestFaucetService_Request_InvalidAddress(t *testing.T) {
	cooldowns := testutil.NewMockCooldownStore()
	svc := newTestFaucet(t, testutil.NewMockWallet(), cooldowns)

	for _, address := range []string{"", "bogus", "0x123", "1111111111111111111111111111111111111111"} {
		if _, err := svc.Request(context.Background(), address, "203.0.113.7"); !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("address %q: expected ErrInvalidAddress, got %v", address, err)
		}
	}

	// Rejected requests never touch the cooldown store
	if len(cooldowns.Calls) != 0 {
		t.Errorf("expected no cooldown calls, got %d", len(cooldowns.Calls))
	}
}

func TestFaucetService_Request_CooldownActive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	wallet := testutil.NewMockWallet()
	cooldowns := testutil.NewMockCooldownStore()
	cooldowns.Now = func() time.Time { return now }

	svc := newTestFaucet(t, wallet, cooldowns)

	if _, err := svc.Request(context.Background(), testutil.AliceAddress, "203.0.113.7"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now = now.Add(10 * time.Minute)

	_, err := svc.Request(context.Background(), testutil.AliceAddress, "203.0.113.7")

	var cooldownErr *CooldownActiveError
	if !errors.As(err, &cooldownErr) {
		t.Fatalf("expected CooldownActiveError, got %v", err)
	}
	if cooldownErr.Remaining != 50*time.Minute {
		t.Errorf("expected 50m remaining, got %s", cooldownErr.Remaining)
	}

	// A different address from the same IP is also blocked
	_, err = svc.Request(context.Background(), testutil.BobAddress, "203.0.113.7")
	if !errors.As(err, &cooldownErr) {
		t.Fatalf("expected CooldownActiveError for shared IP, got %v", err)
	}

	// The same address from a different IP is blocked too
	_, err = svc.Request(context.Background(), testutil.AliceAddress, "198.51.100.9")
	if !errors.As(err, &cooldownErr) {
		t.Fatalf("expected CooldownActiveError for same address, got %v", err)
	}

	// After the window expires the drip goes through again
	now = now.Add(51 * time.Minute)
	if _, err := svc.Request(context.Background(), testutil.AliceAddress, "203.0.113.7"); err != nil {
		t.Fatalf("expected drip after cooldown, got %v", err)
	}
}

func TestFaucetService_Request_DispatchFailureSkipsCooldown(t *testing.T) {
	wallet := testutil.NewMockWallet()
	wallet.SendFunc = func(ctx context.Context, to string, amount *big.Int) (string, error) {
		return "", errors.New("insufficient funds")
	}

	cooldowns := testutil.NewMockCooldownStore()
	svc := newTestFaucet(t, wallet, cooldowns)

	_, err := svc.Request(context.Background(), testutil.AliceAddress, "203.0.113.7")
	if !errors.Is(err, ErrDispatchFailed) {
		t.Fatalf("expected ErrDispatchFailed, got %v", err)
	}

	// A failed send leaves no cooldown, so the caller may retry
	if cooldowns.Marked(testutil.AliceAddress) || cooldowns.Marked("ip:203.0.113.7") {
		t.Error("expected no cooldown entries after failed dispatch")
	}

	wallet.SendFunc = nil
	if _, err := svc.Request(context.Background(), testutil.AliceAddress, "203.0.113.7"); err != nil {
		t.Errorf("expected retry to succeed, got %v", err)
	}
}

func TestFaucetService_Request_AddressKeyIsCaseInsensitive(t *testing.T) {
	cooldowns := testutil.NewMockCooldownStore()
	svc := newTestFaucet(t, testutil.NewMockWallet(), cooldowns)

	upper := "0xABCDEFABCDEFABCDEFABCDEFABCDEFABCDEFABCD"

	if _, err := svc.Request(context.Background(), upper, "203.0.113.7"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var cooldownErr *CooldownActiveError
	_, err := svc.Request(context.Background(), "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd", "198.51.100.9")
	if !errors.As(err, &cooldownErr) {
		t.Fatalf("expected CooldownActiveError for re-cased address, got %v", err)
	}
}

func TestFaucetService_Info(t *testing.T) {
	wallet := testutil.NewMockWallet()
	svc := newTestFaucet(t, wallet, testutil.NewMockCooldownStore())

	info, err := svc.Info(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if info.FaucetAddress != wallet.AddressValue {
		t.Errorf("expected faucet address %s, got %s", wallet.AddressValue, info.FaucetAddress)
	}
	if info.Balance != wallet.BalanceValue.String() {
		t.Errorf("expected balance %s, got %s", wallet.BalanceValue, info.Balance)
	}
	if info.ChainID != 1776 {
		t.Errorf("expected chain ID 1776, got %d", info.ChainID)
	}
	if info.Height != 500 {
		t.Errorf("expected height 500, got %d", info.Height)
	}
	if info.DripAmount != "1ether" {
		t.Errorf("expected drip amount 1ether, got %s", info.DripAmount)
	}
	if info.CooldownTime != 3600 {
		t.Errorf("expected cooldown 3600s, got %d", info.CooldownTime)
	}
}

func TestNewFaucetService_RejectsBadDripAmount(t *testing.T) {
	cfg := testFaucetConfig()
	cfg.DripAmount = "lots"

	_, err := NewFaucetService(testutil.NewMockWallet(), testutil.NewMockCooldownStore(), testutil.NewMockChainClient(), cfg, zap.NewNop())
	if err == nil {
		t.Error("expected error for malformed drip amount")
	}
}
