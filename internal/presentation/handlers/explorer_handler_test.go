package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/chainscan/explorer/internal/application/services"
	"github.com/chainscan/explorer/internal/domain/entities"
	"github.com/chainscan/explorer/internal/testutil"
)

func newExplorerRouter(chain *testutil.MockChainClient, blockRepo *testutil.MockBlockRepository) chi.Router {
	svc := services.NewExplorerService(
		chain,
		blockRepo,
		testutil.NewMockTransactionRepository(),
		testutil.NewMockValidatorRepository(),
		nil,
		zap.NewNop(),
	)

	r := chi.NewRouter()
	NewExplorerHandler(svc, zap.NewNop()).RegisterRoutes(r)
	return r
}

func TestExplorerHandler_GetStatus(t *testing.T) {
	chain := testutil.NewMockChainClient()
	chain.HeightFunc = func(ctx context.Context) (int64, error) { return 777, nil }

	router := newExplorerRouter(chain, testutil.NewMockBlockRepository())

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response services.StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Height != 777 {
		t.Errorf("expected height 777, got %d", response.Height)
	}
	if response.Status != "ok" {
		t.Errorf("expected status ok, got %s", response.Status)
	}
}

func TestExplorerHandler_GetStatus_NodeDown(t *testing.T) {
	chain := testutil.NewMockChainClient()
	chain.HeightFunc = func(ctx context.Context) (int64, error) {
		return 0, errors.New("not connected")
	}

	router := newExplorerRouter(chain, testutil.NewMockBlockRepository())

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
}

func TestExplorerHandler_GetBlocks_Pagination(t *testing.T) {
	blockRepo := testutil.NewMockBlockRepository()
	for h := int64(1); h <= 30; h++ {
		block := testutil.CreateTestBlock(testutil.WithHeight(h))
		blockRepo.Upsert(context.Background(), &block)
	}

	router := newExplorerRouter(testutil.NewMockChainClient(), blockRepo)

	req := httptest.NewRequest(http.MethodGet, "/blocks?limit=5&offset=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response services.BlocksResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Total != 30 {
		t.Errorf("expected total 30, got %d", response.Total)
	}
	if len(response.Blocks) != 5 {
		t.Fatalf("expected 5 blocks, got %d", len(response.Blocks))
	}
	if response.Blocks[0].Height != 20 {
		t.Errorf("expected height 20 first, got %d", response.Blocks[0].Height)
	}
}

func TestExplorerHandler_GetBlocks_BadParamsFallBack(t *testing.T) {
	blockRepo := testutil.NewMockBlockRepository()
	for h := int64(1); h <= 30; h++ {
		block := testutil.CreateTestBlock(testutil.WithHeight(h))
		blockRepo.Upsert(context.Background(), &block)
	}

	router := newExplorerRouter(testutil.NewMockChainClient(), blockRepo)

	// Oversized limit and junk offset fall back to defaults
	req := httptest.NewRequest(http.MethodGet, "/blocks?limit=9999&offset=bogus", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response services.BlocksResponse
	json.NewDecoder(rec.Body).Decode(&response)
	if len(response.Blocks) != 20 {
		t.Errorf("expected default limit of 20, got %d blocks", len(response.Blocks))
	}
}

func TestExplorerHandler_GetAddress(t *testing.T) {
	chain := testutil.NewMockChainClient()
	chain.AccountInfoFunc = func(ctx context.Context, address string) (*entities.Account, error) {
		return &entities.Account{Address: address, Balance: "1000", Nonce: 3}, nil
	}

	router := newExplorerRouter(chain, testutil.NewMockBlockRepository())

	req := httptest.NewRequest(http.MethodGet, "/address/"+testutil.AliceAddress, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response services.AddressResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Balance != "1000" {
		t.Errorf("expected balance 1000, got %s", response.Balance)
	}
}

func TestExplorerHandler_GetAddress_Invalid(t *testing.T) {
	router := newExplorerRouter(testutil.NewMockChainClient(), testutil.NewMockBlockRepository())

	req := httptest.NewRequest(http.MethodGet, "/address/nonsense", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}
