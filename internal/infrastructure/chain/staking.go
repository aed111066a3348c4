package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chainscan/explorer/internal/domain/entities"
)

// StakingAPI fetches the current validator set from the chain's staking REST
// endpoint. The node side owns the source of truth; this client only maps the
// response into the current-state validators table shape.
type StakingAPI struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewStakingAPI creates a staking API client. An empty base URL disables the
// source; FetchValidators then returns an empty set.
func NewStakingAPI(baseURL string, logger *zap.Logger) *StakingAPI {
	return &StakingAPI{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

type stakingValidator struct {
	Address     string `json:"address"`
	Moniker     string `json:"moniker"`
	VotingPower int64  `json:"voting_power"`
	Commission  string `json:"commission"`
	Active      bool   `json:"active"`
}

type stakingResponse struct {
	Validators []stakingValidator `json:"validators"`
}

// FetchValidators returns the current validator set
func (s *StakingAPI) FetchValidators(ctx context.Context) ([]entities.Validator, error) {
	if s.baseURL == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/validators", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build validators request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch validators: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("staking API returned status %d", resp.StatusCode)
	}

	var body stakingResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode validators response: %w", err)
	}

	validators := make([]entities.Validator, 0, len(body.Validators))
	for _, v := range body.Validators {
		if v.Address == "" {
			continue
		}
		commission := v.Commission
		if commission == "" {
			commission = "0"
		}
		validators = append(validators, entities.Validator{
			Address:     v.Address,
			Moniker:     v.Moniker,
			VotingPower: v.VotingPower,
			Commission:  commission,
			Active:      v.Active,
		})
	}

	s.logger.Debug("Fetched validator set", zap.Int("count", len(validators)))

	return validators, nil
}
