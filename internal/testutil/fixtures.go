package testutil

import (
	"fmt"
	"time"

	"github.com/chainscan/explorer/internal/domain/entities"
)

// Common test addresses
const (
	AliceAddress     = "0x1111111111111111111111111111111111111111"
	BobAddress       = "0x2222222222222222222222222222222222222222"
	ValidatorOneAddr = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	ValidatorTwoAddr = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

// CreateTestBlock creates a test block with default values
func CreateTestBlock(opts ...BlockOption) entities.Block {
	b := entities.Block{
		Height:          100,
		Hash:            "0x00000000000000000000000000000000000000000000000000000000000000aa",
		Time:            time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		ProposerAddress: ValidatorOneAddr,
		NumTxs:          0,
		TotalGas:        0,
		CreatedAt:       time.Now(),
	}

	for _, opt := range opts {
		opt(&b)
	}

	return b
}

type BlockOption func(*entities.Block)

func WithHeight(height int64) BlockOption {
	return func(b *entities.Block) {
		b.Height = height
		b.Hash = fmt.Sprintf("0x%064x", height)
	}
}

func WithNumTxs(n int) BlockOption {
	return func(b *entities.Block) {
		b.NumTxs = n
	}
}

func WithBlockTime(t time.Time) BlockOption {
	return func(b *entities.Block) {
		b.Time = t
	}
}

// CreateTestTransaction creates a test transaction with default values
func CreateTestTransaction(opts ...TransactionOption) entities.Transaction {
	tx := entities.Transaction{
		Hash:        "0x00000000000000000000000000000000000000000000000000000000000000bb",
		Height:      100,
		Timestamp:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Fee:         "21000000000000",
		Gas:         21000,
		Memo:        "",
		Success:     true,
		Type:        entities.TxTypeTransfer,
		Amount:      "1000000000000000000",
		FromAddress: AliceAddress,
		ToAddress:   BobAddress,
		CreatedAt:   time.Now(),
	}

	for _, opt := range opts {
		opt(&tx)
	}

	return tx
}

type TransactionOption func(*entities.Transaction)

func WithTxHash(hash string) TransactionOption {
	return func(tx *entities.Transaction) {
		tx.Hash = hash
	}
}

func WithTxHeight(height int64) TransactionOption {
	return func(tx *entities.Transaction) {
		tx.Height = height
	}
}

func WithTxType(txType string) TransactionOption {
	return func(tx *entities.Transaction) {
		tx.Type = txType
	}
}

// CreateTestValidator creates a test validator with default values
func CreateTestValidator(opts ...ValidatorOption) entities.Validator {
	v := entities.Validator{
		Address:     ValidatorOneAddr,
		Moniker:     "validator-one",
		VotingPower: 1000,
		Commission:  "0.05",
		Active:      true,
		UpdatedAt:   time.Now(),
	}

	for _, opt := range opts {
		opt(&v)
	}

	return v
}

type ValidatorOption func(*entities.Validator)

func WithValidatorAddress(addr string) ValidatorOption {
	return func(v *entities.Validator) {
		v.Address = addr
	}
}

func WithMoniker(moniker string) ValidatorOption {
	return func(v *entities.Validator) {
		v.Moniker = moniker
	}
}

func WithVotingPower(power int64) ValidatorOption {
	return func(v *entities.Validator) {
		v.VotingPower = power
	}
}

func WithActive(active bool) ValidatorOption {
	return func(v *entities.Validator) {
		v.Active = active
	}
}
