package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	bip39 "github.com/tyler-smith/go-bip39"
	"go.uber.org/zap"
)

// transferGasLimit is the fixed gas cost of a plain value transfer
const transferGasLimit = 21000

// Broadcaster is the subset of the chain client the wallet needs to submit
// transactions.
type Broadcaster interface {
	PendingNonce(ctx context.Context, address string) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	Balance(ctx context.Context, address string) (*big.Int, error)
}

// Wallet holds the faucet's funded account, derived from a mnemonic, and
// signs value transfers against a fixed chain ID.
type Wallet struct {
	key      *ecdsa.PrivateKey
	address  common.Address
	signer   types.Signer
	gasPrice *big.Int
	client   Broadcaster
	logger   *zap.Logger
}

// NewWallet derives the faucet key from the mnemonic at path m/44'/60'/0'/0/0
func NewWallet(mnemonic string, chainID int64, gasPriceWei int64, client Broadcaster, logger *zap.Logger) (*Wallet, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("invalid mnemonic")
	}

	seed := bip39.NewSeed(mnemonic, "")

	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to derive master key: %w", err)
	}

	path := []uint32{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + 60,
		hdkeychain.HardenedKeyStart + 0,
		0,
		0,
	}

	child := master
	for _, index := range path {
		child, err = child.Derive(index)
		if err != nil {
			return nil, fmt.Errorf("failed to derive key: %w", err)
		}
	}

	privKey, err := child.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to extract private key: %w", err)
	}

	// Rebuild the key via go-ethereum so its Curve is the instance SignTx expects
	key, err := crypto.ToECDSA(privKey.Serialize())
	if err != nil {
		return nil, fmt.Errorf("failed to extract private key: %w", err)
	}
	address := crypto.PubkeyToAddress(key.PublicKey)

	logger.Info("Faucet wallet initialized", zap.String("address", address.Hex()))

	return &Wallet{
		key:      key,
		address:  address,
		signer:   types.NewEIP155Signer(big.NewInt(chainID)),
		gasPrice: big.NewInt(gasPriceWei),
		client:   client,
		logger:   logger,
	}, nil
}

// Address returns the faucet account address
func (w *Wallet) Address() string {
	return w.address.Hex()
}

// Balance returns the faucet account balance
func (w *Wallet) Balance(ctx context.Context) (*big.Int, error) {
	return w.client.Balance(ctx, w.address.Hex())
}

// Send signs and broadcasts a value transfer to the given address, returning
// the transaction hash.
func (w *Wallet) Send(ctx context.Context, to string, amount *big.Int) (string, error) {
	nonce, err := w.client.PendingNonce(ctx, w.address.Hex())
	if err != nil {
		return "", fmt.Errorf("failed to get nonce: %w", err)
	}

	tx := types.NewTransaction(nonce, common.HexToAddress(to), amount, transferGasLimit, w.gasPrice, nil)

	signed, err := types.SignTx(tx, w.signer, w.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := w.client.SendTransaction(ctx, signed); err != nil {
		return "", err
	}

	w.logger.Info("Broadcast transfer",
		zap.String("to", to),
		zap.String("amount", amount.String()),
		zap.String("tx_hash", signed.Hash().Hex()),
	)

	return signed.Hash().Hex(), nil
}
