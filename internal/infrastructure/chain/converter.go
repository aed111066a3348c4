package chain

import (
	"math/big"
	"time"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/core/types"

	"github.com/chainscan/explorer/internal/domain/entities"
)

// maxMemoBytes bounds how much transfer payload is kept as a memo
const maxMemoBytes = 256

// convertBlock maps a node block to the domain block and its transactions.
func convertBlock(block *types.Block, chainID int64) (*entities.Block, []entities.Transaction, error) {
	blockTime := time.Unix(int64(block.Time()), 0).UTC()

	b := &entities.Block{
		Height:          block.Number().Int64(),
		Hash:            block.Hash().Hex(),
		Time:            blockTime,
		ProposerAddress: block.Coinbase().Hex(),
		NumTxs:          len(block.Transactions()),
		// Not computed at ingest; the upstream block carries no aggregate
		// we record here.
		TotalGas: 0,
	}

	signer := types.LatestSignerForChainID(big.NewInt(chainID))

	txs := make([]entities.Transaction, 0, len(block.Transactions()))
	for _, tx := range block.Transactions() {
		txs = append(txs, convertTx(tx, signer, b.Height, blockTime))
	}

	return b, txs, nil
}

// convertTx maps a single transaction. Success is recorded optimistically;
// receipts are not fetched during ingestion.
func convertTx(tx *types.Transaction, signer types.Signer, height int64, blockTime time.Time) entities.Transaction {
	fee := new(big.Int).Mul(tx.GasPrice(), new(big.Int).SetUint64(tx.Gas()))

	from := ""
	if sender, err := types.Sender(signer, tx); err == nil {
		from = sender.Hex()
	}

	to := ""
	if tx.To() != nil {
		to = tx.To().Hex()
	}

	return entities.Transaction{
		Hash:        tx.Hash().Hex(),
		Height:      height,
		Timestamp:   blockTime,
		Fee:         fee.String(),
		Gas:         int64(tx.Gas()),
		Memo:        txMemo(tx),
		Success:     true,
		Type:        txType(tx),
		Amount:      tx.Value().String(),
		FromAddress: from,
		ToAddress:   to,
	}
}

// txType classifies a transaction by its payload shape
func txType(tx *types.Transaction) string {
	switch {
	case tx.To() == nil:
		return entities.TxTypeContractCreation
	case len(tx.Data()) > 0:
		return entities.TxTypeContractCall
	default:
		return entities.TxTypeTransfer
	}
}

// txMemo extracts a human-readable memo from a plain value transfer that
// carries a short UTF-8 payload. Contract calls never produce a memo.
func txMemo(tx *types.Transaction) string {
	data := tx.Data()
	if len(data) == 0 || len(data) > maxMemoBytes {
		return ""
	}
	if tx.To() == nil || tx.Value().Sign() == 0 {
		return ""
	}
	if !utf8.Valid(data) {
		return ""
	}
	return string(data)
}
