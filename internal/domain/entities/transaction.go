package entities

import (
	"time"
)

// Transaction type labels as stored in the transactions table.
const (
	TxTypeTransfer         = "transfer"
	TxTypeContractCall     = "contract_call"
	TxTypeContractCreation = "contract_creation"
)

// Transaction represents a transaction inside an ingested block. Created
// alongside its containing block; immutable thereafter.
type Transaction struct {
	Hash        string    `db:"hash" json:"hash"`
	Height      int64     `db:"height" json:"height"`
	Timestamp   time.Time `db:"timestamp" json:"timestamp"`
	Fee         string    `db:"fee" json:"fee"`
	Gas         int64     `db:"gas" json:"gas"`
	Memo        string    `db:"memo" json:"memo"`
	Success     bool      `db:"success" json:"success"`
	Type        string    `db:"type" json:"type"`
	Amount      string    `db:"amount" json:"amount"`
	FromAddress string    `db:"from_address" json:"from"`
	ToAddress   string    `db:"to_address" json:"to"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
}
