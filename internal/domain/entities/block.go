package entities

import (
	"time"
)

// Block represents an indexed block. Blocks are immutable once ingested and
// are never deleted; height is the unique key.
type Block struct {
	Height          int64     `db:"height" json:"height"`
	Hash            string    `db:"hash" json:"hash"`
	Time            time.Time `db:"time" json:"time"`
	ProposerAddress string    `db:"proposer_address" json:"proposer_address"`
	NumTxs          int       `db:"num_txs" json:"num_txs"`
	// TotalGas is carried on the row but not computed during ingestion.
	TotalGas  int64     `db:"total_gas" json:"total_gas"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}
