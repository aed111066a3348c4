package entities

import (
	"time"
)

// Validator is the current state of a validator. Rows are upserted on each
// refresh cycle; no history is retained.
type Validator struct {
	Address     string    `db:"address" json:"address"`
	Moniker     string    `db:"moniker" json:"moniker"`
	VotingPower int64     `db:"voting_power" json:"voting_power"`
	Commission  string    `db:"commission" json:"commission"`
	Active      bool      `db:"active" json:"active"`
	UpdatedAt   time.Time `db:"updated_at" json:"-"`
}
