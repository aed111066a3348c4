package entities

// Account is a point-in-time view of an on-chain account, fetched from the
// chain node on cache miss.
type Account struct {
	Address    string `json:"address"`
	Balance    string `json:"balance"`
	Nonce      uint64 `json:"nonce"`
	IsContract bool   `json:"is_contract"`
}
