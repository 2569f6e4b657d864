package types

import (
	"math/big"
)

// State describes a snapshot of the ledger, served on the state endpoint
type State struct {
	Seq         uint64   `json:"seq"`
	TotalSupply *big.Int `json:"totalSupply"`
	MaxSupply   *big.Int `json:"maxSupply"`
	Accounts    uint64   `json:"accounts"`
}
