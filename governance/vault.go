package governance

import (
	"errors"
	"log"
	"math/big"
	"sync"

	"bitbucket.org/ventureslash/go-slash-governance/types"
)

var errVaultUnderfunded = errors.New("vault holds less currency than requested")

// Vault custodies the base currency backing the outstanding credit supply
// and releases it on withdrawals. It implements ledger.Vault.
type Vault struct {
	mu        sync.Mutex
	custodied *big.Int
}

// NewVault returns an empty vault
func NewVault() *Vault {
	return &Vault{
		custodied: big.NewInt(0),
	}
}

// Fund records currency received alongside a committed deposit
func (v *Vault) Fund(amount *big.Int) {
	v.mu.Lock()
	v.custodied = new(big.Int).Add(v.custodied, amount)
	v.mu.Unlock()
}

// Release hands custodied currency back to a member. The 1:1 backing
// invariant guarantees the vault never runs short while every release
// goes through the ledger.
func (v *Vault) Release(to types.Address, amount *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.custodied.Cmp(amount) < 0 {
		return errVaultUnderfunded
	}
	v.custodied = new(big.Int).Sub(v.custodied, amount)
	log.Print("Released ", amount, " to ", to)
	return nil
}

// Custodied returns the currency currently held by the vault
func (v *Vault) Custodied() *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return new(big.Int).Set(v.custodied)
}
