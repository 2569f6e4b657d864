package ledger

import (
	"math/big"

	"bitbucket.org/ventureslash/go-slash-governance/types"
)

// account holds the ledger-side state of a member. Records are created on
// first touch and never destroyed: a zero balance still carries history.
type account struct {
	balance    *big.Int
	collateral *big.Int
	nonce      uint64
	delegate   types.Address // zero address means self-delegation
}

func newAccount() *account {
	return &account{
		balance:    big.NewInt(0),
		collateral: big.NewInt(0),
	}
}

func (a *account) getBalance() *big.Int {
	return new(big.Int).Set(a.balance)
}

func (a *account) addBalance(amount *big.Int) {
	a.balance = new(big.Int).Add(a.balance, amount)
}

func (a *account) subBalance(amount *big.Int) bool {
	if a.balance.Cmp(amount) < 0 {
		return false
	}
	a.balance = new(big.Int).Sub(a.balance, amount)
	return true
}

func (a *account) getCollateral() *big.Int {
	return new(big.Int).Set(a.collateral)
}

func (a *account) addCollateral(amount *big.Int) {
	a.collateral = new(big.Int).Add(a.collateral, amount)
}

func (a *account) subCollateral(amount *big.Int) bool {
	if a.collateral.Cmp(amount) < 0 {
		return false
	}
	a.collateral = new(big.Int).Sub(a.collateral, amount)
	return true
}
