package types

import (
	"math/big"
)

// Approval is an off-chain signed authorization allowing Spender to move
// Amount of Owner's credits without Owner submitting the request itself
type Approval struct {
	Owner     Address
	Spender   Address
	Amount    *big.Int
	Expiry    uint64
	Nonce     uint64
	Signature []byte
}

// Hash computes the hash of an approval, signature included
func (a *Approval) Hash() Hash {
	return RlpHash(a)
}

// SigHash computes the hash an approval must be signed over
func (a *Approval) SigHash() Hash {
	return RlpHash(&Approval{
		Owner:     a.Owner,
		Spender:   a.Spender,
		Amount:    a.Amount,
		Expiry:    a.Expiry,
		Nonce:     a.Nonce,
		Signature: []byte{},
	})
}
