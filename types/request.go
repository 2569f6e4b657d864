package types

import (
	"math/big"
)

// Request kinds
const (
	// RequestDeposit exchanges base currency for credits
	RequestDeposit = uint(iota)
	// RequestWithdraw redeems credits for base currency
	RequestWithdraw
	// RequestTransfer moves credits between accounts
	RequestTransfer
	// RequestDelegate routes the sender's voting power to another account
	RequestDelegate
)

// Request represents a signed mutation sent over the endpoint
type Request struct {
	Kind      uint
	From      Address
	To        Address
	Amount    *big.Int
	Nonce     uint64
	Signature []byte
}

// NewRequest initializes an unsigned request
func NewRequest(kind uint, from, to Address, amount *big.Int, nonce uint64) *Request {
	return &Request{
		Kind:   kind,
		From:   from,
		To:     to,
		Amount: amount,
		Nonce:  nonce,
	}
}

// Requests is a Request slice type for basic sorting.
type Requests []*Request

// Len returns the length of s.
func (s Requests) Len() int { return len(s) }

// Swap swaps the i'th and the j'th element in s.
func (s Requests) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

// Hash computes the hash of a request, signature included
func (s *Request) Hash() Hash {
	return RlpHash(s)
}

// SigHash computes the hash a request must be signed over: the rlp
// encoding of the request with an empty signature field
func (s *Request) SigHash() Hash {
	return RlpHash(&Request{
		Kind:      s.Kind,
		From:      s.From,
		To:        s.To,
		Amount:    s.Amount,
		Nonce:     s.Nonce,
		Signature: []byte{},
	})
}
