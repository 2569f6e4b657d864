package types

import (
	"encoding/hex"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

const (
	// AddressLength is the byte length of an account address
	AddressLength = 20
	// HashLength is the byte length of a keccak digest
	HashLength = 32
)

// Address identifies a member account
type Address [AddressLength]byte

// FromBytes loads an address from a byte slice, left padding short input
func (a *Address) FromBytes(b []byte) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

// Bytes returns the address as a byte slice
func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// HexToAddress parses a hex string into an Address
func HexToAddress(s string) Address {
	b, _ := hex.DecodeString(s)
	a := Address{}
	a.FromBytes(b)
	return a
}

// Hash is a keccak256 digest
type Hash [HashLength]byte

// Bytes returns the hash as a byte slice
func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// BytesToHash loads a hash from a byte slice
func BytesToHash(b []byte) Hash {
	h := Hash{}
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// RlpHash computes the keccak256 digest of the rlp encoding of v
func RlpHash(v interface{}) Hash {
	bytes, err := rlp.EncodeToBytes(v)
	if err != nil {
		return Hash{}
	}
	return BytesToHash(crypto.Keccak256(bytes))
}
