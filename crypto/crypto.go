package crypto

import (
	"crypto/ecdsa"
	"errors"

	"bitbucket.org/ventureslash/go-slash-governance/types"
	"github.com/ethereum/go-ethereum/crypto"
)

var errInvalidSignature = errors.New("signature does not match the expected signer")

// Sign returns the signature of data from privkey
func Sign(data []byte, privkey *ecdsa.PrivateKey) ([]byte, error) {
	hashData := crypto.Keccak256(data)
	return crypto.Sign(hashData, privkey)
}

// SignHash returns the signature of an already computed digest
func SignHash(hash types.Hash, privkey *ecdsa.PrivateKey) ([]byte, error) {
	return crypto.Sign(hash.Bytes(), privkey)
}

// PubkeyToAddress returns an Address from a ecdsa.PublicKey
func PubkeyToAddress(p ecdsa.PublicKey) types.Address {
	ethAddress := crypto.PubkeyToAddress(p)
	a := types.Address{}
	a.FromBytes(ethAddress[:])
	return a
}

// RecoverAddress returns the address that signed the given digest
func RecoverAddress(hash types.Hash, sig []byte) (types.Address, error) {
	pubkey, err := crypto.SigToPub(hash.Bytes(), sig)
	if err != nil {
		return types.Address{}, err
	}
	return PubkeyToAddress(*pubkey), nil
}

// CheckSignature returns an error if sig over hash does not recover addr
func CheckSignature(hash types.Hash, sig []byte, addr types.Address) error {
	signer, err := RecoverAddress(hash, sig)
	if err != nil {
		return err
	}
	if signer != addr {
		return errInvalidSignature
	}
	return nil
}
