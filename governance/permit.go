package governance

import (
	"crypto/ecdsa"
	"errors"
	"time"

	"bitbucket.org/ventureslash/go-slash-governance/crypto"
	"bitbucket.org/ventureslash/go-slash-governance/types"
)

// Rejection causes the authorization subsystem can match against
var (
	ErrUnauthorizedApproval = errors.New("approval signature does not recover its owner")
	ErrExpiredApproval      = errors.New("approval has expired")
)

// Permit executes an off-chain signed approval: the owner authorized the
// spender to receive amount without submitting the request itself. The
// approval nonce must match the owner's counter exactly, so a permit can
// never be replayed.
func (g *Governance) Permit(a *types.Approval) error {
	if err := crypto.CheckSignature(a.SigHash(), a.Signature, a.Owner); err != nil {
		return ErrUnauthorizedApproval
	}
	if a.Expiry != 0 && uint64(time.Now().Unix()) > a.Expiry {
		return ErrExpiredApproval
	}
	if err := g.ledger.UseNonce(a.Owner, a.Nonce); err != nil {
		return err
	}
	return g.ledger.Transfer(a.Owner, a.Spender, a.Amount)
}

// SignApproval signs an approval in place with the owner key
func SignApproval(a *types.Approval, privkey *ecdsa.PrivateKey) error {
	sig, err := crypto.SignHash(a.SigHash(), privkey)
	if err != nil {
		return err
	}
	a.Signature = sig
	return nil
}
