package types

import (
	"math/big"
)

// Event is a data wrapper for ledger notifications
type Event interface{}

// DepositEvent is emitted when currency is exchanged for credits
type DepositEvent struct {
	Seq     uint64
	Account Address
	Amount  *big.Int
	Tokens  *big.Int
}

// WithdrawEvent is emitted when credits are redeemed for currency
type WithdrawEvent struct {
	Seq     uint64
	Account Address
	Amount  *big.Int
}

// TransferEvent is emitted when credits move between accounts
type TransferEvent struct {
	Seq    uint64
	From   Address
	To     Address
	Amount *big.Int
}

// DelegateEvent is emitted when an account routes its voting power
type DelegateEvent struct {
	Seq     uint64
	Account Address
	From    Address
	To      Address
}
