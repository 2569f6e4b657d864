package types

import (
	"math/big"
)

// Checkpoint records the voting power an account held from sequence key Seq
// until the next entry of its timeline
type Checkpoint struct {
	Seq   uint64
	Votes *big.Int
}

// NewCheckpoint initializes a checkpoint with a copy of votes
func NewCheckpoint(seq uint64, votes *big.Int) Checkpoint {
	return Checkpoint{
		Seq:   seq,
		Votes: new(big.Int).Set(votes),
	}
}
