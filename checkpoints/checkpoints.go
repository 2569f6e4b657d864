// Package checkpoints maintains per-account append-only timelines of voting
// power and answers point-in-time lookups over them.
package checkpoints

import (
	"errors"
	"math/big"
	"sort"

	"bitbucket.org/ventureslash/go-slash-governance/types"
)

// ErrSeqOutOfOrder is returned when a push uses a sequence key below the
// last recorded key of the account. The ledger must never do this.
var ErrSeqOutOfOrder = errors.New("checkpoint sequence key below last recorded key")

// Store holds one append-only checkpoint timeline per account
type Store struct {
	timelines map[types.Address][]types.Checkpoint
}

// New returns an empty store
func New() *Store {
	return &Store{
		timelines: make(map[types.Address][]types.Checkpoint),
	}
}

// Push appends a checkpoint to the account's timeline. Pushing at the last
// recorded key replaces that entry's value: only the final value at a given
// key matters.
func (s *Store) Push(addr types.Address, seq uint64, votes *big.Int) error {
	timeline := s.timelines[addr]
	if n := len(timeline); n > 0 {
		last := timeline[n-1]
		if seq < last.Seq {
			return ErrSeqOutOfOrder
		}
		if seq == last.Seq {
			timeline[n-1].Votes = new(big.Int).Set(votes)
			return nil
		}
	}
	s.timelines[addr] = append(timeline, types.NewCheckpoint(seq, votes))
	return nil
}

// ValueAt returns the value of the latest checkpoint whose key is <= seq,
// or zero if the account had no checkpoint yet at that point
func (s *Store) ValueAt(addr types.Address, seq uint64) *big.Int {
	timeline := s.timelines[addr]
	i := sort.Search(len(timeline), func(i int) bool {
		return timeline[i].Seq > seq
	})
	if i == 0 {
		return big.NewInt(0)
	}
	return new(big.Int).Set(timeline[i-1].Votes)
}

// CurrentValue returns the last checkpointed value, or zero for accounts
// that were never checkpointed
func (s *Store) CurrentValue(addr types.Address) *big.Int {
	timeline := s.timelines[addr]
	if len(timeline) == 0 {
		return big.NewInt(0)
	}
	return new(big.Int).Set(timeline[len(timeline)-1].Votes)
}

// Len returns the number of recorded checkpoints of an account
func (s *Store) Len(addr types.Address) int {
	return len(s.timelines[addr])
}

// Timeline returns a copy of the account's checkpoint timeline
func (s *Store) Timeline(addr types.Address) []types.Checkpoint {
	timeline := s.timelines[addr]
	cpy := make([]types.Checkpoint, len(timeline))
	for i, c := range timeline {
		cpy[i] = types.NewCheckpoint(c.Seq, c.Votes)
	}
	return cpy
}
