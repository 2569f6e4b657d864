// Package rawdb contains a collection of low level database accessors for
// the ledger audit journal.
package rawdb

import (
	"encoding/binary"

	"bitbucket.org/ventureslash/go-slash-governance/types"
)

// The fields below define the low level database schema prefixing.
var (
	// headSeqKey tracks the sequence key of the last journaled mutation.
	headSeqKey       = []byte("LastSeq")
	checkpointPrefix = []byte("c") // checkpointPrefix + addr + seq (uint64 big endian) -> checkpoint
	eventPrefix      = []byte("e") // eventPrefix + seq (uint64 big endian) -> event record
	accountPrefix    = []byte("a") // accountPrefix + addr -> account snapshot
)

// encodeSeq encodes a sequence key as big endian uint64
func encodeSeq(seq uint64) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, seq)
	return enc
}

// checkpointKey = checkpointPrefix + addr + seq (uint64 big endian)
func checkpointKey(addr types.Address, seq uint64) []byte {
	return append(append(checkpointPrefix, addr.Bytes()...), encodeSeq(seq)...)
}

// eventKey = eventPrefix + seq (uint64 big endian)
func eventKey(seq uint64) []byte {
	return append(eventPrefix, encodeSeq(seq)...)
}

// accountKey = accountPrefix + addr
func accountKey(addr types.Address) []byte {
	return append(accountPrefix, addr.Bytes()...)
}
