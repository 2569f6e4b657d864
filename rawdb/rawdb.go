package rawdb

import (
	"encoding/binary"
	"log"
	"math/big"

	"bitbucket.org/ventureslash/go-slash-governance/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// Event kinds used by the journal envelope
const (
	eventDeposit uint = iota
	eventWithdraw
	eventTransfer
	eventDelegate
)

// eventRecord is the journal envelope of a ledger event
type eventRecord struct {
	Kind uint
	Data []byte
}

// AccountRecord is the journaled snapshot of an account
type AccountRecord struct {
	Balance    *big.Int
	Collateral *big.Int
	Nonce      uint64
	Delegate   types.Address
}

// InitDB retrieves a database from path
func InitDB(file string) (*leveldb.DB, error) {
	opt := &opt.Options{
		Filter: filter.NewBloomFilter(10),
	}
	// Open the db and recover any potential corruptions
	db, err := leveldb.OpenFile(file, opt)
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(file, nil)
	}
	// (Re)check for errors and abort if opening of the db failed
	if err != nil {
		return nil, err
	}

	return db, nil
}

// ReadHeadSeq retrieves the sequence key of the last journaled mutation.
func ReadHeadSeq(db *leveldb.DB) uint64 {
	data, _ := db.Get(headSeqKey, nil)
	if len(data) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}

// WriteHeadSeq stores the sequence key of the last journaled mutation.
func WriteHeadSeq(db *leveldb.DB, seq uint64) {
	if err := db.Put(headSeqKey, encodeSeq(seq), nil); err != nil {
		log.Println("Failed to store head sequence key", "err", err)
	}
}

// WriteCheckpoint stores one entry of an account's voting power timeline.
// Entries are never deleted: the journal is the audit trail.
func WriteCheckpoint(db *leveldb.DB, addr types.Address, cp types.Checkpoint) {
	data, err := rlp.EncodeToBytes(&cp)
	if err != nil {
		log.Println("Failed to RLP encode checkpoint", "err", err)
		return
	}
	if err := db.Put(checkpointKey(addr, cp.Seq), data, nil); err != nil {
		log.Println("Failed to store checkpoint", "err", err)
	}
}

// ReadCheckpoint retrieves the checkpoint an account recorded exactly at
// the given sequence key, nil if no entry exists there.
func ReadCheckpoint(db *leveldb.DB, addr types.Address, seq uint64) *types.Checkpoint {
	data, _ := db.Get(checkpointKey(addr, seq), nil)
	if len(data) == 0 {
		return nil
	}
	cp := &types.Checkpoint{}
	if err := rlp.DecodeBytes(data, cp); err != nil {
		log.Println("Invalid checkpoint RLP", "addr", addr, "err", err)
		return nil
	}
	return cp
}

// HasCheckpoint verifies the existence of a checkpoint entry.
func HasCheckpoint(db *leveldb.DB, addr types.Address, seq uint64) bool {
	if has, err := db.Has(checkpointKey(addr, seq), nil); !has || err != nil {
		return false
	}
	return true
}

// WriteEvent stores the event record of a committed mutation.
func WriteEvent(db *leveldb.DB, seq uint64, event types.Event) {
	record := eventRecord{}
	var err error
	switch ev := event.(type) {
	case types.DepositEvent:
		record.Kind = eventDeposit
		record.Data, err = rlp.EncodeToBytes(&ev)
	case types.WithdrawEvent:
		record.Kind = eventWithdraw
		record.Data, err = rlp.EncodeToBytes(&ev)
	case types.TransferEvent:
		record.Kind = eventTransfer
		record.Data, err = rlp.EncodeToBytes(&ev)
	case types.DelegateEvent:
		record.Kind = eventDelegate
		record.Data, err = rlp.EncodeToBytes(&ev)
	default:
		log.Println("Unknown event kind, not journaled", "seq", seq)
		return
	}
	if err != nil {
		log.Println("Failed to RLP encode event", "err", err)
		return
	}
	data, err := rlp.EncodeToBytes(&record)
	if err != nil {
		log.Println("Failed to RLP encode event record", "err", err)
		return
	}
	if err := db.Put(eventKey(seq), data, nil); err != nil {
		log.Println("Failed to store event record", "err", err)
	}
}

// ReadEvent retrieves the event journaled at a sequence key, nil if the
// key is unknown.
func ReadEvent(db *leveldb.DB, seq uint64) types.Event {
	data, _ := db.Get(eventKey(seq), nil)
	if len(data) == 0 {
		return nil
	}
	record := eventRecord{}
	if err := rlp.DecodeBytes(data, &record); err != nil {
		log.Println("Invalid event record RLP", "seq", seq, "err", err)
		return nil
	}
	switch record.Kind {
	case eventDeposit:
		ev := types.DepositEvent{}
		if err := rlp.DecodeBytes(record.Data, &ev); err != nil {
			log.Println("Invalid deposit event RLP", "seq", seq, "err", err)
			return nil
		}
		return ev
	case eventWithdraw:
		ev := types.WithdrawEvent{}
		if err := rlp.DecodeBytes(record.Data, &ev); err != nil {
			log.Println("Invalid withdraw event RLP", "seq", seq, "err", err)
			return nil
		}
		return ev
	case eventTransfer:
		ev := types.TransferEvent{}
		if err := rlp.DecodeBytes(record.Data, &ev); err != nil {
			log.Println("Invalid transfer event RLP", "seq", seq, "err", err)
			return nil
		}
		return ev
	case eventDelegate:
		ev := types.DelegateEvent{}
		if err := rlp.DecodeBytes(record.Data, &ev); err != nil {
			log.Println("Invalid delegate event RLP", "seq", seq, "err", err)
			return nil
		}
		return ev
	default:
		log.Println("Unknown journaled event kind", "seq", seq)
		return nil
	}
}

// WriteAccount stores the latest snapshot of an account.
func WriteAccount(db *leveldb.DB, addr types.Address, record *AccountRecord) {
	data, err := rlp.EncodeToBytes(record)
	if err != nil {
		log.Println("Failed to RLP encode account", "err", err)
		return
	}
	if err := db.Put(accountKey(addr), data, nil); err != nil {
		log.Println("Failed to store account snapshot", "err", err)
	}
}

// ReadAccount retrieves the latest snapshot of an account, nil when the
// account was never journaled.
func ReadAccount(db *leveldb.DB, addr types.Address) *AccountRecord {
	data, _ := db.Get(accountKey(addr), nil)
	if len(data) == 0 {
		return nil
	}
	record := &AccountRecord{}
	if err := rlp.DecodeBytes(data, record); err != nil {
		log.Println("Invalid account snapshot RLP", "addr", addr, "err", err)
		return nil
	}
	return record
}
