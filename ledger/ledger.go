// Package ledger implements the membership token accounting: 1:1 backed
// deposits and withdrawals, transfers, delegation, and the checkpointed
// voting power history governance reads from.
package ledger

import (
	"errors"
	"math/big"
	"sync"

	"bitbucket.org/ventureslash/go-slash-governance/checkpoints"
	"bitbucket.org/ventureslash/go-slash-governance/types"
)

// Error values callers match against
var (
	ErrInvalidAmount          = errors.New("amount must be strictly positive")
	ErrSupplyExceeded         = errors.New("deposit would exceed the maximum supply")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrInsufficientCollateral = errors.New("withdraw exceeds deposited collateral")
	ErrTransferRejected       = errors.New("currency release was rejected")
	ErrFutureLookup           = errors.New("sequence key is not finalized")
	ErrBadNonce               = errors.New("nonce does not match account counter")
	ErrZeroAddress            = errors.New("the zero address cannot hold credits")
	ErrInvariantViolation     = errors.New("checkpoint sequence invariant broken")
)

// Vault releases custodied base currency back to a member. The recipient
// may reject the release: Withdraw treats any error as total failure.
type Vault interface {
	Release(to types.Address, amount *big.Int) error
}

// Config is the ledger configuration struct
type Config struct {
	// MaxSupply caps totalSupply, fixed for the life of the ledger
	MaxSupply *big.Int
	// Vault performs the currency outflow on withdrawals, may be nil
	Vault Vault
	// Notify receives one event per committed mutation, may be nil
	Notify func(types.Event)
}

// Ledger is the authoritative state machine. Every mutating entry point
// runs under one coarse lock: a transfer or delegation touches two
// accounts' checkpoints and must never be observed half-applied.
type Ledger struct {
	mu        sync.RWMutex
	accounts  map[types.Address]*account
	supply    *big.Int
	maxSupply *big.Int
	seq       uint64
	votes     *checkpoints.Store
	vault     Vault
	notify    func(types.Event)
}

// New returns a new Ledger
func New(config *Config) *Ledger {
	l := &Ledger{
		accounts:  make(map[types.Address]*account),
		supply:    big.NewInt(0),
		maxSupply: new(big.Int).Set(config.MaxSupply),
		votes:     checkpoints.New(),
		vault:     config.Vault,
		notify:    config.Notify,
	}
	if l.notify == nil {
		l.notify = func(types.Event) {}
	}
	return l
}

// getOrCreateAccount returns the account record associated to an address
func (l *Ledger) getOrCreateAccount(addr types.Address) *account {
	acc := l.accounts[addr]
	if acc == nil {
		acc = newAccount()
		l.accounts[addr] = acc
	}
	return acc
}

// effectiveDelegate resolves the stored delegate pointer, self by default
func (l *Ledger) effectiveDelegate(addr types.Address) types.Address {
	acc := l.accounts[addr]
	if acc == nil || acc.delegate == (types.Address{}) {
		return addr
	}
	return acc.delegate
}

// shiftVotes moves amount of voting power between two delegates'
// checkpoints at the given sequence key. A zero address on either side
// stands for the mint/burn end and has no checkpoint.
func (l *Ledger) shiftVotes(seq uint64, from, to types.Address, amount *big.Int) error {
	if from == to || amount.Sign() == 0 {
		return nil
	}
	zero := types.Address{}
	if from != zero {
		next := new(big.Int).Sub(l.votes.CurrentValue(from), amount)
		if err := l.votes.Push(from, seq, next); err != nil {
			return ErrInvariantViolation
		}
	}
	if to != zero {
		next := new(big.Int).Add(l.votes.CurrentValue(to), amount)
		if err := l.votes.Push(to, seq, next); err != nil {
			return ErrInvariantViolation
		}
	}
	return nil
}

// Deposit exchanges amount of base currency for the same amount of credits.
// The supply check uses the raw deposit amount, no fee adjustment.
func (l *Ledger) Deposit(addr types.Address, amount *big.Int) error {
	event, err := l.deposit(addr, amount)
	if err != nil {
		return err
	}
	// notified outside the lock so sinks may read the ledger back
	l.notify(event)
	return nil
}

func (l *Ledger) deposit(addr types.Address, amount *big.Int) (types.Event, error) {
	if addr == (types.Address{}) {
		return nil, ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	newSupply := new(big.Int).Add(l.supply, amount)
	if newSupply.Cmp(l.maxSupply) > 0 {
		return nil, ErrSupplyExceeded
	}

	seq := l.seq + 1
	acc := l.getOrCreateAccount(addr)
	acc.addBalance(amount)
	acc.addCollateral(amount)
	l.supply = newSupply
	if err := l.shiftVotes(seq, types.Address{}, l.effectiveDelegate(addr), amount); err != nil {
		return nil, err
	}
	l.seq = seq

	return types.DepositEvent{
		Seq:     seq,
		Account: addr,
		Amount:  new(big.Int).Set(amount),
		Tokens:  new(big.Int).Set(amount),
	}, nil
}

// Withdraw redeems amount of credits for base currency. The vault release
// is attempted after every precondition holds and before any state is
// touched: a rejected release leaves the ledger untouched.
func (l *Ledger) Withdraw(addr types.Address, amount *big.Int) error {
	event, err := l.withdraw(addr, amount)
	if err != nil {
		return err
	}
	l.notify(event)
	return nil
}

func (l *Ledger) withdraw(addr types.Address, amount *big.Int) (types.Event, error) {
	if addr == (types.Address{}) {
		return nil, ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	acc := l.getOrCreateAccount(addr)
	if acc.balance.Cmp(amount) < 0 {
		return nil, ErrInsufficientBalance
	}
	if acc.collateral.Cmp(amount) < 0 {
		return nil, ErrInsufficientCollateral
	}
	if l.vault != nil {
		if err := l.vault.Release(addr, amount); err != nil {
			return nil, ErrTransferRejected
		}
	}

	seq := l.seq + 1
	acc.subBalance(amount)
	acc.subCollateral(amount)
	l.supply = new(big.Int).Sub(l.supply, amount)
	if err := l.shiftVotes(seq, l.effectiveDelegate(addr), types.Address{}, amount); err != nil {
		return nil, err
	}
	l.seq = seq

	return types.WithdrawEvent{
		Seq:     seq,
		Account: addr,
		Amount:  new(big.Int).Set(amount),
	}, nil
}

// Transfer moves credits between accounts. Checkpoints only move when the
// two sides resolve to different delegates.
func (l *Ledger) Transfer(from, to types.Address, amount *big.Int) error {
	event, err := l.transfer(from, to, amount)
	if err != nil {
		return err
	}
	l.notify(event)
	return nil
}

func (l *Ledger) transfer(from, to types.Address, amount *big.Int) (types.Event, error) {
	// the zero address is the internal mint/burn marker, it never holds
	// credits of its own
	if from == (types.Address{}) || to == (types.Address{}) {
		return nil, ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	sender := l.getOrCreateAccount(from)
	if sender.balance.Cmp(amount) < 0 {
		return nil, ErrInsufficientBalance
	}

	seq := l.seq + 1
	receiver := l.getOrCreateAccount(to)
	sender.subBalance(amount)
	receiver.addBalance(amount)
	if err := l.shiftVotes(seq, l.effectiveDelegate(from), l.effectiveDelegate(to), amount); err != nil {
		return nil, err
	}
	l.seq = seq

	return types.TransferEvent{
		Seq:    seq,
		From:   from,
		To:     to,
		Amount: new(big.Int).Set(amount),
	}, nil
}

// Delegate routes the entirety of addr's balance-derived voting power to
// another account. A zero address or addr itself means self-delegation.
// Re-delegating to the current target is a no-op.
func (l *Ledger) Delegate(addr, to types.Address) error {
	event, err := l.delegate(addr, to)
	if err != nil {
		return err
	}
	if event == nil {
		return nil
	}
	l.notify(event)
	return nil
}

func (l *Ledger) delegate(addr, to types.Address) (types.Event, error) {
	if addr == (types.Address{}) {
		return nil, ErrZeroAddress
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if to == addr {
		to = types.Address{}
	}
	old := l.effectiveDelegate(addr)
	next := to
	if next == (types.Address{}) {
		next = addr
	}
	if next == old {
		return nil, nil
	}

	seq := l.seq + 1
	acc := l.getOrCreateAccount(addr)
	if err := l.shiftVotes(seq, old, next, acc.balance); err != nil {
		return nil, err
	}
	acc.delegate = to
	l.seq = seq

	return types.DelegateEvent{
		Seq:     seq,
		Account: addr,
		From:    old,
		To:      next,
	}, nil
}

// GetVotes returns the voting power addr currently holds as a delegate
// target, not necessarily its own balance
func (l *Ledger) GetVotes(addr types.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.votes.CurrentValue(addr)
}

// GetPastVotes returns the voting power addr held as of sequence key seq.
// Only finalized history is queryable: asking for the current or a future
// key fails with ErrFutureLookup.
func (l *Ledger) GetPastVotes(addr types.Address, seq uint64) (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if seq >= l.seq {
		return nil, ErrFutureLookup
	}
	return l.votes.ValueAt(addr, seq), nil
}

// EffectiveDelegate returns the account whose checkpoint receives addr's
// balance, addr itself when undelegated
func (l *Ledger) EffectiveDelegate(addr types.Address) types.Address {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.effectiveDelegate(addr)
}

// DelegateOf returns the stored delegate pointer, the zero address when
// the account delegates to itself
func (l *Ledger) DelegateOf(addr types.Address) types.Address {
	l.mu.RLock()
	defer l.mu.RUnlock()
	acc := l.accounts[addr]
	if acc == nil {
		return types.Address{}
	}
	return acc.delegate
}

// BalanceOf returns the balance associated to an address
func (l *Ledger) BalanceOf(addr types.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	acc := l.accounts[addr]
	if acc == nil {
		return big.NewInt(0)
	}
	return acc.getBalance()
}

// CollateralOf returns the base currency still custodied for an address
func (l *Ledger) CollateralOf(addr types.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	acc := l.accounts[addr]
	if acc == nil {
		return big.NewInt(0)
	}
	return acc.getCollateral()
}

// TotalSupply returns the outstanding credit supply
func (l *Ledger) TotalSupply() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.supply)
}

// MaxSupply returns the fixed supply cap
func (l *Ledger) MaxSupply() *big.Int {
	return new(big.Int).Set(l.maxSupply)
}

// Seq returns the sequence key of the last committed mutation
func (l *Ledger) Seq() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.seq
}

// Nonce returns the strictly increasing request counter of an account,
// consumed by the signature authorization plumbing
func (l *Ledger) Nonce(addr types.Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	acc := l.accounts[addr]
	if acc == nil {
		return 0
	}
	return acc.nonce
}

// UseNonce consumes the account's current nonce. The passed value must
// match the counter exactly, which makes replays dead on arrival.
func (l *Ledger) UseNonce(addr types.Address, nonce uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	acc := l.getOrCreateAccount(addr)
	if acc.nonce != nonce {
		return ErrBadNonce
	}
	acc.nonce++
	return nil
}

// Snapshot returns a point-in-time view of the ledger totals
func (l *Ledger) Snapshot() types.State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return types.State{
		Seq:         l.seq,
		TotalSupply: new(big.Int).Set(l.supply),
		MaxSupply:   new(big.Int).Set(l.maxSupply),
		Accounts:    uint64(len(l.accounts)),
	}
}
