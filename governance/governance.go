// Package governance wires the ledger, its audit journal, the event fanout
// and the member endpoint together, and owns the signed request intake.
package governance

import (
	"crypto/ecdsa"
	"errors"
	"flag"
	"io/ioutil"
	"math/big"
	"sync"

	"bitbucket.org/ventureslash/go-slash-governance/crypto"
	"bitbucket.org/ventureslash/go-slash-governance/endpoint"
	"bitbucket.org/ventureslash/go-slash-governance/events"
	"bitbucket.org/ventureslash/go-slash-governance/ledger"
	"bitbucket.org/ventureslash/go-slash-governance/rawdb"
	"bitbucket.org/ventureslash/go-slash-governance/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/google/logger"
	"github.com/syndtr/goleveldb/leveldb"
)

var verbose = flag.Bool("verbose-governance", false, "print governance info level logs")

var (
	errUnauthorizedRequest = errors.New("this request is not authorized")
	errUnknownRequestKind  = errors.New("unknown request kind")
)

// Config is the governance configuration struct
type Config struct {
	// MaxSupply caps the credit supply, fixed for the life of the process
	MaxSupply *big.Int
	// DBFile is the path of the audit journal database, empty disables it
	DBFile string
	// EndpointAddr is the listen address of the member endpoint
	EndpointAddr string
}

// Governance owns the ledger and processes signed member requests
type Governance struct {
	ledger   *ledger.Ledger
	vault    *Vault
	db       *leveldb.DB
	events   *events.Manager
	endpoint *endpoint.Endpoint
	requests chan []byte
	addr     string

	mu       sync.Mutex
	receipts types.Receipts

	debug *logger.Logger
}

// New creates a new governance manager
func New(config *Config) (*Governance, error) {
	g := &Governance{
		vault:    NewVault(),
		events:   events.New(),
		requests: make(chan []byte, 256),
		addr:     config.EndpointAddr,
		debug:    logger.Init("Governance", *verbose, false, ioutil.Discard),
	}

	if config.DBFile != "" {
		db, err := rawdb.InitDB(config.DBFile)
		if err != nil {
			return nil, err
		}
		g.db = db
	}

	g.ledger = ledger.New(&ledger.Config{
		MaxSupply: config.MaxSupply,
		Vault:     g.vault,
		Notify:    g.notify,
	})

	g.endpoint = endpoint.New()
	g.endpoint.Ledger = g.ledger
	g.endpoint.Requests = g.requests
	g.endpoint.Events = g.events
	g.endpoint.SetReceiptsGetter(g.Receipts)

	return g, nil
}

// Ledger exposes the underlying ledger to upstream consumers
func (g *Governance) Ledger() *ledger.Ledger {
	return g.ledger
}

// Custodied returns the base currency currently held by the vault
func (g *Governance) Custodied() *big.Int {
	return g.vault.Custodied()
}

// Start runs the endpoint and the request intake loop
func (g *Governance) Start() {
	go g.endpoint.Start(g.addr)
	g.handleRequests()
}

// Stop closes the request intake and the event subscribers
func (g *Governance) Stop() {
	close(g.requests)
	g.events.Close()
	if g.db != nil {
		g.db.Close()
	}
}

func (g *Governance) handleRequests() {
	for payload := range g.requests {
		req := &types.Request{}
		if err := rlp.DecodeBytes(payload, req); err != nil {
			g.debug.Warning("decode request failed")
			continue
		}
		g.Apply(req)
	}
}

// Apply verifies and executes a signed request, returning its receipt
func (g *Governance) Apply(req *types.Request) *types.Receipt {
	status := types.ReceiptStatusSuccessful
	if err := g.execute(req); err != nil {
		g.debug.Warningf("request %s rejected: %v", req.Hash(), err)
		status = types.ReceiptStatusFailed
	}
	receipt := types.NewReceipt(req.Hash(), g.ledger.Seq(), status)
	g.mu.Lock()
	g.receipts = append(g.receipts, receipt)
	g.mu.Unlock()
	return receipt
}

func (g *Governance) execute(req *types.Request) error {
	if err := verifyRequest(req); err != nil {
		return err
	}
	if err := g.ledger.UseNonce(req.From, req.Nonce); err != nil {
		return err
	}
	switch req.Kind {
	case types.RequestDeposit:
		return g.ledger.Deposit(req.From, req.Amount)
	case types.RequestWithdraw:
		return g.ledger.Withdraw(req.From, req.Amount)
	case types.RequestTransfer:
		return g.ledger.Transfer(req.From, req.To, req.Amount)
	case types.RequestDelegate:
		return g.ledger.Delegate(req.From, req.To)
	default:
		return errUnknownRequestKind
	}
}

// Receipts returns a copy of the processed request receipts
func (g *Governance) Receipts() types.Receipts {
	g.mu.Lock()
	defer g.mu.Unlock()
	receipts := make(types.Receipts, len(g.receipts))
	copy(receipts, g.receipts)
	return receipts
}

// notify receives one event per committed ledger mutation. It forwards
// the event to subscribers and extends the audit journal.
func (g *Governance) notify(event types.Event) {
	g.events.Publish(event)
	if dep, ok := event.(types.DepositEvent); ok {
		g.vault.Fund(dep.Amount)
	}
	if g.db == nil {
		return
	}

	switch ev := event.(type) {
	case types.DepositEvent:
		rawdb.WriteEvent(g.db, ev.Seq, event)
		rawdb.WriteHeadSeq(g.db, ev.Seq)
		g.journalAccount(ev.Account)
		g.journalVotes(ev.Seq, g.ledger.EffectiveDelegate(ev.Account))
	case types.WithdrawEvent:
		rawdb.WriteEvent(g.db, ev.Seq, event)
		rawdb.WriteHeadSeq(g.db, ev.Seq)
		g.journalAccount(ev.Account)
		g.journalVotes(ev.Seq, g.ledger.EffectiveDelegate(ev.Account))
	case types.TransferEvent:
		rawdb.WriteEvent(g.db, ev.Seq, event)
		rawdb.WriteHeadSeq(g.db, ev.Seq)
		g.journalAccount(ev.From)
		g.journalAccount(ev.To)
		dFrom := g.ledger.EffectiveDelegate(ev.From)
		dTo := g.ledger.EffectiveDelegate(ev.To)
		if dFrom != dTo {
			g.journalVotes(ev.Seq, dFrom)
			g.journalVotes(ev.Seq, dTo)
		}
	case types.DelegateEvent:
		rawdb.WriteEvent(g.db, ev.Seq, event)
		rawdb.WriteHeadSeq(g.db, ev.Seq)
		g.journalAccount(ev.Account)
		g.journalVotes(ev.Seq, ev.From)
		g.journalVotes(ev.Seq, ev.To)
	}
}

func (g *Governance) journalAccount(addr types.Address) {
	rawdb.WriteAccount(g.db, addr, &rawdb.AccountRecord{
		Balance:    g.ledger.BalanceOf(addr),
		Collateral: g.ledger.CollateralOf(addr),
		Nonce:      g.ledger.Nonce(addr),
		Delegate:   g.ledger.DelegateOf(addr),
	})
}

func (g *Governance) journalVotes(seq uint64, addr types.Address) {
	if addr == (types.Address{}) {
		return
	}
	rawdb.WriteCheckpoint(g.db, addr, types.NewCheckpoint(seq, g.ledger.GetVotes(addr)))
}

func verifyRequest(req *types.Request) error {
	signer, err := crypto.RecoverAddress(req.SigHash(), req.Signature)
	if err != nil {
		return err
	}
	if signer != req.From {
		return errUnauthorizedRequest
	}
	return nil
}

// SignRequest signs a request in place with the member key
func SignRequest(req *types.Request, privkey *ecdsa.PrivateKey) error {
	sig, err := crypto.SignHash(req.SigHash(), privkey)
	if err != nil {
		return err
	}
	req.Signature = sig
	return nil
}
