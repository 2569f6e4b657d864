package endpoint

import (
	"encoding/json"
	"flag"
	"io/ioutil"
	"math/big"
	"net/http"
	"reflect"
	"strconv"

	"bitbucket.org/ventureslash/go-slash-governance/events"
	"bitbucket.org/ventureslash/go-slash-governance/types"
	"github.com/coryb/gotee"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/google/logger"
)

// ledgerView is the read-only ledger surface the endpoint serves
type ledgerView interface {
	Snapshot() types.State
	BalanceOf(types.Address) *big.Int
	CollateralOf(types.Address) *big.Int
	GetVotes(types.Address) *big.Int
	GetPastVotes(types.Address, uint64) (*big.Int, error)
	EffectiveDelegate(types.Address) types.Address
	Nonce(types.Address) uint64
	TotalSupply() *big.Int
	Seq() uint64
}

const logFile = "slash-governance.logs"

var verbose = flag.Bool("verbose-endpoint", false, "print endpoint info level logs")

// Endpoint maintains the set of active clients, serves ledger queries and
// broadcasts ledger events to the clients.
type Endpoint struct {
	// Registered clients.
	clients map[*Client]bool
	// Inbound messages from the clients.
	broadcast chan interface{}
	// Register requests from the clients.
	register chan *Client
	// Unregister requests from clients.
	unregister chan *Client
	// A function that returns the processed request receipts
	receiptsGetter func() types.Receipts
	// log tee
	tee *gotee.Tee

	Ledger   ledgerView
	Requests chan<- []byte
	Events   *events.Manager
	debug    *logger.Logger
}

// New returns a new endpoint
func New() *Endpoint {
	ep := &Endpoint{
		broadcast:      make(chan interface{}),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		clients:        make(map[*Client]bool),
		receiptsGetter: nil,
		debug:          logger.Init("Endpoint", *verbose, false, ioutil.Discard),
	}

	ep.tee, _ = gotee.NewTee(logFile)

	return ep
}

// registerHandlers binds the endpoint routes. Done on Start rather than
// New: DefaultServeMux patterns can only be bound once per process.
func (ep *Endpoint) registerHandlers() {
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(ep, w, r)
	})

	http.HandleFunc("/hello", ep.helloHandler)
	http.HandleFunc("/logs", ep.logsHandler)
	http.HandleFunc("/state", ep.stateHandler)
	http.HandleFunc("/supply", ep.supplyHandler)
	http.HandleFunc("/balance", ep.balanceHandler)
	http.HandleFunc("/collateral", ep.collateralHandler)
	http.HandleFunc("/votes", ep.votesHandler)
	http.HandleFunc("/pastvotes", ep.pastVotesHandler)
	http.HandleFunc("/delegate", ep.delegateHandler)
	http.HandleFunc("/nonce", ep.nonceHandler)
	http.HandleFunc("/receipts", ep.receiptsHandler)
	http.HandleFunc("/request", ep.requestHandler)
}

func (ep *Endpoint) logsHandler(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, logFile)
}

func (ep *Endpoint) stateHandler(w http.ResponseWriter, r *http.Request) {
	state := ep.Ledger.Snapshot()
	err := rlp.Encode(w, &state)
	if err != nil {
		ep.debug.Warningf("failed to encode state: %v", err)
	}
}

func (ep *Endpoint) helloHandler(w http.ResponseWriter, r *http.Request) {
	res := json.NewEncoder(w)
	res.Encode("Hello world")
}

func queryAddr(r *http.Request) types.Address {
	return types.HexToAddress(r.URL.Query().Get("addr"))
}

func (ep *Endpoint) supplyHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(ep.Ledger.TotalSupply().String())
}

func (ep *Endpoint) balanceHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(ep.Ledger.BalanceOf(queryAddr(r)).String())
}

func (ep *Endpoint) collateralHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(ep.Ledger.CollateralOf(queryAddr(r)).String())
}

func (ep *Endpoint) votesHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(ep.Ledger.GetVotes(queryAddr(r)).String())
}

func (ep *Endpoint) pastVotesHandler(w http.ResponseWriter, r *http.Request) {
	seq, err := strconv.ParseUint(r.URL.Query().Get("seq"), 10, 64)
	if err != nil {
		http.Error(w, "invalid seq", http.StatusBadRequest)
		return
	}
	votes, err := ep.Ledger.GetPastVotes(queryAddr(r), seq)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	json.NewEncoder(w).Encode(votes.String())
}

func (ep *Endpoint) delegateHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(ep.Ledger.EffectiveDelegate(queryAddr(r)).String())
}

func (ep *Endpoint) nonceHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(ep.Ledger.Nonce(queryAddr(r)))
}

func (ep *Endpoint) receiptsHandler(w http.ResponseWriter, r *http.Request) {
	if ep.receiptsGetter == nil {
		http.Error(w, "receipts getter is not configured on this server", http.StatusServiceUnavailable)
		return
	}
	json.NewEncoder(w).Encode(ep.receiptsGetter())
}

// requestHandler accepts a raw rlp encoded signed request and forwards it
// to the governance intake loop
func (ep *Endpoint) requestHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	payload, err := ioutil.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req := &types.Request{}
	if err := rlp.DecodeBytes(payload, req); err != nil {
		http.Error(w, "invalid request rlp", http.StatusBadRequest)
		return
	}
	ep.Requests <- payload
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(req.Hash().String())
}

// SetReceiptsGetter sets the receipts getter
func (ep *Endpoint) SetReceiptsGetter(receiptsGetter func() types.Receipts) {
	ep.receiptsGetter = receiptsGetter
}

func (ep *Endpoint) run() {
	for {
		select {
		case client := <-ep.register:
			ep.clients[client] = true
		case client := <-ep.unregister:
			if _, ok := ep.clients[client]; ok {
				delete(ep.clients, client)
				close(client.send)
			}
		case message := <-ep.broadcast:
			for client := range ep.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(ep.clients, client)
				}
			}
		}
	}
}

// Start starts the endpoint
func (ep *Endpoint) Start(addr string) {
	ep.registerHandlers()
	go ep.run()

	if ep.Events != nil {
		sub := ep.Events.Subscribe()
		go func() {
			for event := range sub {
				ep.publishEvent(event)
			}
		}()
	}

	err := http.ListenAndServe(addr, nil)
	if err != nil {
		ep.debug.Errorf("ListenAndServe: %v", err)
	}
}

func (ep *Endpoint) handleMsg(msg *message, cli *Client) {
	ep.debug.Infof("Received client req: %s", msg.Type)
	switch msg.Type {
	case "ledger-state":
		cli.send <- message{
			Type: "ledger-state",
			Data: ep.Ledger.Snapshot(),
		}
	case "receipts":
		if ep.receiptsGetter == nil {
			cli.send <- message{
				Type: "error",
				Data: "Receipts getter is not configured on this server: nil",
			}
			return
		}
		cli.send <- message{
			Type: "receipts",
			Data: ep.receiptsGetter(),
		}
	}
}

func (ep *Endpoint) publishEvent(e types.Event) {
	msg := message{
		Type: "ledgerEvent",
		Data: e,
	}
	msg.DataType = reflect.TypeOf(msg.Data).String()
	ep.broadcast <- msg
}
