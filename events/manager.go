// Package events fans ledger notifications out to subscribers.
package events

import (
	"sync"

	"bitbucket.org/ventureslash/go-slash-governance/types"
)

// Manager dispatches ledger events to its subscribers. Publish never
// blocks: subscribers that stop draining their channel miss events.
type Manager struct {
	mu   sync.Mutex
	subs map[chan types.Event]bool
}

// New returns a new events.Manager
func New() *Manager {
	return &Manager{
		subs: make(map[chan types.Event]bool),
	}
}

// Subscribe registers a new subscriber channel
func (mngr *Manager) Subscribe() chan types.Event {
	ch := make(chan types.Event, 256)
	mngr.mu.Lock()
	mngr.subs[ch] = true
	mngr.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel
func (mngr *Manager) Unsubscribe(ch chan types.Event) {
	mngr.mu.Lock()
	if mngr.subs[ch] {
		delete(mngr.subs, ch)
		close(ch)
	}
	mngr.mu.Unlock()
}

// Publish forwards an event to every subscriber
func (mngr *Manager) Publish(event types.Event) {
	mngr.mu.Lock()
	for ch := range mngr.subs {
		select {
		case ch <- event:
		default:
		}
	}
	mngr.mu.Unlock()
}

// Close closes every subscriber channel
func (mngr *Manager) Close() {
	mngr.mu.Lock()
	for ch := range mngr.subs {
		delete(mngr.subs, ch)
		close(ch)
	}
	mngr.mu.Unlock()
}
