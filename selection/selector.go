////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package selection tracks which peer, if any, is the current conversation.
package selection

import (
	"strconv"
	"sync"

	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/simplechat/peers"
	"gitlab.com/elixxir/simplechat/storage"
)

// ActiveKey is the storage key of the selected peer id.
const ActiveKey = "active-conversation-id"

// State is the state of the selector.
type State uint8

const (
	None State = iota
	Active
)

// String returns a human-readable name for the State. Used for debugging and
// to adhere to the fmt.Stringer interface.
func (s State) String() string {
	switch s {
	case None:
		return "none"
	case Active:
		return "active"
	default:
		return "INVALID STATE: " + strconv.Itoa(int(s))
	}
}

// Resolver looks a peer id up in a freshly built directory.
type Resolver interface {
	Resolve(peerID string) (peers.Peer, bool)
}

// ChangeFunc is called after the active peer changes. prev is the peer that
// was active before, if any.
type ChangeFunc func(prev peers.Peer, hadPrev bool, next peers.Peer,
	hasNext bool)

// Selector holds at most one active peer and persists its id.
type Selector struct {
	active   peers.Peer
	state    State
	onChange ChangeFunc
	kv       storage.KeyValue
	mux      sync.RWMutex
}

// New returns a Selector in the None state.
func New(kv storage.KeyValue) *Selector {
	return &Selector{kv: kv, state: None}
}

// OnChange registers a callback that runs after every transition that changes
// the active peer. Only one callback is kept.
func (s *Selector) OnChange(cb ChangeFunc) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.onChange = cb
}

// Start makes the peer the active conversation and persists its id.
func (s *Selector) Start(p peers.Peer) {
	s.mux.Lock()
	prev, hadPrev := s.active, s.state == Active
	s.active, s.state = p, Active
	s.kv.Set(ActiveKey, p.ID)
	cb := s.onChange
	s.mux.Unlock()

	jww.DEBUG.Printf("[SELECTION] Active conversation is now %s", p)
	if cb != nil && (!hadPrev || prev.ID != p.ID) {
		cb(prev, hadPrev, p, true)
	}
}

// Clear drops the active conversation and the persisted id.
func (s *Selector) Clear() {
	s.mux.Lock()
	prev, hadPrev := s.active, s.state == Active
	s.active, s.state = peers.Peer{}, None
	s.kv.Remove(ActiveKey)
	cb := s.onChange
	s.mux.Unlock()

	if hadPrev {
		jww.DEBUG.Printf("[SELECTION] Cleared active conversation with %s",
			prev)
		if cb != nil {
			cb(prev, true, peers.Peer{}, false)
		}
	}
}

// Restore reads the persisted peer id and resolves it against the directory.
// An id that no longer resolves is dropped and the selector stays None.
func (s *Selector) Restore(dir Resolver) (peers.Peer, bool) {
	var id string
	if !s.kv.Load(ActiveKey, &id) || id == "" {
		return peers.Peer{}, false
	}

	p, exists := dir.Resolve(id)
	if !exists {
		jww.WARN.Printf("[SELECTION] Stored conversation %s no longer "+
			"resolves to a peer, dropping it", id)
		s.mux.Lock()
		s.active, s.state = peers.Peer{}, None
		s.kv.Remove(ActiveKey)
		s.mux.Unlock()
		return peers.Peer{}, false
	}

	s.mux.Lock()
	s.active, s.state = p, Active
	s.mux.Unlock()
	jww.INFO.Printf("[SELECTION] Restored conversation with %s", p)
	return p, true
}

// Refresh replaces the active peer with its current version from the
// directory, keeping flags such as IsFriend up to date. The selection is kept
// as is if the peer does not resolve.
func (s *Selector) Refresh(dir Resolver) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.state != Active {
		return
	}
	if p, exists := dir.Resolve(s.active.ID); exists {
		s.active = p
	}
}

// Active returns the active peer, if any.
func (s *Selector) Active() (peers.Peer, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.active, s.state == Active
}

// State returns the current state.
func (s *Selector) State() State {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.state
}
