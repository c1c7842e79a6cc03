////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package friends keeps the durable set of peer ids the user has befriended.
// It is the only writer of that set; peer views read it when they are rebuilt.
package friends

import (
	"sort"
	"sync"

	"github.com/golang-collections/collections/set"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/simplechat/peers"
	"gitlab.com/elixxir/simplechat/storage"
)

// IDsKey is the storage key of the friend id list.
const IDsKey = "friend-ids"

// Resolver looks a peer up in the current directory.
type Resolver interface {
	Resolve(peerID string) (peers.Peer, bool)
}

// Manager adds and removes friends and persists the set.
type Manager struct {
	ids *set.Set
	kv  storage.KeyValue
	mux sync.RWMutex
}

// Load reads the friend set from the store. A missing or unreadable set is
// treated as empty.
func Load(kv storage.KeyValue) *Manager {
	m := &Manager{ids: set.New(), kv: kv}

	var stored []string
	if kv.Load(IDsKey, &stored) {
		for _, id := range stored {
			m.ids.Insert(id)
		}
	}
	jww.DEBUG.Printf("[FRIENDS] Loaded %d friends", m.ids.Len())
	return m
}

// IsFriend returns true if the peer id is in the friend set.
func (m *Manager) IsFriend(peerID string) bool {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return m.ids.Has(peerID)
}

// IDs returns the friend ids in sorted order.
func (m *Manager) IDs() []string {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return m.list()
}

// Len returns the number of friends.
func (m *Manager) Len() int {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return m.ids.Len()
}

// AddFriend adds a known human peer to the friend set and persists it.
// Unknown ids, bots and existing friends are left alone. Returns true if the
// set changed.
func (m *Manager) AddFriend(peerID string, dir Resolver) bool {
	p, exists := dir.Resolve(peerID)
	if !exists {
		jww.WARN.Printf("[FRIENDS] Ignoring add of unknown peer %s", peerID)
		return false
	}
	if p.IsBot {
		jww.DEBUG.Printf("[FRIENDS] Ignoring add of bot %s", peerID)
		return false
	}

	m.mux.Lock()
	defer m.mux.Unlock()
	if m.ids.Has(peerID) {
		return false
	}
	m.ids.Insert(peerID)
	m.save()
	jww.INFO.Printf("[FRIENDS] Added %s", p)
	return true
}

// RemoveFriend removes the peer id from the friend set and persists it. Ids
// that are not friends are left alone. Returns true if the set changed.
//
// Removal does not require the peer to still resolve so that a friend whose
// account disappeared can still be dropped.
func (m *Manager) RemoveFriend(peerID string) bool {
	m.mux.Lock()
	defer m.mux.Unlock()
	if !m.ids.Has(peerID) {
		jww.DEBUG.Printf("[FRIENDS] Ignoring remove of non-friend %s", peerID)
		return false
	}
	m.ids.Remove(peerID)
	m.save()
	jww.INFO.Printf("[FRIENDS] Removed %s", peerID)
	return true
}

// save writes the set to storage. The lock must be held by the caller.
func (m *Manager) save() {
	m.kv.Set(IDsKey, m.list())
}

func (m *Manager) list() []string {
	out := make([]string, 0, m.ids.Len())
	m.ids.Do(func(e interface{}) {
		out = append(out, e.(string))
	})
	sort.Strings(out)
	return out
}
