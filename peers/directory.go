////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package peers

import (
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/simplechat/storage"
)

// FriendChecker reports whether a peer id is in the durable friend set.
type FriendChecker interface {
	IsFriend(peerID string) bool
}

// NoFriends is a FriendChecker for a user without friends.
type NoFriends struct{}

// IsFriend always returns false.
func (NoFriends) IsFriend(string) bool { return false }

// demoPeers are shown when no other account exists so that a fresh install is
// never empty. They are never written to the account records.
var demoPeers = []Peer{
	{
		ID:          "demo-alice",
		Name:        "Alice Johnson",
		Email:       "alice@demo.simplechat.app",
		PhoneNumber: "+1234567890",
	},
	{
		ID:          "demo-carol",
		Name:        "Carol Wilson",
		Email:       "carol@demo.simplechat.app",
		PhoneNumber: "+1234567892",
	},
	{
		ID:    "demo-sam",
		Name:  "Sam Taylor",
		Email: "sam@demo.simplechat.app",
	},
}

// Directory is the set of peers visible to one user. It is a projection of
// the account records and the friend set and is rebuilt rather than edited.
type Directory struct {
	bots      []Peer
	friends   []Peer
	suggested []Peer
	allHuman  []Peer
	byID      map[string]Peer
}

// Build constructs the directory for the current user from the account
// records and the friend set. Apart from presence, building twice from the
// same inputs yields the same directory.
func Build(currentUserID string, records []storage.AccountRecord,
	friends FriendChecker, presence Presence) Directory {
	if friends == nil {
		friends = NoFriends{}
	}
	if presence == nil {
		presence = FixedPresence(false)
	}

	d := Directory{
		bots: Bots(),
		byID: make(map[string]Peer),
	}

	for _, r := range records {
		if r.ID == currentUserID || r.ID == "" {
			continue
		}
		d.allHuman = append(d.allHuman, Peer{
			ID:          r.ID,
			Name:        r.DisplayName,
			Email:       r.Email,
			PhoneNumber: r.PhoneNumber,
		})
	}

	if len(d.allHuman) == 0 {
		jww.DEBUG.Printf("[PEERS] No other accounts for %s, using %d demo "+
			"peers", currentUserID, len(demoPeers))
		d.allHuman = append(d.allHuman, demoPeers...)
	}

	for i := range d.allHuman {
		p := &d.allHuman[i]
		p.IsOnline = presence(p.ID)
		p.IsFriend = friends.IsFriend(p.ID)
		if p.IsFriend {
			d.friends = append(d.friends, *p)
		} else {
			d.suggested = append(d.suggested, *p)
		}
		d.byID[p.ID] = *p
	}

	for _, b := range d.bots {
		d.byID[b.ID] = b
	}

	jww.DEBUG.Printf("[PEERS] Built directory for %s: %d bots, %d friends, "+
		"%d suggested", currentUserID, len(d.bots), len(d.friends),
		len(d.suggested))

	return d
}

// Bots returns the bot peers.
func (d Directory) Bots() []Peer { return clonePeers(d.bots) }

// Friends returns the human peers in the friend set.
func (d Directory) Friends() []Peer { return clonePeers(d.friends) }

// Suggested returns the human peers that are not friends.
func (d Directory) Suggested() []Peer { return clonePeers(d.suggested) }

// AllHuman returns every human peer.
func (d Directory) AllHuman() []Peer { return clonePeers(d.allHuman) }

// Resolve looks the id up among the bots and all human peers.
func (d Directory) Resolve(peerID string) (Peer, bool) {
	p, exists := d.byID[peerID]
	return p, exists
}

// Len returns the number of resolvable peers.
func (d Directory) Len() int { return len(d.byID) }

func clonePeers(p []Peer) []Peer {
	if len(p) == 0 {
		return nil
	}
	out := make([]Peer, len(p))
	copy(out, p)
	return out
}
