////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package friends

import (
	"reflect"
	"testing"

	"gitlab.com/elixxir/simplechat/peers"
	"gitlab.com/elixxir/simplechat/storage"
)

func testDirectory(m *Manager) peers.Directory {
	records := []storage.AccountRecord{
		{ID: "me", Email: "me@example.com", DisplayName: "Me"},
		{ID: "b", Email: "b@example.com", DisplayName: "B"},
		{ID: "c", Email: "c@example.com", DisplayName: "C"},
	}
	return peers.Build("me", records, m, peers.FixedPresence(true))
}

func contains(list []peers.Peer, id string) bool {
	for _, p := range list {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Tests that adding a suggested peer moves it to friends once the directory is
// rebuilt, and that the set is persisted.
func TestManager_AddFriend(t *testing.T) {
	kv := storage.NewMemory()
	m := Load(kv)
	d := testDirectory(m)

	if contains(d.Friends(), "b") || !contains(d.Suggested(), "b") {
		t.Fatal("b should start in suggested.")
	}

	if !m.AddFriend("b", d) {
		t.Error("AddFriend did not report a change.")
	}
	d = testDirectory(m)
	if !contains(d.Friends(), "b") || contains(d.Suggested(), "b") {
		t.Errorf("b was not moved to friends.\nfriends: %v\nsuggested: %v",
			d.Friends(), d.Suggested())
	}

	var stored []string
	if !kv.Load(IDsKey, &stored) || !reflect.DeepEqual(stored, []string{"b"}) {
		t.Errorf("Unexpected stored friend ids: %v", stored)
	}

	// Adding again is a no-op
	if m.AddFriend("b", d) {
		t.Error("AddFriend reported a change for an existing friend.")
	}
}

// Tests that add then remove returns the peer to suggested.
func TestManager_AddRemove_RoundTrip(t *testing.T) {
	m := Load(storage.NewMemory())
	d := testDirectory(m)

	m.AddFriend("c", d)
	if !m.RemoveFriend("c") {
		t.Error("RemoveFriend did not report a change.")
	}
	d = testDirectory(m)
	if contains(d.Friends(), "c") || !contains(d.Suggested(), "c") {
		t.Errorf("c was not returned to suggested.\nfriends: %v\nsuggested: %v",
			d.Friends(), d.Suggested())
	}
}

// Tests that removing a non-friend leaves the friends view unchanged.
func TestManager_RemoveFriend_NotFriend(t *testing.T) {
	m := Load(storage.NewMemory())
	d := testDirectory(m)
	m.AddFriend("b", d)
	before := testDirectory(m).Friends()

	if m.RemoveFriend("c") {
		t.Error("RemoveFriend reported a change for a non-friend.")
	}
	after := testDirectory(m).Friends()
	if !reflect.DeepEqual(before, after) {
		t.Errorf("Friends changed.\nexpected: %v\nreceived: %v", before, after)
	}
}

// Tests that unknown peers and bots are silently ignored.
func TestManager_AddFriend_UnknownAndBot(t *testing.T) {
	m := Load(storage.NewMemory())
	d := testDirectory(m)

	if m.AddFriend("ghost", d) {
		t.Error("AddFriend changed the set for an unknown peer.")
	}
	if m.AddFriend(peers.AssistantBotID, d) {
		t.Error("AddFriend changed the set for a bot.")
	}
	if m.RemoveFriend("ghost") {
		t.Error("RemoveFriend changed the set for an unknown peer.")
	}
	if m.Len() != 0 {
		t.Errorf("Friend set is not empty: %v", m.IDs())
	}
}

// Tests that the set is restored from storage and that ids come back sorted.
func TestLoad(t *testing.T) {
	kv := storage.NewMemory()
	m := Load(kv)
	d := testDirectory(m)
	m.AddFriend("c", d)
	m.AddFriend("b", d)

	loaded := Load(kv)
	expected := []string{"b", "c"}
	if !reflect.DeepEqual(loaded.IDs(), expected) {
		t.Errorf("Unexpected ids.\nexpected: %v\nreceived: %v",
			expected, loaded.IDs())
	}
	if !loaded.IsFriend("b") || loaded.IsFriend("me") {
		t.Error("IsFriend returned the wrong value after load.")
	}

	// Corrupt data loads as an empty set
	kv.Set(IDsKey, "not a list")
	if Load(kv).Len() != 0 {
		t.Error("Corrupt friend data did not load as empty.")
	}
}
