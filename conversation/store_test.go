////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package conversation

import (
	"reflect"
	"sort"
	"strconv"
	"testing"
	"time"

	"gitlab.com/elixxir/simplechat/storage"
)

// Tests that a message appended with Append is in the view of exactly its own
// pair.
func TestStore_ViewFor_Membership(t *testing.T) {
	s := Load(storage.NewMemory())
	users := []string{"u", "p1", "p2", "bot"}

	var sent []Message
	for i := 0; i < 20; i++ {
		from := users[i%len(users)]
		to := users[(i+1+i/len(users))%len(users)]
		if from == to {
			continue
		}
		sent = append(sent, s.Append(from, to, "msg "+strconv.Itoa(i)))
	}

	for _, a := range users {
		for _, b := range users {
			if a == b {
				continue
			}
			view := s.ViewFor(a, b)
			inView := make(map[string]bool, len(view))
			for _, m := range view {
				inView[m.ID] = true
			}
			for _, m := range sent {
				expected := NewPair(m.SenderID, m.ReceiverID) == NewPair(a, b)
				if inView[m.ID] != expected {
					t.Errorf("Message %s (%s->%s) in view(%s, %s): %t, "+
						"expected %t", m.ID, m.SenderID, m.ReceiverID, a, b,
						inView[m.ID], expected)
				}
			}
		}
	}
}

// Tests that the view is sorted, symmetric, and does not change the store.
func TestStore_ViewFor_Pure(t *testing.T) {
	s := Load(storage.NewMemory())
	s.Append("u", "p", "hi")
	s.Append("p", "u", "hello")
	s.Append("u", "q", "other thread")
	s.Append("u", "p", "how are you")

	before := s.All()
	first := s.ViewFor("u", "p")
	second := s.ViewFor("p", "u")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("ViewFor is not symmetric.\nfirst:  %v\nsecond: %v",
			first, second)
	}
	if len(first) != 3 {
		t.Fatalf("Unexpected view length.\nexpected: %d\nreceived: %d",
			3, len(first))
	}
	if !sort.SliceIsSorted(first, func(i, j int) bool {
		return first[i].Before(first[j])
	}) {
		t.Errorf("View is not sorted: %v", first)
	}
	if !reflect.DeepEqual(before, s.All()) {
		t.Error("ViewFor changed the store.")
	}

	// Modifying the returned view must not leak into the store
	first[0].Content = "edited"
	if s.ViewFor("u", "p")[0].Content == "edited" {
		t.Error("Editing the view changed the stored message.")
	}
}

// Tests that an empty view is empty rather than nil-panicking.
func TestStore_ViewFor_Empty(t *testing.T) {
	s := Load(storage.NewMemory())
	if view := s.ViewFor("u", "p"); len(view) != 0 {
		t.Errorf("Expected empty view, received %v", view)
	}
}

// Tests that Append assigns increasing ids and that the log survives a reload.
func TestLoad_Persisted(t *testing.T) {
	kv := storage.NewMemory()
	s := Load(kv)
	a := s.Append("u", "p", "one")
	b := s.Append("p", "u", "two")

	if a.ID != "1" || b.ID != "2" {
		t.Errorf("Unexpected ids.\nexpected: 1, 2\nreceived: %s, %s",
			a.ID, b.ID)
	}

	loaded := Load(kv)
	if loaded.Len() != 2 {
		t.Fatalf("Unexpected length after reload."+
			"\nexpected: %d\nreceived: %d", 2, loaded.Len())
	}
	all := loaded.All()
	if all[0].Content != "one" || all[1].Content != "two" {
		t.Errorf("Unexpected order after reload: %v", all)
	}

	c := loaded.Append("u", "p", "three")
	if c.ID != "3" {
		t.Errorf("Id did not continue after reload: %s", c.ID)
	}
}

// Tests that corrupt data degrades to an empty or partial log.
func TestLoad_Corrupt(t *testing.T) {
	kv := storage.NewMemory()
	kv.Set(logCountKey, "garbage")
	if s := Load(kv); s.Len() != 0 {
		t.Errorf("Corrupt count did not load as empty: %d", s.Len())
	}

	kv = storage.NewMemory()
	s := Load(kv)
	s.Append("u", "p", "one")
	s.Append("u", "p", "two")
	kv.Set(makeEntryKey(1), 42)

	loaded := Load(kv)
	if loaded.Len() != 1 || loaded.All()[0].Content != "two" {
		t.Errorf("Corrupt entry was not skipped: %v", loaded.All())
	}
}

// Tests that a count far larger than the log loads without allocating for it
// and that appends continue after the last real entry.
func TestLoad_CorruptHugeCount(t *testing.T) {
	kv := storage.NewMemory()
	kv.Set(logCountKey, uint64(1)<<62)
	s := Load(kv)
	if s.Len() != 0 {
		t.Errorf("Huge count did not load as empty: %d", s.Len())
	}
	if m := s.Append("u", "p", "one"); m.ID != "1" {
		t.Errorf("Unexpected id.\nexpected: %s\nreceived: %s", "1", m.ID)
	}

	kv = storage.NewMemory()
	s = Load(kv)
	s.Append("u", "p", "one")
	s.Append("p", "u", "two")
	kv.Set(logCountKey, uint64(1)<<62)

	loaded := Load(kv)
	if loaded.Len() != 2 {
		t.Fatalf("Unexpected length.\nexpected: %d\nreceived: %d",
			2, loaded.Len())
	}
	if m := loaded.Append("u", "p", "three"); m.ID != "3" {
		t.Errorf("Unexpected id.\nexpected: %s\nreceived: %s", "3", m.ID)
	}
}

// Tests that messages with out of order timestamps are kept sorted, with ties
// broken by numeric id.
func TestStore_Add_Order(t *testing.T) {
	s := Load(storage.NewMemory())
	now := time.Now()
	s.Add(Message{ID: "10", SenderID: "u", ReceiverID: "p",
		Timestamp: now})
	s.Add(Message{ID: "9", SenderID: "u", ReceiverID: "p",
		Timestamp: now})
	s.Add(Message{ID: "1", SenderID: "p", ReceiverID: "u",
		Timestamp: now.Add(-time.Second)})

	expected := []string{"1", "9", "10"}
	view := s.ViewFor("u", "p")
	for i, m := range view {
		if m.ID != expected[i] {
			t.Errorf("Message #%d out of order.\nexpected: %s\nreceived: %s",
				i, expected[i], m.ID)
		}
	}
}

// Tests that NewPair is independent of argument order.
func TestNewPair(t *testing.T) {
	if NewPair("a", "b") != NewPair("b", "a") {
		t.Error("NewPair depends on argument order.")
	}
	if NewPair("b", "a").String() != "a:b" {
		t.Errorf("Unexpected string: %s", NewPair("b", "a"))
	}
}

// Tests lessID on numeric and non numeric ids.
func Test_lessID(t *testing.T) {
	tests := []struct {
		a, b     string
		expected bool
	}{
		{"2", "10", true},
		{"10", "2", false},
		{"3", "3", false},
		{"abc", "abd", true},
		{"10", "abc", true},
	}
	for i, tt := range tests {
		if r := lessID(tt.a, tt.b); r != tt.expected {
			t.Errorf("lessID(%s, %s) #%d.\nexpected: %t\nreceived: %t",
				tt.a, tt.b, i, tt.expected, r)
		}
	}
}
