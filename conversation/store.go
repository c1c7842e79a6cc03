////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package conversation holds the message log of a session. The log is append
// only: each message is written once under its own key and a stored count
// marks the end of the log, so an append costs two small writes no matter how
// long the history is.
package conversation

import (
	"encoding/json"
	"sort"
	"strconv"
	"sync"

	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/simplechat/storage"
	"gitlab.com/xx_network/primitives/netTime"
)

// Storage keys.
const (
	logCountKey = "messages/count"
	logEntryKey = "messages/"
)

// maxMissingRun is the number of consecutive missing entries after which the
// stored count is treated as corrupt and the scan stops.
const maxMissingRun = 64

// Store is the ordered message log.
type Store struct {
	// messages is kept sorted by Message.Before
	messages []Message
	count    uint64
	kv       storage.KeyValue
	mux      sync.RWMutex
}

// Load reads the full log from storage. A missing or corrupt count loads as an
// empty log; unreadable entries are skipped. A count pointing past a long run
// of missing entries is cut back to the last entry found.
func Load(kv storage.KeyValue) *Store {
	s := &Store{kv: kv}

	var count uint64
	if !kv.Load(logCountKey, &count) {
		jww.DEBUG.Print("[CONVERSATION] No message log found, starting empty")
		return s
	}

	var missing int
	for seq := uint64(1); seq <= count; seq++ {
		raw, exists := kv.Get(makeEntryKey(seq))
		if !exists {
			missing++
			if missing >= maxMissingRun {
				jww.WARN.Printf("[CONVERSATION] Stored count %d is corrupt, "+
					"no entries after %d", count, s.count)
				break
			}
			continue
		}
		missing = 0
		s.count = seq

		var m Message
		if err := json.Unmarshal(raw, &m); err != nil {
			jww.WARN.Printf("[CONVERSATION] Skipping unreadable message %d "+
				"of %d: %+v", seq, count, err)
			continue
		}
		s.messages = append(s.messages, m)
	}

	sort.SliceStable(s.messages, func(i, j int) bool {
		return s.messages[i].Before(s.messages[j])
	})

	jww.INFO.Printf("[CONVERSATION] Loaded %d messages", len(s.messages))
	return s
}

// Append creates a message from sender to receiver stamped with the current
// time, adds it to the log and persists it.
func (s *Store) Append(senderID, receiverID, content string) Message {
	s.mux.Lock()
	defer s.mux.Unlock()

	m := Message{
		ID:         strconv.FormatUint(s.count+1, 10),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  netTime.Now(),
	}
	s.add(m)
	return m
}

// Add appends an already built message, such as one imported from another
// log. The message keeps its id and timestamp.
func (s *Store) Add(m Message) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.add(m)
}

// add persists the entry, then the count, then inserts it in memory. The lock
// must be held by the caller.
func (s *Store) add(m Message) {
	seq := s.count + 1
	s.kv.Set(makeEntryKey(seq), m)
	s.count = seq
	s.kv.Set(logCountKey, s.count)

	// Almost always lands at the end; a clock step backwards inserts earlier
	i := sort.Search(len(s.messages), func(i int) bool {
		return m.Before(s.messages[i])
	})
	s.messages = append(s.messages, Message{})
	copy(s.messages[i+1:], s.messages[i:])
	s.messages[i] = m

	jww.TRACE.Printf("[CONVERSATION] Appended message %s from %s to %s",
		m.ID, m.SenderID, m.ReceiverID)
}

// ViewFor returns the messages exchanged between the user and the peer in
// order. It never modifies the log.
func (s *Store) ViewFor(userID, peerID string) []Message {
	s.mux.RLock()
	defer s.mux.RUnlock()

	view := make([]Message, 0)
	for _, m := range s.messages {
		if m.Between(userID, peerID) {
			view = append(view, m)
		}
	}
	return view
}

// All returns a copy of the whole log in order.
func (s *Store) All() []Message {
	s.mux.RLock()
	defer s.mux.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages in the log.
func (s *Store) Len() int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return len(s.messages)
}

func makeEntryKey(seq uint64) string {
	return logEntryKey + strconv.FormatUint(seq, 10)
}
