////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package conversation

import (
	"time"
)

// Message is a single immutable entry in the log.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}

// Pair returns the conversation the message belongs to.
func (m Message) Pair() Pair {
	return NewPair(m.SenderID, m.ReceiverID)
}

// Between returns true if the message was exchanged between a and b, in
// either direction.
func (m Message) Between(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) ||
		(m.SenderID == b && m.ReceiverID == a)
}

// Before orders messages by timestamp, breaking ties by id.
func (m Message) Before(o Message) bool {
	if !m.Timestamp.Equal(o.Timestamp) {
		return m.Timestamp.Before(o.Timestamp)
	}
	return lessID(m.ID, o.ID)
}

// lessID compares ids as decimal sequence numbers when both are numeric and
// lexically otherwise.
func lessID(a, b string) bool {
	if isDigits(a) && isDigits(b) && len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Pair is the unordered {user, peer} key of one thread.
type Pair struct {
	A, B string
}

// NewPair returns the canonical pair for the two ids regardless of order.
func NewPair(a, b string) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// String returns the pair as "a:b".
func (p Pair) String() string {
	return p.A + ":" + p.B
}
