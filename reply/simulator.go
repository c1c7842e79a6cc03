////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package reply synthesises delayed replies from peers. Every accepted send
// schedules exactly one reply that is appended to the conversation after a
// random delay, on a per-conversation lane so that appends to one pair are
// strictly ordered while unrelated pairs never block each other.
package reply

import (
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/crypto/fastRNG"
	"gitlab.com/elixxir/simplechat/conversation"
	"gitlab.com/elixxir/simplechat/peers"
	"gitlab.com/elixxir/simplechat/stoppable"
	"gitlab.com/xx_network/primitives/netTime"
)

// Simulator related thread handling constants.
const (
	// The name of the Simulator's stoppable.Stoppable
	replyStoppableName = "ReplySimulator"

	// The number of fired replies that can wait for the thread.
	firedChanLen = 100
)

// The thread status values.
const (
	notStarted uint32 = iota // Reply thread has not been started
	running                  // Reply thread is currently operating
	stopped                  // Reply thread is halted
)

// Error messages.
const (
	notStartedErr     = "the reply thread has not been started"
	alreadyStartedErr = "the reply thread has already been started"
	delayRngErr       = "failed to generate random reply delay: %+v"
	responseRngErr    = "failed to pick random response: %+v"
)

// Appender adds a message to the conversation log.
type Appender interface {
	Append(senderID, receiverID, content string) conversation.Message
}

// DeliveryFunc is called with every reply after it has been appended.
type DeliveryFunc func(m conversation.Message)

// Ticket identifies one scheduled reply by its conversation and the order in
// which it was scheduled.
type Ticket struct {
	Pair conversation.Pair
	Seq  uint64
}

// String returns the ticket as "pair#seq".
func (t Ticket) String() string {
	return t.Pair.String() + "#" + strconv.FormatUint(t.Seq, 10)
}

// pendingReply is a reply whose timer has not fired yet.
type pendingReply struct {
	userID string
	peer   peers.Peer
	due    time.Time
	timer  *time.Timer
}

// Simulator schedules and delivers synthetic replies.
type Simulator struct {
	params Params
	store  Appender
	rng    *fastRNG.StreamGenerator

	status  uint32
	seq     uint64
	pending map[Ticket]*pendingReply
	lanes   map[conversation.Pair]*sync.Mutex
	fired   chan Ticket
	quit    <-chan struct{}

	onDeliver DeliveryFunc

	// Tracks deliveries in progress so that stopping waits for them
	wg  sync.WaitGroup
	mux sync.Mutex
}

// NewSimulator creates a Simulator that appends replies to the store. The
// thread must be started with StartThread before replies can be scheduled.
func NewSimulator(params Params, store Appender,
	rng *fastRNG.StreamGenerator) *Simulator {
	return &Simulator{
		params:  params,
		store:   store,
		rng:     rng,
		status:  notStarted,
		pending: make(map[Ticket]*pendingReply),
		lanes:   make(map[conversation.Pair]*sync.Mutex),
		fired:   make(chan Ticket, firedChanLen),
	}
}

// StartThread starts the thread that delivers replies once their delay has
// elapsed. Closing the returned stoppable drops every reply that has not
// fired yet.
func (s *Simulator) StartThread() (stoppable.Stoppable, error) {
	stop := stoppable.NewSingle(replyStoppableName)

	s.mux.Lock()
	if s.status != notStarted {
		s.mux.Unlock()
		return nil, errors.New(alreadyStartedErr)
	}
	s.status = running
	s.quit = stop.Quit()
	s.mux.Unlock()

	go s.replyThread(stop)

	return stop, nil
}

// OnDeliver registers a callback that is called after every delivered reply.
// Only one callback is kept.
func (s *Simulator) OnDeliver(cb DeliveryFunc) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.onDeliver = cb
}

// Schedule queues one reply from the peer to the user. The reply is appended
// after a delay drawn uniformly from [Params.MinDelay, Params.MaxDelay). It
// does not block on the delivery.
func (s *Simulator) Schedule(userID string, p peers.Peer) (Ticket, error) {
	stream := s.rng.GetStream()
	delay, err := delayRng(s.params.MinDelay, s.params.MaxDelay, stream)
	stream.Close()
	if err != nil {
		return Ticket{}, errors.Errorf(delayRngErr, err)
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	switch s.status {
	case notStarted:
		return Ticket{}, errors.New(notStartedErr)
	case stopped:
		return Ticket{}, errors.Errorf(
			stoppable.ErrMsg, replyStoppableName, "Schedule")
	}

	s.seq++
	t := Ticket{Pair: conversation.NewPair(userID, p.ID), Seq: s.seq}
	quit := s.quit
	r := &pendingReply{
		userID: userID,
		peer:   p,
		due:    netTime.Now().Add(delay),
	}
	r.timer = time.AfterFunc(delay, func() {
		select {
		case s.fired <- t:
		case <-quit:
		}
	})
	s.pending[t] = r

	jww.DEBUG.Printf("[REPLY] Scheduled reply %s from %s in %s",
		t, p.ID, delay)

	return t, nil
}

// Cancel drops a single reply that has not been delivered. Returns false if
// the reply already fired or was never scheduled.
func (s *Simulator) Cancel(t Ticket) bool {
	s.mux.Lock()
	defer s.mux.Unlock()

	r, exists := s.pending[t]
	if !exists {
		return false
	}
	r.timer.Stop()
	delete(s.pending, t)
	jww.DEBUG.Printf("[REPLY] Cancelled reply %s", t)
	return true
}

// CancelPair drops every undelivered reply in the conversation and returns
// how many were dropped.
func (s *Simulator) CancelPair(pair conversation.Pair) int {
	s.mux.Lock()
	defer s.mux.Unlock()

	var n int
	for t, r := range s.pending {
		if t.Pair == pair {
			r.timer.Stop()
			delete(s.pending, t)
			n++
		}
	}

	if n > 0 {
		jww.DEBUG.Printf("[REPLY] Cancelled %d pending replies in %s",
			n, pair)
	}
	return n
}

// Pending returns the number of replies that have not been delivered.
func (s *Simulator) Pending() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return len(s.pending)
}

// PendingFor returns the number of undelivered replies in the conversation.
func (s *Simulator) PendingFor(pair conversation.Pair) int {
	s.mux.Lock()
	defer s.mux.Unlock()

	var n int
	for t := range s.pending {
		if t.Pair == pair {
			n++
		}
	}
	return n
}

// WithLane runs fn while holding the conversation's lane. Appends made through
// it are ordered with respect to replies in the same conversation.
func (s *Simulator) WithLane(pair conversation.Pair, fn func()) {
	lane := s.lane(pair)
	lane.Lock()
	defer lane.Unlock()
	fn()
}

// lane returns the mutex of the conversation, creating it on first use.
func (s *Simulator) lane(pair conversation.Pair) *sync.Mutex {
	s.mux.Lock()
	defer s.mux.Unlock()

	lane, exists := s.lanes[pair]
	if !exists {
		lane = &sync.Mutex{}
		s.lanes[pair] = lane
	}
	return lane
}

// replyThread hands fired replies off for delivery until it is stopped.
func (s *Simulator) replyThread(stop *stoppable.Single) {
	jww.INFO.Print("[REPLY] Starting reply thread.")

	for {
		select {
		case <-stop.Quit():
			s.stopReplyThread(stop)
			return
		case t := <-s.fired:
			s.mux.Lock()
			r, exists := s.pending[t]
			delete(s.pending, t)
			s.mux.Unlock()

			if !exists {
				jww.TRACE.Printf("[REPLY] Reply %s fired after it was "+
					"cancelled", t)
				continue
			}

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.deliver(t, r)
			}()
		}
	}
}

// stopReplyThread is triggered when the stoppable is triggered. It drops every
// pending reply, waits for deliveries in progress and then marks the stoppable
// as stopped.
func (s *Simulator) stopReplyThread(stop *stoppable.Single) {
	s.mux.Lock()
	s.status = stopped
	dropped := len(s.pending)
	for _, r := range s.pending {
		r.timer.Stop()
	}
	s.pending = make(map[Ticket]*pendingReply)
	s.mux.Unlock()

	jww.DEBUG.Printf("[REPLY] Stopping reply thread: stoppable triggered, "+
		"dropped %d pending replies", dropped)

	s.wg.Wait()
	stop.ToStopped()
}

// deliver picks the reply content and appends it through the pair's lane.
func (s *Simulator) deliver(t Ticket, r *pendingReply) {
	stream := s.rng.GetStream()
	content, ok, err := pickResponse(r.peer, stream)
	stream.Close()
	if err != nil {
		jww.ERROR.Printf("[REPLY] Failed to deliver reply %s: %+v",
			t, errors.Errorf(responseRngErr, err))
		return
	} else if !ok {
		jww.WARN.Printf("[REPLY] No responses for %s, reply %s is not "+
			"delivered", r.peer.ID, t)
		return
	}

	var m conversation.Message
	s.WithLane(t.Pair, func() {
		m = s.store.Append(r.peer.ID, r.userID, content)
	})

	jww.INFO.Printf("[REPLY] Delivered reply %s from %s (%s late)",
		t, r.peer.ID, netTime.Now().Sub(r.due))

	s.mux.Lock()
	cb := s.onDeliver
	s.mux.Unlock()
	if cb != nil {
		cb(m)
	}
}
