////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package chat is the session of one authenticated user. It owns the peer
// directory, friends, message log, active conversation and reply simulator of
// that user and exposes the operations a user interface calls.
package chat

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/crypto/fastRNG"
	"gitlab.com/elixxir/simplechat/conversation"
	"gitlab.com/elixxir/simplechat/friends"
	"gitlab.com/elixxir/simplechat/peers"
	"gitlab.com/elixxir/simplechat/reply"
	"gitlab.com/elixxir/simplechat/selection"
	"gitlab.com/elixxir/simplechat/stoppable"
	"gitlab.com/elixxir/simplechat/storage"
)

// Errors returned when an operation is rejected.
var (
	ErrNoActiveConversation = errors.New("no conversation is active")
	ErrEmptyMessage         = errors.New("message is empty")
	ErrPeerNotFound         = errors.New("peer not found")
	ErrNoUser               = errors.New("session requires a user id")
)

// Error messages.
const (
	scheduleReplyErr = "message %s was sent but its reply could not be " +
		"scheduled"
	startThreadErr = "failed to start reply thread"
)

// AccountDirectory is the source of the account records other users are
// found in.
type AccountDirectory interface {
	Records() []storage.AccountRecord
}

// Client is the session of one user. All operations are serialised.
type Client struct {
	user     storage.User
	accounts AccountDirectory
	params   Params
	presence peers.Presence

	dir      peers.Directory
	friends  *friends.Manager
	messages *conversation.Store
	selector *selection.Selector
	replies  *reply.Simulator
	stop     stoppable.Stoppable

	mux sync.Mutex
}

// Login builds the session of the user from the device store. State is kept
// under the user's own prefix so that accounts sharing a device never see each
// other's messages or friends. The active conversation of the previous
// session is restored if its peer still exists.
func Login(root *storage.Store, user storage.User, accounts AccountDirectory,
	params Params, rng *fastRNG.StreamGenerator) (*Client, error) {
	if user.ID == "" {
		return nil, ErrNoUser
	}

	kv := root.ForUser(user.ID)
	c := &Client{
		user:     user,
		accounts: accounts,
		params:   params,
		presence: peers.RandomPresence(rng),
		friends:  friends.Load(kv),
		messages: conversation.Load(kv),
		selector: selection.New(kv),
	}
	c.rebuild()

	c.replies = reply.NewSimulator(params.Reply, c.messages, rng)
	stop, err := c.replies.StartThread()
	if err != nil {
		return nil, errors.WithMessage(err, startThreadErr)
	}
	c.stop = stop

	c.selector.OnChange(c.onSwitch)
	c.selector.Restore(c.dir)

	jww.INFO.Printf("[CHAT] Logged in %s (%s) with %d messages and %d "+
		"friends", user.DisplayName, user.ID, c.messages.Len(), c.friends.Len())

	return c, nil
}

// User returns the identity the session belongs to.
func (c *Client) User() storage.User {
	return c.user
}

// OnReply registers a callback that is called after every delivered reply.
func (c *Client) OnReply(cb reply.DeliveryFunc) {
	c.replies.OnDeliver(cb)
}

// GetActivePeer returns the peer of the active conversation, if any.
func (c *Client) GetActivePeer() (peers.Peer, bool) {
	return c.selector.Active()
}

// GetConversationView returns the messages between the user and the peer in
// order.
func (c *Client) GetConversationView(peerID string) []conversation.Message {
	return c.messages.ViewFor(c.user.ID, peerID)
}

// ActiveConversation returns the messages of the active conversation, or nil
// if there is none.
func (c *Client) ActiveConversation() []conversation.Message {
	p, ok := c.selector.Active()
	if !ok {
		return nil
	}
	return c.GetConversationView(p.ID)
}

// SendMessage appends the trimmed text to the active conversation and
// schedules exactly one reply from the peer. Nothing is appended or scheduled
// if there is no active conversation or the text is blank.
func (c *Client) SendMessage(text string) error {
	c.mux.Lock()
	defer c.mux.Unlock()

	p, ok := c.selector.Active()
	if !ok {
		return ErrNoActiveConversation
	}

	content := strings.TrimSpace(text)
	if content == "" {
		return ErrEmptyMessage
	}

	if !c.stop.IsRunning() {
		return errors.Errorf(stoppable.ErrMsg, c.stop.Name(), "SendMessage")
	}

	var m conversation.Message
	c.replies.WithLane(conversation.NewPair(c.user.ID, p.ID), func() {
		m = c.messages.Append(c.user.ID, p.ID, content)
	})

	if _, err := c.replies.Schedule(c.user.ID, p); err != nil {
		return errors.WithMessagef(err, scheduleReplyErr, m.ID)
	}

	jww.DEBUG.Printf("[CHAT] Sent message %s to %s", m.ID, p.ID)
	return nil
}

// SelectPeer makes the peer the active conversation. The directory's copy of
// the peer is used when it resolves.
func (c *Client) SelectPeer(p peers.Peer) {
	c.mux.Lock()
	defer c.mux.Unlock()

	if resolved, exists := c.dir.Resolve(p.ID); exists {
		p = resolved
	}
	c.selector.Start(p)
}

// SelectPeerByID makes the peer with the id the active conversation.
func (c *Client) SelectPeerByID(peerID string) error {
	c.mux.Lock()
	defer c.mux.Unlock()

	p, exists := c.dir.Resolve(peerID)
	if !exists {
		return errors.WithMessagef(ErrPeerNotFound, "%q", peerID)
	}
	c.selector.Start(p)
	return nil
}

// ClearSelection leaves the active conversation.
func (c *Client) ClearSelection() {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.selector.Clear()
}

// ListFriends returns the human peers the user is friends with.
func (c *Client) ListFriends() []peers.Peer {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.dir.Friends()
}

// ListSuggested returns the human peers the user is not friends with.
func (c *Client) ListSuggested() []peers.Peer {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.dir.Suggested()
}

// ListBots returns the bot peers.
func (c *Client) ListBots() []peers.Peer {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.dir.Bots()
}

// ListAllHuman returns every human peer.
func (c *Client) ListAllHuman() []peers.Peer {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.dir.AllHuman()
}

// AddFriend adds the human peer to the friends. Returns false if nothing
// changed because the peer is unknown, a bot or already a friend.
func (c *Client) AddFriend(peerID string) bool {
	c.mux.Lock()
	defer c.mux.Unlock()

	if !c.friends.AddFriend(peerID, c.dir) {
		return false
	}
	c.rebuild()
	return true
}

// RemoveFriend removes the peer from the friends. Returns false if the peer
// was not a friend.
func (c *Client) RemoveFriend(peerID string) bool {
	c.mux.Lock()
	defer c.mux.Unlock()

	if !c.friends.RemoveFriend(peerID) {
		return false
	}
	c.rebuild()
	return true
}

// Search returns the friends and suggested peers whose name contains the
// query, ignoring case. An empty query matches everyone.
func (c *Client) Search(query string) []peers.Peer {
	c.mux.Lock()
	defer c.mux.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	var out []peers.Peer
	for _, p := range append(c.dir.Friends(), c.dir.Suggested()...) {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	return out
}

// RefreshDirectory rebuilds the directory from the current account records.
func (c *Client) RefreshDirectory() {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.rebuild()
}

// Logout leaves the active conversation and stops the reply thread. Replies
// that have not been delivered are dropped.
func (c *Client) Logout() error {
	c.mux.Lock()
	defer c.mux.Unlock()

	c.selector.Clear()
	err := c.stopThread()
	jww.INFO.Printf("[CHAT] Logged out %s", c.user.ID)
	return err
}

// Close stops the reply thread and keeps the active conversation so that it
// is restored on the next login.
func (c *Client) Close() error {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.stopThread()
}

// rebuild recomputes the directory from the account records and friends. Must
// be called with the lock held or before the client is shared.
func (c *Client) rebuild() {
	var records []storage.AccountRecord
	if c.accounts != nil {
		records = c.accounts.Records()
	}
	c.dir = peers.Build(c.user.ID, records, c.friends, c.presence)
	c.selector.Refresh(c.dir)
}

// onSwitch cancels the replies of the conversation being left when
// Params.CancelOnSwitch is set.
func (c *Client) onSwitch(prev peers.Peer, hadPrev bool, _ peers.Peer, _ bool) {
	if !c.params.CancelOnSwitch || !hadPrev {
		return
	}
	n := c.replies.CancelPair(conversation.NewPair(c.user.ID, prev.ID))
	if n > 0 {
		jww.INFO.Printf("[CHAT] Dropped %d pending replies from %s after "+
			"switching conversation", n, prev.ID)
	}
}

// stopThread closes the reply thread and waits for it to stop.
func (c *Client) stopThread() error {
	if !c.stop.IsRunning() {
		return nil
	}
	if err := c.stop.Close(); err != nil {
		return err
	}
	return stoppable.WaitForStopped(c.stop, c.params.StopTimeout)
}
