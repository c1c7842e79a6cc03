////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package chat

import (
	"os"
	"testing"
	"time"

	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/crypto/fastRNG"
	"gitlab.com/elixxir/simplechat/reply"
	"gitlab.com/elixxir/simplechat/storage"
	"gitlab.com/xx_network/crypto/csprng"
)

func TestMain(m *testing.M) {
	jww.SetStdoutThreshold(jww.LevelTrace)

	os.Exit(m.Run())
}

// recordList is an AccountDirectory over a fixed list.
type recordList []storage.AccountRecord

func (rl recordList) Records() []storage.AccountRecord { return rl }

func testRNG() *fastRNG.StreamGenerator {
	return fastRNG.NewStreamGenerator(10, 4, csprng.NewSystemRNG)
}

// fastParams keeps reply delays short.
func fastParams() Params {
	p := GetDefaultParams()
	p.Reply = reply.Params{
		MinDelay: 20 * time.Millisecond,
		MaxDelay: 40 * time.Millisecond,
	}
	return p
}

// slowParams makes sure no reply fires while a test runs.
func slowParams() Params {
	p := GetDefaultParams()
	p.Reply = reply.Params{MinDelay: time.Hour, MaxDelay: 2 * time.Hour}
	return p
}

// registerTestUsers registers two accounts on the store and returns them.
func registerTestUsers(root *storage.Store, t *testing.T) (
	*storage.Accounts, storage.User, storage.User) {
	accounts := storage.LoadAccounts(root)
	a, err := accounts.Register("Alice", "alice@example.com", "", "pw-a")
	if err != nil {
		t.Fatalf("Failed to register A: %+v", err)
	}
	b, err := accounts.Register("Bob", "bob@example.com", "", "pw-b")
	if err != nil {
		t.Fatalf("Failed to register B: %+v", err)
	}
	return accounts, a, b
}

// newTestClient logs the user in and logs them out when the test ends.
func newTestClient(root *storage.Store, user storage.User,
	accounts AccountDirectory, params Params, t *testing.T) *Client {
	c, err := Login(root, user, accounts, params, testRNG())
	if err != nil {
		t.Fatalf("Failed to log in %s: %+v", user.ID, err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// waitFor polls cond until it is true or the timeout elapses.
func waitFor(cond func() bool, timeout time.Duration, t *testing.T) {
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Condition not met within %s.", timeout)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func containsID(list []storage.AccountRecord, id string) bool {
	for _, r := range list {
		if r.ID == id {
			return true
		}
	}
	return false
}
