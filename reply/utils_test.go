////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package reply

import (
	"io"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/crypto/fastRNG"
	"gitlab.com/elixxir/simplechat/conversation"
	"gitlab.com/elixxir/simplechat/storage"
	"gitlab.com/xx_network/crypto/csprng"
)

func TestMain(m *testing.M) {
	jww.SetStdoutThreshold(jww.LevelTrace)

	os.Exit(m.Run())
}

// Prng is a PRNG that satisfies the csprng.Source interface.
type Prng struct{ prng io.Reader }

func NewPrng(seed int64) csprng.Source     { return &Prng{rand.New(rand.NewSource(seed))} }
func (s *Prng) Read(b []byte) (int, error) { return s.prng.Read(b) }
func (s *Prng) SetSeed([]byte) error       { return nil }

// errSource is a csprng.Source that always fails.
type errSource struct{}

func (errSource) Read([]byte) (int, error) { return 0, errors.New("no entropy") }
func (errSource) SetSeed([]byte) error     { return nil }

// newTestSimulator returns a started Simulator over an in-memory conversation
// store. The thread is stopped when the test ends.
func newTestSimulator(params Params, t *testing.T) (
	*Simulator, *conversation.Store) {
	store := conversation.Load(storage.NewMemory())
	rng := fastRNG.NewStreamGenerator(10, 4, csprng.NewSystemRNG)
	s := NewSimulator(params, store, rng)

	stop, err := s.StartThread()
	if err != nil {
		t.Fatalf("Failed to start reply thread: %+v", err)
	}
	t.Cleanup(func() {
		if stop.IsRunning() {
			_ = stop.Close()
		}
	})

	return s, store
}

// fastParams keeps the reply delays short enough for tests.
func fastParams() Params {
	return Params{MinDelay: 20 * time.Millisecond, MaxDelay: 40 * time.Millisecond}
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
