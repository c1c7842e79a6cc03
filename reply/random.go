////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package reply

import (
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
	"gitlab.com/elixxir/simplechat/peers"
	"gitlab.com/xx_network/crypto/csprng"
)

// Error messages.
const (
	emptyRangeErr   = "cannot draw a random number from an empty range"
	rngExhaustedErr = "no unbiased draw after %d attempts for range %d"
)

// genericResponses is the pool shared by every human peer.
var genericResponses = []string{
	"Thanks for your message!",
	"How are you doing?",
	"That's interesting!",
	"I see what you mean.",
	"Can you tell me more?",
	"Great to hear from you!",
	"What's new with you?",
	"Hope you're having a good day!",
}

// GenericResponses returns a copy of the pool used for human peers.
func GenericResponses() []string {
	return append([]string(nil), genericResponses...)
}

// maxRngAttempts bounds the rejection loop in uint64Rng.
const maxRngAttempts = 64

// uint64Rng returns a random number in [0, n) from the csprng.Source. Draws
// below 2^64 mod n are rejected so every result is equally likely.
func uint64Rng(n uint64, rng csprng.Source) (uint64, error) {
	if n == 0 {
		return 0, errors.New(emptyRangeErr)
	}

	threshold := -n % n
	for i := 0; i < maxRngAttempts; i++ {
		b, err := csprng.Generate(8, rng)
		if err != nil {
			return 0, err
		}

		if v := binary.LittleEndian.Uint64(b); v >= threshold {
			return v % n, nil
		}
	}

	return 0, errors.Errorf(rngExhaustedErr, maxRngAttempts, n)
}

// delayRng returns a duration drawn uniformly from [min, max). If the range is
// empty, min is returned.
func delayRng(min, max time.Duration, rng csprng.Source) (
	time.Duration, error) {
	if max <= min {
		return min, nil
	}

	delta, err := uint64Rng(uint64(max-min), rng)
	if err != nil {
		return 0, err
	}

	return min + time.Duration(delta), nil
}

// responsePool returns the phrases the peer replies with. Bots use their own
// script; an unknown bot id has an empty pool.
func responsePool(p peers.Peer) []string {
	if p.IsBot {
		return peers.BotScript(p.ID)
	}
	return genericResponses
}

// pickResponse chooses uniformly from the peer's pool. Returns false if the
// pool is empty.
func pickResponse(p peers.Peer, rng csprng.Source) (string, bool, error) {
	pool := responsePool(p)
	if len(pool) == 0 {
		return "", false, nil
	}

	i, err := uint64Rng(uint64(len(pool)), rng)
	if err != nil {
		return "", false, err
	}

	return pool[i], true, nil
}
