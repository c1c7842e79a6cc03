////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package peers

import (
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/crypto/fastRNG"
	"gitlab.com/xx_network/crypto/csprng"
)

// Presence decides whether a human peer is shown as online. It carries no
// consistency guarantee.
type Presence func(peerID string) bool

// RandomPresence returns a Presence that flips a coin for every peer using a
// stream from the generator.
func RandomPresence(rng *fastRNG.StreamGenerator) Presence {
	return func(peerID string) bool {
		stream := rng.GetStream()
		defer stream.Close()
		return coinFlip(stream, peerID)
	}
}

func coinFlip(rng csprng.Source, peerID string) bool {
	b, err := csprng.Generate(1, rng)
	if err != nil {
		jww.WARN.Printf("[PEERS] Failed to generate presence for %s, "+
			"showing offline: %+v", peerID, err)
		return false
	}
	return b[0]&1 == 1
}

// FixedPresence returns a Presence that reports the same value for everyone.
func FixedPresence(online bool) Presence {
	return func(string) bool { return online }
}
