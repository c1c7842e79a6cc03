////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package peers

import (
	"strings"
	"unicode/utf8"
)

// Peer is anyone the current user can converse with: a scripted bot or
// another account.
type Peer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`

	// IsOnline is simulated presence and only meaningful for display.
	IsOnline bool `json:"isOnline"`
	IsBot    bool `json:"isBot"`
	IsFriend bool `json:"isFriend"`

	AvatarGlyph string `json:"avatarGlyph,omitempty"`
}

// Glyph returns the avatar glyph, falling back to the upper-cased first
// letter of the name.
func (p Peer) Glyph() string {
	if p.AvatarGlyph != "" {
		return p.AvatarGlyph
	}
	r, _ := utf8.DecodeRuneInString(p.Name)
	if r == utf8.RuneError {
		return "?"
	}
	return strings.ToUpper(string(r))
}

// String returns a short description for logging.
func (p Peer) String() string {
	kind := "human"
	if p.IsBot {
		kind = "bot"
	}
	return p.Name + " (" + p.ID + ", " + kind + ")"
}
