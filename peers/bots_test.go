////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package peers

import (
	"testing"
)

// Tests that every bot has its own distinct script.
func TestBotScript_Distinct(t *testing.T) {
	seen := make(map[string]string)
	for _, b := range Bots() {
		for _, line := range BotScript(b.ID) {
			if owner, exists := seen[line]; exists {
				t.Errorf("Line %q is shared by %s and %s", line, owner, b.ID)
			}
			seen[line] = b.ID
		}
	}
	if len(BotScript("unknown-bot")) != 0 {
		t.Error("Unknown bot id returned a script.")
	}
	if IsBotID("unknown-bot") || !IsBotID(NewsBotID) {
		t.Error("IsBotID returned the wrong value.")
	}
}

// Tests ValidateGlyph with valid and invalid glyphs.
func TestValidateGlyph(t *testing.T) {
	tests := []struct {
		glyph string
		valid bool
	}{
		{"🤖", true},
		{"📰", true},
		{"A", false},
		{"", false},
		{"🤖🤖", false},
		{"🤖 bot", false},
	}

	for i, tt := range tests {
		err := ValidateGlyph(tt.glyph)
		if (err == nil) != tt.valid {
			t.Errorf("ValidateGlyph(%q) #%d.\nexpected valid: %t\nreceived: %v",
				tt.glyph, i, tt.valid, err)
		}
	}
}

// Tests that Glyph falls back to the first letter of the name.
func TestPeer_Glyph(t *testing.T) {
	tests := []struct {
		peer     Peer
		expected string
	}{
		{Peer{Name: "alice"}, "A"},
		{Peer{Name: "Bob", AvatarGlyph: "🎵"}, "🎵"},
		{Peer{Name: ""}, "?"},
	}
	for i, tt := range tests {
		if g := tt.peer.Glyph(); g != tt.expected {
			t.Errorf("Glyph #%d.\nexpected: %s\nreceived: %s", i, tt.expected, g)
		}
	}
}
