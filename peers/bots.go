////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package peers

import (
	"github.com/forPelevin/gomoji"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// Bot ids.
const (
	AssistantBotID = "assistant-bot"
	NewsBotID      = "news-bot"
	MusicBotID     = "music-bot"
)

// ErrInvalidGlyph is returned if an avatar glyph is not exactly one emoji.
var ErrInvalidGlyph = errors.New(
	"The avatar glyph is not valid, it must be a single emoji")

// bot is the process defined description of a scripted peer.
type bot struct {
	id, name, email, glyph string
	script                 []string
}

var bots = []bot{
	{
		id:    AssistantBotID,
		name:  "Chat Assistant",
		email: "assistant@simplechat.app",
		glyph: "🤖",
		script: []string{
			"Hello! How can I help you today?",
			"That's a great question. Let me think about it.",
			"I'm here whenever you need a hand.",
			"Could you give me a little more detail?",
			"Happy to help! Anything else on your mind?",
			"Interesting! Tell me more about that.",
		},
	},
	{
		id:    NewsBotID,
		name:  "News Feed",
		email: "news@simplechat.app",
		glyph: "📰",
		script: []string{
			"Breaking: local community garden wins regional award.",
			"Today's headline: markets close slightly higher after a quiet session.",
			"Tech update: a new open source release is trending this week.",
			"Weather watch: expect sunshine with a chance of evening showers.",
			"Sports roundup: the home team takes the series in game seven.",
		},
	},
	{
		id:    MusicBotID,
		name:  "Music Picks",
		email: "music@simplechat.app",
		glyph: "🎵",
		script: []string{
			"Now playing: a mellow acoustic set for your afternoon.",
			"Try this: an upbeat indie playlist to get you moving.",
			"Throwback time! A classic from the 80s just for you.",
			"Fresh release: a new jazz album everyone is talking about.",
			"Need focus? Here's some instrumental lo-fi.",
		},
	},
}

// botScripts maps each bot id to its reply pool.
var botScripts map[string][]string

func init() {
	botScripts = make(map[string][]string, len(bots))
	for _, b := range bots {
		if err := ValidateGlyph(b.glyph); err != nil {
			jww.FATAL.Panicf("Bot %s has an invalid glyph %q: %+v",
				b.id, b.glyph, err)
		}
		botScripts[b.id] = b.script
	}
}

// Bots returns the fixed set of bot peers. Bots are always online and are
// never friends.
func Bots() []Peer {
	out := make([]Peer, len(bots))
	for i, b := range bots {
		out[i] = Peer{
			ID:          b.id,
			Name:        b.name,
			Email:       b.email,
			IsOnline:    true,
			IsBot:       true,
			AvatarGlyph: b.glyph,
		}
	}
	return out
}

// BotScript returns the reply pool for the bot. Unknown ids return an empty
// pool.
func BotScript(botID string) []string {
	return botScripts[botID]
}

// IsBotID reports whether the id belongs to one of the fixed bots.
func IsBotID(id string) bool {
	_, exists := botScripts[id]
	return exists
}

// ValidateGlyph checks that the glyph only contains a single emoji.
func ValidateGlyph(glyph string) error {
	emojisList := gomoji.CollectAll(glyph)
	if len(emojisList) != 1 {
		return ErrInvalidGlyph
	} else if emojisList[0].Character != glyph {
		// Non-emoji characters found alongside an emoji
		return ErrInvalidGlyph
	}
	return nil
}
