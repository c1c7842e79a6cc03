////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
	"gitlab.com/elixxir/simplechat/peers"
)

// peersCmd lists the peers of the current user.
var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "List bots, friends and suggested peers",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		client, _ := initSession()
		defer closeSession(client)

		if query := viper.GetString(searchFlag); query != "" {
			printPeers(os.Stdout, "Results", client.Search(query))
			return
		}

		if active, ok := client.GetActivePeer(); ok {
			fmt.Printf("Active conversation: %s\n\n", active)
		}
		printPeers(os.Stdout, "Bots", client.ListBots())
		printPeers(os.Stdout, "Friends", client.ListFriends())
		printPeers(os.Stdout, "Suggested", client.ListSuggested())
	},
}

// friendCmd groups the friend subcommands.
var friendCmd = &cobra.Command{
	Use:   "friend",
	Short: "Add or remove friends",
}

var friendAddCmd = &cobra.Command{
	Use:   "add <peer id>",
	Short: "Add a suggested peer to the friends",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, _ := initSession()
		defer closeSession(client)

		if !client.AddFriend(args[0]) {
			fmt.Printf("%s was not added (unknown, a bot or already a "+
				"friend)\n", args[0])
			return
		}
		fmt.Printf("Added %s to friends\n", args[0])
	},
}

var friendRemoveCmd = &cobra.Command{
	Use:   "remove <peer id>",
	Short: "Remove a peer from the friends",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, _ := initSession()
		defer closeSession(client)

		if !client.RemoveFriend(args[0]) {
			fmt.Printf("%s is not a friend\n", args[0])
			return
		}
		fmt.Printf("Removed %s from friends\n", args[0])
	},
}

// printPeers writes one line per peer under a heading.
func printPeers(w io.Writer, heading string, list []peers.Peer) {
	fmt.Fprintf(w, "%s (%d)\n", heading, len(list))
	for _, p := range list {
		status := "offline"
		if p.IsOnline {
			status = "online"
		}
		fmt.Fprintf(w, "  %s %-20s %-24s %s\n", p.Glyph(), p.Name, p.ID, status)
	}
}

// closeSession stops the reply thread of the session.
func closeSession(c interface{ Close() error }) {
	if err := c.Close(); err != nil {
		jww.ERROR.Printf("Failed to stop session cleanly: %+v", err)
	}
}

func init() {
	peersCmd.Flags().String(searchFlag, "",
		"Only list friends and suggested peers whose name contains this")
	bindFlagHelper(searchFlag, peersCmd)

	friendCmd.AddCommand(friendAddCmd, friendRemoveCmd)
	rootCmd.AddCommand(peersCmd, friendCmd)
}
