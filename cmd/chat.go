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
	"time"

	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
	"gitlab.com/elixxir/simplechat/chat"
	"gitlab.com/elixxir/simplechat/conversation"
	"go.uber.org/ratelimit"
)

// chatCmd opens a conversation, sends messages to it and waits for the
// replies.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Send messages to a peer and wait for the replies",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		client, _ := initSession()
		defer closeSession(client)

		if viper.GetBool(backFlag) {
			client.ClearSelection()
			fmt.Println("Left the active conversation")
			return
		}

		if to := viper.GetString(toFlag); to != "" {
			if err := client.SelectPeerByID(to); err != nil {
				jww.FATAL.Panicf("Failed to open conversation: %+v", err)
			}
		}

		peer, ok := client.GetActivePeer()
		if !ok {
			jww.FATAL.Panicf("No conversation is open, pass --%s", toFlag)
		}

		replies := make(chan conversation.Message, 100)
		client.OnReply(forwardReplies(peer.ID, replies))

		msg := viper.GetString(messageFlag)
		sendCount := int(viper.GetUint(sendCountFlag))
		sent := 0
		if msg != "" {
			sent = sendMessages(client, msg, sendCount,
				time.Duration(viper.GetUint(sendDelayFlag))*time.Millisecond)
		}

		received := waitForReplies(replies, sent, waitTimeout(waitTimeoutFlag))
		jww.INFO.Printf("Received %d/%d replies from %s", received, sent, peer.ID)

		fmt.Printf("Conversation with %s\n", peer)
		printView(os.Stdout, client.User().ID, client.ActiveConversation())
	},
}

// sendMessages sends the message count times, at most one every delay.
// Returns the number of messages that were accepted.
func sendMessages(client *chat.Client, msg string, count int,
	delay time.Duration) int {
	if delay <= 0 {
		delay = time.Millisecond
	}
	rl := ratelimit.New(1, ratelimit.Per(delay), ratelimit.WithoutSlack)

	sent := 0
	for i := 0; i < count; i++ {
		rl.Take()
		if err := client.SendMessage(msg); err != nil {
			jww.ERROR.Printf("Failed to send message %d/%d: %+v",
				i+1, count, err)
			continue
		}
		sent++
	}
	return sent
}

// forwardReplies returns a reply callback that passes the peer's replies to
// the channel. Replies that do not fit are dropped so delivery never blocks
// once nothing is reading.
func forwardReplies(peerID string,
	replies chan<- conversation.Message) func(conversation.Message) {
	return func(m conversation.Message) {
		if m.SenderID != peerID {
			return
		}
		select {
		case replies <- m:
		default:
			jww.DEBUG.Printf("Dropped reply %s from %s, nobody is waiting",
				m.ID, peerID)
		}
	}
}

// waitForReplies blocks until n replies have arrived or the timeout elapses
// and returns how many arrived.
func waitForReplies(replies <-chan conversation.Message, n int,
	timeout time.Duration) int {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	received := 0
	for received < n {
		select {
		case m := <-replies:
			received++
			jww.DEBUG.Printf("Reply %d/%d: %s", received, n, m.Content)
		case <-timer.C:
			jww.WARN.Printf("Timed out after %s waiting for replies, "+
				"received %d/%d", timeout, received, n)
			return received
		}
	}
	return received
}

// printView writes the conversation, marking the user's own messages.
func printView(w io.Writer, userID string, view []conversation.Message) {
	for _, m := range view {
		who := m.SenderID
		if m.SenderID == userID {
			who = "me"
		}
		fmt.Fprintf(w, "[%s] %s: %s\n",
			m.Timestamp.Format("15:04:05"), who, m.Content)
	}
}

func init() {
	chatCmd.Flags().StringP(toFlag, "t", "",
		"Id of the peer to open a conversation with; the last open "+
			"conversation is used if empty")
	bindFlagHelper(toFlag, chatCmd)

	chatCmd.Flags().StringP(messageFlag, "m", "", "Message to send")
	bindFlagHelper(messageFlag, chatCmd)

	chatCmd.Flags().UintP(sendCountFlag, "", 1,
		"The number of times to send the message")
	bindFlagHelper(sendCountFlag, chatCmd)

	chatCmd.Flags().UintP(sendDelayFlag, "", 500,
		"The delay between sending the messages in ms")
	bindFlagHelper(sendDelayFlag, chatCmd)

	chatCmd.Flags().UintP(waitTimeoutFlag, "", 15,
		"The number of seconds to wait for replies to arrive")
	bindFlagHelper(waitTimeoutFlag, chatCmd)

	chatCmd.Flags().Bool(backFlag, false,
		"Leave the active conversation instead of sending")
	bindFlagHelper(backFlag, chatCmd)

	rootCmd.AddCommand(chatCmd)
}
