////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
	"gitlab.com/elixxir/simplechat/contacts"
	"gitlab.com/elixxir/simplechat/storage"
)

// contactsTimeout bounds every call to the contacts provider.
const contactsTimeout = 10 * time.Second

// contactsCmd finds device contacts that already use the app and prepares
// invitations for the others.
var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Find friends from the device contacts and invite the others",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		accounts := storage.LoadAccounts(openStore())
		user, ok := accounts.CurrentUser()
		if !ok {
			jww.FATAL.Panicf("Nobody is logged in, run register or login first")
		}

		ctx, cancel := context.WithTimeout(context.Background(), contactsTimeout)
		defer cancel()

		provider := contacts.NewSimulatedProvider(
			user.ID, viper.GetBool(grantFlag))
		granted, err := provider.RequestAccess(ctx)
		if err != nil {
			jww.FATAL.Panicf("Failed to read contacts: %+v", err)
		} else if !granted {
			fmt.Printf("Access to contacts was not granted, pass --%s\n",
				grantFlag)
			return
		}

		list := contacts.MatchAppUsers(provider.Contacts(), accounts.Records())

		inviteID := viper.GetString(inviteFlag)
		for _, c := range list {
			status := "not on SimpleChat"
			if c.IsAppUser {
				status = "on SimpleChat"
			}
			fmt.Printf("  %-10s %-16s %-14s %s\n",
				c.ID, c.Name, c.PhoneNumber, status)

			if c.ID != inviteID {
				continue
			}
			inv, err := provider.Invite(ctx, c)
			if err != nil {
				jww.FATAL.Panicf("Failed to invite %s: %+v", c.Name, err)
			}
			fmt.Printf("\n%s\n%s\n\n", inv.Title, inv.Text)
		}
	},
}

func init() {
	contactsCmd.Flags().Bool(grantFlag, false,
		"Grant access to the device contacts")
	bindFlagHelper(grantFlag, contactsCmd)

	contactsCmd.Flags().String(inviteFlag, "",
		"Id of a contact to prepare an invitation for")
	bindFlagHelper(inviteFlag, contactsCmd)

	rootCmd.AddCommand(contactsCmd)
}
