////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
	"gitlab.com/elixxir/simplechat/storage"
)

// registerCmd creates a new account on the device and signs it in.
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account on this device and log in as it",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		accounts := storage.LoadAccounts(openStore())

		user, err := accounts.Register(viper.GetString(nameFlag),
			viper.GetString(emailFlag), viper.GetString(phoneFlag),
			viper.GetString(accountPasswordFlag))
		if err != nil {
			jww.FATAL.Panicf("Failed to register: %+v", err)
		}

		jww.INFO.Printf("Registered %s", user.Email)

		// NOTE: scripts read the id from this line
		fmt.Printf("%s\n", user.ID)
	},
}

// loginCmd signs an existing account in.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to an account on this device",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		accounts := storage.LoadAccounts(openStore())

		user, err := accounts.Login(viper.GetString(emailFlag),
			viper.GetString(accountPasswordFlag))
		if err != nil {
			jww.FATAL.Panicf("Failed to log in: %+v", err)
		}

		fmt.Printf("Logged in as %s (%s)\n", user.DisplayName, user.ID)
	},
}

// logoutCmd signs the current user out and forgets their open conversation.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of the current account",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		client, accounts := initSession()

		if err := client.Logout(); err != nil {
			jww.ERROR.Printf("Failed to stop session cleanly: %+v", err)
		}
		accounts.Logout()

		fmt.Printf("Logged out %s\n", client.User().Email)
	},
}

// whoamiCmd prints the current user.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the account that is logged in",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		accounts := storage.LoadAccounts(openStore())
		user, ok := accounts.CurrentUser()
		if !ok {
			fmt.Println("Nobody is logged in")
			return
		}
		fmt.Printf("%s <%s> %s\n", user.DisplayName, user.Email, user.ID)
	},
}

func init() {
	registerCmd.Flags().String(nameFlag, "", "Display name of the account")
	bindFlagHelper(nameFlag, registerCmd)
	registerCmd.Flags().String(phoneFlag, "",
		"Phone number of the account (optional)")
	bindFlagHelper(phoneFlag, registerCmd)

	// Flags shared by several subcommands are bound when one of them runs
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringP(emailFlag, "e", "", "Email address of the account")
		c.Flags().String(accountPasswordFlag, "",
			"Password of the account")
		c.PreRun = func(cmd *cobra.Command, args []string) {
			bindFlagHelper(emailFlag, cmd)
			bindFlagHelper(accountPasswordFlag, cmd)
		}
	}

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)
}
