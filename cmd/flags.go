////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cmd

// This is a comprehensive list of CLI flag name constants. Organized by
// subcommand, with root level CLI flags at the top of the list. Newly added
// flags for any existing or new subcommands should be listed and organized
// here. Pulling flags using Viper should use the constants defined here.
const (
	//////////////// Root flags ///////////////////////////////////////////////

	// Storage flags
	sessionFlag  = "session"
	passwordFlag = "password"
	configFlag   = "config"

	// Log flags
	logLevelFlag = "logLevel"
	logFlag      = "log"

	// Reply flags
	replyMinDelayFlag  = "replyMinDelay"
	replyMaxDelayFlag  = "replyMaxDelay"
	cancelOnSwitchFlag = "cancel-on-switch"

	// Misc
	profileCpuFlag = "profile-cpu"

	///////////////// Account subcommand flags ////////////////////////////////
	nameFlag            = "name"
	emailFlag           = "email"
	phoneFlag           = "phone"
	accountPasswordFlag = "accountPassword"

	///////////////// Peers subcommand flags //////////////////////////////////
	searchFlag = "search"

	///////////////// Chat subcommand flags ///////////////////////////////////
	toFlag          = "to"
	messageFlag     = "message"
	sendCountFlag   = "sendCount"
	sendDelayFlag   = "sendDelay"
	waitTimeoutFlag = "waitTimeout"
	backFlag        = "back"

	///////////////// Contacts subcommand flags ///////////////////////////////
	grantFlag  = "grant"
	inviteFlag = "invite"
)
