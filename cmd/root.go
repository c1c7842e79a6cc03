////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package cmd initializes the CLI and config parsers as well as the logger.
package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
	"gitlab.com/elixxir/crypto/fastRNG"
	"gitlab.com/elixxir/simplechat/chat"
	"gitlab.com/elixxir/simplechat/storage"
	"gitlab.com/xx_network/crypto/csprng"
)

// profiler is the running CPU profile, if enabled.
var profiler interface{ Stop() }

// Execute adds all child commands to the root command and sets flags
// appropriately.  This is called by main.main(). It only needs to
// happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "simplechat",
	Short: "Runs a local SimpleChat session from the terminal",
	Args:  cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLog(viper.GetUint(logLevelFlag), viper.GetString(logFlag))

		profileOut := viper.GetString(profileCpuFlag)
		if profileOut != "" {
			profiler = profile.Start(profile.CPUProfile,
				profile.ProfilePath(profileOut),
				profile.NoShutdownHook, profile.Quiet)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profiler != nil {
			profiler.Stop()
		}
	},
}

// openStore opens the device store in the session directory.
func openStore() *storage.Store {
	store, err := storage.NewFilestore(
		viper.GetString(sessionFlag), viper.GetString(passwordFlag))
	if err != nil {
		jww.FATAL.Panicf("Failed to open session storage: %+v", err)
	}
	return store
}

// sessionParams builds the chat parameters from the defaults overridden by
// flags and the config file.
func sessionParams() chat.Params {
	p := chat.GetDefaultParams()
	if d := viper.GetDuration(replyMinDelayFlag); d > 0 {
		p.Reply.MinDelay = d
	}
	if d := viper.GetDuration(replyMaxDelayFlag); d > 0 {
		p.Reply.MaxDelay = d
	}
	p.CancelOnSwitch = viper.GetBool(cancelOnSwitchFlag)
	return p
}

// initSession logs the current user of the device in. Panics if nobody is
// signed in.
func initSession() (*chat.Client, *storage.Accounts) {
	store := openStore()
	accounts := storage.LoadAccounts(store)

	user, ok := accounts.CurrentUser()
	if !ok {
		jww.FATAL.Panicf("Nobody is logged in, run register or login first")
	}

	rng := fastRNG.NewStreamGenerator(12, 1024, csprng.NewSystemRNG)
	client, err := chat.Login(store, user, accounts, sessionParams(), rng)
	if err != nil {
		jww.FATAL.Panicf("Failed to start session: %+v", err)
	}

	return client, accounts
}

func initLog(threshold uint, logPath string) {
	if logPath != "-" && logPath != "" {
		// Disable stdout output
		jww.SetStdoutOutput(io.Discard)
		// Use log file
		logOutput, err := os.OpenFile(logPath,
			os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			panic(err.Error())
		}
		jww.SetLogOutput(logOutput)
	}

	if threshold > 1 {
		jww.INFO.Printf("log level set to: TRACE")
		jww.SetStdoutThreshold(jww.LevelTrace)
		jww.SetLogThreshold(jww.LevelTrace)
		jww.SetFlags(log.LstdFlags | log.Lmicroseconds)
	} else if threshold == 1 {
		jww.INFO.Printf("log level set to: DEBUG")
		jww.SetStdoutThreshold(jww.LevelDebug)
		jww.SetLogThreshold(jww.LevelDebug)
		jww.SetFlags(log.LstdFlags | log.Lmicroseconds)
	} else {
		jww.INFO.Printf("log level set to: INFO")
		jww.SetStdoutThreshold(jww.LevelInfo)
		jww.SetLogThreshold(jww.LevelInfo)
	}
}

// init is the initialization function for Cobra which defines commands
// and flags.
func init() {
	// NOTE: The point of init() is to be declarative.
	// There is one init in each sub command. Do not put variable declarations
	// here, and ensure all the Flags are of the *P variety, unless there's a
	// very good reason not to have them as local params to sub command."
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP(configFlag, "c", "",
		"Path to a config file (yaml, json or toml) with flag values")
	bindPersistentFlagHelper(configFlag, rootCmd)

	rootCmd.PersistentFlags().UintP(logLevelFlag, "v", 0,
		"Verbose mode for debugging")
	bindPersistentFlagHelper(logLevelFlag, rootCmd)

	rootCmd.PersistentFlags().StringP(logFlag, "l", "-",
		"Path to the log output path (- is stdout)")
	bindPersistentFlagHelper(logFlag, rootCmd)

	rootCmd.PersistentFlags().StringP(sessionFlag, "s", "session",
		"Sets the storage directory for the device session data")
	bindPersistentFlagHelper(sessionFlag, rootCmd)

	rootCmd.PersistentFlags().StringP(passwordFlag, "p", "",
		"Password to the session storage")
	bindPersistentFlagHelper(passwordFlag, rootCmd)

	defaults := chat.GetDefaultParams()
	rootCmd.PersistentFlags().Duration(replyMinDelayFlag,
		defaults.Reply.MinDelay, "Shortest delay before a reply arrives")
	bindPersistentFlagHelper(replyMinDelayFlag, rootCmd)

	rootCmd.PersistentFlags().Duration(replyMaxDelayFlag,
		defaults.Reply.MaxDelay, "Upper bound of the delay before a reply "+
			"arrives (exclusive)")
	bindPersistentFlagHelper(replyMaxDelayFlag, rootCmd)

	rootCmd.PersistentFlags().Bool(cancelOnSwitchFlag,
		defaults.CancelOnSwitch, "Drop pending replies of a conversation "+
			"when switching away from it")
	bindPersistentFlagHelper(cancelOnSwitchFlag, rootCmd)

	rootCmd.PersistentFlags().String(profileCpuFlag, "",
		"Enable cpu profiling, writing cpu.pprof to this directory")
	bindPersistentFlagHelper(profileCpuFlag, rootCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetEnvPrefix("simplechat")
	viper.AutomaticEnv()

	configPath := viper.GetString(configFlag)
	if configPath == "" {
		return
	}

	viper.SetConfigFile(configPath)
	if err := viper.ReadInConfig(); err != nil {
		jww.FATAL.Panicf("Failed to read config file %s: %+v",
			configPath, err)
	}
	jww.INFO.Printf("Using config file %s", viper.ConfigFileUsed())
}

// bindFlagHelper binds the key to a pflag.Flag used by Cobra and prints an
// error if one occurs.
func bindFlagHelper(key string, command *cobra.Command) {
	err := viper.BindPFlag(key, command.Flags().Lookup(key))
	if err != nil {
		jww.ERROR.Printf("viper.BindPFlag failed for %q: %+v", key, err)
	}
}

// bindPersistentFlagHelper binds the key to a persistent pflag.Flag used by
// Cobra and prints an error if one occurs.
func bindPersistentFlagHelper(key string, command *cobra.Command) {
	err := viper.BindPFlag(key, command.PersistentFlags().Lookup(key))
	if err != nil {
		jww.ERROR.Printf("viper.BindPFlag failed for %q: %+v", key, err)
	}
}

// waitTimeout converts a flag value in seconds to a duration.
func waitTimeout(key string) time.Duration {
	return time.Duration(viper.GetUint(key)) * time.Second
}
