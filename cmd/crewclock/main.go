// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"

	"github.com/go-arcade/crewclock/internal/crewclock/bootstrap"
	"github.com/go-arcade/crewclock/pkg/version"
	"github.com/spf13/cobra"
)

var (
	configFile string
	apiAddr    string
)

var rootCmd = &cobra.Command{
	Use:           "crewclock",
	Short:         "crewclock tracks shifts and project time for field crews",
	Long:          "crewclock runs a local daemon that keeps shift and project time in sync with the workforce backend, and a command line client for it",
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		err := cmd.Help()
		if err != nil {
			return
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the crewclock daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Bootstrap initialize application
		app, cleanup, _, err := bootstrap.Bootstrap(configFile, initApp)
		if err != nil {
			return err
		}
		// Start application and wait for exit signal
		bootstrap.Run(app, cleanup)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "conf.d/crewclock.toml", "configuration file path, e.g. --conf ./conf.d/crewclock.toml")
	rootCmd.PersistentFlags().StringVar(&apiAddr, "api", "", "local API address (defaults to the configured [http] host:port)")

	rootCmd.AddCommand(
		serveCmd,
		version.VersionCmd,
		orgCmd(),
		shiftCmd(),
		timerCmd(),
		taskCmd(),
		summaryCmd(),
		availabilityCmd(),
		notificationsCmd(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
