/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package main

import (
	"fmt"
	"os"

	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	output  string
	verbose bool

	// injector holds the services of the current invocation.
	injector *do.Injector
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "safetype",
	Short: "Safe type-name resolution toolkit",
	Long: `safetype resolves serialized type names against an allowlist built
from the trusted model package, without ever loading a type by name.

Commands:
  allowlist  List allowlisted types and generic definitions
  parse      Parse type names into trees
  resolve    Resolve a type name to a Go type
  encode     Write a payload for the zero value of a type
  decode     Read a payload and print its value
  repl       Interactive resolution shell`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		injector = newContainer(cfgFile, verbose, cmd.ErrOrStderr())
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (json, table, yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log resolver decisions to stderr")
}

// services returns the injector, creating a default one when no command
// hook ran.
func services() *do.Injector {
	if injector == nil {
		injector = newContainer("", false, os.Stderr)
	}
	return injector
}

func checkOutput() error {
	switch output {
	case "json", "yaml", "table":
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want json, table or yaml)", output)
	}
}
