// Copyright 2025 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cli holds the root command and the helpers its subcommands share.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes the environment variables that supply flag defaults.
const EnvPrefix = "FORESTCONN_"

// RootCmd is the forestconn command; subcommands register themselves on it.
var RootCmd = &cobra.Command{
	Use:   "forestconn",
	Short: "Clean forest cover and measure forest connectivity",
	Long: `Clean forest cover and measure forest connectivity.

Flags not given on the command line fall back to FORESTCONN_<FLAG>
environment variables, e.g. FORESTCONN_GRID_RES for --grid-res. A .env file
in the working directory is loaded first.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return BindEnv(cmd.Flags())
	},
}

func init() {
	RootCmd.PersistentFlags().BoolP("progress", "p", false, "show a progress bar while reading inputs")
}

// EnvName returns the environment variable backing a flag.
func EnvName(flag string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// BindEnv sets every flag left unset on the command line from its
// environment variable, when there is one.
func BindEnv(flags *pflag.FlagSet) error {
	var err error

	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed {
			return
		}

		if v, ok := os.LookupEnv(EnvName(f.Name)); ok {
			if e := flags.Set(f.Name, v); e != nil {
				err = fmt.Errorf("%s: %w", EnvName(f.Name), e)
			}
		}
	})

	return err
}
