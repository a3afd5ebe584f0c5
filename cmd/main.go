// Copyright 2025 StreamNative, Inc.
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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/streamnative/slotgate/cmd/check"
	"github.com/streamnative/slotgate/cmd/monitor"
	"github.com/streamnative/slotgate/cmd/perf"
	"github.com/streamnative/slotgate/cmd/slots"
	"github.com/streamnative/slotgate/common/logging"
	"github.com/streamnative/slotgate/common/process"
)

var (
	logLevelStr string

	rootCmd = &cobra.Command{
		Use:   "slotgate",
		Short: "Redis Cluster tooling",
		Long:  `Tooling for Redis Cluster deployments behind private endpoints`,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			logLevel, err := logging.ParseLogLevel(logLevelStr)
			if err != nil {
				return err
			}
			logging.LogLevel = logLevel
			logging.ConfigureLogger()
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevelStr, "log-level", "l", logging.DefaultLogLevel.String(), "Set logging level [debug|info|warn|error]")
	rootCmd.PersistentFlags().BoolVarP(&logging.LogJSON, "log-json", "j", false, "Print logs in JSON format")
	rootCmd.PersistentFlags().BoolVar(&process.PprofEnable, "profile", false, "Enable pprof profiler")
	rootCmd.PersistentFlags().StringVar(&process.PprofBindAddress, "profile-bind-address", "127.0.0.1:6060", "Bind address for pprof")

	rootCmd.AddCommand(check.Cmd)
	rootCmd.AddCommand(monitor.Cmd)
	rootCmd.AddCommand(perf.Cmd)
	rootCmd.AddCommand(slots.Cmd)
}

func main() {
	process.DoWithLabels(
		context.Background(),
		map[string]string{
			"component": "slotgate-main",
		},
		func() {
			if _, err := maxprocs.Set(); err != nil {
				_, _ = fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			if err := rootCmd.Execute(); err != nil {
				_, _ = fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		},
	)
}
