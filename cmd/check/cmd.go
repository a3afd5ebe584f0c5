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

package check

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/streamnative/slotgate/cmd/flag"
	"github.com/streamnative/slotgate/common/security"
	"github.com/streamnative/slotgate/probe"
	"github.com/streamnative/slotgate/slotgate"
)

var (
	serviceAddr    string
	tlsOption      security.TlsOption
	plaintext      bool
	requestTimeout = slotgate.DefaultRequestTimeout
	reportFormat   string

	config = probe.NewConfig()

	Cmd = &cobra.Command{
		Use:   "check",
		Short: "Run a one-shot cluster health probe",
		Long: `Probe the cluster once and print a report. ` +
			`The exit code is non-zero when the cluster is unhealthy.`,
		RunE: exec,
		// A failed probe is not a usage error.
		SilenceUsage: true,
	}
)

func init() {
	flag.ServiceAddr(Cmd, &serviceAddr)
	flag.RequestTimeout(Cmd, &requestTimeout)
	flag.Plaintext(Cmd, &plaintext)
	flag.TLS(Cmd, &tlsOption)

	Cmd.Flags().IntVarP(&config.NumShards, "shards", "s", config.NumShards, "Number of shards the cluster is expected to have")
	Cmd.Flags().IntVar(&config.TagsPerShard, "per-shard", config.TagsPerShard, "Number of scratch keys to write per shard")
	Cmd.Flags().StringVar(&config.KeyPrefix, "key-prefix", config.KeyPrefix, "Prefix for the probe scratch keys")
	Cmd.Flags().DurationVar(&config.KeyTTL, "key-ttl", config.KeyTTL, "TTL of the probe scratch keys")
	Cmd.Flags().DurationVar(&config.OpTimeout, "op-timeout", config.OpTimeout, "Timeout of each probe command")
	Cmd.Flags().StringVarP(&reportFormat, "report", "r", probe.FormatJSON, "Report format: json or yaml")
}

func exec(cmd *cobra.Command, _ []string) error {
	if reportFormat != probe.FormatJSON && reportFormat != probe.FormatYAML {
		return errors.Errorf("unknown report format %q", reportFormat)
	}

	config.Endpoint = serviceAddr
	if err := config.Validate(); err != nil {
		return err
	}

	opts, err := flag.ClientOptions(&tlsOption, plaintext, requestTimeout)
	if err != nil {
		return err
	}

	client, err := slotgate.NewClusterClient(serviceAddr, opts...)
	if err != nil {
		return err
	}

	report, probeErr := probe.Run(cmd.Context(), client, config)

	var writeErr error
	if report != nil {
		writeErr = report.Write(cmd.OutOrStdout(), reportFormat)
	}

	return multierr.Combine(probeErr, writeErr, client.Close())
}
