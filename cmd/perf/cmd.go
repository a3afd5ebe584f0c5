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

package perf

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/streamnative/slotgate/cmd/flag"
	"github.com/streamnative/slotgate/common/process"
	"github.com/streamnative/slotgate/common/security"
	"github.com/streamnative/slotgate/perf"
)

var (
	tlsOption      security.TlsOption
	plaintext      bool
	requestTimeout time.Duration

	config = perf.Config{}

	Cmd = &cobra.Command{
		Use:   "perf",
		Short: "Cluster perf client",
		Long:  `Tool for basic performance tests against a Redis Cluster`,
		RunE:  exec,
	}
)

func init() {
	flag.ServiceAddr(Cmd, &config.Endpoint)
	flag.RequestTimeout(Cmd, &requestTimeout)
	flag.Plaintext(Cmd, &plaintext)
	flag.TLS(Cmd, &tlsOption)

	Cmd.Flags().Float64VarP(&config.RequestRate, "rate", "r", 100.0, "Request rate, ops/s")
	Cmd.Flags().Float64VarP(&config.ReadPercentage, "read-write-percent", "p", 80.0, "Percentage of read requests, compared to total requests")
	Cmd.Flags().Uint32Var(&config.KeysCardinality, "keys-cardinality", 1000, "Number of distinct keys in the workload")
	Cmd.Flags().Uint32VarP(&config.ValueSize, "value-size", "s", 128, "Size of the values to write")
	Cmd.Flags().IntVar(&config.NumShards, "shards", 2, "Number of shards to spread the keys over")
	Cmd.Flags().BoolVar(&config.Verify, "verify", false, "Verify the values read back")
}

func exec(*cobra.Command, []string) error {
	opts, err := flag.ClientOptions(&tlsOption, plaintext, requestTimeout)
	if err != nil {
		return err
	}
	config.ClientOptions = opts

	process.RunProcess(runPerf)
	return nil
}

type closer struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func newCloser(ctx context.Context) *closer {
	c := &closer{}
	c.ctx, c.cancel = context.WithCancel(ctx)
	return c
}

func (c *closer) Close() error {
	c.cancel()
	return nil
}

func runPerf() (io.Closer, error) {
	closer := newCloser(context.Background())
	go perf.New(config).Run(closer.ctx)
	return closer, nil
}
