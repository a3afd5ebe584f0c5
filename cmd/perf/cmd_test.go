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
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/streamnative/slotgate/cmd/flag"
	"github.com/streamnative/slotgate/common/security"
	"github.com/streamnative/slotgate/perf"
	"github.com/streamnative/slotgate/slotgate"
)

func TestCmd(t *testing.T) {
	for _, test := range []struct {
		name string
		args []string

		expected perf.Config
	}{
		{"defaults", []string{}, perf.Config{
			Endpoint:        flag.DefaultServiceAddr,
			RequestRate:     100.0,
			ReadPercentage:  80.0,
			KeysCardinality: 1000,
			ValueSize:       128,
			NumShards:       2,
		}},
		{"rate", []string{"-r", "1000"}, perf.Config{
			Endpoint:        flag.DefaultServiceAddr,
			RequestRate:     1000.0,
			ReadPercentage:  80.0,
			KeysCardinality: 1000,
			ValueSize:       128,
			NumShards:       2,
		}},
		{"workload", []string{"-p", "50", "--keys-cardinality", "10", "-s", "64", "--shards", "4", "--verify"}, perf.Config{
			Endpoint:        flag.DefaultServiceAddr,
			RequestRate:     100.0,
			ReadPercentage:  50.0,
			KeysCardinality: 10,
			ValueSize:       64,
			NumShards:       4,
			Verify:          true,
		}},
		{"endpoint", []string{"-a", "redis.example.com:6380"}, perf.Config{
			Endpoint:        "redis.example.com:6380",
			RequestRate:     100.0,
			ReadPercentage:  80.0,
			KeysCardinality: 1000,
			ValueSize:       128,
			NumShards:       2,
		}},
	} {
		t.Run(test.name, func(t *testing.T) {
			config = perf.Config{Endpoint: flag.DefaultServiceAddr, RequestRate: 100.0,
				ReadPercentage: 80.0, KeysCardinality: 1000, ValueSize: 128, NumShards: 2}
			tlsOption = security.TlsOption{}
			plaintext = false
			requestTimeout = slotgate.DefaultRequestTimeout

			Cmd.RunE = func(*cobra.Command, []string) error {
				assert.Equal(t, test.expected, config)
				return nil
			}
			defer func() {
				Cmd.RunE = exec
			}()

			Cmd.SetArgs(test.args)
			assert.NoError(t, Cmd.Execute())
		})
	}
}
