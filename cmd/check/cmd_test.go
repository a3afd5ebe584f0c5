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
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/streamnative/slotgate/cmd/flag"
	"github.com/streamnative/slotgate/common/security"
	"github.com/streamnative/slotgate/probe"
	"github.com/streamnative/slotgate/slotgate"
)

func runCheck(t *testing.T, args ...string) (string, error) {
	t.Helper()

	serviceAddr = flag.DefaultServiceAddr
	tlsOption = security.TlsOption{}
	plaintext = false
	requestTimeout = slotgate.DefaultRequestTimeout
	reportFormat = probe.FormatJSON
	config = probe.NewConfig()

	var buf bytes.Buffer
	Cmd.SetOut(&buf)
	Cmd.SetErr(&buf)
	Cmd.SetArgs(args)
	err := Cmd.Execute()
	return buf.String(), err
}

func TestCheckFlags(t *testing.T) {
	Cmd.RunE = func(*cobra.Command, []string) error {
		assert.Equal(t, "cache.example.net:6380", serviceAddr)
		assert.Equal(t, 3, config.NumShards)
		assert.Equal(t, "canary", config.KeyPrefix)
		assert.Equal(t, probe.FormatYAML, reportFormat)
		return nil
	}
	defer func() { Cmd.RunE = exec }()

	_, err := runCheck(t,
		"-a=cache.example.net:6380", "--shards=3", "--key-prefix=canary", "-r=yaml")
	assert.NoError(t, err)
}

func TestCheckUnknownReportFormat(t *testing.T) {
	_, err := runCheck(t, "--report=xml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown report format")
}

func TestCheckInvalidProbeConfig(t *testing.T) {
	_, err := runCheck(t, "--shards=0")
	assert.Error(t, err)
}

func TestCheckIncompleteTLSPair(t *testing.T) {
	_, err := runCheck(t, "--tls-cert-file=cert.pem")
	assert.ErrorIs(t, err, security.ErrInvalidTlsKeyPair)
}

func TestCheckUnreachableCluster(t *testing.T) {
	// Nothing listens on port 1, the probe fails and the report says so.
	out, err := runCheck(t, "-a=127.0.0.1:1", "--plaintext", "--op-timeout=200ms")
	assert.ErrorIs(t, err, probe.ErrProbeFailed)
	assert.Contains(t, out, `"healthy": false`)
	assert.Contains(t, out, `"endpoint": "127.0.0.1:1"`)
}
