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

package monitor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/streamnative/slotgate/cmd/flag"
	"github.com/streamnative/slotgate/monitor"
)

func TestCmd(t *testing.T) {
	name := filepath.Join(t.TempDir(), "monitor.yaml")
	content := "interval: 5s\nnumShards: 4\nkeyPrefix: canary\n"
	assert.NoError(t, os.WriteFile(name, []byte(content), 0o600))

	fromFile := monitor.NewSettings()
	fromFile.Interval = 5 * time.Second
	fromFile.NumShards = 4
	fromFile.KeyPrefix = "canary"

	for _, test := range []struct {
		args             []string
		expectedEndpoint string
		expectedMetrics  string
		expectedSettings monitor.Settings
		isErr            bool
	}{
		{[]string{}, flag.DefaultServiceAddr, "0.0.0.0:8080",
			monitor.NewSettings(), false},
		{[]string{"-a=cache.example.net:6380"}, "cache.example.net:6380", "0.0.0.0:8080",
			monitor.NewSettings(), false},
		{[]string{"-m=localhost:9090"}, flag.DefaultServiceAddr, "localhost:9090",
			monitor.NewSettings(), false},
		{[]string{"-f=" + name}, flag.DefaultServiceAddr, "0.0.0.0:8080",
			fromFile, false},
		{[]string{"-f=" + filepath.Join(t.TempDir(), "missing.yaml")}, flag.DefaultServiceAddr, "0.0.0.0:8080",
			monitor.NewSettings(), true},
	} {
		t.Run(strings.Join(test.args, "_"), func(t *testing.T) {
			conf = monitor.NewConfig()
			conf.Endpoint = flag.DefaultServiceAddr
			configFile = ""

			Cmd.SetArgs(test.args)
			Cmd.RunE = func(*cobra.Command, []string) error {
				assert.Equal(t, test.expectedEndpoint, conf.Endpoint)
				assert.Equal(t, test.expectedMetrics, conf.MetricsServiceAddr)

				v := viper.New()
				setConfigPath(v)

				settings, err := loadSettings(v)
				if test.isErr {
					assert.Error(t, err)
					return nil
				}
				assert.NoError(t, err)
				assert.Equal(t, test.expectedSettings, settings)
				return nil
			}
			defer func() { Cmd.RunE = exec }()

			assert.NoError(t, Cmd.Execute())
		})
	}
}
