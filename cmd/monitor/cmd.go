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
	"io"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/streamnative/slotgate/cmd/flag"
	"github.com/streamnative/slotgate/common/process"
	"github.com/streamnative/slotgate/common/security"
	"github.com/streamnative/slotgate/monitor"
	"github.com/streamnative/slotgate/slotgate"
)

var (
	conf       = monitor.NewConfig()
	configFile string

	tlsOption      security.TlsOption
	plaintext      bool
	requestTimeout = slotgate.DefaultRequestTimeout

	Cmd = &cobra.Command{
		Use:   "monitor",
		Short: "Continuously probe a cluster",
		Long: `Probe the cluster on a fixed interval and expose the outcomes ` +
			`as Prometheus metrics. Probe settings are reloaded when the config file changes.`,
		RunE: exec,
	}
)

func init() {
	flag.ServiceAddr(Cmd, &conf.Endpoint)
	flag.MetricsAddr(Cmd, &conf.MetricsServiceAddr)
	flag.RequestTimeout(Cmd, &requestTimeout)
	flag.Plaintext(Cmd, &plaintext)
	flag.TLS(Cmd, &tlsOption)

	Cmd.Flags().StringVarP(&configFile, "conf", "f", "", "Probe settings config file")
}

func setConfigPath(v *viper.Viper) {
	v.SetConfigType("yaml")

	if configFile == "" {
		v.SetConfigName("monitor")
		v.AddConfigPath("/slotgate/conf")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(configFile)
	}

	v.WatchConfig()
}

func loadSettings(v *viper.Viper) (monitor.Settings, error) {
	settings := monitor.NewSettings()

	if err := v.ReadInConfig(); err != nil {
		// The config file is optional when no explicit path was given.
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			return settings, nil
		}
		return settings, err
	}

	if err := v.Unmarshal(&settings, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(), // default hook
		mapstructure.StringToSliceHookFunc(","),     // default hook
	))); err != nil {
		return settings, errors.Wrap(err, "failed to load probe settings")
	}

	return settings, nil
}

func exec(*cobra.Command, []string) error {
	v := viper.New()

	conf.SettingsChangeNotifications = make(chan any)
	conf.SettingsProvider = func() (monitor.Settings, error) {
		return loadSettings(v)
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		conf.SettingsChangeNotifications <- nil
	})

	setConfigPath(v)

	if _, err := loadSettings(v); err != nil {
		return err
	}

	process.RunProcess(func() (io.Closer, error) {
		opts, err := flag.ClientOptions(&tlsOption, plaintext, requestTimeout)
		if err != nil {
			return nil, err
		}
		conf.ClientOptions = opts

		return monitor.New(conf)
	})
	return nil
}
