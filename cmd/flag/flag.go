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

// Package flag holds the flag sections shared by the commands that dial a
// cluster.
package flag

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/streamnative/slotgate/common/security"
	"github.com/streamnative/slotgate/slotgate"
)

// Credentials are read from the environment only, so they never end up in
// shell history or config files.
const (
	EnvUsername = "REDIS_USERNAME"
	EnvPassword = "REDIS_PASSWORD"
)

const DefaultServiceAddr = "localhost:6380"

func ServiceAddr(cmd *cobra.Command, conf *string) {
	cmd.Flags().StringVarP(conf, "service-addr", "a", DefaultServiceAddr,
		"Public address of the Redis Cluster endpoint")
}

func MetricsAddr(cmd *cobra.Command, conf *string) {
	cmd.Flags().StringVarP(conf, "metrics-addr", "m", *conf,
		"Bind address for the Prometheus metrics endpoint")
}

func RequestTimeout(cmd *cobra.Command, conf *time.Duration) {
	cmd.Flags().DurationVar(conf, "request-timeout", slotgate.DefaultRequestTimeout,
		"Request timeout")
}

func Plaintext(cmd *cobra.Command, conf *bool) {
	cmd.Flags().BoolVar(conf, "plaintext", false,
		"Connect without TLS")
}

// client TLS section
func TLS(cmd *cobra.Command, opt *security.TlsOption) {
	cmd.Flags().StringVar(&opt.CertFile, "tls-cert-file", "", "Tls certificate file")
	cmd.Flags().StringVar(&opt.KeyFile, "tls-key-file", "", "Tls key file")
	cmd.Flags().Uint16Var(&opt.MinVersion, "tls-min-version", 0, "Tls minimum version")
	cmd.Flags().Uint16Var(&opt.MaxVersion, "tls-max-version", 0, "Tls maximum version")
	cmd.Flags().StringVar(&opt.TrustedCaFile, "tls-trusted-ca-file", "", "Tls trusted ca file")
	cmd.Flags().BoolVar(&opt.InsecureSkipVerify, "tls-insecure-skip-verify", false, "Tls insecure skip verify")
	cmd.Flags().StringVar(&opt.ServerName, "tls-server-name", "", "Tls server name")
}

// EnvCredentials returns the cluster credentials from the environment.
func EnvCredentials() (username, password string) {
	return os.Getenv(EnvUsername), os.Getenv(EnvPassword)
}

// ClientOptions assembles the client options every dialing command shares:
// environment credentials, the request timeout and the TLS section.
func ClientOptions(tlsOption *security.TlsOption, plaintext bool, requestTimeout time.Duration) ([]slotgate.ClientOption, error) {
	opts := []slotgate.ClientOption{
		slotgate.WithRequestTimeout(requestTimeout),
	}

	if username, password := EnvCredentials(); username != "" || password != "" {
		opts = append(opts, slotgate.WithCredentials(username, password))
	}

	if plaintext {
		return append(opts, slotgate.WithoutTLS()), nil
	}

	if tlsOption.IsConfigured() {
		conf, err := tlsOption.MakeClientTlsConf()
		if err != nil {
			return nil, err
		}
		opts = append(opts, slotgate.WithTLS(conf))
	}

	return opts, nil
}
