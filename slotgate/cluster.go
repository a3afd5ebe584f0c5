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

package slotgate

import (
	"github.com/redis/go-redis/v9"
)

// NewClusterClient opens a go-redis cluster client against a managed cache
// endpoint given as "host:port". Node addresses discovered from the cluster
// are remapped to the endpoint host whenever they are private, and every
// TLS handshake presents the endpoint host unless a server name was set
// explicitly, so certificate verification succeeds no matter which node the
// client is routed to.
//
// Redirects, pooling and command routing stay entirely with go-redis.
func NewClusterClient(publicAddr string, opts ...ClientOption) (*redis.ClusterClient, error) {
	endpoint, err := ParseNodeAddress(publicAddr)
	if err != nil {
		return nil, err
	}
	options, err := newClientOptions(opts...)
	if err != nil {
		return nil, err
	}

	remapper, err := NewEndpointRemapper(endpoint.Host,
		WithLogger(options.logger),
		WithMeterProvider(options.meterProvider),
	)
	if err != nil {
		return nil, err
	}

	dialerOpts := options.dialerOptions
	if dialerOpts.serverName == "" && (dialerOpts.tlsConf == nil || dialerOpts.tlsConf.ServerName == "") {
		dialerOpts.serverName = endpoint.Host
	}

	return redis.NewClusterClient(&redis.ClusterOptions{
		Addrs:        []string{endpoint.String()},
		ClientName:   options.identity,
		Username:     options.username,
		Password:     options.password,
		Dialer:       newDialFunc(remapper, dialerOpts),
		ReadTimeout:  options.requestTimeout,
		WriteTimeout: options.requestTimeout,
	}), nil
}
