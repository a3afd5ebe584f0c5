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
	"context"
	"crypto/tls"
	"net"
)

// DialFunc opens a single connection to a cluster node. It has the shape of
// the Dialer callback of go-redis client options.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// NewDialer returns a DialFunc that rewrites every target address through
// remapper before connecting. TLS is enabled by default with a minimum
// version of 1.2; unless pinned with WithTLSServerName, the handshake
// presents the post-rewrite host, which for remapped nodes is the public
// endpoint.
func NewDialer(remapper Remapper, opts ...DialerOption) (DialFunc, error) {
	if remapper == nil {
		return nil, ErrInvalidRemapper
	}
	options, err := newDialerOptions(opts...)
	if err != nil {
		return nil, err
	}
	return newDialFunc(remapper, options), nil
}

func newDialFunc(remapper Remapper, options dialerOptions) DialFunc {
	netDialer := &net.Dialer{
		Timeout:   options.dialTimeout,
		KeepAlive: options.keepAlive,
	}
	if options.plaintext {
		return func(ctx context.Context, network, addr string) (net.Conn, error) {
			target, err := remapAddr(remapper, addr)
			if err != nil {
				return nil, err
			}
			return netDialer.DialContext(ctx, network, target)
		}
	}

	tlsConf := options.tlsConf
	if tlsConf == nil {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	} else {
		tlsConf = tlsConf.Clone()
	}
	if options.serverName != "" {
		tlsConf.ServerName = options.serverName
	}
	tlsDialer := &tls.Dialer{
		NetDialer: netDialer,
		Config:    tlsConf,
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		target, err := remapAddr(remapper, addr)
		if err != nil {
			return nil, err
		}
		return tlsDialer.DialContext(ctx, network, target)
	}
}

// remapAddr rewrites a dial target through the remapper, keeping the port.
func remapAddr(remapper Remapper, addr string) (string, error) {
	parsed, err := ParseNodeAddress(addr)
	if err != nil {
		return "", err
	}
	return remapper.Remap(parsed).String(), nil
}
