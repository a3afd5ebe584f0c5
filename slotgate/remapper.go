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

// Package slotgate connects cluster-aware Redis clients to managed caches
// that advertise private node addresses behind a single public TLS endpoint.
//
// Cluster discovery hands clients node addresses as the cluster itself knows
// them. For managed services those are private IPs, unreachable from outside
// the hosting network. A Remapper rewrites such hosts to the public endpoint
// while preserving each node's port, so a standard cluster client keeps
// routing keys by slot while every connection lands on the public listener.
package slotgate

import (
	"log/slog"

	"github.com/streamnative/slotgate/slotgate/internal/metrics"
)

// Remapper rewrites node addresses discovered from the cluster before the
// client dials them. Implementations must be safe for concurrent use.
type Remapper interface {
	// Remap returns the address to dial in place of addr. When no rewrite
	// applies, it returns addr unchanged.
	Remap(addr NodeAddress) NodeAddress
}

// RemapperFunc adapts a function to the Remapper interface.
type RemapperFunc func(addr NodeAddress) NodeAddress

func (f RemapperFunc) Remap(addr NodeAddress) NodeAddress {
	return f(addr)
}

// IdentityRemapper returns a Remapper that leaves every address unchanged.
func IdentityRemapper() Remapper {
	return RemapperFunc(func(addr NodeAddress) NodeAddress {
		return addr
	})
}

// endpointRemapper substitutes the public endpoint host for private node
// hosts. Immutable after construction.
type endpointRemapper struct {
	publicHost string
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewEndpointRemapper returns a Remapper that substitutes publicHost for the
// host of any address whose host is a private IPv4 address, keeping the
// node's port. Every other address passes through untouched.
//
// publicHost is typically the DNS name of the managed cache endpoint and
// must be non-empty.
func NewEndpointRemapper(publicHost string, opts ...RemapperOption) (Remapper, error) {
	if publicHost == "" {
		return nil, ErrInvalidPublicEndpoint
	}
	options, err := newRemapperOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &endpointRemapper{
		publicHost: publicHost,
		logger: options.logger.With(
			slog.String("component", "endpoint-remapper"),
		),
		metrics: metrics.NewMetrics(options.meterProvider),
	}, nil
}

func (r *endpointRemapper) Remap(addr NodeAddress) NodeAddress {
	if !IsPrivateHost(addr.Host) {
		r.metrics.Passthrough()
		return addr
	}
	remapped := NodeAddress{Host: r.publicHost, Port: addr.Port}
	r.logger.Debug(
		"Remapped private node address",
		slog.String("node", addr.String()),
		slog.String("target", remapped.String()),
	)
	r.metrics.Remapped()
	return remapped
}
