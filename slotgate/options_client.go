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
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/multierr"
)

const DefaultRequestTimeout = 30 * time.Second

// clientOptions contains the options for a cluster client.
type clientOptions struct {
	remapperOptions
	dialerOptions
	identity       string
	username       string
	password       string
	requestTimeout time.Duration
}

func defaultIdentity() string {
	return "slotgate-" + uuid.NewString()
}

func newClientOptions(opts ...ClientOption) (clientOptions, error) {
	options := clientOptions{
		remapperOptions: remapperOptions{
			logger:        slog.Default(),
			meterProvider: noop.NewMeterProvider(),
		},
		dialerOptions: dialerOptions{
			dialTimeout: DefaultDialTimeout,
			keepAlive:   DefaultKeepAlive,
		},
		identity:       defaultIdentity(),
		requestTimeout: DefaultRequestTimeout,
	}
	var errs error
	var err error
	for _, o := range opts {
		options, err = o.applyClient(options)
		if err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return options, errs
}

type clientOptionFunc func(clientOptions) (clientOptions, error)

func (f clientOptionFunc) applyClient(opts clientOptions) (clientOptions, error) {
	return f(opts)
}

// WithIdentity sets the client name presented to the cluster, visible in
// CLIENT LIST. The default is "slotgate-" followed by a random UUID.
func WithIdentity(identity string) ClientOption {
	return clientOptionFunc(func(options clientOptions) (clientOptions, error) {
		if identity == "" {
			return options, ErrInvalidOptionIdentity
		}
		options.identity = identity
		return options, nil
	})
}

// WithCredentials authenticates with the given username and password. An
// empty username selects the cluster's default user.
func WithCredentials(username, password string) ClientOption {
	return clientOptionFunc(func(options clientOptions) (clientOptions, error) {
		options.username = username
		options.password = password
		return options, nil
	})
}

// WithRequestTimeout bounds how long an individual command may wait for its
// response.
func WithRequestTimeout(requestTimeout time.Duration) ClientOption {
	return clientOptionFunc(func(options clientOptions) (clientOptions, error) {
		if requestTimeout <= 0 {
			return options, ErrInvalidOptionRequestTimeout
		}
		options.requestTimeout = requestTimeout
		return options, nil
	})
}
