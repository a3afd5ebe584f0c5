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

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/multierr"
)

var (
	ErrInvalidPublicEndpoint       = errors.New("PublicEndpoint must be non-empty")
	ErrInvalidRemapper             = errors.New("Remapper cannot be nil")
	ErrInvalidOptionLogger         = errors.New("Logger cannot be nil")
	ErrInvalidOptionDialTimeout    = errors.New("DialTimeout must be greater than zero")
	ErrInvalidOptionKeepAlive      = errors.New("KeepAlive must be greater than or equal to zero")
	ErrInvalidOptionTLS            = errors.New("Tls cannot be empty")
	ErrInvalidOptionServerName     = errors.New("ServerName must be non-empty")
	ErrInvalidOptionIdentity       = errors.New("Identity must be non-empty")
	ErrInvalidOptionRequestTimeout = errors.New("RequestTimeout must be greater than zero")
)

// RemapperOption is an option for NewEndpointRemapper.
type RemapperOption interface {
	applyRemapper(opts remapperOptions) (remapperOptions, error)
}

// DialerOption is an option for NewDialer.
type DialerOption interface {
	applyDialer(opts dialerOptions) (dialerOptions, error)
}

// ClientOption is an option for NewClusterClient.
type ClientOption interface {
	applyClient(opts clientOptions) (clientOptions, error)
}

// ObservabilityOption is accepted by every constructor that logs or
// publishes metrics.
type ObservabilityOption interface {
	RemapperOption
	ClientOption
}

// remapperOptions contains the options for an endpoint remapper.
type remapperOptions struct {
	logger        *slog.Logger
	meterProvider metric.MeterProvider
}

func newRemapperOptions(opts ...RemapperOption) (remapperOptions, error) {
	options := remapperOptions{
		logger:        slog.Default(),
		meterProvider: noop.NewMeterProvider(),
	}
	var errs error
	var err error
	for _, o := range opts {
		options, err = o.applyRemapper(options)
		if err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return options, errs
}

type loggerOpt struct {
	logger *slog.Logger
}

func (o *loggerOpt) applyRemapper(opts remapperOptions) (remapperOptions, error) {
	if o.logger == nil {
		return opts, ErrInvalidOptionLogger
	}
	opts.logger = o.logger
	return opts, nil
}

func (o *loggerOpt) applyClient(opts clientOptions) (clientOptions, error) {
	remapperOpts, err := o.applyRemapper(opts.remapperOptions)
	opts.remapperOptions = remapperOpts
	return opts, err
}

// WithLogger directs the remapper's per-rewrite debug records to logger
// instead of slog.Default().
func WithLogger(logger *slog.Logger) ObservabilityOption {
	return &loggerOpt{logger: logger}
}

type meterProviderOpt struct {
	meterProvider metric.MeterProvider
}

func (o *meterProviderOpt) applyRemapper(opts remapperOptions) (remapperOptions, error) {
	if o.meterProvider == nil {
		opts.meterProvider = noop.NewMeterProvider()
	} else {
		opts.meterProvider = o.meterProvider
	}
	return opts, nil
}

func (o *meterProviderOpt) applyClient(opts clientOptions) (clientOptions, error) {
	remapperOpts, err := o.applyRemapper(opts.remapperOptions)
	opts.remapperOptions = remapperOpts
	return opts, err
}

// WithMeterProvider publishes the remap counters through the given
// OpenTelemetry MeterProvider. Metrics are disabled when it is nil.
func WithMeterProvider(meterProvider metric.MeterProvider) ObservabilityOption {
	return &meterProviderOpt{meterProvider: meterProvider}
}

// WithGlobalMeterProvider publishes the remap counters through the global
// OpenTelemetry MeterProvider.
func WithGlobalMeterProvider() ObservabilityOption {
	return WithMeterProvider(otel.GetMeterProvider())
}
