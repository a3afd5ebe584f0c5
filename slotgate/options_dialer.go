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
	"crypto/tls"
	"time"

	"go.uber.org/multierr"
)

const (
	DefaultDialTimeout = 10 * time.Second
	DefaultKeepAlive   = 30 * time.Second
)

// TransportOption is accepted by every constructor that opens connections.
type TransportOption interface {
	DialerOption
	ClientOption
}

// dialerOptions contains the options for a remapping dialer.
type dialerOptions struct {
	dialTimeout time.Duration
	keepAlive   time.Duration
	tlsConf     *tls.Config
	plaintext   bool
	serverName  string
}

func newDialerOptions(opts ...DialerOption) (dialerOptions, error) {
	options := dialerOptions{
		dialTimeout: DefaultDialTimeout,
		keepAlive:   DefaultKeepAlive,
	}
	var errs error
	var err error
	for _, o := range opts {
		options, err = o.applyDialer(options)
		if err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return options, errs
}

type dialTimeoutOpt struct {
	dialTimeout time.Duration
}

func (o *dialTimeoutOpt) applyDialer(opts dialerOptions) (dialerOptions, error) {
	if o.dialTimeout <= 0 {
		return opts, ErrInvalidOptionDialTimeout
	}
	opts.dialTimeout = o.dialTimeout
	return opts, nil
}

func (o *dialTimeoutOpt) applyClient(opts clientOptions) (clientOptions, error) {
	dialerOpts, err := o.applyDialer(opts.dialerOptions)
	opts.dialerOptions = dialerOpts
	return opts, err
}

// WithDialTimeout bounds the time spent establishing a single connection,
// TLS handshake included.
func WithDialTimeout(dialTimeout time.Duration) TransportOption {
	return &dialTimeoutOpt{dialTimeout: dialTimeout}
}

type keepAliveOpt struct {
	keepAlive time.Duration
}

func (o *keepAliveOpt) applyDialer(opts dialerOptions) (dialerOptions, error) {
	if o.keepAlive < 0 {
		return opts, ErrInvalidOptionKeepAlive
	}
	opts.keepAlive = o.keepAlive
	return opts, nil
}

func (o *keepAliveOpt) applyClient(opts clientOptions) (clientOptions, error) {
	dialerOpts, err := o.applyDialer(opts.dialerOptions)
	opts.dialerOptions = dialerOpts
	return opts, err
}

// WithKeepAlive sets the TCP keep-alive interval for established
// connections. Zero keeps the transport default.
func WithKeepAlive(keepAlive time.Duration) TransportOption {
	return &keepAliveOpt{keepAlive: keepAlive}
}

type tlsOpt struct {
	tlsConf *tls.Config
}

func (o *tlsOpt) applyDialer(opts dialerOptions) (dialerOptions, error) {
	if o.tlsConf == nil {
		return opts, ErrInvalidOptionTLS
	}
	opts.tlsConf = o.tlsConf
	opts.plaintext = false
	return opts, nil
}

func (o *tlsOpt) applyClient(opts clientOptions) (clientOptions, error) {
	dialerOpts, err := o.applyDialer(opts.dialerOptions)
	opts.dialerOptions = dialerOpts
	return opts, err
}

// WithTLS replaces the default TLS configuration. The config is cloned
// before use.
func WithTLS(tlsConf *tls.Config) TransportOption {
	return &tlsOpt{tlsConf: tlsConf}
}

type plaintextOpt struct{}

func (*plaintextOpt) applyDialer(opts dialerOptions) (dialerOptions, error) {
	opts.plaintext = true
	return opts, nil
}

func (o *plaintextOpt) applyClient(opts clientOptions) (clientOptions, error) {
	dialerOpts, err := o.applyDialer(opts.dialerOptions)
	opts.dialerOptions = dialerOpts
	return opts, err
}

// WithoutTLS dials plain TCP. Only sensible against local or test clusters.
func WithoutTLS() TransportOption {
	return &plaintextOpt{}
}

type serverNameOpt struct {
	serverName string
}

func (o *serverNameOpt) applyDialer(opts dialerOptions) (dialerOptions, error) {
	if o.serverName == "" {
		return opts, ErrInvalidOptionServerName
	}
	opts.serverName = o.serverName
	return opts, nil
}

func (o *serverNameOpt) applyClient(opts clientOptions) (clientOptions, error) {
	dialerOpts, err := o.applyDialer(opts.dialerOptions)
	opts.dialerOptions = dialerOpts
	return opts, err
}

// WithTLSServerName pins the SNI and certificate verification name for every
// handshake, regardless of the host being dialed.
func WithTLSServerName(serverName string) TransportOption {
	return &serverNameOpt{serverName: serverName}
}
