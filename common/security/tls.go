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

package security

import (
	libtls "crypto/tls"
	"crypto/x509"
	"os"

	"github.com/pkg/errors"
)

// TlsOption groups the client-side TLS settings used when connecting to a
// cache endpoint.
type TlsOption struct {
	// CertFile is the path to the client certificate file.
	CertFile string
	// KeyFile is the path to the private key file.
	KeyFile string
	// CipherSuites is a list of supported cipher suites.
	CipherSuites []uint16
	// MinVersion is the minimum TLS version supported.
	MinVersion uint16
	// MaxVersion is the maximum TLS version supported.
	MaxVersion uint16
	// TrustedCaFile is the path to the CA certificate.
	TrustedCaFile string
	// InsecureSkipVerify controls whether it verifies the certificate chain and host name.
	InsecureSkipVerify bool
	// ServerName overrides the name used for SNI and certificate verification.
	ServerName string
}

var (
	ErrInvalidTlsKeyPair = errors.New("Tls cert file and key file must both be set")
	ErrInvalidTrustedCa  = errors.New("Tls trusted CA file contains no certificates")
)

// IsConfigured reports whether any TLS setting was supplied.
func (tls *TlsOption) IsConfigured() bool {
	return tls.CertFile != "" || tls.KeyFile != "" || tls.TrustedCaFile != "" ||
		tls.ServerName != "" || tls.InsecureSkipVerify ||
		tls.MinVersion != 0 || tls.MaxVersion != 0 || len(tls.CipherSuites) > 0
}

// MakeClientTlsConf builds a client TLS configuration. The client
// certificate pair and the trusted CA file are both optional; when absent
// the system defaults apply.
func (tls *TlsOption) MakeClientTlsConf() (*libtls.Config, error) {
	if (tls.CertFile == "") != (tls.KeyFile == "") {
		return nil, ErrInvalidTlsKeyPair
	}

	var minVersion uint16 = libtls.VersionTLS12
	if tls.MinVersion != 0 {
		minVersion = tls.MinVersion
	}
	tlsConf := &libtls.Config{
		MinVersion:         minVersion,
		MaxVersion:         tls.MaxVersion,
		ServerName:         tls.ServerName,
		InsecureSkipVerify: tls.InsecureSkipVerify,
	}
	if len(tls.CipherSuites) > 0 {
		tlsConf.CipherSuites = tls.CipherSuites
	}

	if tls.CertFile != "" {
		// validate it first
		if _, err := libtls.LoadX509KeyPair(tls.CertFile, tls.KeyFile); err != nil {
			return nil, err
		}
		tlsConf.GetClientCertificate = func(unused *libtls.CertificateRequestInfo) (*libtls.Certificate, error) {
			c, err := libtls.LoadX509KeyPair(tls.CertFile, tls.KeyFile)
			return &c, err
		}
	}

	if tls.TrustedCaFile != "" {
		certPool, err := tls.trustedCertPool()
		if err != nil {
			return nil, err
		}
		tlsConf.RootCAs = certPool
	}
	return tlsConf, nil
}

func (tls *TlsOption) trustedCertPool() (*x509.CertPool, error) {
	bPem, err := os.ReadFile(tls.TrustedCaFile)
	if err != nil {
		return nil, err
	}
	certPool := x509.NewCertPool()
	if !certPool.AppendCertsFromPEM(bPem) {
		return nil, ErrInvalidTrustedCa
	}
	return certPool, nil
}
