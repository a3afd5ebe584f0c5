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
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	libtls "crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTlsOptionIsConfigured(t *testing.T) {
	assert.False(t, (&TlsOption{}).IsConfigured())
	assert.True(t, (&TlsOption{TrustedCaFile: "ca.pem"}).IsConfigured())
	assert.True(t, (&TlsOption{ServerName: "cache.example.net"}).IsConfigured())
	assert.True(t, (&TlsOption{InsecureSkipVerify: true}).IsConfigured())
	assert.True(t, (&TlsOption{CertFile: "c.pem", KeyFile: "k.pem"}).IsConfigured())
	assert.True(t, (&TlsOption{KeyFile: "k.pem"}).IsConfigured())
	assert.True(t, (&TlsOption{MinVersion: libtls.VersionTLS13}).IsConfigured())
}

func TestMakeClientTlsConfDefaults(t *testing.T) {
	conf, err := (&TlsOption{ServerName: "cache.example.net"}).MakeClientTlsConf()
	require.NoError(t, err)

	assert.EqualValues(t, libtls.VersionTLS12, conf.MinVersion)
	assert.Equal(t, "cache.example.net", conf.ServerName)
	assert.Nil(t, conf.RootCAs)
	assert.Nil(t, conf.GetClientCertificate)
}

func TestMakeClientTlsConfIncompletePair(t *testing.T) {
	_, err := (&TlsOption{CertFile: "cert.pem"}).MakeClientTlsConf()
	assert.ErrorIs(t, err, ErrInvalidTlsKeyPair)

	_, err = (&TlsOption{KeyFile: "key.pem"}).MakeClientTlsConf()
	assert.ErrorIs(t, err, ErrInvalidTlsKeyPair)
}

func TestMakeClientTlsConfTrustedCa(t *testing.T) {
	caFile := writeTestCa(t)

	conf, err := (&TlsOption{TrustedCaFile: caFile}).MakeClientTlsConf()
	require.NoError(t, err)
	assert.NotNil(t, conf.RootCAs)
}

func TestMakeClientTlsConfBadTrustedCa(t *testing.T) {
	_, err := (&TlsOption{TrustedCaFile: filepath.Join(t.TempDir(), "missing.pem")}).MakeClientTlsConf()
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.pem")
	require.NoError(t, os.WriteFile(empty, []byte("not a certificate"), 0o600))
	_, err = (&TlsOption{TrustedCaFile: empty}).MakeClientTlsConf()
	assert.ErrorIs(t, err, ErrInvalidTrustedCa)
}

func writeTestCa(t *testing.T) string {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "test-ca"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)

	caFile := filepath.Join(t.TempDir(), "ca.pem")
	out, err := os.Create(caFile)
	require.NoError(t, err)
	require.NoError(t, pem.Encode(out, &pem.Block{Type: "CERTIFICATE", Bytes: der}))
	require.NoError(t, out.Close())
	return caFile
}
