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

package crc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum(t *testing.T) {
	for _, test := range []struct {
		input    string
		expected uint16
	}{
		{"", 0x0000},
		{"A", 0x58E5},
		{"123456789", 0x31C3},
	} {
		assert.Equal(t, test.expected, Checksum([]byte(test.input)), "input %q", test.input)
	}
}

func TestDigestStreaming(t *testing.T) {
	d := New()

	n, err := d.Write([]byte("1234"))
	assert.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = d.Write([]byte("56789"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)

	assert.Equal(t, uint16(0x31C3), d.Sum16())
	assert.Equal(t, []byte{0x31, 0xC3}, d.Sum(nil))

	d.Reset()
	assert.Equal(t, uint16(0), d.Sum16())
}

func TestDigestSizes(t *testing.T) {
	d := New()
	assert.Equal(t, 2, d.Size())
	assert.Equal(t, 1, d.BlockSize())
}
