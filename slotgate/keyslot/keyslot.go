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

// Package keyslot maps cache keys to Redis Cluster hash slots and shards.
//
// A key's slot is the CRC-16/XMODEM checksum of the key modulo 16384, with
// the standard hash-tag rule applied first: when the key contains a
// non-empty `{...}` section, only the bytes between the first `{` and the
// first `}` after it are hashed. Keys sharing a tag therefore share a slot,
// which is how multi-key operations are kept on a single shard.
package keyslot

import (
	"strings"

	"github.com/streamnative/slotgate/common/crc"
)

// NumSlots is the fixed number of hash slots in the cluster keyspace.
const NumSlots = 16384

// Slot returns the hash slot that key maps to, in the range [0, NumSlots).
// It is a pure function: the same key always yields the same slot, in this
// process and in any other conforming implementation.
func Slot(key string) uint16 {
	if tag, ok := Tag(key); ok {
		key = tag
	}
	return crc.Checksum([]byte(key)) % NumSlots
}

// Tag extracts the hash tag from key. It returns the content between the
// first '{' and the first '}' after it, and true, when that content is
// non-empty. An empty `{}` or an unterminated `{` yields false: such keys
// are hashed whole.
func Tag(key string) (string, bool) {
	start := strings.IndexByte(key, '{')
	if start < 0 {
		return "", false
	}
	end := strings.IndexByte(key[start+1:], '}')
	if end <= 0 {
		return "", false
	}
	return key[start+1 : start+1+end], true
}
