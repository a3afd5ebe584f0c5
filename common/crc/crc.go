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

// Package crc implements the CRC-16/XMODEM checksum used by Redis Cluster
// to map keys to hash slots: polynomial 0x1021, initial value 0, no final
// xor, no bit reflection.
package crc

import (
	"hash"
)

const poly = 0x1021

// Hash16 is the common interface implemented by all 16-bit hash functions.
type Hash16 interface {
	hash.Hash
	Sum16() uint16
}

type digest struct {
	// crc is the previous crc value
	crc uint16
}

func New() Hash16 {
	return &digest{}
}

func update(crc uint16, p []byte) uint16 {
	for _, b := range p {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

func (d *digest) Write(p []byte) (n int, err error) {
	d.crc = update(d.crc, p)
	return len(p), nil
}

func (d *digest) Sum(in []byte) []byte {
	s := d.Sum16()
	return append(in, byte(s>>8), byte(s))
}

func (d *digest) Reset() {
	d.crc = 0
}

func (*digest) Size() int {
	return 2
}

func (*digest) BlockSize() int {
	return 1
}

func (d *digest) Sum16() uint16 {
	return d.crc
}

// Checksum returns the CRC-16/XMODEM checksum of data.
func Checksum(data []byte) uint16 {
	return update(0, data)
}
