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

import "net/netip"

// The RFC 1918 private IPv4 ranges. Managed cache clusters advertise node
// addresses out of these ranges even when the service is only reachable
// through its public endpoint.
var privateIPv4Prefixes = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
}

// IsPrivateHost reports whether host is a literal IPv4 address inside one of
// the RFC 1918 private ranges. IPv4-mapped IPv6 addresses are unmapped
// before the check. Hostnames, IPv6 addresses and anything that does not
// parse as an IP address are never private.
func IsPrivateHost(host string) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	if !addr.Is4() {
		return false
	}
	for _, prefix := range privateIPv4Prefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
