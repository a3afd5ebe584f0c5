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
	"net"
	"strconv"

	"github.com/pkg/errors"
)

// NodeAddress is a host and port pair as advertised by a cluster node. The
// host may be an IP address or a DNS name.
type NodeAddress struct {
	Host string
	Port int
}

// ParseNodeAddress parses a "host:port" string into a NodeAddress.
func ParseNodeAddress(addr string) (NodeAddress, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return NodeAddress{}, errors.Wrapf(err, "invalid node address %q", addr)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return NodeAddress{}, errors.Wrapf(err, "invalid port in node address %q", addr)
	}
	if port < 0 || port > 65535 {
		return NodeAddress{}, errors.Errorf("port %d out of range in node address %q", port, addr)
	}
	return NodeAddress{Host: host, Port: port}, nil
}

func (a NodeAddress) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}
