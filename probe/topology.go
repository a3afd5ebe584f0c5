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

package probe

import (
	"strconv"
	"strings"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/pkg/errors"

	"github.com/streamnative/slotgate/slotgate"
	"github.com/streamnative/slotgate/slotgate/keyslot"
)

// NodeRole identifies the role a node advertises in CLUSTER NODES.
type NodeRole string

const (
	RoleMaster  NodeRole = "master"
	RoleReplica NodeRole = "replica"
)

// SlotRange is an inclusive range of hash slots.
type SlotRange struct {
	Start uint16 `json:"start" yaml:"start"`
	End   uint16 `json:"end" yaml:"end"`
}

// Node is one line of CLUSTER NODES output.
type Node struct {
	ID          string
	Address     slotgate.NodeAddress
	Role        NodeRole
	MasterID    string
	Slots       []SlotRange
	Connected   bool
	PrivateHost bool
}

// ParseClusterNodes parses the raw CLUSTER NODES payload. Nodes still in
// handshake state or without a usable address are dropped, and importing or
// migrating slot markers are ignored.
func ParseClusterNodes(raw string) ([]Node, error) {
	var nodes []Node
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 8 {
			return nil, errors.Errorf("malformed cluster nodes line: %q", line)
		}

		flags := strings.Split(fields[2], ",")
		if containsFlag(flags, "handshake") || containsFlag(flags, "noaddr") {
			continue
		}

		node := Node{
			ID:        fields[0],
			Connected: fields[7] == "connected",
		}

		switch {
		case containsFlag(flags, "master"):
			node.Role = RoleMaster
		case containsFlag(flags, "slave"):
			node.Role = RoleReplica
		default:
			return nil, errors.Errorf("node %s has no role in flags %q", node.ID, fields[2])
		}

		// The bus port suffix ("@16379") is not part of the client address.
		addr, _, _ := strings.Cut(fields[1], "@")
		parsed, err := slotgate.ParseNodeAddress(addr)
		if err != nil {
			return nil, errors.Wrapf(err, "node %s", node.ID)
		}
		node.Address = parsed
		node.PrivateHost = slotgate.IsPrivateHost(parsed.Host)

		if fields[3] != "-" {
			node.MasterID = fields[3]
		}

		for _, token := range fields[8:] {
			if strings.HasPrefix(token, "[") {
				continue
			}
			r, err := parseSlotRange(token)
			if err != nil {
				return nil, errors.Wrapf(err, "node %s", node.ID)
			}
			node.Slots = append(node.Slots, r)
		}

		nodes = append(nodes, node)
	}

	return nodes, nil
}

func containsFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}

func parseSlotRange(token string) (SlotRange, error) {
	lo, hi, isRange := strings.Cut(token, "-")
	if !isRange {
		hi = lo
	}

	start, err := parseSlot(lo)
	if err != nil {
		return SlotRange{}, err
	}
	end, err := parseSlot(hi)
	if err != nil {
		return SlotRange{}, err
	}
	if end < start {
		return SlotRange{}, errors.Errorf("invalid slot range %q", token)
	}
	return SlotRange{Start: start, End: end}, nil
}

func parseSlot(s string) (uint16, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 || v >= keyslot.NumSlots {
		return 0, errors.Errorf("invalid slot %q", s)
	}
	return uint16(v), nil
}

// ClusterInfo is the subset of CLUSTER INFO the probe inspects.
type ClusterInfo struct {
	State         string
	SlotsAssigned int
	SlotsOK       int
	KnownNodes    int
	Size          int
}

// ParseClusterInfo parses the raw CLUSTER INFO payload.
func ParseClusterInfo(raw string) (*ClusterInfo, error) {
	info := &ClusterInfo{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			return nil, errors.Errorf("malformed cluster info line: %q", line)
		}

		var err error
		switch key {
		case "cluster_state":
			info.State = value
		case "cluster_slots_assigned":
			info.SlotsAssigned, err = strconv.Atoi(value)
		case "cluster_slots_ok":
			info.SlotsOK, err = strconv.Atoi(value)
		case "cluster_known_nodes":
			info.KnownNodes, err = strconv.Atoi(value)
		case "cluster_size":
			info.Size, err = strconv.Atoi(value)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "malformed cluster info line: %q", line)
		}
	}

	if info.State == "" {
		return nil, errors.New("cluster info is missing cluster_state")
	}
	return info, nil
}

type tableEntry struct {
	end  uint16
	node *Node
}

// SlotTable maps hash slots to the master that owns them.
//
// Ranges are kept in a treemap keyed by range start, so a lookup is a floor
// search followed by an upper bound check.
type SlotTable struct {
	entries *treemap.Map
}

// NewSlotTable indexes the slot ranges owned by the masters in nodes. Ranges
// that overlap are a sign of a broken or resharding cluster and are rejected.
func NewSlotTable(nodes []Node) (*SlotTable, error) {
	table := &SlotTable{
		entries: treemap.NewWithIntComparator(),
	}

	for i := range nodes {
		node := &nodes[i]
		if node.Role != RoleMaster {
			continue
		}
		for _, r := range node.Slots {
			if _, entry := table.entries.Floor(int(r.End)); entry != nil {
				if entry.(tableEntry).end >= r.Start {
					return nil, errors.Errorf("slot range %d-%d overlaps an existing assignment", r.Start, r.End)
				}
			}
			table.entries.Put(int(r.Start), tableEntry{end: r.End, node: node})
		}
	}

	return table, nil
}

// Lookup returns the master owning slot, or false if the slot is unassigned.
func (t *SlotTable) Lookup(slot uint16) (*Node, bool) {
	_, value := t.entries.Floor(int(slot))
	if value == nil {
		return nil, false
	}
	entry := value.(tableEntry)
	if entry.end < slot {
		return nil, false
	}
	return entry.node, true
}

// Coverage returns the number of assigned slots.
func (t *SlotTable) Coverage() int {
	covered := 0
	it := t.entries.Iterator()
	for it.Next() {
		entry := it.Value().(tableEntry)
		covered += int(entry.end) - it.Key().(int) + 1
	}
	return covered
}

// Gaps returns the slot ranges not owned by any master.
func (t *SlotTable) Gaps() []SlotRange {
	var gaps []SlotRange
	next := 0

	it := t.entries.Iterator()
	for it.Next() {
		start := it.Key().(int)
		if start > next {
			gaps = append(gaps, SlotRange{Start: uint16(next), End: uint16(start - 1)})
		}
		next = int(it.Value().(tableEntry).end) + 1
	}

	if next < keyslot.NumSlots {
		gaps = append(gaps, SlotRange{Start: uint16(next), End: keyslot.NumSlots - 1})
	}
	return gaps
}
