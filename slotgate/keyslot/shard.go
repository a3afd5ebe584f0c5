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

package keyslot

import "fmt"

// ShardOf returns the index of the shard owning slot when the keyspace is
// divided uniformly across numShards shards. Each shard owns a contiguous
// range of floor(NumSlots/numShards) slots; the last shard additionally
// owns the remainder slots when the division is not exact.
//
// It panics when numShards is outside [1, NumSlots].
func ShardOf(slot uint16, numShards int) int {
	size := rangeSize(numShards)
	shard := int(slot) / size
	if shard >= numShards {
		shard = numShards - 1
	}
	return shard
}

// ShardRange returns the inclusive slot range [lo, hi] owned by shard.
// It panics when shard is outside [0, numShards) or numShards is outside
// [1, NumSlots].
func ShardRange(shard, numShards int) (lo, hi uint16) {
	size := rangeSize(numShards)
	if shard < 0 || shard >= numShards {
		panic(fmt.Sprintf("keyslot: shard index %d out of range [0, %d)", shard, numShards))
	}
	lo = uint16(shard * size)
	if shard == numShards-1 {
		hi = NumSlots - 1
	} else {
		hi = uint16((shard+1)*size - 1)
	}
	return lo, hi
}

// FindTags probes hash tags "slot0", "slot1", ... in order and collects, for
// each shard, the first perShard tags whose slot lands on that shard. The
// probe sequence is fixed, so independent processes agree on the keys used
// to exercise every shard of a cluster.
//
// The returned slice has numShards entries. An entry may hold fewer than
// perShard tags if the probe budget runs out, which for realistic shard
// counts does not happen.
func FindTags(numShards, perShard int) [][]string {
	checkShards(numShards)

	found := make([][]string, numShards)
	if perShard < 1 {
		return found
	}
	remaining := numShards * perShard
	budget := 1000 * numShards * perShard
	for i := 0; remaining > 0 && i < budget; i++ {
		tag := fmt.Sprintf("slot%d", i)
		shard := ShardOf(Slot(tag), numShards)
		if len(found[shard]) < perShard {
			found[shard] = append(found[shard], tag)
			remaining--
		}
	}
	return found
}

func rangeSize(numShards int) int {
	checkShards(numShards)
	return NumSlots / numShards
}

func checkShards(numShards int) {
	if numShards < 1 || numShards > NumSlots {
		panic(fmt.Sprintf("keyslot: shard count %d out of range [1, %d]", numShards, NumSlots))
	}
}
