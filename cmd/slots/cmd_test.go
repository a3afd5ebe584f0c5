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

package slots

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func runSlots(t *testing.T, args ...string) (string, error) {
	t.Helper()

	numShards = 2
	tagsPerShard = 1
	output = "json"

	var buf bytes.Buffer
	Cmd.SetOut(&buf)
	Cmd.SetErr(&buf)
	Cmd.SetArgs(args)
	err := Cmd.Execute()
	return buf.String(), err
}

func TestKey(t *testing.T) {
	out, err := runSlots(t, "key", "foo", "prefix:{slot1}:suffix")
	assert.NoError(t, err)

	var placements []keyPlacement
	assert.NoError(t, json.Unmarshal([]byte(out), &placements))
	assert.Equal(t, []keyPlacement{
		{Key: "foo", Slot: 12182, Shard: 1},
		{Key: "prefix:{slot1}:suffix", Slot: 12289, Shard: 1},
	}, placements)
}

func TestKeyShardCount(t *testing.T) {
	out, err := runSlots(t, "key", "--shards=4", "foo")
	assert.NoError(t, err)

	var placements []keyPlacement
	assert.NoError(t, json.Unmarshal([]byte(out), &placements))
	assert.Equal(t, []keyPlacement{
		{Key: "foo", Slot: 12182, Shard: 2},
	}, placements)
}

func TestKeyYamlOutput(t *testing.T) {
	out, err := runSlots(t, "key", "-o=yaml", "foo")
	assert.NoError(t, err)

	var placements []keyPlacement
	assert.NoError(t, yaml.Unmarshal([]byte(out), &placements))
	assert.Equal(t, []keyPlacement{
		{Key: "foo", Slot: 12182, Shard: 1},
	}, placements)
}

func TestFind(t *testing.T) {
	out, err := runSlots(t, "find", "--shards=2", "--per-shard=2")
	assert.NoError(t, err)

	var shards []shardTags
	assert.NoError(t, json.Unmarshal([]byte(out), &shards))
	assert.Equal(t, []shardTags{
		{Shard: 0, Start: 0, End: 8191, Tags: []string{"slot2", "slot3"}},
		{Shard: 1, Start: 8192, End: 16383, Tags: []string{"slot0", "slot1"}},
	}, shards)
}

func TestInvalidArgs(t *testing.T) {
	for _, test := range []struct {
		name string
		args []string
	}{
		{"no keys", []string{"key"}},
		{"zero shards", []string{"key", "--shards=0", "foo"}},
		{"too many shards", []string{"find", "--shards=20000"}},
		{"zero per-shard", []string{"find", "--per-shard=0"}},
		{"bad output", []string{"key", "-o=xml", "foo"}},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := runSlots(t, test.args...)
			assert.Error(t, err)
		})
	}
}
