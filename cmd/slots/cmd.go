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
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/streamnative/slotgate/slotgate/keyslot"
)

var (
	numShards    int
	tagsPerShard int
	output       string

	Cmd = &cobra.Command{
		Use:   "slots",
		Short: "Inspect hash slot placement",
		Long:  `Compute the hash slot and shard of keys, or find hash tags pinned to each shard`,
	}

	keyCmd = &cobra.Command{
		Use:   "key KEY...",
		Short: "Show the slot and shard of one or more keys",
		Args:  cobra.MinimumNArgs(1),
		RunE:  execKey,
	}

	findCmd = &cobra.Command{
		Use:   "find",
		Short: "Find hash tags that land on each shard",
		Args:  cobra.NoArgs,
		RunE:  execFind,
	}
)

func init() {
	Cmd.PersistentFlags().IntVarP(&numShards, "shards", "s", 2, "Number of shards in the cluster")
	Cmd.PersistentFlags().StringVarP(&output, "output", "o", "json", "Output format: json or yaml")

	findCmd.Flags().IntVar(&tagsPerShard, "per-shard", 1, "Number of tags to find per shard")

	Cmd.AddCommand(keyCmd)
	Cmd.AddCommand(findCmd)
}

type keyPlacement struct {
	Key   string `json:"key" yaml:"key"`
	Slot  uint16 `json:"slot" yaml:"slot"`
	Shard int    `json:"shard" yaml:"shard"`
}

type shardTags struct {
	Shard int      `json:"shard" yaml:"shard"`
	Start uint16   `json:"start" yaml:"start"`
	End   uint16   `json:"end" yaml:"end"`
	Tags  []string `json:"tags" yaml:"tags"`
}

func validateShards() error {
	if numShards < 1 || numShards > keyslot.NumSlots {
		return errors.Errorf("shards must be between 1 and %d", keyslot.NumSlots)
	}
	return nil
}

func execKey(cmd *cobra.Command, args []string) error {
	if err := validateShards(); err != nil {
		return err
	}

	placements := make([]keyPlacement, len(args))
	for i, key := range args {
		slot := keyslot.Slot(key)
		placements[i] = keyPlacement{
			Key:   key,
			Slot:  slot,
			Shard: keyslot.ShardOf(slot, numShards),
		}
	}

	return write(cmd.OutOrStdout(), placements)
}

func execFind(cmd *cobra.Command, _ []string) error {
	if err := validateShards(); err != nil {
		return err
	}
	if tagsPerShard < 1 {
		return errors.New("per-shard must be at least 1")
	}

	tags := keyslot.FindTags(numShards, tagsPerShard)
	shards := make([]shardTags, numShards)
	for shard, shardTagList := range tags {
		start, end := keyslot.ShardRange(shard, numShards)
		shards[shard] = shardTags{
			Shard: shard,
			Start: start,
			End:   end,
			Tags:  shardTagList,
		}
	}

	return write(cmd.OutOrStdout(), shards)
}

func write(w io.Writer, v any) error {
	switch output {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return errors.Errorf("unknown output format %q", output)
	}
}
