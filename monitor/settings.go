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

package monitor

import (
	"time"

	"github.com/pkg/errors"

	"github.com/streamnative/slotgate/probe"
)

const DefaultInterval = 30 * time.Second

// Settings is the hot reloadable part of the monitor configuration. It is
// typically loaded from a YAML file and reloaded when the file changes.
type Settings struct {
	Interval     time.Duration `json:"interval" yaml:"interval"`
	NumShards    int           `json:"numShards" yaml:"numShards"`
	TagsPerShard int           `json:"tagsPerShard" yaml:"tagsPerShard"`
	KeyPrefix    string        `json:"keyPrefix" yaml:"keyPrefix"`
	KeyTTL       time.Duration `json:"keyTTL" yaml:"keyTTL"`
	OpTimeout    time.Duration `json:"opTimeout" yaml:"opTimeout"`
}

func NewSettings() Settings {
	return Settings{
		Interval:     DefaultInterval,
		NumShards:    probe.DefaultNumShards,
		TagsPerShard: probe.DefaultTagsPerShard,
		KeyPrefix:    probe.DefaultKeyPrefix,
		KeyTTL:       probe.DefaultKeyTTL,
		OpTimeout:    probe.DefaultOpTimeout,
	}
}

func (s Settings) Validate() error {
	if s.Interval <= 0 {
		return errors.New("Interval must be positive")
	}
	return s.probeConfig("").Validate()
}

func (s Settings) probeConfig(endpoint string) probe.Config {
	return probe.Config{
		Endpoint:     endpoint,
		NumShards:    s.NumShards,
		TagsPerShard: s.TagsPerShard,
		KeyPrefix:    s.KeyPrefix,
		KeyTTL:       s.KeyTTL,
		OpTimeout:    s.OpTimeout,
	}
}
