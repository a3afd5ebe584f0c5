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
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestNewConfigDefaults(t *testing.T) {
	config := NewConfig()
	assert.Equal(t, DefaultNumShards, config.NumShards)
	assert.Equal(t, DefaultTagsPerShard, config.TagsPerShard)
	assert.Equal(t, DefaultKeyPrefix, config.KeyPrefix)
	assert.Equal(t, DefaultKeyTTL, config.KeyTTL)
	assert.Equal(t, DefaultOpTimeout, config.OpTimeout)
	assert.NoError(t, config.Validate())
}

func TestConfigValidate(t *testing.T) {
	for _, test := range []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero shards", func(c *Config) { c.NumShards = 0 }},
		{"negative shards", func(c *Config) { c.NumShards = -1 }},
		{"too many shards", func(c *Config) { c.NumShards = 16385 }},
		{"zero tags", func(c *Config) { c.TagsPerShard = 0 }},
		{"empty prefix", func(c *Config) { c.KeyPrefix = "" }},
		{"open brace in prefix", func(c *Config) { c.KeyPrefix = "probe{x" }},
		{"close brace in prefix", func(c *Config) { c.KeyPrefix = "probe}x" }},
		{"zero ttl", func(c *Config) { c.KeyTTL = 0 }},
		{"zero timeout", func(c *Config) { c.OpTimeout = 0 }},
	} {
		t.Run(test.name, func(t *testing.T) {
			config := NewConfig()
			test.mutate(&config)
			assert.ErrorIs(t, config.Validate(), errInvalidConfig)
		})
	}
}

func TestRunNilClient(t *testing.T) {
	_, err := Run(context.Background(), nil, NewConfig())
	assert.Error(t, err)
}

func TestRunInvalidConfig(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	config := NewConfig()
	config.NumShards = 0
	_, err := Run(context.Background(), client, config)
	assert.ErrorIs(t, err, errInvalidConfig)
}

func TestRunUnreachableCluster(t *testing.T) {
	// Nothing listens on port 1, every connection attempt is refused.
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 1 * time.Second,
	})
	defer client.Close()

	config := NewConfig()
	config.Endpoint = "127.0.0.1:1"

	report, err := Run(context.Background(), client, config)
	assert.ErrorIs(t, err, ErrProbeFailed)
	assert.NotNil(t, report)
	assert.False(t, report.Healthy)
	assert.Greater(t, report.ElapsedMs, 0.0)
	assert.Empty(t, report.Placements)
	assert.Nil(t, report.Cluster)

	assert.Len(t, report.Steps, 7)
	ping, ok := report.Step(StepPing)
	assert.True(t, ok)
	assert.Equal(t, StatusFailed, ping.Status)
	assert.NotEmpty(t, ping.Error)

	for _, name := range []string{
		StepWrite, StepRead, StepIncr, StepClusterInfo, StepClusterNodes, StepCleanup,
	} {
		step, ok := report.Step(name)
		assert.True(t, ok)
		assert.Equal(t, StatusSkipped, step.Status)
	}
}
