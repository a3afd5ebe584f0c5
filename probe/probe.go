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

// Package probe runs an end to end health check against a Redis Cluster.
//
// A probe run pings the cluster, writes one scratch key per shard using hash
// tags pinned to each shard's slot range, reads the keys back, exercises a
// counter, and then inspects CLUSTER INFO and CLUSTER NODES to validate slot
// coverage. Scratch keys carry a TTL and are deleted at the end, so an
// aborted run leaves no garbage behind.
package probe

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/streamnative/slotgate/common"
	"github.com/streamnative/slotgate/slotgate/keyslot"
)

// Step names recorded in the report, in execution order.
const (
	StepPing         = "ping"
	StepWrite        = "write"
	StepRead         = "read"
	StepIncr         = "incr"
	StepClusterInfo  = "cluster-info"
	StepClusterNodes = "cluster-nodes"
	StepCleanup      = "cleanup"
)

// StepNames lists every step of a probe run, in execution order.
var StepNames = []string{
	StepPing, StepWrite, StepRead, StepIncr, StepClusterInfo, StepClusterNodes, StepCleanup,
}

const (
	DefaultNumShards    = 2
	DefaultTagsPerShard = 1
	DefaultKeyPrefix    = "slotgate:probe"
	DefaultKeyTTL       = 1 * time.Minute
	DefaultOpTimeout    = 10 * time.Second

	// Extra attempts for the initial ping, which absorbs cold connections
	// and cluster topology refreshes.
	pingRetries = 3
)

// ErrProbeFailed is returned by Run together with the report when at least
// one probe step failed.
var ErrProbeFailed = errors.New("cluster probe failed")

var errInvalidConfig = errors.New("invalid probe config")

// Config drives a single probe run.
type Config struct {
	// Endpoint labels the report. It is not dialed, the client passed to
	// Run already is connected to the target cluster.
	Endpoint string

	// NumShards is the number of shards the cluster is expected to have.
	// One scratch key lands on each of them.
	NumShards int

	// TagsPerShard is the number of scratch keys written per shard.
	TagsPerShard int

	// KeyPrefix namespaces the scratch keys. It must not contain braces,
	// which would defeat the hash tags appended after it.
	KeyPrefix string

	// KeyTTL caps the lifetime of scratch keys if cleanup never runs.
	KeyTTL time.Duration

	// OpTimeout bounds each individual command.
	OpTimeout time.Duration
}

// NewConfig returns a Config with the default probe settings.
func NewConfig() Config {
	return Config{
		NumShards:    DefaultNumShards,
		TagsPerShard: DefaultTagsPerShard,
		KeyPrefix:    DefaultKeyPrefix,
		KeyTTL:       DefaultKeyTTL,
		OpTimeout:    DefaultOpTimeout,
	}
}

func (c Config) Validate() error {
	if c.NumShards < 1 || c.NumShards > keyslot.NumSlots {
		return errors.Wrapf(errInvalidConfig, "NumShards must be between 1 and %d", keyslot.NumSlots)
	}
	if c.TagsPerShard < 1 {
		return errors.Wrap(errInvalidConfig, "TagsPerShard must be at least 1")
	}
	if c.KeyPrefix == "" {
		return errors.Wrap(errInvalidConfig, "KeyPrefix must be non-empty")
	}
	for _, ch := range c.KeyPrefix {
		if ch == '{' || ch == '}' {
			return errors.Wrap(errInvalidConfig, "KeyPrefix must not contain braces")
		}
	}
	if c.KeyTTL <= 0 {
		return errors.Wrap(errInvalidConfig, "KeyTTL must be positive")
	}
	if c.OpTimeout <= 0 {
		return errors.Wrap(errInvalidConfig, "OpTimeout must be positive")
	}
	return nil
}

// Run executes one probe against the cluster behind client and returns the
// report. The returned error is ErrProbeFailed when any step failed, the
// report then carries the per step detail.
func Run(ctx context.Context, client redis.UniversalClient, config Config) (*Report, error) {
	if client == nil {
		return nil, errors.New("client cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &prober{
		client: client,
		config: config,
		logger: slog.With(slog.String("component", "probe")),
	}
	return p.run(ctx)
}

type prober struct {
	client redis.UniversalClient
	config Config
	logger *slog.Logger

	// Scratch keys created so far, deleted by the cleanup step.
	scratch []string
}

func (p *prober) run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{
		Endpoint:  p.config.Endpoint,
		StartedAt: start.UTC(),
		Healthy:   true,
	}

	if err := p.step(report, StepPing, func() error {
		return p.ping(ctx)
	}); err != nil {
		report.Healthy = false
		p.skip(report, StepWrite, StepRead, StepIncr, StepClusterInfo, StepClusterNodes, StepCleanup)
		report.ElapsedMs = elapsedMs(start)
		return report, ErrProbeFailed
	}

	stamp := start.UnixNano()
	value := strconv.FormatInt(stamp, 10)
	tags := keyslot.FindTags(p.config.NumShards, p.config.TagsPerShard)

	if err := p.step(report, StepWrite, func() error {
		return p.writeScratch(ctx, tags, stamp, value, report)
	}); err != nil {
		report.Healthy = false
		p.skip(report, StepRead, StepIncr)
	} else {
		if err := p.step(report, StepRead, func() error {
			return p.readScratch(ctx, value, report)
		}); err != nil {
			report.Healthy = false
		}
		if err := p.step(report, StepIncr, func() error {
			return p.bumpCounter(ctx, tags[0][0], stamp)
		}); err != nil {
			report.Healthy = false
		}
	}

	summary := &ClusterSummary{}
	haveSummary := false

	if err := p.step(report, StepClusterInfo, func() error {
		err := p.clusterInfo(ctx, summary)
		haveSummary = haveSummary || err == nil
		return err
	}); err != nil {
		report.Healthy = false
	}

	if err := p.step(report, StepClusterNodes, func() error {
		err := p.clusterNodes(ctx, summary, report)
		haveSummary = haveSummary || err == nil
		return err
	}); err != nil {
		report.Healthy = false
	}

	if haveSummary {
		report.Cluster = summary
	}

	// Cleanup is best effort. The TTL reaps anything left behind.
	if len(p.scratch) > 0 {
		_ = p.step(report, StepCleanup, func() error {
			opCtx, cancel := p.opCtx(ctx)
			defer cancel()
			return p.client.Del(opCtx, p.scratch...).Err()
		})
	} else {
		p.skip(report, StepCleanup)
	}

	report.ElapsedMs = elapsedMs(start)
	if !report.Healthy {
		return report, ErrProbeFailed
	}
	return report, nil
}

// step runs fn, records its outcome and latency, and returns its error.
func (p *prober) step(report *Report, name string, fn func() error) error {
	start := time.Now()
	err := fn()

	result := StepResult{
		Name:      name,
		Status:    StatusOK,
		LatencyMs: elapsedMs(start),
	}
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		p.logger.Warn(
			"Probe step failed",
			slog.String("step", name),
			slog.Any("error", err),
		)
	}

	report.Steps = append(report.Steps, result)
	return err
}

func (p *prober) skip(report *Report, names ...string) {
	for _, name := range names {
		report.Steps = append(report.Steps, StepResult{Name: name, Status: StatusSkipped})
	}
}

func (p *prober) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.config.OpTimeout)
}

func (p *prober) ping(ctx context.Context) error {
	return backoff.RetryNotify(func() error {
		opCtx, cancel := p.opCtx(ctx)
		defer cancel()
		return p.client.Ping(opCtx).Err()
	}, backoff.WithMaxRetries(common.NewBackOff(ctx), pingRetries),
		func(err error, duration time.Duration) {
			p.logger.Warn(
				"Ping failed, retrying",
				slog.Any("error", err),
				slog.Duration("retry-after", duration),
			)
		})
}

// writeScratch sets one key per shard and tag. The hash tag pins each key to
// its shard, so a healthy cluster stores them on distinct masters.
func (p *prober) writeScratch(ctx context.Context, tags [][]string, stamp int64, value string, report *Report) error {
	for shard, shardTags := range tags {
		for _, tag := range shardTags {
			key := fmt.Sprintf("%s:{%s}:%d", p.config.KeyPrefix, tag, stamp)

			opCtx, cancel := p.opCtx(ctx)
			err := p.client.Set(opCtx, key, value, p.config.KeyTTL).Err()
			cancel()
			if err != nil {
				return errors.Wrapf(err, "set %s", key)
			}

			p.scratch = append(p.scratch, key)
			report.Placements = append(report.Placements, KeyPlacement{
				Key:   key,
				Slot:  keyslot.Slot(key),
				Shard: shard,
			})
		}
	}
	return nil
}

func (p *prober) readScratch(ctx context.Context, expected string, report *Report) error {
	for _, placement := range report.Placements {
		opCtx, cancel := p.opCtx(ctx)
		got, err := p.client.Get(opCtx, placement.Key).Result()
		cancel()
		if err != nil {
			return errors.Wrapf(err, "get %s", placement.Key)
		}
		if got != expected {
			return errors.Errorf("key %s: read %q back, wrote %q", placement.Key, got, expected)
		}
	}
	return nil
}

func (p *prober) bumpCounter(ctx context.Context, tag string, stamp int64) error {
	key := fmt.Sprintf("%s:{%s}:counter:%d", p.config.KeyPrefix, tag, stamp)
	p.scratch = append(p.scratch, key)

	opCtx, cancel := p.opCtx(ctx)
	first, err := p.client.Incr(opCtx, key).Result()
	cancel()
	if err != nil {
		return errors.Wrapf(err, "incr %s", key)
	}

	opCtx, cancel = p.opCtx(ctx)
	second, err := p.client.Incr(opCtx, key).Result()
	cancel()
	if err != nil {
		return errors.Wrapf(err, "incr %s", key)
	}

	if first != 1 || second != 2 {
		return errors.Errorf("counter %s: expected 1 then 2, got %d then %d", key, first, second)
	}

	opCtx, cancel = p.opCtx(ctx)
	defer cancel()
	return p.client.Expire(opCtx, key, p.config.KeyTTL).Err()
}

func (p *prober) clusterInfo(ctx context.Context, summary *ClusterSummary) error {
	opCtx, cancel := p.opCtx(ctx)
	defer cancel()

	raw, err := p.client.ClusterInfo(opCtx).Result()
	if err != nil {
		return errors.Wrap(err, "cluster info")
	}
	info, err := ParseClusterInfo(raw)
	if err != nil {
		return err
	}

	summary.State = info.State
	summary.SlotsAssigned = info.SlotsAssigned

	if info.State != "ok" {
		return errors.Errorf("cluster state is %q", info.State)
	}
	if info.SlotsAssigned < keyslot.NumSlots {
		return errors.Errorf("only %d of %d slots assigned", info.SlotsAssigned, keyslot.NumSlots)
	}
	return nil
}

func (p *prober) clusterNodes(ctx context.Context, summary *ClusterSummary, report *Report) error {
	opCtx, cancel := p.opCtx(ctx)
	defer cancel()

	raw, err := p.client.ClusterNodes(opCtx).Result()
	if err != nil {
		return errors.Wrap(err, "cluster nodes")
	}
	nodes, err := ParseClusterNodes(raw)
	if err != nil {
		return err
	}

	for _, node := range nodes {
		switch node.Role {
		case RoleMaster:
			summary.Masters++
		case RoleReplica:
			summary.Replicas++
		}
		if node.PrivateHost {
			summary.PrivateNodes++
		}
	}

	table, err := NewSlotTable(nodes)
	if err != nil {
		return err
	}
	summary.SlotsCovered = table.Coverage()
	summary.Gaps = table.Gaps()

	for i := range report.Placements {
		if node, ok := table.Lookup(report.Placements[i].Slot); ok {
			report.Placements[i].Node = node.Address.String()
		}
	}

	if len(summary.Gaps) > 0 {
		return errors.Errorf("%d slot ranges are unassigned", len(summary.Gaps))
	}
	return nil
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
