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

// Package perf generates a sustained GET/SET workload against a Redis
// Cluster and reports latency percentiles.
package perf

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/xxh3"
	"golang.org/x/time/rate"

	"github.com/bmizerany/perks/quantile"

	"github.com/streamnative/slotgate/slotgate"
	"github.com/streamnative/slotgate/slotgate/keyslot"
)

type Config struct {
	Endpoint        string
	RequestRate     float64
	ReadPercentage  float64
	KeysCardinality uint32
	ValueSize       uint32
	NumShards       int
	Verify          bool

	ClientOptions []slotgate.ClientOption
}

type Perf interface {
	Run(context.Context)
}

func New(config Config) Perf {
	return &perf{
		config: config,
	}
}

type perf struct {
	config    Config
	keys      []string
	failedOps atomic.Int64

	totalWrites atomic.Int64
	totalReads  atomic.Int64
	totalBytes  atomic.Int64
}

func (p *perf) Run(ctx context.Context) {
	log.Info().
		Interface("config", p.config).
		Msg("Starting perf client")

	if p.config.NumShards < 1 {
		log.Fatal().Msg("Shards must be at least 1")
	}
	if p.config.Verify && p.config.ValueSize < 8 {
		log.Fatal().Msg("Value size must be at least 8 when verification is enabled")
	}

	p.keys = buildKeys(p.config.KeysCardinality, p.config.NumShards)

	client, err := slotgate.NewClusterClient(p.config.Endpoint, p.config.ClientOptions...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create cluster client")
	}
	defer client.Close()

	writeLatencyCh := make(chan int64)
	go p.generateWriteTraffic(ctx, client, writeLatencyCh)

	readLatencyCh := make(chan int64)
	go p.generateReadTraffic(ctx, client, readLatencyCh)

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	wq := quantile.NewTargeted(0.50, 0.95, 0.99, 0.999, 1.0)
	rq := quantile.NewTargeted(0.50, 0.95, 0.99, 0.999, 1.0)
	writeOps := 0
	readOps := 0

	for {
		select {
		case <-ticker.C:
			writeRate := float64(writeOps) / float64(10)
			readRate := float64(readOps) / float64(10)
			failedOpsRate := float64(p.failedOps.Swap(0)) / float64(10)
			log.Info().Msgf(`Stats - Total ops: %6.1f ops/s - Failed ops: %6.1f ops/s
			Write ops %6.1f w/s  Latency ms: 50%% %5.1f - 95%% %5.1f - 99%% %5.1f - 99.9%% %5.1f - max %6.1f
			Read  ops %6.1f r/s  Latency ms: 50%% %5.1f - 95%% %5.1f - 99%% %5.1f - 99.9%% %5.1f - max %6.1f`,
				writeRate+readRate,
				failedOpsRate,
				writeRate,
				wq.Query(0.5),
				wq.Query(0.95),
				wq.Query(0.99),
				wq.Query(0.999),
				wq.Query(1.0),
				readRate,
				rq.Query(0.5),
				rq.Query(0.95),
				rq.Query(0.99),
				rq.Query(0.999),
				rq.Query(1.0),
			)

			wq.Reset()
			rq.Reset()
			writeOps = 0
			readOps = 0

		case wl := <-writeLatencyCh:
			writeOps++
			wq.Insert(float64(wl) / 1000.0) // Convert to millis

		case rl := <-readLatencyCh:
			readOps++
			rq.Insert(float64(rl) / 1000.0) // Convert to millis

		case <-ctx.Done():
			log.Info().
				Str("writes", humanize.Comma(p.totalWrites.Load())).
				Str("reads", humanize.Comma(p.totalReads.Load())).
				Str("data", humanize.IBytes(uint64(p.totalBytes.Load()))).
				Msg("Perf client stopped")
			return
		}
	}
}

func (p *perf) generateWriteTraffic(ctx context.Context, client *redis.ClusterClient, latencyCh chan int64) {
	writeRate := p.config.RequestRate * (100.0 - p.config.ReadPercentage) / 100
	limiter := rate.NewLimiter(rate.Limit(writeRate), int(writeRate))

	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		key := p.keys[rand.Intn(int(p.config.KeysCardinality))]
		value := payload(key, int(p.config.ValueSize))

		start := time.Now()
		go func() {
			err := client.Set(ctx, key, value, 0).Err()
			if err != nil {
				if ctx.Err() == nil {
					log.Warn().Err(err).
						Str("key", key).
						Msg("Operation has failed")
					p.failedOps.Add(1)
				}
				return
			}

			log.Debug().
				Str("key", key).
				Msg("Operation has succeeded")

			p.totalWrites.Add(1)
			p.totalBytes.Add(int64(len(value)))
			select {
			case latencyCh <- time.Since(start).Microseconds():
			case <-ctx.Done():
			}
		}()
	}
}

func (p *perf) generateReadTraffic(ctx context.Context, client *redis.ClusterClient, latencyCh chan int64) {
	readRate := p.config.RequestRate * p.config.ReadPercentage / 100
	limiter := rate.NewLimiter(rate.Limit(readRate), int(readRate))

	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		key := p.keys[rand.Intn(int(p.config.KeysCardinality))]

		start := time.Now()
		go func() {
			value, err := client.Get(ctx, key).Bytes()
			switch {
			case errors.Is(err, redis.Nil):
				// The key has not been written yet.
			case err != nil:
				if ctx.Err() == nil {
					log.Warn().Err(err).
						Str("key", key).
						Msg("Operation has failed")
					p.failedOps.Add(1)
				}
				return
			case p.config.Verify:
				if err := validatePayload(key, value, int(p.config.ValueSize)); err != nil {
					log.Warn().Err(err).
						Str("key", key).
						Msg("Read back a corrupted value")
					p.failedOps.Add(1)
					return
				}
			}

			log.Debug().
				Str("key", key).
				Msg("Operation has succeeded")

			p.totalReads.Add(1)
			p.totalBytes.Add(int64(len(value)))
			select {
			case latencyCh <- time.Since(start).Microseconds():
			case <-ctx.Done():
			}
		}()
	}
}

// buildKeys spreads the keyspace over every expected shard by cycling
// through one hash tag per shard.
func buildKeys(cardinality uint32, numShards int) []string {
	tags := keyslot.FindTags(numShards, 1)
	keys := make([]string, cardinality)
	for i := uint32(0); i < cardinality; i++ {
		tag := tags[int(i)%numShards][0]
		keys[i] = fmt.Sprintf("slotgate:perf:{%s}:key-%d", tag, i)
	}
	return keys
}

// payload builds the value stored under key. The first 8 bytes carry the
// xxh3 hash of the key, so a read can detect a value served from the wrong
// slot.
func payload(key string, size int) []byte {
	value := make([]byte, size)
	if size >= 8 {
		binary.BigEndian.PutUint64(value, xxh3.HashString(key))
	}
	return value
}

func validatePayload(key string, value []byte, size int) error {
	if len(value) != size {
		return errors.Errorf("value has %d bytes, expected %d", len(value), size)
	}
	if binary.BigEndian.Uint64(value) != xxh3.HashString(key) {
		return errors.New("value does not match its key")
	}
	return nil
}
