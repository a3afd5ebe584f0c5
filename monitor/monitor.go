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

// Package monitor probes a Redis Cluster on a fixed interval and exposes the
// outcomes as Prometheus metrics.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"

	"github.com/streamnative/slotgate/common/metrics"
	"github.com/streamnative/slotgate/common/process"
	"github.com/streamnative/slotgate/probe"
	"github.com/streamnative/slotgate/slotgate"
)

type Config struct {
	// Endpoint is the public address of the cluster to watch.
	Endpoint string

	MetricsServiceAddr string

	ClientOptions []slotgate.ClientOption

	// SettingsProvider loads the current probe settings. It is called once
	// at startup and again for every change notification.
	SettingsProvider func() (Settings, error)

	// SettingsChangeNotifications triggers a settings reload. Optional.
	SettingsChangeNotifications chan any
}

func NewConfig() Config {
	return Config{
		MetricsServiceAddr: "0.0.0.0:8080",
	}
}

type Monitor struct {
	config Config
	client redis.UniversalClient
	logger *slog.Logger

	mu       sync.Mutex
	settings Settings

	metrics *metrics.PrometheusMetrics

	probesHealthy   metrics.Counter
	probesUnhealthy metrics.Counter
	stepLatency     map[string]metrics.LatencyHistogram
	slotsCovered    atomic.Int64

	cancel context.CancelFunc
	done   chan struct{}
}

func New(config Config) (*Monitor, error) {
	if config.Endpoint == "" {
		return nil, errors.New("Endpoint must be non-empty")
	}
	if config.SettingsProvider == nil {
		return nil, errors.New("SettingsProvider must be set")
	}

	settings, err := config.SettingsProvider()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load settings")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	slog.Info(
		"Starting cluster monitor",
		slog.String("endpoint", config.Endpoint),
		slog.Duration("interval", settings.Interval),
	)

	client, err := slotgate.NewClusterClient(config.Endpoint, config.ClientOptions...)
	if err != nil {
		return nil, err
	}

	m := &Monitor{
		config:   config,
		client:   client,
		settings: settings,
		logger:   slog.With(slog.String("component", "monitor")),

		probesHealthy: metrics.NewCounter("slotgate_monitor_probes",
			"Completed probe runs", metrics.Dimensionless, map[string]any{"result": "healthy"}),
		probesUnhealthy: metrics.NewCounter("slotgate_monitor_probes",
			"Completed probe runs", metrics.Dimensionless, map[string]any{"result": "unhealthy"}),
		stepLatency: map[string]metrics.LatencyHistogram{},

		done: make(chan struct{}),
	}

	for _, step := range probe.StepNames {
		m.stepLatency[step] = metrics.NewLatencyHistogram("slotgate_monitor_step_latency",
			"Latency of the probe steps", map[string]any{"step": step})
	}
	metrics.NewGauge("slotgate_monitor_slots_covered",
		"Slots owned by a master in the last probe", metrics.Dimensionless, nil,
		m.slotsCovered.Load)

	m.metrics, err = metrics.Start(config.MetricsServiceAddr)
	if err != nil {
		return nil, multierr.Append(err, client.Close())
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go process.DoWithLabels(ctx, map[string]string{
		"slotgate": "monitor",
	}, func() {
		m.run(ctx)
	})

	return m, nil
}

// MetricsPort returns the port the metrics endpoint is bound to.
func (m *Monitor) MetricsPort() int {
	return m.metrics.Port()
}

func (m *Monitor) Close() error {
	m.cancel()
	<-m.done

	return multierr.Combine(
		m.metrics.Close(),
		m.client.Close(),
	)
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	for {
		m.runProbe(ctx)

		select {
		case <-ctx.Done():
			return
		case <-m.config.SettingsChangeNotifications:
			m.reload()
		case <-time.After(m.currentSettings().Interval):
		}
	}
}

func (m *Monitor) runProbe(ctx context.Context) {
	settings := m.currentSettings()

	report, err := probe.Run(ctx, m.client, settings.probeConfig(m.config.Endpoint))
	if ctx.Err() != nil {
		// The run was cut short by shutdown, its outcome means nothing.
		return
	}

	switch {
	case err == nil:
		m.probesHealthy.Inc()
		m.logger.Info(
			"Cluster is healthy",
			slog.Float64("elapsed-ms", report.ElapsedMs),
		)
	case errors.Is(err, probe.ErrProbeFailed):
		m.probesUnhealthy.Inc()
		m.logger.Warn(
			"Cluster is unhealthy",
			slog.Float64("elapsed-ms", report.ElapsedMs),
		)
	default:
		m.logger.Error("Failed to run probe", slog.Any("error", err))
		return
	}

	for _, step := range report.Steps {
		if step.Status != probe.StatusOK {
			continue
		}
		if histo, ok := m.stepLatency[step.Name]; ok {
			histo.Record(step.LatencyMs)
		}
	}

	if report.Cluster != nil {
		m.slotsCovered.Store(int64(report.Cluster.SlotsCovered))
	}
}

func (m *Monitor) reload() {
	settings, err := m.config.SettingsProvider()
	if err != nil {
		m.logger.Warn("Failed to reload settings, keeping the current ones", slog.Any("error", err))
		return
	}
	if err := settings.Validate(); err != nil {
		m.logger.Warn("Reloaded settings are invalid, keeping the current ones", slog.Any("error", err))
		return
	}

	m.mu.Lock()
	m.settings = settings
	m.mu.Unlock()

	m.logger.Info("Reloaded settings", slog.Duration("interval", settings.Interval))
}

func (m *Monitor) currentSettings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}
