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

package metrics

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	attrsRemapped    = metric.WithAttributes(attribute.String("result", "remapped"))
	attrsPassthrough = metric.WithAttributes(attribute.String("result", "passthrough"))
)

// Metrics counts the remap decisions taken for discovered node addresses.
// All methods are safe for concurrent use.
type Metrics struct {
	remaps metric.Int64Counter
}

func NewMetrics(provider metric.MeterProvider) *Metrics {
	meter := provider.Meter("slotgate_client")
	return &Metrics{
		remaps: newCounter(meter, "slotgate_client_remap",
			"Node addresses inspected by the address remapper"),
	}
}

func (m *Metrics) Remapped() {
	m.remaps.Add(context.TODO(), 1, attrsRemapped)
}

func (m *Metrics) Passthrough() {
	m.remaps.Add(context.TODO(), 1, attrsPassthrough)
}

func newCounter(meter metric.Meter, name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	fatalOnErr(err, name)
	return counter
}

func fatalOnErr(err error, name string) {
	if err != nil {
		logger := log.With().Str("component", "slotgate-client").Logger()
		logger.Fatal().Err(err).Msgf("Failed to create metric: %s", name)
	}
}
