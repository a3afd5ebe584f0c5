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
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func sampleReport() *Report {
	return &Report{
		Endpoint:  "cache.example.net:6380",
		StartedAt: time.Date(2025, 8, 25, 10, 30, 0, 0, time.UTC),
		ElapsedMs: 12.5,
		Healthy:   false,
		Steps: []StepResult{
			{Name: StepPing, Status: StatusOK, LatencyMs: 1.2},
			{Name: StepWrite, Status: StatusFailed, LatencyMs: 9.1, Error: "set failed"},
			{Name: StepRead, Status: StatusSkipped},
		},
		Placements: []KeyPlacement{
			{Key: "slotgate:probe:{slot0}:1", Slot: 8224, Shard: 1, Node: "10.0.0.3:6379"},
		},
		Cluster: &ClusterSummary{
			State:         "ok",
			SlotsAssigned: 16384,
			SlotsCovered:  10922,
			Masters:       3,
			Replicas:      3,
			PrivateNodes:  6,
			Gaps:          []SlotRange{{Start: 5461, End: 10922}},
		},
	}
}

func TestReportWriteJSON(t *testing.T) {
	report := sampleReport()

	var buf bytes.Buffer
	assert.NoError(t, report.Write(&buf, FormatJSON))

	var decoded Report
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, report.Endpoint, decoded.Endpoint)
	assert.True(t, decoded.StartedAt.Equal(report.StartedAt))
	assert.Equal(t, report.Steps, decoded.Steps)
	assert.Equal(t, report.Placements, decoded.Placements)
	assert.Equal(t, report.Cluster, decoded.Cluster)
	assert.False(t, decoded.Healthy)
}

func TestReportWriteYAML(t *testing.T) {
	report := sampleReport()

	var buf bytes.Buffer
	assert.NoError(t, report.Write(&buf, FormatYAML))

	var decoded Report
	assert.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, report.Endpoint, decoded.Endpoint)
	assert.Equal(t, report.Steps, decoded.Steps)
	assert.Equal(t, report.Placements, decoded.Placements)
	assert.Equal(t, report.Cluster, decoded.Cluster)
}

func TestReportWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := sampleReport().Write(&buf, "xml")
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestReportStep(t *testing.T) {
	report := sampleReport()

	step, ok := report.Step(StepWrite)
	assert.True(t, ok)
	assert.Equal(t, StatusFailed, step.Status)
	assert.Equal(t, "set failed", step.Error)

	_, ok = report.Step(StepCleanup)
	assert.False(t, ok)
}
