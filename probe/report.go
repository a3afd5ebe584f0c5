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
	"encoding/json"
	"io"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// StepStatus is the outcome of a single probe step.
type StepStatus string

const (
	StatusOK      StepStatus = "ok"
	StatusFailed  StepStatus = "failed"
	StatusSkipped StepStatus = "skipped"
)

// Output formats accepted by Report.Write.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// StepResult records the outcome and latency of one probe step.
type StepResult struct {
	Name      string     `json:"name" yaml:"name"`
	Status    StepStatus `json:"status" yaml:"status"`
	LatencyMs float64    `json:"latency_ms" yaml:"latency_ms"`
	Error     string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// KeyPlacement records where one scratch key landed in the cluster.
type KeyPlacement struct {
	Key   string `json:"key" yaml:"key"`
	Slot  uint16 `json:"slot" yaml:"slot"`
	Shard int    `json:"shard" yaml:"shard"`
	Node  string `json:"node,omitempty" yaml:"node,omitempty"`
}

// ClusterSummary condenses the CLUSTER INFO and CLUSTER NODES findings.
type ClusterSummary struct {
	State         string      `json:"state" yaml:"state"`
	SlotsAssigned int         `json:"slots_assigned" yaml:"slots_assigned"`
	SlotsCovered  int         `json:"slots_covered" yaml:"slots_covered"`
	Masters       int         `json:"masters" yaml:"masters"`
	Replicas      int         `json:"replicas" yaml:"replicas"`
	PrivateNodes  int         `json:"private_nodes" yaml:"private_nodes"`
	Gaps          []SlotRange `json:"gaps,omitempty" yaml:"gaps,omitempty"`
}

// Report is the full result of one probe run.
type Report struct {
	Endpoint   string          `json:"endpoint" yaml:"endpoint"`
	StartedAt  time.Time       `json:"started_at" yaml:"started_at"`
	ElapsedMs  float64         `json:"elapsed_ms" yaml:"elapsed_ms"`
	Healthy    bool            `json:"healthy" yaml:"healthy"`
	Steps      []StepResult    `json:"steps" yaml:"steps"`
	Placements []KeyPlacement  `json:"placements,omitempty" yaml:"placements,omitempty"`
	Cluster    *ClusterSummary `json:"cluster,omitempty" yaml:"cluster,omitempty"`
}

// Step returns the result recorded under name, or false if the step did not
// run.
func (r *Report) Step(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// Write serializes the report to w in the requested format.
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case FormatYAML:
		data, err := yaml.Marshal(r)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return errors.Errorf("unknown report format %q", format)
	}
}
