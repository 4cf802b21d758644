// Copyright 2025 Poiesic Systems
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

package ingestion

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stage outcomes recorded in clausewise_stage_total.
const (
	outcomeRun   = "run"
	outcomeSkip  = "skip"
	outcomeError = "error"
)

// Metrics holds the pipeline's Prometheus collectors.
// A nil *Metrics records nothing.
type Metrics struct {
	stages          *prometheus.CounterVec
	durations       *prometheus.HistogramVec
	sectionFailures prometheus.Counter
	droppedClauses  prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		stages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clausewise",
			Name:      "stage_total",
			Help:      "Pipeline stage executions by stage and outcome.",
		}, []string{"stage", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clausewise",
			Name:      "stage_duration_seconds",
			Help:      "Duration of executed pipeline stages.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"stage"}),
		sectionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clausewise",
			Name:      "section_extraction_failures_total",
			Help:      "Sections whose clause extraction failed and were skipped.",
		}),
		droppedClauses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clausewise",
			Name:      "dropped_clauses_total",
			Help:      "Extracted clause candidates rejected by validation.",
		}),
	}

	for _, c := range []prometheus.Collector{m.stages, m.durations, m.sectionFailures, m.droppedClauses} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeStage(stage Stage, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.stages.WithLabelValues(stage.String(), outcome).Inc()
	if outcome != outcomeSkip {
		m.durations.WithLabelValues(stage.String()).Observe(elapsed.Seconds())
	}
}

func (m *Metrics) sectionFailed() {
	if m == nil {
		return
	}
	m.sectionFailures.Inc()
}

func (m *Metrics) clausesDropped(n int) {
	if m == nil || n == 0 {
		return
	}
	m.droppedClauses.Add(float64(n))
}
