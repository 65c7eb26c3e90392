/*
 * Copyright 2021 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package prometheus provides a Prometheus metrics exporter.
package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/yorkie-team/coedit/internal/version"
)

const (
	namespace      = "coedit"
	eventTypeLabel = "event_type"
	reasonLabel    = "reason"
	taskTypeLabel  = "task_type"
)

// Metrics manages the metric information that coedit is trying to measure.
type Metrics struct {
	registry *prometheus.Registry

	serverVersion *prometheus.GaugeVec

	connectionsTotal prometheus.Gauge
	roomsTotal       prometheus.Gauge
	presencesTotal   prometheus.Gauge

	receivedEventsTotal *prometheus.CounterVec
	sentEventsTotal     *prometheus.CounterVec
	droppedEventsTotal  *prometheus.CounterVec

	evictionsTotal       prometheus.Counter
	sweepDurationSeconds prometheus.Histogram

	backgroundGoroutinesTotal *prometheus.GaugeVec
}

// NewMetrics creates a new instance of Metrics.
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("register process collector: %w", err)
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}

	metrics := &Metrics{
		registry: reg,
		serverVersion: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "version",
			Help:      "Which version is running. 1 for 'server_version' label with current version.",
		}, []string{"server_version"}),
		connectionsTotal: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "connections_total",
			Help:      "The number of open websocket sessions.",
		}),
		roomsTotal: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "rooms_total",
			Help:      "The number of rooms held in memory.",
		}),
		presencesTotal: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "presences_total",
			Help:      "The number of presences across all rooms.",
		}),
		receivedEventsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "received_total",
			Help:      "The total number of inbound events accepted for processing.",
		}, []string{eventTypeLabel}),
		sentEventsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "sent_total",
			Help:      "The total number of outbound events enqueued to sessions.",
		}, []string{eventTypeLabel}),
		droppedEventsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "dropped_total",
			Help:      "The total number of dropped events by reason.",
		}, []string{reasonLabel}),
		evictionsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "evictions_total",
			Help:      "The total number of presences evicted for inactivity.",
		}),
		sweepDurationSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "duration_seconds",
			Help:      "The time spent by the hub on one sweep.",
		}),
		backgroundGoroutinesTotal: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "background",
			Name:      "goroutines_total",
			Help:      "The total number of goroutines attached by a particular background task.",
		}, []string{taskTypeLabel}),
	}

	metrics.serverVersion.With(prometheus.Labels{
		"server_version": version.Version,
	}).Set(1)

	return metrics, nil
}

// SetHubStats sets the number of sessions, rooms and presences.
func (m *Metrics) SetHubStats(connections, rooms, presences int) {
	m.connectionsTotal.Set(float64(connections))
	m.roomsTotal.Set(float64(rooms))
	m.presencesTotal.Set(float64(presences))
}

// AddReceivedEvents increases the number of inbound events of the type.
func (m *Metrics) AddReceivedEvents(eventType string) {
	m.receivedEventsTotal.With(prometheus.Labels{
		eventTypeLabel: eventType,
	}).Inc()
}

// AddSentEvents increases the number of outbound events of the type.
func (m *Metrics) AddSentEvents(eventType string, count int) {
	m.sentEventsTotal.With(prometheus.Labels{
		eventTypeLabel: eventType,
	}).Add(float64(count))
}

// AddDroppedEvents increases the number of events dropped for the reason.
func (m *Metrics) AddDroppedEvents(reason string) {
	m.droppedEventsTotal.With(prometheus.Labels{
		reasonLabel: reason,
	}).Inc()
}

// AddEvictions increases the number of evicted presences.
func (m *Metrics) AddEvictions(count int) {
	m.evictionsTotal.Add(float64(count))
}

// ObserveSweepDurationSeconds adds an observation for the duration of a sweep.
func (m *Metrics) ObserveSweepDurationSeconds(seconds float64) {
	m.sweepDurationSeconds.Observe(seconds)
}

// AddBackgroundGoroutines adds the number of goroutines attached by a
// particular background task.
func (m *Metrics) AddBackgroundGoroutines(taskType string) {
	m.backgroundGoroutinesTotal.With(prometheus.Labels{
		taskTypeLabel: taskType,
	}).Inc()
}

// RemoveBackgroundGoroutines removes the number of goroutines attached by a
// particular background task.
func (m *Metrics) RemoveBackgroundGoroutines(taskType string) {
	m.backgroundGoroutinesTotal.With(prometheus.Labels{
		taskTypeLabel: taskType,
	}).Dec()
}

// Registry returns the registry of this metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
