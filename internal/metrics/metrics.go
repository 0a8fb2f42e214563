// Copyright 2025 Tom Barlow
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

// Package metrics holds the Prometheus collectors for the shared client.
package metrics

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

var (
	// poolLeasesInUse tracks leases currently held across all pools
	poolLeasesInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "authpool_pool_leases_in_use",
			Help: "Number of pooled connection leases currently held",
		},
	)

	// poolAcquireTimeouts tracks lease requests that gave up waiting
	poolAcquireTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "authpool_pool_acquire_timeouts_total",
			Help: "Total pool lease requests that timed out",
		},
	)

	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authpool_requests_total",
			Help: "Total outbound requests by method and status code",
		},
		[]string{"method", "code"},
	)

	clientConstructions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authpool_client_constructions_total",
			Help: "Total shared client construction attempts by result",
		},
		[]string{"result"},
	)
)

// Construction results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// LeaseAcquired increments the in-use lease gauge.
func LeaseAcquired() {
	poolLeasesInUse.Inc()
}

// LeaseReleased decrements the in-use lease gauge.
func LeaseReleased() {
	poolLeasesInUse.Dec()
}

// RecordAcquireTimeout increments the acquire timeout counter.
func RecordAcquireTimeout() {
	poolAcquireTimeouts.Inc()
}

// RecordRequest counts a completed round trip. A status of 0 means the
// round trip failed without a response.
func RecordRequest(method string, status int) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	requestsTotal.WithLabelValues(method, code).Inc()
}

// RecordConstruction counts a shared client construction attempt.
// result should be ResultSuccess or ResultFailure.
func RecordConstruction(result string) {
	clientConstructions.WithLabelValues(result).Inc()
}

// Write encodes the authpool_* families from the default registry to w in
// the Prometheus text format.
func Write(w io.Writer) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "authpool_") {
			continue
		}
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encoding %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
