// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package viewer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Publish and response metrics.
var (
	// publishTotal counts publishes by result
	publishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenelink_viewer_publish_total",
		Help: "Total publish attempts by result",
	}, []string{"result"})

	// publishBytes tracks serialized message size
	publishBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scenelink_viewer_publish_bytes",
		Help:    "Serialized size of published messages in bytes",
		Buckets: prometheus.ExponentialBuckets(64, 4, 8), // 64B to ~1MB
	})

	// publishPaths tracks how many paths one publish carried
	publishPaths = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scenelink_viewer_publish_paths",
		Help:    "Number of path records per published message",
		Buckets: []float64{1, 2, 5, 10, 50, 100, 500},
	})

	// responsesTotal counts inbound responses by status
	responsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenelink_viewer_responses_total",
		Help: "Total viewer responses by status",
	}, []string{"status"})

	// resyncTotal counts remote-initiated full resyncs
	resyncTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scenelink_viewer_resync_total",
		Help: "Total full-tree resyncs requested by the remote viewer",
	})
)
