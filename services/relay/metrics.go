// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// connectionsActive tracks currently connected websocket clients
	connectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scenelink_relay_connections_active",
		Help: "Currently connected websocket clients",
	})

	// messagesTotal counts published frames by channel
	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenelink_relay_messages_total",
		Help: "Total published frames by channel",
	}, []string{"channel"})
)
