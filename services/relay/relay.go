// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package relay implements the SceneLink pub/sub broker.
//
// The relay is deliberately dumb fabric: it accepts websocket
// connections, lets each connection subscribe to named channels, and
// fans published frames out to every other subscriber of the channel.
// It never inspects scene payloads, so the renderer on the other side
// of it stays a free agent. Delivery is best effort: a slow or dead
// subscriber just misses frames, which is exactly the contract the
// viewer engine is built to survive.
package relay

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/SceneLink/pkg/logging"
	"github.com/AleutianAI/SceneLink/services/viewer/transport"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024 * 1024,
	WriteBufferSize: 1024 * 1024,
}

// client is one websocket connection. Writes are serialized per
// connection; gorilla allows only one concurrent writer.
type client struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) send(f transport.Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(f)
}

// Relay is the broker state: which connection is subscribed to which
// channel.
//
// Thread Safety: safe for concurrent use.
type Relay struct {
	mu   sync.RWMutex
	subs map[string]map[string]*client // channel -> conn id -> client
	log  *logging.Logger
}

// New creates an empty relay. A nil logger gets logging.Default().
func New(log *logging.Logger) *Relay {
	if log == nil {
		log = logging.Default()
	}
	return &Relay{
		subs: make(map[string]map[string]*client),
		log:  log,
	}
}

// Router builds the HTTP surface: /ws for the broker itself, /healthz,
// and /metrics (Prometheus).
func (r *Relay) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", r.handleWS)
	return router
}

// Run serves the relay on addr until ctx is cancelled, then shuts down
// gracefully.
func (r *Relay) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r.log.Info("relay listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// handleWS upgrades the connection and runs its read loop until the
// peer goes away.
func (r *Relay) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		r.log.Error("websocket upgrade failed", "error", err)
		return
	}
	cl := &client{id: uuid.New().String(), conn: conn}
	log := r.log.With("conn_id", cl.id)
	log.Info("client connected")
	connectionsActive.Inc()

	defer func() {
		r.dropClient(cl)
		_ = conn.Close()
		connectionsActive.Dec()
		log.Info("client disconnected")
	}()

	for {
		var f transport.Frame
		if err := conn.ReadJSON(&f); err != nil {
			return
		}
		switch f.Op {
		case transport.OpSubscribe:
			r.subscribe(f.Channel, cl)
			log.Info("subscribed", "channel", f.Channel)
		case transport.OpPublish:
			n := r.fanout(f, cl.id)
			messagesTotal.WithLabelValues(f.Channel).Inc()
			log.Debug("published", "channel", f.Channel, "bytes", len(f.Data), "delivered", n)
		default:
			log.Warn("ignoring unknown frame op", "op", f.Op)
		}
	}
}

func (r *Relay) subscribe(channel string, cl *client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.subs[channel] == nil {
		r.subs[channel] = make(map[string]*client)
	}
	r.subs[channel][cl.id] = cl
}

// fanout delivers f to every subscriber of its channel except the
// sender, returning how many deliveries succeeded. Failed writes drop
// the frame for that subscriber only.
func (r *Relay) fanout(f transport.Frame, senderID string) int {
	r.mu.RLock()
	targets := make([]*client, 0, len(r.subs[f.Channel]))
	for id, cl := range r.subs[f.Channel] {
		if id != senderID {
			targets = append(targets, cl)
		}
	}
	r.mu.RUnlock()

	delivered := 0
	for _, cl := range targets {
		if err := cl.send(f); err != nil {
			r.log.Warn("dropping frame for subscriber", "conn_id", cl.id, "channel", f.Channel, "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

func (r *Relay) dropClient(cl *client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for channel, clients := range r.subs {
		delete(clients, cl.id)
		if len(clients) == 0 {
			delete(r.subs, channel)
		}
	}
}
