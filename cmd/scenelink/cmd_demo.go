// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/SceneLink/services/viewer"
	"github.com/AleutianAI/SceneLink/services/viewer/transport"
)

// runDemo drives a small sample scene through the relay: a row of
// colored boxes, a nested group that gets animated, and a geometry
// reload that demonstrates transform continuity.
func runDemo(cmd *cobra.Command, args []string) {
	logger := newLogger("cli")
	defer logger.Close()

	tp, err := transport.DialWebSocket(cmd.Context(), config.Relay.URL, logger)
	if err != nil {
		logger.Error("cannot reach relay", "url", config.Relay.URL, "error", err)
		os.Exit(1)
	}
	defer tp.Close()

	vis := viewer.NewVisualizer(viewer.Options{
		Path:      "/scenelink/demo",
		Transport: tp,
		Logger:    logger,
	})
	core := vis.Core()
	core.SetChannels(config.Channels.Request, config.Channels.Response)
	core.SetPublishImmediately(config.Viewer.PublishImmediately)

	// Handle viewer responses so a restarted renderer gets the scene back.
	if err := vis.StartListener(); err != nil {
		logger.Error("cannot start response listener", "error", err)
		os.Exit(1)
	}

	if err := demoScene(vis); err != nil {
		logger.Error("demo failed", "error", err)
		os.Exit(1)
	}

	// Batched mode needs one final flush.
	if err := core.Publish(); err != nil {
		logger.Error("final publish failed", "error", err)
		os.Exit(1)
	}
	logger.Info("demo complete", "paths", len(core.Paths()))
}

func demoScene(vis *viewer.Visualizer) error {
	// A row of boxes, each with a random color and its own offset.
	items := make([]viewer.GeometryLike, 0, 10)
	for x := 0; x < 10; x++ {
		g := viewer.NewGeometryData(viewer.Box{Lengths: [3]float64{1, 1, 1}})
		g.Color = [4]float64{rand.Float64(), rand.Float64(), rand.Float64(), 1}
		g.Transform = mgl64.Translate3D(float64(x), -2, 0)
		items = append(items, g)
	}
	if _, err := vis.At("boxes").Load(items...); err != nil {
		return err
	}

	group := vis.At("group1")

	greenBox := viewer.NewGeometryData(viewer.Box{Lengths: [3]float64{1, 1, 1}})
	greenBox.Color = [4]float64{0, 1, 0, 0.5}
	if _, err := group.At("box").Load(greenBox); err != nil {
		return err
	}

	sphere := group.At("sphere")
	if _, err := sphere.Load(viewer.Sphere{Radius: 0.5}); err != nil {
		return err
	}
	if err := sphere.Draw(mgl64.Translate3D(1, 0, 0)); err != nil {
		return err
	}

	test := group.At("test")
	if _, err := test.Load(viewer.Triad{}); err != nil {
		return err
	}
	if err := test.Draw(mgl64.HomogRotate3DZ(1.0).Mul4(mgl64.Translate3D(-1, 0, 1))); err != nil {
		return err
	}
	// Reloading keeps the transform from the last draw.
	if _, err := test.Load(viewer.Triad{}); err != nil {
		return err
	}

	// Spin the whole group once around Z.
	for i := 0; i < 100; i++ {
		theta := 2 * math.Pi * float64(i) / 99
		if err := group.Draw(mgl64.HomogRotate3DZ(theta)); err != nil {
			return err
		}
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}
