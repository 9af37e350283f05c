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
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "scenelink",
		Short: "A cli for the SceneLink scene-graph synchronization stack",
		Long: `SceneLink keeps a client-side 3D scene tree and replicates it to a
remote renderer over a pub/sub relay, with automatic full resync when
the renderer restarts.`,
	}

	relayCmd = &cobra.Command{
		Use:   "relay",
		Short: "Run the pub/sub relay broker",
		Run:   runRelay, // Defined in cmd_relay.go
	}

	demoCmd = &cobra.Command{
		Use:   "demo",
		Short: "Drive a sample scene through a running relay",
		Run:   runDemo, // Defined in cmd_demo.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")
	rootCmd.AddCommand(relayCmd)
	rootCmd.AddCommand(demoCmd)
}
