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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/SceneLink/services/relay"
)

// runRelay serves the broker until SIGINT/SIGTERM.
func runRelay(cmd *cobra.Command, args []string) {
	logger := newLogger("relay")
	defer logger.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := relay.New(logger)
	if err := r.Run(ctx, config.Relay.Listen); err != nil {
		logger.Error("relay exited", "error", err)
		os.Exit(1)
	}
	logger.Info("relay stopped")
}
