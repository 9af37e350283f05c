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
	"github.com/AleutianAI/SceneLink/pkg/logging"
	"github.com/AleutianAI/SceneLink/services/viewer"
)

// Config is the config.yaml schema shared by all subcommands.
type Config struct {
	Relay struct {
		// Listen is the relay's listen address (scenelink relay).
		Listen string `yaml:"listen"`
		// URL is the relay websocket endpoint clients dial.
		URL string `yaml:"url"`
	} `yaml:"relay"`

	Channels struct {
		Request  string `yaml:"request"`
		Response string `yaml:"response"`
	} `yaml:"channels"`

	Log struct {
		Level string `yaml:"level"` // debug | info | warn | error
		Dir   string `yaml:"dir"`   // empty disables file logging
		JSON  bool   `yaml:"json"`
	} `yaml:"log"`

	Viewer struct {
		PublishImmediately bool `yaml:"publish_immediately"`
	} `yaml:"viewer"`
}

func defaultConfig() Config {
	var c Config
	c.Relay.Listen = ":8085"
	c.Relay.URL = "ws://localhost:8085/ws"
	c.Channels.Request = viewer.DefaultRequestChannel
	c.Channels.Response = viewer.DefaultResponseChannel
	c.Log.Level = "info"
	c.Viewer.PublishImmediately = true
	return c
}

// newLogger builds a logger for the given component from the loaded
// config.
func newLogger(service string) *logging.Logger {
	return logging.New(logging.Config{
		Level:   logging.ParseLevel(config.Log.Level),
		LogDir:  config.Log.Dir,
		Service: service,
		JSON:    config.Log.JSON,
	})
}
