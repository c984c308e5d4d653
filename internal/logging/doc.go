// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

/*
Package logging configures the process-wide zerolog.Logger that
cmd/server bootstraps before constructing any component, and adapts it
to slog.Logger for the suture supervision tree's event hook.

# Quick Start

	logging.Init(logging.Config{Level: "info", Format: "json"})
	log := logging.Logger().With().Str("service", "corvid").Logger()
	log.Info().Str("env", env).Msg("server starting")

The recoservice and updater components take a zerolog.Logger by
constructor injection rather than reaching into this package directly;
the supervisor tree takes the slog.Logger built by NewSlogLoggerWithLevel
(below), and vectorstore logs through this package's global Warn. This
package exists to build that one root logger and configure zerolog's
global field names and level.

# Configuration

	Level   - trace, debug, info, warn, error, fatal, panic (default: info)
	Format  - json or console (default: json)
	Caller  - include caller file:line (default: false)

# slog Adapter

	slogLogger := logging.NewSlogLoggerWithLevel(cfg.Logging.Level)
	tree, _ := supervisor.NewSupervisorTree(slogLogger, ...)

suture.Supervisor wants an slog.Logger for its event stream; slog_adapter.go
routes those records through the same zerolog.Logger so supervision
events land in the same JSON stream as everything else.
*/
package logging
