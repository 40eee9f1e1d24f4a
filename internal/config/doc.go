// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config resolves the eosvc runtime configuration.
//
// Precedence is ENV > YAML file > built-in defaults. The YAML file is parsed
// strictly (unknown keys are rejected) and the merged result is validated
// before use. ConfigHolder keeps the active configuration and swaps it
// atomically on SIGHUP or when the file changes on disk, so rotated
// Space-Track credentials take effect without a restart.
package config
