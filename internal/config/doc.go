// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads, validates, and persists wayra configuration.
//
// Configuration lives at ~/.wayra/config.toml. Load order: built-in
// defaults, then the TOML file, then WAYRA_* environment overrides, then
// validation clamps. A fsnotify watcher reloads the global config when
// the file changes on disk.
package config
