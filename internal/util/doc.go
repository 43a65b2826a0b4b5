// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the wayra application:
// UTF-8 safe string truncation, display-width measurement, and crash-safe
// atomic file writes used by the persistence layers.
package util
