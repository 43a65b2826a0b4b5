// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session maintains the durable conversation identity and the
// bounded transcript that survives restarts.
//
// A session is a random identifier with a 3-day sliding expiry, persisted
// under the state directory together with one transcript file per session
// id. Persistence failures are swallowed: the in-memory transcript keeps
// working for the life of the process and failures are only logged.
package session
