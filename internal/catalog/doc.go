// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog stores the local accommodation listings the user can
// reference from the chat composer.
//
// Listings live in a SQLite database under the state directory. The
// database seeds itself with the RutaViva starter set on first open so
// the browse view works before any sync has happened.
package catalog
