// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the wayra command line interface.
//
// The default invocation starts the TUI. Subcommands cover one-shot
// questions (ask), a REPL (chat), session inspection, configuration,
// catalog queries, and a connectivity status report.
package cli
