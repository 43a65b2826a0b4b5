// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package browse provides the listing browser of the wayra TUI.
//
// It shows the local accommodation catalog with incremental filtering;
// selecting a listing sends its token to the chat panel, the terminal
// equivalent of the site's "add to chat" buttons.
package browse
