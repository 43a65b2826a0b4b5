// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assistant provides the HTTP client for the RutaViva assistant
// webhook.
//
// One message goes out per send as a single JSON POST; the reply body is
// parsed leniently because the upstream automation platform answers with
// whichever field its current flow produces. Session-start notifications
// are best effort and never surface errors.
package assistant
