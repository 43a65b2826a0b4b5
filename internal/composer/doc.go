// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package composer implements the tokenized composition buffer backing the
// concierge chat input.
//
// The buffer is an ordered sequence of segments. A segment is either free
// text or an atomic token referencing a catalog listing. Tokens are frozen
// at insertion time: their label never changes in place, the caret never
// rests inside them, and they serialize either as their bare label (the
// outbound payload) or as a TOKEN(id, label) marker (the annotated form used
// for transcript display and rehydration).
//
// All token-boundary logic lives here, independent of any rendering widget.
// The host UI renders segments and forwards raw input events; every mutation
// passes through a single commit hook so the deletion guard can observe and
// repair the buffer before the next repaint.
package composer
