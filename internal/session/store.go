// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wayralabs/wayra-tui/internal/util"
)

// =============================================================================
// TYPES AND DEFAULTS
// =============================================================================

// Session is the persisted conversation identity.
type Session struct {
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Entry is one transcript message. Content holds annotated text so listing
// references survive a restart.
type Entry struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user", "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// transcript is the on-disk shape of one session's history.
type transcript struct {
	Messages  []Entry   `json:"messages"`
	UpdatedAt time.Time `json:"updatedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

const (
	// DefaultTTL is the sliding session expiry.
	DefaultTTL = 72 * time.Hour

	// DefaultHistoryLimit bounds the persisted transcript.
	DefaultHistoryLimit = 200

	// DefaultGreeting seeds an empty or expired transcript. Restore never
	// returns an empty history.
	DefaultGreeting = "¡Hola! Soy el asistente de RutaViva. ¿Qué estás buscando para tu viaje?"

	sessionFile = "session.json"
)

// =============================================================================
// STORE
// =============================================================================

// Store owns the session identity and transcript persistence. All reads
// and writes of the session files go through it so expiry and truncation
// stay centralized.
type Store struct {
	// BaseDir is the state directory, default ~/.wayra/sessions/.
	BaseDir string

	// TTL and Limit default to DefaultTTL and DefaultHistoryLimit.
	TTL   time.Duration
	Limit int

	// Now is the clock, injectable for tests.
	Now func() time.Time

	sess    Session
	isNew   bool
	entries []Entry
}

// NewStore creates a store under the user's state directory.
func NewStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewStoreWithDir(filepath.Join(homeDir, ".wayra", "sessions"))
}

// NewStoreWithDir creates a store rooted at baseDir, creating it if needed.
func NewStoreWithDir(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &Store{
		BaseDir: baseDir,
		TTL:     DefaultTTL,
		Limit:   DefaultHistoryLimit,
		Now:     time.Now,
	}, nil
}

// =============================================================================
// SESSION IDENTITY
// =============================================================================

// InitSession loads the persisted session, minting a fresh one when none
// exists or the stored one has expired. A fresh mint marks the store as
// new, which collaborators use to fire the one-time session-start
// notification.
func (s *Store) InitSession() Session {
	now := s.Now()

	var stored Session
	data, err := os.ReadFile(filepath.Join(s.BaseDir, sessionFile))
	if err == nil {
		if jsonErr := json.Unmarshal(data, &stored); jsonErr != nil {
			s.logf("session: corrupt session file, reminting: %v", jsonErr)
			stored = Session{}
		}
	} else if !os.IsNotExist(err) {
		s.logf("session: read failed, reminting: %v", err)
	}

	if stored.ID != "" && stored.ExpiresAt.After(now) {
		s.sess = stored
		s.isNew = false
	} else {
		s.sess = Session{ID: uuid.NewString(), ExpiresAt: now.Add(s.TTL)}
		s.isNew = true
		s.persistSession()
	}
	return s.sess
}

// IsNew reports whether InitSession minted a fresh identity.
func (s *Store) IsNew() bool {
	return s.isNew
}

// Current returns the active session.
func (s *Store) Current() Session {
	return s.sess
}

// AdoptExternalSessionID switches to a session id handed back by the
// assistant, re-keying the transcript under the new id. Last write wins:
// entries appended before the switch move along with it.
func (s *Store) AdoptExternalSessionID(id string) {
	if id == "" || id == s.sess.ID {
		return
	}
	oldID := s.sess.ID
	s.sess.ID = id
	s.sess.ExpiresAt = s.Now().Add(s.TTL)
	s.persistSession()
	s.persistHistory()
	if oldID != "" {
		if err := os.Remove(s.historyPath(oldID)); err != nil && !os.IsNotExist(err) {
			s.logf("session: removing re-keyed history: %v", err)
		}
	}
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// RestoreHistory loads the transcript for the active session. A missing,
// unreadable, or expired transcript yields the single default greeting,
// never an empty history.
func (s *Store) RestoreHistory() []Entry {
	now := s.Now()

	data, err := os.ReadFile(s.historyPath(s.sess.ID))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logf("session: history read failed: %v", err)
		}
		return s.seedGreeting(now)
	}

	var tr transcript
	if err := json.Unmarshal(data, &tr); err != nil {
		s.logf("session: corrupt history, reseeding: %v", err)
		return s.seedGreeting(now)
	}
	if !tr.ExpiresAt.After(now) || len(tr.Messages) == 0 {
		return s.seedGreeting(now)
	}

	s.entries = tr.Messages
	return s.Entries()
}

func (s *Store) seedGreeting(now time.Time) []Entry {
	s.entries = []Entry{{ID: uuid.NewString(), Role: "assistant", Content: DefaultGreeting, Timestamp: now}}
	return s.Entries()
}

// Append records a message, truncates the transcript to the history
// limit, refreshes the sliding expiry, and writes everything back.
func (s *Store) Append(role, content string) {
	s.entries = append(s.entries, Entry{ID: uuid.NewString(), Role: role, Content: content, Timestamp: s.Now()})
	if len(s.entries) > s.Limit {
		s.entries = s.entries[len(s.entries)-s.Limit:]
	}
	s.sess.ExpiresAt = s.Now().Add(s.TTL)
	s.persistSession()
	s.persistHistory()
}

// Clear removes the persisted session identity and transcript. The next
// InitSession mints a fresh identity.
func (s *Store) Clear() error {
	if s.sess.ID != "" {
		if err := os.Remove(s.historyPath(s.sess.ID)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	if err := os.Remove(filepath.Join(s.BaseDir, sessionFile)); err != nil && !os.IsNotExist(err) {
		return err
	}
	s.sess = Session{}
	s.entries = nil
	s.isNew = false
	return nil
}

// Entries returns a copy of the in-memory transcript.
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Write failures are logged and otherwise swallowed. The in-memory state
// keeps working for the rest of the process lifetime.

func (s *Store) persistSession() {
	data, err := json.MarshalIndent(s.sess, "", "  ")
	if err != nil {
		s.logf("session: marshal session: %v", err)
		return
	}
	if err := util.AtomicWriteFile(filepath.Join(s.BaseDir, sessionFile), data, 0644); err != nil {
		s.logf("session: persist session: %v", err)
	}
}

func (s *Store) persistHistory() {
	tr := transcript{
		Messages:  s.entries,
		UpdatedAt: s.Now(),
		ExpiresAt: s.Now().Add(s.TTL),
	}
	data, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		s.logf("session: marshal history: %v", err)
		return
	}
	if err := util.AtomicWriteFile(s.historyPath(s.sess.ID), data, 0644); err != nil {
		s.logf("session: persist history: %v", err)
	}
}

func (s *Store) historyPath(id string) string {
	return filepath.Join(s.BaseDir, "history-"+sanitizeID(id)+".json")
}

// sanitizeID keeps externally adopted ids filesystem-safe.
func sanitizeID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

func (s *Store) logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
