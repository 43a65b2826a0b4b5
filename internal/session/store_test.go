// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()
	st, err := NewStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewStoreWithDir: %v", err)
	}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	st.Now = func() time.Time { return now }
	return st, &now
}

func TestInitSessionMintsAndPersists(t *testing.T) {
	st, _ := newTestStore(t)

	sess := st.InitSession()
	if sess.ID == "" {
		t.Fatal("minted session has empty id")
	}
	if !st.IsNew() {
		t.Error("fresh mint must report new")
	}
	if got := sess.ExpiresAt.Sub(st.Now()); got != DefaultTTL {
		t.Errorf("expiry horizon = %v, want %v", got, DefaultTTL)
	}
	if _, err := os.Stat(filepath.Join(st.BaseDir, sessionFile)); err != nil {
		t.Errorf("session file not persisted: %v", err)
	}
}

func TestInitSessionReusesLiveIdentity(t *testing.T) {
	st, _ := newTestStore(t)
	first := st.InitSession()

	st2, err := NewStoreWithDir(st.BaseDir)
	if err != nil {
		t.Fatal(err)
	}
	st2.Now = st.Now
	second := st2.InitSession()

	if second.ID != first.ID {
		t.Errorf("id changed across restart: %q vs %q", second.ID, first.ID)
	}
	if st2.IsNew() {
		t.Error("restored session must not report new")
	}
}

func TestInitSessionRemintsAfterExpiry(t *testing.T) {
	st, now := newTestStore(t)
	first := st.InitSession()

	st2, err := NewStoreWithDir(st.BaseDir)
	if err != nil {
		t.Fatal(err)
	}
	later := now.Add(DefaultTTL + time.Hour)
	st2.Now = func() time.Time { return later }
	second := st2.InitSession()

	if second.ID == first.ID {
		t.Error("expired session id must not be reused")
	}
	if !st2.IsNew() {
		t.Error("remint must report new")
	}
}

func TestRestoreHistorySeedsGreetingWhenAbsent(t *testing.T) {
	st, _ := newTestStore(t)
	st.InitSession()

	entries := st.RestoreHistory()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want single greeting", len(entries))
	}
	if entries[0].Role != "assistant" || entries[0].Content != DefaultGreeting {
		t.Errorf("greeting = %+v", entries[0])
	}
}

func TestAppendPersistsAndRestores(t *testing.T) {
	st, _ := newTestStore(t)
	st.InitSession()
	st.RestoreHistory()
	st.Append("user", "busco hospedaje en Salta")
	st.Append("assistant", "Te muestro opciones en Salta.")

	st2, err := NewStoreWithDir(st.BaseDir)
	if err != nil {
		t.Fatal(err)
	}
	st2.Now = st.Now
	st2.InitSession()
	entries := st2.RestoreHistory()

	if len(entries) != 3 {
		t.Fatalf("restored %d entries, want 3", len(entries))
	}
	if entries[1].Content != "busco hospedaje en Salta" {
		t.Errorf("entry[1] = %+v", entries[1])
	}
}

func TestRestoreHistoryDropsExpiredTranscript(t *testing.T) {
	st, now := newTestStore(t)
	st.InitSession()
	st.RestoreHistory()
	st.Append("user", "hola")

	st2, err := NewStoreWithDir(st.BaseDir)
	if err != nil {
		t.Fatal(err)
	}
	// Same session id, but the transcript's own expiry has passed.
	later := now.Add(DefaultTTL + time.Minute)
	st2.Now = func() time.Time { return later }
	st2.sess = st.Current()

	entries := st2.RestoreHistory()
	if len(entries) != 1 || entries[0].Content != DefaultGreeting {
		t.Errorf("expired transcript must yield the greeting, got %d entries", len(entries))
	}
}

func TestAppendTruncatesToLimit(t *testing.T) {
	st, _ := newTestStore(t)
	st.Limit = 5
	st.InitSession()
	st.RestoreHistory()

	for i := 0; i < 10; i++ {
		st.Append("user", "mensaje")
	}
	if got := len(st.Entries()); got != 5 {
		t.Errorf("entries = %d, want limit 5", got)
	}
}

func TestAdoptExternalSessionIDReKeys(t *testing.T) {
	st, _ := newTestStore(t)
	st.InitSession()
	st.RestoreHistory()
	st.Append("user", "hola")
	oldID := st.Current().ID

	st.AdoptExternalSessionID("srv-abc-123")
	if st.Current().ID != "srv-abc-123" {
		t.Fatalf("id = %q, want adopted", st.Current().ID)
	}

	// Transcript follows the new id; the old key is gone.
	st2, err := NewStoreWithDir(st.BaseDir)
	if err != nil {
		t.Fatal(err)
	}
	st2.Now = st.Now
	if got := st2.InitSession().ID; got != "srv-abc-123" {
		t.Errorf("persisted id = %q", got)
	}
	entries := st2.RestoreHistory()
	if len(entries) != 2 {
		t.Errorf("re-keyed transcript has %d entries, want 2", len(entries))
	}
	if _, err := os.Stat(st.historyPath(oldID)); !os.IsNotExist(err) {
		t.Errorf("old history file still present: %v", err)
	}
}

func TestAdoptSameIDIsNoOp(t *testing.T) {
	st, _ := newTestStore(t)
	sess := st.InitSession()
	st.AdoptExternalSessionID(sess.ID)
	if st.Current().ID != sess.ID {
		t.Error("adopting the current id must not change anything")
	}
}

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc-123_X", "abc-123_X"},
		{"../../etc/passwd", "______etc_passwd"},
		{"id con espacios", "id_con_espacios"},
	}
	for _, tt := range tests {
		if got := sanitizeID(tt.in); got != tt.want {
			t.Errorf("sanitizeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClearForgetSessionAndTranscript(t *testing.T) {
	st, _ := newTestStore(t)
	first := st.InitSession()
	st.Append("user", "hola")

	if err := st.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := os.Stat(filepath.Join(st.BaseDir, sessionFile)); !os.IsNotExist(err) {
		t.Error("session file should be gone")
	}
	if _, err := os.Stat(st.historyPath(first.ID)); !os.IsNotExist(err) {
		t.Error("history file should be gone")
	}

	second := st.InitSession()
	if second.ID == first.ID {
		t.Error("expected a fresh identity after clear")
	}
	if !st.IsNew() {
		t.Error("post-clear session must report new")
	}
}

func TestEntriesCarryMessageIDs(t *testing.T) {
	st, _ := newTestStore(t)
	st.InitSession()

	greeting := st.RestoreHistory()
	if greeting[0].ID == "" {
		t.Error("seeded greeting has empty message id")
	}

	st.Append("user", "Hotel Aymara tiene pileta?")
	st.Append("assistant", "Sí, tiene pileta climatizada.")

	entries := st.Entries()
	seen := make(map[string]bool)
	for i, e := range entries {
		if e.ID == "" {
			t.Errorf("entry %d has empty id", i)
		}
		if seen[e.ID] {
			t.Errorf("duplicate message id %q", e.ID)
		}
		seen[e.ID] = true
	}

	st2, err := NewStoreWithDir(st.BaseDir)
	if err != nil {
		t.Fatal(err)
	}
	st2.Now = st.Now
	st2.InitSession()
	restored := st2.RestoreHistory()
	if len(restored) != len(entries) {
		t.Fatalf("restored %d entries, want %d", len(restored), len(entries))
	}
	for i := range restored {
		if restored[i].ID != entries[i].ID {
			t.Errorf("entry %d id changed across restart: %q vs %q", i, restored[i].ID, entries[i].ID)
		}
	}
}
