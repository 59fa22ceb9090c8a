package services

import (
	"strings"
	"testing"
	"time"

	"quizroom/models"
)

func TestPutNewCodes(t *testing.T) {
	store := NewSessionStore()
	for i := 0; i < 100; i++ {
		session := &models.GameSession{}
		store.PutNew(session)

		code := session.Code
		if len(code) != codeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), codeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(codeCharset, r) {
				t.Fatalf("code %q contains %q, outside the charset", code, r)
			}
		}
		if got, ok := store.Get(code); !ok || got != session {
			t.Fatalf("session not retrievable under its minted code %q", code)
		}
	}
	// Every minted code was unique: nothing got overwritten.
	if store.Count() != 100 {
		t.Errorf("Count = %d after 100 inserts, want 100", store.Count())
	}
}

func TestStorePutGetDelete(t *testing.T) {
	store := NewSessionStore()
	session := &models.GameSession{Code: "ABC123"}

	if _, ok := store.Get("ABC123"); ok {
		t.Fatal("empty store returned a session")
	}

	store.Put(session)
	got, ok := store.Get("ABC123")
	if !ok || got != session {
		t.Fatalf("Get returned (%v, %v), want the stored session", got, ok)
	}
	if store.Count() != 1 {
		t.Errorf("Count = %d, want 1", store.Count())
	}

	store.Delete("ABC123")
	if _, ok := store.Get("ABC123"); ok {
		t.Error("session survived Delete")
	}
	if store.Count() != 0 {
		t.Errorf("Count = %d after delete, want 0", store.Count())
	}
}

func TestIdleSince(t *testing.T) {
	store := NewSessionStore()

	stale := &models.GameSession{Code: "STALE1", LastActivity: time.Now().Add(-3 * time.Hour)}
	fresh := &models.GameSession{Code: "FRESH1", LastActivity: time.Now()}
	store.Put(stale)
	store.Put(fresh)

	codes := store.IdleSince(time.Now().Add(-2 * time.Hour))
	if len(codes) != 1 || codes[0] != "STALE1" {
		t.Errorf("IdleSince = %v, want [STALE1]", codes)
	}
}
