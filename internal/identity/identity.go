// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// MaxIdentifierLen is the maximum accepted identifier length. Stored
	// values longer than this are treated as absent and regenerated.
	MaxIdentifierLen = 32

	// SessionKey is the storage key for the session identifier.
	SessionKey = "sessionId"

	// UserKey is the storage key for the user identifier.
	UserKey = "userId"
)

// =============================================================================
// STORAGE SCOPE
// =============================================================================

// Scope is a key/value storage capability injected into the Store.
//
// The session scope lives for one program run; the device scope persists
// across runs. A nil Scope models a context without storage (for example a
// non-interactive render), in which case identifier getters return an empty
// string and perform no write.
type Scope interface {
	// Get returns the stored value for key and whether it was present.
	Get(key string) (string, bool)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
}

// MemoryScope is an in-process Scope. It backs the session scope and serves
// as the storage fake in tests.
type MemoryScope struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryScope creates an empty in-memory scope.
func NewMemoryScope() *MemoryScope {
	return &MemoryScope{values: make(map[string]string)}
}

// Get returns the stored value for key.
func (m *MemoryScope) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

// Set stores value under key.
func (m *MemoryScope) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// =============================================================================
// IDENTITY STORE
// =============================================================================

// Store derives and caches the session and user identifiers.
//
// Identifiers are effectively immutable after the first read within a
// runtime lifetime: the first access per scope decides the value and every
// later access returns the same string.
type Store struct {
	mu      sync.Mutex
	session Scope
	device  Scope
}

// NewStore creates a Store over the given scopes. Either scope may be nil;
// the corresponding getter then returns an empty string.
func NewStore(session, device Scope) *Store {
	return &Store{session: session, device: device}
}

// SessionID returns the session identifier, generating and persisting one
// if the session scope holds no valid value.
func (s *Store) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return identifier(s.session, SessionKey)
}

// UserID returns the user identifier, generating and persisting one if the
// device scope holds no valid value.
func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return identifier(s.device, UserKey)
}

// identifier reads key from scope, regenerating when the stored value is
// absent, empty, or longer than MaxIdentifierLen (legacy format).
func identifier(scope Scope, key string) string {
	if scope == nil {
		return ""
	}

	if v, ok := scope.Get(key); ok && v != "" && len(v) <= MaxIdentifierLen {
		return v
	}

	id := NewIdentifier()
	// Best effort: a failed write means regeneration on the next access,
	// which is harmless.
	_ = scope.Set(key, id)
	return id
}

// =============================================================================
// GENERATION
// =============================================================================

// NewIdentifier produces a fresh opaque identifier: a 128-bit random UUID in
// canonical dashed form with the dashes stripped, truncated to
// MaxIdentifierLen characters.
func NewIdentifier() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	if len(id) > MaxIdentifierLen {
		id = id[:MaxIdentifierLen]
	}
	return id
}
