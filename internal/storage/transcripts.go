// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/agentchat/internal/conversation"
	"github.com/jeranaias/agentchat/internal/util"
)

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript represents a persisted chat.
type Transcript struct {
	// Identity
	ID        string    `json:"id"`
	Summary   string    `json:"summary"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Turns
	Entries []StoredEntry `json:"entries"`
}

// StoredEntry represents one persisted turn, including the feedback the
// user gave on it.
type StoredEntry struct {
	Role      string    `json:"role"` // "user" or "agent"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	Liked    bool `json:"liked,omitempty"`
	Disliked bool `json:"disliked,omitempty"`
}

// TranscriptMeta contains metadata for listing transcripts.
type TranscriptMeta struct {
	ID         string    `json:"id"`
	Summary    string    `json:"summary"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	EntryCount int       `json:"entry_count"`
	Preview    string    `json:"preview"` // First user turn truncated
}

// FromConversation snapshots a live conversation (and its feedback) into a
// transcript ready to save.
func FromConversation(conv *conversation.Conversation, sessionID, userID string) *Transcript {
	entries := conv.Entries()
	stored := make([]StoredEntry, len(entries))
	for i, e := range entries {
		fb := conv.FeedbackFor(i)
		stored[i] = StoredEntry{
			Role:      string(e.Role),
			Content:   e.Content,
			Timestamp: e.Time,
			Liked:     fb.Liked,
			Disliked:  fb.Disliked,
		}
	}
	return &Transcript{
		SessionID: sessionID,
		UserID:    userID,
		Entries:   stored,
	}
}

// =============================================================================
// TRANSCRIPT STORE
// =============================================================================

// TranscriptStore handles transcript persistence.
type TranscriptStore struct {
	// BaseDir is the directory for storing transcripts
	// Default: ~/.agentchat/transcripts/
	BaseDir string

	// MaxTranscripts limits stored transcripts (0 = unlimited)
	MaxTranscripts int
}

// NewTranscriptStore creates a store under the default data directory.
func NewTranscriptStore() (*TranscriptStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewTranscriptStoreWithDir(filepath.Join(homeDir, ".agentchat", "transcripts"))
}

// NewTranscriptStoreWithDir creates a store with a custom directory.
func NewTranscriptStoreWithDir(baseDir string) (*TranscriptStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &TranscriptStore{
		BaseDir:        baseDir,
		MaxTranscripts: 100,
	}, nil
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save persists a transcript and returns its ID.
func (s *TranscriptStore) Save(tr *Transcript) (string, error) {
	if tr.ID == "" {
		tr.ID = generateTranscriptID()
	}
	if tr.Summary == "" {
		tr.Summary = summarize(tr)
	}

	tr.UpdatedAt = time.Now()
	if tr.CreatedAt.IsZero() {
		tr.CreatedAt = tr.UpdatedAt
	}

	data, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return "", err
	}

	// Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(s.filePath(tr.ID), data, 0644); err != nil {
		return "", err
	}

	if s.MaxTranscripts > 0 {
		s.enforceLimit()
	}

	return tr.ID, nil
}

// summarize derives a summary from the first user turn.
func summarize(tr *Transcript) string {
	for _, e := range tr.Entries {
		if e.Role == string(conversation.RoleUser) && e.Content != "" {
			return util.TruncateRunes(util.CollapseSpace(e.Content), 50)
		}
	}
	return "New chat"
}

// enforceLimit removes the oldest transcripts if over limit.
func (s *TranscriptStore) enforceLimit() {
	metas, err := s.List()
	if err != nil || len(metas) <= s.MaxTranscripts {
		return
	}

	// Oldest first
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.Before(metas[j].UpdatedAt)
	})

	excess := len(metas) - s.MaxTranscripts
	for i := 0; i < excess; i++ {
		s.Delete(metas[i].ID)
	}
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// Load retrieves a transcript by ID.
func (s *TranscriptStore) Load(id string) (*Transcript, error) {
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTranscriptNotFound
		}
		return nil, err
	}

	var tr Transcript
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, err
	}

	return &tr, nil
}

// LoadByIndex loads a transcript by its index in the list (0 = most recent).
func (s *TranscriptStore) LoadByIndex(index int) (*Transcript, error) {
	metas, err := s.List()
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(metas) {
		return nil, ErrTranscriptNotFound
	}

	return s.Load(metas[index].ID)
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns all saved transcripts (most recent first).
func (s *TranscriptStore) List() ([]TranscriptMeta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []TranscriptMeta{}, nil
		}
		return nil, err
	}

	var metas []TranscriptMeta

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")

		tr, err := s.Load(id)
		if err != nil {
			continue // Skip corrupted files
		}

		metas = append(metas, TranscriptMeta{
			ID:         tr.ID,
			Summary:    tr.Summary,
			CreatedAt:  tr.CreatedAt,
			UpdatedAt:  tr.UpdatedAt,
			EntryCount: len(tr.Entries),
			Preview:    tr.Preview(),
		})
	}

	// Most recent first
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})

	return metas, nil
}

// Search finds transcripts matching a query string in summary or preview.
func (s *TranscriptStore) Search(query string) ([]TranscriptMeta, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	var results []TranscriptMeta

	for _, meta := range all {
		if strings.Contains(strings.ToLower(meta.Summary), query) ||
			strings.Contains(strings.ToLower(meta.Preview), query) {
			results = append(results, meta)
		}
	}

	return results, nil
}

// SearchEntries searches transcripts by turn content.
// Returns transcripts where any turn contains the query (case-insensitive).
func (s *TranscriptStore) SearchEntries(query string) ([]TranscriptMeta, error) {
	if query == "" {
		return s.List()
	}

	query = strings.ToLower(query)
	all, err := s.List()
	if err != nil {
		return nil, err
	}

	var results []TranscriptMeta

	for _, meta := range all {
		tr, err := s.Load(meta.ID)
		if err != nil {
			continue
		}

		for _, e := range tr.Entries {
			if strings.Contains(strings.ToLower(e.Content), query) {
				results = append(results, meta)
				break
			}
		}
	}

	return results, nil
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a transcript by ID.
func (s *TranscriptStore) Delete(id string) error {
	if err := os.Remove(s.filePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrTranscriptNotFound
		}
		return err
	}
	return nil
}

// Clear removes all saved transcripts.
func (s *TranscriptStore) Clear() error {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			os.Remove(filepath.Join(s.BaseDir, entry.Name()))
		}
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// filePath returns the file path for a transcript ID.
func (s *TranscriptStore) filePath(id string) string {
	return filepath.Join(s.BaseDir, id+".json")
}

// generateTranscriptID creates a unique transcript ID.
func generateTranscriptID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "chat_" + hex.EncodeToString(bytes)
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrTranscriptNotFound is returned when a transcript doesn't exist.
// Use errors.Is(err, ErrTranscriptNotFound) to check for this error.
var ErrTranscriptNotFound = &TranscriptError{Message: "transcript not found"}

// TranscriptError represents a transcript-related error.
type TranscriptError struct {
	Message string
}

// Error implements the error interface.
func (e *TranscriptError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing transcript errors.
func (e *TranscriptError) Is(target error) bool {
	t, ok := target.(*TranscriptError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportMarkdown exports the transcript as a Markdown formatted string.
func (t *Transcript) ExportMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# Chat " + t.ID + "\n\n")
	sb.WriteString("Created: " + t.CreatedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, e := range t.Entries {
		role := "**User**"
		if e.Role == string(conversation.RoleAgent) {
			role = "**Agent**"
		}
		sb.WriteString(role + " (" + e.Timestamp.Format("15:04") + "):\n\n")
		sb.WriteString(e.Content)
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}

// ExportJSON exports the transcript as a pretty-printed JSON byte array.
func (t *Transcript) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// Preview returns a preview string from the first user turn.
func (t *Transcript) Preview() string {
	for _, e := range t.Entries {
		if e.Role == string(conversation.RoleUser) && e.Content != "" {
			return util.TruncateRunes(util.CollapseSpace(e.Content), 80)
		}
	}
	return ""
}

// =============================================================================
// LIST FORMATTING
// =============================================================================

// FormatTranscriptList formats transcripts for display in a table.
func FormatTranscriptList(metas []TranscriptMeta) string {
	if len(metas) == 0 {
		return "No saved chats."
	}

	var sb strings.Builder
	sb.WriteString("Saved chats:\n")
	sb.WriteString("-----------------------------------------------------\n")
	sb.WriteString(pad("ID", 14) + " " + pad("Updated", 17) + " " + pad("Turns", 6) + " Preview\n")
	sb.WriteString("-----------------------------------------------------\n")

	for _, m := range metas {
		id := m.ID
		if len(id) > 14 {
			id = id[:14]
		}
		sb.WriteString(pad(id, 14) + " " +
			pad(m.UpdatedAt.Format("2006-01-02 15:04"), 17) + " " +
			pad(strconv.Itoa(m.EntryCount), 6) + " " +
			util.TruncateWidth(m.Preview, 30) + "\n")
	}
	return sb.String()
}

// pad pads a string to the specified width with spaces.
func pad(s string, width int) string {
	runes := []rune(s)
	for i := len(runes); i < width; i++ {
		s += " "
	}
	return s
}
