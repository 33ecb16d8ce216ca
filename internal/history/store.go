// Package history persists past analyses in a capped, deduplicated local store.
package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/umactually/internal/model"
)

// SchemaVersion is the version tag written with every persisted document
const SchemaVersion = 1

// DefaultMaxEntries caps the number of retained analyses
const DefaultMaxEntries = 50

var (
	// ErrPersist wraps any failure to write the history file
	ErrPersist = errors.New("history: persist failed")
	// ErrInvalidEntry is returned when kind, video URL and transcript disagree
	ErrInvalidEntry = errors.New("history: invalid entry")
	// ErrNewerSchema is returned when the file was written by a newer version
	ErrNewerSchema = errors.New("history: file uses a newer schema")
)

// document is the on-disk layout
type document struct {
	Version int                  `json:"version"`
	Entries []model.HistoryEntry `json:"entries"`
}

// legacyEntry is the unversioned layout: a bare array with millisecond timestamps
type legacyEntry struct {
	ID         string                    `json:"id"`
	Timestamp  int64                     `json:"timestamp"`
	Preview    string                    `json:"preview"`
	Data       model.AnalysisResult      `json:"data"`
	Type       model.Kind                `json:"type,omitempty"`
	VideoURL   string                    `json:"videoUrl,omitempty"`
	Transcript []model.TranscriptSegment `json:"transcript,omitempty"`
}

// Store is a file-backed history of analyses, most recent first.
// Every read goes to disk; there is no in-memory copy to drift from the file.
type Store struct {
	path       string
	maxEntries int
	logger     *slog.Logger
	now        func() time.Time
	newID      func() (string, error)

	mu sync.Mutex // serializes read-modify-write cycles

	subMu   sync.Mutex
	subs    map[int]chan Change
	nextSub int
}

// Option configures a Store
type Option func(*Store)

// WithMaxEntries overrides the entry cap
func WithMaxEntries(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithLogger sets the logger used for degraded reads and writes
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for CreatedAt
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides entry ID generation
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Store) { s.newID = gen }
}

// Open returns a store backed by path. The file is not touched until first use.
func Open(path string, opts ...Option) *Store {
	s := &Store{
		path:       filepath.Clean(path),
		maxEntries: DefaultMaxEntries,
		logger:     slog.Default(),
		now:        time.Now,
		newID:      newUUIDv7,
		subs:       make(map[int]chan Change),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

func newUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// List returns all entries, most recent first. Missing or unreadable
// storage yields an empty list.
func (s *Store) List() []model.HistoryEntry {
	entries, _, err := s.read()
	if err != nil {
		s.logger.Warn("history unavailable, treating as empty", "path", s.path, "error", err)
		return []model.HistoryEntry{}
	}
	return entries
}

// Get returns the entry with the given ID
func (s *Store) Get(id string) (model.HistoryEntry, bool) {
	for _, e := range s.List() {
		if e.ID == id {
			return e, true
		}
	}
	return model.HistoryEntry{}, false
}

// FindByFingerprint returns the most recent entry with the given score and reasoning
func (s *Store) FindByFingerprint(confidenceScore int, reasoning string) (model.HistoryEntry, bool) {
	for _, e := range s.List() {
		if e.Result.ConfidenceScore == confidenceScore && e.Result.Reasoning == reasoning {
			return e, true
		}
	}
	return model.HistoryEntry{}, false
}

// Insert records result and returns its entry ID. A submission matching an
// existing entry on preview, score, reasoning and kind returns that entry's ID
// without writing.
func (s *Store) Insert(result model.AnalysisResult, kind model.Kind, videoURL string, transcript []model.TranscriptSegment) (string, error) {
	if err := validateEntry(kind, videoURL, transcript); err != nil {
		return "", err
	}

	fp := model.Fingerprint{
		Preview:         Preview(result.Content),
		ConfidenceScore: result.ConfidenceScore,
		Reasoning:       result.Reasoning,
		Kind:            kind,
	}

	s.mu.Lock()
	entries, err := s.readForWrite()
	if err != nil {
		s.mu.Unlock()
		return "", err
	}

	for _, e := range entries {
		if e.Fingerprint() == fp {
			s.mu.Unlock()
			s.logger.Debug("analysis already in history", "id", e.ID)
			return e.ID, nil
		}
	}

	id, err := s.newID()
	if err != nil {
		s.mu.Unlock()
		return "", fmt.Errorf("generate id: %w", err)
	}

	entry := model.HistoryEntry{
		ID:          id,
		CreatedAt:   s.now().UTC(),
		PreviewText: fp.Preview,
		Kind:        kind,
		Result:      result,
	}
	if kind == model.KindVideo {
		entry.VideoURL = videoURL
		entry.Transcript = transcript
	}

	entries = append([]model.HistoryEntry{entry}, entries...)
	if len(entries) > s.maxEntries {
		entries = entries[:s.maxEntries]
	}

	if err := s.write(entries); err != nil {
		s.mu.Unlock()
		s.logger.Error("failed to save analysis to history", "path", s.path, "error", err)
		return "", fmt.Errorf("%w: %v", ErrPersist, err)
	}
	s.publish(ChangeLocal, entries)
	s.mu.Unlock()
	return id, nil
}

// Remove deletes the entry with the given ID. Unknown IDs are a no-op.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	entries, err := s.readForWrite()
	if err != nil {
		s.mu.Unlock()
		return err
	}

	kept := make([]model.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		s.mu.Unlock()
		return nil
	}

	if err := s.write(kept); err != nil {
		s.mu.Unlock()
		s.logger.Error("failed to delete history entry", "id", id, "error", err)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	s.publish(ChangeLocal, kept)
	s.mu.Unlock()
	return nil
}

func validateEntry(kind model.Kind, videoURL string, transcript []model.TranscriptSegment) error {
	switch kind {
	case model.KindText:
		if videoURL != "" || len(transcript) > 0 {
			return fmt.Errorf("%w: text entries carry no video or transcript", ErrInvalidEntry)
		}
	case model.KindVideo:
		if videoURL == "" {
			return fmt.Errorf("%w: video entries need a video URL", ErrInvalidEntry)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEntry, kind)
	}
	return nil
}

// read loads the file. A missing file is an empty history.
func (s *Store) read() ([]model.HistoryEntry, int, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []model.HistoryEntry{}, SchemaVersion, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read history: %w", err)
	}
	return decode(data)
}

// readForWrite loads entries for a mutation. A corrupt file is moved aside
// and replaced; a file from a newer version is never overwritten.
func (s *Store) readForWrite() ([]model.HistoryEntry, error) {
	entries, _, err := s.read()
	if err == nil {
		return entries, nil
	}
	if errors.Is(err, ErrNewerSchema) {
		return nil, err
	}

	s.logger.Warn("history unreadable, starting fresh", "path", s.path, "error", err)
	if _, statErr := os.Stat(s.path); statErr == nil {
		backup := s.path + ".corrupt"
		if renameErr := os.Rename(s.path, backup); renameErr != nil {
			s.logger.Warn("could not move corrupt history aside", "error", renameErr)
		}
	}
	return []model.HistoryEntry{}, nil
}

func decode(data []byte) ([]model.HistoryEntry, int, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []model.HistoryEntry{}, SchemaVersion, nil
	}

	if trimmed[0] == '[' {
		var legacy []legacyEntry
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			return nil, 0, fmt.Errorf("decode legacy history: %w", err)
		}
		return migrateLegacy(legacy), 0, nil
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, 0, fmt.Errorf("decode history: %w", err)
	}
	if doc.Version > SchemaVersion {
		return nil, doc.Version, fmt.Errorf("%w: version %d", ErrNewerSchema, doc.Version)
	}
	if doc.Entries == nil {
		doc.Entries = []model.HistoryEntry{}
	}
	return doc.Entries, doc.Version, nil
}

func migrateLegacy(legacy []legacyEntry) []model.HistoryEntry {
	entries := make([]model.HistoryEntry, 0, len(legacy))
	for _, l := range legacy {
		kind := l.Type
		if kind == "" {
			kind = model.KindText
		}
		entries = append(entries, model.HistoryEntry{
			ID:          l.ID,
			CreatedAt:   time.UnixMilli(l.Timestamp).UTC(),
			PreviewText: l.Preview,
			Kind:        kind,
			VideoURL:    l.VideoURL,
			Result:      l.Data,
			Transcript:  l.Transcript,
		})
	}
	return entries
}

// write replaces the file atomically: the whole list lands or nothing does
func (s *Store) write(entries []model.HistoryEntry) (err error) {
	data, err := json.Marshal(document{Version: SchemaVersion, Entries: entries})
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}
