package chat

import (
	"crypto/rand"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/shelldash/internal/errors"
	"github.com/hpungsan/shelldash/internal/fsutil"
)

const (
	docExt          = ".json"
	maxSessionIDLen = 128
)

var sessionIDRegex = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// ValidateSessionID rejects ids that could not safely name a file in the chats directory.
func ValidateSessionID(id string) error {
	if id == "" {
		return errors.NewInvalidRequest("session_id must not be empty")
	}
	if len(id) > maxSessionIDLen {
		return errors.NewInvalidRequest(fmt.Sprintf("session_id exceeds %d characters", maxSessionIDLen))
	}
	if !sessionIDRegex.MatchString(id) || strings.Contains(id, "..") {
		return errors.NewInvalidRequest("session_id may only contain letters, digits, '_', '-' and '.'")
	}
	return nil
}

// Store keeps one JSON document per session under a directory.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore creates a Store rooted at dir. The directory is created on first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+docExt)
}

// NewID generates a session id: sess-YYYYMMDD-HHMMSS-<8 random chars>.
// The random part is the tail of a ULID's entropy, lowercased.
func (s *Store) NewID() (string, error) {
	now := s.now()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return "", err
	}
	suffix := strings.ToLower(id.String()[18:])
	return "sess-" + now.Format("20060102-150405") + "-" + suffix, nil
}

// NewSession generates an id and persists an empty transcript for it.
func (s *Store) NewSession() (string, error) {
	id, err := s.NewID()
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if err := s.Save(&Document{SessionID: id}); err != nil {
		return "", err
	}
	return id, nil
}

// Load reads a session document.
// Returns *errors.ReadError (missing or corrupt) or an INVALID_REQUEST error for a bad id.
func (s *Store) Load(id string) (*Document, error) {
	if err := ValidateSessionID(id); err != nil {
		return nil, err
	}

	path := s.path(id)
	data, err := fsutil.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NewReadError(path, errors.ReadMissing, err)
		}
		return nil, errors.NewReadError(path, errors.ReadIO, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewReadError(path, errors.ReadCorrupt, err)
	}
	doc.SessionID = id
	if doc.Messages == nil {
		doc.Messages = []Message{}
	}
	return &doc, nil
}

// History returns the transcript for id, or an empty one when the session is
// unknown, unreadable, or the id is invalid.
func (s *Store) History(id string) *Document {
	doc, err := s.Load(id)
	if err != nil {
		return &Document{SessionID: id, Messages: []Message{}}
	}
	return doc
}

// Save overwrites the session document atomically.
func (s *Store) Save(doc *Document) error {
	if err := ValidateSessionID(doc.SessionID); err != nil {
		return err
	}

	out := Document{SessionID: doc.SessionID, Messages: doc.Messages}
	if out.Messages == nil {
		out.Messages = []Message{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errors.NewInternal(err)
	}

	path := s.path(doc.SessionID)
	if err := fsutil.WriteFileAtomic(path, data, 0600); err != nil {
		return errors.NewStorage("write", path, err)
	}
	return nil
}

// List returns summaries of all stored sessions, most recently updated first.
// Unreadable documents are skipped.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return []Summary{}, nil
		}
		return nil, errors.NewStorage("list", s.dir, err)
	}

	summaries := make([]Summary, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || filepath.Ext(name) != docExt {
			continue
		}
		id := strings.TrimSuffix(name, docExt)
		doc, err := s.Load(id)
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		summaries = append(summaries, Summary{
			SessionID:    id,
			MessageCount: len(doc.Messages),
			UpdatedAt:    info.ModTime().UTC(),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if !summaries[i].UpdatedAt.Equal(summaries[j].UpdatedAt) {
			return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
		}
		return summaries[i].SessionID > summaries[j].SessionID
	})
	return summaries, nil
}
