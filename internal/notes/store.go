// Package notes stores Markdown notes as flat files keyed by sanitized title.
package notes

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/shelldash/internal/errors"
	"github.com/hpungsan/shelldash/internal/fsutil"
)

const (
	// Ext is the note filename extension.
	Ext = ".md"
	// DefaultNoteTitle is created by Open when no notes exist yet.
	DefaultNoteTitle = "default"
)

// Note is a title and its Markdown content.
type Note struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SaveOutput contains the result of a Save.
type SaveOutput struct {
	OK    bool   `json:"ok"`
	Title string `json:"title"`
}

// Rendered is a note converted to HTML.
type Rendered struct {
	Title string `json:"title"`
	HTML  string `json:"html"`
}

// Store reads and writes notes under a single directory.
// There is no locking: concurrent saves of one title are last-write-wins.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir. The directory is created on first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the notes directory.
func (s *Store) Dir() string {
	return s.dir
}

// Seed is the initial content of a freshly created note.
func Seed(title string) string {
	return "# " + title + "\n\n"
}

func (s *Store) path(title string) string {
	return filepath.Join(s.dir, title+Ext)
}

type entry struct {
	title   string
	modTime int64
}

func (s *Store) entries() ([]entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.NewStorage("list", s.dir, err)
	}

	result := make([]entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if !de.Type().IsRegular() || !strings.HasSuffix(name, Ext) {
			continue
		}
		title := strings.TrimSuffix(name, Ext)
		if title == "" {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// Removed between ReadDir and Info
			continue
		}
		result = append(result, entry{title: title, modTime: info.ModTime().UnixNano()})
	}
	return result, nil
}

// List returns all note titles, lexicographically sorted.
func (s *Store) List() ([]string, error) {
	entries, err := s.entries()
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(entries))
	for _, e := range entries {
		titles = append(titles, e.title)
	}
	sort.Strings(titles)
	return titles, nil
}

// Ensure sanitizes title and creates the note with its seed heading if it does
// not exist yet. Existing content is never touched. Returns the sanitized title.
func (s *Store) Ensure(title string) (string, error) {
	title = SanitizeTitle(title)
	path := s.path(title)
	if _, err := fsutil.CreateExclusive(path, []byte(Seed(title)), 0600); err != nil {
		return "", errors.NewStorage("create", path, err)
	}
	return title, nil
}

// Open loads a note, creating it when missing.
// A nil or empty title selects the most recently modified note, or creates
// "default" when the store is empty.
func (s *Store) Open(title *string) (*Note, error) {
	var target string
	if title != nil && *title != "" {
		target = SanitizeTitle(*title)
	} else {
		latest, err := s.latest()
		if err != nil {
			return nil, err
		}
		target = latest
	}

	target, err := s.Ensure(target)
	if err != nil {
		return nil, err
	}

	path := s.path(target)
	data, err := fsutil.ReadFile(path)
	if err != nil {
		return nil, errors.NewStorage("read", path, err)
	}
	return &Note{Title: target, Content: string(data)}, nil
}

// latest returns the title of the most recently modified note, or DefaultNoteTitle.
func (s *Store) latest() (string, error) {
	entries, err := s.entries()
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return DefaultNoteTitle, nil
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].modTime != entries[j].modTime {
			return entries[i].modTime > entries[j].modTime
		}
		return entries[i].title < entries[j].title
	})
	return entries[0].title, nil
}

// Save overwrites the note with content verbatim.
func (s *Store) Save(title, content string) (*SaveOutput, error) {
	title = SanitizeTitle(title)
	path := s.path(title)
	if err := fsutil.WriteFileAtomic(path, []byte(content), 0600); err != nil {
		return nil, errors.NewStorage("write", path, err)
	}
	return &SaveOutput{OK: true, Title: title}, nil
}

// Render opens a note (same selection rules as Open) and converts it to HTML.
func (s *Store) Render(title *string) (*Rendered, error) {
	note, err := s.Open(title)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(note.Content), &buf); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &Rendered{Title: note.Title, HTML: buf.String()}, nil
}
