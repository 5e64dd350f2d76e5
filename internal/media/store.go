package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

var ErrBadName = errors.New("invalid file name")

// DiskStore keeps uploads under Dir and serves them from BaseURL.
type DiskStore struct {
	Dir     string
	BaseURL string
	Now     func() time.Time
}

func NewDiskStore(dir, baseURL string) *DiskStore {
	return &DiskStore{Dir: dir, BaseURL: strings.TrimSuffix(baseURL, "/"), Now: time.Now}
}

// Save writes r to <folder>/<unixmillis>_<name> and returns the relative
// stored path, its public URL and the bytes written.
func (s *DiskStore) Save(folder, name string, r io.Reader) (string, string, int64, error) {
	folder = cleanSegment(folder)
	if folder == "" {
		folder = "uploads"
	}
	name = cleanSegment(name)
	if name == "" {
		return "", "", 0, ErrBadName
	}

	rel := path.Join(folder, fmt.Sprintf("%d_%s", s.Now().UnixMilli(), name))
	full := filepath.Join(s.Dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", "", 0, fmt.Errorf("create media folder: %w", err)
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", "", 0, fmt.Errorf("create media file: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(full)
		return "", "", 0, fmt.Errorf("write media file: %w", err)
	}
	return rel, s.BaseURL + "/" + rel, n, nil
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (s *DiskStore) Remove(rel string) error {
	full := filepath.Join(s.Dir, filepath.FromSlash(path.Clean("/"+rel)))
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove media file: %w", err)
	}
	return nil
}

// cleanSegment keeps letters, digits, dot, dash and underscore; other runes
// become "_". Leading dots are dropped so a segment can't climb directories.
func cleanSegment(s string) string {
	s = filepath.Base(strings.TrimSpace(s))
	if s == "." || s == string(filepath.Separator) {
		return ""
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.TrimLeft(b.String(), ".")
}
