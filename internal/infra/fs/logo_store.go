package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"goalie-chart/internal/domain/teams"

	"github.com/spf13/afero"
)

// LogoStore keeps one file per team code in a directory, e.g. Logos/COL_light.svg.
type LogoStore struct {
	fs  afero.Fs
	dir string
	ext string
}

// NewLogoStore - ext without the dot ("svg", "jpg")
func NewLogoStore(fs afero.Fs, dir, ext string) *LogoStore {
	return &LogoStore{fs: fs, dir: dir, ext: ext}
}

func (s *LogoStore) Dir() string { return s.dir }

// Path is the location of the logo for code.
func (s *LogoStore) Path(code string) string {
	return filepath.Join(s.dir, teams.LogoFileName(code, s.ext))
}

// Ensure creates the directory if needed.
func (s *LogoStore) Ensure() error {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.dir, err)
	}
	return nil
}

func (s *LogoStore) Exists(code string) bool {
	info, err := s.fs.Stat(s.Path(code))
	return err == nil && !info.IsDir()
}

// Save writes data through a temp file so a crash never leaves half a logo behind.
func (s *LogoStore) Save(code string, data []byte) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	path := s.Path(code)
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		s.fs.Remove(tmp)
		return fmt.Errorf("failed to rename %s: %w", tmp, err)
	}
	return nil
}

func (s *LogoStore) Open(code string) (afero.File, error) {
	f, err := s.fs.Open(s.Path(code))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("logo for %s not found at %s: %w", code, s.Path(code), err)
		}
		return nil, fmt.Errorf("failed to open logo for %s: %w", code, err)
	}
	return f, nil
}

func (s *LogoStore) Read(code string) ([]byte, error) {
	f, err := s.Open(code)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
