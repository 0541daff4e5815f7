package relay

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// DirRef is a directory entry found by the scanner.
type DirRef struct {
	Name string
	Path string
}

// Scanner lists single levels of the capture hierarchy. It is stateless;
// all walking logic lives in Locator.
type Scanner struct {
	fs afero.Fs
}

// NewScanner creates a scanner over the given filesystem.
func NewScanner(fs afero.Fs) *Scanner {
	return &Scanner{fs: fs}
}

// ListMatching returns the subdirectories of dir whose names are exactly
// width digits. Anything else — files, misnamed directories — is ignored.
// A missing or empty directory yields an empty result, not an error.
func (s *Scanner) ListMatching(dir string, width int) []DirRef {
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil
	}

	var refs []DirRef
	for _, info := range infos {
		name := info.Name()
		if !info.IsDir() || len(name) != width || !digitsOnly(name) {
			continue
		}
		refs = append(refs, DirRef{Name: name, Path: filepath.Join(dir, name)})
	}
	return refs
}

// ListFiles returns the full paths of the regular files in dir, unfiltered
// by name shape. A missing or empty directory yields an empty result.
func (s *Scanner) ListFiles(dir string) []string {
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil
	}

	var paths []string
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, info.Name()))
	}
	return paths
}
