package relay

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Directory name widths of the capture hierarchy, top to bottom.
const (
	yearWidth  = 4
	monthWidth = 2
	dayWidth   = 2
)

// ErrInvalidWatermark is returned when a watermark path cannot be parsed
// back into its year/month/day/filename components.
var ErrInvalidWatermark = errors.New("invalid watermark path")

// AlbumPath is the ordered key of a single capture:
// <root>/<YYYY>/<MM>/<DD>/<filename>. The full path string is the sole
// notion of ordering — "newer" means lexicographically greater.
type AlbumPath struct {
	Year  string
	Month string
	Day   string
	Name  string

	full string
}

// NewAlbumPath builds an AlbumPath rooted at root.
func NewAlbumPath(root, year, month, day, name string) AlbumPath {
	return AlbumPath{
		Year:  year,
		Month: month,
		Day:   day,
		Name:  name,
		full:  filepath.Join(root, year, month, day, name),
	}
}

// Full returns the complete path string.
func (p AlbumPath) Full() string { return p.full }

func (p AlbumPath) String() string { return p.full }

// Less orders album paths by their full path string.
func (p AlbumPath) Less(other AlbumPath) bool { return p.full < other.full }

// ParseAlbumPath splits a full capture path of shape
// <root>/<YYYY>/<MM>/<DD>/<filename> into its components.
// Returns ErrInvalidWatermark when the shape does not match.
func ParseAlbumPath(root, full string) (AlbumPath, error) {
	rel, err := filepath.Rel(root, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return AlbumPath{}, fmt.Errorf("%w: %q not under %q", ErrInvalidWatermark, full, root)
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 4 {
		return AlbumPath{}, fmt.Errorf("%w: %q", ErrInvalidWatermark, full)
	}

	year, month, day, name := parts[0], parts[1], parts[2], parts[3]
	if len(year) != yearWidth || !digitsOnly(year) ||
		len(month) != monthWidth || !digitsOnly(month) ||
		len(day) != dayWidth || !digitsOnly(day) || name == "" {
		return AlbumPath{}, fmt.Errorf("%w: %q", ErrInvalidWatermark, full)
	}

	return NewAlbumPath(root, year, month, day, name), nil
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// IsVideo reports whether the path names a movie capture. The store records
// movies as .mp4 and screenshots as .jpg; anything unknown is treated as an
// image so it gets the smaller retry budget.
func IsVideo(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".mp4")
}

// Retry budgets per media kind. Videos are larger and their transfers cost
// more to restart, so they get one extra attempt.
const (
	imageMaxAttempts = 2
	videoMaxAttempts = 3
)

// MaxAttempts returns the delivery attempt budget for a capture path.
func MaxAttempts(path string) int {
	if IsVideo(path) {
		return videoMaxAttempts
	}
	return imageMaxAttempts
}

// captureIDLen is the length of the capture id embedded in album filenames,
// which sit directly ahead of the 4-character extension.
const captureIDLen = 32

// CaptureID extracts the capture id from an album path
// (e.g. 2024011512345600-<32 char id>.jpg). Returns "" when the path is too
// short to carry one.
func CaptureID(path string) string {
	const tail = captureIDLen + 4
	if len(path) < tail {
		return ""
	}
	return path[len(path)-tail : len(path)-4]
}
