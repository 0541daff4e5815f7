package relay

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/afero"
)

// NotFoundError reports that a level of the capture hierarchy is empty.
// An empty store is an expected condition right after boot, before anything
// has been captured, so callers treat this as "nothing yet", not a fault.
type NotFoundError struct {
	Level string // "year", "month", "day" or "file"
	Dir   string // the parent directory that had no qualifying entries
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s entries in %s", e.Level, e.Dir)
}

// Locator finds the newest capture in the hierarchy and enumerates captures
// newer than a given watermark without rescanning the whole tree.
type Locator struct {
	scanner *Scanner
	root    string
}

// NewLocator creates a locator for the capture store rooted at root.
func NewLocator(fs afero.Fs, root string) *Locator {
	return &Locator{scanner: NewScanner(fs), root: root}
}

// Newest returns the lexicographically last capture in the store by
// descending max-year → max-month → max-day → max-file. It returns a
// *NotFoundError naming the first empty level.
func (l *Locator) Newest() (AlbumPath, error) {
	year, ok := maxRef(l.scanner.ListMatching(l.root, yearWidth))
	if !ok {
		return AlbumPath{}, &NotFoundError{Level: "year", Dir: l.root}
	}

	month, ok := maxRef(l.scanner.ListMatching(year.Path, monthWidth))
	if !ok {
		return AlbumPath{}, &NotFoundError{Level: "month", Dir: year.Path}
	}

	day, ok := maxRef(l.scanner.ListMatching(month.Path, dayWidth))
	if !ok {
		return AlbumPath{}, &NotFoundError{Level: "day", Dir: month.Path}
	}

	files := l.scanner.ListFiles(day.Path)
	if len(files) == 0 {
		return AlbumPath{}, &NotFoundError{Level: "file", Dir: day.Path}
	}

	max := files[0]
	for _, f := range files[1:] {
		if f > max {
			max = f
		}
	}

	newest, err := ParseAlbumPath(l.root, max)
	if err != nil {
		return AlbumPath{}, err
	}
	return newest, nil
}

// NewerThan returns all captures whose full path is strictly greater than
// last, ascending. Whole years, months and days below the watermark are
// pruned, so the cost is proportional to the hierarchy at or above it, not
// to total store size. An empty result means nothing new yet.
//
// NewerThan never advances the watermark itself; that is the caller's call.
func (l *Locator) NewerThan(last string) ([]AlbumPath, error) {
	wm, err := ParseAlbumPath(l.root, last)
	if err != nil {
		return nil, err
	}

	var found []AlbumPath
	for _, year := range l.scanner.ListMatching(l.root, yearWidth) {
		if year.Name < wm.Year {
			continue
		}
		// Once a strictly newer year is entered the month/day floors no
		// longer apply.
		found = l.collectYear(year, wm, year.Name == wm.Year, found)
	}

	// Collection order across branches is not guaranteed monotonic; this
	// sort is the single point of intentional ordering.
	sort.Slice(found, func(i, j int) bool { return found[i].Less(found[j]) })

	if logEnabled(slog.LevelDebug) {
		sub("locator").Debug("diff complete", "watermark", last, "found", len(found))
	}
	return found, nil
}

func (l *Locator) collectYear(year DirRef, wm AlbumPath, onFloor bool, found []AlbumPath) []AlbumPath {
	for _, month := range l.scanner.ListMatching(year.Path, monthWidth) {
		if onFloor && month.Name < wm.Month {
			continue
		}
		monthOnFloor := onFloor && month.Name == wm.Month
		found = l.collectMonth(month, wm, monthOnFloor, found)
	}
	return found
}

func (l *Locator) collectMonth(month DirRef, wm AlbumPath, onFloor bool, found []AlbumPath) []AlbumPath {
	for _, day := range l.scanner.ListMatching(month.Path, dayWidth) {
		if onFloor && day.Name < wm.Day {
			continue
		}
		// Inside the watermark day only paths beyond the watermark itself
		// qualify; any newer day contributes everything.
		floor := ""
		if onFloor && day.Name == wm.Day {
			floor = wm.Full()
		}
		for _, file := range l.scanner.ListFiles(day.Path) {
			if file <= floor {
				continue
			}
			p, err := ParseAlbumPath(l.root, file)
			if err != nil {
				continue
			}
			found = append(found, p)
		}
	}
	return found
}

func maxRef(refs []DirRef) (DirRef, bool) {
	if len(refs) == 0 {
		return DirRef{}, false
	}
	max := refs[0]
	for _, r := range refs[1:] {
		if r.Name > max.Name {
			max = r
		}
	}
	return max, true
}
