package relay

import (
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func albumFs(t *testing.T, paths ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, p := range paths {
		mkFile(t, fs, p)
	}
	return fs
}

func fullPaths(items []AlbumPath) []string {
	out := make([]string, len(items))
	for i, p := range items {
		out[i] = p.Full()
	}
	return out
}

// readDirCounter counts directory listings per path.
type readDirCounter struct {
	afero.Fs
	dirs map[string]int
}

func (c *readDirCounter) Open(name string) (afero.File, error) {
	c.dirs[name]++
	return c.Fs.Open(name)
}

func TestLocator_Newest(t *testing.T) {
	fs := albumFs(t,
		"/album/2023/12/31/zzz.jpg",
		"/album/2024/01/15/a.jpg",
		"/album/2024/01/15/b.jpg",
		"/album/2024/01/02/later-name-earlier-day.jpg",
	)

	newest, err := NewLocator(fs, "/album").Newest()
	require.NoError(t, err)
	assert.Equal(t, "/album/2024/01/15/b.jpg", newest.Full())
}

func TestLocator_Newest_IgnoresMalformedNodes(t *testing.T) {
	fs := albumFs(t, "/album/2024/01/15/a.jpg")
	require.NoError(t, fs.MkdirAll("/album/9999x/01/01", 0755))    // not a year
	require.NoError(t, fs.MkdirAll("/album/2024/013/01", 0755))    // not a month
	mkFile(t, fs, "/album/2025")                                   // file at year level

	newest, err := NewLocator(fs, "/album").Newest()
	require.NoError(t, err)
	assert.Equal(t, "/album/2024/01/15/a.jpg", newest.Full())
}

func TestLocator_Newest_NotFoundLevels(t *testing.T) {
	tests := []struct {
		name  string
		setup func(fs afero.Fs)
		level string
	}{
		{"empty store", func(fs afero.Fs) {}, "year"},
		{"no months", func(fs afero.Fs) { fs.MkdirAll("/album/2024", 0755) }, "month"},
		{"no days", func(fs afero.Fs) { fs.MkdirAll("/album/2024/01", 0755) }, "day"},
		{"no files", func(fs afero.Fs) { fs.MkdirAll("/album/2024/01/15", 0755) }, "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			tt.setup(fs)

			_, err := NewLocator(fs, "/album").Newest()
			var nf *NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, tt.level, nf.Level)
		})
	}
}

func TestLocator_NewerThan_Scenario(t *testing.T) {
	fs := albumFs(t, "/album/2024/01/15/a.jpg")
	loc := NewLocator(fs, "/album")

	newest, err := loc.Newest()
	require.NoError(t, err)
	require.Equal(t, "/album/2024/01/15/a.jpg", newest.Full())

	mkFile(t, fs, "/album/2024/01/16/b.jpg")
	items, err := loc.NewerThan("/album/2024/01/15/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"/album/2024/01/16/b.jpg"}, fullPaths(items))

	mkFile(t, fs, "/album/2024/02/01/c.mp4")
	items, err = loc.NewerThan("/album/2024/01/16/b.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"/album/2024/02/01/c.mp4"}, fullPaths(items))
}

func TestLocator_NewerThan_CompletenessAndOrder(t *testing.T) {
	all := []string{
		"/album/2023/11/30/old.jpg",
		"/album/2024/01/15/a.jpg",
		"/album/2024/01/15/b.jpg",
		"/album/2024/01/15/c.jpg",
		"/album/2024/01/16/d.jpg",
		"/album/2024/03/01/e.mp4",
		"/album/2025/01/01/f.jpg",
	}
	fs := albumFs(t, all...)
	loc := NewLocator(fs, "/album")

	watermark := "/album/2024/01/15/b.jpg"
	items, err := loc.NewerThan(watermark)
	require.NoError(t, err)

	var want []string
	for _, p := range all {
		if p > watermark {
			want = append(want, p)
		}
	}
	sort.Strings(want)
	assert.Equal(t, want, fullPaths(items))
	assert.True(t, sort.StringsAreSorted(fullPaths(items)))
}

func TestLocator_NewerThan_EmptyDiff(t *testing.T) {
	fs := albumFs(t,
		"/album/2024/01/15/a.jpg",
		"/album/2024/01/16/b.jpg",
	)
	loc := NewLocator(fs, "/album")

	items, err := loc.NewerThan("/album/2024/01/15/a.jpg")
	require.NoError(t, err)
	require.NotEmpty(t, items)

	// Advancing to the last returned item makes the next diff empty.
	last := items[len(items)-1].Full()
	items, err = loc.NewerThan(last)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLocator_NewerThan_NothingNewerIsNotAnError(t *testing.T) {
	fs := albumFs(t, "/album/2024/01/15/a.jpg")
	items, err := NewLocator(fs, "/album").NewerThan("/album/2024/01/15/a.jpg")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLocator_NewerThan_InvalidWatermark(t *testing.T) {
	fs := albumFs(t, "/album/2024/01/15/a.jpg")
	_, err := NewLocator(fs, "/album").NewerThan("/album/2024")
	assert.ErrorIs(t, err, ErrInvalidWatermark)
}

func TestLocator_NewerThan_PrunesBelowWatermark(t *testing.T) {
	// countingFs tracks which directories get listed so the pruning
	// behavior is observable, not just the result set.
	fs := albumFs(t,
		"/album/2020/01/01/ancient.jpg",
		"/album/2024/01/15/a.jpg",
		"/album/2024/02/01/b.jpg",
	)
	counter := &readDirCounter{Fs: fs, dirs: map[string]int{}}
	loc := NewLocator(counter, "/album")

	_, err := loc.NewerThan("/album/2024/01/15/a.jpg")
	require.NoError(t, err)

	assert.Zero(t, counter.dirs["/album/2020"], "pruned year was listed")
	assert.Zero(t, counter.dirs["/album/2020/01"], "pruned month was listed")
}
