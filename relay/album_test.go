package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlbumPath(t *testing.T) {
	p, err := ParseAlbumPath("/album", "/album/2024/01/15/shot.jpg")
	require.NoError(t, err)
	assert.Equal(t, "2024", p.Year)
	assert.Equal(t, "01", p.Month)
	assert.Equal(t, "15", p.Day)
	assert.Equal(t, "shot.jpg", p.Name)
	assert.Equal(t, "/album/2024/01/15/shot.jpg", p.Full())
}

func TestParseAlbumPath_Invalid(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"too short", "/album/2024/01"},
		{"too deep", "/album/2024/01/15/extra/shot.jpg"},
		{"year not digits", "/album/20x4/01/15/shot.jpg"},
		{"year wrong width", "/album/24/01/15/shot.jpg"},
		{"month wrong width", "/album/2024/1/15/shot.jpg"},
		{"day not digits", "/album/2024/01/xx/shot.jpg"},
		{"outside root", "/other/2024/01/15/shot.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAlbumPath("/album", tt.path)
			assert.ErrorIs(t, err, ErrInvalidWatermark)
		})
	}
}

func TestAlbumPath_Ordering(t *testing.T) {
	a := NewAlbumPath("/album", "2024", "01", "15", "a.jpg")
	b := NewAlbumPath("/album", "2024", "01", "16", "b.jpg")
	c := NewAlbumPath("/album", "2024", "02", "01", "c.mp4")

	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.False(t, c.Less(a))
}

func TestIsVideo(t *testing.T) {
	assert.True(t, IsVideo("clip.mp4"))
	assert.True(t, IsVideo("clip.MP4"))
	assert.False(t, IsVideo("shot.jpg"))
	assert.False(t, IsVideo("noext"))
}

func TestMaxAttempts(t *testing.T) {
	assert.Equal(t, 2, MaxAttempts("/album/2024/01/15/shot.jpg"))
	assert.Equal(t, 3, MaxAttempts("/album/2024/01/15/clip.mp4"))
}

func TestCaptureID(t *testing.T) {
	name := "2024011512345600-0123456789ABCDEF0123456789ABCDEF.jpg"
	assert.Equal(t, "0123456789ABCDEF0123456789ABCDEF", CaptureID("/album/2024/01/15/"+name))

	assert.Equal(t, "", CaptureID("short.jpg"))
}
