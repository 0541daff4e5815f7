package relay

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albumrelay/albumrelay/config"
)

func ntfyCfg(srv *uploadServer) config.Ntfy {
	return config.Ntfy{
		Enabled:           true,
		URL:               srv.URL,
		Topic:             "captures",
		Priority:          "default",
		UploadScreenshots: true,
		UploadMovies:      true,
	}
}

func TestNtfy_Deliver(t *testing.T) {
	srv := newUploadServer(t, nil)
	name := "2024011512345600-0123456789ABCDEF0123456789ABCDEF.jpg"
	fs := albumFs(t, "/album/2024/01/15/"+name)

	n := NewNtfy(ntfyCfg(srv), testTimeouts(), fs)
	require.NoError(t, n.Deliver(context.Background(), "/album/2024/01/15/"+name, 4))

	uploads := srv.all()
	require.Len(t, uploads, 1)
	assert.Equal(t, http.MethodPut, uploads[0].method)
	assert.Equal(t, "/captures", uploads[0].path)
	assert.Equal(t, "data", string(uploads[0].body))
	assert.Equal(t, name, uploads[0].header.Get("Filename"))
	assert.Equal(t, "Screenshot from 0123456789ABCDEF0123456789ABCDEF", uploads[0].header.Get("Title"))
	assert.Empty(t, uploads[0].header.Get("Authorization"))
	assert.Empty(t, uploads[0].header.Get("Priority"))
}

func TestNtfy_TokenAndPriorityHeaders(t *testing.T) {
	srv := newUploadServer(t, nil)
	fs := albumFs(t, "/album/2024/01/15/shot.jpg")

	cfg := ntfyCfg(srv)
	cfg.Token = "tk_secret"
	cfg.Priority = "high"
	n := NewNtfy(cfg, testTimeouts(), fs)
	require.NoError(t, n.Deliver(context.Background(), "/album/2024/01/15/shot.jpg", 4))

	uploads := srv.all()
	require.Len(t, uploads, 1)
	assert.Equal(t, "Bearer tk_secret", uploads[0].header.Get("Authorization"))
	assert.Equal(t, "high", uploads[0].header.Get("Priority"))
	// Short names carry no capture id; the title falls back to the base name.
	assert.Equal(t, "Screenshot shot.jpg", uploads[0].header.Get("Title"))
}

func TestNtfy_MovieTitle(t *testing.T) {
	srv := newUploadServer(t, nil)
	name := "2024011512345600-0123456789ABCDEF0123456789ABCDEF.mp4"
	fs := albumFs(t, "/album/2024/01/15/"+name)

	n := NewNtfy(ntfyCfg(srv), testTimeouts(), fs)
	require.NoError(t, n.Deliver(context.Background(), "/album/2024/01/15/"+name, 4))

	uploads := srv.all()
	require.Len(t, uploads, 1)
	assert.Equal(t, "Movie from 0123456789ABCDEF0123456789ABCDEF", uploads[0].header.Get("Title"))
}

func TestNtfy_MissingTopic(t *testing.T) {
	srv := newUploadServer(t, nil)
	fs := albumFs(t, "/album/2024/01/15/shot.jpg")

	cfg := ntfyCfg(srv)
	cfg.Topic = ""
	n := NewNtfy(cfg, testTimeouts(), fs)

	assert.Error(t, n.Deliver(context.Background(), "/album/2024/01/15/shot.jpg", 4))
	assert.Empty(t, srv.all())
}

func TestNtfy_SkipsDisallowedType(t *testing.T) {
	srv := newUploadServer(t, nil)
	fs := albumFs(t, "/album/2024/01/15/clip.mp4")

	cfg := ntfyCfg(srv)
	cfg.UploadMovies = false
	n := NewNtfy(cfg, testTimeouts(), fs)

	assert.NoError(t, n.Deliver(context.Background(), "/album/2024/01/15/clip.mp4", 4))
	assert.Empty(t, srv.all())
}

func TestNtfy_ErrorStatus(t *testing.T) {
	srv := newUploadServer(t, func(string) int { return http.StatusForbidden })
	fs := albumFs(t, "/album/2024/01/15/shot.jpg")

	n := NewNtfy(ntfyCfg(srv), testTimeouts(), fs)
	assert.Error(t, n.Deliver(context.Background(), "/album/2024/01/15/shot.jpg", 4))
}
