package relay

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/albumrelay/albumrelay/config"
)

// Destination is a delivery collaborator. Deliver streams the file at path
// to the remote side and returns nil on success. Each call re-opens and
// re-streams the source from byte 0; nothing is cached between attempts.
type Destination interface {
	Name() string
	Deliver(ctx context.Context, path string, size int64) error
}

// clientPair holds one HTTP client per media kind, reflecting the per-type
// timeout tables: the video client tolerates much longer transfers.
type clientPair struct {
	image *http.Client
	video *http.Client
}

func newClientPair(cfg config.HTTP) clientPair {
	return clientPair{
		image: newHTTPClient(cfg.Image),
		video: newHTTPClient(cfg.Video),
	}
}

// pick returns the client whose timeouts fit the capture at path.
func (p clientPair) pick(path string) *http.Client {
	if IsVideo(path) {
		return p.video
	}
	return p.image
}

func newHTTPClient(t config.Timeouts) *http.Client {
	return &http.Client{
		Timeout: t.Total,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: t.Connect,
			}).DialContext,
			ResponseHeaderTimeout: t.Total,
			ExpectContinueTimeout: time.Second,
		},
	}
}

// typeAllowed applies a destination's screenshot/movie allow-list.
func typeAllowed(path string, screenshots, movies bool) bool {
	if IsVideo(path) {
		return movies
	}
	return screenshots
}

// contentTypeFor maps album file extensions onto MIME types. Only the two
// capture formats are known; anything else is undeliverable.
func contentTypeFor(path string) (string, error) {
	switch {
	case IsVideo(path):
		return "video/mp4", nil
	case hasExtFold(path, ".jpg") || hasExtFold(path, ".jpeg"):
		return "image/jpeg", nil
	}
	return "", fmt.Errorf("unknown capture extension in %s", path)
}

func hasExtFold(path, ext string) bool {
	return strings.EqualFold(filepath.Ext(path), ext)
}

// multipartBody streams the file at path as one multipart form file. The
// file is opened eagerly so a vanished source fails before any bytes move;
// the multipart framing is produced through a pipe so the upload never
// buffers the whole file.
func multipartBody(fs afero.Fs, path, field, filename, contentType string, extra map[string]string) (io.ReadCloser, string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer f.Close()

		for k, v := range extra {
			if err := mw.WriteField(k, v); err != nil {
				pw.CloseWithError(err)
				return
			}
		}

		var part io.Writer
		if contentType != "" {
			part, err = mw.CreatePart(fileHeader(field, filename, contentType))
		} else {
			part, err = mw.CreateFormFile(field, filename)
		}
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	return pr, mw.FormDataContentType(), nil
}

func fileHeader(field, filename, contentType string) map[string][]string {
	return map[string][]string{
		"Content-Disposition": {fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename)},
		"Content-Type":        {contentType},
	}
}

// doUpload performs the request and closes the response, mapping the HTTP
// status onto the boolean success contract.
func doUpload(client *http.Client, req *http.Request, okStatuses ...int) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("transport: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	for _, ok := range okStatuses {
		if resp.StatusCode == ok {
			return nil
		}
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}
