package relay

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/albumrelay/albumrelay/config"
)

// Ntfy delivers captures as ntfy attachments: a raw PUT of the file body to
// the configured topic, with metadata carried in headers.
type Ntfy struct {
	cfg     config.Ntfy
	clients clientPair
	fs      afero.Fs
}

// NewNtfy creates the ntfy destination.
func NewNtfy(cfg config.Ntfy, timeouts config.HTTP, fs afero.Fs) *Ntfy {
	return &Ntfy{cfg: cfg, clients: newClientPair(timeouts), fs: fs}
}

func (n *Ntfy) Name() string { return "ntfy" }

// Deliver PUTs the capture to {url}/{topic}.
func (n *Ntfy) Deliver(ctx context.Context, path string, size int64) error {
	l := sub("ntfy")

	if !typeAllowed(path, n.cfg.UploadScreenshots, n.cfg.UploadMovies) {
		l.Info("skipping by type config", "path", path)
		return nil
	}
	if n.cfg.Topic == "" {
		return fmt.Errorf("ntfy topic is not configured")
	}

	f, err := n.fs.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	// The topic is effectively a credential; the endpoint is deliberately
	// kept out of the logs.
	endpoint := n.cfg.URL + "/" + n.cfg.Topic

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, f)
	if err != nil {
		return err
	}
	req.ContentLength = size
	req.Header.Set("Filename", filepath.Base(path))
	if n.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+n.cfg.Token)
	}
	if n.cfg.Priority != "" && n.cfg.Priority != "default" {
		req.Header.Set("Priority", n.cfg.Priority)
	}
	req.Header.Set("Title", n.title(path))

	l.Info("starting upload", "path", path, "size", size)
	if err := doUpload(n.clients.pick(path), req, http.StatusOK); err != nil {
		l.Error("upload failed", "path", path, "err", err)
		return fmt.Errorf("ntfy: %w", err)
	}

	l.Info("uploaded", "path", path)
	return nil
}

func (n *Ntfy) title(path string) string {
	kind := "Screenshot"
	if IsVideo(path) {
		kind = "Movie"
	}
	if id := CaptureID(path); id != "" {
		return kind + " from " + id
	}
	return kind + " " + filepath.Base(path)
}
