package relay

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/albumrelay/albumrelay/config"
)

// Discord delivers captures as channel message attachments through the
// Discord bot API.
type Discord struct {
	cfg     config.Discord
	clients clientPair
	fs      afero.Fs
}

// NewDiscord creates the Discord destination.
func NewDiscord(cfg config.Discord, timeouts config.HTTP, fs afero.Fs) *Discord {
	return &Discord{cfg: cfg, clients: newClientPair(timeouts), fs: fs}
}

func (d *Discord) Name() string { return "discord" }

// Deliver posts the capture as a multipart message to the channel.
func (d *Discord) Deliver(ctx context.Context, path string, size int64) error {
	l := sub("discord")

	if !typeAllowed(path, d.cfg.UploadScreenshots, d.cfg.UploadMovies) {
		l.Info("skipping by type config", "path", path)
		return nil
	}

	endpoint := fmt.Sprintf("%s/channels/%s/messages", d.cfg.APIURL, d.cfg.ChannelID)

	body, formType, err := multipartBody(d.fs, path, "files[0]", filepath.Base(path), "", nil)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		body.Close()
		return err
	}
	req.Header.Set("Content-Type", formType)
	req.Header.Set("Authorization", "Bot "+d.cfg.BotToken)

	l.Info("starting upload", "path", path, "size", size)
	if err := doUpload(d.clients.pick(path), req, http.StatusOK, http.StatusCreated); err != nil {
		l.Error("upload failed", "path", path, "err", err)
		return fmt.Errorf("discord: %w", err)
	}

	l.Info("uploaded", "path", path)
	return nil
}
