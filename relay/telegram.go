package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/albumrelay/albumrelay/config"
)

// Telegram delivers captures through the Telegram bot API. It is the
// dual-mode destination: depending on upload_mode a capture is sent as a
// media message (compressed by Telegram server-side), as a raw document
// (original), or both within the same attempt — in which case the attempt
// succeeds if either send did.
type Telegram struct {
	cfg     config.Telegram
	clients clientPair
	fs      afero.Fs
}

// NewTelegram creates the Telegram destination.
func NewTelegram(cfg config.Telegram, timeouts config.HTTP, fs afero.Fs) *Telegram {
	sub("telegram").Info("configured",
		"mode", cfg.UploadMode,
		"screenshots", cfg.UploadScreenshots,
		"movies", cfg.UploadMovies)
	return &Telegram{cfg: cfg, clients: newClientPair(timeouts), fs: fs}
}

func (t *Telegram) Name() string { return "telegram" }

// Deliver sends the capture according to the configured upload mode.
func (t *Telegram) Deliver(ctx context.Context, path string, size int64) error {
	l := sub("telegram")

	if !typeAllowed(path, t.cfg.UploadScreenshots, t.cfg.UploadMovies) {
		l.Info("skipping by type config", "path", path)
		return nil
	}

	switch t.cfg.UploadMode {
	case config.ModeOriginal:
		return t.send(ctx, path, size, false)
	case config.ModeBoth:
		// Both sends happen inside one attempt; retries are spent on the
		// pair, not on each sub-mode separately.
		cErr := t.send(ctx, path, size, true)
		oErr := t.send(ctx, path, size, false)
		if cErr != nil && oErr != nil {
			return errors.Join(cErr, oErr)
		}
		return nil
	default:
		return t.send(ctx, path, size, true)
	}
}

func (t *Telegram) send(ctx context.Context, path string, size int64, compressed bool) error {
	l := sub("telegram")

	contentType, err := contentTypeFor(path)
	if err != nil {
		return err
	}

	field, method := "document", "sendDocument"
	if compressed {
		if IsVideo(path) {
			field, method = "video", "sendVideo"
		} else {
			field, method = "photo", "sendPhoto"
		}
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s?chat_id=%s",
		t.cfg.APIURL, t.cfg.BotToken, method, url.QueryEscape(t.cfg.ChatID))

	body, formType, err := multipartBody(t.fs, path, field, filepath.Base(path), contentType, nil)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		body.Close()
		return err
	}
	req.Header.Set("Content-Type", formType)

	l.Info("starting upload", "path", path, "size", size, "method", method, "compressed", compressed)
	if err := doUpload(t.clients.pick(path), req, http.StatusOK); err != nil {
		l.Error("upload failed", "path", path, "method", method, "err", err)
		return fmt.Errorf("telegram %s: %w", method, err)
	}

	l.Info("uploaded", "path", path, "method", method)
	return nil
}
