// Package config loads the albumrelay ini configuration: a flat,
// section-qualified key/value store read once at process start.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Telegram upload modes.
const (
	ModeCompressed = "compressed"
	ModeOriginal   = "original"
	ModeBoth       = "both"
)

// Config is the fully resolved process configuration. It is read once at
// startup and treated as immutable afterwards.
type Config struct {
	General  General
	HTTP     HTTP
	Telegram Telegram
	Ntfy     Ntfy
	Discord  Discord
}

// General holds the daemon-wide settings.
type General struct {
	AlbumRoot     string
	CheckInterval time.Duration
	QueueCapacity int
	WatchAlbum    bool
	KeepLogs      bool
	LogLevel      string
	LogDir        string
}

// Level maps the configured log level string onto slog. Unknown values
// fall back to info.
func (g General) Level() slog.Level {
	switch g.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Timeouts bound a single delivery attempt.
type Timeouts struct {
	Connect time.Duration
	Total   time.Duration
}

// HTTP holds the per-media-kind delivery timeout tables. Videos are given
// longer budgets than images.
type HTTP struct {
	Image Timeouts
	Video Timeouts
}

// Telegram configures the Telegram destination.
type Telegram struct {
	Enabled           bool
	BotToken          string
	ChatID            string
	APIURL            string
	UploadScreenshots bool
	UploadMovies      bool
	UploadMode        string
}

// Ntfy configures the ntfy destination.
type Ntfy struct {
	Enabled           bool
	URL               string
	Topic             string
	Token             string
	Priority          string
	UploadScreenshots bool
	UploadMovies      bool
}

// Discord configures the Discord destination.
type Discord struct {
	Enabled           bool
	BotToken          string
	ChannelID         string
	APIURL            string
	UploadScreenshots bool
	UploadMovies      bool
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		General: General{
			CheckInterval: 5 * time.Second,
			QueueCapacity: 8,
			LogLevel:      "info",
		},
		HTTP: HTTP{
			Image: Timeouts{Connect: 10 * time.Second, Total: 60 * time.Second},
			Video: Timeouts{Connect: 20 * time.Second, Total: 300 * time.Second},
		},
		Telegram: Telegram{
			APIURL:            "https://api.telegram.org",
			UploadScreenshots: true,
			UploadMovies:      true,
			UploadMode:        ModeCompressed,
		},
		Ntfy: Ntfy{
			URL:               "https://ntfy.sh",
			Priority:          "default",
			UploadScreenshots: true,
			UploadMovies:      false,
		},
		Discord: Discord{
			APIURL:            "https://discord.com/api/v10",
			UploadScreenshots: true,
			UploadMovies:      false,
		},
	}
}

// Load reads the ini file at path on top of the defaults. A missing file is
// not an error; the defaults (plus whatever flags override later) apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")

	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.General.AlbumRoot = v.GetString("general.album_root")
	cfg.General.CheckInterval = time.Duration(v.GetInt("general.check_interval")) * time.Second
	cfg.General.QueueCapacity = v.GetInt("general.queue_capacity")
	cfg.General.WatchAlbum = v.GetBool("general.watch_album")
	cfg.General.KeepLogs = v.GetBool("general.keep_logs")
	cfg.General.LogLevel = v.GetString("general.log_level")
	cfg.General.LogDir = v.GetString("general.log_dir")

	cfg.HTTP.Image.Connect = time.Duration(v.GetInt("http.image_connect_timeout")) * time.Second
	cfg.HTTP.Image.Total = time.Duration(v.GetInt("http.image_total_timeout")) * time.Second
	cfg.HTTP.Video.Connect = time.Duration(v.GetInt("http.video_connect_timeout")) * time.Second
	cfg.HTTP.Video.Total = time.Duration(v.GetInt("http.video_total_timeout")) * time.Second

	cfg.Telegram.Enabled = v.GetBool("telegram.enabled")
	cfg.Telegram.BotToken = v.GetString("telegram.bot_token")
	cfg.Telegram.ChatID = v.GetString("telegram.chat_id")
	cfg.Telegram.APIURL = v.GetString("telegram.api_url")
	cfg.Telegram.UploadScreenshots = v.GetBool("telegram.upload_screenshots")
	cfg.Telegram.UploadMovies = v.GetBool("telegram.upload_movies")
	cfg.Telegram.UploadMode = v.GetString("telegram.upload_mode")

	cfg.Ntfy.Enabled = v.GetBool("ntfy.enabled")
	cfg.Ntfy.URL = v.GetString("ntfy.url")
	cfg.Ntfy.Topic = v.GetString("ntfy.topic")
	cfg.Ntfy.Token = v.GetString("ntfy.token")
	cfg.Ntfy.Priority = v.GetString("ntfy.priority")
	cfg.Ntfy.UploadScreenshots = v.GetBool("ntfy.upload_screenshots")
	cfg.Ntfy.UploadMovies = v.GetBool("ntfy.upload_movies")

	cfg.Discord.Enabled = v.GetBool("discord.enabled")
	cfg.Discord.BotToken = v.GetString("discord.bot_token")
	cfg.Discord.ChannelID = v.GetString("discord.channel_id")
	cfg.Discord.APIURL = v.GetString("discord.api_url")
	cfg.Discord.UploadScreenshots = v.GetBool("discord.upload_screenshots")
	cfg.Discord.UploadMovies = v.GetBool("discord.upload_movies")

	cfg.clamp()
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("general.album_root", cfg.General.AlbumRoot)
	v.SetDefault("general.check_interval", int(cfg.General.CheckInterval/time.Second))
	v.SetDefault("general.queue_capacity", cfg.General.QueueCapacity)
	v.SetDefault("general.watch_album", cfg.General.WatchAlbum)
	v.SetDefault("general.keep_logs", cfg.General.KeepLogs)
	v.SetDefault("general.log_level", cfg.General.LogLevel)
	v.SetDefault("general.log_dir", cfg.General.LogDir)

	v.SetDefault("http.image_connect_timeout", int(cfg.HTTP.Image.Connect/time.Second))
	v.SetDefault("http.image_total_timeout", int(cfg.HTTP.Image.Total/time.Second))
	v.SetDefault("http.video_connect_timeout", int(cfg.HTTP.Video.Connect/time.Second))
	v.SetDefault("http.video_total_timeout", int(cfg.HTTP.Video.Total/time.Second))

	v.SetDefault("telegram.enabled", cfg.Telegram.Enabled)
	v.SetDefault("telegram.bot_token", cfg.Telegram.BotToken)
	v.SetDefault("telegram.chat_id", cfg.Telegram.ChatID)
	v.SetDefault("telegram.api_url", cfg.Telegram.APIURL)
	v.SetDefault("telegram.upload_screenshots", cfg.Telegram.UploadScreenshots)
	v.SetDefault("telegram.upload_movies", cfg.Telegram.UploadMovies)
	v.SetDefault("telegram.upload_mode", cfg.Telegram.UploadMode)

	v.SetDefault("ntfy.enabled", cfg.Ntfy.Enabled)
	v.SetDefault("ntfy.url", cfg.Ntfy.URL)
	v.SetDefault("ntfy.topic", cfg.Ntfy.Topic)
	v.SetDefault("ntfy.token", cfg.Ntfy.Token)
	v.SetDefault("ntfy.priority", cfg.Ntfy.Priority)
	v.SetDefault("ntfy.upload_screenshots", cfg.Ntfy.UploadScreenshots)
	v.SetDefault("ntfy.upload_movies", cfg.Ntfy.UploadMovies)

	v.SetDefault("discord.enabled", cfg.Discord.Enabled)
	v.SetDefault("discord.bot_token", cfg.Discord.BotToken)
	v.SetDefault("discord.channel_id", cfg.Discord.ChannelID)
	v.SetDefault("discord.api_url", cfg.Discord.APIURL)
	v.SetDefault("discord.upload_screenshots", cfg.Discord.UploadScreenshots)
	v.SetDefault("discord.upload_movies", cfg.Discord.UploadMovies)
}

// clamp enforces the documented minimums.
func (c *Config) clamp() {
	if c.General.CheckInterval < time.Second {
		c.General.CheckInterval = time.Second
	}
	if c.General.QueueCapacity < 1 {
		c.General.QueueCapacity = 8
	}
	if !validUploadMode(c.Telegram.UploadMode) {
		c.Telegram.UploadMode = ModeCompressed
	}
}

func validUploadMode(mode string) bool {
	return mode == ModeCompressed || mode == ModeOriginal || mode == ModeBoth
}

// Validate checks that the configuration can actually deliver something:
// the album root must be set and at least one destination must be enabled
// and completely configured.
func (c *Config) Validate() error {
	if c.General.AlbumRoot == "" {
		return fmt.Errorf("general.album_root is not set")
	}
	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram is enabled but bot_token or chat_id is missing")
	}
	if c.Ntfy.Enabled && c.Ntfy.Topic == "" {
		return fmt.Errorf("ntfy is enabled but topic is missing")
	}
	if c.Discord.Enabled && (c.Discord.BotToken == "" || c.Discord.ChannelID == "") {
		return fmt.Errorf("discord is enabled but bot_token or channel_id is missing")
	}
	if !c.Telegram.Enabled && !c.Ntfy.Enabled && !c.Discord.Enabled {
		return fmt.Errorf("no upload destination is enabled; configure telegram, ntfy or discord")
	}
	return nil
}
