// Package config loads tool configuration from defaults, an optional config
// file, and VNTSYNC_* environment variables, in that precedence order.
// Command-line flags override on top, handled by the cmd layer.
package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vntt-tools/vntsync/internal/sync"
	"github.com/vntt-tools/vntsync/internal/vnt"
)

// Config holds everything a sync run needs besides the project codename.
type Config struct {
	// Endpoint is the API base URL.
	Endpoint string

	// Language is the target language code for translation history.
	Language string

	// ChunkSize bounds each upload batch.
	ChunkSize int

	// Directory holds the local TSV files.
	Directory string

	// DryRun reports uploads instead of transmitting them.
	DryRun bool

	// Journal enables the per-run SQLite journal.
	Journal bool

	// LogFile, when set, mirrors progress output into a rotating file.
	LogFile string
}

// Load reads configuration. A missing config file is fine; a malformed one
// is an error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("endpoint", vnt.DefaultEndpoint)
	v.SetDefault("language", "en")
	v.SetDefault("chunk_size", sync.DefaultChunkSize)
	v.SetDefault("directory", ".")
	v.SetDefault("dry_run", false)
	v.SetDefault("journal", true)
	v.SetDefault("log_file", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "vntsync"))
	}

	v.SetEnvPrefix("VNTSYNC")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{
		Endpoint:  v.GetString("endpoint"),
		Language:  v.GetString("language"),
		ChunkSize: v.GetInt("chunk_size"),
		Directory: v.GetString("directory"),
		DryRun:    v.GetBool("dry_run"),
		Journal:   v.GetBool("journal"),
		LogFile:   v.GetString("log_file"),
	}, nil
}

// NewLogger builds the run logger: stderr, mirrored into a size-rotated
// file when LogFile is set.
func (c *Config) NewLogger() *log.Logger {
	var w io.Writer = os.Stderr
	if c.LogFile != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   c.LogFile,
			MaxSize:    5, // MB
			MaxBackups: 3,
		})
	}
	return log.New(w, "", log.LstdFlags)
}

// JournalPath is where the run journal lives for a given store directory.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Directory, ".vntsync", "journal.db")
}
