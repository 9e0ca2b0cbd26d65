// Package dashboard wires every component of shelldash from one data directory.
package dashboard

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hpungsan/shelldash/internal/chat"
	"github.com/hpungsan/shelldash/internal/config"
	"github.com/hpungsan/shelldash/internal/history"
	"github.com/hpungsan/shelldash/internal/llm"
	"github.com/hpungsan/shelldash/internal/logging"
	"github.com/hpungsan/shelldash/internal/notes"
	"github.com/hpungsan/shelldash/internal/rss"
	"github.com/hpungsan/shelldash/internal/shell"
	"github.com/hpungsan/shelldash/internal/weather"
)

const (
	// EnvDataDir overrides the default data directory.
	EnvDataDir = "SHELLDASH_DATA_DIR"

	NotesDir = "notes"
	ChatsDir = "chats"
)

// DefaultDataDir returns $SHELLDASH_DATA_DIR, or ~/.shelldash.
func DefaultDataDir(getenv func(string) string) (string, error) {
	if dir := getenv(EnvDataDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".shelldash"), nil
}

// Options configure New. Only DataDir is required.
type Options struct {
	DataDir   string
	Config    config.Source
	Completer chat.Completer
	Logger    *zap.Logger
}

// Dashboard holds the wired components.
type Dashboard struct {
	DataDir string
	Config  config.Source
	History *history.Log
	Notes   *notes.Store
	Chat    *chat.Service
	Weather *weather.Service
	RSS     *rss.Fetcher
	Shell   *shell.Interpreter
	Logger  *zap.Logger
}

// New creates the data layout and builds all components.
// Config defaults to a FileSource on DataDir; Completer defaults to the HTTP LLM client.
func New(opts Options) (*Dashboard, error) {
	if opts.DataDir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	logger := logging.OrNop(opts.Logger)

	for _, dir := range []string{
		opts.DataDir,
		filepath.Join(opts.DataDir, NotesDir),
		filepath.Join(opts.DataDir, ChatsDir),
	} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	src := opts.Config
	if src == nil {
		src = config.NewFileSource(opts.DataDir, logger)
	}
	completer := opts.Completer
	if completer == nil {
		completer = llm.NewClient(logger.Named("llm"))
	}

	d := &Dashboard{
		DataDir: opts.DataDir,
		Config:  src,
		History: history.NewLog(filepath.Join(opts.DataDir, history.FileName)),
		Notes:   notes.NewStore(filepath.Join(opts.DataDir, NotesDir)),
		Chat:    chat.NewService(chat.NewStore(filepath.Join(opts.DataDir, ChatsDir)), completer, logger.Named("chat")),
		Weather: weather.NewService(filepath.Join(opts.DataDir, weather.CacheFileName), logger.Named("weather")),
		RSS:     rss.NewFetcher(logger.Named("rss")),
		Logger:  logger,
	}
	d.Shell = shell.New(shell.Deps{
		History: d.History,
		Notes:   d.Notes,
		Weather: d.Weather,
		RSS:     d.RSS,
		Config:  src,
		Logger:  logger.Named("shell"),
	})

	logger.Debug("dashboard ready", zap.String("data_dir", opts.DataDir))
	return d, nil
}

// Command interprets one shell command.
func (d *Dashboard) Command(ctx context.Context, raw string) shell.Result {
	return d.Shell.Interpret(ctx, raw)
}

// SendChat runs one chat exchange with the current config.
func (d *Dashboard) SendChat(ctx context.Context, in chat.SendInput) (*chat.SendOutput, error) {
	return d.Chat.Send(ctx, in, d.Config.Current())
}

// CurrentWeather returns the weather payload for the configured city.
func (d *Dashboard) CurrentWeather(ctx context.Context) weather.Payload {
	return d.Weather.Current(ctx, d.Config.Current().OpenWeather)
}

// Headlines returns up to limit headlines from the configured feeds.
func (d *Dashboard) Headlines(ctx context.Context, limit int) []rss.Item {
	return d.RSS.Headlines(ctx, d.Config.Current().RSSFeeds, limit)
}
