// Package shell turns shell-style commands into dashboard results.
package shell

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/hpungsan/shelldash/internal/config"
	"github.com/hpungsan/shelldash/internal/history"
	"github.com/hpungsan/shelldash/internal/logging"
	"github.com/hpungsan/shelldash/internal/notes"
	"github.com/hpungsan/shelldash/internal/rss"
	"github.com/hpungsan/shelldash/internal/weather"
)

const (
	HelpText      = `Commands: llmchat | notes | notes new "Title" | notes open "Title" | history | weather | rss | help`
	NoHistoryText = "(no history yet)"
	NoRSSText     = "(no RSS configured or available)"
)

// WeatherService provides the current weather payload.
type WeatherService interface {
	Current(ctx context.Context, cfg config.OpenWeather) weather.Payload
}

// HeadlineFetcher provides feed headlines.
type HeadlineFetcher interface {
	Headlines(ctx context.Context, feeds []string, limit int) []rss.Item
}

// Deps are the collaborators of an Interpreter.
type Deps struct {
	History *history.Log
	Notes   *notes.Store
	Weather WeatherService
	RSS     HeadlineFetcher
	Config  config.Source
	Now     func() time.Time
	Logger  *zap.Logger
}

// Interpreter answers shell commands.
type Interpreter struct {
	history *history.Log
	notes   *notes.Store
	weather WeatherService
	rss     HeadlineFetcher
	config  config.Source
	now     func() time.Time
	logger  *zap.Logger
}

// New creates an Interpreter. Missing Config, Now and Logger get defaults.
func New(d Deps) *Interpreter {
	if d.Config == nil {
		d.Config = config.Static(nil)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Interpreter{
		history: d.History,
		notes:   d.Notes,
		weather: d.Weather,
		rss:     d.RSS,
		config:  d.Config,
		now:     d.Now,
		logger:  logging.OrNop(d.Logger),
	}
}

// Interpret answers one command. It never fails.
// Non-empty commands are appended to the history after they are answered,
// so "history" lists the commands before it.
func (i *Interpreter) Interpret(ctx context.Context, raw string) Result {
	cmd := strings.TrimSpace(raw)
	if cmd == "" {
		return Text("")
	}

	result := i.dispatch(ctx, cmd)

	if err := i.history.Append(cmd); err != nil {
		i.logger.Warn("history append failed", zap.Error(err))
	}
	return result
}

func (i *Interpreter) dispatch(ctx context.Context, cmd string) Result {
	lower := strings.ToLower(cmd)
	switch {
	case lower == "help":
		return Text(HelpText)
	case lower == "llmchat":
		return OpenLLMChat()
	case len(cmd) >= 5 && strings.EqualFold(cmd[:5], "notes"):
		return i.notesCommand(cmd[5:])
	case lower == "history":
		return i.historyCommand()
	case lower == "weather":
		return i.weatherCommand(ctx)
	case lower == "rss":
		return i.rssCommand(ctx)
	}
	return Text(fmt.Sprintf("Unknown command: %s\nType 'help' for commands.", cmd))
}

func (i *Interpreter) notesCommand(tail string) Result {
	sub, rest := splitFirst(strings.TrimSpace(tail))
	switch strings.ToLower(sub) {
	case "new":
		title := stripQuotes(rest)
		if title == "" {
			title = notes.DefaultTitle(i.now())
		}
		sanitized, err := i.notes.Ensure(title)
		if err != nil {
			i.logger.Warn("note create failed", zap.String("title", title), zap.Error(err))
			sanitized = notes.SanitizeTitle(title)
		}
		return OpenNotes(&sanitized)
	case "open":
		title := stripQuotes(rest)
		if title == "" {
			return OpenNotes(nil)
		}
		sanitized := notes.SanitizeTitle(title)
		return OpenNotes(&sanitized)
	}
	return OpenNotes(nil)
}

func (i *Interpreter) historyCommand() Result {
	lines, err := i.history.Tail(history.DefaultTail)
	if err != nil {
		i.logger.Warn("history read failed", zap.Error(err))
	}
	if text := strings.Join(lines, "\n"); text != "" {
		return Text(text)
	}
	return Text(NoHistoryText)
}

func (i *Interpreter) weatherCommand(ctx context.Context) Result {
	cfg := i.config.Current()
	return Text(weather.Render(i.weather.Current(ctx, cfg.OpenWeather)))
}

func (i *Interpreter) rssCommand(ctx context.Context) Result {
	cfg := i.config.Current()
	items := i.rss.Headlines(ctx, cfg.RSSFeeds, rss.ShellLimit)
	if len(items) == 0 {
		return Text(NoRSSText)
	}
	lines := make([]string, len(items))
	for n, it := range items {
		lines[n] = fmt.Sprintf("- %s (%s)", it.Title, it.Source)
	}
	return Text(strings.Join(lines, "\n"))
}

// splitFirst splits s at the first whitespace run into a token and the trimmed remainder.
func splitFirst(s string) (string, string) {
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx:])
}

// stripQuotes removes one surrounding double quote from each end, then one
// surrounding single quote from each end.
func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	s = strings.TrimPrefix(s, `'`)
	s = strings.TrimSuffix(s, `'`)
	return s
}
