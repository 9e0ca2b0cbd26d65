package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hpungsan/shelldash/internal/chat"
	"github.com/hpungsan/shelldash/internal/config"
	"github.com/hpungsan/shelldash/internal/dashboard"
	"github.com/hpungsan/shelldash/internal/errors"
	"github.com/hpungsan/shelldash/internal/logging"
	"github.com/hpungsan/shelldash/internal/mcp"
	"github.com/hpungsan/shelldash/internal/web"
)

// cliEnv carries process dependencies so commands can be exercised in tests.
type cliEnv struct {
	stdout    io.Writer
	stdin     io.Reader
	getenv    func(string) string
	completer chat.Completer // nil uses the HTTP client
	logger    *zap.Logger    // nil builds one from --verbose
}

func defaultEnv() *cliEnv {
	return &cliEnv{stdout: os.Stdout, stdin: os.Stdin, getenv: os.Getenv}
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *cliEnv) *cli.App {
	app := &cli.App{
		Name:    "shelldash",
		Usage:   "Personal shell dashboard: commands, notes, LLM chat, weather and RSS",
		Version: Version,
		Writer:  env.stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data-dir", Aliases: []string{"d"}, EnvVars: []string{dashboard.EnvDataDir}, Usage: "Data directory (default ~/.shelldash)"},
			&cli.BoolFlag{Name: "verbose", Usage: "Enable debug logging"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Output format: json|yaml"},
		},
		Before: func(c *cli.Context) error {
			switch c.String("format") {
			case "json", "yaml":
			default:
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("unknown format %q (want json or yaml)", c.String("format"))))
			}
			return nil
		},
		Commands: []*cli.Command{
			serveCmd(env),
			mcpCmd(env),
			runCmd(env),
			shellCmd(env),
			notesCmd(env),
			chatCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// session is an opened dashboard plus its logger.
type session struct {
	dash    *dashboard.Dashboard
	logger  *zap.Logger
	watcher *config.Watcher
}

func (s *session) close() {
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	_ = s.logger.Sync()
}

// open resolves the data directory, loads .env files, and wires the dashboard.
// With watch set, config.json is cached by a Watcher instead of read on every call.
func (env *cliEnv) open(c *cli.Context, watch bool) (*session, error) {
	dataDir := c.String("data-dir")
	if dataDir == "" {
		dir, err := dashboard.DefaultDataDir(env.getenv)
		if err != nil {
			return nil, err
		}
		dataDir = dir
	}

	logger := env.logger
	if logger == nil {
		l, err := logging.New(c.Bool("verbose"))
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
		logger = l
	}

	loadDotEnv(logger, ".env", filepath.Join(dataDir, ".env"))

	s := &session{logger: logger}
	var src config.Source
	if watch {
		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return nil, err
		}
		w, err := config.NewWatcher(dataDir, logger.Named("config"))
		if err != nil {
			return nil, err
		}
		if err := w.Start(c.Context); err != nil {
			_ = w.Close()
			return nil, err
		}
		s.watcher = w
		src = w
	}

	d, err := dashboard.New(dashboard.Options{
		DataDir:   dataDir,
		Config:    src,
		Completer: env.completer,
		Logger:    logger,
	})
	if err != nil {
		s.close()
		return nil, err
	}
	s.dash = d
	return s, nil
}

// loadDotEnv loads each existing file. Variables already set are kept.
func loadDotEnv(logger *zap.Logger, paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			logger.Warn("could not load env file", zap.String("path", p), zap.Error(err))
			continue
		}
		logger.Debug("loaded env file", zap.String("path", p))
	}
}

// serveCmd creates the serve command.
func serveCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the dashboard HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8000, Usage: "Port to listen on"},
			&cli.BoolFlag{Name: "watch-config", Usage: "Cache config.json and reload it on change"},
		},
		Action: func(c *cli.Context) error {
			s, err := env.open(c, c.Bool("watch-config"))
			if err != nil {
				return outputError(err)
			}
			defer s.close()

			srv := web.NewServer(s.dash, Version, c.String("bind"), c.Int("port"), s.logger.Named("http"))
			if err := web.Run(c.Context, srv, s.logger); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				return outputError(err)
			}
			return nil
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve dashboard tools over MCP stdio",
		Action: func(c *cli.Context) error {
			s, err := env.open(c, false)
			if err != nil {
				return outputError(err)
			}
			defer s.close()
			return mcp.Run(s.dash, Version, s.logger.Named("mcp"))
		},
	}
}

// runCmd creates the run command.
func runCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Interpret one dashboard command and print its result",
		ArgsUsage: "<command...>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("a command is required"))
			}
			s, err := env.open(c, false)
			if err != nil {
				return outputError(err)
			}
			defer s.close()

			result := s.dash.Command(c.Context, strings.Join(c.Args().Slice(), " "))
			return env.output(c, result)
		},
	}
}

// shellCmd creates the interactive shell command.
func shellCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Interactive dashboard shell",
		Action: func(c *cli.Context) error {
			s, err := env.open(c, false)
			if err != nil {
				return outputError(err)
			}
			defer s.close()
			return runREPL(c.Context, s.dash, env.stdin, env.stdout)
		},
	}
}

// notesCmd creates the notes command group.
func notesCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "notes",
		Usage: "Manage Markdown notes",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List note titles",
				Action: func(c *cli.Context) error {
					s, err := env.open(c, false)
					if err != nil {
						return outputError(err)
					}
					defer s.close()

					titles, err := s.dash.Notes.List()
					if err != nil {
						return outputError(err)
					}
					return env.output(c, map[string]any{"notes": titles})
				},
			},
			{
				Name:      "open",
				Usage:     "Print a note, creating it if missing (latest note when no title)",
				ArgsUsage: "[title...]",
				Action: func(c *cli.Context) error {
					s, err := env.open(c, false)
					if err != nil {
						return outputError(err)
					}
					defer s.close()

					note, err := s.dash.Notes.Open(argTitle(c))
					if err != nil {
						return outputError(err)
					}
					return env.output(c, note)
				},
			},
			{
				Name:      "save",
				Usage:     "Overwrite a note (reads content from stdin)",
				ArgsUsage: "<title...>",
				Action: func(c *cli.Context) error {
					title := argTitle(c)
					if title == nil {
						return outputError(errors.NewInvalidRequest("a title is required"))
					}
					content, err := io.ReadAll(env.stdin)
					if err != nil {
						return outputError(errors.NewInternal(err))
					}

					s, err := env.open(c, false)
					if err != nil {
						return outputError(err)
					}
					defer s.close()

					out, err := s.dash.Notes.Save(*title, string(content))
					if err != nil {
						return outputError(err)
					}
					return env.output(c, out)
				},
			},
			{
				Name:      "render",
				Usage:     "Render a note to HTML",
				ArgsUsage: "[title...]",
				Action: func(c *cli.Context) error {
					s, err := env.open(c, false)
					if err != nil {
						return outputError(err)
					}
					defer s.close()

					out, err := s.dash.Notes.Render(argTitle(c))
					if err != nil {
						return outputError(err)
					}
					return env.output(c, out)
				},
			},
		},
	}
}

// chatCmd creates the chat command group.
func chatCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Chat with the configured LLM",
		Subcommands: []*cli.Command{
			{
				Name:      "send",
				Usage:     "Send a message and print the reply",
				ArgsUsage: "<message...>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "session", Aliases: []string{"s"}, Usage: "Session id (new session when omitted)"},
					&cli.StringFlag{Name: "system", Usage: "System prompt for a new conversation"},
					&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "Model override"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return outputError(errors.NewInvalidRequest("a message is required"))
					}
					s, err := env.open(c, false)
					if err != nil {
						return outputError(err)
					}
					defer s.close()

					out, err := s.dash.SendChat(c.Context, chat.SendInput{
						Message:      strings.Join(c.Args().Slice(), " "),
						SessionID:    c.String("session"),
						SystemPrompt: c.String("system"),
						Model:        c.String("model"),
					})
					if err != nil {
						return outputError(err)
					}
					return env.output(c, out)
				},
			},
			{
				Name:      "history",
				Usage:     "Print a session transcript",
				ArgsUsage: "<session-id>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return outputError(errors.NewInvalidRequest("exactly one session id is required"))
					}
					s, err := env.open(c, false)
					if err != nil {
						return outputError(err)
					}
					defer s.close()
					return env.output(c, s.dash.Chat.History(c.Args().First()))
				},
			},
			{
				Name:  "sessions",
				Usage: "List chat sessions, newest first",
				Action: func(c *cli.Context) error {
					s, err := env.open(c, false)
					if err != nil {
						return outputError(err)
					}
					defer s.close()

					sessions, err := s.dash.Chat.Sessions()
					if err != nil {
						return outputError(err)
					}
					return env.output(c, map[string]any{"sessions": sessions})
				},
			},
		},
	}
}

// Helper functions

// output writes v to stdout in the --format encoding.
func (env *cliEnv) output(c *cli.Context, v any) error {
	if c.String("format") == "yaml" {
		return outputYAML(env.stdout, v)
	}
	return outputJSON(env.stdout, v)
}

// outputJSON marshals v as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputYAML marshals v as YAML. Values without YAML hooks go through their
// JSON form so field names match the API.
func outputYAML(w io.Writer, v any) error {
	if _, ok := v.(yaml.Marshaler); !ok {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return err
		}
		v = generic
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// outputError formats error for CLI.
func outputError(err error) error {
	var dErr *errors.DashError
	if stderrors.As(err, &dErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", dErr.Code, dErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// argTitle joins positional args into a title, nil when there are none.
func argTitle(c *cli.Context) *string {
	if c.NArg() == 0 {
		return nil
	}
	title := strings.Join(c.Args().Slice(), " ")
	return &title
}
