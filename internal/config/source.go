package config

import (
	"os"

	"go.uber.org/zap"

	"github.com/hpungsan/shelldash/internal/logging"
)

// Source hands out a config snapshot for one request.
// Implementations never fail; unreadable config degrades to an empty Config.
type Source interface {
	Current() *Config
}

// FileSource re-reads config.json on every Current call, so edits apply without a restart.
type FileSource struct {
	dir    string
	getenv func(string) string
	logger *zap.Logger
}

// NewFileSource creates a FileSource for dir using the process environment.
func NewFileSource(dir string, logger *zap.Logger) *FileSource {
	return &FileSource{dir: dir, getenv: os.Getenv, logger: logging.OrNop(logger)}
}

// Current loads and resolves the config file.
func (s *FileSource) Current() *Config {
	cfg, err := Load(s.dir)
	return Resolve(cfg, err, s.getenv, s.logger)
}

type staticSource struct {
	cfg *Config
}

// Static returns a Source that always yields cfg. Used by tests and one-shot CLI calls.
func Static(cfg *Config) Source {
	if cfg == nil {
		cfg = &Config{}
	}
	return staticSource{cfg: cfg}
}

func (s staticSource) Current() *Config {
	return s.cfg
}
