// Package weather fetches current conditions from OpenWeather behind a file cache.
package weather

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/hpungsan/shelldash/internal/config"
	"github.com/hpungsan/shelldash/internal/errors"
	"github.com/hpungsan/shelldash/internal/fsutil"
	"github.com/hpungsan/shelldash/internal/logging"
)

const (
	// CacheFileName is the cache file name inside the data directory.
	CacheFileName  = "weather_cache.json"
	CacheTTL       = 20 * time.Minute
	DefaultTimeout = 20 * time.Second
	DefaultBaseURL = "https://api.openweathermap.org"

	maxErrorBody = 256
)

// Status tags a Payload.
type Status string

const (
	StatusOK           Status = "ok"
	StatusUnconfigured Status = "unconfigured"
	StatusError        Status = "error"
)

// Payload is the weather result served to clients and stored in the cache.
// Data is the upstream response, passed through untouched.
type Payload struct {
	Status Status          `json:"status"`
	City   string          `json:"city,omitempty"`
	Units  string          `json:"units,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type cacheFile struct {
	TS      float64 `json:"ts"`
	Payload Payload `json:"payload"`
}

// Service returns cached weather, refreshing it from upstream when stale.
type Service struct {
	cachePath string
	baseURL   string
	http      *http.Client
	now       func() time.Time
	group     singleflight.Group
	logger    *zap.Logger
}

// NewService creates a Service caching at cachePath. A nil logger disables logging.
func NewService(cachePath string, logger *zap.Logger) *Service {
	return &Service{
		cachePath: cachePath,
		baseURL:   DefaultBaseURL,
		http:      &http.Client{Timeout: DefaultTimeout},
		now:       time.Now,
		logger:    logging.OrNop(logger),
	}
}

// Current returns a fresh cached payload or fetches a new one. Concurrent
// misses share a single upstream call. It never fails; failures are encoded
// in the payload.
func (s *Service) Current(ctx context.Context, cfg config.OpenWeather) Payload {
	if p, ok := s.cached(); ok {
		return p
	}

	ch := s.group.DoChan("current", func() (any, error) {
		if p, ok := s.cached(); ok {
			return p, nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultTimeout)
		defer cancel()
		p := s.fetch(fetchCtx, cfg)
		s.store(p)
		return p, nil
	})

	select {
	case res := <-ch:
		return res.Val.(Payload)
	case <-ctx.Done():
		return Payload{Status: StatusError, Error: ctx.Err().Error()}
	}
}

// readCache loads the cache file. Returns *errors.ReadError on failure.
func (s *Service) readCache() (*cacheFile, error) {
	data, err := fsutil.ReadFile(s.cachePath)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NewReadError(s.cachePath, errors.ReadMissing, err)
		}
		return nil, errors.NewReadError(s.cachePath, errors.ReadIO, err)
	}
	var c cacheFile
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.NewReadError(s.cachePath, errors.ReadCorrupt, err)
	}
	if c.Payload.Status == "" {
		return nil, errors.NewReadError(s.cachePath, errors.ReadCorrupt, fmt.Errorf("payload has no status"))
	}
	return &c, nil
}

func (s *Service) cached() (Payload, bool) {
	c, err := s.readCache()
	if err != nil {
		if !errors.IsReadKind(err, errors.ReadMissing) {
			s.logger.Warn("weather cache unreadable, refetching", zap.Error(err))
		}
		return Payload{}, false
	}
	age := float64(s.now().UnixNano())/1e9 - c.TS
	if age >= CacheTTL.Seconds() {
		return Payload{}, false
	}
	return c.Payload, true
}

func (s *Service) store(p Payload) {
	c := cacheFile{
		TS:      float64(s.now().UnixNano()) / 1e9,
		Payload: p,
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		s.logger.Warn("weather cache encode failed", zap.Error(err))
		return
	}
	if err := fsutil.WriteFileAtomic(s.cachePath, data, 0600); err != nil {
		s.logger.Warn("weather cache write failed", zap.String("path", s.cachePath), zap.Error(err))
	}
}

func (s *Service) fetch(ctx context.Context, cfg config.OpenWeather) Payload {
	city := cfg.CityOrDefault()
	units := cfg.UnitsOrDefault()
	if cfg.APIKey == "" {
		return Payload{Status: StatusUnconfigured, City: city}
	}

	data, err := s.get(ctx, city, units, cfg.APIKey)
	if err != nil {
		s.logger.Warn("weather fetch failed", zap.String("city", city), zap.Error(err))
		return Payload{Status: StatusError, Error: err.Error()}
	}
	s.logger.Debug("weather fetched", zap.String("city", city))
	return Payload{Status: StatusOK, Data: data, City: city, Units: units}
}

func (s *Service) get(ctx context.Context, city, units, apiKey string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", apiKey)
	q.Set("units", units)
	endpoint := strings.TrimRight(s.baseURL, "/") + "/data/2.5/weather?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		// url.Error embeds the request URL, which carries the API key.
		var uerr *url.Error
		if stderrors.As(err, &uerr) {
			return nil, uerr.Err
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if msg := strings.TrimSpace(string(snippet)); msg != "" {
			return nil, fmt.Errorf("status %s: %s", resp.Status, msg)
		}
		return nil, fmt.Errorf("status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("invalid JSON in response")
	}
	return json.RawMessage(body), nil
}
