package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/shelldash/internal/config"
)

const osloBody = `{"name":"Oslo","main":{"temp":3.5,"feels_like":-1},"weather":[{"description":"light snow"}]}`

type fakeUpstream struct {
	srv   *httptest.Server
	calls atomic.Int32
}

func newFakeUpstream(t *testing.T, status int, body string, delay time.Duration) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		require.Equal(t, "/data/2.5/weather", r.URL.Path)
		require.Equal(t, "Oslo", r.URL.Query().Get("q"))
		require.Equal(t, "key", r.URL.Query().Get("appid"))
		require.Equal(t, "metric", r.URL.Query().Get("units"))
		if delay > 0 {
			time.Sleep(delay)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func newTestService(t *testing.T, baseURL string) *Service {
	t.Helper()
	s := NewService(filepath.Join(t.TempDir(), CacheFileName), nil)
	s.baseURL = baseURL
	return s
}

func configured() config.OpenWeather {
	return config.OpenWeather{APIKey: "key"}
}

func TestCurrent_Unconfigured(t *testing.T) {
	s := newTestService(t, "http://127.0.0.1:0")

	p := s.Current(context.Background(), config.OpenWeather{})
	require.Equal(t, Payload{Status: StatusUnconfigured, City: config.DefaultCity}, p)
	require.Equal(t, UnconfiguredText, Render(p))
}

func TestCurrent_OK(t *testing.T) {
	up := newFakeUpstream(t, http.StatusOK, osloBody, 0)
	s := newTestService(t, up.srv.URL)

	p := s.Current(context.Background(), configured())
	require.Equal(t, StatusOK, p.Status)
	require.Equal(t, "Oslo", p.City)
	require.Equal(t, "metric", p.Units)
	require.JSONEq(t, osloBody, string(p.Data))
	require.Equal(t, "Oslo: light snow, 3.5°, feels -1°", Render(p))
}

func TestCurrent_UsesCacheWithinTTL(t *testing.T) {
	up := newFakeUpstream(t, http.StatusOK, osloBody, 0)
	s := newTestService(t, up.srv.URL)
	now := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return now }

	s.Current(context.Background(), configured())
	now = now.Add(CacheTTL - time.Second)
	s.Current(context.Background(), configured())
	require.Equal(t, int32(1), up.calls.Load())

	now = now.Add(2 * time.Second)
	s.Current(context.Background(), configured())
	require.Equal(t, int32(2), up.calls.Load())
}

func TestCurrent_CacheFileFormat(t *testing.T) {
	up := newFakeUpstream(t, http.StatusOK, osloBody, 0)
	s := newTestService(t, up.srv.URL)
	s.now = func() time.Time { return time.Unix(1_700_000_000, 500_000_000) }

	s.Current(context.Background(), configured())

	data, err := os.ReadFile(s.cachePath)
	require.NoError(t, err)
	var raw struct {
		TS      float64         `json:"ts"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.InDelta(t, 1_700_000_000.5, raw.TS, 1e-3)

	var p map[string]any
	require.NoError(t, json.Unmarshal(raw.Payload, &p))
	require.Equal(t, "ok", p["status"])
	require.Equal(t, "Oslo", p["city"])
}

func TestCurrent_CorruptCacheRefetches(t *testing.T) {
	up := newFakeUpstream(t, http.StatusOK, osloBody, 0)
	s := newTestService(t, up.srv.URL)
	require.NoError(t, os.WriteFile(s.cachePath, []byte("{nope"), 0600))

	p := s.Current(context.Background(), configured())
	require.Equal(t, StatusOK, p.Status)
	require.Equal(t, int32(1), up.calls.Load())
}

func TestCurrent_UpstreamError(t *testing.T) {
	up := newFakeUpstream(t, http.StatusUnauthorized, `{"cod":401,"message":"Invalid API key"}`, 0)
	s := newTestService(t, up.srv.URL)

	p := s.Current(context.Background(), configured())
	require.Equal(t, StatusError, p.Status)
	require.Contains(t, p.Error, "401")
	require.Empty(t, p.City)
	require.Contains(t, Render(p), "(Weather error: ")
}

func TestCurrent_ErrorHidesAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()
	s := newTestService(t, base)

	p := s.Current(context.Background(), config.OpenWeather{APIKey: "secret-key"})
	require.Equal(t, StatusError, p.Status)
	require.NotContains(t, p.Error, "secret-key")
}

func TestCurrent_ConcurrentMissesShareFetch(t *testing.T) {
	up := newFakeUpstream(t, http.StatusOK, osloBody, 100*time.Millisecond)
	s := newTestService(t, up.srv.URL)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if p := s.Current(context.Background(), configured()); p.Status != StatusOK {
				t.Errorf("status = %q, want ok", p.Status)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), up.calls.Load())
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		p    Payload
		want string
	}{
		{"unconfigured", Payload{Status: StatusUnconfigured, City: "Oslo"}, UnconfiguredText},
		{"error", Payload{Status: StatusError, Error: "timeout"}, "(Weather error: timeout)"},
		{"error without message", Payload{Status: StatusError}, "(Weather error: unknown)"},
		{"missing fields", Payload{Status: StatusOK, City: "Bergen", Data: json.RawMessage(`{}`)}, "Bergen: n/a, n/a°, feels n/a°"},
		{"integer temps", Payload{Status: StatusOK, City: "Paris", Data: json.RawMessage(`{"main":{"temp":20,"feels_like":19.25},"weather":[{"description":"clear sky"}]}`)}, "Paris: clear sky, 20°, feels 19.25°"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Render(tt.p))
		})
	}
}
