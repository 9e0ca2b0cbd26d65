package rss

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func rssDoc(title string, items ...[2]string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel>`)
	fmt.Fprintf(&b, "<title>%s</title>", title)
	for _, it := range items {
		fmt.Fprintf(&b, "<item><title>%s</title><link>%s</link></item>", it[0], it[1])
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

const atomDoc = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Blog</title>
  <entry><title>Atom post</title><link href="https://atom.example/1"/><id>1</id></entry>
</feed>`

func feedServer(t *testing.T, docs map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc, ok := docs[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(doc))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHeadlines_MergeDedupeTruncate(t *testing.T) {
	srv := feedServer(t, map[string]string{
		"/a": rssDoc("Feed A", [2]string{"one", "https://a/1"}, [2]string{"two", "https://a/2"}),
		"/b": rssDoc("Feed B", [2]string{"one", "https://a/1"}, [2]string{"three", "https://b/3"}),
		"/c": atomDoc,
	})
	feeds := []string{srv.URL + "/a", srv.URL + "/missing", srv.URL + "/b", srv.URL + "/c"}

	got := NewFetcher(nil).Headlines(context.Background(), feeds, 10)
	want := []Item{
		{Title: "one", Link: "https://a/1", Source: "Feed A"},
		{Title: "two", Link: "https://a/2", Source: "Feed A"},
		{Title: "three", Link: "https://b/3", Source: "Feed B"},
		{Title: "Atom post", Link: "https://atom.example/1", Source: "Atom Blog"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Headlines mismatch (-want +got):\n%s", diff)
	}

	got = NewFetcher(nil).Headlines(context.Background(), feeds, 2)
	require.Len(t, got, 2)
	require.Equal(t, "two", got[1].Title)
}

func TestHeadlines_PerFeedLimit(t *testing.T) {
	var items [][2]string
	for i := 0; i < 5; i++ {
		items = append(items, [2]string{fmt.Sprintf("a%d", i), fmt.Sprintf("https://a/%d", i)})
	}
	srv := feedServer(t, map[string]string{
		"/a": rssDoc("A", items...),
		"/b": rssDoc("B", [2]string{"b0", "https://b/0"}),
	})

	got := NewFetcher(nil).Headlines(context.Background(), []string{srv.URL + "/a", srv.URL + "/b"}, 3)
	require.Equal(t, []string{"a0", "a1", "a2"}, titles(got))
}

func TestHeadlines_SourceFallsBackToURL(t *testing.T) {
	srv := feedServer(t, map[string]string{
		"/untitled": rssDoc("", [2]string{"x", "https://x"}),
	})
	url := srv.URL + "/untitled"

	got := NewFetcher(nil).Headlines(context.Background(), []string{url}, 10)
	require.Len(t, got, 1)
	require.Equal(t, url, got[0].Source)
}

func TestHeadlines_Empty(t *testing.T) {
	f := NewFetcher(nil)
	require.Empty(t, f.Headlines(context.Background(), nil, 10))
	require.NotNil(t, f.Headlines(context.Background(), nil, 10))
	require.Empty(t, f.Headlines(context.Background(), []string{"http://127.0.0.1:1/feed"}, 10))
	require.Empty(t, f.Headlines(context.Background(), []string{"http://127.0.0.1:1/feed"}, 0))
}

func titles(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}
