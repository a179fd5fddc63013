package streamclient

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/vidstream/pkg/byterange"
)

func TestParseContentRange(t *testing.T) {
	r, total, err := parseContentRange("bytes 200-499/1000")
	require.NoError(t, err)
	require.Equal(t, byterange.Range{Start: 200, End: 499}, r)
	require.EqualValues(t, 1000, total)

	for _, bad := range []string{"", "bytes */1000", "items 0-1/2", "bytes 0-x/2", "bytes 0-1"} {
		_, _, err := parseContentRange(bad)
		require.Error(t, err, bad)
	}
}

func TestGetRangeRejectsMismatchedWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Range", "bytes 0-9/100")
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write(make([]byte, 10))
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, Options{HTTPClient: srv.Client()})
	_, err := c.GetRange(context.Background(), "clip.mp4", byterange.Range{Start: 5, End: 9})
	require.Error(t, err)
}

func TestStatusMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/missing.mp4") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Range", "bytes */10")
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, Options{HTTPClient: srv.Client(), RoutePrefix: "media"})

	_, err := c.Stat(context.Background(), "missing.mp4")
	require.True(t, errors.Is(err, ErrNotFound), "%v", err)

	_, err = c.GetRange(context.Background(), "clip.mp4", byterange.Range{Start: 50, End: 60})
	require.True(t, errors.Is(err, ErrRangeNotSatisfiable), "%v", err)
}

func TestProgressRendersFinalLine(t *testing.T) {
	var out bytes.Buffer
	p := newProgress(&out, "Downloading clip.mp4", 2048)
	p.Add(1024)
	p.Add(1024)
	p.Finish(nil)
	p.Finish(nil)

	s := out.String()
	require.Contains(t, s, "100% 2.0 KB/2.0 KB ✓")
	require.Equal(t, 1, strings.Count(s, "\n"))

	var nilBar *progress
	nilBar.Add(10)
	nilBar.Finish(nil)
	require.Nil(t, newProgress(nil, "x", 1))
}
