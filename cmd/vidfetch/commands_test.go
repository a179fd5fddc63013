package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sir_venger/vidstream/internal/app/streamhttp"
	"github.com/sir_venger/vidstream/internal/storage"
	"github.com/sir_venger/vidstream/internal/usecase/streamsvc"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestStatGetAndUpload(t *testing.T) {
	store := storage.NewMemoryStore()
	payload := bytes.Repeat([]byte("0123456789"), 1000)
	_, err := store.Put(context.Background(), "clip.mp4", bytes.NewReader(payload))
	require.NoError(t, err)

	srv := httptest.NewServer(streamhttp.New(streamhttp.Deps{
		Streams: streamsvc.New(streamsvc.Deps{Store: store, NewID: func() string { return "id" }}),
		Store:   store,
	}))
	t.Cleanup(srv.Close)

	out, err := runCLI(t, "--server", srv.URL, "stat", "clip.mp4")
	require.NoError(t, err)
	require.Contains(t, out, "size:          10000")
	require.Contains(t, out, "content-type:  video/mp4")
	require.Contains(t, out, "accept-ranges: true")

	dst := filepath.Join(t.TempDir(), "copy.mp4")
	out, err = runCLI(t, "--server", srv.URL, "-q", "get", "clip.mp4", "-o", dst, "--parts", "3")
	require.NoError(t, err)
	require.Contains(t, out, dst)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, payload, got)

	src := filepath.Join(t.TempDir(), "trip.mp4")
	require.NoError(t, os.WriteFile(src, payload[:500], 0o644))
	out, err = runCLI(t, "--server", srv.URL, "-q", "upload", src, "--title", "Road trip")
	require.NoError(t, err)
	require.Contains(t, out, "Road_trip_id.mp4")
}

func TestGetMissingRemovesOutput(t *testing.T) {
	store := storage.NewMemoryStore()
	srv := httptest.NewServer(streamhttp.New(streamhttp.Deps{
		Streams: streamsvc.New(streamsvc.Deps{Store: store}),
		Store:   store,
	}))
	t.Cleanup(srv.Close)

	dst := filepath.Join(t.TempDir(), "missing.mp4")
	_, err := runCLI(t, "--server", srv.URL, "-q", "get", "missing.mp4", "-o", dst)
	require.Error(t, err)
	require.NoFileExists(t, dst)
}

func TestUploadRequiresTitle(t *testing.T) {
	_, err := runCLI(t, "--server", "http://127.0.0.1:0", "upload", "whatever.mp4")
	require.ErrorContains(t, err, "--title is required")
}
