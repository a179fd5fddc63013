package integration

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/vidstream/internal/app/streamhttp"
	"github.com/sir_venger/vidstream/internal/metrics"
	"github.com/sir_venger/vidstream/internal/storage"
	"github.com/sir_venger/vidstream/internal/usecase/streamsvc"
	"github.com/sir_venger/vidstream/pkg/byterange"
	"github.com/sir_venger/vidstream/pkg/streamclient"
)

func newStreamServer(t *testing.T) (*httptest.Server, *storage.LocalStore) {
	t.Helper()

	store, err := storage.NewLocalStore(filepath.Join(t.TempDir(), "videos"))
	require.NoError(t, err)
	observer, err := metrics.NewObserver("integration", prometheus.NewRegistry())
	require.NoError(t, err)

	h := streamhttp.New(streamhttp.Deps{
		Streams:  streamsvc.New(streamsvc.Deps{Store: store}),
		Store:    store,
		Observer: observer,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return srv, store
}

func samplePayload(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte((i * 31) ^ (i >> 8))
	}
	return b
}

func TestUploadAndDownloadInParts(t *testing.T) {
	srv, _ := newStreamServer(t)
	client := streamclient.New(srv.URL, streamclient.Options{HTTPClient: srv.Client()})

	payload := samplePayload(256*1024 + 17)
	src := filepath.Join(t.TempDir(), "holiday.mp4")
	require.NoError(t, os.WriteFile(src, payload, 0o644))

	up, err := client.Upload(context.Background(), src, "Holiday 2026", streamclient.UploadMeta{Tags: []string{"sea", "sun"}})
	require.NoError(t, err)
	require.True(t, up.Success)
	require.Equal(t, []string{"sea", "sun"}, up.Video.Tags)

	info, err := client.Stat(context.Background(), up.Filename)
	require.NoError(t, err)
	require.EqualValues(t, len(payload), info.Size)
	require.Equal(t, "video/mp4", info.ContentType)
	require.True(t, info.AcceptRanges)

	for _, parts := range []int{1, 3, 8} {
		var out bytes.Buffer
		n, err := client.Download(context.Background(), up.Filename, &out, parts)
		require.NoError(t, err, "parts=%d", parts)
		require.EqualValues(t, len(payload), n)
		require.Equal(t, sha256.Sum256(payload), sha256.Sum256(out.Bytes()), "parts=%d", parts)
	}
}

func TestConcurrentRangeReadsAreIndependent(t *testing.T) {
	srv, store := newStreamServer(t)
	payload := samplePayload(64 * 1024)
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "clip.mp4"), payload, 0o644))

	client := streamclient.New(srv.URL, streamclient.Options{HTTPClient: srv.Client()})

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			rng := byterange.Range{Start: int64(i * 1000), End: int64(i*1000 + 4095)}
			rc, err := client.GetRange(context.Background(), "clip.mp4", rng)
			if err != nil {
				errs <- err
				return
			}
			defer rc.Close()

			got, err := io.ReadAll(rc)
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(got, payload[rng.Start:rng.End+1]) {
				errs <- fmt.Errorf("range %s: body mismatch", rng)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}

func TestAbandonedStreamDoesNotBlockOthers(t *testing.T) {
	srv, store := newStreamServer(t)
	payload := samplePayload(8 << 20)
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "big.mp4"), payload, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "small.mp4"), payload[:10], 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/videos/big.mp4", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	_, err = io.ReadFull(resp.Body, make([]byte, 1024))
	require.NoError(t, err)

	// Большой ответ не дочитан, а маленький всё равно отдаётся.
	small, err := srv.Client().Get(srv.URL + "/api/videos/small.mp4")
	require.NoError(t, err)
	got, err := io.ReadAll(small.Body)
	require.NoError(t, err)
	require.NoError(t, small.Body.Close())
	require.Equal(t, payload[:10], got)

	cancel()
	_ = resp.Body.Close()
}

func TestDownloadMissingVideo(t *testing.T) {
	srv, _ := newStreamServer(t)
	client := streamclient.New(srv.URL, streamclient.Options{HTTPClient: srv.Client()})

	_, err := client.Download(context.Background(), "missing.mp4", io.Discard, 2)
	require.ErrorIs(t, err, streamclient.ErrNotFound)
}
