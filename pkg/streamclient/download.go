package streamclient

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sir_venger/vidstream/pkg/byterange"
)

const defaultDownloadParts = 4

// Download скачивает ресурс в w, разбивая его на parts диапазонов. Диапазоны качаются
// параллельно, а в w пишутся строго по порядку. Возвращает число записанных байт.
func (c *Client) Download(ctx context.Context, key string, w io.Writer, parts int) (int64, error) {
	info, err := c.Stat(ctx, key)
	if err != nil {
		return 0, err
	}
	if info.Size == 0 {
		return 0, nil
	}
	if parts <= 0 {
		parts = defaultDownloadParts
	}
	if !info.AcceptRanges {
		parts = 1
	}

	ranges := byterange.Split(info.Size, parts)
	bar := newProgress(c.progress, "Downloading "+key, info.Size)

	n, err := c.download(ctx, key, ranges, w, bar)
	if err == nil && n != info.Size {
		err = errors.Errorf("download %s: got %d bytes, want %d", key, n, info.Size)
	}
	bar.Finish(err)

	return n, err
}

func (c *Client) download(ctx context.Context, key string, ranges []byterange.Range, w io.Writer, bar *progress) (int64, error) {
	dlCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, egCtx := errgroup.WithContext(dlCtx)
	pipes := make([]*io.PipeReader, len(ranges))

	// Поднимаем загрузчики: каждый пишет свой диапазон в pipeWriter.
	for idx, rng := range ranges {
		pr, pw := io.Pipe()
		pipes[idx] = pr

		eg.Go(func() error {
			rc, err := c.GetRange(egCtx, key, rng)
			if err != nil {
				_ = pw.CloseWithError(err)
				return err
			}
			defer rc.Close()

			_, err = io.Copy(pw, rc)
			_ = pw.CloseWithError(err)
			return err
		})
	}

	// Писатель: читает pipe'ы строго по порядку и пишет в w.
	var written int64
	for idx, pr := range pipes {
		var src io.Reader = pr
		if bar != nil {
			src = countingReader{r: pr, p: bar}
		}

		n, err := io.Copy(w, src)
		written += n
		if err == nil && n != ranges[idx].Length() {
			err = errors.Errorf("range %s: got %d bytes", ranges[idx], n)
		}
		if err != nil {
			cancel()
			for _, rest := range pipes[idx:] {
				_ = rest.CloseWithError(err)
			}
			if waitErr := eg.Wait(); waitErr != nil && !errors.Is(waitErr, context.Canceled) && !errors.Is(waitErr, io.ErrClosedPipe) {
				return written, waitErr
			}
			return written, err
		}
	}

	if err := eg.Wait(); err != nil {
		return written, err
	}

	return written, nil
}
