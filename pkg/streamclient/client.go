// Package streamclient — HTTP-клиент сервиса стриминга: метаданные, чтение диапазонов,
// параллельная докачка и загрузка видео.
package streamclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/sir_venger/vidstream/pkg/byterange"
	"github.com/sir_venger/vidstream/pkg/streamproto"
)

var (
	ErrNotFound            = errors.New("video not found")
	ErrRangeNotSatisfiable = byterange.ErrUnsatisfiable
)

// Info — метаданные ресурса из ответа на HEAD.
type Info struct {
	Key          string
	Size         int64
	ContentType  string
	AcceptRanges bool
}

// UploadMeta — необязательные поля формы загрузки.
type UploadMeta struct {
	Description string
	Category    string
	Tags        []string
	Visibility  string
}

type Options struct {
	HTTPClient  *http.Client
	RoutePrefix string
	// Progress, если задан, получает ASCII-индикатор передачи.
	Progress io.Writer
}

type Client struct {
	base     string
	prefix   string
	http     *http.Client
	progress io.Writer
}

// New создаёт клиент для сервиса по адресу baseURL.
func New(baseURL string, opts Options) *Client {
	c := &Client{
		base:     strings.TrimRight(baseURL, "/"),
		prefix:   "/" + strings.Trim(opts.RoutePrefix, "/"),
		http:     opts.HTTPClient,
		progress: opts.Progress,
	}
	if opts.RoutePrefix == "" {
		c.prefix = streamproto.DefaultRoutePrefix
	}
	if c.http == nil {
		c.http = &http.Client{}
	}

	return c
}

func (c *Client) videoURL(key string) string {
	return c.base + c.prefix + "/" + url.PathEscape(key)
}

// Stat запрашивает размер и тип ресурса через HEAD.
func (c *Client) Stat(ctx context.Context, key string) (Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.videoURL(key), nil)
	if err != nil {
		return Info{}, errors.Wrapf(err, "HEAD %s - failed to create request", key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Info{}, errors.Wrapf(err, "HEAD %s - request failed", key)
	}
	defer resp.Body.Close()

	if err = checkStatus(resp, http.StatusOK); err != nil {
		return Info{}, err
	}

	size, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	if err != nil {
		return Info{}, errors.Wrapf(err, "HEAD %s - invalid Content-Length", key)
	}

	return Info{
		Key:          key,
		Size:         size,
		ContentType:  resp.Header.Get("Content-Type"),
		AcceptRanges: resp.Header.Get(streamproto.HeaderAcceptRanges) == streamproto.AcceptRangesBytes,
	}, nil
}

// GetRange читает одно окно ресурса. Сервер может урезать конец до размера ресурса,
// но начало обязано совпасть с запрошенным.
func (c *Client) GetRange(ctx context.Context, key string, r byterange.Range) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.videoURL(key), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s - failed to create request", key)
	}
	req.Header.Set(streamproto.HeaderRange, r.String())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s %s - request failed", key, r)
	}

	if err = checkStatus(resp, http.StatusPartialContent); err != nil {
		resp.Body.Close()
		return nil, err
	}

	got, _, err := parseContentRange(resp.Header.Get(streamproto.HeaderContentRange))
	if err != nil || got.Start != r.Start || got.End > r.End {
		resp.Body.Close()
		return nil, errors.Errorf("GET %s %s - unexpected Content-Range %q", key, r, resp.Header.Get(streamproto.HeaderContentRange))
	}

	return resp.Body, nil
}

// Upload отправляет файл multipart-формой, не буферизуя его целиком в памяти.
func (c *Client) Upload(ctx context.Context, path, title string, meta UploadMeta) (streamproto.UploadResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return streamproto.UploadResponse{}, errors.Wrap(err, "open upload")
	}
	defer f.Close()

	var size int64
	if info, statErr := f.Stat(); statErr == nil {
		size = info.Size()
	}

	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)
	bar := newProgress(c.progress, "Uploading "+filepath.Base(path), size)

	go func() {
		pw.CloseWithError(writeUploadForm(mw, f, path, title, meta, bar))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+c.prefix+streamproto.UploadPath, pr)
	if err != nil {
		pr.CloseWithError(err)
		bar.Finish(err)
		return streamproto.UploadResponse{}, errors.Wrap(err, "POST upload - failed to create request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		pr.CloseWithError(err)
		bar.Finish(err)
		return streamproto.UploadResponse{}, errors.Wrap(err, "POST upload - request failed")
	}
	defer resp.Body.Close()

	var out streamproto.UploadResponse
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		err = errors.Wrapf(err, "POST upload - unexpected response '%s'", resp.Status)
		bar.Finish(err)
		return streamproto.UploadResponse{}, err
	}
	if !out.Success {
		err = errors.Errorf("POST upload - '%s': %s", resp.Status, out.Message)
		bar.Finish(err)
		return out, err
	}

	bar.Finish(nil)
	return out, nil
}

func writeUploadForm(mw *multipart.Writer, f io.Reader, path, title string, meta UploadMeta, bar *progress) error {
	fields := [][2]string{
		{streamproto.FormTitle, title},
		{streamproto.FormDescription, meta.Description},
		{streamproto.FormCategory, meta.Category},
		{streamproto.FormTags, strings.Join(meta.Tags, ",")},
		{streamproto.FormVisibility, meta.Visibility},
	}
	for _, kv := range fields {
		if kv[1] == "" {
			continue
		}
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return err
		}
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if !strings.HasPrefix(contentType, "video/") {
		contentType = "video/mp4"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, streamproto.FormVideo, filepath.Base(path)))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if bar != nil {
		f = countingReader{r: f, p: bar}
	}
	if _, err = io.Copy(part, f); err != nil {
		return err
	}

	return mw.Close()
}

func checkStatus(resp *http.Response, want int) error {
	switch {
	case resp.StatusCode == want:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return errors.Wrapf(ErrNotFound, "%s %s", resp.Request.Method, resp.Request.URL)
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		return errors.Wrapf(ErrRangeNotSatisfiable, "%s %s - valid %q", resp.Request.Method, resp.Request.URL, resp.Header.Get(streamproto.HeaderContentRange))
	default:
		return errors.Errorf("%s %s - unexpected status '%s'", resp.Request.Method, resp.Request.URL, resp.Status)
	}
}

// parseContentRange разбирает "bytes a-b/total".
func parseContentRange(v string) (byterange.Range, int64, error) {
	rest, ok := strings.CutPrefix(v, byterange.Unit+" ")
	if !ok {
		return byterange.Range{}, 0, errors.Errorf("invalid Content-Range %q", v)
	}
	span, totalStr, ok := strings.Cut(rest, "/")
	if !ok {
		return byterange.Range{}, 0, errors.Errorf("invalid Content-Range %q", v)
	}
	startStr, endStr, ok := strings.Cut(span, "-")
	if !ok {
		return byterange.Range{}, 0, errors.Errorf("invalid Content-Range %q", v)
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil {
		return byterange.Range{}, 0, errors.Wrap(err, "Content-Range start")
	}
	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil {
		return byterange.Range{}, 0, errors.Wrap(err, "Content-Range end")
	}
	total, err := strconv.ParseInt(totalStr, 10, 64)
	if err != nil {
		return byterange.Range{}, 0, errors.Wrap(err, "Content-Range total")
	}

	return byterange.Range{Start: start, End: end}, total, nil
}
