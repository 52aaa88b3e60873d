// Package remote submits images to the remote SVG conversion service.
//
// A submission is a multipart POST carrying the original file bytes and the service's
// configuration codes. Upload progress is reported as a percentage of the request body sent, and
// a processing notification fires once the whole body reached the service.
package remote

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/askiada/go-vectorize/internal/logging"
)

// chunkSize bounds a single read of the request body, and so the progress granularity.
const chunkSize = 32 * 1024

// File is an image to convert.
type File struct {
	Name string
	Data []byte
}

// Callbacks observe a submission. They run on the goroutine writing the request body and are not
// called once Abort returned.
type Callbacks struct {
	OnProgress   func(percent float64)
	OnProcessing func()
}

// Client submits files to the conversion service.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

type ClientOption func(c *Client)

// WithHTTPClient sets the HTTP client used for submissions.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logging.OrNop(logger)
	}
}

// NewClient finalizes cfg without environment overrides and creates a client.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if err := cfg.Finalize(nil); err != nil {
		return nil, errors.Wrap(err, "remote config")
	}

	c := &Client{
		cfg:        cfg,
		httpClient: http.DefaultClient,
		logger:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Config returns the finalized client configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Request is one in-flight submission.
type Request struct {
	cancel  context.CancelFunc
	done    chan struct{}
	aborted atomic.Bool

	svg string
	err error
}

// Submit starts uploading file. The submission stops when ctx is cancelled or Abort is called,
// and then reports ErrCancelled.
func (c *Client) Submit(ctx context.Context, file File, cb Callbacks) *Request {
	ctx, cancel := context.WithCancel(ctx)
	r := &Request{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(r.done)
		defer cancel()

		r.svg, r.err = c.do(ctx, r, file, cb)
	}()

	return r
}

// Wait blocks until the submission ends and returns the SVG document.
func (r *Request) Wait() (string, error) {
	<-r.done

	return r.svg, r.err
}

// Done is closed once the submission ended.
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Abort cancels the submission. It is idempotent and a no-op once the submission ended.
func (r *Request) Abort() {
	if r.aborted.CompareAndSwap(false, true) {
		r.cancel()
	}
}

func (c *Client) do(ctx context.Context, r *Request, file File, cb Callbacks) (string, error) {
	if len(file.Data) == 0 {
		return "", ErrEmptyFile
	}

	body, contentType, err := c.form(file)
	if err != nil {
		return "", err
	}

	reqCtx := ctx
	if d := c.cfg.TimeoutDuration(); d > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	progress := &progressReader{
		r:     bytes.NewReader(body),
		total: int64(len(body)),
		req:   r,
		cb:    cb,
	}
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.cfg.URL, progress)
	if err != nil {
		return "", errors.Wrap(err, "unable to create request")
	}
	req.ContentLength = int64(len(body))
	req.Header.Set("Content-Type", contentType)
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}

	logger := c.logger.With("url", c.cfg.URL, "file", file.Name, "size", len(file.Data))
	logger.Debug("submitting file")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if r.aborted.Load() || ctx.Err() != nil {
			return "", ErrCancelled
		}
		logger.Warn("remote submission failed", "error", err)

		return "", &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if r.aborted.Load() || ctx.Err() != nil {
			return "", ErrCancelled
		}

		return "", &NetworkError{Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		logger.Warn("remote service rejected the file", "status", resp.StatusCode)

		return "", &StatusError{
			Code:   resp.StatusCode,
			Status: http.StatusText(resp.StatusCode),
			Body:   string(data),
		}
	}
	logger.Debug("remote conversion done", "bytes", len(data))

	return string(data), nil
}

// form encodes the multipart body.
func (c *Client) form(file File) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	name := file.Name
	if name == "" {
		name = "image"
	}
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, "", errors.Wrap(err, "unable to create file part")
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", errors.Wrap(err, "unable to write file part")
	}
	if err := w.WriteField("vtraceConfigCode", c.cfg.VtraceConfigCode); err != nil {
		return nil, "", errors.Wrap(err, "unable to write vtraceConfigCode")
	}
	if err := w.WriteField("rembgConfigCode", c.cfg.RembgConfigCode); err != nil {
		return nil, "", errors.Wrap(err, "unable to write rembgConfigCode")
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "unable to close multipart writer")
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

// progressReader reports upload progress while the transport reads the body.
type progressReader struct {
	r     io.Reader
	total int64
	sent  int64
	req   *Request
	cb    Callbacks

	processing sync.Once
}

func (p *progressReader) Read(b []byte) (int, error) {
	if len(b) > chunkSize {
		b = b[:chunkSize]
	}
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.report()
	}

	return n, err
}

func (p *progressReader) report() {
	if p.req.aborted.Load() || p.total == 0 {
		return
	}
	percent := float64(p.sent) / float64(p.total) * 100
	if p.cb.OnProgress != nil {
		p.cb.OnProgress(percent)
	}
	if percent >= 100 && p.cb.OnProcessing != nil {
		p.processing.Do(p.cb.OnProcessing)
	}
}
