package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const defaultContentType = "application/octet-stream"

// ErrTimeout is reported when the server stays silent for longer than the
// configured timeout while connecting, sending headers or streaming the body.
var ErrTimeout = errors.New("request timed out")

// StatusError is returned for a non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (statusError *StatusError) Error() string {
	return fmt.Sprintf("%d %s for url: %s",
		statusError.StatusCode, http.StatusText(statusError.StatusCode), statusError.URL)
}

// Download is an open streamed response.
type Download struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// HTTPSource fetches files over HTTP/HTTPS.
type HTTPSource struct {
	client  *http.Client
	timeout time.Duration
}

// NewHTTPSource creates an HTTPSource. The timeout bounds connecting,
// waiting for headers and each individual body read, not the whole
// transfer, so large files are not cut off while data keeps flowing.
func NewHTTPSource(timeout time.Duration) *HTTPSource {
	dialer := &net.Dialer{Timeout: timeout}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.TLSHandshakeTimeout = timeout
	transport.ResponseHeaderTimeout = timeout

	return &HTTPSource{
		client:  &http.Client{Transport: transport},
		timeout: timeout,
	}
}

// Open issues a GET for url and returns the streamed body. The caller must
// close Download.Body.
func (httpSource *HTTPSource) Open(ctx context.Context, url string) (*Download, error) {
	ctx, cancel := context.WithCancelCause(ctx)

	timeoutErr := fmt.Errorf("%w after %s: %s", ErrTimeout, httpSource.timeout, url)
	timer := time.AfterFunc(httpSource.timeout, func() { cancel(timeoutErr) })

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		timer.Stop()
		cancel(nil)

		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := httpSource.client.Do(req)
	if err != nil {
		timer.Stop()

		err = timeoutCause(ctx, err)
		cancel(nil)

		return nil, fmt.Errorf("executing request: %w", err)
	}

	// Check for successful response.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		timer.Stop()
		resp.Body.Close()
		cancel(nil)

		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	// Re-armed around each body read.
	timer.Stop()

	return &Download{
		Body: &idleTimeoutBody{
			ctx:     ctx,
			body:    resp.Body,
			timer:   timer,
			timeout: httpSource.timeout,
			cancel:  cancel,
		},
		Size:        contentLength(resp),
		ContentType: contentType(resp),
	}, nil
}

// contentLength returns the declared length or UnknownSize.
func contentLength(resp *http.Response) int64 {
	if resp.ContentLength < 0 {
		return UnknownSize
	}

	return resp.ContentLength
}

func contentType(resp *http.Response) string {
	value := resp.Header.Get("Content-Type")
	if value == "" {
		return defaultContentType
	}

	return value
}

// timeoutCause swaps a bare cancellation error for the timeout that caused it.
func timeoutCause(ctx context.Context, err error) error {
	cause := context.Cause(ctx)
	if cause != nil && errors.Is(cause, ErrTimeout) {
		return cause
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	return err
}

// idleTimeoutBody arms the timeout only while a read is blocked, so a slow
// consumer does not count against the server.
type idleTimeoutBody struct {
	ctx     context.Context
	body    io.ReadCloser
	timer   *time.Timer
	timeout time.Duration
	cancel  context.CancelCauseFunc
}

func (idleBody *idleTimeoutBody) Read(p []byte) (int, error) {
	idleBody.timer.Reset(idleBody.timeout)
	n, err := idleBody.body.Read(p)
	idleBody.timer.Stop()

	if err != nil && !errors.Is(err, io.EOF) {
		return n, timeoutCause(idleBody.ctx, err)
	}

	return n, err
}

func (idleBody *idleTimeoutBody) Close() error {
	idleBody.timer.Stop()
	err := idleBody.body.Close()
	idleBody.cancel(nil)

	return err
}
