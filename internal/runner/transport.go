package runner

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Transport issues a single GET and reports the status code.
type Transport interface {
	Get(ctx context.Context, url string) (int, error)
}

// HTTPTransport is the net/http Transport. Only connection establishment is
// bounded; a request that stalls after connecting stalls until it returns.
type HTTPTransport struct {
	Client *http.Client
}

func NewHTTPTransport(connectTimeout time.Duration, maxConns int) *HTTPTransport {
	if maxConns < 1 {
		maxConns = 1
	}

	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DialContext = (&net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	t.MaxIdleConns = maxConns
	t.MaxIdleConnsPerHost = maxConns

	return &HTTPTransport{
		Client: &http.Client{Transport: t},
	}
}

func (h *HTTPTransport) Get(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, errors.Wrap(err, "build request")
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return resp.StatusCode, errors.Wrap(err, "read body")
	}

	return resp.StatusCode, nil
}

// CloseIdle releases pooled connections after a run.
func (h *HTTPTransport) CloseIdle() {
	h.Client.CloseIdleConnections()
}
