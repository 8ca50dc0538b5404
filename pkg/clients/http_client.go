package clients

import (
	"net/http"
	"time"
)

const DefaultTimeout = time.Second * 15

type HTTPClientI interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient is the transport handed to the Bot API. Every call is bounded
// by the client timeout because the Bot API library takes no context.
type HTTPClient struct {
	client HTTPClientI
}

func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

func (h *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	return h.client.Do(req)
}

func (h *HTTPClient) SetClient(mock HTTPClientI) {
	h.client = mock
}
