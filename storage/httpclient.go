package storage

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// NewHTTPClient creates an HTTP client with a pooled transport and HTTP/2
// enabled, shared by the remote backends. A zero timeout means no limit;
// per request deadlines are then left to the caller's context.
func NewHTTPClient(maxConnsPerHost int, timeout time.Duration) (*http.Client, error) {
	if maxConnsPerHost <= 0 {
		maxConnsPerHost = 100
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          2 * maxConnsPerHost,
		MaxIdleConnsPerHost:   maxConnsPerHost,
		MaxConnsPerHost:       maxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if err := http2.ConfigureTransport(transport); err != nil {
		return nil, fmt.Errorf("configure HTTP/2: %w", err)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}
