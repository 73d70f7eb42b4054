// Package storage defines the object storage capability the benchmark drives
// and the backends implementing it.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
)

// ErrNotFound reports that the requested object does not exist.
var ErrNotFound = errors.New("object not found")

// DispatchError wraps a transport level failure: the request never got a
// response from the service (connection refused, reset, DNS, TLS...).
type DispatchError struct {
	Op  string
	Err error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s: dispatch: %v", e.Op, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// IsDispatch reports whether err carries a *DispatchError.
func IsDispatch(err error) bool {
	var de *DispatchError
	return errors.As(err, &de)
}

// Page is one page of a listing.
type Page struct {
	Keys []string
	// NextToken is nil on the last page.
	NextToken *string
}

// Storage is an object store with PUT/GET/LIST semantics.
type Storage interface {
	PutObject(ctx context.Context, bucket, key string, body []byte) error
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	ListObjects(ctx context.Context, bucket, prefix string, token *string) (Page, error)
}

// ListAll lists every key under prefix, following continuation tokens until
// the store stops returning one.
func ListAll(ctx context.Context, s Storage, bucket, prefix string) ([]string, error) {
	var (
		keys  []string
		token *string
	)
	for {
		page, err := s.ListObjects(ctx, bucket, prefix, token)
		if err != nil {
			return nil, err
		}
		keys = append(keys, page.Keys...)
		if page.NextToken == nil {
			return keys, nil
		}
		token = page.NextToken
	}
}

// ReadAll reads rc to the end into memory and closes it. Transport failures
// while streaming the body are reported as *DispatchError.
func ReadAll(op string, rc io.ReadCloser) ([]byte, error) {
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		if isTransport(err) {
			return data, &DispatchError{Op: op, Err: err}
		}
		return data, fmt.Errorf("%s: read body: %w", op, err)
	}
	return data, nil
}

// isTransport reports whether err comes from the network layer rather than
// from the service.
func isTransport(err error) bool {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
