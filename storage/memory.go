package storage

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Storage. Listings are returned in key order,
// PageSize keys at a time.
type Memory struct {
	// Latency is slept before every call.
	Latency time.Duration
	// PageSize bounds the keys of one listing page, 1000 when zero.
	PageSize int

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory(latency time.Duration) *Memory {
	return &Memory{Latency: latency, objects: make(map[string][]byte)}
}

func (m *Memory) wait(ctx context.Context) error {
	if m.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(m.Latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func objectID(bucket, key string) string {
	return bucket + "\x00" + key
}

func (m *Memory) PutObject(ctx context.Context, bucket, key string, body []byte) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	// body is usually a pooled buffer, keep a private copy
	data := bytes.Clone(body)
	m.mu.Lock()
	m.objects[objectID(bucket, key)] = data
	m.mu.Unlock()
	return nil
}

func (m *Memory) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	data, ok := m.objects[objectID(bucket, key)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *Memory) ListObjects(ctx context.Context, bucket, prefix string, token *string) (Page, error) {
	if err := m.wait(ctx); err != nil {
		return Page{}, err
	}
	size := m.PageSize
	if size <= 0 {
		size = 1000
	}

	m.mu.RLock()
	var keys []string
	for id := range m.objects {
		b, key, _ := strings.Cut(id, "\x00")
		if b == bucket && strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	m.mu.RUnlock()
	sort.Strings(keys)

	// the token is the last key of the previous page
	if token != nil {
		i := sort.SearchStrings(keys, *token)
		if i < len(keys) && keys[i] == *token {
			i++
		}
		keys = keys[i:]
	}

	var page Page
	if len(keys) > size {
		keys = keys[:size]
		next := keys[size-1]
		page.NextToken = &next
	}
	page.Keys = keys
	return page, nil
}

// Len returns the number of stored objects across all buckets.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
