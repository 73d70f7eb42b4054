package benchmark

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"putgetbench/storage"
)

// fakeStore is a scripted storage.Storage. Nil hooks succeed immediately.
type fakeStore struct {
	mu     sync.Mutex
	events []string

	putLatency time.Duration
	put        func(key string, body []byte) error
	get        func(key string) (io.ReadCloser, error)
	list       func(call int, prefix string) (storage.Page, error)
	listCalls  int
	putKeys    []string
	getKeys    []string
}

func (f *fakeStore) record(event string) {
	f.mu.Lock()
	f.events = append(f.events, event)
	f.mu.Unlock()
}

func (f *fakeStore) PutObject(_ context.Context, _, key string, body []byte) error {
	if f.putLatency > 0 {
		time.Sleep(f.putLatency)
	}
	f.mu.Lock()
	f.putKeys = append(f.putKeys, key)
	f.mu.Unlock()
	f.record("put")
	if f.put != nil {
		return f.put(key, body)
	}
	return nil
}

func (f *fakeStore) GetObject(_ context.Context, _, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	f.getKeys = append(f.getKeys, key)
	f.mu.Unlock()
	f.record("get")
	if f.get != nil {
		return f.get(key)
	}
	return io.NopCloser(bytes.NewReader(nil)), nil
}

func (f *fakeStore) ListObjects(_ context.Context, _, prefix string, _ *string) (storage.Page, error) {
	f.mu.Lock()
	call := f.listCalls
	f.listCalls++
	f.mu.Unlock()
	f.record("list")
	if f.list != nil {
		return f.list(call, prefix)
	}
	return storage.Page{}, nil
}

func (f *fakeStore) Events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func dispatchErr(op string) error {
	return &storage.DispatchError{Op: op, Err: errors.New("connection refused")}
}

// recordingSleep returns immediately and logs a "sleep" event on store.
func recordingSleep(store *fakeStore, calls *int) SleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		*calls++
		store.record("sleep")
		return ctx.Err()
	}
}
