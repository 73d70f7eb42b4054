package benchmark

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"putgetbench/stats"
	"putgetbench/storage"
)

func testParams() BenchmarkParams {
	return BenchmarkParams{BucketName: "bucket", Prefix: "bench", MinSize: 1024, MaxSize: 4096}
}

func testGenerator() *Generator {
	return NewGenerator(rand.New(rand.NewSource(7)), 1024, 4096)
}

func TestExecutorPutSuccess(t *testing.T) {
	store := &fakeStore{putLatency: 2 * time.Millisecond}
	exec := NewExecutor(store, testParams(), nil, nil)

	body := make([]byte, 3000)
	out := exec.Put(context.Background(), "bench/put_3000", body)

	require.Equal(t, Success, out.Status)
	assert.NoError(t, out.Err)
	assert.Equal(t, stats.Put, out.Record.Kind)
	assert.Equal(t, int64(3000), out.Record.Size)
	assert.False(t, out.Record.End.Before(out.Record.Start))
	assert.GreaterOrEqual(t, out.Record.Duration(), 2*time.Millisecond)
	assert.Equal(t, []string{"bench/put_3000"}, store.putKeys)
}

func TestExecutorPutClassifiesErrors(t *testing.T) {
	store := &fakeStore{put: func(string, []byte) error { return dispatchErr("put object") }}
	exec := NewExecutor(store, testParams(), nil, nil)
	out := exec.Put(context.Background(), "k", []byte("x"))
	assert.Equal(t, Skip, out.Status)
	assert.True(t, storage.IsDispatch(out.Err))

	store.put = func(string, []byte) error { return errors.New("access denied") }
	out = exec.Put(context.Background(), "k", []byte("x"))
	assert.Equal(t, Failure, out.Status)
	assert.Contains(t, out.Err.Error(), "access denied")
	assert.Equal(t, stats.Record{}, out.Record)
}

func TestExecutorPutIgnoresRunCancellation(t *testing.T) {
	var sawCancel bool
	store := &fakeStore{}
	store.put = func(string, []byte) error { return nil }
	exec := NewExecutor(ctxCheckingStore{store, &sawCancel}, testParams(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := exec.Put(ctx, "k", []byte("x"))

	assert.Equal(t, Success, out.Status)
	assert.False(t, sawCancel)
}

type ctxCheckingStore struct {
	*fakeStore
	sawCancel *bool
}

func (c ctxCheckingStore) PutObject(ctx context.Context, bucket, key string, body []byte) error {
	if ctx.Err() != nil {
		*c.sawCancel = true
	}
	return c.fakeStore.PutObject(ctx, bucket, key, body)
}

func TestExecutorRequestTimeout(t *testing.T) {
	params := testParams()
	params.RequestTimeout = 5 * time.Millisecond
	exec := NewExecutor(&slowStore{}, params, nil, nil)

	out := exec.Put(context.Background(), "k", []byte("x"))
	assert.Equal(t, Failure, out.Status)
	assert.ErrorIs(t, out.Err, context.DeadlineExceeded)
}

type slowStore struct{ fakeStore }

func (*slowStore) PutObject(ctx context.Context, _, _ string, _ []byte) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestExecutorGetCountsBytesRead(t *testing.T) {
	payload := bytes.Repeat([]byte("z"), 5000)
	store := &fakeStore{get: func(string) (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(payload)), nil
	}}
	exec := NewExecutor(store, testParams(), nil, nil)

	out := exec.Get(context.Background(), "bench/put_9999")
	require.Equal(t, Success, out.Status)
	assert.Equal(t, stats.Get, out.Record.Kind)
	// bytes actually read, not the size the key advertises
	assert.Equal(t, int64(5000), out.Record.Size)
	assert.False(t, out.Record.End.Before(out.Record.Start))
}

func TestExecutorGetNotFoundIsFailure(t *testing.T) {
	store := &fakeStore{get: func(key string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("get object: %w", storage.ErrNotFound)
	}}
	exec := NewExecutor(store, testParams(), nil, nil)

	out := exec.Get(context.Background(), "bench/put_1")
	assert.Equal(t, Failure, out.Status)
	assert.ErrorIs(t, out.Err, storage.ErrNotFound)
}

func TestExecutorGetBodyDispatchIsSkip(t *testing.T) {
	store := &fakeStore{get: func(string) (io.ReadCloser, error) {
		return io.NopCloser(io.MultiReader(bytes.NewReader([]byte("ab")), unexpectedEOF{})), nil
	}}
	exec := NewExecutor(store, testParams(), nil, nil)

	out := exec.Get(context.Background(), "k")
	assert.Equal(t, Skip, out.Status)
}

type unexpectedEOF struct{}

func (unexpectedEOF) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestResolveKeyListingPicksListedKey(t *testing.T) {
	store := &fakeStore{list: func(int, string) (storage.Page, error) {
		return storage.Page{Keys: []string{"bench/put_1", "bench/put_2", "bench/put_3"}}, nil
	}}
	exec := NewExecutor(store, testParams(), nil, nil)

	for i := 0; i < 20; i++ {
		key, ok, _ := exec.ResolveKey(context.Background(), testGenerator())
		require.True(t, ok)
		assert.Contains(t, []string{"bench/put_1", "bench/put_2", "bench/put_3"}, key)
	}
}

func TestResolveKeyListingErrors(t *testing.T) {
	store := &fakeStore{list: func(int, string) (storage.Page, error) { return storage.Page{}, dispatchErr("list objects") }}
	exec := NewExecutor(store, testParams(), nil, nil)
	_, ok, out := exec.ResolveKey(context.Background(), testGenerator())
	assert.False(t, ok)
	assert.Equal(t, Skip, out.Status)

	store.list = func(int, string) (storage.Page, error) { return storage.Page{}, errors.New("access denied") }
	_, ok, out = exec.ResolveKey(context.Background(), testGenerator())
	assert.False(t, ok)
	assert.Equal(t, Failure, out.Status)
}

func TestResolveKeyMaxEmptyListings(t *testing.T) {
	store := &fakeStore{}
	sleeps := 0
	params := testParams()
	params.Mode = Continuous
	params.MaxEmptyListings = 3
	exec := NewExecutor(store, params, nil, recordingSleep(store, &sleeps))

	_, ok, out := exec.ResolveKey(context.Background(), testGenerator())
	assert.False(t, ok)
	assert.Equal(t, Skip, out.Status)
	assert.ErrorIs(t, out.Err, errEmptyListing)
	assert.Equal(t, 3, store.listCalls)
	assert.Equal(t, 2, sleeps)
}

func TestResolveKeyBoundedGivesUpAfterOneBackoff(t *testing.T) {
	store := &fakeStore{}
	sleeps := 0
	exec := NewExecutor(store, testParams(), nil, recordingSleep(store, &sleeps))

	_, ok, out := exec.ResolveKey(context.Background(), testGenerator())
	assert.False(t, ok)
	assert.Equal(t, Skip, out.Status)
	assert.ErrorIs(t, out.Err, errEmptyListing)
	assert.Equal(t, []string{"list", "sleep"}, store.Events())
}

func TestResolveKeyBackoffHonoursCancellation(t *testing.T) {
	store := &fakeStore{}
	params := testParams()
	params.Backoff = time.Hour
	exec := NewExecutor(store, params, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, ok, out := exec.ResolveKey(ctx, testGenerator())
	assert.False(t, ok)
	assert.Equal(t, Skip, out.Status)
	assert.ErrorIs(t, out.Err, context.DeadlineExceeded)
}

func TestResolveKeyBlind(t *testing.T) {
	store := &fakeStore{}
	params := testParams()
	params.GetStrategy = Blind
	exec := NewExecutor(store, params, nil, nil)

	key, ok, _ := exec.ResolveKey(context.Background(), testGenerator())
	require.True(t, ok)
	assert.Regexp(t, `^bench/put_\d+$`, key)
	assert.Zero(t, store.listCalls)
}
