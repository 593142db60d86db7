package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counting(calls *atomic.Int64) LoadFunc[string] {
	return func(_ context.Context, key string) (string, error) {
		calls.Add(1)
		return "v:" + key, nil
	}
}

func TestGetCachesValues(t *testing.T) {
	var calls atomic.Int64
	c := New(2, counting(&calls))
	ctx := context.Background()

	v, err := c.Get(ctx, "0001")
	require.NoError(t, err)
	assert.Equal(t, "v:0001", v)
	_, _ = c.Get(ctx, "0001")
	assert.Equal(t, int64(1), calls.Load())
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	var calls atomic.Int64
	c := New(2, counting(&calls))
	ctx := context.Background()

	_, _ = c.Get(ctx, "a")
	_, _ = c.Get(ctx, "b")
	_, _ = c.Get(ctx, "a") // b is now least recent
	_, _ = c.Get(ctx, "c")

	assert.Equal(t, 2, c.Len())
	_, ok := c.Peek("b")
	assert.False(t, ok)
	_, ok = c.Peek("a")
	assert.True(t, ok)
}

func TestPinnedEntriesSurvive(t *testing.T) {
	var calls atomic.Int64
	c := New(1, counting(&calls))
	ctx := context.Background()

	c.Pin("a")
	_, _ = c.Get(ctx, "a")
	_, _ = c.Get(ctx, "b")
	_, _ = c.Get(ctx, "c")

	_, ok := c.Peek("a")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())

	c.Unpin("a")
	assert.Equal(t, 1, c.Len())
	_, ok = c.Peek("a")
	assert.False(t, ok)
}

func TestFailedLoadsAreNotCached(t *testing.T) {
	boom := errors.New("boom")
	fail := true
	c := New(4, func(_ context.Context, key string) (string, error) {
		if fail {
			return "", boom
		}
		return key, nil
	})

	_, err := c.Get(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	fail = false
	v, err := c.Get(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}

func TestConcurrentMissesShareOneLoad(t *testing.T) {
	var calls atomic.Int64
	release := make(chan struct{})
	c := New(4, func(_ context.Context, key string) (string, error) {
		calls.Add(1)
		<-release
		return key, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Get(context.Background(), "0006")
			assert.NoError(t, err)
			assert.Equal(t, "0006", v)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load())
}

func TestSharedLoadOutlivesFirstCallerCancel(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c := New(4, func(ctx context.Context, key string) (string, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return key, nil
	})

	first, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = c.Get(first, "0010")
	}()
	<-started

	var v string
	var err error
	go func() {
		defer wg.Done()
		v, err = c.Get(context.Background(), "0010")
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	close(release)
	wg.Wait()

	require.NoError(t, err)
	assert.Equal(t, "0010", v)
}
