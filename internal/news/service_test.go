package news

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-fusion-ranker/internal/types"
)

type countingProvider struct {
	calls     atomic.Int32
	headlines []types.Headline
	err       error
}

func (p *countingProvider) Headlines(ctx context.Context, company, symbol string, lookbackDays, maxItems int) ([]types.Headline, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return p.headlines, nil
}

func TestHeadlineCache(t *testing.T) {
	cache := newHeadlineCache(50 * time.Millisecond)
	defer cache.close()

	cache.set("AAPL", []types.Headline{{Title: "Apple earnings beat"}})

	got, found := cache.get("AAPL")
	require.True(t, found)
	assert.Equal(t, "Apple earnings beat", got[0].Title)

	time.Sleep(100 * time.Millisecond)
	_, found = cache.get("AAPL")
	assert.False(t, found, "entry should have expired")

	cache.cleanup()
	assert.Empty(t, cache.data)
}

func TestServiceConfig(t *testing.T) {
	cfg := DefaultServiceConfig()
	assert.Equal(t, time.Hour, cfg.CacheDuration)
	assert.True(t, cfg.Enabled)
}

func TestService_CachesByWindow(t *testing.T) {
	p := &countingProvider{headlines: []types.Headline{{Title: "a"}, {Title: "b"}, {Title: "c"}}}
	s := NewService(p, DefaultServiceConfig())
	defer s.Close()
	ctx := context.Background()

	h, err := s.Headlines(ctx, "Apple Inc.", "AAPL", 3, 25)
	require.NoError(t, err)
	assert.Len(t, h, 3)

	_, err = s.Headlines(ctx, "Apple Inc.", "AAPL", 3, 25)
	require.NoError(t, err)
	assert.Equal(t, int32(1), p.calls.Load())

	// a different window is a different entry and maxItems is enforced
	h, err = s.Headlines(ctx, "Apple Inc.", "AAPL", 3, 2)
	require.NoError(t, err)
	assert.Len(t, h, 2)
	assert.Equal(t, int32(2), p.calls.Load())

	assert.Equal(t, []string{"AAPL"}, s.CachedSymbols())
	s.ClearCache()
	assert.Empty(t, s.CachedSymbols())
}

func TestService_ErrorsAreNotCached(t *testing.T) {
	p := &countingProvider{err: errors.New("boom")}
	s := NewService(p, DefaultServiceConfig())
	defer s.Close()

	_, err := s.Headlines(context.Background(), "X", "X", 3, 25)
	require.Error(t, err)
	_, err = s.Headlines(context.Background(), "X", "X", 3, 25)
	require.Error(t, err)
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestService_Disabled(t *testing.T) {
	p := &countingProvider{headlines: []types.Headline{{Title: "a"}}}
	cfg := DefaultServiceConfig()
	cfg.Enabled = false
	s := NewService(p, cfg)
	defer s.Close()

	h, err := s.Headlines(context.Background(), "X", "X", 3, 25)
	require.NoError(t, err)
	assert.Empty(t, h)
	assert.Equal(t, int32(0), p.calls.Load())
}
