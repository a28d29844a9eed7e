package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-staff-api/pkg/errors"
)

type memoryCacheRepo struct {
	mu       sync.Mutex
	items    map[string][]byte
	ttls     map[string]time.Duration
	gets     int
	sets     int
	getErr   error
	patterns []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{items: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.sets++
	m.items[key] = payload
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append(m.patterns, pattern)
	prefix, wildcard := strings.CutSuffix(pattern, "*")
	for key := range m.items {
		if (wildcard && strings.HasPrefix(key, prefix)) || key == pattern {
			delete(m.items, key)
		}
	}
	return nil
}

func (m *memoryCacheRepo) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, nil, false)

	require.NoError(t, svc.Set(context.Background(), "k", "v", 0))
	var out string
	hit, err := svc.Get(context.Background(), "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Zero(t, repo.sets)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	require.NoError(t, nilSvc.Invalidate(context.Background(), "*"))
}

func TestCacheServiceRoundTripAndDefaultTTL(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, 0, nil, true)

	require.NoError(t, svc.Set(context.Background(), "workload:year:1:staff:2", map[string]int{"total": 3}, 0))
	assert.Equal(t, 5*time.Minute, repo.ttls["workload:year:1:staff:2"])

	var out map[string]int
	hit, err := svc.Get(context.Background(), "workload:year:1:staff:2", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, out["total"])

	hit, err = svc.Get(context.Background(), "missing", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	repo.getErr = errors.New("redis down")
	hit, err = svc.Get(context.Background(), "workload:year:1:staff:2", &out)
	assert.Error(t, err)
	assert.False(t, hit)
}
