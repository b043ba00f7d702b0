package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRedisCacheClient is a mock implementation of RedisCacheClient
type MockRedisCacheClient struct {
	mock.Mock
}

func (m *MockRedisCacheClient) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.StringCmd)
}

func (m *MockRedisCacheClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.StatusCmd)
}

func (m *MockRedisCacheClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	return args.Get(0).(*redis.IntCmd)
}

func createStringCmd(result string, err error) *redis.StringCmd {
	cmd := redis.NewStringCmd(context.Background())
	if err != nil {
		cmd.SetErr(err)
	} else {
		cmd.SetVal(result)
	}
	return cmd
}

func createStatusCmd(err error) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(context.Background())
	if err != nil {
		cmd.SetErr(err)
	} else {
		cmd.SetVal("OK")
	}
	return cmd
}

func createIntCmd(result int64, err error) *redis.IntCmd {
	cmd := redis.NewIntCmd(context.Background())
	if err != nil {
		cmd.SetErr(err)
	} else {
		cmd.SetVal(result)
	}
	return cmd
}

func TestRedisCache_Key(t *testing.T) {
	cache := NewRedisCache(new(MockRedisCacheClient), slog.Default())

	key := cache.key("token-1")
	assert.Equal(t, "cache:session:"+tokenKey("token-1"), key)
	assert.NotContains(t, key, "token-1")
}

func TestRedisCache_Get(t *testing.T) {
	ctx := context.Background()
	entry := newEntry(time.Minute)
	encoded, _ := json.Marshal(entry)
	stale, _ := json.Marshal(newEntry(-time.Minute))

	tests := []struct {
		name      string
		cmd       *redis.StringCmd
		wantFound bool
	}{
		{name: "hit", cmd: createStringCmd(string(encoded), nil), wantFound: true},
		{name: "miss", cmd: createStringCmd("", redis.Nil)},
		{name: "redis error", cmd: createStringCmd("", errors.New("connection refused"))},
		{name: "corrupt payload", cmd: createStringCmd("{not json", nil)},
		{name: "stale payload", cmd: createStringCmd(string(stale), nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := new(MockRedisCacheClient)
			cache := NewRedisCache(mockClient, slog.Default())
			mockClient.On("Get", ctx, cache.key("token-1")).Return(tt.cmd)

			got, ok := cache.Get(ctx, "token-1")

			assert.Equal(t, tt.wantFound, ok)
			if tt.wantFound {
				assert.Equal(t, "user-1", got.Session.UserID)
				assert.Equal(t, "token-1", got.Session.Token, "token is restored from the lookup key")
			}
			mockClient.AssertExpectations(t)
		})
	}
}

func TestRedisCache_Set(t *testing.T) {
	ctx := context.Background()

	t.Run("stores with remaining ttl", func(t *testing.T) {
		mockClient := new(MockRedisCacheClient)
		cache := NewRedisCache(mockClient, slog.Default())

		mockClient.On("Set", ctx, cache.key("token-1"), mock.AnythingOfType("[]uint8"), mock.MatchedBy(func(ttl time.Duration) bool {
			return ttl > 0 && ttl <= time.Minute
		})).Return(createStatusCmd(nil))

		cache.Set(ctx, "token-1", newEntry(time.Minute))
		mockClient.AssertExpectations(t)
	})

	t.Run("expired entry is skipped", func(t *testing.T) {
		mockClient := new(MockRedisCacheClient)
		cache := NewRedisCache(mockClient, slog.Default())

		cache.Set(ctx, "token-1", newEntry(-time.Second))
		mockClient.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRedisCache_Delete(t *testing.T) {
	ctx := context.Background()
	mockClient := new(MockRedisCacheClient)
	cache := NewRedisCache(mockClient, slog.Default())

	mockClient.On("Del", ctx, []string{cache.key("token-1")}).Return(createIntCmd(1, nil))

	cache.Delete(ctx, "token-1")

	mockClient.AssertExpectations(t)
}

func TestHybridCache(t *testing.T) {
	ctx := context.Background()
	entry := newEntry(time.Minute)
	encoded, _ := json.Marshal(entry)

	t.Run("redis hit is copied into memory", func(t *testing.T) {
		mockClient := new(MockRedisCacheClient)
		redisCache := NewRedisCache(mockClient, slog.Default())
		mem := NewMemCache()
		h := NewHybridCache(mem, redisCache, slog.Default())

		mockClient.On("Get", ctx, redisCache.key("token-1")).Return(createStringCmd(string(encoded), nil)).Once()

		_, ok := h.Get(ctx, "token-1")
		assert.True(t, ok)

		_, ok = h.Get(ctx, "token-1")
		assert.True(t, ok, "second read is served from memory")
		assert.Len(t, mem.cache, 1)
		mockClient.AssertExpectations(t)
	})

	t.Run("delete clears both layers", func(t *testing.T) {
		mockClient := new(MockRedisCacheClient)
		redisCache := NewRedisCache(mockClient, slog.Default())
		mem := NewMemCache()
		h := NewHybridCache(mem, redisCache, slog.Default())

		mockClient.On("Set", ctx, redisCache.key("token-1"), mock.Anything, mock.Anything).Return(createStatusCmd(nil))
		mockClient.On("Del", ctx, []string{redisCache.key("token-1")}).Return(createIntCmd(1, nil))

		h.Set(ctx, "token-1", entry)
		assert.Len(t, mem.cache, 1)

		h.Delete(ctx, "token-1")
		assert.Empty(t, mem.cache)
		mockClient.AssertExpectations(t)
	})
}
