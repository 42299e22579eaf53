package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"loanledger/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrefix = "loanledger:limiter:"

func newRedisStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	storage := NewRedisStorage(redis.NewClient(&redis.Options{Addr: mr.Addr()}), testPrefix)
	t.Cleanup(func() { _ = storage.Close() })
	return storage, mr
}

func TestRedisStorageGetSetDelete(t *testing.T) {
	storage, mr := newRedisStorage(t)

	val, err := storage.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, storage.Set("10.0.0.1-auth", []byte("3"), 0))
	assert.True(t, mr.Exists(testPrefix+"10.0.0.1-auth"))

	val, err = storage.Get("10.0.0.1-auth")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), val)

	// empty keys and values are ignored
	require.NoError(t, storage.Set("", []byte("x"), 0))
	require.NoError(t, storage.Set("empty", nil, 0))
	assert.False(t, mr.Exists(testPrefix+"empty"))

	require.NoError(t, storage.Delete("10.0.0.1-auth"))
	val, err = storage.Get("10.0.0.1-auth")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestRedisStorageExpiry(t *testing.T) {
	storage, mr := newRedisStorage(t)

	require.NoError(t, storage.Set("window", []byte("1"), time.Minute))
	mr.FastForward(2 * time.Minute)

	val, err := storage.Get("window")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestRedisStorageResetKeepsForeignKeys(t *testing.T) {
	storage, mr := newRedisStorage(t)

	for i := 0; i < 150; i++ {
		require.NoError(t, storage.Set(fmt.Sprintf("10.0.%d.%d-auth", i/100, i%100), []byte("1"), 0))
	}
	require.NoError(t, mr.Set("session:abc", "keep"))

	require.NoError(t, storage.Reset())

	assert.Equal(t, []string{"session:abc"}, mr.Keys())
}

func TestAuthRateLimiterSharesRedisCounters(t *testing.T) {
	storage, mr := newRedisStorage(t)
	cfg := &config.Config{RateLimit: config.RateLimitConfig{Max: 100, AuthMax: 2}}

	// two apps stand in for two server instances behind one redis
	newApp := func() *fiber.App {
		app := fiber.New()
		app.Post("/auth/login", AuthRateLimiter(cfg, storage), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
		return app
	}
	first, second := newApp(), newApp()

	post := func(app *fiber.App) int {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/auth/login", nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, post(first))
	assert.Equal(t, http.StatusOK, post(second))
	assert.Equal(t, http.StatusTooManyRequests, post(first))

	keys := mr.Keys()
	require.NotEmpty(t, keys)
	for _, k := range keys {
		assert.True(t, strings.HasPrefix(k, testPrefix), k)
	}
}
