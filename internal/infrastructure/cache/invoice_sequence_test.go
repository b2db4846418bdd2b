package cache

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dealledger/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

// stubSequence stands in for the count-based sequence
type stubSequence struct {
	next  int64
	err   error
	calls int
}

func (s *stubSequence) Next(context.Context) (int64, error) {
	s.calls++
	return s.next, s.err
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisInvoiceSequence_SeedsFromFallback(t *testing.T) {
	mr, client := newTestRedis(t)
	tenant := uuid.New()
	fallback := &stubSequence{next: 8}

	seq := NewRedisInvoiceSequence(client, tenant, fallback)
	ctx := context.Background()

	n, err := seq.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)

	n, err = seq.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)
	assert.Equal(t, 1, fallback.calls, "seed is read once")

	got, err := mr.Get(defaultKeyPrefix + tenant.String())
	require.NoError(t, err)
	assert.Equal(t, "9", got)
}

func TestRedisInvoiceSequence_TenantsAreIndependent(t *testing.T) {
	_, client := newTestRedis(t)
	factory := NewSequenceFactory(client, WithKeyPrefix("test:seq:"))
	ctx := context.Background()

	a := factory(uuid.New(), &stubSequence{next: 1})
	b := factory(uuid.New(), &stubSequence{next: 40})

	for want := int64(1); want <= 3; want++ {
		n, err := a.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	n, err := b.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(40), n)
}

func TestRedisInvoiceSequence_FallsBackWhenRedisIsDown(t *testing.T) {
	mr, client := newTestRedis(t)
	core, logs := observer.New(zapcore.WarnLevel)
	fallback := &stubSequence{next: 5}

	seq := NewRedisInvoiceSequence(client, uuid.New(), fallback, WithLogger(zap.New(core)))
	mr.Close()

	n, err := seq.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, 1, logs.FilterMessageSnippet("using count sequence").Len())
}

func TestRedisInvoiceSequence_SeedErrorFallsBack(t *testing.T) {
	_, client := newTestRedis(t)
	fallback := &stubSequence{err: errors.New("db down")}

	seq := NewRedisInvoiceSequence(client, uuid.New(), fallback)
	_, err := seq.Next(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestRedisInvoiceSequence_Resync(t *testing.T) {
	mr, client := newTestRedis(t)
	tenant := uuid.New()
	fallback := &stubSequence{next: 1}
	seq := NewRedisInvoiceSequence(client, tenant, fallback)
	ctx := context.Background()

	n, err := seq.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	t.Run("raises a counter that fell behind", func(t *testing.T) {
		fallback.next = 12
		require.NoError(t, seq.Resync(ctx))

		n, err := seq.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(12), n)
	})

	t.Run("never lowers the counter", func(t *testing.T) {
		fallback.next = 3
		require.NoError(t, seq.Resync(ctx))

		got, err := mr.Get(defaultKeyPrefix + tenant.String())
		require.NoError(t, err)
		assert.Equal(t, "12", got)
	})
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.RedisConfig{Host: mr.Host(), Port: mustPort(t, mr)}
	client, err := NewRedisClient(context.Background(), cfg)
	require.NoError(t, err)
	defer client.Close()

	mr.Close()
	_, err = NewRedisClient(context.Background(), cfg)
	assert.Error(t, err)
}

func mustPort(t *testing.T, mr *miniredis.Miniredis) int {
	t.Helper()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	return port
}
