package cache

import (
	"context"
	"fmt"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultKeyPrefix = "ledger:invoice_seq:"

// raiseTo moves the counter forward to ARGV[1] and never backwards
var raiseTo = redis.NewScript(`
local cur = tonumber(redis.call("GET", KEYS[1]) or "0")
local floor = tonumber(ARGV[1])
if cur < floor then
  redis.call("SET", KEYS[1], floor)
  return floor
end
return cur
`)

// RedisInvoiceSequence hands out invoice sequence values with INCR on a
// per-tenant key. The key is seeded from the fallback sequence the first time
// it is used, so existing invoice numbers are never reissued. Any Redis error
// degrades to the fallback.
type RedisInvoiceSequence struct {
	client   *redis.Client
	key      string
	fallback ledger.InvoiceSequence
	logger   *zap.Logger
}

// SequenceOption configures a RedisInvoiceSequence
type SequenceOption func(*sequenceOptions)

type sequenceOptions struct {
	keyPrefix string
	logger    *zap.Logger
}

// WithKeyPrefix overrides the Redis key prefix
func WithKeyPrefix(prefix string) SequenceOption {
	return func(o *sequenceOptions) {
		o.keyPrefix = prefix
	}
}

// WithLogger sets the logger used to report fallbacks
func WithLogger(logger *zap.Logger) SequenceOption {
	return func(o *sequenceOptions) {
		o.logger = logger
	}
}

func buildOptions(opts []SequenceOption) sequenceOptions {
	o := sequenceOptions{keyPrefix: defaultKeyPrefix, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewRedisInvoiceSequence creates the sequence for one tenant
func NewRedisInvoiceSequence(client *redis.Client, tenantID uuid.UUID, fallback ledger.InvoiceSequence, opts ...SequenceOption) *RedisInvoiceSequence {
	o := buildOptions(opts)
	return &RedisInvoiceSequence{
		client:   client,
		key:      o.keyPrefix + tenantID.String(),
		fallback: fallback,
		logger:   o.logger.With(zap.String("tenant_id", tenantID.String())),
	}
}

// NewSequenceFactory returns a persistence.SequenceFactory that wraps the
// count-based sequence of every tenant in a RedisInvoiceSequence
func NewSequenceFactory(client *redis.Client, opts ...SequenceOption) persistence.SequenceFactory {
	return func(tenantID uuid.UUID, fallback ledger.InvoiceSequence) ledger.InvoiceSequence {
		return NewRedisInvoiceSequence(client, tenantID, fallback, opts...)
	}
}

// Next returns the next sequence value
func (s *RedisInvoiceSequence) Next(ctx context.Context) (int64, error) {
	n, err := s.next(ctx)
	if err != nil {
		s.logger.Warn("Redis invoice sequence unavailable, using count sequence", zap.Error(err))
		return s.fallback.Next(ctx)
	}
	return n, nil
}

func (s *RedisInvoiceSequence) next(ctx context.Context) (int64, error) {
	exists, err := s.client.Exists(ctx, s.key).Result()
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		seed, err := s.fallback.Next(ctx)
		if err != nil {
			return 0, err
		}
		// another instance may seed first; SETNX keeps whichever value won
		if err := s.client.SetNX(ctx, s.key, seed-1, 0).Err(); err != nil {
			return 0, err
		}
	}
	return s.client.Incr(ctx, s.key).Result()
}

// Resync raises the counter to the fallback's view of the last used value.
// Callers use it after a duplicate invoice number shows the counter fell behind.
func (s *RedisInvoiceSequence) Resync(ctx context.Context) error {
	next, err := s.fallback.Next(ctx)
	if err != nil {
		return err
	}
	if err := raiseTo.Run(ctx, s.client, []string{s.key}, next-1).Err(); err != nil {
		return fmt.Errorf("failed to resync invoice sequence: %w", err)
	}
	return nil
}
