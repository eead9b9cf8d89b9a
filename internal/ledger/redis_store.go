package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	// stockKeyPrefix namespaces the flat variantKey -> count mapping
	stockKeyPrefix = "stock:"

	// casRetries bounds how often Adjust re-runs the compare-and-swap
	// before giving up with ErrConflict
	casRetries = 3
)

// RedisStore persists stock counts as one integer value per variant under a
// fixed key prefix. Adjust runs as a WATCH/MULTI compare-and-swap, so two
// writers racing on the same variant cannot both apply against a stale
// read; the loser retries and eventually gets ErrConflict.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func stockKey(variantKey string) string {
	return stockKeyPrefix + variantKey
}

func (s *RedisStore) GetStock(ctx context.Context, variantKey string) (int, error) {
	val, err := s.client.Get(ctx, stockKey(variantKey)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: redis get failed: %v", ErrStorageUnavailable, err)
	}
	return val, nil
}

func (s *RedisStore) Adjust(ctx context.Context, variantKey string, delta int) (int, error) {
	key := stockKey(variantKey)
	var next int

	txn := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Int()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return fmt.Errorf("%w: redis get failed: %v", ErrStorageUnavailable, err)
		}

		next = current + delta
		if next < 0 {
			return &InsufficientStockError{
				VariantKey: variantKey,
				Requested:  -delta,
				Available:  current,
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < casRetries; i++ {
		err := s.client.Watch(ctx, txn, key)
		if err == nil {
			return next, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			// another writer touched the key between read and exec
			continue
		}
		if errors.Is(err, ErrInsufficientStock) || errors.Is(err, ErrStorageUnavailable) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: redis transaction failed: %v", ErrStorageUnavailable, err)
	}

	return 0, ErrConflict
}

func (s *RedisStore) SetStock(ctx context.Context, variantKey string, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if err := s.client.Set(ctx, stockKey(variantKey), quantity, 0).Err(); err != nil {
		return fmt.Errorf("%w: redis set failed: %v", ErrStorageUnavailable, err)
	}
	return nil
}
