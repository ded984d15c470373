// Package idemrepo remembers which order a client-supplied idempotency key
// produced. Postgres stays authoritative; losing an entry only means a retry
// may create a second order.
package idemrepo

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	pending = "pending"
	TTL     = 24 * time.Hour
)

// State is the outcome of Begin.
type State int

const (
	// Fresh means the caller now owns the key and must Complete or Release it.
	Fresh State = iota
	// InFlight means another request with the same key has not finished.
	InFlight
	// Done means the key already produced OrderID.
	Done
)

type Store interface {
	Begin(ctx context.Context, memberID int64, key string) (state State, orderID int64, err error)
	Complete(ctx context.Context, memberID int64, key string, orderID int64) error
	Release(ctx context.Context, memberID int64, key string) error
}

func redisKey(memberID int64, key string) string {
	return "idem:checkout:" + strconv.FormatInt(memberID, 10) + ":" + key
}

type redisStore struct{ rdb *redis.Client }

func NewRedis(rdb *redis.Client) Store { return &redisStore{rdb: rdb} }

func (s *redisStore) Begin(ctx context.Context, memberID int64, key string) (State, int64, error) {
	k := redisKey(memberID, key)
	ok, err := s.rdb.SetNX(ctx, k, pending, TTL).Result()
	if err != nil {
		return Fresh, 0, err
	}
	if ok {
		return Fresh, 0, nil
	}
	v, err := s.rdb.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; try once more
		ok, err = s.rdb.SetNX(ctx, k, pending, TTL).Result()
		if err != nil || ok {
			return Fresh, 0, err
		}
		return InFlight, 0, nil
	}
	if err != nil {
		return Fresh, 0, err
	}
	if v == pending {
		return InFlight, 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return Fresh, 0, err
	}
	return Done, id, nil
}

func (s *redisStore) Complete(ctx context.Context, memberID int64, key string, orderID int64) error {
	return s.rdb.Set(ctx, redisKey(memberID, key), strconv.FormatInt(orderID, 10), TTL).Err()
}

func (s *redisStore) Release(ctx context.Context, memberID int64, key string) error {
	return s.rdb.Del(ctx, redisKey(memberID, key)).Err()
}

type noop struct{}

// NewNoop returns a Store that never remembers anything, for deployments
// without Redis.
func NewNoop() Store { return noop{} }

func (noop) Begin(context.Context, int64, string) (State, int64, error) { return Fresh, 0, nil }
func (noop) Complete(context.Context, int64, string, int64) error { return nil }
func (noop) Release(context.Context, int64, string) error { return nil }
