/*
Copyright WalletID Authors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package offersessionstore stores credential offer sessions in redis.
// Expiry is enforced primarily through native key TTLs derived from each
// session's caller-supplied creation time; ClearExpired additionally sweeps
// documents whose recorded deadline passed before the server-side TTL fired.
package offersessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisapi "github.com/redis/go-redis/v9"

	"github.com/walletid/oid4vc/pkg/restapi/resterr"
	"github.com/walletid/oid4vc/pkg/service/credentialoffer"
	"github.com/walletid/oid4vc/pkg/storage/redis"
)

const (
	keyPrefix = "offersession"
)

// Store stores credential offer sessions in redis.
type Store struct {
	ttl         time.Duration
	redisClient *redis.Client
}

// New creates a new instance of Store.
func New(redisClient *redis.Client, ttl time.Duration) *Store {
	return &Store{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

// Set inserts or replaces the session stored under id. The key TTL is
// derived from the session's CreatedAt, not from the insertion time.
func (s *Store) Set(ctx context.Context, id string, session *credentialoffer.Session) error {
	doc := &redisDocument{
		ExpireAt: session.ExpiresAt(s.ttl).UTC(),
		Session:  session,
	}

	remaining := time.Until(doc.ExpireAt)
	if remaining <= 0 {
		// Already past its deadline; redis cannot hold a key without a
		// positive TTL, so let it expire immediately.
		remaining = time.Millisecond
	}

	if err := s.redisClient.API().Set(ctx, resolveRedisKey(id), doc, remaining).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Get returns the session stored under id.
func (s *Store) Get(ctx context.Context, id string) (*credentialoffer.Session, error) {
	b, err := s.redisClient.API().Get(ctx, resolveRedisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redisapi.Nil) {
			return nil, resterr.ErrDataNotFound
		}

		return nil, fmt.Errorf("redis get: %w", err)
	}

	return decodeLiveSession(b)
}

// Has reports whether a session is stored under id.
func (s *Store) Has(ctx context.Context, id string) (bool, error) {
	n, err := s.redisClient.API().Exists(ctx, resolveRedisKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}

	return n > 0, nil
}

// Delete removes the session stored under id and reports whether an entry
// existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	n, err := s.redisClient.API().Del(ctx, resolveRedisKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("redis del: %w", err)
	}

	return n > 0, nil
}

// Take atomically removes and returns the session stored under id, enforcing
// single-use consumption through GETDEL.
func (s *Store) Take(ctx context.Context, id string) (*credentialoffer.Session, error) {
	b, err := s.redisClient.API().GetDel(ctx, resolveRedisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redisapi.Nil) {
			return nil, resterr.ErrDataNotFound
		}

		return nil, fmt.Errorf("redis getdel: %w", err)
	}

	return decodeLiveSession(b)
}

// ClearExpired removes every stored session whose recorded deadline is at or
// before now. Under normal operation native TTLs fire first and the scan
// finds nothing.
func (s *Store) ClearExpired(ctx context.Context, now time.Time) error {
	clientAPI := s.redisClient.API()

	iter := clientAPI.Scan(ctx, 0, keyPrefix+"-*", 0).Iterator()

	for iter.Next(ctx) {
		key := iter.Val()

		b, err := clientAPI.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redisapi.Nil) {
				continue
			}

			return fmt.Errorf("redis get %s: %w", key, err)
		}

		var doc redisDocument
		if err = json.Unmarshal(b, &doc); err != nil {
			return fmt.Errorf("offer session decode: %w", err)
		}

		if !doc.ExpireAt.After(now) {
			if err = clientAPI.Del(ctx, key).Err(); err != nil {
				return fmt.Errorf("redis del %s: %w", key, err)
			}
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}

	return nil
}

// ClearAll removes every stored session.
func (s *Store) ClearAll(ctx context.Context) error {
	clientAPI := s.redisClient.API()

	iter := clientAPI.Scan(ctx, 0, keyPrefix+"-*", 0).Iterator()

	for iter.Next(ctx) {
		if err := clientAPI.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis del %s: %w", iter.Val(), err)
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}

	return nil
}

func decodeLiveSession(b []byte) (*credentialoffer.Session, error) {
	var doc redisDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("offer session decode: %w", err)
	}

	if !doc.ExpireAt.After(time.Now().UTC()) {
		return nil, resterr.ErrDataNotFound
	}

	return doc.Session, nil
}

func resolveRedisKey(id string) string {
	return fmt.Sprintf("%s-%s", keyPrefix, id)
}
