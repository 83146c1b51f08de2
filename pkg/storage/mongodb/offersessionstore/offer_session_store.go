/*
Copyright WalletID Authors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package offersessionstore stores credential offer sessions in mongodb. A
// TTL index removes expired documents server-side; reads and sweeps guard on
// the recorded deadline as well, since the TTL monitor only runs
// periodically.
package offersessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/walletid/oid4vc/pkg/restapi/resterr"
	"github.com/walletid/oid4vc/pkg/service/credentialoffer"
	"github.com/walletid/oid4vc/pkg/storage/mongodb"
)

const (
	collectionName = "offersession"
)

type mongoDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	SID      string             `bson:"sid"`
	ExpireAt time.Time          `bson:"expireAt"`

	Session *credentialoffer.Session `bson:"session"`
}

// Store stores credential offer sessions in mongodb.
type Store struct {
	ttl         time.Duration
	mongoClient *mongodb.Client
}

// New creates a new instance of Store and ensures its indexes.
func New(ctx context.Context, mongoClient *mongodb.Client, ttl time.Duration) (*Store, error) {
	s := &Store{
		mongoClient: mongoClient,
		ttl:         ttl,
	}

	if err := s.migrate(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.mongoClient.Database().Collection(collectionName).Indexes().
		CreateMany(ctx, []mongo.IndexModel{
			{
				Keys: map[string]interface{}{
					"sid": -1,
				},
				Options: options.Index().SetUnique(true),
			},
			{ // ttl index, fires at the recorded deadline
				Keys: map[string]interface{}{
					"expireAt": 1,
				},
				Options: options.Index().SetExpireAfterSeconds(0),
			},
		})

	return err
}

// Set inserts or replaces the session stored under id. The expiry deadline
// is derived from the session's CreatedAt, not from the insertion time.
func (s *Store) Set(ctx context.Context, id string, session *credentialoffer.Session) error {
	doc := &mongoDocument{
		SID:      id,
		ExpireAt: session.ExpiresAt(s.ttl).UTC(),
		Session:  session,
	}

	collection := s.mongoClient.Database().Collection(collectionName)

	_, err := collection.ReplaceOne(ctx,
		bson.M{"sid": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo replace: %w", err)
	}

	return nil
}

// Get returns the session stored under id.
func (s *Store) Get(ctx context.Context, id string) (*credentialoffer.Session, error) {
	collection := s.mongoClient.Database().Collection(collectionName)

	var doc mongoDocument

	err := collection.FindOne(ctx, bson.M{"sid": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, resterr.ErrDataNotFound
		}

		return nil, fmt.Errorf("mongo find: %w", err)
	}

	if !doc.ExpireAt.After(time.Now().UTC()) {
		// the TTL monitor only runs every minute, so an expired doc can
		// still be returned
		return nil, resterr.ErrDataNotFound
	}

	return doc.Session, nil
}

// Has reports whether a session is stored under id.
func (s *Store) Has(ctx context.Context, id string) (bool, error) {
	collection := s.mongoClient.Database().Collection(collectionName)

	n, err := collection.CountDocuments(ctx, bson.M{"sid": id})
	if err != nil {
		return false, fmt.Errorf("mongo count: %w", err)
	}

	return n > 0, nil
}

// Delete removes the session stored under id and reports whether an entry
// existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	collection := s.mongoClient.Database().Collection(collectionName)

	result, err := collection.DeleteOne(ctx, bson.M{"sid": id})
	if err != nil {
		return false, fmt.Errorf("mongo delete: %w", err)
	}

	return result.DeletedCount > 0, nil
}

// Take atomically removes and returns the session stored under id, enforcing
// single-use consumption through findOneAndDelete.
func (s *Store) Take(ctx context.Context, id string) (*credentialoffer.Session, error) {
	collection := s.mongoClient.Database().Collection(collectionName)

	var doc mongoDocument

	err := collection.FindOneAndDelete(ctx, bson.M{"sid": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, resterr.ErrDataNotFound
		}

		return nil, fmt.Errorf("mongo find and delete: %w", err)
	}

	if !doc.ExpireAt.After(time.Now().UTC()) {
		return nil, resterr.ErrDataNotFound
	}

	return doc.Session, nil
}

// ClearExpired removes every session whose recorded deadline is at or before
// now, without waiting for the TTL monitor.
func (s *Store) ClearExpired(ctx context.Context, now time.Time) error {
	collection := s.mongoClient.Database().Collection(collectionName)

	_, err := collection.DeleteMany(ctx, bson.M{"expireAt": bson.M{"$lte": now.UTC()}})
	if err != nil {
		return fmt.Errorf("mongo delete many: %w", err)
	}

	return nil
}

// ClearAll removes every stored session.
func (s *Store) ClearAll(ctx context.Context) error {
	collection := s.mongoClient.Database().Collection(collectionName)

	_, err := collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("mongo delete many: %w", err)
	}

	return nil
}
