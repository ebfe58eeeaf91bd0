package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultMongoCollection holds cache documents when no collection is named.
const DefaultMongoCollection = "cache_entries"

// mongoEntry is the stored document. MongoDB's TTL monitor removes documents
// once expires_at passes; Get also checks it because the monitor runs only
// once a minute.
type mongoEntry struct {
	Key       string     `bson:"_id"`
	Data      []byte     `bson:"data"`
	Category  string     `bson:"category,omitempty"`
	CreatedAt time.Time  `bson:"created_at"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// MongoCache stores entries as documents in a MongoDB collection.
type MongoCache struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// NewMongoCache connects to uri, selects database/collection and ensures the
// TTL index on expires_at exists.
func NewMongoCache(ctx context.Context, uri, database, collection string) (*MongoCache, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	c, err := NewMongoCacheFromClient(ctx, client, database, collection)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	c.owned = true
	return c, nil
}

// NewMongoCacheFromClient uses an existing client. Close will not disconnect it.
func NewMongoCacheFromClient(ctx context.Context, client *mongo.Client, database, collection string) (*MongoCache, error) {
	if database == "" {
		database = "repolens"
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	coll := client.Database(database).Collection(collection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return nil, fmt.Errorf("create ttl index: %w", err)
	}
	return &MongoCache{client: client, coll: coll}, nil
}

func (c *MongoCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc mongoEntry
	err := c.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if doc.ExpiresAt != nil && time.Now().After(*doc.ExpiresAt) {
		return nil, false, nil
	}
	return doc.Data, true, nil
}

func (c *MongoCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	now := time.Now().UTC()
	doc := mongoEntry{Key: key, Data: data, Category: CategoryOf(key), CreatedAt: now}
	if ttl > 0 {
		exp := now.Add(ttl)
		doc.ExpiresAt = &exp
	}
	_, err := c.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return err
}

func (c *MongoCache) Delete(ctx context.Context, key string) error {
	_, err := c.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// Clear deletes every document in the collection.
func (c *MongoCache) Clear(ctx context.Context) (int, error) {
	res, err := c.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

func (c *MongoCache) Close() error {
	if !c.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

var _ Cache = (*MongoCache)(nil)
