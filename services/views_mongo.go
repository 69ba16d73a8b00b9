package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"portfolio-backend/models"
)

// MongoViewStore keeps one {slug, count} document per viewed slug.
type MongoViewStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ ViewStore = (*MongoViewStore)(nil)

// ConnectMongoViewStore connects, pings, and ensures the unique slug index.
func ConnectMongoViewStore(ctx context.Context, uri, database, collection string) (*MongoViewStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	coll := client.Database(database).Collection(collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo slug index: %w", err)
	}

	return &MongoViewStore{client: client, collection: coll}, nil
}

func (s *MongoViewStore) Increment(ctx context.Context, slug string) error {
	if slug == "" {
		return ErrEmptySlug
	}
	filter := bson.M{"slug": slug}
	update := bson.M{"$inc": bson.M{"count": 1}}
	opts := options.Update().SetUpsert(true)

	if _, err := s.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("increment %s: %w", slug, err)
	}
	return nil
}

func (s *MongoViewStore) All(ctx context.Context) ([]models.ViewCount, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 0, "slug": 1, "count": 1}).
		SetSort(bson.D{{Key: "count", Value: -1}, {Key: "slug", Value: 1}})

	cur, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("query views: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.ViewCount{}
	for cur.Next(ctx) {
		var vc models.ViewCount
		if err := cur.Decode(&vc); err != nil {
			continue
		}
		out = append(out, vc)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return out, nil
}

func (s *MongoViewStore) Get(ctx context.Context, slug string) (int64, error) {
	var vc models.ViewCount
	err := s.collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&vc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", slug, err)
	}
	return vc.Count, nil
}

func (s *MongoViewStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoViewStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
