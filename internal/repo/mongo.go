package repo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"linkstate/linkstate/internal/model"
)

const linksCollection = "links"

type MongoRepo struct{ coll *mongo.Collection }

func NewMongo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{coll: db.Collection(linksCollection)}
}

// Migrate creates the unique index on token.
func (r *MongoRepo) Migrate(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "token", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("token_unique"),
	})
	if err != nil {
		return fmt.Errorf("migrate links: %w", err)
	}
	return nil
}

func (r *MongoRepo) Insert(ctx context.Context, link model.Link) (model.Link, error) {
	if _, err := r.coll.InsertOne(ctx, link); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.Link{}, fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		}
		return model.Link{}, fmt.Errorf("insert link: %w", err)
	}

	return r.GetByToken(ctx, link.Token)
}

func (r *MongoRepo) GetByToken(ctx context.Context, token string) (model.Link, error) {
	return decodeLink(r.coll.FindOne(ctx, bson.M{"token": token}))
}

func (r *MongoRepo) UpdateOriginalURL(ctx context.Context, token, originalURL string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"token": token},
		bson.M{"$set": bson.M{"originalUrl": originalURL}})
	if err != nil {
		return fmt.Errorf("update link: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) IncrementClickCount(ctx context.Context, token string) (model.Link, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	return decodeLink(r.coll.FindOneAndUpdate(ctx,
		bson.M{"token": token},
		bson.M{"$inc": bson.M{"clickCount": 1}},
		opts))
}

func (r *MongoRepo) DeleteByToken(ctx context.Context, token string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"token": token})
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func decodeLink(res *mongo.SingleResult) (model.Link, error) {
	var rec model.Link
	if err := res.Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Link{}, ErrNotFound
		}
		return model.Link{}, fmt.Errorf("query link: %w", err)
	}
	// Mongo stores milliseconds in UTC; normalise the location.
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}
