package department

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "departments"

type departmentRepoMongo struct {
	coll *mongo.Collection
}

func NewDepartmentRepoMongo(db *mongo.Database) Repository {
	return &departmentRepoMongo{coll: db.Collection(collectionName)}
}

func (r *departmentRepoMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure departments index: %w", err)
	}
	return nil
}

func (r *departmentRepoMongo) Exists(ctx context.Context, legacyID int64) (bool, error) {
	err := r.coll.FindOne(ctx, bson.M{"id": legacyID},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check department %d: %w", legacyID, err)
	}
	return true, nil
}

func (r *departmentRepoMongo) Insert(ctx context.Context, doc *Document) error {
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert department %d: %w", doc.LegacyID, err)
	}
	return nil
}
