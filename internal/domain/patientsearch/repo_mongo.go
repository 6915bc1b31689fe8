package patientsearch

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "patients"

type searchRepoMongo struct {
	coll *mongo.Collection
}

func NewSearchRepoMongo(db *mongo.Database) Repository {
	return &searchRepoMongo{coll: db.Collection(collectionName)}
}

func (r *searchRepoMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "patient_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure patients index: %w", err)
	}
	return nil
}

func (r *searchRepoMongo) Exists(ctx context.Context, patientID int64) (bool, error) {
	err := r.coll.FindOne(ctx, bson.M{"patient_id": patientID},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check patient %d: %w", patientID, err)
	}
	return true, nil
}

func (r *searchRepoMongo) Insert(ctx context.Context, doc *Document) error {
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert patient %d: %w", doc.PatientID, err)
	}
	return nil
}

func (r *searchRepoMongo) Count(ctx context.Context) (int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count patients: %w", err)
	}
	return total, nil
}

func (r *searchRepoMongo) List(ctx context.Context, limit, offset int) ([]Document, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "patient_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer cursor.Close(ctx)

	docs := []Document{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode patients: %w", err)
	}
	return docs, nil
}
