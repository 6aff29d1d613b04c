package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	AggregateDbName  = "eventhub"
	AggregateColName = "app_state"

	mongoTimeout = 5 * time.Second
)

type aggregateDocument struct {
	ID          string    `bson:"_id"`
	Type        string    `bson:"type"`
	Data        Aggregate `bson:"data"`
	LastUpdated time.Time `bson:"last_updated"`
	Revision    int64     `bson:"revision"`
}

func (mdb *MongodbRepo) GetCollection(ctx context.Context, dbName, colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialised")
	}
	return mdb.mongodbClient.Database(dbName).Collection(colName), nil
}

func (mdb *MongodbRepo) Load(ctx context.Context) (*Aggregate, error) {
	col, err := mdb.GetCollection(ctx, mdb.dbName, AggregateColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	var doc aggregateDocument
	err = col.FindOne(ctx, bson.M{"_id": AggregateID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return NewAggregate(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding aggregate: %v", err)
	}

	agg := &doc.Data
	agg.Normalize()
	agg.Revision = doc.Revision
	return agg, nil
}

// Save upserts the document guarded by its revision. When another writer got
// there first the filter misses, the upsert collides on _id and the duplicate
// key error is reported as ErrRevisionConflict.
func (mdb *MongodbRepo) Save(ctx context.Context, agg *Aggregate) error {
	col, err := mdb.GetCollection(ctx, mdb.dbName, AggregateColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	agg.Normalize()
	next := agg.Revision + 1
	filter := bson.M{"_id": AggregateID, "revision": agg.Revision}
	update := bson.M{
		"$set": bson.M{
			"type":         AggregateID,
			"data":         agg,
			"last_updated": time.Now().UTC(),
			"revision":     next,
		},
	}

	_, err = col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return ErrRevisionConflict
	}
	if err != nil {
		return fmt.Errorf("error saving aggregate: %v", err)
	}
	agg.Revision = next
	return nil
}

// EnsureIndexes creates the lookup index on the document type.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, mdb.dbName, AggregateColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "last_updated", Value: -1}},
			Options: options.Index().SetName("type_last_updated"),
		},
	}
	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating indexes: %v", err)
	}
	return nil
}
