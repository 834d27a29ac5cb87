package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/stockkeeper/internal/domain/models"
)

// Repository defines the inventory storage operations.
type Repository interface {
	UpsertByKey(ctx context.Context, record models.Record) (UpsertOutcome, error)
	FindLowStock(ctx context.Context, filter models.LowStockFilter) ([]models.Record, error)
}

// UpsertOutcome tells whether an upsert replaced an existing line or created one.
type UpsertOutcome struct {
	Matched  bool
	Inserted bool
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoDBRepository connects to MongoDB and binds the inventory collection.
func NewMongoDBRepository(ctx context.Context, uri, dbName, collName string) (*MongoDBRepository, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: MONGO_URI is empty, no database to connect to", models.ErrStorage)
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to mongodb: %v", models.ErrStorage, err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: failed to ping mongodb: %v", models.ErrStorage, err)
	}

	return &MongoDBRepository{
		client:     client,
		collection: client.Database(dbName).Collection(collName),
	}, nil
}

// UpsertByKey replaces the document sharing the record's natural key, or inserts
// the record when none exists, in a single atomic operation.
func (r *MongoDBRepository) UpsertByKey(ctx context.Context, record models.Record) (UpsertOutcome, error) {
	replacement := bson.D(record.Without(models.FieldID))
	opts := options.Replace().SetUpsert(true)

	res, err := r.collection.ReplaceOne(ctx, record.NaturalKey(), replacement, opts)
	if err != nil {
		return UpsertOutcome{}, fmt.Errorf("%w: upsert inventory line %v: %v", models.ErrStorage, describeKey(record), err)
	}

	return UpsertOutcome{
		Matched:  res.MatchedCount > 0,
		Inserted: res.UpsertedCount > 0,
	}, nil
}

// FindLowStock returns every document whose stock is below the threshold and
// that matches the optional text filters, in store order.
func (r *MongoDBRepository) FindLowStock(ctx context.Context, filter models.LowStockFilter) ([]models.Record, error) {
	cursor, err := r.collection.Find(ctx, BuildLowStockFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("%w: query low stock: %v", models.ErrStorage, err)
	}
	defer cursor.Close(ctx)

	records := make([]models.Record, 0)
	for cursor.Next(ctx) {
		var doc bson.D
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: decode inventory document: %v", models.ErrStorage, err)
		}
		records = append(records, models.Record(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: cursor error: %v", models.ErrStorage, err)
	}

	return records, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func describeKey(record models.Record) string {
	key := record.NaturalKey()
	return fmt.Sprintf("%v/%v/%v/%v", key[0].Value, key[1].Value, key[2].Value, key[3].Value)
}
