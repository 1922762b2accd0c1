package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const entriesCollection = "entries"

type entryDocument struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Record `bson:",inline"`
}

// MongoEntryStore keeps one document per entry in the entries collection, scoped
// by user_id. The document _id is the entry id.
type MongoEntryStore struct {
	col *mongo.Collection
}

func NewMongoEntryStore(db *mongo.Database) *MongoEntryStore {
	return &MongoEntryStore{col: db.Collection(entriesCollection)}
}

// EnsureIndexes configures indexes for the entries collection.
// Called on startup from main after Mongo has connected.
func (s *MongoEntryStore) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "date", Value: -1},
			},
			Options: options.Index().SetName("idx_user_date"),
		},
	}
	for _, m := range models {
		if _, err := s.col.Indexes().CreateOne(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (s *MongoEntryStore) List(ctx context.Context, userID string) ([]KeyedRecord, error) {
	return s.find(ctx, bson.M{"user_id": userID})
}

func (s *MongoEntryStore) ListByDate(ctx context.Context, userID, date string) ([]KeyedRecord, error) {
	return s.find(ctx, bson.M{"user_id": userID, "date": date})
}

func (s *MongoEntryStore) find(ctx context.Context, filter bson.M) ([]KeyedRecord, error) {
	cursor, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []entryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]KeyedRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, KeyedRecord{ID: d.ID.Hex(), Record: d.Record})
	}
	return out, nil
}

func (s *MongoEntryStore) Get(ctx context.Context, userID, id string) (Record, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Record{}, ErrNotFound
	}

	var doc entryDocument
	err = s.col.FindOne(ctx, bson.M{"_id": oid, "user_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return doc.Record, nil
}

func (s *MongoEntryStore) Insert(ctx context.Context, userID string, rec Record) (string, error) {
	rec.UserID = userID
	doc := entryDocument{ID: primitive.NewObjectID(), Record: rec}
	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return doc.ID.Hex(), nil
}

func (s *MongoEntryStore) Replace(ctx context.Context, userID, id string, rec Record) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	rec.UserID = userID

	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": oid, "user_id": userID}, entryDocument{ID: oid, Record: rec})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoEntryStore) Delete(ctx context.Context, userID, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
