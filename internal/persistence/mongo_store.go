package persistence

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is a ProjectStore backed by a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
}

// Ensure it implements ProjectStore.
var _ ProjectStore = (*MongoStore)(nil)

// NewMongoStore creates a Mongo-backed project store.
// dbName defaults to "proctree" if empty, collName defaults to "process_groups".
func NewMongoStore(client *mongo.Client, dbName, collName string) *MongoStore {
	if dbName == "" {
		dbName = "proctree"
	}
	if collName == "" {
		collName = "process_groups"
	}

	return &MongoStore{
		coll: client.Database(dbName).Collection(collName),
	}
}

type mongoGroupDoc struct {
	Name      string    `bson:"_id"`
	Snapshot  []byte    `bson:"snapshot"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (s *MongoStore) SaveGroup(ctx context.Context, rec GroupRecord) error {
	at := rec.UpdatedAt
	if at.IsZero() {
		at = time.Now()
	}
	doc := mongoGroupDoc{Name: rec.Name, Snapshot: rec.Snapshot, UpdatedAt: at.UTC()}

	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": rec.Name}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) GetGroup(ctx context.Context, name string) (GroupRecord, error) {
	var doc mongoGroupDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return GroupRecord{}, ErrGroupNotFound
		}
		return GroupRecord{}, err
	}
	return GroupRecord{Name: doc.Name, Snapshot: doc.Snapshot, UpdatedAt: doc.UpdatedAt}, nil
}

func (s *MongoStore) ListGroups(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"_id": 1})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []string
	for cur.Next(ctx) {
		var doc struct {
			Name string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.Name)
	}
	return out, cur.Err()
}

func (s *MongoStore) DeleteGroup(ctx context.Context, name string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrGroupNotFound
	}
	return nil
}
