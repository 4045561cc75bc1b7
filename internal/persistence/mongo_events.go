package persistence

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/petrijr/proctree/pkg/api"
)

// MongoEventStore stores history events in a MongoDB collection. Documents
// are ordered by their ObjectID.
type MongoEventStore struct {
	coll *mongo.Collection
}

var _ EventStore = (*MongoEventStore)(nil)

// NewMongoEventStore creates a Mongo-backed event store.
// dbName defaults to "proctree" if empty, collName defaults to "process_events".
func NewMongoEventStore(client *mongo.Client, dbName, collName string) *MongoEventStore {
	if dbName == "" {
		dbName = "proctree"
	}
	if collName == "" {
		collName = "process_events"
	}
	return &MongoEventStore{coll: client.Database(dbName).Collection(collName)}
}

type mongoEventDoc struct {
	ID            primitive.ObjectID `bson:"_id"`
	ComponentUUID string             `bson:"component_uuid"`
	At            time.Time          `bson:"at"`
	Type          string             `bson:"type"`
	Component     string             `bson:"component,omitempty"`
	State         string             `bson:"state,omitempty"`
	Detail        string             `bson:"detail,omitempty"`
}

func (s *MongoEventStore) AppendEvent(ctx context.Context, ev api.Event) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.coll.InsertOne(ctx, mongoEventDoc{
		ID:            primitive.NewObjectID(),
		ComponentUUID: ev.ComponentUUID,
		At:            at.UTC(),
		Type:          string(ev.Type),
		Component:     ev.Component,
		State:         ev.State,
		Detail:        ev.Detail,
	})
	return err
}

func (s *MongoEventStore) ListEvents(ctx context.Context, filter EventFilter) ([]api.Event, error) {
	query := bson.M{}
	if filter.ComponentUUID != "" {
		query["component_uuid"] = filter.ComponentUUID
	}
	if filter.Type != "" {
		query["type"] = string(filter.Type)
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	cur, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []api.Event
	for cur.Next(ctx) {
		var doc mongoEventDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, api.Event{
			ComponentUUID: doc.ComponentUUID,
			At:            doc.At,
			Type:          api.EventType(doc.Type),
			Component:     doc.Component,
			State:         doc.State,
			Detail:        doc.Detail,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	// newest last
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
