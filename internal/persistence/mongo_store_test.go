package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/petrijr/proctree/internal/testutil"
)

type MongoStoreTestSuite struct {
	suite.Suite
	client *mongo.Client
	store  *MongoStore
	events *MongoEventStore
}

func TestMongoStoreSuite(t *testing.T) {
	uri := testutil.GetMongoURI(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("mongo.Connect failed: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	suite.Run(t, &MongoStoreTestSuite{
		client: client,
		store:  NewMongoStore(client, "proctree_test", "process_groups"),
		events: NewMongoEventStore(client, "proctree_test", "process_events"),
	})
}

func (s *MongoStoreTestSuite) SetupTest() {
	_, err := s.store.coll.DeleteMany(context.Background(), bson.M{})
	s.Require().NoError(err)
	_, err = s.events.coll.DeleteMany(context.Background(), bson.M{})
	s.Require().NoError(err)
}

func (s *MongoStoreTestSuite) TestProjectStoreContract() {
	exerciseProjectStore(s.T(), s.store)
}

func (s *MongoStoreTestSuite) TestGetMissing() {
	_, err := s.store.GetGroup(context.Background(), "missing")
	s.ErrorIs(err, ErrGroupNotFound)
}

func (s *MongoStoreTestSuite) TestEventStoreContract() {
	exerciseEventStore(s.T(), s.events)
}
