package datastore

import (
	"context"
	"firedoc/config"
	"firedoc/log"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// mongodb query operators
const (
	MongoSetOperator = "$set"
)

// common fields/attributes of documents in various collections
const (
	ObjectID = "_id" // document level Primary Key, holds the document id of the path
	// stored references follow the DBRef convention
	// see https://www.mongodb.com/docs/manual/reference/database-references/#dbrefs
	RefField   = "$ref"
	RefIDField = "$id"
)

// Database is the handle of the target mongo database
type Database struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ Resolver = (*Database)(nil)

// Connect initializes a new client, verifies it with a ping and selects the configured database
func Connect(ctx context.Context, cfg config.Mongo) (*Database, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	opts := options.Client().ApplyURI(cfg.URI())
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "create mongo connection on %s failed", cfg.Redacted())
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrapf(err, "ping mongo on %s failed", cfg.Redacted())
	}
	log.Logger().Infof("mongo successfully connected on %s", cfg.Redacted())
	return &Database{client: client, db: client.Database(cfg.Database)}, nil
}

// Collection returns the handle of a (possibly nested) collection
func (d *Database) Collection(name string) *Collection {
	return &Collection{coll: d.db.Collection(name)}
}

// Doc returns a reference for a document path like users/42
func (d *Database) Doc(path string) (Reference, error) {
	collection, id, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	return d.Collection(collection).Doc(id), nil
}

// Close disconnects the underlying client
func (d *Database) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

type Collection struct {
	coll *mongo.Collection
}

func (c *Collection) Doc(id string) *DocRef {
	return &DocRef{coll: c.coll, id: id}
}

// NewDoc returns a reference with a generated id
func (c *Collection) NewDoc() *DocRef {
	return c.Doc(NewID())
}
