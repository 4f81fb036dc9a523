package datastore

import (
	"context"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"sync/atomic"
)

// DocRef points at a single document of a mongo collection, the document
// being keyed by its id in the _id field
type DocRef struct {
	coll   *mongo.Collection
	id     string
	exists atomic.Bool
}

var _ Reference = (*DocRef)(nil)

func (r *DocRef) ID() string {
	return r.id
}

func (r *DocRef) Path() string {
	return JoinPath(r.coll.Name(), r.id)
}

// Exists is the state last observed through this reference
func (r *DocRef) Exists() bool {
	return r.exists.Load()
}

func (r *DocRef) filter() bson.M {
	return bson.M{ObjectID: r.id}
}

// Set replaces the whole document, creating it if non-existent
func (r *DocRef) Set(ctx context.Context, attributes map[string]interface{}) error {
	_, err := r.coll.ReplaceOne(ctx, r.filter(), attributes, options.Replace().SetUpsert(true))
	if err != nil {
		return err
	}
	r.exists.Store(true)
	return nil
}

// Update sets only the given fields, the document must already exist
func (r *DocRef) Update(ctx context.Context, attributes map[string]interface{}) error {
	res, err := r.coll.UpdateOne(ctx, r.filter(), bson.D{{Key: MongoSetOperator, Value: attributes}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		r.exists.Store(false)
		return errors.Wrapf(ErrNotFound, "update %s", r.Path())
	}
	r.exists.Store(true)
	return nil
}

// Delete removes the document. Deleting a missing document is not an error.
func (r *DocRef) Delete(ctx context.Context) error {
	if _, err := r.coll.DeleteOne(ctx, r.filter()); err != nil {
		return err
	}
	r.exists.Store(false)
	return nil
}

func (r *DocRef) Get(ctx context.Context) (*Snapshot, error) {
	snapshot := &Snapshot{ID: r.id, Path: r.Path()}
	var data bson.M
	err := r.coll.FindOne(ctx, r.filter()).Decode(&data)
	if err == mongo.ErrNoDocuments {
		r.exists.Store(false)
		return snapshot, nil
	}
	if err != nil {
		return nil, err
	}
	delete(data, ObjectID)
	r.exists.Store(true)
	snapshot.Exists = true
	snapshot.Data = data
	return snapshot, nil
}

// MarshalBSONValue stores the reference as a DBRef like sub-document
func (r *DocRef) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(bson.D{
		{Key: RefField, Value: r.coll.Name()},
		{Key: RefIDField, Value: r.id},
	})
}
