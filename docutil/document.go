package docutil

import (
	"context"
	"firedoc/datastore"
	"fmt"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is the materialized, plain data representation of a stored document
type Document map[string]interface{}

// GetDocument reads the referenced document and shapes it per opts. A missing
// document gives a nil Document and no error.
func GetDocument(ctx context.Context, ref datastore.DocumentGetter, opts Options) (Document, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	snapshot, err := ref.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !snapshot.Exists {
		return nil, nil
	}
	doc := make(Document, len(snapshot.Data)+1)
	for key, value := range snapshot.Data {
		if opts.selected(key) {
			doc[key] = materialize(value, opts.RawRefs)
		}
	}
	if !opts.OmitID {
		doc[opts.IDField] = snapshot.ID
	}
	return doc, nil
}

// materialize converts bson containers to plain maps and slices, renders references as paths
// and copies any other container so the result never aliases the snapshot
func materialize(value interface{}, rawRefs bool) interface{} {
	switch val := value.(type) {
	case datastore.Reference:
		if rawRefs {
			return val
		}
		return val.Path()
	case primitive.M:
		return materializeMap(val, rawRefs)
	case map[string]interface{}:
		return materializeMap(val, rawRefs)
	case primitive.D:
		m := make(map[string]interface{}, len(val))
		for _, elem := range val {
			m[elem.Key] = elem.Value
		}
		return materializeMap(m, rawRefs)
	case primitive.A:
		return materializeSlice(val, rawRefs)
	case []interface{}:
		return materializeSlice(val, rawRefs)
	default:
		return datastore.CopyValue(value)
	}
}

func materializeMap(m map[string]interface{}, rawRefs bool) interface{} {
	if path, ok := storedRefPath(m); ok && !rawRefs {
		return path
	}
	out := make(map[string]interface{}, len(m))
	for key, value := range m {
		out[key] = materialize(value, rawRefs)
	}
	return out
}

func materializeSlice(s []interface{}, rawRefs bool) []interface{} {
	out := make([]interface{}, len(s))
	for i, value := range s {
		out[i] = materialize(value, rawRefs)
	}
	return out
}

// storedRefPath recognizes a reference persisted as {$ref: collection, $id: id}
func storedRefPath(m map[string]interface{}) (string, bool) {
	collection, ok := m[datastore.RefField].(string)
	if !ok {
		return "", false
	}
	id, ok := m[datastore.RefIDField]
	if !ok {
		return "", false
	}
	return datastore.JoinPath(collection, fmt.Sprint(id)), true
}
