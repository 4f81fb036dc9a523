package datastore

import (
	"context"
	"github.com/pkg/errors"
	"reflect"
	"sync"
	"sync/atomic"
)

// MemoryStore keeps documents in process, keyed by their path. Useful for
// tests and for running without a database.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]interface{}
}

var _ Resolver = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]interface{})}
}

func (s *MemoryStore) Doc(path string) (Reference, error) {
	collection, id, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	return s.Collection(collection).Doc(id), nil
}

func (s *MemoryStore) Collection(name string) *MemoryCollection {
	return &MemoryCollection{store: s, name: name}
}

// Len is the number of stored documents
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

type MemoryCollection struct {
	store *MemoryStore
	name  string
}

func (c *MemoryCollection) Doc(id string) *MemoryRef {
	return &MemoryRef{store: c.store, collection: c.name, id: id}
}

// NewDoc returns a reference with a generated id
func (c *MemoryCollection) NewDoc() *MemoryRef {
	return c.Doc(NewID())
}

// MemoryRef is the in-process counterpart of DocRef
type MemoryRef struct {
	store      *MemoryStore
	collection string
	id         string
	exists     atomic.Bool
}

var _ Reference = (*MemoryRef)(nil)

func (r *MemoryRef) ID() string {
	return r.id
}

func (r *MemoryRef) Path() string {
	return JoinPath(r.collection, r.id)
}

func (r *MemoryRef) Exists() bool {
	return r.exists.Load()
}

func (r *MemoryRef) Set(ctx context.Context, attributes map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.docs[r.Path()] = copyMap(attributes)
	r.exists.Store(true)
	return nil
}

// Update replaces the given top level fields and keeps the others
func (r *MemoryRef) Update(ctx context.Context, attributes map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	doc, ok := r.store.docs[r.Path()]
	if !ok {
		r.exists.Store(false)
		return errors.Wrapf(ErrNotFound, "update %s", r.Path())
	}
	for key, value := range copyMap(attributes) {
		doc[key] = value
	}
	r.exists.Store(true)
	return nil
}

func (r *MemoryRef) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.docs, r.Path())
	r.exists.Store(false)
	return nil
}

func (r *MemoryRef) Get(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	snapshot := &Snapshot{ID: r.id, Path: r.Path()}
	doc, ok := r.store.docs[r.Path()]
	r.exists.Store(ok)
	if ok {
		snapshot.Exists = true
		snapshot.Data = copyMap(doc)
	}
	return snapshot, nil
}

// copyMap deep copies nested maps and slices, references are shared
func copyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{}, len(m))
	for key, value := range m {
		out[key] = CopyValue(value)
	}
	return out
}

// CopyValue deep copies maps and slices of any type. References and other
// pointers are shared.
func CopyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case Reference:
		return val
	case map[string]interface{}:
		return copyMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = CopyValue(item)
		}
		return out
	}
	return copyReflect(reflect.ValueOf(v)).Interface()
}

func copyReflect(rv reflect.Value) reflect.Value {
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), copyElem(iter.Value()))
		}
		return out
	case reflect.Slice:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(copyElem(rv.Index(i)))
		}
		return out
	default:
		return rv
	}
}

// copyElem copies a map or slice element, keeping interface typed slots as they were
func copyElem(elem reflect.Value) reflect.Value {
	if elem.Kind() != reflect.Interface {
		return copyReflect(elem)
	}
	if elem.IsNil() {
		return elem
	}
	return reflect.ValueOf(CopyValue(elem.Interface()))
}
