package datastore

import (
	"context"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"strings"
)

var (
	ErrInvalidPath = errors.New("invalid document path")
	ErrNotFound    = errors.New("no document found")
)

// DocumentSetter overwrites the whole content of a document, creating it when missing
type DocumentSetter interface {
	Set(ctx context.Context, attributes map[string]interface{}) error
}

// DocumentUpdater changes only the given fields of an already persisted document
type DocumentUpdater interface {
	Update(ctx context.Context, attributes map[string]interface{}) error
}

// DocumentDeleter removes the document from the persistent store
type DocumentDeleter interface {
	Delete(ctx context.Context) error
}

// DocumentGetter fetches the current content of the document from the persistent store
type DocumentGetter interface {
	ID() string
	Get(ctx context.Context) (*Snapshot, error)
}

// Reference identifies the location of one document and operates on it.
// Exists reports the state last observed by the reference, it does not query the store.
type Reference interface {
	DocumentSetter
	DocumentUpdater
	DocumentDeleter
	DocumentGetter
	Path() string
	Exists() bool
}

// Resolver hands out references for document paths
type Resolver interface {
	Doc(path string) (Reference, error)
}

// Snapshot is the content of a document read at a point in time
type Snapshot struct {
	ID     string
	Path   string
	Exists bool
	Data   map[string]interface{}
}

// ParsePath splits a document path of the form <collection>/<id>, where the
// collection part may itself be nested (users/1/posts/2).
func ParsePath(path string) (collection, id string, err error) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 2 || len(segments)%2 != 0 {
		return "", "", errors.Wrapf(ErrInvalidPath, "%q does not point to a document", path)
	}
	for _, segment := range segments {
		if segment == "" {
			return "", "", errors.Wrapf(ErrInvalidPath, "%q has an empty segment", path)
		}
	}
	last := len(segments) - 1
	return strings.Join(segments[:last], "/"), segments[last], nil
}

// JoinPath is the inverse of ParsePath
func JoinPath(collection, id string) string {
	return collection + "/" + id
}

// NewID generates an id for a new document
func NewID() string {
	return uuid.New().String()
}
