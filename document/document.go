package document

import (
	"context"
	"firedoc/datastore"
	"firedoc/docutil"
	"firedoc/log"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrMissingArgument = errors.New("required argument missing")

// Document binds the CRUD operations to one stored document. Errors of the
// store and of the helpers are handed back to the caller as they are.
type Document struct {
	db  datastore.Resolver
	ref datastore.Reference
}

// New fails with ErrMissingArgument when either the database handle or the
// document reference is nil. The reference must exist beforehand, Document
// never creates nor closes it.
func New(db datastore.Resolver, ref datastore.Reference) (*Document, error) {
	if isNil(db) {
		return nil, errors.Wrap(ErrMissingArgument, "database handle")
	}
	if isNil(ref) {
		return nil, errors.Wrap(ErrMissingArgument, "document reference")
	}
	return &Document{db: db, ref: ref}, nil
}

func (d *Document) DB() datastore.Resolver {
	return d.db
}

func (d *Document) Ref() datastore.Reference {
	return d.ref
}

// Create writes attributes as the whole content of the document and returns
// the stored document. With opts.Deserialize set, the named fields of
// attributes are resolved into references first, mutating attributes.
func (d *Document) Create(ctx context.Context, attributes map[string]interface{}, opts docutil.Options) (docutil.Document, error) {
	if len(opts.Deserialize) > 0 {
		if err := docutil.Deserialize(attributes, opts.Deserialize, d.db); err != nil {
			return nil, err
		}
	}
	// the reference gives the id, nothing to generate here
	if err := d.ref.Set(ctx, attributes); err != nil {
		d.logger().Debugf("create failed: %s", err)
		return nil, err
	}
	d.logger().Debug("document created")
	return docutil.GetDocument(ctx, d.ref, opts)
}

// Find returns the stored document, nil if it does not exist
func (d *Document) Find(ctx context.Context, opts docutil.Options) (docutil.Document, error) {
	return docutil.GetDocument(ctx, d.ref, opts)
}

// Update merges attributes into the stored document and returns the result.
// Deserialization works as for Create.
func (d *Document) Update(ctx context.Context, attributes map[string]interface{}, opts docutil.Options) (docutil.Document, error) {
	if len(opts.Deserialize) > 0 {
		if err := docutil.Deserialize(attributes, opts.Deserialize, d.db); err != nil {
			return nil, err
		}
	}
	if err := d.ref.Update(ctx, attributes); err != nil {
		d.logger().Debugf("update failed: %s", err)
		return nil, err
	}
	d.logger().Debug("document updated")
	return docutil.GetDocument(ctx, d.ref, opts)
}

// Delete removes the document and reports whether the reference still sees it
// existing afterwards.
func (d *Document) Delete(ctx context.Context) (bool, error) {
	if err := d.ref.Delete(ctx); err != nil {
		d.logger().Debugf("delete failed: %s", err)
		return false, err
	}
	d.logger().Debug("document deleted")
	return d.ref.Exists(), nil
}

func (d *Document) logger() *logrus.Entry {
	return log.Logger().WithField("document", d.ref.Path())
}
