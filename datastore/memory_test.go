package datastore

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestMemoryRefSetAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	ref := store.Collection("users").Doc("1")
	assert.False(t, ref.Exists(), "fresh reference must not exist")

	snapshot, err := ref.Get(ctx)
	require.NoError(t, err)
	assert.False(t, snapshot.Exists)
	assert.Nil(t, snapshot.Data)

	attrs := map[string]interface{}{"name": "a", "tags": []interface{}{"x"}}
	require.NoError(t, ref.Set(ctx, attrs))
	assert.True(t, ref.Exists())

	// later mutation of the caller's map must not leak into the store
	attrs["name"] = "changed"

	snapshot, err = ref.Get(ctx)
	require.NoError(t, err)
	assert.True(t, snapshot.Exists)
	assert.Equal(t, "1", snapshot.ID)
	assert.Equal(t, "users/1", snapshot.Path)
	assert.Equal(t, map[string]interface{}{"name": "a", "tags": []interface{}{"x"}}, snapshot.Data)

	require.NoError(t, ref.Set(ctx, map[string]interface{}{"age": 3}))
	snapshot, err = ref.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"age": 3}, snapshot.Data, "set must replace the whole document")
}

func TestMemoryRefCopiesTypedContainers(t *testing.T) {
	ctx := context.Background()
	ref := NewMemoryStore().Collection("users").Doc("1")
	author := NewMemoryStore().Collection("authors").Doc("ada")
	tags := []string{"x"}
	labels := map[string]string{"k": "v"}
	nested := map[string]interface{}{"ids": []int{1}}

	require.NoError(t, ref.Set(ctx, map[string]interface{}{
		"tags":    tags,
		"labels":  labels,
		"nested":  nested,
		"authors": []Reference{author},
	}))
	tags[0] = "changed"
	labels["k"] = "changed"
	nested["ids"].([]int)[0] = 9

	snapshot, err := ref.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, snapshot.Data["tags"])
	assert.Equal(t, map[string]string{"k": "v"}, snapshot.Data["labels"])
	assert.Equal(t, map[string]interface{}{"ids": []int{1}}, snapshot.Data["nested"])
	assert.Same(t, author, snapshot.Data["authors"].([]Reference)[0], "references must stay shared")

	// mutating a read must not reach the store either
	snapshot.Data["tags"].([]string)[0] = "read"
	snapshot.Data["labels"].(map[string]string)["k"] = "read"
	snapshot, err = ref.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, snapshot.Data["tags"])
	assert.Equal(t, map[string]string{"k": "v"}, snapshot.Data["labels"])
}

func TestCopyValue(t *testing.T) {
	assert.Nil(t, CopyValue(nil))
	assert.Equal(t, 3, CopyValue(3))
	assert.Nil(t, CopyValue([]string(nil)))
	in := map[string][]interface{}{"a": {nil, "x"}}
	out := CopyValue(in).(map[string][]interface{})
	out["a"][1] = "y"
	assert.Equal(t, "x", in["a"][1])
	assert.Nil(t, out["a"][0])
}

func TestMemoryRefUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	ref := store.Collection("users").Doc("1")

	err := ref.Update(ctx, map[string]interface{}{"name": "b"})
	assert.True(t, errors.Is(err, ErrNotFound), "update of a missing document should fail, got %v", err)
	assert.Equal(t, 0, store.Len())

	require.NoError(t, ref.Set(ctx, map[string]interface{}{"name": "a", "age": 3}))
	require.NoError(t, ref.Update(ctx, map[string]interface{}{"name": "b"}))

	snapshot, err := ref.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"name": "b", "age": 3}, snapshot.Data)
}

func TestMemoryRefDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	ref, err := store.Doc("users/1")
	require.NoError(t, err)

	require.NoError(t, ref.Set(ctx, map[string]interface{}{"name": "a"}))
	require.NoError(t, ref.Delete(ctx))
	assert.False(t, ref.Exists())
	assert.Equal(t, 0, store.Len())

	assert.NoError(t, ref.Delete(ctx), "deleting a missing document is not an error")
}

func TestMemoryStoreSharedDocuments(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	writer := store.Collection("users").Doc("1")
	require.NoError(t, writer.Set(ctx, map[string]interface{}{"name": "a"}))

	reader, err := store.Doc("users/1")
	require.NoError(t, err)
	assert.False(t, reader.Exists(), "exists is only what this reference observed")
	snapshot, err := reader.Get(ctx)
	require.NoError(t, err)
	assert.True(t, snapshot.Exists)
	assert.True(t, reader.Exists())

	_, err = store.Doc("users")
	assert.True(t, errors.Is(err, ErrInvalidPath))
}

func TestMemoryNewDoc(t *testing.T) {
	coll := NewMemoryStore().Collection("users")
	ref1, ref2 := coll.NewDoc(), coll.NewDoc()
	assert.NotEmpty(t, ref1.ID())
	assert.NotEqual(t, ref1.ID(), ref2.ID(), "generated ids collide")
}

func TestMemoryRefCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ref := NewMemoryStore().Collection("users").Doc("1")
	assert.Equal(t, context.Canceled, ref.Set(ctx, map[string]interface{}{}))
	_, err := ref.Get(ctx)
	assert.Equal(t, context.Canceled, err)
}
