// Package docstoretest tiene la batería de pruebas común a todos los backends.
package docstoretest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-feeding/internal/adapters/storage/docstore"
)

// Run ejecuta la batería sobre backends nuevos creados por newBackend.
func Run(t *testing.T, newBackend func(t *testing.T) docstore.Backend) {
	t.Run("insert and get", func(t *testing.T) { testInsertGet(t, newBackend(t)) })
	t.Run("optimistic update", func(t *testing.T) { testOptimisticUpdate(t, newBackend(t)) })
	t.Run("lookup uniqueness", func(t *testing.T) { testLookup(t, newBackend(t)) })
	t.Run("list filters and order", func(t *testing.T) { testList(t, newBackend(t)) })
	t.Run("delete and count", func(t *testing.T) { testDeleteCount(t, newBackend(t)) })
	t.Run("concurrent updates", func(t *testing.T) { testConcurrentUpdates(t, newBackend(t)) })
}

func testInsertGet(t *testing.T, b docstore.Backend) {
	ctx := context.Background()

	saved, err := b.Put(ctx, docstore.Document{Kind: "pet", ID: "p1", OwnerID: "u1", Body: []byte(`{"name":"Milo"}`)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.Version)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := b.Get(ctx, "pet", "p1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.OwnerID)
	assert.JSONEq(t, `{"name":"Milo"}`, string(got.Body))

	_, err = b.Put(ctx, docstore.Document{Kind: "pet", ID: "p1", Body: []byte(`{}`)})
	assert.ErrorIs(t, err, docstore.ErrDuplicate)

	_, err = b.Get(ctx, "pet", "missing")
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	// mismo id en otro kind es otro documento
	_, err = b.Put(ctx, docstore.Document{Kind: "user", ID: "p1", Body: []byte(`{}`)})
	assert.NoError(t, err)
}

func testOptimisticUpdate(t *testing.T, b docstore.Backend) {
	ctx := context.Background()

	_, err := b.Put(ctx, docstore.Document{Kind: "pet", ID: "p1", Body: []byte(`{"v":1}`)})
	require.NoError(t, err)

	upd, err := b.Put(ctx, docstore.Document{Kind: "pet", ID: "p1", Version: 1, Body: []byte(`{"v":2}`)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), upd.Version)

	_, err = b.Put(ctx, docstore.Document{Kind: "pet", ID: "p1", Version: 1, Body: []byte(`{"v":3}`)})
	assert.ErrorIs(t, err, docstore.ErrConflict)

	got, err := b.Get(ctx, "pet", "p1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(got.Body))
	assert.Equal(t, int64(2), got.Version)

	_, err = b.Put(ctx, docstore.Document{Kind: "pet", ID: "nope", Version: 4, Body: []byte(`{}`)})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func testLookup(t *testing.T, b docstore.Backend) {
	ctx := context.Background()

	_, err := b.Put(ctx, docstore.Document{Kind: "user", ID: "u1", Lookup: "a@x.com", Body: []byte(`{}`)})
	require.NoError(t, err)

	_, err = b.Put(ctx, docstore.Document{Kind: "user", ID: "u2", Lookup: "a@x.com", Body: []byte(`{}`)})
	assert.ErrorIs(t, err, docstore.ErrDuplicate)

	got, err := b.FindByLookup(ctx, "user", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	// cambiar la clave libera la anterior
	_, err = b.Put(ctx, docstore.Document{Kind: "user", ID: "u1", Version: 1, Lookup: "b@x.com", Body: []byte(`{}`)})
	require.NoError(t, err)
	_, err = b.FindByLookup(ctx, "user", "a@x.com")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
	_, err = b.Put(ctx, docstore.Document{Kind: "user", ID: "u2", Lookup: "a@x.com", Body: []byte(`{}`)})
	assert.NoError(t, err)

	// documentos sin clave no chocan entre sí
	_, err = b.Put(ctx, docstore.Document{Kind: "user", ID: "u3", Body: []byte(`{}`)})
	require.NoError(t, err)
	_, err = b.Put(ctx, docstore.Document{Kind: "user", ID: "u4", Body: []byte(`{}`)})
	assert.NoError(t, err)
}

func testList(t *testing.T, b docstore.Backend) {
	ctx := context.Background()

	for i, owner := range []string{"u1", "u2", "u1", "u1"} {
		_, err := b.Put(ctx, docstore.Document{
			Kind:     "record",
			ID:       fmt.Sprintf("r%d", i),
			OwnerID:  owner,
			ParentID: fmt.Sprintf("pet%d", i%2),
			Body:     []byte(`{}`),
		})
		require.NoError(t, err)
	}

	all, err := b.List(ctx, "record", docstore.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"r0", "r1", "r2", "r3"}, ids(all))

	mine, err := b.List(ctx, "record", docstore.Filter{OwnerID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r0", "r2", "r3"}, ids(mine))

	byParent, err := b.List(ctx, "record", docstore.Filter{OwnerID: "u1", ParentID: "pet1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r3"}, ids(byParent))

	limited, err := b.List(ctx, "record", docstore.Filter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"r0", "r1"}, ids(limited))

	// una actualización no cambia el orden
	_, err = b.Put(ctx, docstore.Document{Kind: "record", ID: "r0", Version: 1, OwnerID: "u1", ParentID: "pet0", Body: []byte(`{"x":1}`)})
	require.NoError(t, err)
	all, err = b.List(ctx, "record", docstore.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"r0", "r1", "r2", "r3"}, ids(all))

	empty, err := b.List(ctx, "nothing", docstore.Filter{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testDeleteCount(t *testing.T, b docstore.Backend) {
	ctx := context.Background()

	_, err := b.Put(ctx, docstore.Document{Kind: "user", ID: "u1", Lookup: "a@x.com", Body: []byte(`{}`)})
	require.NoError(t, err)
	_, err = b.Put(ctx, docstore.Document{Kind: "user", ID: "u2", Body: []byte(`{}`)})
	require.NoError(t, err)

	n, err := b.Count(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, b.Delete(ctx, "user", "u1"))
	assert.ErrorIs(t, b.Delete(ctx, "user", "u1"), docstore.ErrNotFound)

	_, err = b.FindByLookup(ctx, "user", "a@x.com")
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	n, err = b.Count(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// testConcurrentUpdates: de N escritores con la misma versión leída, solo uno gana.
func testConcurrentUpdates(t *testing.T, b docstore.Backend) {
	ctx := context.Background()
	_, err := b.Put(ctx, docstore.Document{Kind: "pet", ID: "p1", Body: []byte(`{}`)})
	require.NoError(t, err)

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := b.Put(ctx, docstore.Document{Kind: "pet", ID: "p1", Version: 1, Body: []byte(fmt.Sprintf(`{"w":%d}`, i))})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case assert.ErrorIs(t, err, docstore.ErrConflict):
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, writers-1, conflicts)
}

func ids(docs []docstore.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}
