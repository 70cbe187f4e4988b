package memory

import (
	"testing"

	"smart-feeding/internal/adapters/storage/docstore"
	"smart-feeding/internal/adapters/storage/docstore/docstoretest"
)

func TestStore(t *testing.T) {
	docstoretest.Run(t, func(t *testing.T) docstore.Backend {
		return NewStore()
	})
}
