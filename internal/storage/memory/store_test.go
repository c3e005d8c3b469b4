package memory

import (
	"testing"

	"sindbad/internal/storage"
	"sindbad/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Repository {
		return New()
	})
}
