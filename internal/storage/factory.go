package storage

import (
	"errors"
	"fmt"
	"strings"
)

const (
	KindMemory = "memory"
	KindSQLite = "sqlite"
	KindBolt   = "bbolt"
)

var ErrUnsupportedBackend = errors.New("unsupported store backend")

// DefaultStoreKind is the backend used when none is configured.
func DefaultStoreKind() string {
	return KindMemory
}

// StoreKinds lists the backend names NewStore accepts.
func StoreKinds() []string {
	return []string{KindMemory, KindSQLite, KindBolt}
}

// NewStore builds an uninitialized store; path is ignored by the memory backend.
func NewStore(kind, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindMemory:
		return NewMemoryStore(), nil
	case KindSQLite:
		return newSQLiteStore(path)
	case KindBolt, "bolt":
		return NewBoltStore(path), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, kind)
	}
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
