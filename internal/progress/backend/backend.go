// Package backend provides the durable key-value stores the progress store
// writes through. Every driver applies a batch of operations atomically and
// guarantees read-your-writes within the process.
package backend

import (
	"errors"
	"fmt"
	"swipetriage/internal/structures"
)

var (
	ErrClosed        = errors.New("backend closed")
	ErrUnknownDriver = errors.New("unknown persistence driver")
)

type OpKind int

const (
	OpSet OpKind = iota
	OpRemove
)

type Op struct {
	Kind  OpKind
	Key   string
	Value []byte
}

func Set(key string, value []byte) Op {
	return Op{Kind: OpSet, Key: key, Value: value}
}

func Remove(key string) Op {
	return Op{Kind: OpRemove, Key: key}
}

type Backend interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
	// Apply writes all ops or none of them.
	Apply(ops ...Op) error
	Close() error
}

// New opens the backend selected by persistence.driver.
func New(conf *structures.Config) (Backend, error) {
	switch conf.Persistence.Driver {
	case "bolt", "":
		return NewBoltBackend(conf.Persistence.FilePath)
	case "sqlite":
		return NewSQLiteBackend(conf.Persistence.FilePath)
	case "file":
		compressor, err := NewZstdCompressor()
		if err != nil {
			return nil, err
		}
		return NewFileBackend(conf.Persistence.FilePath, compressor)
	case "memory":
		return NewMemoryBackend(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, conf.Persistence.Driver)
}
