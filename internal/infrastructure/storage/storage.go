package storage

import (
	"fmt"
	"io"
)

// Backend is a flat key-value store
type Backend interface {
	// Get returns the value and whether the key exists
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
	io.Closer
}

// Driver names accepted by Open
const (
	DriverMemory = "memory"
	DriverBadger = "badger"
)

// Open creates the backend named by driver
func Open(driver, path string) (Backend, error) {
	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverBadger, "":
		return OpenBadger(path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

// Namespaced prefixes every key with a scope
type Namespaced struct {
	backend Backend
	prefix  string
}

// Namespace scopes backend to keys under scope
func Namespace(backend Backend, scope string) *Namespaced {
	return &Namespaced{backend: backend, prefix: scope + "/"}
}

func (n *Namespaced) Get(key string) ([]byte, bool, error) {
	return n.backend.Get(n.prefix + key)
}

func (n *Namespaced) Set(key string, value []byte) error {
	return n.backend.Set(n.prefix+key, value)
}

func (n *Namespaced) Delete(key string) error {
	return n.backend.Delete(n.prefix + key)
}
