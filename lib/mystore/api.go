package mystore

import (
	"context"
	"fmt"
)

type Backend string

const (
	BackendMemory    Backend = "memory"
	BackendDatastore Backend = "datastore"
)

type Store[T any] interface {
	Put(c context.Context, uid string, value T) error
	Get(c context.Context, uid string) (T, bool, error)
	Delete(c context.Context, uid string) error
}

// New returns a store for entities of the given kind. The datastore backend needs a project id.
func New[T any](c context.Context, backend Backend, projectID string, kind string) (Store[T], func(), error) {
	switch backend {
	case BackendDatastore:
		if projectID == "" {
			return nil, nil, fmt.Errorf("datastore backend for %s requires a project id", kind)
		}
		return NewGcloudStore[T](c, projectID, kind)
	case BackendMemory, "":
		return NewInMemoryStore[T](c)
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
