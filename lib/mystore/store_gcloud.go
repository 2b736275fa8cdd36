package mystore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/datastore"
)

type gcloudStore[T any] struct {
	client *datastore.Client
	kind   string
}

func NewGcloudStore[T any](c context.Context, projectID string, kind string) (*gcloudStore[T], func(), error) {
	client, err := datastore.NewClient(c, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating datastore-client: %s", err)
	}
	return &gcloudStore[T]{
			client: client,
			kind:   kind,
		}, func() {
			client.Close()
		}, nil
}

func (s *gcloudStore[T]) key(uid string) *datastore.Key {
	return datastore.NameKey(s.kind, uid, nil)
}

func (s *gcloudStore[T]) Put(c context.Context, uid string, value T) error {
	_, err := s.client.Put(c, s.key(uid), &value)
	if err != nil {
		return fmt.Errorf("error storing entity %s with uid %s: %s", s.kind, uid, err)
	}
	return nil
}

func (s *gcloudStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	var result T
	err := s.client.Get(c, s.key(uid), &result)
	if err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return result, false, nil
		}
		return result, false, fmt.Errorf("error fetching entity %s with uid %s: %s", s.kind, uid, err)
	}
	return result, true, nil
}

func (s *gcloudStore[T]) Delete(c context.Context, uid string) error {
	err := s.client.Delete(c, s.key(uid))
	if err != nil && !errors.Is(err, datastore.ErrNoSuchEntity) {
		return fmt.Errorf("error deleting entity %s with uid %s: %s", s.kind, uid, err)
	}
	return nil
}
