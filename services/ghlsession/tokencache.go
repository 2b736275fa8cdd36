package ghlsession

import (
	"context"
	"fmt"

	"github.com/Haazy99/AgencyTest2/lib/mystore"
	"github.com/Haazy99/AgencyTest2/lib/mytime"
	"github.com/Haazy99/AgencyTest2/lib/tokencodec"
)

// CachedBundle is the stored form of a token bundle, also used as datastore kind.
type CachedBundle struct {
	AccessToken     string `datastore:",noindex"`
	RefreshToken    string `datastore:",noindex"`
	TokenType       string `datastore:",noindex"`
	ExpiresIn       int64  `datastore:",noindex"`
	ExpiryTimestamp int64
}

//go:generate mockgen -source=tokencache.go -package ghlsession -destination tokencache_mock.go TokenCache
type TokenCache interface {
	Get(c context.Context, ref string) (tokencodec.Bundle, bool, error)
	Set(c context.Context, ref string, bundle tokencodec.Bundle) error
	Delete(c context.Context, ref string) error
}

type tokenCache struct {
	store mystore.Store[CachedBundle]
	nower mytime.Nower
}

func NewTokenCache(store mystore.Store[CachedBundle], nower mytime.Nower) *tokenCache {
	return &tokenCache{
		store: store,
		nower: nower,
	}
}

// Get treats an expired entry as absent and removes it.
func (tc *tokenCache) Get(c context.Context, ref string) (tokencodec.Bundle, bool, error) {
	cached, found, err := tc.store.Get(c, ref)
	if err != nil {
		return tokencodec.Bundle{}, false, fmt.Errorf("error fetching cached tokens %s: %w", ref, err)
	}
	if !found {
		return tokencodec.Bundle{}, false, nil
	}
	if cached.ExpiryTimestamp != 0 && tc.nower.Now().Unix() >= cached.ExpiryTimestamp {
		err = tc.store.Delete(c, ref)
		if err != nil {
			return tokencodec.Bundle{}, false, fmt.Errorf("error deleting expired tokens %s: %w", ref, err)
		}
		return tokencodec.Bundle{}, false, nil
	}
	return tokencodec.Bundle{
		AccessToken:     cached.AccessToken,
		RefreshToken:    cached.RefreshToken,
		TokenType:       cached.TokenType,
		ExpiresIn:       cached.ExpiresIn,
		ExpiryTimestamp: cached.ExpiryTimestamp,
	}, true, nil
}

func (tc *tokenCache) Set(c context.Context, ref string, bundle tokencodec.Bundle) error {
	err := tc.store.Put(c, ref, CachedBundle{
		AccessToken:     bundle.AccessToken,
		RefreshToken:    bundle.RefreshToken,
		TokenType:       bundle.TokenType,
		ExpiresIn:       bundle.ExpiresIn,
		ExpiryTimestamp: bundle.ExpiryTimestamp,
	})
	if err != nil {
		return fmt.Errorf("error caching tokens %s: %w", ref, err)
	}
	return nil
}

func (tc *tokenCache) Delete(c context.Context, ref string) error {
	err := tc.store.Delete(c, ref)
	if err != nil {
		return fmt.Errorf("error deleting cached tokens %s: %w", ref, err)
	}
	return nil
}
