package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-consent/core"
)

const attributeCacheKeyPrefix = "go-consent::consent_attributes::v1"

// CachedAttributeStore layers a read-through cache over an attribute store.
// Reads of the full attribute set go through the cache; every write path
// invalidates the consent's cached entry before the next read repopulates it.
type CachedAttributeStore struct {
	base  core.AttributeStore
	cache repositorycache.CacheService
}

func NewCachedAttributeStore(
	base core.AttributeStore,
	cacheService repositorycache.CacheService,
) (*CachedAttributeStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base attribute store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: attribute cache service is required")
	}
	return &CachedAttributeStore{base: base, cache: cacheService}, nil
}

// AttributeCacheKey returns the deterministic cache key contract for
// attribute reads: go-consent::consent_attributes::v1::<consent_id>
// with the consent ID URL-path escaped.
func AttributeCacheKey(consentID string) (string, error) {
	consentID = strings.TrimSpace(consentID)
	if consentID == "" {
		return "", fmt.Errorf("sqlstore: consent id is required")
	}
	return strings.Join([]string{attributeCacheKeyPrefix, url.PathEscape(consentID)}, "::"), nil
}

func (s *CachedAttributeStore) Store(ctx context.Context, consentID string, attributes map[string]string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.base.Store(ctx, consentID, attributes); err != nil {
		return err
	}
	return s.invalidate(ctx, consentID)
}

func (s *CachedAttributeStore) Get(ctx context.Context, consentID string) (map[string]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	cacheKey, err := AttributeCacheKey(consentID)
	if err != nil {
		return nil, err
	}
	attributes, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (map[string]string, error) {
		fetched, fetchErr := s.base.Get(ctx, consentID)
		if fetchErr != nil {
			return nil, fetchErr
		}
		return copyStringMap(fetched), nil
	})
	if err != nil {
		return nil, err
	}
	return copyStringMap(attributes), nil
}

func (s *CachedAttributeStore) GetByKeys(ctx context.Context, consentID string, keys []string) (map[string]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	all, err := s.Get(ctx, consentID)
	if err != nil {
		return nil, err
	}
	selected := make(map[string]string, len(keys))
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if value, ok := all[key]; ok {
			selected[key] = value
		}
	}
	return selected, nil
}

func (s *CachedAttributeStore) Update(ctx context.Context, consentID string, attributes map[string]string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.base.Update(ctx, consentID, attributes); err != nil {
		return err
	}
	return s.invalidate(ctx, consentID)
}

func (s *CachedAttributeStore) Delete(ctx context.Context, consentID string, keys []string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.base.Delete(ctx, consentID, keys); err != nil {
		return err
	}
	return s.invalidate(ctx, consentID)
}

func (s *CachedAttributeStore) DeleteAll(ctx context.Context, consentID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.base.DeleteAll(ctx, consentID); err != nil {
		return err
	}
	return s.invalidate(ctx, consentID)
}

func (s *CachedAttributeStore) FindConsentIDsByName(ctx context.Context, name string) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.base.FindConsentIDsByName(ctx, name)
}

func (s *CachedAttributeStore) FindConsentIDsByNameAndValue(ctx context.Context, name string, value string) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.base.FindConsentIDsByNameAndValue(ctx, name, value)
}

func (s *CachedAttributeStore) ready() error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached attribute store is not configured")
	}
	return nil
}

func (s *CachedAttributeStore) invalidate(ctx context.Context, consentID string) error {
	cacheKey, err := AttributeCacheKey(consentID)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

func copyStringMap(input map[string]string) map[string]string {
	if input == nil {
		return nil
	}
	cloned := make(map[string]string, len(input))
	for key, value := range input {
		cloned[key] = value
	}
	return cloned
}

var _ core.AttributeStore = (*CachedAttributeStore)(nil)
