package generation

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/danadoen/nusaai/internal/domain"
	"github.com/danadoen/nusaai/internal/infra"
	"github.com/danadoen/nusaai/internal/infra/metrics"
)

// Credential is a resolved provider key and the source it came from.
type Credential struct {
	Key    string
	Source string
}

// KeySource is one link of the resolution chain. An empty key with a nil
// error means the source has nothing for this caller.
type KeySource interface {
	Name() string
	Lookup(ctx context.Context, caller domain.Caller) (string, error)
}

// KeyResolver walks its sources in order and returns the first key found.
type KeyResolver struct {
	sources []KeySource
	metrics *metrics.Recorder
	logger  infra.Logger
}

func NewKeyResolver(rec *metrics.Recorder, logger infra.Logger, sources ...KeySource) *KeyResolver {
	return &KeyResolver{sources: sources, metrics: rec, logger: logger}
}

// Resolve returns domain.ErrNoCredential when no source has a key. A failing
// source is logged and skipped.
func (r *KeyResolver) Resolve(ctx context.Context, caller domain.Caller) (Credential, error) {
	for _, src := range r.sources {
		key, err := src.Lookup(ctx, caller)
		if err != nil {
			r.logger.Warn().Err(err).Str("source", src.Name()).Msg("key source lookup failed")
			continue
		}
		if key = strings.TrimSpace(key); key != "" {
			r.metrics.KeySource(src.Name())
			return Credential{Key: key, Source: src.Name()}, nil
		}
	}
	r.metrics.KeySource("none")
	return Credential{}, domain.ErrNoCredential
}

// PersonalKeyStore reads keys saved by users in their settings.
type PersonalKeyStore interface {
	PersonalKey(ctx context.Context, userID string) (string, error)
}

// PersonalKeySource yields the caller's own key. Guests have none.
type PersonalKeySource struct {
	store PersonalKeyStore
}

func NewPersonalKeySource(store PersonalKeyStore) *PersonalKeySource {
	return &PersonalKeySource{store: store}
}

func (s *PersonalKeySource) Name() string { return "personal" }

func (s *PersonalKeySource) Lookup(ctx context.Context, caller domain.Caller) (string, error) {
	if caller.IsAnonymous() {
		return "", nil
	}
	return s.store.PersonalKey(ctx, caller.UserID)
}

// MasterKeyStore reads the administrator configured key.
type MasterKeyStore interface {
	MasterKey(ctx context.Context) (string, error)
}

const masterCacheKey = "master"

// MasterKeySource yields the shared key, cached for ttl. Call Invalidate
// after the key is changed. A ttl <= 0 disables caching.
type MasterKeySource struct {
	store MasterKeyStore
	cache *cache.Cache
}

func NewMasterKeySource(store MasterKeyStore, ttl time.Duration) *MasterKeySource {
	src := &MasterKeySource{store: store}
	if ttl > 0 {
		src.cache = cache.New(ttl, 2*ttl)
	}
	return src
}

func (s *MasterKeySource) Name() string { return "master" }

func (s *MasterKeySource) Lookup(ctx context.Context, _ domain.Caller) (string, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(masterCacheKey); ok {
			return v.(string), nil
		}
	}
	key, err := s.store.MasterKey(ctx)
	if err != nil {
		return "", err
	}
	if s.cache != nil {
		s.cache.SetDefault(masterCacheKey, key)
	}
	return key, nil
}

// Invalidate drops the cached key so the next lookup reads the store.
func (s *MasterKeySource) Invalidate() {
	if s.cache != nil {
		s.cache.Delete(masterCacheKey)
	}
}

// StaticKeySource yields a fixed deployment key.
type StaticKeySource struct {
	name string
	key  string
}

func NewStaticKeySource(name, key string) *StaticKeySource {
	return &StaticKeySource{name: name, key: key}
}

func (s *StaticKeySource) Name() string { return s.name }

func (s *StaticKeySource) Lookup(context.Context, domain.Caller) (string, error) {
	return s.key, nil
}
