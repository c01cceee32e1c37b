package app

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/playlist-insights/appmodels"
)

type cachedProfile struct {
	profile  appmodels.MusicalProfile
	storedAt time.Time
}

// ProfileCache keeps the latest profiles in memory. Entries older than ttl are ignored, a zero ttl
// keeps them until evicted.
type ProfileCache struct {
	cache *lru.Cache
	ttl   time.Duration
	now   func() time.Time
}

func NewProfileCache(size int, ttl time.Duration) (*ProfileCache, error) {
	cache, err := lru.New(size)

	if err != nil {
		return nil, err
	}

	return &ProfileCache{cache: cache, ttl: ttl, now: time.Now}, nil
}

func (c *ProfileCache) Get(key string) (appmodels.MusicalProfile, bool) {
	value, ok := c.cache.Get(key)

	if !ok {
		return appmodels.MusicalProfile{}, false
	}

	entry := value.(cachedProfile)

	if c.ttl > 0 && c.now().Sub(entry.storedAt) > c.ttl {
		c.cache.Remove(key)
		return appmodels.MusicalProfile{}, false
	}

	return entry.profile, true
}

func (c *ProfileCache) Add(key string, profile appmodels.MusicalProfile) {
	c.cache.Add(key, cachedProfile{profile: profile, storedAt: c.now()})
}

func (c *ProfileCache) Len() int {
	return c.cache.Len()
}

// CacheKey scopes a profile by credential namespace, playlist and track cap.
func CacheKey(namespace string, playlistId string, maxTracks int) string {
	return fmt.Sprintf("%s:%s:%d", namespace, playlistId, maxTracks)
}
