package moderation

import (
	"context"
	"sync"
	"time"

	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/logger"
)

// CacheStorage is the read side the cache needs to repopulate itself.
type CacheStorage interface {
	RecentlyBanned(ctx context.Context, since time.Time) ([]domain.IdentityId, error)
}

// Cache holds identities banned within the last token lifetime. A token issued before the ban
// is still cryptographically valid, so the auth middleware consults this set on every request.
type Cache struct {
	storage        CacheStorage
	banned         map[domain.IdentityId]struct{}
	mu             sync.RWMutex
	jwtTTL         time.Duration
	lastUpdateTime time.Time
}

func NewCache(storage CacheStorage, jwtTTL time.Duration) *Cache {
	return &Cache{
		storage: storage,
		banned:  make(map[domain.IdentityId]struct{}),
		jwtTTL:  jwtTTL,
	}
}

// Update reloads the set from storage. The window is the JWT TTL plus 10% for clock skew.
func (c *Cache) Update(ctx context.Context) error {
	since := time.Now().Add(-time.Duration(float64(c.jwtTTL) * 1.1))

	ids, err := c.storage.RecentlyBanned(ctx, since)
	if err != nil {
		return err
	}

	fresh := make(map[domain.IdentityId]struct{}, len(ids))
	for _, id := range ids {
		fresh[id] = struct{}{}
	}

	c.mu.Lock()
	c.banned = fresh
	c.lastUpdateTime = time.Now()
	c.mu.Unlock()

	logger.Log.Debug("blacklist cache updated",
		"component", "blacklist_cache",
		"entries", len(fresh),
		"since", since.Format(time.RFC3339))
	return nil
}

func (c *Cache) IsBlacklisted(id domain.IdentityId) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.banned[id]
	return ok
}

// Add marks id as banned without waiting for the next refresh.
func (c *Cache) Add(id domain.IdentityId) {
	c.mu.Lock()
	c.banned[id] = struct{}{}
	c.mu.Unlock()
}

func (c *Cache) Remove(id domain.IdentityId) {
	c.mu.Lock()
	delete(c.banned, id)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.banned)
}

func (c *Cache) LastUpdate() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdateTime
}

// StartBackgroundUpdate refreshes the cache every interval until ctx is cancelled.
func (c *Cache) StartBackgroundUpdate(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	logger.Log.Info("started blacklist cache background updates",
		"component", "blacklist_cache",
		"interval", interval,
		"jwt_ttl", c.jwtTTL)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := c.Update(ctx); err != nil {
					logger.Log.Error("blacklist cache update failed",
						"component", "blacklist_cache",
						"error", err)
				}
			case <-ctx.Done():
				logger.Log.Info("blacklist cache shutting down gracefully",
					"component", "blacklist_cache")
				return
			}
		}
	}()
}
