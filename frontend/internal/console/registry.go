package console

import (
	"sync"
	"time"

	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/patrickmn/go-cache"
)

// Registry keeps one console per operator. A console idle for longer than the timeout is dropped.
type Registry struct {
	consoles    *cache.Cache
	idleTimeout time.Duration
	logLimit    int
	mu          sync.Mutex
}

func NewRegistry(idleTimeout time.Duration, logLimit int) *Registry {
	return &Registry{
		consoles:    cache.New(idleTimeout, idleTimeout/2),
		idleTimeout: idleTimeout,
		logLimit:    logLimit,
	}
}

// For returns the operator's console, creating it on first use. Every call extends its lifetime.
func (r *Registry) For(operator domain.Session) *Console {
	r.mu.Lock()
	defer r.mu.Unlock()

	var c *Console
	if v, found := r.consoles.Get(operator.IdentityId); found {
		c = v.(*Console)
	} else {
		c = New(operator, r.logLimit)
	}
	r.consoles.Set(operator.IdentityId, c, r.idleTimeout)
	return c
}

func (r *Registry) Len() int {
	return r.consoles.ItemCount()
}

func (r *Registry) Stop() {
	r.consoles.Flush()
}
