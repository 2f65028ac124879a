package console

import (
	"testing"
	"time"

	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry(time.Minute, 50)
	defer r.Stop()

	a := r.For(domain.Session{IdentityId: "op-a"})
	assert.Same(t, a, r.For(domain.Session{IdentityId: "op-a"}))
	assert.NotSame(t, a, r.For(domain.Session{IdentityId: "op-b"}))
	assert.Equal(t, 2, r.Len())
}

func TestRegistryExpiry(t *testing.T) {
	r := NewRegistry(50*time.Millisecond, 50)
	defer r.Stop()

	a := r.For(domain.Session{IdentityId: "op-a"})
	time.Sleep(80 * time.Millisecond)
	assert.NotSame(t, a, r.For(domain.Session{IdentityId: "op-a"}))
}
