package authstate

import (
	"sync"

	"drifty/internal/model"
)

// Provider is the identity stream from the auth provider: it emits
// the current identity (nil when signed out) to subscribers on every
// session change. Subscribers receive the current value immediately on
// subscribe.
type Provider struct {
	mu      sync.Mutex
	current *model.Identity
	subs    map[int]func(*model.Identity)
	nextID  int
}

func NewProvider() *Provider {
	return &Provider{
		subs: make(map[int]func(*model.Identity)),
	}
}

// Subscribe registers fn and returns an unsubscribe func. fn is
// invoked synchronously with the current identity before Subscribe
// returns.
func (p *Provider) Subscribe(fn func(*model.Identity)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	current := p.current
	p.mu.Unlock()

	fn(current)

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// Emit publishes a verified identity to every subscriber.
func (p *Provider) Emit(identity *model.Identity) {
	p.mu.Lock()
	p.current = identity
	fns := make([]func(*model.Identity), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(identity)
	}
}

// SignOut publishes a nil identity.
func (p *Provider) SignOut() {
	p.Emit(nil)
}

// Current returns the last emitted identity.
func (p *Provider) Current() *model.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}
