// Package entitlement reports the user's subscription standing and pushes
// changes to subscribers.
package entitlement

import (
	"swipetriage/internal/models"
	"swipetriage/internal/providers"
	"swipetriage/internal/structures"
	"sync"
)

type ProviderInterface interface {
	Current() models.Entitlement
	// Subscribe returns a channel receiving every subsequent change and a
	// cancel func that closes it.
	Subscribe() (<-chan models.Entitlement, func())
	Set(e models.Entitlement)
}

// SettableProvider holds the entitlement in memory. Purchase verification is
// outside this process, so whatever verifies purchases calls Set.
type SettableProvider struct {
	mu          sync.RWMutex
	current     models.Entitlement
	subscribers map[int]chan models.Entitlement
	nextID      int
	logger      providers.Logger
}

func NewProvider(conf *structures.Config, logger providers.Logger) (*SettableProvider, error) {
	initial, err := models.ParseEntitlement(conf.Entitlement.Initial)
	if err != nil {
		return nil, err
	}
	return &SettableProvider{
		current:     initial,
		subscribers: make(map[int]chan models.Entitlement),
		logger:      logger,
	}, nil
}

func (p *SettableProvider) Current() models.Entitlement {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

func (p *SettableProvider) Subscribe() (<-chan models.Entitlement, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	ch := make(chan models.Entitlement, 1)
	p.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.subscribers, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Set changes the entitlement and notifies subscribers. A subscriber that has
// not drained its previous notification only sees the latest value.
func (p *SettableProvider) Set(e models.Entitlement) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == e {
		return
	}
	p.logger.Infof(providers.TypeApp, "Entitlement changed: %s -> %s", p.current, e)
	p.current = e
	for _, ch := range p.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- e
	}
}
