package runtime

import (
	"firechat/contract"
	"sort"
	"sync"
)

// Registry tracks the live feed subscribers.
type Registry struct {
	mu            sync.RWMutex
	subscriptions map[string]contract.Subscription
}

func NewRegistry() *Registry {
	return &Registry{subscriptions: make(map[string]contract.Subscription)}
}

// Subscribe registers or replaces the sink of a subscriber.
func (r *Registry) Subscribe(subscriberID string, limit int, sink contract.SnapshotSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscriptions[subscriberID] = contract.Subscription{ID: subscriberID, Limit: limit, Sink: sink}
}

func (r *Registry) Unsubscribe(subscriberID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subscriptions, subscriberID)
}

// Subscriptions returns a copy ordered by subscriber ID, safe to use without the lock.
func (r *Registry) Subscriptions() []contract.Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	subs := make([]contract.Subscription, 0, len(r.subscriptions))
	for _, s := range r.subscriptions {
		subs = append(subs, s)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	return subs
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subscriptions)
}
