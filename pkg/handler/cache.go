package handler

import (
	"slices"
	"sync"

	"github.com/keshon/botframe/pkg/cmd"
	"github.com/keshon/botframe/pkg/platform"
)

// bound is an interface attached to one sent message.
type bound struct {
	iface   *cmd.Interface
	message *platform.Message
	// invoker is the user whose invocation produced the message. Restricted
	// buttons without designated users are limited to them.
	invoker string
}

// interfaceCache keeps bound interfaces by message id in insertion order.
// Once it holds more than max entries, the oldest third is dropped before the
// next insert.
type interfaceCache struct {
	mu      sync.Mutex
	max     int
	order   []string
	entries map[string]*bound
}

func newInterfaceCache(max int) *interfaceCache {
	if max < minInterfaces {
		max = minInterfaces
	}
	return &interfaceCache{max: max, entries: make(map[string]*bound)}
}

// put stores b under messageID and returns the evicted entries, oldest first.
func (c *interfaceCache) put(messageID string, b *bound) []*bound {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[messageID]; ok {
		c.removeLocked(messageID)
	}

	var evicted []*bound
	if len(c.entries) > c.max {
		n := len(c.entries) / 3
		for _, id := range c.order[:n] {
			evicted = append(evicted, c.entries[id])
			delete(c.entries, id)
		}
		c.order = slices.Delete(c.order, 0, n)
	}

	c.entries[messageID] = b
	c.order = append(c.order, messageID)
	return evicted
}

func (c *interfaceCache) get(messageID string) (*bound, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[messageID]
	return b, ok
}

func (c *interfaceCache) remove(messageID string) (*bound, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[messageID]
	if ok {
		c.removeLocked(messageID)
	}
	return b, ok
}

func (c *interfaceCache) removeLocked(messageID string) {
	delete(c.entries, messageID)
	if i := slices.Index(c.order, messageID); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
}

func (c *interfaceCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *interfaceCache) ids() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.order)
}
