package cache

import (
	"sync"

	"github.com/wright-research/jlawson-maps/pkg/core"
)

// TemplateCache holds the last template listing so repeated list calls
// between writes skip the store round-trip. Any write resets it.
type TemplateCache struct {
	mu        sync.RWMutex
	summaries []core.TemplateSummary
	valid     bool
}

// NewTemplateCache creates an empty TemplateCache
func NewTemplateCache() *TemplateCache {
	return &TemplateCache{}
}

// Get returns the cached listing, if one is held.
func (c *TemplateCache) Get() ([]core.TemplateSummary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.valid {
		return nil, false
	}
	out := make([]core.TemplateSummary, len(c.summaries))
	copy(out, c.summaries)
	return out, true
}

// Set stores a listing.
func (c *TemplateCache) Set(summaries []core.TemplateSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summaries = make([]core.TemplateSummary, len(summaries))
	copy(c.summaries, summaries)
	c.valid = true
}

// Reset clears the cache.
func (c *TemplateCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summaries = nil
	c.valid = false
}
