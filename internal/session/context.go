package session

import "sync"

// Context holds which template is open in the editor, if any. The id is
// what URL-fragment addressing resolves against.
type Context struct {
	mu    sync.RWMutex
	id    string
	name  string
	dirty bool
}

// NewContext creates a Context with no template open.
func NewContext() *Context {
	return &Context{}
}

// Current returns the open template's id and name. ok is false when the
// editor holds an unsaved, never-persisted state.
func (c *Context) Current() (id, name string, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id, c.name, c.id != ""
}

// Open records the template the editor now edits.
func (c *Context) Open(id, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = id
	c.name = name
	c.dirty = false
}

// Clear returns the session to the no-template state.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = ""
	c.name = ""
	c.dirty = false
}

// MarkDirty flags unsaved edits.
func (c *Context) MarkDirty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = true
}

// Dirty reports whether unsaved edits exist.
func (c *Context) Dirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}
