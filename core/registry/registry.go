package registry

import "sync"

// Registry is a locked key-value store for extension points (cmd, cron, api,
// graphql). Writers register during init(); each key is locked after first use.
type Registry struct {
	m      sync.Map
	locked sync.Map
}

// GlobalRegistry is the process-wide registry instance.
var GlobalRegistry = &Registry{}

// GetGlobal returns the value stored for key.
func (r *Registry) GetGlobal(key string) (interface{}, bool) {
	return r.m.Load(key)
}

// SetGlobal stores a value for key. Callers must hold their own mutex when
// doing read-modify-write cycles.
func (r *Registry) SetGlobal(key string, value interface{}) {
	r.m.Store(key, value)
}

// Lock marks a key immutable. Register calls panic afterwards.
func (r *Registry) Lock(key string) {
	r.locked.Store(key, true)
}

// IsLocked reports whether a key has been locked.
func (r *Registry) IsLocked(key string) bool {
	v, ok := r.locked.Load(key)
	return ok && v.(bool)
}

// UnlockForTesting reopens a locked key (tests only).
func (r *Registry) UnlockForTesting(key string) {
	r.locked.Delete(key)
}
