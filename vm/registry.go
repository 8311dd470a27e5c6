package vm

import "sync"

// ---------------------------------------------------------------------------
// InstanceRegistry: Arena of live heap instances
// ---------------------------------------------------------------------------

// InstanceRegistry owns every live instance, addressed by a stable ID that
// is NaN-boxed into object values. Holding the instances here keeps them
// visible to Go's collector while values circulate as raw uint64s.
//
// Reads take the shared lock, allocation takes the exclusive lock. The VM
// runs property operations on one interpreter goroutine, so the lock
// discipline serves the tracing invariants rather than parallel execution.
type InstanceRegistry struct {
	mu        sync.RWMutex
	instances []*ScriptObject
	capacity  int
}

// DefaultMaxInstances bounds the arena so IDs stay inside the NaN-box
// payload and runaway allocation fails loudly instead of thrashing.
const DefaultMaxInstances = 1 << 24

// NewInstanceRegistry creates an empty registry. ID 0 is reserved as
// invalid so a zeroed slot never aliases a live instance.
func NewInstanceRegistry(capacity int) *InstanceRegistry {
	if capacity <= 0 {
		capacity = DefaultMaxInstances
	}
	return &InstanceRegistry{
		instances: make([]*ScriptObject, 1, 256),
		capacity:  capacity,
	}
}

// Allocate creates instance storage for a class and assigns its ID.
func (r *InstanceRegistry) Allocate(class *Class) (*ScriptObject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.instances) >= r.capacity {
		return nil, &RegistryFullError{Capacity: r.capacity}
	}
	obj := newScriptObject(class)
	obj.id = uint32(len(r.instances))
	r.instances = append(r.instances, obj)
	return obj, nil
}

// Get returns the instance for an ID, or nil if the ID is invalid.
func (r *InstanceRegistry) Get(id uint32) *ScriptObject {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id == 0 || int(id) >= len(r.instances) {
		return nil
	}
	return r.instances[id]
}

// Len returns the number of live instances.
func (r *InstanceRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances) - 1
}
