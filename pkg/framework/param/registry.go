package param

import (
	"fmt"
	"sync"
)

// Registry manages plugin parameters.
//
// The registry's lock guards only its index; parameter values live in the
// parameters themselves and are read and written without it.
type Registry struct {
	params map[uint32]*Parameter
	keys   map[string]uint32
	order  []uint32 // Maintain order for indexed access
	mu     sync.RWMutex
}

// NewRegistry creates a new parameter registry
func NewRegistry() *Registry {
	return &Registry{
		params: make(map[uint32]*Parameter),
		keys:   make(map[string]uint32),
		order:  make([]uint32, 0),
	}
}

// Add registers new parameters. IDs and keys must be unique.
func (r *Registry) Add(params ...*Parameter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range params {
		if _, exists := r.params[p.ID]; exists {
			return fmt.Errorf("parameter id %d already registered", p.ID)
		}
		key := p.Key
		if key == "" {
			key = p.Name
		}
		if _, exists := r.keys[key]; exists {
			return fmt.Errorf("parameter key %q already registered", key)
		}
		r.params[p.ID] = p
		r.keys[key] = p.ID
		r.order = append(r.order, p.ID)
	}

	return nil
}

// Get retrieves a parameter by ID
func (r *Registry) Get(id uint32) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.params[id]
}

// GetByKey retrieves a parameter by its persistence key
func (r *Registry) GetByKey(key string) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.keys[key]
	if !ok {
		return nil
	}
	return r.params[id]
}

// GetByIndex retrieves a parameter by index
func (r *Registry) GetByIndex(index int32) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= int32(len(r.order)) {
		return nil
	}

	id := r.order[index]
	return r.params[id]
}

// Value returns the plain value of a parameter. Unknown IDs read as 0.
func (r *Registry) Value(id uint32) float64 {
	p := r.Get(id)
	if p == nil {
		return 0
	}
	return p.Get()
}

// Set writes a plain value, clamped to the parameter's range.
// Unknown IDs are ignored.
func (r *Registry) Set(id uint32, plain float64) {
	if p := r.Get(id); p != nil {
		p.Set(plain)
	}
}

// ResetAll restores every parameter to its default.
func (r *Registry) ResetAll() {
	for _, p := range r.All() {
		p.Reset()
	}
}

// Count returns the number of parameters
func (r *Registry) Count() int32 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int32(len(r.order))
}

// All returns all parameters in order
func (r *Registry) All() []*Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Parameter, len(r.order))
	for i, id := range r.order {
		result[i] = r.params[id]
	}

	return result
}
