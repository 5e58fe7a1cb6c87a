package brain

import (
	"fmt"
	"sort"
	"sync"

	"github.com/picogrid/tank-arena/pkg/arena"
)

// Factory creates a fresh brain instance for one tank
type Factory func() arena.Brain

// Info describes a registered strategy
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type entry struct {
	info    Info
	factory Factory
}

// Registry manages the available built-in strategies
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry creates a new strategy registry
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]entry),
	}
}

// Register adds a strategy to the registry
func (r *Registry) Register(name, description string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("strategy %s already registered", name)
	}

	r.entries[name] = entry{
		info:    Info{Name: name, Description: description},
		factory: factory,
	}
	return nil
}

// MustRegister is Register for package init, panicking on duplicates
func (r *Registry) MustRegister(name, description string, factory Factory) {
	if err := r.Register(name, description, factory); err != nil {
		panic(err)
	}
}

// Get returns a new instance of the requested strategy
func (r *Registry) Get(name string) (arena.Brain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[name]
	if !exists {
		return nil, fmt.Errorf("strategy %s not found", name)
	}

	return e.factory(), nil
}

// List returns all registered strategies sorted by name
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.entries))
	for _, e := range r.entries {
		infos = append(infos, e.info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// DefaultRegistry is the global strategy registry
var DefaultRegistry = NewRegistry()
