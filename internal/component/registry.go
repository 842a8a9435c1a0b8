package component

import "fmt"

// Registry holds the closed set of known components in registration order.
// Installation order always follows registration order; a configuration's
// selection list is a filter over the registry, never a sequence.
type Registry struct {
	order      []string
	components map[string]Component
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		components: make(map[string]Component),
	}
}

// Register adds a component to the registry.
func (r *Registry) Register(c Component) error {
	if c == nil {
		return fmt.Errorf("cannot register nil component")
	}
	name := c.Name()
	if name == "" {
		return fmt.Errorf("component has empty name")
	}
	if _, exists := r.components[name]; exists {
		return fmt.Errorf("component %s already registered", name)
	}
	r.components[name] = c
	r.order = append(r.order, name)
	return nil
}

// Get returns a component by name.
func (r *Registry) Get(name string) (Component, bool) {
	c, exists := r.components[name]
	return c, exists
}

// All returns all registered components in registration order.
func (r *Registry) All() []Component {
	components := make([]Component, 0, len(r.order))
	for _, name := range r.order {
		components = append(components, r.components[name])
	}
	return components
}

// Names returns the registered component names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
