package provider

import "fmt"

// Factory builds a Provider from resolved settings. Settings come from the
// configuration layer; the core never reads configuration itself.
type Factory func(Settings) (Provider, error)

// Settings carries the already-resolved values a binding may need.
type Settings struct {
	Model   string
	APIKey  string
	BaseURL string
}

// Registry maps provider names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under the given name, replacing any previous one.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// New builds the named provider with the given settings.
func (r *Registry) New(name string, s Settings) (Provider, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("no registered provider with name: %s", name)
	}
	return f(s)
}

// Names returns all registered provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}
